package settlement

import (
	"errors"
	"fmt"
)

// Kind classifies a business rejection. Rejections are reported to the
// caller as a failed Result, never as a fault.
type Kind string

const (
	KindNotFound    Kind = "not_found"
	KindValidation  Kind = "validation_error"
	KindComputation Kind = "computation_error"
)

// Caller-facing messages.
const (
	MsgEmployeeNotFound     = "Employee not found."
	MsgRelievingDateMissing = "Relieving Date is required."
	MsgEmployeeActive       = "Employee is still Active."
	MsgNoSalaryAssignment   = "No Salary Structure Assignment found."
)

// Error is a business rejection carrying the caller-facing message.
type Error struct {
	Kind       Kind
	Message    string
	EmployeeID string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (employee %s)", e.Kind, e.Message, e.EmployeeID)
}

func notFound(employeeID string) *Error {
	return &Error{Kind: KindNotFound, Message: MsgEmployeeNotFound, EmployeeID: employeeID}
}

func invalid(employeeID, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, EmployeeID: employeeID}
}

func noAssignment(employeeID string) *Error {
	return &Error{Kind: KindComputation, Message: MsgNoSalaryAssignment, EmployeeID: employeeID}
}

// AsRejection extracts a business rejection from err, if it is one.
func AsRejection(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind returns true if err is a rejection of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := AsRejection(err)
	return ok && e.Kind == kind
}
