/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the settlement model (decimals, calendar dates) from the wire contract
  (snake_case keys, floats, YYYY-MM-DD strings).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

RESULT CONTRACT:
  Success: ok, company_currency (null when unknown), payables, totals,
           service_years, service_months, service_days, total_years,
           debug_calc_date, debug_worked_from, debug_worked_to
  Failure: ok=false, message

SEE ALSO:
  - handlers.go: Uses these types
  - settlement/payload.go: Result and Payload
*/
package api

import (
	"encoding/json"

	"github.com/warp/settlement-engine/records"
	"github.com/warp/settlement-engine/settlement"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	DateOfJoining string `json:"date_of_joining,omitempty"`
	RelievingDate string `json:"relieving_date,omitempty"`
	Company       string `json:"company,omitempty"`
}

// LineItemDTO is one payable row.
type LineItemDTO struct {
	Component             string  `json:"component"`
	DayCount              float64 `json:"day_count"`
	RatePerDay            float64 `json:"rate_per_day"`
	Amount                float64 `json:"amount"`
	ReferenceDocumentType string  `json:"reference_document_type"`
	ReferenceDocument     *string `json:"reference_document"`
}

type TotalsDTO struct {
	TotalPayable float64 `json:"total_payable"`
}

// LeaveVariantDTO shows how one annual leave type was netted.
type LeaveVariantDTO struct {
	LeaveType    string  `json:"leave_type"`
	Allocation   string  `json:"allocation"`
	Allocated    float64 `json:"allocated"`
	AnnualUsed   float64 `json:"annual_used"`
	PersonalUsed float64 `json:"personal_used"`
	Remaining    float64 `json:"remaining"`
}

// PayloadDTO is the body of a successful result.
type PayloadDTO struct {
	CompanyCurrency *string           `json:"company_currency"`
	Payables        []LineItemDTO     `json:"payables"`
	Totals          TotalsDTO         `json:"totals"`
	ServiceYears    int               `json:"service_years"`
	ServiceMonths   int               `json:"service_months"`
	ServiceDays     int               `json:"service_days"`
	TotalYears      float64           `json:"total_years"`
	DebugCalcDate   string            `json:"debug_calc_date"`
	DebugWorkedFrom string            `json:"debug_worked_from"`
	DebugWorkedTo   string            `json:"debug_worked_to"`
	LeaveBreakdown  []LeaveVariantDTO `json:"leave_breakdown"`
}

// ResultDTO marshals to the success shape when OK and to {ok, message}
// otherwise.
type ResultDTO struct {
	OK      bool
	Message string
	Payload *PayloadDTO
}

type failureDTO struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type successDTO struct {
	OK bool `json:"ok"`
	PayloadDTO
}

func (r ResultDTO) MarshalJSON() ([]byte, error) {
	if !r.OK || r.Payload == nil {
		return json.Marshal(failureDTO{OK: false, Message: r.Message})
	}
	return json.Marshal(successDTO{OK: true, PayloadDTO: *r.Payload})
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Employee    string `json:"employee"`
	Expected    string `json:"expected"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e records.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:            e.ID,
		Name:          e.Name,
		Status:        e.Status,
		DateOfJoining: e.DateOfJoining.String(),
		RelievingDate: e.RelievingDate.String(),
		Company:       e.CompanyID,
	}
}

// ToResultDTO converts a settlement result to its wire form.
func ToResultDTO(r settlement.Result) ResultDTO {
	if !r.OK || r.Payload == nil {
		return ResultDTO{OK: false, Message: r.Message}
	}
	p := r.Payload

	dto := &PayloadDTO{
		Payables:        make([]LineItemDTO, 0, len(p.Payables)),
		Totals:          TotalsDTO{TotalPayable: p.TotalPayable.InexactFloat64()},
		ServiceYears:    p.Service.Years,
		ServiceMonths:   p.Service.Months,
		ServiceDays:     p.Service.Days,
		TotalYears:      p.Service.TotalYears.InexactFloat64(),
		DebugCalcDate:   p.Cutoff.String(),
		DebugWorkedFrom: p.WorkedWindow.Start.String(),
		DebugWorkedTo:   p.WorkedWindow.End.String(),
		LeaveBreakdown:  []LeaveVariantDTO{},
	}
	dto.CompanyCurrency = nullIfEmpty(p.CompanyCurrency)
	for _, item := range p.Payables {
		dto.Payables = append(dto.Payables, LineItemDTO{
			Component:             item.Component,
			DayCount:              item.DayCount.InexactFloat64(),
			RatePerDay:            item.RatePerDay.InexactFloat64(),
			Amount:                item.Amount.InexactFloat64(),
			ReferenceDocumentType: item.ReferenceDocumentType,
			ReferenceDocument:     nullIfEmpty(item.ReferenceDocument),
		})
	}
	if p.Leave != nil {
		for _, v := range p.Leave.Variants {
			dto.LeaveBreakdown = append(dto.LeaveBreakdown, LeaveVariantDTO{
				LeaveType:    v.LeaveType,
				Allocation:   v.AllocationID,
				Allocated:    v.Allocated.InexactFloat64(),
				AnnualUsed:   v.AnnualUsed.InexactFloat64(),
				PersonalUsed: v.PersonalUsed.InexactFloat64(),
				Remaining:    v.Remaining.InexactFloat64(),
			})
		}
	}
	return ResultDTO{OK: true, Payload: dto}
}

// nullIfEmpty maps an unknown reference to JSON null.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
