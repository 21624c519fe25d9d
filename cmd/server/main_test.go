package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestComputeCommand_Scenario(t *testing.T) {
	// GIVEN: The leave encashment scenario in an in-memory store
	// WHEN: Computing the settlement from the command line
	// THEN: The result JSON carries the expected total
	chdir(t, t.TempDir())

	out, err := run(t, "--driver", "memory", "compute",
		"--scenario", "leave-encashment", "--employee", "emp-003")
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(3200), body["totals"].(map[string]any)["total_payable"])
}

func TestComputeCommand_Rejection(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := run(t, "--driver", "memory", "compute",
		"--scenario", "active-employee", "--employee", "emp-004")
	require.NoError(t, err)

	assert.JSONEq(t, `{"ok":false,"message":"Employee is still Active."}`, out)
}

func TestComputeCommand_InvalidInput(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := run(t, "--driver", "memory", "compute", "--employee", "emp-001", "--date", "June 1st")
	assert.Error(t, err)

	_, err = run(t, "--driver", "memory", "compute")
	assert.Error(t, err, "--employee is required")

	_, err = run(t, "--driver", "mongo", "compute", "--employee", "emp-001")
	assert.Error(t, err)
}

func TestScenariosCommand(t *testing.T) {
	out, err := run(t, "scenarios")

	require.NoError(t, err)
	assert.Contains(t, out, "mid-month-resignation")
	assert.Contains(t, out, "no-salary-assignment")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
