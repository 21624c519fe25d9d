/*
scenarios_test.go - Tests for demo scenarios

PURPOSE:
	Each scenario must load into both the in-memory and the SQLite store
	and produce the settlement its description promises.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/calendar"
	"github.com/warp/settlement-engine/records"
	"github.com/warp/settlement-engine/records/memory"
	"github.com/warp/settlement-engine/settlement"
	"github.com/warp/settlement-engine/store/sqlite"
)

func newSQLiteStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestScenarios_ProduceExpectedSettlements(t *testing.T) {
	tests := []struct {
		scenario string
		employee string
		ok       bool
		total    string
		message  string
	}{
		{"mid-month-resignation", "emp-001", true, "2000", ""},
		{"month-end-resignation", "emp-002", true, "4500", ""},
		{"leave-encashment", "emp-003", true, "3200", ""},
		{"active-employee", "emp-004", false, "", settlement.MsgEmployeeActive},
		{"no-salary-assignment", "emp-005", false, "", settlement.MsgNoSalaryAssignment},
	}

	stores := map[string]func(t *testing.T) records.ReadWriter{
		"memory": func(*testing.T) records.ReadWriter { return memory.New() },
		"sqlite": func(t *testing.T) records.ReadWriter { return newSQLiteStore(t) },
	}

	for storeName, newStore := range stores {
		for _, tt := range tests {
			t.Run(storeName+"/"+tt.scenario, func(t *testing.T) {
				// GIVEN: A freshly loaded scenario
				ctx := context.Background()
				store := newStore(t)
				require.NoError(t, LoadScenarioData(ctx, store, tt.scenario))

				// WHEN: Computing the settlement for its employee
				result, err := settlement.NewCalculator(store).FullAndFinal(ctx, tt.employee, calendar.Date{})
				require.NoError(t, err)

				// THEN: The outcome matches the scenario description
				assert.Equal(t, tt.ok, result.OK)
				if !tt.ok {
					assert.Equal(t, tt.message, result.Message)
					return
				}
				assert.True(t, decimal.RequireFromString(tt.total).Equal(result.Payload.TotalPayable),
					"total %s", result.Payload.TotalPayable)
			})
		}
	}
}

func TestScenario_MonthEndResignationUsesOverride(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, LoadScenarioData(ctx, store, "month-end-resignation"))

	result, err := settlement.NewCalculator(store).FullAndFinal(ctx, "emp-002", calendar.Date{})

	require.NoError(t, err)
	require.True(t, result.OK)
	assert.True(t, result.Payload.Pay.FullMonth)
	assert.Equal(t, 30, result.Payload.Pay.WorkedDays)
}

func TestLoadScenarioData_ReplacesPreviousScenario(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, LoadScenarioData(ctx, store, "mid-month-resignation"))
	require.NoError(t, LoadScenarioData(ctx, store, "active-employee"))

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "emp-004", employees[0].ID)

	assert.Error(t, LoadScenarioData(ctx, store, "does-not-exist"))
}

func TestScenarioEndpoints(t *testing.T) {
	store := memory.New()
	_, srv := setupTestServer(t, store)

	// List
	resp, err := http.Get(srv.URL + "/api/scenarios")
	require.NoError(t, err)
	var list []ScenarioDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	assert.Len(t, list, len(Scenarios()))

	// Load
	body, _ := json.Marshal(LoadScenarioRequest{ScenarioID: "leave-encashment"})
	resp, err = http.Post(srv.URL+"/api/scenarios/load", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, current := get(t, srv.URL+"/api/scenarios/current")
	assert.Equal(t, "leave-encashment", current["id"])

	// Unknown scenario
	body, _ = json.Marshal(LoadScenarioRequest{ScenarioID: "nope"})
	resp, err = http.Post(srv.URL+"/api/scenarios/load", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Reset
	resp, err = http.Post(srv.URL+"/api/scenarios/reset", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	employees, err := store.ListEmployees(context.Background())
	require.NoError(t, err)
	assert.Empty(t, employees)
}
