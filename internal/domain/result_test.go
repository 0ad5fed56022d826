package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_ExitCode(t *testing.T) {
	server := DisplayName("PostgreSQL 16", "PostgreSQL 16.2")

	report := NewReport()
	report.SQL[server] = SuiteResult{Ran: 2, Passed: []string{"a", "b"}}
	report.PgAdmin[server] = SuiteResult{Ran: 1, Failed: []string{"t1"}}
	report.PEM[server] = SuiteResult{}
	assert.True(t, report.Failed())
	assert.Equal(t, 1, report.ExitCode())

	clean := NewReport()
	clean.SQL[server] = SuiteResult{Ran: 1, Passed: []string{"a"}}
	clean.PEM[server] = SuiteResult{Ran: 1, Skipped: []string{"b"}}
	assert.False(t, clean.Failed())
	assert.Equal(t, 0, clean.ExitCode())

	assert.Equal(t, 0, NewReport().ExitCode())
}

func TestReport_JSONKeys(t *testing.T) {
	report := NewReport()
	report.SQL["srv\t(16)"] = SuiteResult{Ran: 1, Passed: []string{"ok"}}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 3)
	for _, key := range []string{"pem", "pgadmin", "sql"} {
		assert.Contains(t, raw, key)
	}
	assert.JSONEq(t, `{}`, string(raw["pem"]), "skipped suites serialize as empty objects")
	assert.JSONEq(t, `{"srv\t(16)": [1, [], [], ["ok"]]}`, string(raw["sql"]))
}

func TestSuiteResult_UnmarshalJSON(t *testing.T) {
	var r SuiteResult
	require.NoError(t, json.Unmarshal([]byte(`[3, ["f"], ["s"], ["p"]]`), &r))
	assert.Equal(t, SuiteResult{Ran: 3, Failed: []string{"f"}, Skipped: []string{"s"}, Passed: []string{"p"}}, r)

	assert.Error(t, json.Unmarshal([]byte(`[1, []]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"ran": 1}`), &r))
}

func TestReport_Failures(t *testing.T) {
	report := NewReport()
	report.PEM["b"] = SuiteResult{Failed: []string{"p1"}}
	report.PgAdmin["b"] = SuiteResult{Failed: []string{"g2"}}
	report.PgAdmin["a"] = SuiteResult{Failed: []string{"g1"}}

	got := report.Failures()
	require.Len(t, got, 3)
	assert.Equal(t, CaseFailure{Suite: "pgadmin", Server: "a", Case: "g1"}, got[0])
	assert.Equal(t, CaseFailure{Suite: "pgadmin", Server: "b", Case: "g2"}, got[1])
	assert.Equal(t, CaseFailure{Suite: "pem", Server: "b", Case: "p1"}, got[2])
}
