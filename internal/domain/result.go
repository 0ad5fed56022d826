package domain

import (
	"encoding/json"
	"fmt"
)

// SuiteResult is the result tuple of one suite run.
// It serializes as [ran, failed, skipped, passed].
type SuiteResult struct {
	Ran     int
	Failed  []string
	Skipped []string
	Passed  []string
}

// HasFailures reports whether at least one case failed
func (r SuiteResult) HasFailures() bool {
	return len(r.Failed) > 0
}

// MarshalJSON encodes the tuple as a 4-element array
func (r SuiteResult) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Ran, nonNil(r.Failed), nonNil(r.Skipped), nonNil(r.Passed)})
}

// UnmarshalJSON decodes the 4-element array form
func (r *SuiteResult) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 4 {
		return fmt.Errorf("suite result: expected 4 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &r.Ran); err != nil {
		return fmt.Errorf("suite result ran count: %w", err)
	}
	for i, dst := range []*[]string{&r.Failed, &r.Skipped, &r.Passed} {
		if err := json.Unmarshal(raw[i+1], dst); err != nil {
			return fmt.Errorf("suite result element %d: %w", i+1, err)
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ResultSet maps a server display name to its suite result
type ResultSet map[string]SuiteResult

// Report is the persisted outcome of a run. It always carries the three keys.
type Report struct {
	PEM     ResultSet `json:"pem"`
	PgAdmin ResultSet `json:"pgadmin"`
	SQL     ResultSet `json:"sql"`
}

// NewReport returns a report with empty result sets
func NewReport() *Report {
	return &Report{
		PEM:     ResultSet{},
		PgAdmin: ResultSet{},
		SQL:     ResultSet{},
	}
}

// Failed reports whether any result tuple has failed cases
func (r *Report) Failed() bool {
	for _, set := range []ResultSet{r.SQL, r.PgAdmin, r.PEM} {
		for _, res := range set {
			if res.HasFailures() {
				return true
			}
		}
	}
	return false
}

// ExitCode is 1 when any suite failed, else 0
func (r *Report) ExitCode() int {
	if r.Failed() {
		return 1
	}
	return 0
}

// Suites returns the result sets in display order
func (r *Report) Suites() []NamedResultSet {
	return []NamedResultSet{
		{Name: "sql", Results: r.SQL},
		{Name: "pgadmin", Results: r.PgAdmin},
		{Name: "pem", Results: r.PEM},
	}
}

// NamedResultSet pairs a report key with its results
type NamedResultSet struct {
	Name    string
	Results ResultSet
}

// DisplayName builds the report key for a server
func DisplayName(serverName, version string) string {
	return fmt.Sprintf("%s\t(%s)", serverName, version)
}
