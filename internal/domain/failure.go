package domain

import "sort"

// CaseFailure locates one failed case in a report
type CaseFailure struct {
	Suite  string `json:"suite"`
	Server string `json:"server"`
	Case   string `json:"case"`
}

// Failures flattens all failed cases of a report, ordered by suite, server and case
func (r *Report) Failures() []CaseFailure {
	var out []CaseFailure
	for _, suite := range r.Suites() {
		servers := make([]string, 0, len(suite.Results))
		for name := range suite.Results {
			servers = append(servers, name)
		}
		sort.Strings(servers)
		for _, server := range servers {
			for _, name := range suite.Results[server].Failed {
				out = append(out, CaseFailure{Suite: suite.Name, Server: server, Case: name})
			}
		}
	}
	return out
}

// Key identifies the failure across runs of the viewer
func (f CaseFailure) Key() string {
	return f.Suite + "/" + f.Server + "/" + f.Case
}

// FailureDetail is what the report viewer shows and tracks for a failed case
type FailureDetail struct {
	Message  string `json:"message"`
	Resolved bool   `json:"resolved"`
}

// FailureDetails maps CaseFailure.Key to its detail
type FailureDetails map[string]FailureDetail
