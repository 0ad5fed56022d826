package execution

import (
	"regress/internal/domain"
)

// Result accumulates the outcome of one run. Every run gets its own Result,
// so passed cases never leak from one suite into the next.
type Result struct {
	Ran      int
	Failed   []string
	Skipped  []string
	Passed   []string
	Messages map[string]string
}

// NewResult returns an empty result
func NewResult() *Result {
	return &Result{Messages: map[string]string{}}
}

func (r *Result) addSuccess(name string) {
	r.Ran++
	r.Passed = append(r.Passed, name)
}

func (r *Result) addFailure(name, message string) {
	r.Ran++
	r.Failed = append(r.Failed, name)
	r.Messages[name] = message
}

func (r *Result) addSkip(name, reason string) {
	r.Ran++
	r.Skipped = append(r.Skipped, name)
	r.Messages[name] = reason
}

// WasSuccessful reports whether no case failed
func (r *Result) WasSuccessful() bool {
	return len(r.Failed) == 0
}

// ToSuiteResult converts the result into the persisted tuple
func (r *Result) ToSuiteResult() domain.SuiteResult {
	return domain.SuiteResult{
		Ran:     r.Ran,
		Failed:  append([]string(nil), r.Failed...),
		Skipped: append([]string(nil), r.Skipped...),
		Passed:  append([]string(nil), r.Passed...),
	}
}

// Details returns the failure messages keyed for the report viewer
func (r *Result) Details(suite, server string) domain.FailureDetails {
	out := domain.FailureDetails{}
	for _, name := range r.Failed {
		key := domain.CaseFailure{Suite: suite, Server: server, Case: name}.Key()
		out[key] = domain.FailureDetail{Message: r.Messages[name]}
	}
	return out
}
