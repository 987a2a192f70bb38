// Package guardrail implements the input and output validation passes that
// bracket the model-mediated pipeline stages. A guardrail never panics and
// never blocks on warnings: a result is invalid exactly when it carries at
// least one error.
package guardrail

// Category names the rule family behind a failed check. Callers branch on
// categories rather than on error message wording.
type Category string

const (
	CategoryLength       Category = "length"
	CategoryQuality      Category = "quality"
	CategoryFile         Category = "file"
	CategorySafety       Category = "safety"
	CategoryCompleteness Category = "completeness"
	CategoryGroundedness Category = "groundedness"
)

// Result is the outcome of one validation pass.
type Result struct {
	Valid        bool     `json:"is_valid"`
	ChecksPassed int      `json:"checks_passed"`
	TotalChecks  int      `json:"total_checks"`
	Warnings     []string `json:"warnings"`
	Errors       []string `json:"errors"`

	// failed records the category of every failed check. Diagnostic state
	// for the orchestrator, not part of the serialized result.
	failed map[Category]bool
}

// Failed reports whether any check of the given category failed.
func (r Result) Failed(cat Category) bool {
	return r.failed[cat]
}

func newResult() *Result {
	return &Result{Valid: true, Warnings: []string{}, Errors: []string{}, failed: map[Category]bool{}}
}

// pass records a successful check.
func (r *Result) pass() {
	r.TotalChecks++
	r.ChecksPassed++
}

// fail records a blocking error for a check.
func (r *Result) fail(cat Category, msg string) {
	r.TotalChecks++
	r.Errors = append(r.Errors, msg)
	r.failed[cat] = true
	r.Valid = false
}

// warn records a non-blocking warning without affecting validity. The check
// still counts as passed.
func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
