package harness

// Result is the outcome of a scenario run.
type Result struct {
	Scenario string `json:"scenario"`

	// Pass is true when every case passed.
	Pass bool `json:"pass"`

	Cases []CaseResult `json:"cases"`

	// Errors collects the failures of all cases, prefixed by case name.
	Errors []string `json:"errors,omitempty"`
}

// CaseResult records what one case rendered and matched.
type CaseResult struct {
	Name string `json:"name"`
	SQL  string `json:"sql"`
	Args []any  `json:"args"`

	// Count is the COUNT(*) result and Rows the number of selected rows.
	Count int64    `json:"count"`
	Rows  int      `json:"rows"`
	IDs   []string `json:"ids"`

	Errors []string `json:"errors,omitempty"`
}

// Pass reports whether the case had no failures.
func (c *CaseResult) Pass() bool { return len(c.Errors) == 0 }

// NewResult creates a passing result for the named scenario.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario: scenario,
		Pass:     true,
		Cases:    []CaseResult{},
		Errors:   []string{},
	}
}

// AddCase appends a case result and records its failures.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	for _, msg := range c.Errors {
		r.AddError("case " + c.Name + ": " + msg)
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
