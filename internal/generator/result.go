package generator

// StepOutcome distinguishes how a pipeline sub-step ended
type StepOutcome int

const (
	// OutcomeOK means the sub-step succeeded
	OutcomeOK StepOutcome = iota
	// OutcomeSoftFailure means the sub-step failed but the run continues
	// (missing asset, domain wiring); the reason is recorded, not escalated
	OutcomeSoftFailure
	// OutcomeHardFailure means the sub-step failed terminally
	OutcomeHardFailure
)

// StepResult is the tagged result of a best-effort pipeline sub-step, so
// soft failures are an explicit value rather than a swallowed error.
type StepResult struct {
	Outcome StepOutcome
	Reason  string
	Err     error
}

// OK returns a success result
func OK() StepResult {
	return StepResult{Outcome: OutcomeOK}
}

// SoftFailure returns a non-fatal failure result
func SoftFailure(reason string, err error) StepResult {
	return StepResult{Outcome: OutcomeSoftFailure, Reason: reason, Err: err}
}

// HardFailure returns a fatal failure result
func HardFailure(err error) StepResult {
	return StepResult{Outcome: OutcomeHardFailure, Err: err}
}

// Failed reports whether the sub-step was a hard failure
func (r StepResult) Failed() bool {
	return r.Outcome == OutcomeHardFailure
}

// Soft reports whether the sub-step failed non-fatally
func (r StepResult) Soft() bool {
	return r.Outcome == OutcomeSoftFailure
}
