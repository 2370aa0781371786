package pipeline

import (
	"github.com/JaimeStill/legal-lab/internal/analysis"
)

// State is the orchestrator's lifecycle position.
type State string

const (
	StateIdle        State = "idle"
	StateNormalizing State = "normalizing"
	StateAnalyzing   State = "analyzing"
	StateComplete    State = "complete"
	StateFailed      State = "failed"
)

// InFlight reports whether s is Normalizing or Analyzing.
func (s State) InFlight() bool {
	return s == StateNormalizing || s == StateAnalyzing
}

// Terminal reports whether s is Complete or Failed.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// Progress labels exposed while an analysis is in flight.
const (
	ProgressProcessing = "processing"
	ProgressAnalyzing  = "analyzing"
)

// Verdict distinguishes the two Complete outcomes.
type Verdict string

const (
	VerdictSuccess  Verdict = "success"
	VerdictRejected Verdict = "rejected"
)

// Failure describes why an analysis ended in StateFailed.
type Failure struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Outcome is the observable state of an orchestrator.
type Outcome struct {
	State     State            `json:"state"`
	Progress  string           `json:"progress,omitempty"`
	Verdict   Verdict          `json:"outcome,omitempty"`
	FileName  string           `json:"fileName,omitempty"`
	PageCount int              `json:"pageCount,omitempty"`
	Result    *analysis.Result `json:"result,omitempty"`
	Failure   *Failure         `json:"failure,omitempty"`
}

func newFailure(err error) *Failure {
	msg := FallbackMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &Failure{Kind: KindOf(err), Message: msg}
}
