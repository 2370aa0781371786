// Package analysis defines the structured result of a document analysis, the
// validator that turns raw model output into that result, and the Client
// contract implemented by provider adapters.
package analysis

import (
	"context"

	"github.com/JaimeStill/legal-lab/internal/normalize"
)

// DefaultRejection is the guidance returned for non-legal documents when the
// service does not provide its own message.
const DefaultRejection = "This does not appear to be a legal document. Upload a contract, agreement, notice, or other legal document to analyze it."

// Result is the validated outcome of one analysis.
// When IsLegalDocument is false only ErrorMessage carries information.
type Result struct {
	IsLegalDocument bool     `json:"isLegalDocument"`
	DocumentType    string   `json:"documentType,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	KeyPoints       []string `json:"keyPoints"`
	Risks           []string `json:"risks"`
	Actions         []string `json:"actions"`
	Parties         []string `json:"parties"`
	Dates           []string `json:"dates"`
	ErrorMessage    string   `json:"errorMessage,omitempty"`
}

// Client analyzes a normalized payload using the supplied credential.
// Implementations make exactly one attempt and should return results that
// passed Validate; the orchestrator re-checks them with Check.
type Client interface {
	Analyze(ctx context.Context, payload normalize.Payload, credential string) (Result, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, payload normalize.Payload, credential string) (Result, error)

func (f ClientFunc) Analyze(ctx context.Context, payload normalize.Payload, credential string) (Result, error) {
	return f(ctx, payload, credential)
}
