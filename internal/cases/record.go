// Package cases persists case metadata derived from successful analyses and
// exposes it for browsing and export. Persistence is best-effort: a failure is
// reported as a warning and never affects the analysis outcome.
package cases

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/legal-lab/internal/analysis"
	"github.com/JaimeStill/legal-lab/pkg/pagination"
)

// StatusPendingReview is the status assigned to every new record.
const StatusPendingReview = "Pending Review"

// DateLayout is the ISO calendar date format of Record.Date.
const DateLayout = "2006-01-02"

// Record is the persisted metadata of one legal document analysis.
// It never contains document bytes or the analysis credential.
type Record struct {
	ID              uuid.UUID `json:"id" validate:"required"`
	UserID          string    `json:"userId" validate:"required"`
	FileName        string    `json:"fileName" validate:"required"`
	Status          string    `json:"status" validate:"required"`
	Date            string    `json:"date" validate:"required,datetime=2006-01-02"`
	IsLegalDocument bool      `json:"isLegalDocument" validate:"eq=true"`
	DocumentType    string    `json:"documentType"`
	Summary         string    `json:"summary" validate:"required"`
	KeyPoints       []string  `json:"keyPoints"`
	Risks           []string  `json:"risks"`
	Actions         []string  `json:"actions"`
	Parties         []string  `json:"parties"`
	Dates           []string  `json:"dates"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Context identifies who analyzed which file.
type Context struct {
	UserID   string
	FileName string
}

// NewRecord builds a Pending Review record from a legal analysis result.
func NewRecord(result analysis.Result, c Context, now time.Time) Record {
	return Record{
		ID:              uuid.New(),
		UserID:          c.UserID,
		FileName:        c.FileName,
		Status:          StatusPendingReview,
		Date:            now.UTC().Format(DateLayout),
		IsLegalDocument: result.IsLegalDocument,
		DocumentType:    result.DocumentType,
		Summary:         result.Summary,
		KeyPoints:       nonNil(result.KeyPoints),
		Risks:           nonNil(result.Risks),
		Actions:         nonNil(result.Actions),
		Parties:         nonNil(result.Parties),
		Dates:           nonNil(result.Dates),
	}
}

// Store is the insert-only record collection scoped by user.
type Store interface {
	// Insert writes a new record and sets its CreatedAt.
	Insert(ctx context.Context, rec *Record) error

	// List returns a page of the user's records, newest first by default.
	List(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResult[Record], error)

	// Find returns one of the user's records or ErrNotFound.
	Find(ctx context.Context, userID string, id uuid.UUID) (*Record, error)

	// All returns every record of the user, newest first.
	All(ctx context.Context, userID string) ([]Record, error)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
