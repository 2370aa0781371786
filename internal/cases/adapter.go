package cases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/JaimeStill/legal-lab/internal/analysis"
)

// Warning reasons reported by PersistWarning.
const (
	ReasonNotLegal    = "not_legal_document"
	ReasonNoIdentity  = "no_user_identity"
	ReasonInvalid     = "invalid_record"
	ReasonStoreFailed = "store_failed"
)

// Outcome is the result of a persistence attempt: Persisted or PersistWarning.
type Outcome interface {
	outcome()
}

// Persisted reports a stored record.
type Persisted struct {
	RecordID uuid.UUID
}

// PersistWarning reports a skipped or failed write.
type PersistWarning struct {
	Reason string
	Err    error
}

func (Persisted) outcome()      {}
func (PersistWarning) outcome() {}

func (w PersistWarning) Error() string {
	if w.Err != nil {
		return fmt.Sprintf("%s: %v", w.Reason, w.Err)
	}
	return w.Reason
}

// Adapter converts analysis results into case records and writes them.
type Adapter struct {
	store    Store
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

func NewAdapter(store Store, logger *slog.Logger) *Adapter {
	return &Adapter{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("system", "cases"),
		now:      time.Now,
	}
}

// Persist writes a record for a legal result owned by an identified user.
// Every other case yields a PersistWarning; Persist never returns an error.
func (a *Adapter) Persist(ctx context.Context, result analysis.Result, c Context) Outcome {
	if !result.IsLegalDocument {
		return PersistWarning{Reason: ReasonNotLegal}
	}
	if c.UserID == "" {
		return PersistWarning{Reason: ReasonNoIdentity}
	}

	rec := NewRecord(result, c, a.now())
	if err := a.validate.Struct(rec); err != nil {
		return PersistWarning{Reason: ReasonInvalid, Err: fmt.Errorf("%w: %v", ErrInvalidRecord, err)}
	}

	if err := a.store.Insert(ctx, &rec); err != nil {
		return PersistWarning{Reason: ReasonStoreFailed, Err: err}
	}

	a.logger.Info("case record persisted", "record_id", rec.ID, "user_id", rec.UserID)
	return Persisted{RecordID: rec.ID}
}
