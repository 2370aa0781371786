// Package pipeline drives one document at a time through normalization,
// credential resolution, analysis and detached case persistence.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/legal-lab/internal/analysis"
	"github.com/JaimeStill/legal-lab/internal/cases"
	"github.com/JaimeStill/legal-lab/internal/credentials"
	"github.com/JaimeStill/legal-lab/internal/normalize"
	"github.com/JaimeStill/legal-lab/pkg/logging"
)

// Request is a single analysis invocation.
// Explicit is the per-invocation credential, Saved the caller's stored one.
type Request struct {
	File     normalize.File
	Explicit string
	Saved    string
	UserID   string
}

// Persister writes case metadata for a completed analysis.
type Persister interface {
	Persist(ctx context.Context, result analysis.Result, c cases.Context) cases.Outcome
}

// Observer receives the outcome of every detached persistence task.
type Observer func(cases.Outcome)

// Deps are the collaborators shared by every orchestrator.
type Deps struct {
	Normalizer     *normalize.Normalizer
	Client         analysis.Client
	Persister      Persister
	Observer       Observer
	PersistTimeout time.Duration
	Tasks          *sync.WaitGroup
	Logger         *slog.Logger
}

// Orchestrator is a single-flight analysis state machine.
type Orchestrator struct {
	deps   Deps
	logger *slog.Logger

	mu      sync.Mutex
	current Outcome
	retired bool
}

func New(deps Deps) *Orchestrator {
	if deps.Tasks == nil {
		deps.Tasks = &sync.WaitGroup{}
	}
	if deps.PersistTimeout <= 0 {
		deps.PersistTimeout = 10 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	return &Orchestrator{
		deps:    deps,
		logger:  deps.Logger.With("system", "pipeline"),
		current: Outcome{State: StateIdle},
	}
}

// Submit runs one analysis to a terminal state and returns it.
// It returns ErrBusy without side effects while another analysis is in flight.
// Failed outcomes are returned together with their cause.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (Outcome, error) {
	o.mu.Lock()
	if o.retired {
		o.mu.Unlock()
		return Outcome{}, errRetired
	}
	if o.current.State.InFlight() {
		o.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	o.current = Outcome{State: StateIdle}

	if err := o.deps.Normalizer.CheckSize(req.File); err != nil {
		out := o.failLocked(req.File.Name, err)
		o.mu.Unlock()
		return out, err
	}

	o.current = Outcome{State: StateNormalizing, Progress: ProgressProcessing, FileName: req.File.Name}
	o.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	logger := o.logger.With("file_name", req.File.Name, "user_id", req.UserID)

	payload, err := o.deps.Normalizer.Normalize(ctx, req.File)
	if err != nil {
		return o.fail(logger, req.File.Name, err)
	}

	credential, err := credentials.Resolve(req.Explicit, req.Saved)
	if err != nil {
		return o.fail(logger, req.File.Name, err)
	}

	pages := o.pageCount(logger, payload)
	o.transition(func(out *Outcome) {
		out.State = StateAnalyzing
		out.Progress = ProgressAnalyzing
		out.PageCount = pages
	})

	logger.Info("analysis started", "media_type", payload.MediaType, "encoding", payload.Encoding)
	start := time.Now()

	result, err := o.deps.Client.Analyze(ctx, payload, credential)
	if err != nil {
		return o.fail(logger, req.File.Name, err)
	}
	if result, err = analysis.Check(result); err != nil {
		return o.fail(logger, req.File.Name, err)
	}

	verdict := VerdictRejected
	if result.IsLegalDocument {
		verdict = VerdictSuccess
	}

	out := o.transition(func(out *Outcome) {
		out.State = StateComplete
		out.Progress = ""
		out.Verdict = verdict
		out.Result = &result
	})
	logger.Info("analysis complete", "outcome", verdict, "elapsed", time.Since(start))

	if verdict == VerdictSuccess {
		o.persist(ctx, result, cases.Context{UserID: req.UserID, FileName: req.File.Name})
	}
	return out, nil
}

// Reset returns a terminal orchestrator to Idle, discarding the last outcome.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current.State.InFlight() {
		return ErrBusy
	}
	o.current = Outcome{State: StateIdle}
	return nil
}

// retire resets the orchestrator and refuses further submissions so a
// registry can drop it.
func (o *Orchestrator) retire() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current.State.InFlight() {
		return ErrBusy
	}
	o.current = Outcome{State: StateIdle}
	o.retired = true
	return nil
}

// Snapshot returns the current outcome for polling.
func (o *Orchestrator) Snapshot() Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Wait blocks until every detached persistence task has finished.
func (o *Orchestrator) Wait() {
	o.deps.Tasks.Wait()
}

func (o *Orchestrator) transition(fn func(*Outcome)) Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.current)
	return o.current
}

func (o *Orchestrator) fail(logger *slog.Logger, fileName string, err error) (Outcome, error) {
	kind := KindOf(err)
	if kind == KindMalformedResponse {
		logger.Error("analysis response rejected", "kind", kind, "error", err)
	} else {
		logger.Warn("analysis failed", "kind", kind, "error", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failLocked(fileName, err), err
}

func (o *Orchestrator) failLocked(fileName string, err error) Outcome {
	o.current = Outcome{
		State:    StateFailed,
		FileName: fileName,
		Failure:  newFailure(err),
	}
	return o.current
}

func (o *Orchestrator) pageCount(logger *slog.Logger, payload normalize.Payload) int {
	n, err := normalize.PageCount(payload)
	if err != nil {
		logger.Debug("pdf page count unavailable", "error", err)
		return 0
	}
	return n
}

// persist starts the detached case write. Its outcome reaches only the logger
// and the observer.
func (o *Orchestrator) persist(ctx context.Context, result analysis.Result, c cases.Context) {
	if o.deps.Persister == nil {
		return
	}

	o.deps.Tasks.Add(1)
	go func() {
		defer o.deps.Tasks.Done()

		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.deps.PersistTimeout)
		defer cancel()

		outcome := o.deps.Persister.Persist(pctx, result, c)
		switch out := outcome.(type) {
		case cases.Persisted:
			o.logger.Debug("case persisted", "record_id", out.RecordID)
		case cases.PersistWarning:
			o.logger.Warn("case persistence skipped", "reason", out.Reason, "error", out.Err, "user_id", c.UserID)
		}

		if o.deps.Observer != nil {
			o.deps.Observer(outcome)
		}
	}()
}
