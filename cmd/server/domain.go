package main

import (
	"sync"

	"github.com/JaimeStill/legal-lab/internal/analysis/openai"
	"github.com/JaimeStill/legal-lab/internal/cases"
	"github.com/JaimeStill/legal-lab/internal/config"
	"github.com/JaimeStill/legal-lab/internal/credentials"
	"github.com/JaimeStill/legal-lab/internal/middleware"
	"github.com/JaimeStill/legal-lab/internal/normalize"
	"github.com/JaimeStill/legal-lab/internal/pipeline"
)

// Domain wires the analysis pipeline and its stores onto the runtime.
type Domain struct {
	Credentials credentials.System
	Cases       cases.Store
	Registry    *pipeline.Registry

	CredentialsHandler *credentials.Handler
	CasesHandler       *cases.Handler
	AnalysesHandler    *pipeline.Handler
}

func NewDomain(rt *Runtime, cfg *config.Config, tasks *sync.WaitGroup) *Domain {
	d := &Domain{
		Credentials: credentials.Static(cfg.Analysis.DefaultCredential),
	}

	if rt.Database != nil {
		d.Credentials = credentials.New(rt.Database.Connection(), cfg.Analysis.DefaultCredential, rt.Logger)

		switch {
		case rt.Storage != nil:
			d.Cases = cases.NewBlobStore(rt.Storage, rt.Pagination)
		default:
			d.Cases = cases.NewPostgresStore(rt.Database.Connection(), rt.Pagination)
		}
	}

	deps := pipeline.Deps{
		Normalizer:     normalize.New(cfg.Analysis.MaxUploadSizeBytes()),
		Client:         openai.New(&cfg.Analysis, rt.Logger),
		PersistTimeout: cfg.Cases.PersistTimeoutDuration(),
		Tasks:          tasks,
		Logger:         rt.Logger,
	}
	if d.Cases != nil {
		deps.Persister = cases.NewAdapter(d.Cases, rt.Logger)
		d.CasesHandler = cases.NewHandler(d.Cases, rt.Logger, rt.Pagination)
	}
	d.Registry = pipeline.NewRegistry(deps)

	limiter := middleware.NewLimiter(cfg.Analysis.RateLimit, cfg.Analysis.RateBurst)
	d.AnalysesHandler = pipeline.NewHandler(
		d.Registry,
		d.Credentials,
		cfg.Analysis.MaxUploadSizeBytes(),
		middleware.RateLimit(limiter),
		rt.Logger,
	)
	d.CredentialsHandler = credentials.NewHandler(d.Credentials, rt.Logger)

	return d
}
