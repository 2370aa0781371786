package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/legal-lab/internal/credentials"
	"github.com/JaimeStill/legal-lab/internal/identity"
	"github.com/JaimeStill/legal-lab/internal/normalize"
	"github.com/JaimeStill/legal-lab/pkg/handlers"
	"github.com/JaimeStill/legal-lab/pkg/routes"
)

// CredentialHeader carries a per-request analysis credential.
const CredentialHeader = "X-Analysis-Credential"

const multipartMemory = 32 << 20

var ErrMissingFile = errors.New("multipart field \"file\" is required")

type Handler struct {
	registry    *Registry
	credentials credentials.System
	maxUpload   int64
	logger      *slog.Logger
	limit       func(http.Handler) http.Handler
}

// NewHandler creates the analysis handler. limit wraps the submit route and may be nil.
func NewHandler(
	registry *Registry,
	creds credentials.System,
	maxUpload int64,
	limit func(http.Handler) http.Handler,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		registry:    registry,
		credentials: creds,
		maxUpload:   maxUpload,
		logger:      logger.With("handler", "analyses"),
		limit:       limit,
	}
}

func (h *Handler) Routes() routes.Group {
	submit := routes.Route{Method: "POST", Pattern: "", Handler: h.Submit}
	if h.limit != nil {
		submit.Middleware = []func(http.Handler) http.Handler{h.limit}
	}

	return routes.Group{
		Prefix:      "/api/analyses",
		Description: "Document analysis for the calling user",
		Routes: []routes.Route{
			submit,
			{Method: "GET", Pattern: "/current", Handler: h.Current},
			{Method: "DELETE", Pattern: "/current", Handler: h.Reset},
		},
	}
}

// Submit analyzes the uploaded "file" part and returns the terminal Outcome.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	// The ceiling only bounds request bodies; the declared limit is enforced by the orchestrator.
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxUpload+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, normalize.ErrSizeLimitExceeded)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("parse multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingFile)
		return
	}
	defer file.Close()

	userID := identity.FromContext(r.Context())
	explicit := r.FormValue("credential")
	if strings.TrimSpace(explicit) == "" {
		explicit = r.Header.Get(CredentialHeader)
	}

	req := Request{
		File: normalize.File{
			Name:      header.Filename,
			MediaType: header.Header.Get("Content-Type"),
			Size:      header.Size,
			Content:   file,
		},
		Explicit: explicit,
		Saved:    h.credentials.Saved(r.Context(), userID),
		UserID:   userID,
	}

	out, err := h.registry.Submit(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrBusy) {
			handlers.RespondError(w, h.logger, http.StatusConflict, err)
			return
		}
		handlers.RespondJSON(w, MapHTTPStatus(err), out)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	out := h.registry.Snapshot(identity.FromContext(r.Context()))
	handlers.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Reset(identity.FromContext(r.Context())); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
