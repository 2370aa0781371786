package credentials

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/legal-lab/internal/identity"
	"github.com/JaimeStill/legal-lab/pkg/handlers"
	"github.com/JaimeStill/legal-lab/pkg/routes"
)

// SaveCommand is the request body for PUT /api/credentials.
type SaveCommand struct {
	Credential string `json:"credential"`
}

type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "credentials"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/api/credentials",
		Description: "Saved analysis credential for the authenticated user",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Status},
			{Method: "PUT", Pattern: "", Handler: h.Save},
			{Method: "DELETE", Pattern: "", Handler: h.Delete},
		},
	}
}

// Status reports whether a credential is saved without revealing it.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	userID := identity.FromContext(r.Context())
	if userID == "" {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrAnonymous)
		return
	}

	_, err := h.sys.Find(r.Context(), userID)
	switch {
	case err == nil:
		handlers.RespondJSON(w, http.StatusOK, map[string]bool{"saved": true})
	case MapHTTPStatus(err) == http.StatusNotFound:
		handlers.RespondJSON(w, http.StatusOK, map[string]bool{"saved": false})
	default:
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
	}
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var cmd SaveCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return
	}

	if err := h.sys.Save(r.Context(), identity.FromContext(r.Context()), cmd.Credential); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), identity.FromContext(r.Context())); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
