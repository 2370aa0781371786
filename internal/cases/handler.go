package cases

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/legal-lab/internal/identity"
	"github.com/JaimeStill/legal-lab/pkg/handlers"
	"github.com/JaimeStill/legal-lab/pkg/pagination"
	"github.com/JaimeStill/legal-lab/pkg/routes"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	store      Store
	logger     *slog.Logger
	pagination pagination.Config
}

func NewHandler(store Store, logger *slog.Logger, cfg pagination.Config) *Handler {
	return &Handler{
		store:      store,
		logger:     logger.With("handler", "cases"),
		pagination: cfg,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/api/cases",
		Description: "Case records of the authenticated user",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/export", Handler: h.Export},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	result, err := h.store.List(r.Context(), userID, page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid id: %w", err))
		return
	}

	rec, err := h.store.Find(r.Context(), userID, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	records, err := h.store.All(r.Context(), userID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	data, err := ExportXLSX(records)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	name := fmt.Sprintf("legal-cases-%s.xlsx", time.Now().UTC().Format(DateLayout))
	handlers.RespondAttachment(w, xlsxContentType, name, data)
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := identity.FromContext(r.Context())
	if userID == "" {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrAnonymous)
		return "", false
	}
	return userID, true
}
