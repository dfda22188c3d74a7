package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"symposium/internal/catalog"
	"symposium/internal/delivery/http/helpers"
	"symposium/internal/domain"
)

// EventListSuccessResponse is the success envelope for GET /events.
type EventListSuccessResponse struct {
	Data  []*domain.EventRecord `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// EventSuccessResponse is the success envelope for GET /events/{name}.
type EventSuccessResponse struct {
	Data  *domain.EventRecord `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// CatalogController serves the read-only event catalog.
type CatalogController struct {
	Logger  *slog.Logger
	Catalog *catalog.Catalog
}

func NewCatalogController(logger *slog.Logger, c *catalog.Catalog) *CatalogController {
	return &CatalogController{Logger: logger, Catalog: c}
}

// ListEvents godoc
// @Summary List events
// @Description Returns the catalog in display order. Prices are in paise; 0 means free.
// @Tags events
// @Produce json
// @Param category query string false "technical, workshop or paper"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events [get]
func (c *CatalogController) ListEvents(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(strings.ToLower(r.URL.Query().Get("category")))
	if category == "" {
		helpers.WriteJSONSuccess(w, http.StatusOK, c.Catalog.Events())
		return
	}
	cat := domain.Category(category)
	if !cat.Valid() {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown category "+category)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Catalog.ByCategory(cat))
}

// GetEvent godoc
// @Summary Get an event
// @Description Looks an event up by name, ignoring case.
// @Tags events
// @Produce json
// @Param name path string true "Event name"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{name} [get]
func (c *CatalogController) GetEvent(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	canon, ok := c.Catalog.Canonical(name)
	if !ok {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		return
	}
	event, _ := c.Catalog.Lookup(canon)
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
