package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"symposium/internal/delivery/http/helpers"
	"symposium/internal/delivery/http/middleware"
	"symposium/internal/domain"
)

// TicketSuccessResponse is the success envelope for GET /attendee/ticket.
type TicketSuccessResponse struct {
	Data  *domain.Ticket    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type TicketController struct {
	Logger  *slog.Logger
	Service domain.TicketService
}

func NewTicketController(logger *slog.Logger, svc domain.TicketService) *TicketController {
	return &TicketController{Logger: logger, Service: svc}
}

// GetTicket godoc
// @Summary Get my ticket
// @Description Returns a signed payload listing the attendee's registered events, for rendering as a QR code.
// @Tags attendee
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.TicketSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /attendee/ticket [get]
func (c *TicketController) GetTicket(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONErrorWithRemediation(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized", helpers.RemediationLogin)
		return
	}
	ticket, err := c.Service.Issue(r.Context(), identity)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "no registered events")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}
