package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"symposium/internal/delivery/http/helpers"
	"symposium/internal/delivery/http/middleware"
	"symposium/internal/domain"
)

// AddItemRequest is the request body for POST /cart/items.
type AddItemRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (a AddItemRequest) Validate() []string {
	if strings.TrimSpace(a.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// CartSuccessResponse is the success envelope for the cart endpoints.
type CartSuccessResponse struct {
	Data  *domain.CartViews `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CommitSuccessResponse is the success envelope for POST /cart/commit.
type CommitSuccessResponse struct {
	Data  *domain.CommitResult `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CartController exposes a visitor's cart. Routes must be wrapped with middleware.Visitor and
// middleware.OptionalAuth.
type CartController struct {
	Logger   *slog.Logger
	Service  domain.CartService
	Identity domain.IdentityProvider
}

func NewCartController(logger *slog.Logger, svc domain.CartService, identity domain.IdentityProvider) *CartController {
	return &CartController{Logger: logger, Service: svc, Identity: identity}
}

func (c *CartController) caller(w http.ResponseWriter, r *http.Request) (visitorID string, identity *domain.Identity, ok bool) {
	visitorID, ok = middleware.VisitorIDFromContext(r.Context())
	if !ok {
		c.Logger.ErrorContext(r.Context(), "cart route without visitor middleware", "path", r.URL.Path)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "missing visitor")
		return "", nil, false
	}
	identity, _ = c.Identity.CurrentIdentity(r.Context())
	return visitorID, identity, true
}

// GetCart godoc
// @Summary Get the cart
// @Description Returns the pending cart, the registered events and the totals for the calling visitor. Bearer token optional.
// @Tags cart
// @Produce json
// @Success 200 {object} controllers.CartSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: commit_in_progress"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /cart [get]
func (c *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	visitorID, identity, ok := c.caller(w, r)
	if !ok {
		return
	}
	views, err := c.Service.Views(r.Context(), visitorID, identity)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}

// AddItem godoc
// @Summary Add an event to the cart
// @Description Selects an event by name (any casing). Adding a selected or registered event is a no-op.
// @Tags cart
// @Accept json
// @Produce json
// @Param body body AddItemRequest true "Event to add"
// @Success 200 {object} controllers.CartSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /cart/items [post]
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	visitorID, identity, ok := c.caller(w, r)
	if !ok {
		return
	}
	var req AddItemRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	views, err := c.Service.Add(r.Context(), visitorID, identity, req.Name)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}

// RemoveItem godoc
// @Summary Remove an event from the cart
// @Description Deselects an event. Registered events cannot be removed.
// @Tags cart
// @Produce json
// @Param name path string true "Event name"
// @Success 200 {object} controllers.CartSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /cart/items/{name} [delete]
func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	visitorID, identity, ok := c.caller(w, r)
	if !ok {
		return
	}
	views, err := c.Service.Remove(r.Context(), visitorID, identity, r.PathValue("name"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}

// Commit godoc
// @Summary Pay for the cart
// @Description Registers every pending event for the signed-in attendee. Requires a complete profile.
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.CommitSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.remediation: login"
// @Failure 409 {object} helpers.APIResponse "error.code: profile_incomplete or commit_in_progress"
// @Failure 422 {object} helpers.APIResponse "error.code: nothing_to_pay"
// @Failure 502 {object} helpers.APIResponse "error.remediation: retry"
// @Router /cart/commit [post]
func (c *CartController) Commit(w http.ResponseWriter, r *http.Request) {
	visitorID, identity, ok := c.caller(w, r)
	if !ok {
		return
	}
	res, err := c.Service.Commit(r.Context(), visitorID, identity)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

func (c *CartController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		helpers.WriteJSONErrorWithRemediation(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized,
			"sign in to register", helpers.RemediationLogin)
	case errors.Is(err, domain.ErrProfileIncomplete):
		helpers.WriteJSONErrorWithRemediation(w, http.StatusConflict, helpers.ErrCodeProfileRequired,
			"complete your profile before registering", helpers.RemediationCompleteProfile)
	case errors.Is(err, domain.ErrNothingToPay):
		helpers.WriteJSONError(w, http.StatusUnprocessableEntity, helpers.ErrCodeNothingToPay, "your cart has nothing to pay for")
	case errors.Is(err, domain.ErrCommitInProgress):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeCommitInFlight, "a registration is already being processed")
	case errors.Is(err, domain.ErrCommitFailed):
		c.Logger.WarnContext(r.Context(), "commit failed", "path", r.URL.Path, "err", err)
		helpers.WriteJSONErrorWithRemediation(w, http.StatusBadGateway, helpers.ErrCodeCommitFailed,
			"registration could not be saved, please try again", helpers.RemediationRetry)
	case errors.Is(err, domain.ErrUnknownEvent):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrRegisteredImmutable):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "registered events cannot be removed")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}
