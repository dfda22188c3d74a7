package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"symposium/internal/delivery/http/controllers"
	"symposium/internal/delivery/http/helpers"
	"symposium/internal/delivery/http/middleware"
	"symposium/internal/domain"
)

// RouterDeps are the collaborators the HTTP layer needs.
type RouterDeps struct {
	Logger   *slog.Logger
	Verifier domain.TokenVerifier
	Gatherer prometheus.Gatherer

	// SecureCookies marks the visitor cookie Secure. Enable behind TLS.
	SecureCookies  bool
	AllowedOrigins []string

	Catalog *controllers.CatalogController
	Cart    *controllers.CartController
	Users   *controllers.UserController
	Tickets *controllers.TicketController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(d.Verifier, d.Logger)
	optionalAuth := middleware.OptionalAuth(d.Verifier, d.Logger)
	visitor := middleware.Visitor(d.SecureCookies)
	cart := func(h http.HandlerFunc) http.HandlerFunc { return visitor(optionalAuth(h)) }

	// Catalog
	mux.HandleFunc("GET /events", d.Catalog.ListEvents)
	mux.HandleFunc("GET /events/{name}", d.Catalog.GetEvent)

	// Cart
	mux.HandleFunc("GET /cart", cart(d.Cart.GetCart))
	mux.HandleFunc("POST /cart/items", cart(d.Cart.AddItem))
	mux.HandleFunc("DELETE /cart/items/{name}", cart(d.Cart.RemoveItem))
	mux.HandleFunc("POST /cart/commit", cart(d.Cart.Commit))

	// Auth
	mux.HandleFunc("POST /auth/login-code", d.Users.RequestLoginCode)
	mux.HandleFunc("POST /auth/verify-code", d.Users.VerifyLoginCode)

	// Users
	mux.HandleFunc("GET /users/me", requireAuth(d.Users.GetMe))
	mux.HandleFunc("PATCH /users/me", requireAuth(d.Users.UpdateMe))
	mux.HandleFunc("GET /attendee/ticket", requireAuth(d.Tickets.GetTicket))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return middleware.LoggingMiddleware(d.Logger, middleware.CORS(d.AllowedOrigins, mux))
}
