package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lynixdevs/urbanthreads/internal/auth"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Order    *OrderHandler
	Profile  *ProfileHandler
}

func NewRouter(authService auth.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Authenticator(authService))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Public storefront: browsing and carting work without an account.
	h.Auth.RegisterRoutes(r)
	h.Catalog.RegisterRoutes(r)
	h.Cart.RegisterRoutes(r)

	// Shopper routes behind a session.
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)
		h.Checkout.RegisterRoutes(r)
		h.Order.RegisterRoutes(r)
		h.Profile.RegisterRoutes(r)
	})

	// Back-office.
	r.Route("/admin", func(r chi.Router) {
		r.Use(RequireAdmin)
		h.Catalog.RegisterAdminRoutes(r)
		h.Order.RegisterAdminRoutes(r)
	})

	return r
}
