// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"gigpay/internal/api/handler"
	"gigpay/internal/api/middleware"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(
	auth *middleware.Authenticator,
	walletHandler *handler.WalletHandler,
	gigHandler *handler.GigHandler,
	applicationHandler *handler.ApplicationHandler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Everything below requires an authenticated principal.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Route("/gigs", func(r chi.Router) {
			r.Post("/", gigHandler.Create)
			r.Get("/", gigHandler.Browse)
			r.Route("/{gigID}", func(r chi.Router) {
				r.Get("/", gigHandler.Get)
				r.Delete("/", gigHandler.Close)
				r.Patch("/complete", gigHandler.Complete)
				r.Post("/applications", applicationHandler.Apply)
				r.Get("/applications", applicationHandler.ListForGig)
			})
		})
		r.Get("/my_gigs", gigHandler.MyGigs)

		r.Route("/applications/{applicationID}", func(r chi.Router) {
			r.Get("/", applicationHandler.Get)
			r.Patch("/", applicationHandler.Decide)
			r.Post("/cashout", applicationHandler.Cashout)
		})
		r.Get("/my_applications", applicationHandler.MyApplications)

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", walletHandler.GetWallet)
			r.Get("/transactions", walletHandler.GetTransactions)
			r.Post("/deposit", walletHandler.Deposit)
			r.Post("/withdraw", walletHandler.Withdraw)
			r.Post("/payment", walletHandler.ProcessPayment)
		})
	})

	return r
}
