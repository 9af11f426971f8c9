// Package server assembles the cashbook service emulator: a local stand-in
// for the remote transaction service, used for development and tests.
package server

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cashbook-app/cashbook/internal/server/api"
	"github.com/cashbook-app/cashbook/internal/server/auth"
	"github.com/cashbook-app/cashbook/internal/server/store"
)

// NewRouter builds the emulator's HTTP router. Register and login are
// public; everything else requires a bearer session token.
func NewRouter(st *store.Store, tokens *auth.Manager) *chi.Mux {
	usersHandler := api.NewUsersHandler(st, tokens)
	transactionsHandler := api.NewTransactionsHandler(st)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/api/users/register", usersHandler.Register)
	r.Post("/api/users/login", usersHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(api.AuthMiddleware(tokens))

		r.Get("/api/users/{id}", usersHandler.Get)

		r.Route("/api/transactions", func(r chi.Router) {
			r.Get("/user/{id}", transactionsHandler.ListForUser)
			r.Post("/deposit", transactionsHandler.Deposit)
			r.Post("/withdraw", transactionsHandler.Withdraw)
			r.Put("/{id}", transactionsHandler.Update)
			r.Delete("/{id}", transactionsHandler.Delete)
		})
	})

	return r
}
