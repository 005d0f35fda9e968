package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/SagarCoder007/modern-banking-system/internal/handlers"
	appmw "github.com/SagarCoder007/modern-banking-system/internal/middleware"
	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

// Deps is everything the router needs wired in.
type Deps struct {
	Auth     *handlers.AuthHandler
	Customer *handlers.CustomerHandler
	Banker   *handlers.BankerHandler
	Verify   func(http.Handler) http.Handler // appmw.Authenticated(...)
}

func NewRoutes(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	loginLimit := appmw.RateLimit(time.Minute, 10)
	moneyLimit := appmw.RateLimit(time.Minute, 30)

	r.Route("/auth", func(r chi.Router) {
		r.With(loginLimit).Post("/login", d.Auth.Login)
		r.With(loginLimit).Post("/register", d.Auth.Register)

		r.Group(func(r chi.Router) {
			r.Use(d.Verify)
			r.Post("/logout", d.Auth.Logout)
			r.Post("/logout-all", d.Auth.LogoutAll)
			r.Get("/verify", d.Auth.Verify)
			r.Post("/refresh", d.Auth.Refresh)
			r.Post("/change-password", d.Auth.ChangePassword)
			r.Get("/profile", d.Auth.GetProfile)
			r.Put("/profile", d.Auth.UpdateProfile)
		})
	})

	r.Route("/customer", func(r chi.Router) {
		r.Use(d.Verify)
		r.Use(appmw.RequireRole(models.RoleCustomer))

		r.Get("/balance", d.Customer.Balance)
		r.Get("/summary", d.Customer.Summary)
		r.Get("/transactions", d.Customer.Transactions)
		r.Get("/transactions/{reference}", d.Customer.TransactionByReference)
		r.With(moneyLimit).Post("/deposit", d.Customer.Deposit)
		r.With(moneyLimit).Post("/withdraw", d.Customer.Withdraw)
	})

	r.Route("/banker", func(r chi.Router) {
		r.Use(d.Verify)
		r.Use(appmw.RequireRole(models.RoleBanker))

		r.Get("/accounts", d.Banker.Accounts)
		r.Get("/customers", d.Banker.Customers)
		r.Get("/customers/search", d.Banker.SearchCustomers)
		r.Get("/customers/{customerID}/transactions", d.Banker.CustomerTransactions)
		r.Get("/dashboard", d.Banker.Dashboard)
		r.Put("/accounts/{accountID}/status", d.Banker.UpdateAccountStatus)
		r.Put("/transactions/{reference}/description", d.Banker.AmendDescription)
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
