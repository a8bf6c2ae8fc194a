package gymhub

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gymhub/gymhub/internal/http/handlers/auth/login"
	"github.com/gymhub/gymhub/internal/http/handlers/auth/logout"
	"github.com/gymhub/gymhub/internal/http/handlers/auth/refresh"
	"github.com/gymhub/gymhub/internal/http/handlers/auth/register"
	"github.com/gymhub/gymhub/internal/http/handlers/gymplan/planget"
	"github.com/gymhub/gymhub/internal/http/handlers/gymplan/planlist"
	"github.com/gymhub/gymhub/internal/http/handlers/payment/paymentintent"
	"github.com/gymhub/gymhub/internal/http/handlers/payment/paymentlist"
	"github.com/gymhub/gymhub/internal/http/handlers/payment/paymentverify"
	"github.com/gymhub/gymhub/internal/http/handlers/signature/planchange"
	"github.com/gymhub/gymhub/internal/http/handlers/signature/signaturelist"
	"github.com/gymhub/gymhub/internal/http/handlers/stripewebhook"
	"github.com/gymhub/gymhub/internal/http/middlewarectx"
	"github.com/gymhub/gymhub/internal/lib/jwt"
	authservice "github.com/gymhub/gymhub/internal/services/auth"
	gymplanservice "github.com/gymhub/gymhub/internal/services/gymplan"
	paymentservice "github.com/gymhub/gymhub/internal/services/payment"
	signatureservice "github.com/gymhub/gymhub/internal/services/signature"
)

// RegisterRoutes registers all routes of the service.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	accessMaker jwt.Maker,
	webhookSecret string,
	authSvc *authservice.Service,
	gymplanSvc *gymplanservice.Service,
	signatureSvc *signatureservice.Service,
	paymentSvc *paymentservice.Service,
) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Open endpoints
		r.Post("/auth/register", register.New(logger, authSvc).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authSvc).ServeHTTP)
		r.Get("/auth/refresh", refresh.New(logger, authSvc).ServeHTTP)
		r.Post("/auth/logout", logout.New(logger).ServeHTTP)
		r.Get("/gymplans", planlist.New(logger, gymplanSvc).ServeHTTP)
		r.Get("/gymplans/{id}", planget.New(logger, gymplanSvc).ServeHTTP)

		// Everything below requires a Bearer access token
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(accessMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(10, 20, logger))
			r.Post("/signatures/plan", planchange.New(logger, signatureSvc).ServeHTTP)
			r.Get("/signatures", signaturelist.New(logger, signatureSvc).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, paymentSvc).ServeHTTP)
			r.Post("/payments/intent", paymentintent.New(logger, paymentSvc).ServeHTTP)
			r.Get("/payments/verify", paymentverify.New(logger, paymentSvc).ServeHTTP)
		})
	})

	// Stripe calls this directly; auth is the signature header
	r.Post("/webhook", stripewebhook.New(logger, paymentSvc, webhookSecret).ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())
}
