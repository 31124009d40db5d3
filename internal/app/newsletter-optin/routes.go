// Package newsletteroptin предоставляет маршруты для основного приложения.
package newsletteroptin

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/newsletter-optin/internal/http/handlers/subscription/confirm"
	"github.com/magabrotheeeer/newsletter-optin/internal/http/handlers/subscription/health"
	"github.com/magabrotheeeer/newsletter-optin/internal/http/handlers/subscription/status"
	"github.com/magabrotheeeer/newsletter-optin/internal/http/handlers/subscription/subscribe"
	subservice "github.com/magabrotheeeer/newsletter-optin/internal/services/subscription"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, subscriptionService *subservice.SubscriptionService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/subscriptions", subscribe.New(logger, subscriptionService).ServeHTTP)
		r.Get("/subscriptions/confirm", confirm.New(logger, subscriptionService).ServeHTTP)
		r.Get("/subscribers/status", status.New(logger, subscriptionService).ServeHTTP)
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
