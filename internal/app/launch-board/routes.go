// Package launchboard предоставляет маршруты для основного приложения.
package launchboard

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/launchboard/launch-board/internal/config"
	"github.com/launchboard/launch-board/internal/http/handlers/admin/pendinglist"
	"github.com/launchboard/launch-board/internal/http/handlers/admin/productstatus"
	"github.com/launchboard/launch-board/internal/http/handlers/auth/login"
	"github.com/launchboard/launch-board/internal/http/handlers/auth/register"
	commentcreate "github.com/launchboard/launch-board/internal/http/handlers/comment/create"
	commentlist "github.com/launchboard/launch-board/internal/http/handlers/comment/list"
	"github.com/launchboard/launch-board/internal/http/handlers/health"
	"github.com/launchboard/launch-board/internal/http/handlers/newsletter/subscribe"
	"github.com/launchboard/launch-board/internal/http/handlers/payment/checkout"
	paymentlist "github.com/launchboard/launch-board/internal/http/handlers/payment/list"
	"github.com/launchboard/launch-board/internal/http/handlers/payment/webhook"
	productlist "github.com/launchboard/launch-board/internal/http/handlers/product/list"
	"github.com/launchboard/launch-board/internal/http/handlers/product/read"
	"github.com/launchboard/launch-board/internal/http/handlers/product/submit"
	"github.com/launchboard/launch-board/internal/http/middlewarectx"
	authservice "github.com/launchboard/launch-board/internal/services/auth"
	commentservice "github.com/launchboard/launch-board/internal/services/comment"
	newsletterservice "github.com/launchboard/launch-board/internal/services/newsletter"
	paymentservice "github.com/launchboard/launch-board/internal/services/payment"
	productservice "github.com/launchboard/launch-board/internal/services/product"
	"github.com/launchboard/launch-board/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, db *repository.Storage,
	authService *authservice.AuthService,
	productService *productservice.ProductService,
	commentService *commentservice.CommentService,
	paymentService *paymentservice.PaymentService,
	newsletterService *newsletterservice.NewsletterService,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/products", productlist.New(logger, productService).ServeHTTP)
		r.Get("/products/{id}", read.New(logger, productService).ServeHTTP)
		r.Get("/products/{id}/comments", commentlist.New(logger, commentService).ServeHTTP)
		r.Post("/newsletter", subscribe.New(logger, newsletterService).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/products", submit.New(logger, productService).ServeHTTP)
			r.Post("/comments", commentcreate.New(logger, commentService).ServeHTTP)
			r.Post("/simple-checkout", checkout.New(logger, paymentService).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, paymentService).ServeHTTP)

			// Только для администраторов: роль проверяется на сервере
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/admin/product-status", productstatus.New(logger, productService).ServeHTTP)
				r.Get("/admin/products/pending", pendinglist.New(logger, productService).ServeHTTP)
			})
		})

		// Webhook endpoint (без аутентификации, подпись проверяется по телу)
		r.Post("/webhooks/lemon-squeezy", webhook.New(logger, paymentService, cfg.LemonSqueezy.WebhookSecret).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
