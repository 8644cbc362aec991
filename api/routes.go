package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/customeros/payrelay/api/handlers"
	"github.com/customeros/payrelay/api/middleware"
	"github.com/customeros/payrelay/config"
	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/internal/tracing"
	"github.com/customeros/payrelay/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, cfg *config.Config, log logger.Logger, s *services.Services) {
	if s == nil {
		panic("Services cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	// setup handlers
	apiHandlers := handlers.InitHandlers(cfg, log, s)

	// Health and metrics endpoints (no tracing middleware needed)
	r.GET("/health", handlers.HealthCheck(cfg))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Provider webhook: body must stay raw for the signature check, so it
	// lives outside any body-touching middleware
	r.POST("/webhook", tracing.TracingEnhancer(ctx, "POST /webhook"), apiHandlers.Webhook.HandleStripeWebhook())

	api := r.Group("/api")
	api.Use(tracing.TracingEnhancer(ctx, "api"))
	{
		api.POST("/create-checkout-session", apiHandlers.Checkout.CreateCheckoutSession())
		api.GET("/verify-session", apiHandlers.Checkout.VerifySession())
		api.GET("/products", apiHandlers.Products.ListProducts())

		// manual trigger, guarded when an API key is configured
		apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
			HeaderName:  "X-PAYRELAY-API-KEY",
			ValidAPIKey: cfg.AppConfig.APIKey,
		})
		api.POST("/track-purchase", apiKeyMiddleware, apiHandlers.Products.TrackPurchase())
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}
