package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/payrelay/config"
	er "github.com/customeros/payrelay/internal/errors"
	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/internal/metrics"
	"github.com/customeros/payrelay/internal/tracing"
	"github.com/customeros/payrelay/services"
)

type CheckoutHandler struct {
	cfg *config.Config
	log logger.Logger
	svc *services.Services
}

func NewCheckoutHandler(cfg *config.Config, log logger.Logger, svc *services.Services) *CheckoutHandler {
	return &CheckoutHandler{
		cfg: cfg,
		log: log,
		svc: svc,
	}
}

// CreateCheckoutSession starts a hosted checkout flow and returns the session
// id and redirect url. Redirect targets derive from the caller's origin.
func (h *CheckoutHandler) CreateCheckoutSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "CheckoutHandler.CreateCheckoutSession")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		origin := c.GetHeader("Origin")
		if origin == "" {
			origin = h.cfg.AppConfig.PublicSiteURL
		}

		session, err := h.svc.PaymentService.CreateCheckoutSession(ctx, origin)
		if err != nil {
			tracing.TraceErr(span, err)
			h.log.Error("failed to create checkout session", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to create checkout session",
				"message": err.Error(),
			})
			return
		}

		metrics.CheckoutSessionsCreated.Inc()
		span.LogKV("sessionId", session.ID)

		c.JSON(http.StatusOK, gin.H{
			"sessionId": session.ID,
			"url":       session.URL,
		})
	}
}

// VerifySession reports whether a checkout session was paid. The product list
// is returned only for paid sessions.
func (h *CheckoutHandler) VerifySession() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "CheckoutHandler.VerifySession")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		sessionID := c.Query("session_id")
		if sessionID == "" {
			tracing.TraceErr(span, er.ErrMissingSessionID)
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
			return
		}
		span.LogKV("sessionId", sessionID)

		session, err := h.svc.PaymentService.RetrieveSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, er.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
				return
			}
			tracing.TraceErr(span, err)
			h.log.Error("failed to verify checkout session", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to verify session",
				"message": err.Error(),
			})
			return
		}

		paid := session.PaymentStatus == "paid"
		response := gin.H{
			"paid":           paid,
			"customer_email": session.CustomerDetails.Email,
			"amount_total":   session.AmountTotal,
			"currency":       session.Currency,
		}
		if paid {
			response["products"] = h.cfg.ProductConfig.Products()
		}

		c.JSON(http.StatusOK, response)
	}
}
