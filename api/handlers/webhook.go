package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/payrelay/config"
	"github.com/customeros/payrelay/dto"
	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/internal/metrics"
	"github.com/customeros/payrelay/internal/tracing"
	"github.com/customeros/payrelay/services"
)

type WebhookHandler struct {
	cfg *config.Config
	log logger.Logger
	svc *services.Services
}

func NewWebhookHandler(cfg *config.Config, log logger.Logger, svc *services.Services) *WebhookHandler {
	return &WebhookHandler{
		cfg: cfg,
		log: log,
		svc: svc,
	}
}

// HandleStripeWebhook ingests provider events. The body must stay raw for the
// signature check. Every accepted event is acknowledged with 200 so the
// provider stops redelivering; only unparseable or unverifiable deliveries
// get a 400 and rely on provider-side redelivery.
func (h *WebhookHandler) HandleStripeWebhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "WebhookHandler.HandleStripeWebhook")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			tracing.TraceErr(span, err)
			metrics.WebhookVerificationFailures.Inc()
			c.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
			return
		}

		var event *dto.WebhookEvent
		if h.svc.PaymentService.SignatureVerificationEnabled() {
			event, err = h.svc.PaymentService.ConstructWebhookEvent(payload, c.GetHeader("stripe-signature"))
			if err != nil {
				tracing.TraceErr(span, err)
				metrics.WebhookVerificationFailures.Inc()
				h.log.Warnf("webhook signature verification failed: %v", err)
				c.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
				return
			}
		} else {
			h.log.Warn("webhook signature verification skipped: no signing secret configured")
			var parsed dto.WebhookEvent
			if err := json.Unmarshal(payload, &parsed); err != nil {
				tracing.TraceErr(span, err)
				metrics.WebhookVerificationFailures.Inc()
				c.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
				return
			}
			event = &parsed
		}

		metrics.WebhookEventsReceived.WithLabelValues(event.Type).Inc()
		span.LogKV("eventType", event.Type)

		switch event.Type {
		case dto.EventCheckoutSessionCompleted:
			session, err := event.Session()
			if err != nil {
				// envelope was valid, so the event is still acknowledged
				tracing.TraceErr(span, err)
				h.log.Errorf("failed to decode session from %s event: %v", event.Type, err)
				break
			}
			// awaited: the tracker absorbs every adapter failure internally
			h.svc.TrackerService.TrackPurchase(ctx, session, dto.RequestMeta{
				ClientIP:  c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
				SourceURL: c.GetHeader("Referer"),
			})
		case dto.EventCheckoutSessionExpired:
			h.log.Infof("checkout session expired: %s", event.ID)
		case dto.EventPaymentIntentFailed:
			h.log.Infof("payment failed: %s", event.ID)
		default:
			h.log.Infof("unhandled webhook event type: %s", event.Type)
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
