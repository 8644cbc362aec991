package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/payrelay/config"
	"github.com/customeros/payrelay/dto"
	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/internal/tracing"
	"github.com/customeros/payrelay/services"
)

type ProductsHandler struct {
	cfg *config.Config
	log logger.Logger
	svc *services.Services
}

func NewProductsHandler(cfg *config.Config, log logger.Logger, svc *services.Services) *ProductsHandler {
	return &ProductsHandler{
		cfg: cfg,
		log: log,
		svc: svc,
	}
}

// ListProducts returns the static catalog
func (h *ProductsHandler) ListProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"products": h.cfg.ProductConfig.Products(),
		})
	}
}

type trackPurchaseRequest struct {
	Email    string  `json:"email"`
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
	OrderID  string  `json:"order_id"`
}

// TrackPurchase is a manual trigger for verifying the attribution pipeline
// without a real payment. It builds a synthetic session and runs the same
// fan-out as the webhook path.
func (h *ProductsHandler) TrackPurchase() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ProductsHandler.TrackPurchase")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request trackPurchaseRequest
		if err := c.BindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		orderID := request.OrderID
		if orderID == "" {
			orderID = fmt.Sprintf("manual_%s", uuid.NewString())
		}

		session := dto.CheckoutSession{
			ID:          orderID,
			AmountTotal: int64(request.Value * 100),
			Currency:    strings.ToLower(request.Currency),
			CustomerDetails: dto.CustomerDetails{
				Email: request.Email,
			},
		}

		h.svc.TrackerService.TrackPurchase(ctx, session, dto.RequestMeta{
			ClientIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			SourceURL: c.GetHeader("Referer"),
		})

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "purchase event dispatched to attribution providers",
		})
	}
}
