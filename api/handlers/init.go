package handlers

import (
	"github.com/customeros/payrelay/config"
	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/services"
)

type APIHandlers struct {
	Checkout *CheckoutHandler
	Webhook  *WebhookHandler
	Products *ProductsHandler
}

func InitHandlers(cfg *config.Config, log logger.Logger, svc *services.Services) *APIHandlers {
	return &APIHandlers{
		Checkout: NewCheckoutHandler(cfg, log, svc),
		Webhook:  NewWebhookHandler(cfg, log, svc),
		Products: NewProductsHandler(cfg, log, svc),
	}
}
