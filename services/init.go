package services

import (
	"github.com/customeros/payrelay/config"
	"github.com/customeros/payrelay/interfaces"
	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/internal/repository"
	"github.com/customeros/payrelay/services/events"
	"github.com/customeros/payrelay/services/meta"
	"github.com/customeros/payrelay/services/stripe"
	"github.com/customeros/payrelay/services/tiktok"
	"github.com/customeros/payrelay/services/tracker"
)

type Services struct {
	PaymentService      interfaces.PaymentService
	AttributionServices []interfaces.AttributionService
	TrackerService      interfaces.PurchaseTracker
	DeadLetterPublisher interfaces.DeadLetterPublisher
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	adapters := []interfaces.AttributionService{
		meta.NewMetaService(cfg.MetaConfig, cfg.ProductConfig, log),
		tiktok.NewTikTokService(cfg.TikTokConfig, cfg.ProductConfig, log),
	}

	// dead-letter publishing only when RabbitMQ is configured
	var deadLetter interfaces.DeadLetterPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		publisher, err := events.NewRabbitMQPublisher(cfg.AppConfig.RabbitMQURL, log, nil)
		if err != nil {
			return nil, err
		}
		deadLetter = publisher
	}

	services := Services{
		PaymentService:      stripe.NewStripeService(cfg.StripeConfig, log),
		AttributionServices: adapters,
		TrackerService: tracker.NewTrackerService(
			adapters,
			cfg.ProductConfig,
			cfg.AppConfig.PublicSiteURL,
			log,
			repos,
			deadLetter,
		),
		DeadLetterPublisher: deadLetter,
	}

	return &services, nil
}
