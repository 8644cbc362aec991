package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/payrelay/config"
	"github.com/customeros/payrelay/dto"
	"github.com/customeros/payrelay/interfaces"
	"github.com/customeros/payrelay/internal/enum"
	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/internal/metrics"
	"github.com/customeros/payrelay/internal/models"
	"github.com/customeros/payrelay/internal/repository"
	"github.com/customeros/payrelay/internal/tracing"
	"github.com/customeros/payrelay/internal/utils"
)

type trackerService struct {
	adapters   []interfaces.AttributionService
	products   *config.ProductConfig
	siteURL    string
	log        logger.Logger
	repos      *repository.Repositories        // nil when no database is configured
	deadLetter interfaces.DeadLetterPublisher // nil when RabbitMQ is not configured
}

func NewTrackerService(
	adapters []interfaces.AttributionService,
	products *config.ProductConfig,
	siteURL string,
	log logger.Logger,
	repos *repository.Repositories,
	deadLetter interfaces.DeadLetterPublisher,
) interfaces.PurchaseTracker {
	return &trackerService{
		adapters:   adapters,
		products:   products,
		siteURL:    siteURL,
		log:        log,
		repos:      repos,
		deadLetter: deadLetter,
	}
}

// TrackPurchase normalizes the session and notifies every attribution
// provider concurrently. One provider's latency or outage must not delay or
// block the other, and no failure ever reaches the caller.
func (s *trackerService) TrackPurchase(ctx context.Context, session dto.CheckoutSession, meta dto.RequestMeta) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TrackerService.TrackPurchase")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagOrder(span, session.ID)

	event := s.normalize(session, meta)
	tracing.LogObjectAsJson(span, "purchaseEvent", event)

	outcomes := make([]interfaces.DeliveryOutcome, len(s.adapters))

	var wg sync.WaitGroup
	for i, adapter := range s.adapters {
		wg.Add(1)
		go func(i int, adapter interfaces.AttributionService) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.log.Errorf("panic in %s attribution dispatch: %v\n%s", adapter.Provider(), r, debug.Stack())
					outcomes[i] = interfaces.DeliveryOutcome{
						Provider: adapter.Provider(),
						Status:   enum.DeliveryStatusFailed,
						Reason:   fmt.Sprintf("panic: %v", r),
					}
				}
			}()

			start := time.Now()
			outcomes[i] = adapter.SendPurchaseEvent(ctx, event)
			metrics.AttributionDeliveryDuration.
				WithLabelValues(adapter.Provider().String()).
				Observe(time.Since(start).Seconds())
		}(i, adapter)
	}
	wg.Wait()

	for _, outcome := range outcomes {
		s.bookkeep(ctx, event, outcome)
	}
}

func (s *trackerService) normalize(session dto.CheckoutSession, meta dto.RequestMeta) dto.PurchaseEvent {
	value := s.products.DefaultValue
	if session.AmountTotal > 0 {
		value = float64(session.AmountTotal) / 100
	}

	currency := strings.ToUpper(session.Currency)
	if currency == "" {
		currency = s.products.DefaultCurrency
	}

	sourceURL := meta.SourceURL
	if sourceURL == "" {
		sourceURL = s.siteURL
	}

	return dto.PurchaseEvent{
		OrderID:   session.ID,
		Email:     session.CustomerDetails.Email,
		EmailHash: utils.HashEmail(session.CustomerDetails.Email),
		Value:     value,
		Currency:  currency,
		SourceURL: sourceURL,
		ClientIP:  valueOrUnknown(meta.ClientIP),
		UserAgent: valueOrUnknown(meta.UserAgent),
		CreatedAt: utils.Now(),
	}
}

// bookkeep records one outcome: metrics always, delivery log and dead-letter
// only when configured. Bookkeeping errors are themselves absorbed.
func (s *trackerService) bookkeep(ctx context.Context, event dto.PurchaseEvent, outcome interfaces.DeliveryOutcome) {
	metrics.AttributionDeliveries.
		WithLabelValues(outcome.Provider.String(), outcome.Status.String()).
		Inc()

	if outcome.Status == enum.DeliveryStatusSkipped {
		return
	}

	if s.repos != nil {
		payload, err := json.Marshal(event)
		if err != nil {
			s.log.Error("failed to marshal purchase event for delivery log", err)
			payload = nil
		}

		delivery := &models.AttributionDelivery{
			OrderID:      event.OrderID,
			Provider:     outcome.Provider.String(),
			Status:       outcome.Status.String(),
			Attempts:     1,
			EventPayload: string(payload),
		}
		if outcome.Status == enum.DeliveryStatusFailed {
			delivery.LastError = outcome.Reason
			delivery.ErrorLog = []string{outcome.Reason}
		}

		if _, err := s.repos.AttributionDeliveryRepository.Create(ctx, delivery); err != nil {
			s.log.Error("failed to record attribution delivery", err)
		}
	}

	if outcome.Status == enum.DeliveryStatusFailed && s.deadLetter != nil {
		err := s.deadLetter.PublishDeadLetter(ctx, dto.FailedDelivery{
			ID:       uuid.NewString(),
			Provider: outcome.Provider.String(),
			Reason:   outcome.Reason,
			Event:    event,
		})
		if err != nil {
			s.log.Error("failed to publish dead letter", err)
		}
	}
}

// RedeliverFailed re-sends failed deliveries from the log, bounded by
// maxAttempts. Only reachable from the retry cron, which is itself gated on
// the database being configured.
func (s *trackerService) RedeliverFailed(ctx context.Context, maxAttempts int, limit int) (int, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TrackerService.RedeliverFailed")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	if s.repos == nil {
		return 0, errors.New("delivery log is not configured")
	}

	deliveries, err := s.repos.AttributionDeliveryRepository.ListRetryable(ctx, maxAttempts, limit)
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}

	redelivered := 0
	for _, delivery := range deliveries {
		adapter := s.adapterFor(delivery.Provider)
		if adapter == nil {
			continue
		}

		var event dto.PurchaseEvent
		if err := json.Unmarshal([]byte(delivery.EventPayload), &event); err != nil {
			s.log.Errorf("failed to decode stored purchase event %s: %v", delivery.ID, err)
			continue
		}

		outcome := adapter.SendPurchaseEvent(ctx, event)
		metrics.AttributionDeliveries.
			WithLabelValues(outcome.Provider.String(), outcome.Status.String()).
			Inc()

		if err := s.repos.AttributionDeliveryRepository.RecordAttempt(ctx, delivery.ID, outcome.Status.String(), outcome.Reason); err != nil {
			s.log.Error("failed to record redelivery attempt", err)
		}
		if outcome.Status == enum.DeliveryStatusSent {
			redelivered++
		}
	}

	span.LogKV("retryable", len(deliveries), "redelivered", redelivered)
	return redelivered, nil
}

func (s *trackerService) adapterFor(provider string) interfaces.AttributionService {
	for _, adapter := range s.adapters {
		if adapter.Provider().String() == provider {
			return adapter
		}
	}
	return nil
}

func valueOrUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
