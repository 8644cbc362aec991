package stripe

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	stripesdk "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/customeros/payrelay/config"
	"github.com/customeros/payrelay/dto"
	"github.com/customeros/payrelay/interfaces"
	er "github.com/customeros/payrelay/internal/errors"
	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/internal/tracing"
)

type stripeService struct {
	cfg    *config.StripeConfig
	log    logger.Logger
	client *client.API
}

func NewStripeService(cfg *config.StripeConfig, log logger.Logger) interfaces.PaymentService {
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)

	return &stripeService{
		cfg:    cfg,
		log:    log,
		client: sc,
	}
}

// CreateCheckoutSession starts a hosted checkout flow for the configured price
func (s *stripeService) CreateCheckoutSession(ctx context.Context, origin string) (*dto.CheckoutSession, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "StripeService.CreateCheckoutSession")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("origin", origin)

	if s.cfg.SecretKey == "" {
		tracing.TraceErr(span, er.ErrProviderNotConfigured)
		return nil, er.ErrProviderNotConfigured
	}

	params := &stripesdk.CheckoutSessionParams{
		Mode: stripesdk.String(string(stripesdk.CheckoutSessionModePayment)),
		LineItems: []*stripesdk.CheckoutSessionLineItemParams{
			{
				Price:    stripesdk.String(s.cfg.PriceID),
				Quantity: stripesdk.Int64(1),
			},
		},
		SuccessURL: stripesdk.String(origin + s.cfg.SuccessPath),
		CancelURL:  stripesdk.String(origin + s.cfg.CancelPath),
	}

	sess, err := s.client.CheckoutSessions.New(params)
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "failed to create checkout session"))
		s.log.Error("failed to create checkout session", err)
		return nil, err
	}
	span.LogKV("sessionId", sess.ID)

	return mapSession(sess), nil
}

// RetrieveSession fetches a checkout session by id
func (s *stripeService) RetrieveSession(ctx context.Context, sessionID string) (*dto.CheckoutSession, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "StripeService.RetrieveSession")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("sessionId", sessionID)

	if s.cfg.SecretKey == "" {
		tracing.TraceErr(span, er.ErrProviderNotConfigured)
		return nil, er.ErrProviderNotConfigured
	}

	sess, err := s.client.CheckoutSessions.Get(sessionID, nil)
	if err != nil {
		var stripeErr *stripesdk.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripesdk.ErrorCodeResourceMissing {
			tracing.TraceErr(span, er.ErrSessionNotFound)
			return nil, er.ErrSessionNotFound
		}
		tracing.TraceErr(span, errors.Wrap(err, "failed to retrieve checkout session"))
		s.log.Error("failed to retrieve checkout session", err)
		return nil, err
	}

	return mapSession(sess), nil
}

// ConstructWebhookEvent verifies the raw payload against the signature header
func (s *stripeService) ConstructWebhookEvent(payload []byte, signature string) (*dto.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return nil, err
	}

	return &dto.WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
		Data: dto.WebhookEventData{Object: event.Data.Raw},
	}, nil
}

func (s *stripeService) SignatureVerificationEnabled() bool {
	return s.cfg.WebhookVerificationEnabled()
}

func mapSession(sess *stripesdk.CheckoutSession) *dto.CheckoutSession {
	mapped := &dto.CheckoutSession{
		ID:            sess.ID,
		AmountTotal:   sess.AmountTotal,
		Currency:      string(sess.Currency),
		PaymentStatus: string(sess.PaymentStatus),
		URL:           sess.URL,
	}
	if sess.CustomerDetails != nil {
		mapped.CustomerDetails.Email = sess.CustomerDetails.Email
	}
	return mapped
}
