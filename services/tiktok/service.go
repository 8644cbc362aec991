package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/payrelay/config"
	"github.com/customeros/payrelay/dto"
	"github.com/customeros/payrelay/interfaces"
	"github.com/customeros/payrelay/internal/enum"
	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/internal/tracing"
)

// Events API reference: https://business-api.tiktok.com/portal/docs?id=1739585696931842
type tiktokService struct {
	cfg       *config.TikTokConfig
	products  *config.ProductConfig
	log       logger.Logger
	client    *http.Client
	eventName string
}

func NewTikTokService(cfg *config.TikTokConfig, products *config.ProductConfig, log logger.Logger) interfaces.AttributionService {
	return &tiktokService{
		cfg:       cfg,
		products:  products,
		log:       log,
		client:    &http.Client{Timeout: 10 * time.Second},
		eventName: "CompletePayment",
	}
}

func (s *tiktokService) Provider() enum.AttributionProvider {
	return enum.ProviderTikTok
}

// SendPurchaseEvent posts one purchase to the TikTok pixel track API. Remote
// failures never propagate to the caller.
func (s *tiktokService) SendPurchaseEvent(ctx context.Context, event dto.PurchaseEvent) interfaces.DeliveryOutcome {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TikTokService.SendPurchaseEvent")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagProvider(span, enum.ProviderTikTok.String())
	tracing.TagOrder(span, event.OrderID)

	if !s.cfg.Configured() {
		s.log.Warn("TikTok pixel credentials not set, skipping purchase event")
		return interfaces.DeliveryOutcome{
			Provider: enum.ProviderTikTok,
			Status:   enum.DeliveryStatusSkipped,
			Reason:   "credentials not configured",
		}
	}

	user := map[string]interface{}{}
	if event.EmailHash != "" {
		user["email"] = event.EmailHash
	}

	requestBody := map[string]interface{}{
		"pixel_code": s.cfg.PixelCode,
		"event":      s.eventName,
		"event_id":   event.OrderID,
		"timestamp":  event.CreatedAt.Format(time.RFC3339),
		"properties": map[string]interface{}{
			"currency":     event.Currency,
			"value":        event.Value,
			"content_id":   s.products.ContentID,
			"content_type": "product",
		},
		"context": map[string]interface{}{
			"user":       user,
			"ip":         event.ClientIP,
			"user_agent": event.UserAgent,
			"page": map[string]interface{}{
				"url": event.SourceURL,
			},
		},
	}

	outcome := s.post(ctx, requestBody)
	if outcome.Status == enum.DeliveryStatusFailed {
		tracing.TraceErr(span, errors.New(outcome.Reason))
		s.log.Warnf("TikTok purchase event for order %s not delivered: %s", event.OrderID, outcome.Reason)
	} else {
		s.log.Infof("TikTok purchase event sent for order %s", event.OrderID)
	}

	return outcome
}

func (s *tiktokService) post(ctx context.Context, body map[string]interface{}) interfaces.DeliveryOutcome {
	failed := func(httpStatus int, reason string) interfaces.DeliveryOutcome {
		return interfaces.DeliveryOutcome{
			Provider:   enum.ProviderTikTok,
			Status:     enum.DeliveryStatusFailed,
			HTTPStatus: httpStatus,
			Reason:     reason,
		}
	}

	requestData, err := json.Marshal(body)
	if err != nil {
		return failed(0, fmt.Sprintf("failed to marshal request body: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.Url, bytes.NewBuffer(requestData))
	if err != nil {
		return failed(0, fmt.Sprintf("failed to create HTTP request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	// TikTok takes the access token in a custom header
	req.Header.Set("Access-Token", s.cfg.AccessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return failed(0, fmt.Sprintf("failed to make API request: %v", err))
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed(resp.StatusCode, fmt.Sprintf("failed to read response body: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failed(resp.StatusCode, fmt.Sprintf("API returned status %d", resp.StatusCode))
	}

	// TikTok reports application-level errors with a 200 and a non-zero code
	var response struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(responseBody, &response); err != nil {
		return failed(resp.StatusCode, fmt.Sprintf("failed to unmarshal response: %v", err))
	}
	if response.Code != 0 {
		return failed(resp.StatusCode, fmt.Sprintf("API returned code %d: %s", response.Code, response.Message))
	}

	return interfaces.DeliveryOutcome{
		Provider:   enum.ProviderTikTok,
		Status:     enum.DeliveryStatusSent,
		HTTPStatus: resp.StatusCode,
	}
}
