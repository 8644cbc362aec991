package meta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"golang.org/x/net/context"

	"github.com/customeros/payrelay/config"
	"github.com/customeros/payrelay/dto"
	"github.com/customeros/payrelay/interfaces"
	"github.com/customeros/payrelay/internal/enum"
	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/internal/tracing"
)

// Conversions API reference: https://developers.facebook.com/docs/marketing-api/conversions-api
type metaService struct {
	cfg       *config.MetaConfig
	products  *config.ProductConfig
	log       logger.Logger
	client    *http.Client
	eventName string
}

func NewMetaService(cfg *config.MetaConfig, products *config.ProductConfig, log logger.Logger) interfaces.AttributionService {
	return &metaService{
		cfg:       cfg,
		products:  products,
		log:       log,
		client:    &http.Client{Timeout: 10 * time.Second},
		eventName: "Purchase",
	}
}

func (s *metaService) Provider() enum.AttributionProvider {
	return enum.ProviderMeta
}

// SendPurchaseEvent posts one purchase to the Conversions API. Remote
// failures are downgraded to a logged outcome so the payment flow is never
// blocked by attribution.
func (s *metaService) SendPurchaseEvent(ctx context.Context, event dto.PurchaseEvent) interfaces.DeliveryOutcome {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MetaService.SendPurchaseEvent")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagProvider(span, enum.ProviderMeta.String())
	tracing.TagOrder(span, event.OrderID)

	if !s.cfg.Configured() {
		s.log.Warn("Meta pixel credentials not set, skipping purchase event")
		return interfaces.DeliveryOutcome{
			Provider: enum.ProviderMeta,
			Status:   enum.DeliveryStatusSkipped,
			Reason:   "credentials not configured",
		}
	}

	userData := map[string]interface{}{
		"client_ip_address": event.ClientIP,
		"client_user_agent": event.UserAgent,
	}
	if event.EmailHash != "" {
		userData["em"] = []string{event.EmailHash}
	}

	requestBody := map[string]interface{}{
		"data": []map[string]interface{}{
			{
				"event_name":       s.eventName,
				"event_time":       event.CreatedAt.Unix(),
				"action_source":    "website",
				"event_source_url": event.SourceURL,
				"user_data":        userData,
				"custom_data": map[string]interface{}{
					"currency":     event.Currency,
					"value":        event.Value,
					"content_ids":  []string{s.products.ContentID},
					"content_type": "product",
					"order_id":     event.OrderID,
				},
			},
		},
		// Meta takes the access token in the request body
		"access_token": s.cfg.AccessToken,
	}

	apiURL := fmt.Sprintf("%s/%s/%s/events", s.cfg.Url, s.cfg.APIVersion, s.cfg.PixelID)

	status, httpStatus, reason := postJSON(ctx, s.client, apiURL, nil, requestBody)
	if status == enum.DeliveryStatusFailed {
		tracing.TraceErr(span, errors.New(reason))
		s.log.Warnf("Meta purchase event for order %s not delivered: %s", event.OrderID, reason)
	} else {
		s.log.Infof("Meta purchase event sent for order %s", event.OrderID)
	}

	return interfaces.DeliveryOutcome{
		Provider:   enum.ProviderMeta,
		Status:     status,
		HTTPStatus: httpStatus,
		Reason:     reason,
	}
}

// postJSON performs a single fire-and-forget POST. It never returns an error:
// every failure is folded into the outcome triple.
func postJSON(ctx context.Context, client *http.Client, apiURL string, headers map[string]string, body interface{}) (enum.DeliveryStatus, int, string) {
	requestData, err := json.Marshal(body)
	if err != nil {
		return enum.DeliveryStatusFailed, 0, fmt.Sprintf("failed to marshal request body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return enum.DeliveryStatusFailed, 0, fmt.Sprintf("failed to create HTTP request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return enum.DeliveryStatusFailed, 0, fmt.Sprintf("failed to make API request: %v", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return enum.DeliveryStatusFailed, resp.StatusCode, fmt.Sprintf("failed to read response body: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return enum.DeliveryStatusFailed, resp.StatusCode, fmt.Sprintf("API returned status %d: %s", resp.StatusCode, truncate(string(responseBody), 500))
	}

	return enum.DeliveryStatusSent, resp.StatusCode, ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
