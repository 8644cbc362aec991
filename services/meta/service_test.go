package meta

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/payrelay/config"
	"github.com/customeros/payrelay/dto"
	"github.com/customeros/payrelay/internal/enum"
	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/internal/utils"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func testEvent() dto.PurchaseEvent {
	return dto.PurchaseEvent{
		OrderID:   "cs_test_1",
		EmailHash: utils.HashEmail("a@b.com"),
		Value:     14.0,
		Currency:  "USD",
		SourceURL: "https://shop.example.com",
		ClientIP:  "203.0.113.7",
		UserAgent: "test-agent",
		CreatedAt: time.Now().UTC(),
	}
}

func newService(url string) *metaService {
	cfg := &config.MetaConfig{
		PixelID:     "123456",
		AccessToken: "meta-token",
		APIVersion:  "v18.0",
		Url:         url,
	}
	products := &config.ProductConfig{ContentID: "prompt-pack"}
	return NewMetaService(cfg, products, getLogger()).(*metaService)
}

func TestSendPurchaseEvent_BuildsConversionsPayload(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"events_received":1}`))
	}))
	defer ts.Close()

	outcome := newService(ts.URL).SendPurchaseEvent(context.Background(), testEvent())

	assert.Equal(t, enum.ProviderMeta, outcome.Provider)
	assert.Equal(t, enum.DeliveryStatusSent, outcome.Status)
	assert.Equal(t, http.StatusOK, outcome.HTTPStatus)

	assert.Equal(t, "/v18.0/123456/events", gotPath)
	// access token travels in the body, not a header
	assert.Equal(t, "meta-token", gotBody["access_token"])

	data := gotBody["data"].([]interface{})
	require.Len(t, data, 1)
	payload := data[0].(map[string]interface{})

	assert.Equal(t, "Purchase", payload["event_name"])
	assert.Equal(t, "website", payload["action_source"])
	assert.Equal(t, "https://shop.example.com", payload["event_source_url"])
	// unix seconds, not a formatted string
	_, isNumber := payload["event_time"].(float64)
	assert.True(t, isNumber)

	userData := payload["user_data"].(map[string]interface{})
	hashes := userData["em"].([]interface{})
	require.Len(t, hashes, 1)
	assert.Equal(t, utils.HashEmail("a@b.com"), hashes[0])
	assert.Equal(t, "203.0.113.7", userData["client_ip_address"])
	assert.Equal(t, "test-agent", userData["client_user_agent"])

	customData := payload["custom_data"].(map[string]interface{})
	assert.Equal(t, "USD", customData["currency"])
	assert.Equal(t, 14.0, customData["value"])
	assert.Equal(t, "cs_test_1", customData["order_id"])
	assert.Equal(t, []interface{}{"prompt-pack"}, customData["content_ids"])
}

func TestSendPurchaseEvent_OmitsEmailWhenMissing(t *testing.T) {
	var gotBody map[string]interface{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"events_received":1}`))
	}))
	defer ts.Close()

	event := testEvent()
	event.EmailHash = ""
	outcome := newService(ts.URL).SendPurchaseEvent(context.Background(), event)

	assert.Equal(t, enum.DeliveryStatusSent, outcome.Status)
	userData := gotBody["data"].([]interface{})[0].(map[string]interface{})["user_data"].(map[string]interface{})
	_, present := userData["em"]
	assert.False(t, present)
}

func TestSendPurchaseEvent_SkipsWithoutCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected when credentials are unset")
	}))
	defer ts.Close()

	service := NewMetaService(&config.MetaConfig{Url: ts.URL}, &config.ProductConfig{}, getLogger())
	outcome := service.SendPurchaseEvent(context.Background(), testEvent())

	assert.Equal(t, enum.DeliveryStatusSkipped, outcome.Status)
}

func TestSendPurchaseEvent_RemoteFailureIsAbsorbed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"bad token"}}`))
	}))
	defer ts.Close()

	var outcome = newService(ts.URL).SendPurchaseEvent(context.Background(), testEvent())

	assert.Equal(t, enum.DeliveryStatusFailed, outcome.Status)
	assert.Equal(t, http.StatusForbidden, outcome.HTTPStatus)
	assert.Contains(t, outcome.Reason, "403")
}

func TestSendPurchaseEvent_NetworkErrorIsAbsorbed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	outcome := newService(ts.URL).SendPurchaseEvent(context.Background(), testEvent())

	assert.Equal(t, enum.DeliveryStatusFailed, outcome.Status)
	assert.NotEmpty(t, outcome.Reason)
}
