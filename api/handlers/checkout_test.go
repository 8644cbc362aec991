package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/payrelay/config"
	"github.com/customeros/payrelay/dto"
	er "github.com/customeros/payrelay/internal/errors"
	"github.com/customeros/payrelay/services"
)

func checkoutRouter(payment *fakePaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		AppConfig:     &config.AppConfig{PublicSiteURL: "https://shop.example.com"},
		ProductConfig: &config.ProductConfig{},
	}
	handler := NewCheckoutHandler(cfg, getLogger(), &services.Services{
		PaymentService: payment,
	})
	r := gin.New()
	r.POST("/api/create-checkout-session", handler.CreateCheckoutSession())
	r.GET("/api/verify-session", handler.VerifySession())
	return r
}

func TestCreateCheckoutSession_ReturnsSessionIdAndUrl(t *testing.T) {
	r := checkoutRouter(&fakePaymentService{
		session: &dto.CheckoutSession{
			ID:  "cs_test_1",
			URL: "https://checkout.stripe.com/c/pay/cs_test_1",
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/create-checkout-session", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "cs_test_1", body["sessionId"])
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", body["url"])
}

func TestCreateCheckoutSession_ProviderFailure(t *testing.T) {
	r := checkoutRouter(&fakePaymentService{
		createErr: errors.New("stripe unavailable"),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/create-checkout-session", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to create checkout session", body["error"])
	assert.Equal(t, "stripe unavailable", body["message"])
}

func TestVerifySession_RequiresSessionId(t *testing.T) {
	r := checkoutRouter(&fakePaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/verify-session", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "session_id is required")
}

func TestVerifySession_UnknownSession(t *testing.T) {
	r := checkoutRouter(&fakePaymentService{
		retrieveErr: er.ErrSessionNotFound,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/verify-session?session_id=cs_missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifySession_PaidSessionIncludesProducts(t *testing.T) {
	r := checkoutRouter(&fakePaymentService{
		session: &dto.CheckoutSession{
			ID:            "cs_test_1",
			AmountTotal:   1400,
			Currency:      "usd",
			PaymentStatus: "paid",
			CustomerDetails: dto.CustomerDetails{
				Email: "a@b.com",
			},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/verify-session?session_id=cs_test_1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["paid"])
	assert.Equal(t, "a@b.com", body["customer_email"])
	assert.Equal(t, 1400.0, body["amount_total"])
	assert.NotEmpty(t, body["products"])
}

func TestVerifySession_UnpaidSessionOmitsProducts(t *testing.T) {
	r := checkoutRouter(&fakePaymentService{
		session: &dto.CheckoutSession{
			ID:            "cs_test_1",
			PaymentStatus: "unpaid",
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/verify-session?session_id=cs_test_1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["paid"])
	_, hasProducts := body["products"]
	assert.False(t, hasProducts)
}
