package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookVerificationEnabled(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		enabled bool
	}{
		{"empty secret", "", false},
		{"template placeholder", "whsec_placeholder", false},
		{"real secret", "whsec_51abc123", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &StripeConfig{WebhookSecret: tt.secret}
			assert.Equal(t, tt.enabled, cfg.WebhookVerificationEnabled())
		})
	}
}

func TestPixelConfigured(t *testing.T) {
	assert.False(t, (&MetaConfig{}).Configured())
	assert.False(t, (&MetaConfig{PixelID: "123"}).Configured())
	assert.True(t, (&MetaConfig{PixelID: "123", AccessToken: "tok"}).Configured())

	assert.False(t, (&TikTokConfig{}).Configured())
	assert.False(t, (&TikTokConfig{AccessToken: "tok"}).Configured())
	assert.True(t, (&TikTokConfig{PixelCode: "PIX", AccessToken: "tok"}).Configured())
}

func TestProducts_DefaultCatalog(t *testing.T) {
	products := (&ProductConfig{}).Products()

	require.Len(t, products, 1)
	assert.Equal(t, "prompt-pack", products[0].ID)
	assert.Equal(t, 14.00, products[0].Price)
	assert.Equal(t, "USD", products[0].Currency)
}

func TestProducts_JSONOverride(t *testing.T) {
	cfg := &ProductConfig{
		ProductsJSON: `[{"id":"bundle","name":"Bundle","price":29.0,"currency":"EUR"}]`,
	}

	products := cfg.Products()

	require.Len(t, products, 1)
	assert.Equal(t, "bundle", products[0].ID)
	assert.Equal(t, 29.0, products[0].Price)
}

func TestProducts_InvalidJSONFallsBack(t *testing.T) {
	cfg := &ProductConfig{ProductsJSON: `{broken`}

	products := cfg.Products()

	require.Len(t, products, 1)
	assert.Equal(t, "prompt-pack", products[0].ID)
}
