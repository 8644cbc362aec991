package config

import (
	"encoding/json"

	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/internal/tracing"
)

type AppConfig struct {
	APIPort     string `env:"PORT" envDefault:"4242"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	// APIKey guards the manual track-purchase trigger when set
	APIKey      string `env:"API_KEY"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
	// PublicSiteURL is the default event source url reported to attribution
	// providers when the request carries no referer
	PublicSiteURL string `env:"PUBLIC_SITE_URL" envDefault:"https://payrelay.customeros.ai"`
	Logger        *logger.Config
	Tracing       *tracing.JaegerConfig
}

type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	PriceID       string `env:"STRIPE_PRICE_ID"`
	SuccessPath   string `env:"CHECKOUT_SUCCESS_PATH" envDefault:"/success?session_id={CHECKOUT_SESSION_ID}"`
	CancelPath    string `env:"CHECKOUT_CANCEL_PATH" envDefault:"/cancel"`
}

// webhookSecretPlaceholder is the value shipped in .env templates. A secret
// equal to it means signature verification was never really configured.
const webhookSecretPlaceholder = "whsec_placeholder"

// WebhookVerificationEnabled reports whether a real signing secret is set.
func (c *StripeConfig) WebhookVerificationEnabled() bool {
	return c.WebhookSecret != "" && c.WebhookSecret != webhookSecretPlaceholder
}

type MetaConfig struct {
	PixelID     string `env:"META_PIXEL_ID"`
	AccessToken string `env:"META_ACCESS_TOKEN"`
	APIVersion  string `env:"META_API_VERSION" envDefault:"v18.0"`
	Url         string `env:"META_API_URL" envDefault:"https://graph.facebook.com"`
}

func (c *MetaConfig) Configured() bool {
	return c.PixelID != "" && c.AccessToken != ""
}

type TikTokConfig struct {
	PixelCode   string `env:"TIKTOK_PIXEL_CODE"`
	AccessToken string `env:"TIKTOK_ACCESS_TOKEN"`
	Url         string `env:"TIKTOK_API_URL" envDefault:"https://business-api.tiktok.com/open_api/v1.2/pixel/track/"`
}

func (c *TikTokConfig) Configured() bool {
	return c.PixelCode != "" && c.AccessToken != ""
}

type ProductConfig struct {
	ContentID       string  `env:"PRODUCT_CONTENT_ID" envDefault:"prompt-pack"`
	DefaultValue    float64 `env:"PRODUCT_DEFAULT_VALUE" envDefault:"14.00"`
	DefaultCurrency string  `env:"PRODUCT_DEFAULT_CURRENCY" envDefault:"USD"`
	// ProductsJSON overrides the built-in catalog when set
	ProductsJSON string `env:"PRODUCTS_JSON"`
}

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
}

var defaultProducts = []Product{
	{
		ID:          "prompt-pack",
		Name:        "Prompt Pack",
		Description: "Complete prompt pack with lifetime updates",
		Price:       14.00,
		Currency:    "USD",
	},
}

// Products returns the static catalog. Configured once, read-only afterwards.
func (c *ProductConfig) Products() []Product {
	if c.ProductsJSON == "" {
		return defaultProducts
	}
	var products []Product
	if err := json.Unmarshal([]byte(c.ProductsJSON), &products); err != nil || len(products) == 0 {
		return defaultProducts
	}
	return products
}

type PayRelayDatabaseConfig struct {
	Host            string `env:"PAYRELAY_POSTGRES_HOST"`
	Port            string `env:"PAYRELAY_POSTGRES_PORT" envDefault:"5432"`
	User            string `env:"PAYRELAY_POSTGRES_USER"`
	DBName          string `env:"PAYRELAY_POSTGRES_DB_NAME"`
	Password        string `env:"PAYRELAY_POSTGRES_PASSWORD"`
	MaxConn         int    `env:"PAYRELAY_POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"PAYRELAY_POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"PAYRELAY_POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"PAYRELAY_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"PAYRELAY_POSTGRES_SSL_MODE" envDefault:"disable"`
}

// Configured reports whether the optional delivery log database is set up.
func (c *PayRelayDatabaseConfig) Configured() bool {
	return c.Host != ""
}
