package dto

import "time"

// CheckoutSession is the slice of the provider's session object this service
// reads. The raw payload is never mutated, only decoded into this shape.
type CheckoutSession struct {
	ID              string          `json:"id"`
	AmountTotal     int64           `json:"amount_total"`
	Currency        string          `json:"currency"`
	PaymentStatus   string          `json:"payment_status"`
	URL             string          `json:"url,omitempty"`
	CustomerDetails CustomerDetails `json:"customer_details"`
}

type CustomerDetails struct {
	Email string `json:"email"`
}

// RequestMeta carries best-effort request context for attribution.
type RequestMeta struct {
	ClientIP  string `json:"clientIp"`
	UserAgent string `json:"userAgent"`
	SourceURL string `json:"sourceUrl"`
}

// PurchaseEvent is the canonical purchase record handed to the attribution
// adapters. Constructed once per webhook delivery, immutable afterwards.
// The raw email is kept in-process only; adapters and any serialized copy
// see the SHA-256 hash.
type PurchaseEvent struct {
	OrderID   string    `json:"orderId"`
	Email     string    `json:"-"`
	EmailHash string    `json:"emailHash,omitempty"`
	Value     float64   `json:"value"`
	Currency  string    `json:"currency"`
	SourceURL string    `json:"sourceUrl"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
}
