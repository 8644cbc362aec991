package interfaces

import (
	"context"

	"github.com/customeros/payrelay/dto"
)

// PaymentService wraps the hosted-checkout provider SDK.
type PaymentService interface {
	// CreateCheckoutSession starts a hosted checkout flow. Redirect URLs are
	// derived from the caller's origin.
	CreateCheckoutSession(ctx context.Context, origin string) (*dto.CheckoutSession, error)

	// RetrieveSession fetches a session by id. Returns ErrSessionNotFound when
	// the provider does not know the id.
	RetrieveSession(ctx context.Context, sessionID string) (*dto.CheckoutSession, error)

	// ConstructWebhookEvent verifies the raw payload against the signature
	// header and decodes the event envelope.
	ConstructWebhookEvent(payload []byte, signature string) (*dto.WebhookEvent, error)

	// SignatureVerificationEnabled reports whether a real signing secret is
	// configured. When false the webhook handler parses bodies unverified.
	SignatureVerificationEnabled() bool
}
