package dto

import "encoding/json"

// Provider webhook event types this service dispatches on.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventCheckoutSessionExpired   = "checkout.session.expired"
	EventPaymentIntentFailed      = "payment_intent.payment_failed"
)

// WebhookEvent is the provider event envelope after parsing or signature
// verification.
type WebhookEvent struct {
	ID   string           `json:"id"`
	Type string           `json:"type"`
	Data WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	Object json.RawMessage `json:"object"`
}

// Session decodes the embedded session object.
func (e *WebhookEvent) Session() (CheckoutSession, error) {
	var session CheckoutSession
	err := json.Unmarshal(e.Data.Object, &session)
	return session, err
}
