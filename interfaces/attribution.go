package interfaces

import (
	"context"

	"github.com/customeros/payrelay/dto"
	"github.com/customeros/payrelay/internal/enum"
)

// AttributionService forwards a purchase confirmation to one marketing
// attribution platform. Implementations never propagate remote failures:
// the outcome struct carries them for logging and bookkeeping only.
type AttributionService interface {
	Provider() enum.AttributionProvider
	SendPurchaseEvent(ctx context.Context, event dto.PurchaseEvent) DeliveryOutcome
}

// DeliveryOutcome is the internal result of a single provider call.
type DeliveryOutcome struct {
	Provider   enum.AttributionProvider
	Status     enum.DeliveryStatus
	HTTPStatus int
	Reason     string
}

// PurchaseTracker fans a confirmed purchase out to all attribution providers.
type PurchaseTracker interface {
	// TrackPurchase normalizes the session into a purchase event and notifies
	// every provider concurrently. It never returns an error: attribution must
	// not block or fail the payment flow.
	TrackPurchase(ctx context.Context, session dto.CheckoutSession, meta dto.RequestMeta)
}

// DeliveryRetrier re-sends failed deliveries from the delivery log.
type DeliveryRetrier interface {
	RedeliverFailed(ctx context.Context, maxAttempts int, limit int) (int, error)
}
