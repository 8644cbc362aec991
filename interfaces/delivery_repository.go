package interfaces

import (
	"context"

	"github.com/customeros/payrelay/internal/models"
)

// AttributionDeliveryRepository keeps the optional delivery log. The relay
// runs stateless when no database is configured; every method is only reached
// behind that configuration gate.
type AttributionDeliveryRepository interface {
	Create(ctx context.Context, delivery *models.AttributionDelivery) (string, error)
	RecordAttempt(ctx context.Context, id string, status string, attemptErr string) error
	ListRetryable(ctx context.Context, maxAttempts int, limit int) ([]models.AttributionDelivery, error)
}
