package interfaces

import (
	"context"

	"github.com/customeros/payrelay/dto"
)

// DeadLetterPublisher records attribution deliveries that exhausted their
// in-process attempt so an external consumer can replay them.
type DeadLetterPublisher interface {
	PublishDeadLetter(ctx context.Context, delivery dto.FailedDelivery) error
	Close() error
}
