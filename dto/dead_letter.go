package dto

// FailedDelivery is published to the dead-letter exchange when an attribution
// provider call fails and RabbitMQ is configured.
type FailedDelivery struct {
	ID       string        `json:"id"`
	Provider string        `json:"provider"`
	Reason   string        `json:"reason"`
	Event    PurchaseEvent `json:"event"`
}
