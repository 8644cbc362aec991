package enum

type AttributionProvider string

const (
	ProviderMeta   AttributionProvider = "meta"
	ProviderTikTok AttributionProvider = "tiktok"
)

func (t AttributionProvider) String() string {
	return string(t)
}

type DeliveryStatus string

const (
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusSkipped DeliveryStatus = "skipped"
	DeliveryStatusFailed  DeliveryStatus = "failed"
)

func (t DeliveryStatus) String() string {
	return string(t)
}
