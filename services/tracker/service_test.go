package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/payrelay/config"
	"github.com/customeros/payrelay/dto"
	"github.com/customeros/payrelay/interfaces"
	"github.com/customeros/payrelay/internal/enum"
	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/internal/utils"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func productConfig() *config.ProductConfig {
	return &config.ProductConfig{
		ContentID:       "prompt-pack",
		DefaultValue:    14.00,
		DefaultCurrency: "USD",
	}
}

type fakeAdapter struct {
	provider enum.AttributionProvider
	delay    time.Duration
	status   enum.DeliveryStatus
	panics   bool

	mu     sync.Mutex
	events []dto.PurchaseEvent
	starts []time.Time
	ends   []time.Time
}

func (f *fakeAdapter) Provider() enum.AttributionProvider {
	return f.provider
}

func (f *fakeAdapter) SendPurchaseEvent(ctx context.Context, event dto.PurchaseEvent) interfaces.DeliveryOutcome {
	f.mu.Lock()
	f.starts = append(f.starts, time.Now())
	f.events = append(f.events, event)
	f.mu.Unlock()

	if f.panics {
		panic("adapter exploded")
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.ends = append(f.ends, time.Now())
	f.mu.Unlock()

	status := f.status
	if status == "" {
		status = enum.DeliveryStatusSent
	}
	return interfaces.DeliveryOutcome{Provider: f.provider, Status: status}
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func (f *fakeAdapter) lastEvent() dto.PurchaseEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

func newTracker(adapters ...interfaces.AttributionService) interfaces.PurchaseTracker {
	return NewTrackerService(adapters, productConfig(), "https://example.com", getLogger(), nil, nil)
}

func TestTrackPurchase_InvokesAllAdaptersOnce(t *testing.T) {
	metaAdapter := &fakeAdapter{provider: enum.ProviderMeta}
	tiktokAdapter := &fakeAdapter{provider: enum.ProviderTikTok}
	tracker := newTracker(metaAdapter, tiktokAdapter)

	session := dto.CheckoutSession{
		ID:          "cs_test_1",
		AmountTotal: 1400,
		Currency:    "usd",
		CustomerDetails: dto.CustomerDetails{
			Email: "a@b.com",
		},
	}

	tracker.TrackPurchase(context.Background(), session, dto.RequestMeta{
		ClientIP:  "203.0.113.7",
		UserAgent: "test-agent",
		SourceURL: "https://shop.example.com/checkout",
	})

	require.Equal(t, 1, metaAdapter.callCount())
	require.Equal(t, 1, tiktokAdapter.callCount())

	event := metaAdapter.lastEvent()
	assert.Equal(t, "cs_test_1", event.OrderID)
	assert.Equal(t, 14.0, event.Value)
	assert.Equal(t, "USD", event.Currency)
	assert.Equal(t, utils.HashEmail("a@b.com"), event.EmailHash)
	assert.Equal(t, "203.0.113.7", event.ClientIP)
	assert.Equal(t, "test-agent", event.UserAgent)
	assert.Equal(t, "https://shop.example.com/checkout", event.SourceURL)

	// both adapters see the same normalized event
	assert.Equal(t, event, tiktokAdapter.lastEvent())
}

func TestTrackPurchase_AppliesDefaults(t *testing.T) {
	adapter := &fakeAdapter{provider: enum.ProviderMeta}
	tracker := newTracker(adapter)

	tracker.TrackPurchase(context.Background(), dto.CheckoutSession{ID: "cs_test_2"}, dto.RequestMeta{})

	event := adapter.lastEvent()
	assert.Equal(t, 14.0, event.Value)
	assert.Equal(t, "USD", event.Currency)
	assert.Equal(t, "unknown", event.ClientIP)
	assert.Equal(t, "unknown", event.UserAgent)
	assert.Equal(t, "https://example.com", event.SourceURL)
	assert.Equal(t, "", event.EmailHash)
}

func TestTrackPurchase_AdaptersRunConcurrently(t *testing.T) {
	metaAdapter := &fakeAdapter{provider: enum.ProviderMeta, delay: 100 * time.Millisecond}
	tiktokAdapter := &fakeAdapter{provider: enum.ProviderTikTok, delay: 100 * time.Millisecond}
	tracker := newTracker(metaAdapter, tiktokAdapter)

	start := time.Now()
	tracker.TrackPurchase(context.Background(), dto.CheckoutSession{ID: "cs_test_3"}, dto.RequestMeta{})
	elapsed := time.Since(start)

	// sequential dispatch would take at least 200ms
	assert.Less(t, elapsed, 190*time.Millisecond)

	// call windows overlap
	require.Equal(t, 1, metaAdapter.callCount())
	require.Equal(t, 1, tiktokAdapter.callCount())
	assert.True(t, metaAdapter.starts[0].Before(tiktokAdapter.ends[0]))
	assert.True(t, tiktokAdapter.starts[0].Before(metaAdapter.ends[0]))
}

func TestTrackPurchase_OneAdapterFailingDoesNotBlockTheOther(t *testing.T) {
	failing := &fakeAdapter{provider: enum.ProviderMeta, status: enum.DeliveryStatusFailed}
	healthy := &fakeAdapter{provider: enum.ProviderTikTok}
	tracker := newTracker(failing, healthy)

	tracker.TrackPurchase(context.Background(), dto.CheckoutSession{ID: "cs_test_4"}, dto.RequestMeta{})

	assert.Equal(t, 1, failing.callCount())
	assert.Equal(t, 1, healthy.callCount())
}

func TestTrackPurchase_PanickingAdapterIsAbsorbed(t *testing.T) {
	panicking := &fakeAdapter{provider: enum.ProviderMeta, panics: true}
	healthy := &fakeAdapter{provider: enum.ProviderTikTok}
	tracker := newTracker(panicking, healthy)

	assert.NotPanics(t, func() {
		tracker.TrackPurchase(context.Background(), dto.CheckoutSession{ID: "cs_test_5"}, dto.RequestMeta{})
	})
	assert.Equal(t, 1, healthy.callCount())
}
