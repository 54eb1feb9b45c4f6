package indicator

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/greenplate/ordering/internal/log"
)

// DefaultPulseWindow matches the storefront badge animation duration.
const DefaultPulseWindow = 300 * time.Millisecond

// Indicator is a lightweight observer over the cart's total item count. It
// owns no cart state beyond the previously seen count, used only to detect a
// change and gate the pulse animation window.
type Indicator struct {
	mu          sync.Mutex
	lastCount   int
	pulseUntil  time.Time
	pulseWindow time.Duration

	itemsGauge  prometheus.Gauge
	pulsesTotal prometheus.Counter
}

func New(reg prometheus.Registerer, pulseWindow time.Duration) *Indicator {
	if pulseWindow <= 0 {
		pulseWindow = DefaultPulseWindow
	}
	i := &Indicator{
		pulseWindow: pulseWindow,
		itemsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "greenplate_cart_items",
			Help: "Current total item count in the cart.",
		}),
		pulsesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "greenplate_cart_indicator_pulses_total",
			Help: "Number of badge pulses triggered by item count changes.",
		}),
	}
	if reg != nil {
		reg.MustRegister(i.itemsGauge, i.pulsesTotal)
	}
	return i
}

// Run consumes count updates until the context is done.
func (i *Indicator) Run(c context.Context, updates <-chan int) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartIndicator Run").
		Logger()

	logger.Info().Msg("watching cart item count")
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stopped watching cart item count")
			return
		case count := <-updates:
			i.Observe(count)
		}
	}
}

// Observe records a count reading, starting a pulse when it differs from the
// previous one. An unchanged count never pulses.
func (i *Indicator) Observe(count int) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.itemsGauge.Set(float64(count))
	if count == i.lastCount {
		return
	}
	i.lastCount = count
	i.pulseUntil = time.Now().Add(i.pulseWindow)
	i.pulsesTotal.Inc()
}

// Snapshot returns the last observed count and whether the badge is still
// inside its pulse window.
func (i *Indicator) Snapshot() (count int, pulsing bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastCount, time.Now().Before(i.pulseUntil)
}
