package metrics

import (
	"sync"

	"github.com/jzx17/cpuexec/pkg/types"
)

// GaugeGuard pairs every adjustment of a gauge with its reversal.
// Whatever was added through the guard is subtracted exactly once by Release.
type GaugeGuard struct {
	gauge types.Gauge
	delta float64
	once  sync.Once
}

// NewGaugeGuard creates a guard over gauge. A nil gauge makes the guard a no-op.
func NewGaugeGuard(gauge types.Gauge) *GaugeGuard {
	return &GaugeGuard{gauge: gauge}
}

// Add adjusts the gauge by delta and remembers it for Release
func (g *GaugeGuard) Add(delta float64) {
	if g.gauge == nil {
		return
	}
	g.gauge.Add(delta)
	g.delta += delta
}

// Release reverts everything added through the guard. Later calls do nothing.
func (g *GaugeGuard) Release() {
	g.once.Do(func() {
		if g.gauge != nil && g.delta != 0 {
			g.gauge.Add(-g.delta)
			g.delta = 0
		}
	})
}
