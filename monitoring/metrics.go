package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sarchlab/memplace/instrumentation/hooking"
	"github.com/sarchlab/memplace/placement"
)

// Metrics exports the placement activity of an address space as Prometheus
// metrics. It is a hook; attach it to the address space it observes.
type Metrics struct {
	allocations   *prometheus.CounterVec
	releases      prometheus.Counter
	releasedUnits prometheus.Counter
	used          prometheus.Gauge
	free          prometheus.Gauge
	holes         prometheus.Gauge
	largestHole   prometheus.Gauge
	fragmentation prometheus.Gauge
}

// NewMetrics creates the placement metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memplace",
			Name:      "allocations_total",
			Help:      "Number of allocation requests by policy and outcome.",
		}, []string{"policy", "outcome"}),
		releases: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memplace",
			Name:      "releases_total",
			Help:      "Number of release requests.",
		}),
		releasedUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memplace",
			Name:      "released_units_total",
			Help:      "Number of address units returned by releases.",
		}),
		used: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "memplace",
			Name:      "used_units",
			Help:      "Address units covered by regions.",
		}),
		free: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "memplace",
			Name:      "free_units",
			Help:      "Address units not covered by any region.",
		}),
		holes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "memplace",
			Name:      "holes",
			Help:      "Number of maximal free runs.",
		}),
		largestHole: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "memplace",
			Name:      "largest_hole_units",
			Help:      "Length of the largest free run.",
		}),
		fragmentation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "memplace",
			Name:      "external_fragmentation_ratio",
			Help:      "1 - largest hole / free units.",
		}),
	}

	reg.MustRegister(
		m.allocations,
		m.releases,
		m.releasedUnits,
		m.used,
		m.free,
		m.holes,
		m.largestHole,
		m.fragmentation,
	)

	return m
}

// Func updates the metrics from an address space hook.
func (m *Metrics) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case placement.HookPosAllocated:
		detail := ctx.Detail.(placement.AllocationDetail)
		m.allocations.WithLabelValues(
			detail.Request.Policy.String(), "placed").Inc()
	case placement.HookPosAllocationFailed:
		req := ctx.Item.(placement.Request)
		detail := ctx.Detail.(placement.FailureDetail)
		m.allocations.WithLabelValues(
			req.Policy.String(), outcomeLabel(detail.Reason)).Inc()
	case placement.HookPosReleased:
		m.releases.Inc()

		for _, r := range ctx.Detail.([]placement.Region) {
			m.releasedUnits.Add(float64(r.Length))
		}
	default:
		return
	}

	if space, ok := ctx.Domain.(*placement.AddressSpace); ok {
		m.Observe(space.Stats())
	}
}

// Observe sets the occupancy gauges.
func (m *Metrics) Observe(st placement.Stats) {
	m.used.Set(float64(st.Used))
	m.free.Set(float64(st.Free))
	m.holes.Set(float64(st.NumHoles))
	m.largestHole.Set(float64(st.LargestHole))
	m.fragmentation.Set(st.ExternalFragmentation)
}

func outcomeLabel(reason placement.FailureReason) string {
	switch reason {
	case placement.InsufficientSpace:
		return "insufficient_space"
	case placement.InvalidRequest:
		return "invalid_request"
	default:
		return "failed"
	}
}
