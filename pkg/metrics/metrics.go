// Package metrics exposes ledger and HTTP activity as prometheus series.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"farmyield/pkg/events"
)

type Collector struct {
	calls       *prometheus.CounterVec
	staked      prometheus.Counter
	unstaked    prometheus.Counter
	claimed     prometheus.Counter
	shutdowns   prometheus.Counter
	height      prometheus.Gauge
	reqCount    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		calls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "farmyield", Subsystem: "ledger", Name: "events_total",
			Help: "Committed ledger events by topic.",
		}, []string{"topic"}),
		staked: f.NewCounter(prometheus.CounterOpts{
			Namespace: "farmyield", Subsystem: "ledger", Name: "staked_units_total",
			Help: "Units staked into pools.",
		}),
		unstaked: f.NewCounter(prometheus.CounterOpts{
			Namespace: "farmyield", Subsystem: "ledger", Name: "unstaked_units_total",
			Help: "Principal returned to stakers.",
		}),
		claimed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "farmyield", Subsystem: "ledger", Name: "rewards_paid_units_total",
			Help: "Rewards paid by claims.",
		}),
		shutdowns: f.NewCounter(prometheus.CounterOpts{
			Namespace: "farmyield", Subsystem: "ledger", Name: "pool_shutdowns_total",
			Help: "Emergency shutdowns.",
		}),
		height: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "farmyield", Subsystem: "chain", Name: "height",
			Help: "Current block height.",
		}),
		reqCount: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "farmyield", Subsystem: "api", Name: "requests_total",
			Help: "HTTP requests.",
		}, []string{"method", "path", "status"}),
		reqDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "farmyield", Subsystem: "api", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"method", "path"}),
	}
}

// Attach feeds the collector from bus.
func (m *Collector) Attach(bus *events.Bus) error {
	for _, topic := range events.AllTopics {
		if err := bus.Subscribe(topic, m.observe); err != nil {
			return err
		}
	}
	return nil
}

func (m *Collector) observe(ev events.Event) {
	m.calls.WithLabelValues(ev.Topic).Inc()
	switch ev.Topic {
	case events.TopicStaked:
		m.staked.Add(ev.Amount.InexactFloat64())
	case events.TopicUnstaked:
		m.unstaked.Add(ev.Amount.InexactFloat64())
	case events.TopicClaimed:
		m.claimed.Add(ev.Amount.InexactFloat64())
	case events.TopicShutdown:
		m.shutdowns.Inc()
	}
	if ev.Height > 0 {
		m.height.Set(float64(ev.Height))
	}
}

func (m *Collector) SetHeight(h uint64) { m.height.Set(float64(h)) }

// Middleware records request count and latency per route.
func (m *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			method, path := c.Request().Method, c.Path()
			m.reqCount.WithLabelValues(method, path, strconv.Itoa(c.Response().Status)).Inc()
			m.reqDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
