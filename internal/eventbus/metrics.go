package eventbus

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsExporter периодически переносит Stats шины в Prometheus.
// Эндпоинт /metrics обслуживает REST-сервер.
type MetricsExporter struct {
	bus      EventBus
	interval time.Duration
	done     chan struct{}

	published prometheus.Counter
	consumed  prometheus.Counter
	dropped   prometheus.Counter
	inflight  prometheus.Gauge
}

// NewMetricsExporter создаёт экспортер и регистрирует метрики в reg (nil - дефолтный регистр).
func NewMetricsExporter(bus EventBus, reg prometheus.Registerer) *MetricsExporter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	me := &MetricsExporter{
		bus:      bus,
		interval: time.Second,
		done:     make(chan struct{}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_published_total",
			Help:      "Общее число опубликованных сообщений.",
		}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_consumed_total",
			Help:      "Общее число доставленных сообщений подписчикам.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_dropped_total",
			Help:      "Сообщений, отброшенных из-за ошибок или ограничения back-pressure.",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventbus",
			Name:      "messages_inflight",
			Help:      "Количество сообщений, находящихся в очереди (не доставленных).",
		}),
	}

	reg.MustRegister(me.published, me.consumed, me.dropped, me.inflight)
	return me
}

// Run обновляет метрики до отмены ctx. Блокирующий.
func (m *MetricsExporter) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	defer close(m.done)

	// Counter растёт только на дельту относительно прошлого снимка
	var prev Stats
	for {
		select {
		case <-ticker.C:
			prev = m.sync(prev)
		case <-ctx.Done():
			m.sync(prev)
			return
		}
	}
}

// Done закрывается после выхода из Run
func (m *MetricsExporter) Done() <-chan struct{} {
	return m.done
}

func (m *MetricsExporter) sync(prev Stats) Stats {
	stats := m.bus.Metrics()

	if stats.Published > prev.Published {
		m.published.Add(float64(stats.Published - prev.Published))
	}
	if stats.Consumed > prev.Consumed {
		m.consumed.Add(float64(stats.Consumed - prev.Consumed))
	}
	if stats.Dropped > prev.Dropped {
		m.dropped.Add(float64(stats.Dropped - prev.Dropped))
	}
	m.inflight.Set(float64(stats.InFlight))
	return stats
}
