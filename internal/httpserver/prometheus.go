package httpserver

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/session"
)

const metricsNamespace = "unityperf"

// sessionCollector reports the state of the document store at scrape time.
type sessionCollector struct {
	store   *session.Store
	active  *prometheus.Desc
	evicted *prometheus.Desc
	frames  *prometheus.Desc
}

func newSessionCollector(store *session.Store) prometheus.Collector {
	if store == nil {
		return nil
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "sessions", name),
			help,
			nil,
			nil,
		)
	}
	return &sessionCollector{
		store:   store,
		active:  desc("active", "Documents currently held in memory."),
		evicted: desc("evicted_total", "Documents dropped because of idle expiry or capacity."),
		frames:  desc("frames", "Frames across all documents held in memory."),
	}
}

func (c *sessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.active
	ch <- c.evicted
	ch <- c.frames
}

func (c *sessionCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.store.Stats()
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(stats.Sessions))
	ch <- prometheus.MustNewConstMetric(c.evicted, prometheus.CounterValue, float64(stats.Evicted))
	ch <- prometheus.MustNewConstMetric(c.frames, prometheus.GaugeValue, float64(stats.Frames))
}

func (s *Server) registerPrometheus(mux *http.ServeMux) {
	registry := prometheus.NewRegistry()

	counter := func(subsystem, name, help string, value func() float64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, value)
	}

	collectors := []prometheus.Collector{
		counter("documents", "loaded_total", "Telemetry documents accepted.", func() float64 {
			return float64(s.documentsLoaded.Load())
		}),
		counter("documents", "rejected_total", "Telemetry documents rejected as malformed or oversize.", func() float64 {
			return float64(s.documentsRejected.Load())
		}),
		counter("documents", "frames_loaded_total", "Frame records decoded from accepted documents.", func() float64 {
			return float64(s.framesLoaded.Load())
		}),
		counter("charts", "built_total", "Charts derived for JSON and websocket responses.", func() float64 {
			return float64(s.chartsRendered.Load())
		}),
		counter("charts", "images_total", "Chart PNG images rendered.", func() float64 {
			return float64(s.imagesRendered.Load())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "ws",
			Name:      "active_connections",
			Help:      "Current number of active WebSocket clients.",
		}, func() float64 {
			return float64(s.wsActive.Load())
		}),
		counter("ws", "connections_total", "Total WebSocket connections accepted since start.", func() float64 {
			return float64(s.wsTotal.Load())
		}),
		counter("ws", "rejected_total", "Total WebSocket connection attempts rejected due to capacity.", func() float64 {
			return float64(s.wsRejected.Load())
		}),
		counter("ws", "messages_sent_total", "Total WebSocket messages sent to clients.", func() float64 {
			return float64(s.wsSent.Load())
		}),
		counter("ws", "messages_dropped_total", "Total WebSocket messages dropped due to backpressure.", func() float64 {
			return float64(s.wsDropped.Load())
		}),
	}

	if sessions := newSessionCollector(s.store); sessions != nil {
		collectors = append(collectors, sessions)
	}

	for _, collector := range collectors {
		registry.MustRegister(collector)
	}

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
