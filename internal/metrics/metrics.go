// Package metrics exposes the bot's Prometheus instrumentation.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Metrics struct {
	UpdatesProcessed     prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
	BookingsCreated      prometheus.Counter
	BookingsCancelled    prometheus.Counter
	SlotToggles          prometheus.Counter
	NotificationsTotal   *prometheus.CounterVec
	ErrorsTotal          prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		UpdatesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slotbot_updates_processed_total",
			Help: "Total Telegram updates processed.",
		}),
		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "slotbot_update_processing_time_seconds",
			Help:    "Time spent processing a single update.",
			Buckets: prometheus.DefBuckets,
		}),
		BookingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slotbot_bookings_created_total",
			Help: "Total appointments created.",
		}),
		BookingsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slotbot_bookings_cancelled_total",
			Help: "Total appointments cancelled by users.",
		}),
		SlotToggles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slotbot_slot_toggles_total",
			Help: "Total admin open/close slot toggles.",
		}),
		NotificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbot_notifications_total",
			Help: "Admin notifications by outcome.",
		}, []string{"outcome"}),
		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slotbot_errors_total",
			Help: "Total handler panics and unexpected errors.",
		}),
	}
}

// Serve starts the /metrics endpoint; it blocks until the server exits.
func Serve(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
