package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gm-carstate/carstate"
	"gm-carstate/utils"
)

var (
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carstate",
		Name:      "cycles_total",
		Help:      "Total processed cycles",
	}, []string{"mode"})

	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carstate",
		Name:      "events_total",
		Help:      "Events emitted, by event name",
	}, []string{"mode", "event"})

	ButtonEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carstate",
		Name:      "button_events_total",
		Help:      "Button presses and releases, by button type",
	}, []string{"mode", "button", "pressed"})

	CycleLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "carstate",
		Name:      "cycle_duration_seconds",
		Help:      "Time spent in one cycle including recording",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	}, []string{"mode"})

	RXFramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carstate",
		Subsystem: "can",
		Name:      "rx_frames_total",
		Help:      "Frames received from the bus",
	}, []string{"iface"})

	DecodeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carstate",
		Subsystem: "can",
		Name:      "decode_errors_total",
		Help:      "Received frames that failed to decode",
	}, []string{"iface"})

	TXFramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carstate",
		Subsystem: "can",
		Name:      "tx_frames_total",
		Help:      "Frames transmitted on the bus",
	}, []string{"iface"})
)

func observeCycle(mode string, out carstate.CarState, took time.Duration) {
	CyclesTotal.WithLabelValues(mode).Inc()
	CycleLatency.WithLabelValues(mode).Observe(took.Seconds())
	for _, ev := range out.Events {
		EventsTotal.WithLabelValues(mode, ev.Name.String()).Inc()
	}
	for _, ev := range out.EnableEvents {
		EventsTotal.WithLabelValues(mode, ev.Name.String()).Inc()
	}
	for _, be := range out.ButtonEvents {
		ButtonEventsTotal.WithLabelValues(mode, be.Type.String(), strconv.FormatBool(be.Pressed)).Inc()
	}
}

// serveMetrics exposes /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, log *utils.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			log.Warn("failed to write health response: %v", err)
		}
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server shutdown: %v", err)
		}
	}()

	go func() {
		log.Info("Serving metrics on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server: %v", err)
		}
	}()
}
