// Package metrics exposes the overlay's readings and refresh-loop activity
// to Prometheus. Every Recorder method is safe on a nil receiver so the
// overlay can run without metrics.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dicklesworthstone/battnet/internal/model"
)

const namespace = "battnet"

// Recorder holds the collectors updated from the refresh loop.
type Recorder struct {
	batteryPercent prometheus.Gauge
	batteryPlugged prometheus.Gauge
	batteryPresent prometheus.Gauge
	throughput     *prometheus.GaugeVec
	cpuPercent     prometheus.Gauge
	ticks          *prometheus.CounterVec
	repaints       *prometheus.CounterVec
	sampleErrors   *prometheus.CounterVec
}

// NewRecorder registers all collectors with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		batteryPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "battery", Name: "percent",
			Help: "Last battery charge percentage.",
		}),
		batteryPlugged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "battery", Name: "plugged",
			Help: "1 when the battery is on AC power.",
		}),
		batteryPresent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "battery", Name: "present",
			Help: "1 when a battery was detected.",
		}),
		throughput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "network", Name: "kbps",
			Help: "Last computed network throughput in kilobits per second.",
		}, []string{"direction"}),
		cpuPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "cpu", Name: "percent",
			Help: "Last all-core CPU utilization sample.",
		}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "ticks_total",
			Help: "Refresh ticks executed per task.",
		}, []string{"task"}),
		repaints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "repaints_total",
			Help: "Surface repaints per element.",
		}, []string{"element"}),
		sampleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sample_errors_total",
			Help: "Transient sampler failures per source.",
		}, []string{"source"}),
	}
	for _, c := range []prometheus.Collector{
		r.batteryPercent, r.batteryPlugged, r.batteryPresent,
		r.throughput, r.cpuPercent, r.ticks, r.repaints, r.sampleErrors,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) ObserveBattery(b model.BatteryState) {
	if r == nil {
		return
	}
	r.batteryPresent.Set(boolFloat(b.Available))
	if !b.Available {
		return
	}
	r.batteryPercent.Set(float64(b.Percent))
	r.batteryPlugged.Set(boolFloat(b.Charging))
}

func (r *Recorder) ObserveThroughput(t model.Throughput) {
	if r == nil {
		return
	}
	r.throughput.WithLabelValues(model.Upload.String()).Set(t.UploadKbps)
	r.throughput.WithLabelValues(model.Download.String()).Set(t.DownloadKbps)
}

func (r *Recorder) ObserveCPU(pct float64) {
	if r == nil {
		return
	}
	r.cpuPercent.Set(pct)
}

func (r *Recorder) Tick(task string) {
	if r == nil {
		return
	}
	r.ticks.WithLabelValues(task).Inc()
}

func (r *Recorder) Repaint(element string) {
	if r == nil {
		return
	}
	r.repaints.WithLabelValues(element).Inc()
}

func (r *Recorder) SampleError(source string) {
	if r == nil {
		return
	}
	r.sampleErrors.WithLabelValues(source).Inc()
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Handler routes /metrics and /healthz.
func Handler(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return r
}

// Serve listens on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger = logger.With("component", "metrics")

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
			return err
		}
		logger.Info("metrics server stopped")
		return nil
	}
}
