// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rolelog/rolelog-go/pkg/rolelog"
	"github.com/rolelog/rolelog-go/pkg/rolelog/event"
)

const namespace = "rolelog"

// Metrics counts pipeline activity. It implements rolelog.Observer.
type Metrics struct {
	registry *prometheus.Registry

	lines        prometheus.Counter
	events       *prometheus.CounterVec
	written      prometheus.Counter
	appendErrors prometheus.Counter
}

// New creates the counters on a private registry, so several instances
// (tests) do not collide on the global one.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_total",
			Help:      "Server log lines processed",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Role events recognized, by kind and filter decision",
		}, []string{"kind", "decision"}),
		written: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Records appended to the role log",
		}),
		appendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "append_errors_total",
			Help:      "Records that could not be appended",
		}),
	}
	m.registry.MustRegister(m.lines, m.events, m.written, m.appendErrors)
	return m
}

func (m *Metrics) LineProcessed() { m.lines.Inc() }

func (m *Metrics) EventClassified(kind event.Kind, d rolelog.Decision) {
	m.events.WithLabelValues(string(kind), d.String()).Inc()
}

func (m *Metrics) RecordWritten() { m.written.Inc() }

func (m *Metrics) AppendFailed() { m.appendErrors.Inc() }

// Registry returns the registry the counters are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the counters in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics and /healthz on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

var _ rolelog.Observer = (*Metrics)(nil)
