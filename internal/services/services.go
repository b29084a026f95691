// Package services implements the demo HTTP services used to exercise the
// trace pipeline. A request to service-one calls service-two, which calls
// service-mastra, and each hop propagates the trace context.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Service names, also used as the path each service responds on.
const (
	ServiceOne    = "service-one"
	ServiceTwo    = "service-two"
	ServiceMastra = "service-mastra"
)

// Names lists the services in call order.
var Names = []string{ServiceOne, ServiceTwo, ServiceMastra}

// DefaultPort returns the port a service listens on by default.
func DefaultPort(name string) int {
	switch name {
	case ServiceOne:
		return 3000
	case ServiceTwo:
		return 3001
	case ServiceMastra:
		return 4111
	}
	return 0
}

// Downstream returns the service called by name, or an empty string for the
// last service in the chain.
func Downstream(name string) string {
	switch name {
	case ServiceOne:
		return ServiceTwo
	case ServiceTwo:
		return ServiceMastra
	}
	return ""
}

// Options configures a service handler.
type Options struct {
	// DownstreamURL is the base URL of the service this one calls. Defaults to
	// the downstream service on localhost.
	DownstreamURL string

	Client         *http.Client
	Logger         *slog.Logger
	Registry       *prometheus.Registry
	TracerProvider trace.TracerProvider
}

// New returns the HTTP handler of the named service. Besides the service
// route it serves /metrics and /healthz.
func New(name string, opts Options) (http.Handler, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Client == nil {
		opts.Client = NewClient(30 * time.Second)
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}
	log := opts.Logger.With("service", name)

	var h http.Handler
	switch name {
	case ServiceOne, ServiceTwo:
		downstream := Downstream(name)
		base := opts.DownstreamURL
		if base == "" {
			base = fmt.Sprintf("http://localhost:%v", DefaultPort(downstream))
		}
		h = chainHandler(name, downstream, strings.TrimSuffix(base, "/")+"/"+downstream, opts.Client, log)
	case ServiceMastra:
		h = mastraHandler(opts.TracerProvider.Tracer("github.com/tracing-exp/genai-export/internal/services"), log)
	default:
		return nil, fmt.Errorf("service not recognised: %v", name)
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "http_requests_total",
		Help:        "Number of requests handled by the service.",
		ConstLabels: prometheus.Labels{"service": name},
	}, []string{"code", "method"})
	if err := opts.Registry.Register(requests); err != nil {
		return nil, fmt.Errorf("failed to register request metric: %w", err)
	}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	api := r.PathPrefix("/").Subrouter()
	api.Use(otelhttp.NewMiddleware(name,
		otelhttp.WithTracerProvider(opts.TracerProvider),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	))
	api.Handle("/"+name, promhttp.InstrumentHandlerCounter(requests, h)).Methods(http.MethodGet)

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(log.Handler(), slog.LevelError)),
	)(r), nil
}

func chainHandler(name, downstream, target string, client *http.Client, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		msg, err := getMessage(r.Context(), client, target)
		if err != nil {
			log.Error("Failed to call downstream service", "target", target, "error", err)
			writeJSON(w, http.StatusBadGateway, Message{Message: fmt.Sprintf("%v request failed: %v", downstream, err)})
			return
		}
		writeJSON(w, http.StatusOK, Message{
			Message: name + " response. Response from " + downstream + ": " + msg.Message,
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
