package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/tracing-exp/genai-export/internal/genai"
	"github.com/tracing-exp/genai-export/internal/impl/arize"
	"github.com/tracing-exp/genai-export/internal/openinference"
)

func setPropagator(t *testing.T) {
	t.Helper()
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })
}

func newTracing(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	t.Helper()
	mem := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(arize.NewExporter(mem)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, mem
}

func startService(t *testing.T, name string, opts Options) *httptest.Server {
	t.Helper()
	h, err := New(name, opts)
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string) (int, Message) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var msg Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	return resp.StatusCode, msg
}

func TestServiceChain(t *testing.T) {
	tp, mem := newTracing(t)
	client := NewClient(5 * time.Second)
	setPropagator(t)

	mastra := startService(t, ServiceMastra, Options{TracerProvider: tp})
	two := startService(t, ServiceTwo, Options{TracerProvider: tp, Client: client, DownstreamURL: mastra.URL})
	one := startService(t, ServiceOne, Options{TracerProvider: tp, Client: client, DownstreamURL: two.URL + "/"})

	status, msg := getJSON(t, one.URL+"/service-one")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t,
		"service-one response. Response from service-two: service-two response. Response from service-mastra: service-mastra response",
		msg.Message)

	spans := mem.GetSpans()
	require.NotEmpty(t, spans)

	traceIDs := map[trace.TraceID]struct{}{}
	var agent *tracetest.SpanStub
	for i, s := range spans {
		if s.SpanKind == trace.SpanKindServer {
			traceIDs[s.SpanContext.TraceID()] = struct{}{}
		}
		if openinference.HasSpanKind(s.Attributes) && s.Name == "agent run: "+mastraAgentName {
			agent = &spans[i]
		}
	}
	assert.Len(t, traceIDs, 1, "server spans should share one trace")

	require.NotNil(t, agent)
	for _, kv := range agent.Attributes {
		if kv.Key != openinference.GenAIPrompt && kv.Key != openinference.GenAICompletion {
			continue
		}
		var msgs []map[string]any
		require.NoError(t, json.Unmarshal([]byte(kv.Value.AsString()), &msgs), "payload should be a GenAI message array")
		require.NotEmpty(t, msgs)
		assert.Contains(t, msgs[0], "parts")
	}
}

func TestMastraPayloadsConvert(t *testing.T) {
	tp, mem := newTracing(t)
	// Record spans without translation to check the raw Mastra payloads.
	raw := tracetest.NewInMemoryExporter()
	tp.RegisterSpanProcessor(sdktrace.NewSimpleSpanProcessor(raw))

	srv := startService(t, ServiceMastra, Options{TracerProvider: tp})
	status, msg := getJSON(t, srv.URL+"/service-mastra?q=hello")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "service-mastra response", msg.Message)

	var found int
	for _, s := range raw.GetSpans() {
		for _, kv := range s.Attributes {
			if kv.Key == openinference.GenAIPrompt || kv.Key == openinference.GenAICompletion {
				_, err := genai.TryConvertMastraMessages(kv.Value.AsString())
				assert.NoError(t, err)
				found++
			}
		}
	}
	assert.Equal(t, 2, found)
	assert.NotEmpty(t, mem.GetSpans())
}

func TestChainDownstreamFailure(t *testing.T) {
	notFound := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(notFound.Close)

	srv := startService(t, ServiceTwo, Options{DownstreamURL: notFound.URL})
	status, msg := getJSON(t, srv.URL+"/service-two")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, msg.Message, "404")
}

func TestChainRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, Message{Message: "finally"})
	}))
	t.Cleanup(flaky.Close)

	srv := startService(t, ServiceOne, Options{DownstreamURL: flaky.URL})
	status, msg := getJSON(t, srv.URL+"/service-one")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "service-one response. Response from service-two: finally", msg.Message)
	assert.Equal(t, int32(3), calls.Load())
}

func TestMetricsAndHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := startService(t, ServiceMastra, Options{Registry: reg})

	status, _ := getJSON(t, srv.URL+"/service-mastra")
	require.Equal(t, http.StatusOK, status)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{code="200",method="get",service="service-mastra"} 1`)

	_, err = New(ServiceMastra, Options{Registry: reg})
	assert.Error(t, err, "registering a service twice on one registry")
}

func TestUnknownService(t *testing.T) {
	_, err := New("service-three", Options{})
	assert.Error(t, err)
}

func TestWrongMethod(t *testing.T) {
	srv := startService(t, ServiceMastra, Options{})
	resp, err := http.Post(srv.URL+"/service-mastra", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServerServe(t *testing.T) {
	h, err := New(ServiceMastra, Options{})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(ServiceMastra, ln.Addr().String(), h, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	status, msg := getJSON(t, "http://"+ln.Addr().String()+"/service-mastra")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "service-mastra response", msg.Message)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	select {
	case <-srv.Stopping():
	default:
		t.Error("expected stopping channel to be closed")
	}
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, []string{"service-one", "service-two", "service-mastra"}, Names)
	assert.Equal(t, 3000, DefaultPort(ServiceOne))
	assert.Equal(t, 3001, DefaultPort(ServiceTwo))
	assert.Equal(t, 4111, DefaultPort(ServiceMastra))
	assert.Equal(t, ServiceTwo, Downstream(ServiceOne))
	assert.Equal(t, ServiceMastra, Downstream(ServiceTwo))
	assert.Empty(t, Downstream(ServiceMastra))
}
