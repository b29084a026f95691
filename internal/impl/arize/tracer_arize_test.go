package arize

import (
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/ptrace"

	"github.com/tracing-exp/genai-export/internal/collector"
	"github.com/tracing-exp/genai-export/internal/openinference"
)

func TestArizeConfigDefaults(t *testing.T) {
	pConf, err := arizeTracerSpec().ParseYAML(`{}`, nil)
	require.NoError(t, err)

	conf, err := arizeConfigFromParsed(pConf)
	require.NoError(t, err)

	assert.Empty(t, conf.SpaceID)
	assert.Empty(t, conf.APIKey)
	assert.Empty(t, conf.Endpoint)
	assert.Equal(t, DefaultProjectName, conf.ProjectName)
	assert.Empty(t, conf.Headers)
	assert.Equal(t, ProtocolHTTP, conf.Transport.Protocol)
	assert.Equal(t, CompressionNone, conf.Transport.Compression)
	assert.Equal(t, 10*time.Second, conf.Transport.Timeout)
	assert.Equal(t, 1.0, conf.SamplingRatio)
	assert.Zero(t, conf.FlushInterval)
	assert.False(t, conf.Transport.TLS.Enabled)
}

func TestArizeConfigParsing(t *testing.T) {
	pConf, err := arizeTracerSpec().ParseYAML(`
space_id: space
api_key: key
endpoint: https://collector.example/v1/traces
project_name: agents
headers:
  x-team: ml
protocol: grpc
tags:
  deployment.environment: staging
sampling_ratio: 0.25
flush_interval: 2s
timeout: 3s
compression: gzip
tls:
  enabled: true
  skip_cert_verify: true
`, nil)
	require.NoError(t, err)

	conf, err := arizeConfigFromParsed(pConf)
	require.NoError(t, err)

	assert.Equal(t, "space", conf.SpaceID)
	assert.Equal(t, "key", conf.APIKey)
	assert.Equal(t, "https://collector.example/v1/traces", conf.Endpoint)
	assert.Equal(t, "agents", conf.ProjectName)
	assert.Equal(t, map[string]string{"x-team": "ml"}, conf.Headers)
	assert.Equal(t, map[string]string{"deployment.environment": "staging"}, conf.Tags)
	assert.Equal(t, 0.25, conf.SamplingRatio)
	assert.Equal(t, 2*time.Second, conf.FlushInterval)
	assert.Equal(t, TransportConfig{
		Protocol:    ProtocolGRPC,
		Timeout:     3 * time.Second,
		Compression: CompressionGzip,
		TLS:         TLSConfig{Enabled: true, SkipCertVerify: true},
	}, conf.Transport)
}

func TestArizeConfigHalfSpecifiedCertificate(t *testing.T) {
	pConf, err := arizeTracerSpec().ParseYAML(`
tls:
  enabled: true
  cert_file: ./cert.pem
`, nil)
	require.NoError(t, err)

	_, err = arizeConfigFromParsed(pConf)
	assert.ErrorContains(t, err, "both cert_file and key_file")
}

func TestProviderResource(t *testing.T) {
	res := ProviderConfig{
		Config: Config{ProjectName: "agents"},
		Tags:   map[string]string{"service.name": "ignored", "team": "ml"},
	}.NewResource()

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, map[string]string{
		"service.name":               "agents",
		"openinference.project.name": "agents",
		"team":                       "ml",
	}, attrs)

	res = ProviderConfig{ServiceName: "service-one"}.NewResource()
	name, _ := res.Set().Value("service.name")
	project, _ := res.Set().Value(openinference.ProjectName)
	assert.Equal(t, "service-one", name.AsString())
	assert.Equal(t, DefaultProjectName, project.AsString())
}

func TestTracerProviderEndToEnd(t *testing.T) {
	rec := &received{}
	router := mux.NewRouter()
	collector.NewReceiver(rec.handle, slog.New(slog.DiscardHandler)).RegisterRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	tp, err := NewTracerProvider(t.Context(), ProviderConfig{
		Config: Config{
			APIKey:      "key",
			Endpoint:    srv.URL + collector.TracesPath,
			ProjectName: "agents",
		},
		ServiceName: "service-mastra",
	})
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(t.Context(), "agent run")
	span.SetAttributes(
		openinference.SpanKind.String(openinference.SpanKindAgent),
		openinference.GenAICompletion.String(`{"text":"done"}`),
	)
	span.End()

	require.NoError(t, tp.Shutdown(t.Context()))

	reqs := rec.get()
	require.Len(t, reqs, 1)

	var completion, service, project string
	collector.ForEachSpan(reqs[0].Traces, func(res pcommon.Resource, s ptrace.Span) {
		v, _ := s.Attributes().Get(string(openinference.GenAICompletion))
		completion = v.AsString()
		v, _ = res.Attributes().Get("service.name")
		service = v.AsString()
		v, _ = res.Attributes().Get(string(openinference.ProjectName))
		project = v.AsString()
	})
	assert.Equal(t, `[{"role":"assistant","parts":[{"type":"text","content":"done"}]}]`, completion)
	assert.Equal(t, "service-mastra", service)
	assert.Equal(t, "agents", project)
}

func TestTracerProviderRejectsSamplingRatio(t *testing.T) {
	_, err := NewTracerProvider(t.Context(), ProviderConfig{SamplingRatio: 1.5})
	assert.ErrorContains(t, err, "sampling ratio")
}
