package arize

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/redpanda-data/benthos/v4/public/service"
)

const (
	azFieldSpaceID       = "space_id"
	azFieldAPIKey        = "api_key"
	azFieldEndpoint      = "endpoint"
	azFieldProjectName   = "project_name"
	azFieldHeaders       = "headers"
	azFieldProtocol      = "protocol"
	azFieldTags          = "tags"
	azFieldSamplingRatio = "sampling_ratio"
	azFieldFlushInterval = "flush_interval"
	azFieldTimeout       = "timeout"
	azFieldCompression   = "compression"
	azFieldTLS           = "tls"
)

func arizeTracerSpec() *service.ConfigSpec {
	return service.NewConfigSpec().
		Summary("Send tracing events to [Arize AX](https://arize.com/), Phoenix or any OTLP collector.").
		Description(`
Spans recorded by OpenInference instrumentation have Mastra formatted messages held in the `+"`gen_ai.prompt`"+` and `+"`gen_ai.completion`"+` attributes converted to the GenAI message schema before they are sent. Other spans are sent unchanged.

When `+"`space_id`"+` is set the `+"`space_id`"+` and `+"`api_key`"+` headers are sent and the endpoint defaults to Arize AX. Otherwise, when `+"`api_key`"+` is set, it is sent as a bearer token.`).
		Fields(
			service.NewStringField(azFieldSpaceID).
				Description("The Arize space ID. Required when sending to Arize AX.").
				Secret().
				Default(""),
			service.NewStringField(azFieldAPIKey).
				Description("The Arize API key, or a bearer token for other collectors.").
				Secret().
				Default(""),
			service.NewStringField(azFieldEndpoint).
				Description("The URL of the collector. Defaults to Arize AX when a space ID is set.").
				Example(DefaultEndpoint).
				Example("http://localhost:6006/v1/traces").
				Default(""),
			service.NewStringField(azFieldProjectName).
				Description("The project spans are filed under.").
				Default(DefaultProjectName),
			service.NewStringMapField(azFieldHeaders).
				Description("Headers to add to every export request.").
				Advanced().
				Default(map[string]any{}),
			service.NewStringEnumField(azFieldProtocol, ProtocolHTTP, ProtocolGRPC).
				Description("The OTLP protocol used to send spans.").
				Default(ProtocolHTTP),
			service.NewStringMapField(azFieldTags).
				Description("A map of tags to add to the trace resource.").
				Advanced().
				Default(map[string]any{}),
			service.NewFloatField(azFieldSamplingRatio).
				Description("Sets the ratio of traces to sample.").
				Example(0.5).
				Default(1.0),
			service.NewDurationField(azFieldFlushInterval).
				Description("The period of time between each flush of tracing spans.").
				Optional(),
			service.NewDurationField(azFieldTimeout).
				Description("The maximum time to wait for each export request.").
				Advanced().
				Default("10s"),
			service.NewStringEnumField(azFieldCompression, CompressionNone, CompressionGzip).
				Description("Compression applied to export requests.").
				Advanced().
				Default(CompressionNone),
			service.NewObjectField(azFieldTLS, tlsClientConfigFields()...).
				Description("TLS configuration for the connection to the collector.").
				Advanced(),
		)
}

func init() {
	service.MustRegisterOtelTracerProvider("arize", arizeTracerSpec(), func(conf *service.ParsedConfig) (trace.TracerProvider, error) {
		pConf, err := arizeConfigFromParsed(conf)
		if err != nil {
			return nil, err
		}
		return NewTracerProvider(context.Background(), pConf)
	})
}

func arizeConfigFromParsed(conf *service.ParsedConfig) (pConf ProviderConfig, err error) {
	if pConf.SpaceID, err = conf.FieldString(azFieldSpaceID); err != nil {
		return
	}
	if pConf.APIKey, err = conf.FieldString(azFieldAPIKey); err != nil {
		return
	}
	if pConf.Endpoint, err = conf.FieldString(azFieldEndpoint); err != nil {
		return
	}
	if pConf.ProjectName, err = conf.FieldString(azFieldProjectName); err != nil {
		return
	}
	if pConf.Headers, err = conf.FieldStringMap(azFieldHeaders); err != nil {
		return
	}
	if pConf.Transport.Protocol, err = conf.FieldString(azFieldProtocol); err != nil {
		return
	}
	if pConf.Tags, err = conf.FieldStringMap(azFieldTags); err != nil {
		return
	}
	if pConf.SamplingRatio, err = conf.FieldFloat(azFieldSamplingRatio); err != nil {
		return
	}
	if conf.Contains(azFieldFlushInterval) {
		if pConf.FlushInterval, err = conf.FieldDuration(azFieldFlushInterval); err != nil {
			return
		}
	}
	if pConf.Transport.Timeout, err = conf.FieldDuration(azFieldTimeout); err != nil {
		return
	}
	if pConf.Transport.Compression, err = conf.FieldString(azFieldCompression); err != nil {
		return
	}
	if conf.Contains(azFieldTLS) {
		if pConf.Transport.TLS, err = parseTLSClientConfig(conf.Namespace(azFieldTLS)); err != nil {
			err = fmt.Errorf("failed to parse tls config: %w", err)
			return
		}
	}
	pConf.Logger = slog.Default().With("tracer", "arize")
	return pConf, nil
}
