package arize

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"google.golang.org/grpc/credentials"
	_ "google.golang.org/grpc/encoding/gzip"
)

// Protocols supported for sending spans.
const (
	ProtocolHTTP = "http"
	ProtocolGRPC = "grpc"
)

// Compression types supported for export requests.
const (
	CompressionNone = "none"
	CompressionGzip = "gzip"
)

// TransportConfig controls how spans reach the collector.
type TransportConfig struct {
	// Protocol is either ProtocolHTTP (default) or ProtocolGRPC.
	Protocol string

	// Timeout bounds each export request. Zero uses the OTLP default.
	Timeout time.Duration

	// Compression is either CompressionNone (default) or CompressionGzip.
	Compression string

	TLS TLSConfig
}

// NewOTLPExporter creates an OTLP exporter sending to dest.
func NewOTLPExporter(ctx context.Context, dest Destination, conf TransportConfig) (*otlptrace.Exporter, error) {
	tlsConf, err := conf.TLS.ClientConfig()
	if err != nil {
		return nil, err
	}

	var client otlptrace.Client
	switch conf.Protocol {
	case "", ProtocolHTTP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithHeaders(dest.Headers),
		}
		if dest.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(dest.Endpoint))
		}
		if tlsConf != nil {
			opts = append(opts, otlptracehttp.WithTLSClientConfig(tlsConf))
		}
		if conf.Timeout > 0 {
			opts = append(opts, otlptracehttp.WithTimeout(conf.Timeout))
		}
		switch conf.Compression {
		case "", CompressionNone:
			opts = append(opts, otlptracehttp.WithCompression(otlptracehttp.NoCompression))
		case CompressionGzip:
			opts = append(opts, otlptracehttp.WithCompression(otlptracehttp.GzipCompression))
		default:
			return nil, fmt.Errorf("unsupported compression: %v", conf.Compression)
		}
		client = otlptracehttp.NewClient(opts...)
	case ProtocolGRPC:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithHeaders(dest.Headers),
		}
		if dest.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpointURL(dest.Endpoint))
		}
		if tlsConf != nil {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(tlsConf)))
		}
		if conf.Timeout > 0 {
			opts = append(opts, otlptracegrpc.WithTimeout(conf.Timeout))
		}
		switch conf.Compression {
		case "", CompressionNone:
		case CompressionGzip:
			opts = append(opts, otlptracegrpc.WithCompressor(CompressionGzip))
		default:
			return nil, fmt.Errorf("unsupported compression: %v", conf.Compression)
		}
		client = otlptracegrpc.NewClient(opts...)
	default:
		return nil, fmt.Errorf("unsupported protocol: %v", conf.Protocol)
	}

	exp, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
	}
	return exp, nil
}
