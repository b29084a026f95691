package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tracing-exp/genai-export/internal/impl/arize"
	"github.com/tracing-exp/genai-export/internal/log"
)

const (
	fLogLevel  = "log.level"
	fLogFormat = "log.format"
	fLogFile   = "log.file"

	fSpaceID       = "space-id"
	fAPIKey        = "api-key"
	fEndpoint      = "endpoint"
	fProjectName   = "project-name"
	fHeader        = "header"
	fProtocol      = "protocol"
	fCompression   = "compression"
	fTimeout       = "timeout"
	fSamplingRatio = "sampling-ratio"
	fFlushInterval = "flush-interval"
	fTLSEnabled    = "tls"
	fTLSSkipVerify = "tls-skip-verify"
	fTLSCertFile   = "tls-cert-file"
	fTLSKeyFile    = "tls-key-file"
	fPort          = "port"
	fDownstream    = "downstream"
	fHTTPAddress   = "http-address"
	fGRPCAddress   = "grpc-address"
)

const (
	defaultExportTimeout = 10 * time.Second
	shutdownTimeout      = 10 * time.Second
)

func loggerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    fLogLevel,
			Value:   "INFO",
			Usage:   "Log level: TRACE, DEBUG, INFO, WARN, ERROR or NONE.",
			EnvVars: []string{"LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    fLogFormat,
			Value:   log.FormatLogfmt,
			Usage:   "Log format: logfmt or json.",
			EnvVars: []string{"LOG_FORMAT"},
		},
		&cli.StringFlag{
			Name:    fLogFile,
			Usage:   "Also write JSON logs to this file, rotated as it grows.",
			EnvVars: []string{"LOG_FILE"},
		},
	}
}

func arizeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    fSpaceID,
			Usage:   "Arize space ID.",
			EnvVars: []string{"ARIZE_SPACE_ID"},
		},
		&cli.StringFlag{
			Name:    fAPIKey,
			Usage:   "Arize API key, or bearer token for other collectors.",
			EnvVars: []string{"ARIZE_API_KEY"},
		},
		&cli.StringFlag{
			Name:    fEndpoint,
			Usage:   "Collector URL. Defaults to Arize AX when a space ID is set.",
			EnvVars: []string{"ARIZE_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    fProjectName,
			Value:   arize.DefaultProjectName,
			Usage:   "Project spans are filed under.",
			EnvVars: []string{"ARIZE_PROJECT_NAME"},
		},
		&cli.StringSliceFlag{
			Name:    fHeader,
			Usage:   "Extra export request header as key=value, may be repeated.",
			EnvVars: []string{"ARIZE_HEADERS"},
		},
		&cli.StringFlag{
			Name:    fProtocol,
			Value:   arize.ProtocolHTTP,
			Usage:   "OTLP protocol: http or grpc.",
			EnvVars: []string{"ARIZE_PROTOCOL"},
		},
		&cli.StringFlag{
			Name:    fCompression,
			Value:   arize.CompressionNone,
			Usage:   "Export request compression: none or gzip.",
			EnvVars: []string{"ARIZE_COMPRESSION"},
		},
		&cli.DurationFlag{
			Name:  fTimeout,
			Value: defaultExportTimeout,
			Usage: "Timeout of each export request.",
		},
		&cli.Float64Flag{
			Name:  fSamplingRatio,
			Value: 1,
			Usage: "Ratio of traces to sample.",
		},
		&cli.DurationFlag{
			Name:  fFlushInterval,
			Usage: "Period between span batch flushes.",
		},
		&cli.BoolFlag{
			Name:  fTLSEnabled,
			Usage: "Enable TLS for collectors without an https endpoint.",
		},
		&cli.BoolFlag{
			Name:  fTLSSkipVerify,
			Usage: "Skip collector certificate verification (insecure).",
		},
		&cli.StringFlag{
			Name:  fTLSCertFile,
			Usage: "Client certificate file.",
		},
		&cli.StringFlag{
			Name:  fTLSKeyFile,
			Usage: "Client key file.",
		},
	}
}

// parseHeaders parses key=value pairs.
func parseHeaders(pairs []string) (map[string]string, error) {
	headers := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("header must be of the form key=value: %v", p)
		}
		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return headers, nil
}

func providerConfigFromFlags(c *cli.Context, serviceName string) (arize.ProviderConfig, error) {
	headers, err := parseHeaders(c.StringSlice(fHeader))
	if err != nil {
		return arize.ProviderConfig{}, err
	}

	tlsConf := arize.TLSConfig{
		Enabled:        c.Bool(fTLSEnabled),
		SkipCertVerify: c.Bool(fTLSSkipVerify),
		CertFile:       c.String(fTLSCertFile),
		KeyFile:        c.String(fTLSKeyFile),
	}
	if err := tlsConf.Validate(); err != nil {
		return arize.ProviderConfig{}, err
	}

	return arize.ProviderConfig{
		Config: arize.Config{
			SpaceID:     c.String(fSpaceID),
			APIKey:      c.String(fAPIKey),
			Endpoint:    c.String(fEndpoint),
			ProjectName: c.String(fProjectName),
			Headers:     headers,
		},
		Transport: arize.TransportConfig{
			Protocol:    c.String(fProtocol),
			Timeout:     c.Duration(fTimeout),
			Compression: c.String(fCompression),
			TLS:         tlsConf,
		},
		ServiceName:   serviceName,
		SamplingRatio: c.Float64(fSamplingRatio),
		FlushInterval: c.Duration(fFlushInterval),
	}, nil
}

// createLogger builds the logger described by the log flags. Logs go to
// stdout, and when a log file is set they are also written there as JSON.
func createLogger(c *cli.Context, stdout io.Writer) (*slog.Logger, error) {
	conf := log.Config{
		Level:  c.String(fLogLevel),
		Format: c.String(fLogFormat),
	}
	main, err := log.NewHandler(stdout, conf)
	if err != nil {
		return nil, err
	}

	path := c.String(fLogFile)
	if path == "" {
		return slog.New(main), nil
	}

	conf.Format = log.FormatJSON
	file, err := log.NewHandler(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 1,
		Compress:   true,
	}, conf)
	if err != nil {
		return nil, err
	}
	return slog.New(log.NewTee(main, file)), nil
}

func stdoutOr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

func stderrOr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}
