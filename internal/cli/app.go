// Package cli implements the tracing-exp command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/tracing-exp/genai-export/internal/impl/arize"
	"github.com/tracing-exp/genai-export/internal/services"
	"github.com/tracing-exp/genai-export/internal/telemetry"
)

// App returns the command line application. Output is written to stdout and
// stderr, which default to the process streams when nil.
func App(version string, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "tracing-exp",
		Usage:     "Run demo services whose AI spans are exported to Arize.",
		Version:   version,
		Flags:     loggerFlags(),
		Writer:    stdoutOr(stdout),
		ErrWriter: stderrOr(stderr),
		Commands: []*cli.Command{
			serveCommand(),
			serveAllCommand(),
			collectCommand(),
			translateCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "Run one of the demo services.",
		ArgsUsage: "<service-one|service-two|service-mastra>",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    fPort,
				Usage:   "Port to listen on, defaults to the service's port.",
				EnvVars: []string{"PORT"},
			},
			&cli.StringFlag{
				Name:  fDownstream,
				Usage: "Base URL of the service this one calls.",
			},
		}, arizeFlags()...),
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return errors.New("exactly one service name must be specified")
			}
			name := c.Args().First()

			port := c.Int(fPort)
			if port == 0 {
				port = services.DefaultPort(name)
			}
			return runServices(c, []serviceRun{{
				name:       name,
				addr:       net.JoinHostPort("", strconv.Itoa(port)),
				downstream: c.String(fDownstream),
			}})
		},
	}
}

func serveAllCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve-all",
		Usage: "Run every demo service in one process on their default ports.",
		Flags: arizeFlags(),
		Action: func(c *cli.Context) error {
			runs := make([]serviceRun, 0, len(services.Names))
			for _, name := range services.Names {
				runs = append(runs, serviceRun{
					name: name,
					addr: net.JoinHostPort("", strconv.Itoa(services.DefaultPort(name))),
				})
			}
			return runServices(c, runs)
		},
	}
}

type serviceRun struct {
	name       string
	addr       string
	downstream string
}

// runServices starts telemetry and serves each service until the command's
// context is cancelled, then flushes any pending spans.
func runServices(c *cli.Context, runs []serviceRun) (err error) {
	logger, err := createLogger(c, c.App.Writer)
	if err != nil {
		return err
	}

	for _, run := range runs {
		if services.DefaultPort(run.name) == 0 {
			return fmt.Errorf("service not recognised: %v", run.name)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := arize.NewMetrics(reg)
	if err != nil {
		return err
	}

	serviceName := runs[0].name
	if len(runs) > 1 {
		serviceName = ""
	}
	pConf, err := providerConfigFromFlags(c, serviceName)
	if err != nil {
		return err
	}
	pConf.Logger = logger
	pConf.Metrics = metrics

	tel, err := telemetry.Start(c.Context, pConf, logger)
	if err != nil {
		return fmt.Errorf("failed to start telemetry: %w", err)
	}
	defer func() {
		shutCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		err = multierr.Append(err, tel.Shutdown(shutCtx))
	}()

	g, ctx := errgroup.WithContext(c.Context)
	for _, run := range runs {
		h, err := services.New(run.name, services.Options{
			DownstreamURL:  run.downstream,
			Logger:         logger,
			Registry:       reg,
			TracerProvider: tel.TracerProvider(),
		})
		if err != nil {
			return err
		}
		srv := services.NewServer(run.name, run.addr, h, logger)
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}
	return g.Wait()
}
