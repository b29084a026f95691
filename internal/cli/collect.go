package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/gorilla/mux"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/tracing-exp/genai-export/internal/collector"
	"github.com/tracing-exp/genai-export/internal/services"
)

func collectCommand() *cli.Command {
	return &cli.Command{
		Name:  "collect",
		Usage: "Run a local OTLP trace collector that logs every span it receives.",
		Description: `
Point the services at this collector instead of Arize to inspect the spans
they export:

  tracing-exp collect &
  tracing-exp serve-all --endpoint http://localhost:4318/v1/traces`[1:],
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  fHTTPAddress,
				Value: ":4318",
				Usage: "Address of the OTLP/HTTP listener, empty to disable.",
			},
			&cli.StringFlag{
				Name:  fGRPCAddress,
				Value: ":4317",
				Usage: "Address of the OTLP/gRPC listener, empty to disable.",
			},
		},
		Action: func(c *cli.Context) error {
			logger, err := createLogger(c, c.App.Writer)
			if err != nil {
				return err
			}

			var lc net.ListenConfig
			var httpLn, grpcLn net.Listener
			if addr := c.String(fHTTPAddress); addr != "" {
				if httpLn, err = lc.Listen(c.Context, "tcp", addr); err != nil {
					return fmt.Errorf("failed to listen on %v: %w", addr, err)
				}
			}
			if addr := c.String(fGRPCAddress); addr != "" {
				if grpcLn, err = lc.Listen(c.Context, "tcp", addr); err != nil {
					if httpLn != nil {
						_ = httpLn.Close()
					}
					return fmt.Errorf("failed to listen on %v: %w", addr, err)
				}
			}
			if httpLn == nil && grpcLn == nil {
				return errors.New("at least one of the http and grpc listeners must be enabled")
			}
			return runCollector(c.Context, httpLn, grpcLn, logger)
		},
	}
}

// runCollector serves OTLP on whichever listeners are non-nil until ctx is
// cancelled.
func runCollector(ctx context.Context, httpLn, grpcLn net.Listener, log *slog.Logger) error {
	recv := collector.NewReceiver(collector.LogSpans(log), log)

	g, ctx := errgroup.WithContext(ctx)
	if httpLn != nil {
		r := mux.NewRouter()
		recv.RegisterRoutes(r)
		srv := services.NewServer("collector", httpLn.Addr().String(), r, log)
		g.Go(func() error {
			return srv.Serve(ctx, httpLn)
		})
	}
	if grpcLn != nil {
		srv := recv.NewGRPCServer()
		g.Go(func() error {
			log.Info("Listening for OTLP/gRPC", "address", grpcLn.Addr().String())
			if err := srv.Serve(grpcLn); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			srv.GracefulStop()
			return nil
		})
	}
	return g.Wait()
}
