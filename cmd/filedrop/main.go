// cmd/filedrop/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/filedrop/internal/api"
	"github.com/andresuchdata/filedrop/internal/config"
	"github.com/andresuchdata/filedrop/internal/pipeline"
	"github.com/andresuchdata/filedrop/internal/queue"
	"github.com/andresuchdata/filedrop/internal/service"
	"github.com/andresuchdata/filedrop/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("filedrop failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "filedrop",
		Usage: "Generate a random file, upload it and fan out its metadata",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			if level := c.String("log-level"); level != "" {
				logger.SetLevel(level)
			}
			return nil
		},
		Action: runOnce,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Process one or more files and exit",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "count",
						Usage: "Number of files to process",
						Value: 1,
					},
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Pause between runs",
						Value: 0,
					},
				},
				Action: runOnce,
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP trigger",
				Action: serve,
			},
			{
				Name:      "inspect",
				Usage:     "Decode a queue message body",
				ArgsUsage: "<name|lines>",
				Action:    inspect,
			},
		},
	}
}

func newService(ctx context.Context) (*service.FileService, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	svc, err := service.NewFileService(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

// runOnce exits 0 whatever the step outcomes; only unusable configuration
// is reported as an error.
func runOnce(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, _, err := newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	count := 1
	if c.IsSet("count") {
		count = c.Int("count")
	}

	results, metrics := pipeline.NewOrchestrator(svc.Pipeline, c.Duration("interval")).Run(ctx, count)
	for _, res := range results {
		logger.Log.Info().
			Str("run_id", res.RunID).
			Interface("steps", res.Labels()).
			Msg("run summary")
	}

	logger.Log.Info().
		Int("runs", metrics.Runs).
		Int("uploaded", metrics.Uploaded).
		Int("fully_succeeded", metrics.FullySucceeded).
		Int("step_failures", metrics.StepFailures).
		Dur("average_latency", metrics.AverageLatency).
		Msg("Processing completed. Shutting down.")
	return nil
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cfg, err := newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(&api.Services{
		Processor: svc.Pipeline,
		Runs:      svc.Runs,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Log.Info().Msg("Server exiting")
	return nil
}

func inspect(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one message body", 2)
	}
	name, lines, err := queue.ParseBody(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "file:  %s\nlines: %d\n", name, lines)
	return nil
}
