package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/registrar/internal/id"
	"github.com/getmockd/registrar/pkg/campus"
	"github.com/getmockd/registrar/pkg/cliconfig"
	"github.com/getmockd/registrar/pkg/config"
	"github.com/getmockd/registrar/pkg/graphql"
	"github.com/getmockd/registrar/pkg/logging"
	"github.com/getmockd/registrar/pkg/metrics"
	"github.com/getmockd/registrar/pkg/resolver"
	"github.com/getmockd/registrar/pkg/server"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the GraphQL server (foreground)",
		Long: `Start the GraphQL server. Data lives in memory and starts from the
built-in seed, or from --seed. Stop with Ctrl+C; in-flight requests are
allowed to finish.`,
		Example: `  # Start with defaults on :5000
  registrar serve

  # Custom port and endpoint, seeded from a file
  registrar serve --port 8080 --path /api/graphql --seed campus.yaml

  # Prune enrollments of deleted courses, JSON logs
  registrar serve --cascade-course-delete --log-format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	d := cliconfig.NewDefault()
	f := cmd.Flags()
	f.String("host", d.Host, "Interface to bind (default: all)")
	f.IntP("port", "p", d.Port, "HTTP server port (0 picks a free port)")
	f.String("path", d.Path, "GraphQL endpoint path")
	f.Int("read-timeout", d.ReadTimeout, "Read timeout in seconds")
	f.Int("write-timeout", d.WriteTimeout, "Write timeout in seconds")
	f.Bool("playground", d.Playground, "Serve the GraphiQL playground at /")
	f.Bool("metrics", d.Metrics, "Serve Prometheus metrics at "+server.MetricsPath)
	f.Bool("introspection", d.Introspection, "Allow __schema and __type queries")
	f.String("seed", d.SeedFile, "Seed file (YAML or JSON) replacing the built-in data")
	f.String("id-policy", d.IDPolicy, "Id assignment for new entities: sequence or length")
	f.Bool("cascade-course-delete", d.CascadeCourseDelete, "Remove a deleted course from every enrollment")
	f.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	f.String("log-format", d.LogFormat, "Log format (text, json)")
	f.String("log-file", d.LogFile, "Also append JSON logs to this file")
	return cmd
}

// app is a fully wired, not yet started server.
type app struct {
	log     *slog.Logger
	store   *campus.Store
	server  *server.Server
	metrics *metrics.Collector
	logFile *os.File
}

// close releases resources newApp opened.
func (a *app) close() error {
	if a.logFile == nil {
		return nil
	}
	return a.logFile.Close()
}

// newApp wires the store, executor, handler and server from cfg.
func newApp(cfg *cliconfig.CLIConfig, logOutput io.Writer) (a *app, err error) {
	policy, err := id.ParsePolicy(cfg.IDPolicy)
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: logOutput,
	}
	var logFile *os.File
	if cfg.LogFile != "" {
		logFile, err = os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() {
			if err != nil {
				_ = logFile.Close()
			}
		}()
		logCfg.Mirror = logFile
	}
	log := logging.New(logCfg)

	storeOpts := []campus.Option{
		campus.WithIDPolicy(policy),
		campus.WithCascadeCourseDelete(cfg.CascadeCourseDelete),
		campus.WithLogger(log),
	}
	if cfg.SeedFile != "" {
		seed, err := config.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		storeOpts = append(storeOpts, campus.WithSeed(seed))
	}

	var collector *metrics.Collector
	if cfg.Metrics {
		collector = metrics.New()
		storeOpts = append(storeOpts, campus.WithObserver(collector))
	}

	store, err := campus.New(storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed data: %w", err)
	}

	exec, err := resolver.NewExecutor(store, &graphql.Config{
		Path:          cfg.Path,
		Introspection: cfg.Introspection,
	}, graphql.WithLogger(log))
	if err != nil {
		return nil, err
	}

	handlerOpts := []graphql.HandlerOption{graphql.WithHandlerLogger(log)}
	serverOpts := []server.Option{server.WithLogger(log)}
	if collector != nil {
		if err := collector.TrackStore(store); err != nil {
			return nil, err
		}
		handlerOpts = append(handlerOpts, graphql.WithRecorder(collector))
		serverOpts = append(serverOpts, server.WithMetrics(collector.Handler()))
	}

	srv := server.New(server.Config{
		Host:         cfg.Host,
		Port:         cfg.Port,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		Playground:   cfg.Playground,
	}, graphql.NewHandler(exec, handlerOpts...), serverOpts...)

	return &app{log: log, store: store, server: srv, metrics: collector, logFile: logFile}, nil
}

// runServe starts the server and blocks until ctx is done or serving fails.
func runServe(ctx context.Context, cfg *cliconfig.CLIConfig, stdout, stderr io.Writer) error {
	a, err := newApp(cfg, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()
	if err := a.server.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "registrar listening on %s\n", a.server.URL())
	if cfg.Playground && cfg.Path != "/" {
		fmt.Fprintf(stdout, "  playground: %s\n", playgroundURL(a.server.URL(), cfg.Path))
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-a.server.Err():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Error("shutdown failed", "error", err)
		if serveErr == nil {
			serveErr = err
		}
	}
	return serveErr
}

func playgroundURL(endpoint, path string) string {
	return endpoint[:len(endpoint)-len(path)] + "/"
}
