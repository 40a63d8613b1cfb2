// Command groundwire runs the context augmentation pipeline.
//
// Usage:
//
//	groundwire serve --config config.yaml
//	groundwire query --config config.yaml "how many people work here"
//	groundwire validate --config config.yaml
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/groundwire/groundwire/pkg/augment"
	"github.com/groundwire/groundwire/pkg/config"
	"github.com/groundwire/groundwire/pkg/logger"
	"github.com/groundwire/groundwire/pkg/observability"
	"github.com/groundwire/groundwire/pkg/server"
	"github.com/groundwire/groundwire/pkg/source"
)

// CLI defines the command-line interface.
type CLI struct {
	Version  VersionCmd  `cmd:"" help:"Show version information."`
	Serve    ServeCmd    `cmd:"" help:"Start the augmentation HTTP server."`
	Query    QueryCmd    `cmd:"" help:"Run one message through the pipeline and print the bundle."`
	Validate ValidateCmd `cmd:"" help:"Validate configuration file."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple or verbose)." default:"simple"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("groundwire version %s\n", version)
	return nil
}

// ValidateCmd validates the configuration file.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(cli *CLI) error {
	if cli.Config == "" {
		return fmt.Errorf("--config is required for validate")
	}
	if _, err := config.Load(cli.Config); err != nil {
		return err
	}
	fmt.Printf("%s is valid\n", cli.Config)
	return nil
}

// QueryCmd runs a single message through the pipeline.
type QueryCmd struct {
	Text string `arg:"" help:"Message text to augment."`
}

func (c *QueryCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	rt, err := augment.Build(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Fetch.BudgetDuration()+time.Second)
	defer cancel()

	b := rt.Service.Augment(ctx, source.Message{Text: c.Text})
	if b.Empty() {
		fmt.Println("no external data available")
		return nil
	}

	for _, r := range b.Results {
		fmt.Printf("[%s] %s\n", r.Kind, r.Content)
	}
	return nil
}

// ServeCmd starts the HTTP server.
type ServeCmd struct {
	Port    int  `help:"Port to listen on." default:"0"`
	Observe bool `help:"Enable tracing and metrics."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down")
		cancel()
	}()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.Observe {
		cfg.Observability.Tracing.Enabled = true
		cfg.Observability.Metrics.Enabled = true
	}

	if err := initObservability(ctx, cfg); err != nil {
		return err
	}

	rt, err := augment.Build(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	srv := server.NewServer(&cfg.Server, rt.Service, rt.Tools, server.Options{
		Metrics: cfg.Observability.Metrics.Enabled,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	slog.Info("groundwire ready",
		"addr", cfg.Server.Address(),
		"sources", rt.Service.Kinds(),
		"tools", rt.Tools.Count())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		slog.Info("no config file given, using defaults")
		return config.Default(), nil
	}
	return config.Load(path)
}

func initObservability(ctx context.Context, cfg *config.Config) error {
	tracing := cfg.Observability.Tracing
	if tracing.Enabled {
		_, err := observability.InitGlobalTracer(ctx, observability.TracerConfig{
			Enabled:      true,
			ExporterType: tracing.ExporterType,
			EndpointURL:  tracing.EndpointURL,
			SamplingRate: tracing.SamplingRate,
			ServiceName:  tracing.ServiceName,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.Observability.Metrics.Enabled {
		recorder, err := observability.InitMetrics(ctx, observability.MetricsConfig{Enabled: true})
		if err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}
		observability.SetGlobalMetrics(recorder)
	}
	return nil
}

func initLogging(cli *CLI) (func(), error) {
	level, err := logger.ParseLevel(cli.LogLevel)
	if err != nil {
		return nil, err
	}

	output := os.Stderr
	cleanup := func() {}
	if cli.LogFile != "" {
		file, closeFile, err := logger.OpenLogFile(cli.LogFile)
		if err != nil {
			return nil, err
		}
		output = file
		cleanup = closeFile
	}

	logger.Init(level, output, cli.LogFormat)
	return cleanup, nil
}

func main() {
	_ = config.LoadEnvFiles()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("groundwire"),
		kong.Description("groundwire - live context augmentation for agent responses"),
		kong.UsageOnError(),
	)

	cleanup, err := initLogging(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
