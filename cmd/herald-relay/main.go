// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/herald/delivery"
	"github.com/bureau-foundation/herald/ingest"
	"github.com/bureau-foundation/herald/lib/config"
	"github.com/bureau-foundation/herald/lib/localsink"
	"github.com/bureau-foundation/herald/lib/logging"
	"github.com/bureau-foundation/herald/lib/metrics"
	"github.com/bureau-foundation/herald/lib/process"
	"github.com/bureau-foundation/herald/lib/render"
	"github.com/bureau-foundation/herald/lib/version"
)

// flushTimeout bounds how long the relay waits for queued events to
// reach the remote before exiting.
const flushTimeout = 5 * time.Second

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		process.Fatal(err)
	}
	os.Exit(code)
}

// options holds the parsed command line. Empty strings leave the
// config file's value in place.
type options struct {
	configPath  string
	name        string
	producer    string
	room        string
	logLevel    string
	color       string
	listen      string
	showVersion bool
	help        bool
	command     []string
}

func newFlagSet(opts *options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("herald-relay", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&opts.configPath, "config", "", "path to the config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&opts.name, "name", "", "service name shown in startup and shutdown notices")
	flagSet.StringVar(&opts.producer, "producer", "", "process-name prefix stripped from raw lines")
	flagSet.StringVar(&opts.room, "room", "", "Matrix room alias (#...) or ID (!...) to deliver to")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "diagnostic log level: debug, info, warn, error")
	flagSet.StringVar(&opts.color, "color", "", "local color output: auto, always, never")
	flagSet.StringVar(&opts.listen, "listen", "", "address for the HTTP ingestion server (host:port)")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&opts.help, "help", "h", false, "show help")
	return flagSet
}

// parseArgs parses flags up to the first positional argument. Anything
// after it, or after "--", is the child command.
func parseArgs(args []string) (*options, error) {
	opts := &options{}
	flagSet := newFlagSet(opts)
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	opts.command = flagSet.Args()
	return opts, nil
}

func printHelp(w io.Writer) {
	flagSet := newFlagSet(&options{})
	fmt.Fprintf(w, "Usage: herald-relay [flags] [--] [command [args...]]\n\n")
	fmt.Fprintf(w, "Runs command (or reads stdin) and delivers each output line as a log event.\n\n")
	fmt.Fprintf(w, "Flags:\n%s", flagSet.FlagUsages())
}

// loadConfig reads the config file named by --config or the
// environment, applies command-line overrides, and validates the
// result. With neither set, the defaults describe a local-only relay.
func loadConfig(opts *options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if opts.name != "" {
		cfg.Name = opts.name
	}
	if opts.producer != "" {
		cfg.Relay.Producer = opts.producer
	}
	if opts.room != "" {
		cfg.Matrix.Room = opts.room
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.color != "" {
		cfg.Local.Color = opts.color
	}
	if opts.listen != "" {
		cfg.Ingest.Listen = opts.listen
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// run wires the relay together and returns the exit code the process
// should finish with.
func run(args []string) (int, error) {
	opts, err := parseArgs(args)
	if err != nil {
		return 0, fmt.Errorf("%w (see herald-relay --help)", err)
	}
	if opts.help {
		printHelp(os.Stdout)
		return 0, nil
	}
	if opts.showVersion {
		fmt.Printf("herald-relay %s\n", version.Info())
		return 0, nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return 0, err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return 0, err
	}

	// Validate has already accepted both of these.
	location, _ := cfg.Location()
	colorMode, _ := localsink.ParseColorMode(cfg.Local.Color)

	local := localsink.New(localsink.Options{Output: os.Stdout, Color: colorMode})
	deliveryMetrics := metrics.NewDelivery()
	runID := uuid.NewString()

	dispatcher := delivery.New(delivery.Config{
		DestinationID: cfg.Matrix.Room,
		Name:          cfg.Name,
		RunID:         runID,
		Producer:      cfg.Relay.Producer,
		Formatter:     render.NewFormatter(render.Options{Profile: local.Profile(), Location: location}),
		Local:         local,
		Logger:        logger,
		Metrics:       deliveryMetrics,
		SendTimeout:   cfg.SendTimeout(),
	})
	defer dispatcher.Stop()

	logger.Info("herald-relay starting",
		"version", version.Info(),
		"name", cfg.Name,
		"run_id", runID,
		"environment", cfg.Environment,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	matrix, err := connectRemote(ctx, cfg, logger)
	switch {
	case err != nil:
		logger.Warn("remote delivery unavailable, rendering locally only", "error", err)
		dispatcher.Disable(err.Error())
	case matrix == nil:
		dispatcher.Disable("no homeserver configured")
	default:
		// The dispatcher must be stopped before the session is closed.
		defer func() {
			dispatcher.Stop()
			matrix.Close()
		}()
		dispatcher.Initialize(matrix.sink)
		// Failures are logged by the dispatcher; the relay runs regardless.
		_ = dispatcher.SendStartupNotice(ctx)
	}

	if cfg.Ingest.Listen != "" {
		listener, err := net.Listen("tcp", cfg.Ingest.Listen)
		if err != nil {
			return 0, fmt.Errorf("ingest listener: %w", err)
		}
		server := ingest.New(ingest.Config{
			Dispatcher: dispatcher,
			Metrics:    deliveryMetrics.Handler(),
			Logger:     logger,
		})
		serverDone := make(chan error, 1)
		go func() { serverDone <- server.Serve(ctx, listener) }()
		defer func() {
			cancel()
			if err := <-serverDone; err != nil {
				logger.Error("ingest server error", "error", err)
			}
		}()
	}

	signals := make(chan os.Signal, 4)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	var code int
	var runErr error
	if len(opts.command) > 0 {
		childErr := runChild(opts.command, dispatcher, signals, logger)
		if childErr != nil && !isExitError(childErr) {
			runErr = childErr
		} else {
			code = process.ExitCode(childErr)
			logger.Info("child exited", "command", opts.command[0], "exit_code", code)
		}
	} else {
		readContext, stopReading := context.WithCancel(ctx)
		go func() {
			select {
			case sig := <-signals:
				logger.Info("signal received, stopping", "signal", sig.String())
				stopReading()
			case <-readContext.Done():
			}
		}()
		err := ingestLines(readContext, os.Stdin, dispatcher)
		stopReading()
		if err != nil {
			logger.Warn("reading stdin", "error", err)
		}
	}

	shutdown(dispatcher, cfg, logger)
	return code, runErr
}

// shutdown flushes queued events and sends the shutdown notice, then
// stops the dispatcher. Once it returns no drain pass is running.
func shutdown(dispatcher *delivery.Dispatcher, cfg *config.Config, logger *slog.Logger) {
	flushContext, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := dispatcher.Flush(flushContext); err != nil {
		stats := dispatcher.Stats()
		logger.Warn("exiting with undelivered events", "pending", stats.Pending, "error", err)
	}

	noticeContext, cancelNotice := context.WithTimeout(context.Background(), cfg.SendTimeout()+delivery.ShutdownGrace)
	defer cancelNotice()
	_ = dispatcher.SendShutdownNotice(noticeContext)
	dispatcher.Stop()
}
