package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	hclconfig "github.com/gamethread/narrative-timeline/pkg/hcl"
	"github.com/gamethread/narrative-timeline/pkg/http"
	"github.com/gamethread/narrative-timeline/pkg/narrative"
	"github.com/gamethread/narrative-timeline/pkg/temporal"
)

func main() {
	var (
		httpAddr     = flag.String("http-addr", ":8080", "HTTP server address")
		temporalAddr = flag.String("temporal-addr", "localhost:7233", "Temporal server address")
		namespace    = flag.String("namespace", "default", "Temporal namespace")
		taskQueue    = flag.String("task-queue", "narrative-timeline-task-queue", "Temporal task queue")
		sportConfig  = flag.String("sport-config", "", "Path to sport profile HCL file or directory (optional)")
		logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	var logHandler slog.Handler
	switch *logLevel {
	case "debug":
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	case "warn":
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})
	case "error":
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	default:
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("Starting narrative timeline service",
		"http_addr", *httpAddr,
		"temporal_addr", *temporalAddr,
		"namespace", *namespace,
		"task_queue", *taskQueue,
	)

	// Sport profiles: built-in defaults, optionally tuned through HCL.
	var profiles map[string]narrative.SportProfile
	if *sportConfig != "" {
		loaded, err := hclconfig.LoadSportProfiles(*sportConfig)
		if err != nil {
			logger.Error("Failed to load sport profiles", "path", *sportConfig, "error", err)
			os.Exit(1)
		}
		profiles = loaded
		logger.Info("Loaded sport profiles", "count", len(profiles), "path", *sportConfig)
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort:  *temporalAddr,
		Namespace: *namespace,
	})
	if err != nil {
		logger.Error("Failed to create Temporal client", "error", err)
		os.Exit(1)
	}
	defer temporalClient.Close()

	// In-memory storage keeps ingested raw records for the demo deployment.
	storage := temporal.NewMockStorageService()
	activities := temporal.NewActivitiesImpl(logger, storage, profiles)

	w := worker.New(temporalClient, *taskQueue, worker.Options{})

	w.RegisterWorkflow(temporal.GameIngestionWorkflow)
	w.RegisterWorkflow(temporal.TimelineAssemblyWorkflow)

	// Workflows dispatch activities by wire name, so register under those names.
	w.RegisterActivityWithOptions(activities.AppendEventsActivity,
		activity.RegisterOptions{Name: temporal.AppendEventsActivityName})
	w.RegisterActivityWithOptions(activities.LoadEventsActivity,
		activity.RegisterOptions{Name: temporal.LoadEventsActivityName})
	w.RegisterActivityWithOptions(activities.AssembleTimelineActivity,
		activity.RegisterOptions{Name: temporal.AssembleTimelineActivityName})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("Received shutdown signal")
		cancel()
	}()

	workerErrChan := make(chan error, 1)
	go func() {
		if err := w.Run(worker.InterruptCh()); err != nil {
			workerErrChan <- err
		}
	}()

	server := http.NewServer(logger, temporalClient, *httpAddr)
	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-workerErrChan:
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	case err := <-serverErrChan:
		logger.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
