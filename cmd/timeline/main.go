package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"

	hclconfig "github.com/gamethread/narrative-timeline/pkg/hcl"
	"github.com/gamethread/narrative-timeline/pkg/narrative"
	"github.com/gamethread/narrative-timeline/pkg/temporal"
)

const defaultTaskQueue = "narrative-timeline-task-queue"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	var (
		gameID      string
		eventsPath  string
		requestPath string
		address     string
		namespace   string
		displayJSON bool
	)

	flag.StringVar(&gameID, "game", "", "Game ID (required)")
	flag.StringVar(&eventsPath, "events", "", "Path to a JSON file of raw play-by-play records to ingest")
	flag.StringVar(&requestPath, "request", "", "Path to an HCL assembly request file")
	flag.StringVar(&address, "address", "localhost:7233", "Address of Temporal server")
	flag.StringVar(&namespace, "namespace", "default", "Temporal namespace")
	flag.BoolVar(&displayJSON, "json", false, "Display the timeline as JSON")
	flag.Parse()

	if gameID == "" {
		logger.Error("Game ID is required")
		flag.Usage()
		os.Exit(1)
	}
	if eventsPath == "" && requestPath == "" {
		logger.Error("At least one of -events or -request is required")
		flag.Usage()
		os.Exit(1)
	}

	c, err := client.Dial(client.Options{
		HostPort:  address,
		Namespace: namespace,
	})
	if err != nil {
		logger.Error("Unable to create Temporal client", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	ctx := context.Background()

	if eventsPath != "" {
		if err := ingestEvents(ctx, c, logger, gameID, eventsPath); err != nil {
			logger.Error("Ingestion failed", "error", err)
			os.Exit(1)
		}
	}

	if requestPath != "" {
		if err := assembleTimeline(ctx, c, logger, gameID, requestPath, displayJSON); err != nil {
			logger.Error("Assembly failed", "error", err)
			os.Exit(1)
		}
	}
}

// ingestEvents reads a JSON array of raw records and signals them into the
// game's ingestion workflow
func ingestEvents(ctx context.Context, c client.Client, logger *slog.Logger, gameID, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read events file: %w", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(content, &records); err != nil {
		return fmt.Errorf("events file must be a JSON array: %w", err)
	}

	events := make([][]byte, len(records))
	for i, record := range records {
		events[i] = []byte(record)
	}

	workflowID := temporal.GenerateIngestionWorkflowID(gameID)
	_, err = c.SignalWithStartWorkflow(
		ctx,
		workflowID,
		temporal.EventSignalName,
		temporal.EventSignal{Events: events},
		client.StartWorkflowOptions{
			ID:        workflowID,
			TaskQueue: defaultTaskQueue,
		},
		temporal.GameIngestionWorkflow,
		gameID,
	)
	if err != nil {
		return fmt.Errorf("failed to signal ingestion workflow: %w", err)
	}

	logger.Info("Ingested records", "gameID", gameID, "count", len(events))
	return nil
}

// assembleTimeline parses the HCL request, runs the assembly workflow, and
// prints the resulting timeline
func assembleTimeline(ctx context.Context, c client.Client, logger *slog.Logger, gameID, path string, displayJSON bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read request file: %w", err)
	}

	request, err := hclconfig.ParseAssembleRequest(string(content))
	if err != nil {
		return fmt.Errorf("failed to parse request: %w", err)
	}
	request.GameID = gameID

	run, err := c.ExecuteWorkflow(
		ctx,
		client.StartWorkflowOptions{
			ID:        temporal.GenerateAssemblyWorkflowID(gameID),
			TaskQueue: defaultTaskQueue,
		},
		temporal.TimelineAssemblyWorkflow,
		*request,
	)
	if err != nil {
		return fmt.Errorf("failed to start assembly workflow: %w", err)
	}

	var result temporal.AssembleResult
	if err := run.Get(ctx, &result); err != nil {
		return fmt.Errorf("assembly workflow failed: %w", err)
	}

	if displayJSON {
		encoded, err := json.MarshalIndent(result.Timeline, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode timeline: %w", err)
		}
		fmt.Println(string(encoded))
		return nil
	}

	printTimeline(result.Timeline)
	return nil
}

// printTimeline renders a compact text view of the assembled timeline
func printTimeline(timeline narrative.Timeline) {
	fmt.Printf("Timeline for %s (%s): %d events, %d groups, %d segments\n",
		timeline.GameID, timeline.Sport, len(timeline.Events), len(timeline.Groups), len(timeline.Segments))

	for _, group := range timeline.Groups {
		label := group.Label
		if label == "" && len(group.Events) == 1 {
			label = group.Events[0].Description
		}
		fmt.Printf("  [%s] %-9s %s (%d plays)\n", group.ID, group.Tier, label, len(group.Events))
	}

	for i, segment := range timeline.Segments {
		marker := " "
		if segment.Highlight {
			marker = "*"
		}
		fmt.Printf("%s segment %d: %s (%d-%d -> %d-%d)\n", marker, i+1, segment.Beat,
			segment.ScoreBefore.Away, segment.ScoreBefore.Home,
			segment.ScoreAfter.Away, segment.ScoreAfter.Home)
	}
}
