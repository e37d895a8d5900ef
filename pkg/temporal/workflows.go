package temporal

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// Workflow IDs
	IngestionWorkflowIDPrefix = "game-"
	AssemblyWorkflowIDPrefix  = "timeline-"

	// Signal names
	EventSignalName = "play-by-play-signal"

	// Activity names
	AppendEventsActivityName     = "append-events"
	LoadEventsActivityName       = "load-events"
	AssembleTimelineActivityName = "assemble-timeline"

	// Default values
	DefaultContinueAsNewThreshold = 1000 // raw records before ContinueAsNew
)

// EventSignal carries a batch of raw play-by-play records into an ingestion
// workflow
type EventSignal struct {
	Events [][]byte `json:"events"` // Raw JSON records
}

// IngestionWorkflowState tracks how much one game's workflow has ingested
type IngestionWorkflowState struct {
	GameID      string    `json:"game_id"`
	EventCount  int       `json:"event_count"`
	LastEventAt time.Time `json:"last_event_at"`
}

// GameIngestionWorkflow receives raw play-by-play batches for one game and
// appends them to storage. It runs for the lifetime of the game and continues
// as new once its history grows past the threshold.
func GameIngestionWorkflow(ctx workflow.Context, gameID string) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting game ingestion workflow", "gameID", gameID)

	state := IngestionWorkflowState{
		GameID:      gameID,
		LastEventAt: workflow.Now(ctx),
	}

	signalChan := workflow.GetSignalChannel(ctx, EventSignalName)

	for {
		var signal EventSignal
		signalChan.Receive(ctx, &signal)

		logger.Info("Received play-by-play batch", "count", len(signal.Events))

		ao := workflow.ActivityOptions{
			ScheduleToCloseTimeout: 30 * time.Second,
			RetryPolicy: &temporal.RetryPolicy{
				MaximumAttempts: 3,
			},
		}
		ctx = workflow.WithActivityOptions(ctx, ao)

		err := workflow.ExecuteActivity(ctx, AppendEventsActivityName, gameID, signal.Events).Get(ctx, nil)
		if err != nil {
			logger.Error("Failed to append records", "error", err)
			// Keep receiving later batches rather than failing the game.
			continue
		}

		state.EventCount += len(signal.Events)
		state.LastEventAt = workflow.Now(ctx)

		if state.EventCount >= DefaultContinueAsNewThreshold {
			logger.Info("Continuing as new", "eventCount", state.EventCount)
			return workflow.NewContinueAsNewError(ctx, GameIngestionWorkflow, gameID)
		}
	}
}

// TimelineAssemblyWorkflow loads one game's ingested records and runs the
// narrative pipeline over them
func TimelineAssemblyWorkflow(ctx workflow.Context, request AssembleRequest) (*AssembleResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting timeline assembly workflow", "gameID", request.GameID, "sport", request.Sport)

	ao := workflow.ActivityOptions{
		ScheduleToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var events [][]byte
	err := workflow.ExecuteActivity(ctx, LoadEventsActivityName, request.GameID).Get(ctx, &events)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	var result *AssembleResult
	err = workflow.ExecuteActivity(ctx, AssembleTimelineActivityName, events, request).Get(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble timeline: %w", err)
	}

	logger.Info("Timeline assembled", "gameID", request.GameID,
		"events", len(result.Timeline.Events), "groups", len(result.Timeline.Groups))
	return result, nil
}

// Utility functions for workflow IDs

// GenerateIngestionWorkflowID creates a workflow ID for a game's ingestion
func GenerateIngestionWorkflowID(gameID string) string {
	return IngestionWorkflowIDPrefix + gameID
}

// GenerateAssemblyWorkflowID creates a workflow ID for a timeline assembly run
func GenerateAssemblyWorkflowID(gameID string) string {
	return fmt.Sprintf("%s%s-%d", AssemblyWorkflowIDPrefix, gameID, time.Now().UnixNano())
}
