package temporal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gamethread/narrative-timeline/pkg/narrative"
)

// Activities defines the activities used by the timeline workflows
type Activities interface {
	AppendEventsActivity(ctx context.Context, gameID string, events [][]byte) error
	LoadEventsActivity(ctx context.Context, gameID string) ([][]byte, error)
	AssembleTimelineActivity(ctx context.Context, events [][]byte, request AssembleRequest) (*AssembleResult, error)
}

// StorageService is the durable store for ingested raw play-by-play records
type StorageService interface {
	AppendEvents(ctx context.Context, gameID string, events [][]byte) error
	LoadEvents(ctx context.Context, gameID string) ([][]byte, error)
}

// ActivitiesImpl implements the Activities interface
type ActivitiesImpl struct {
	logger   *slog.Logger
	storage  StorageService
	profiles map[string]narrative.SportProfile
}

// NewActivitiesImpl creates the activities implementation. The profiles map
// overrides or extends the built-in sport profiles; pass nil to use defaults.
func NewActivitiesImpl(logger *slog.Logger, storage StorageService, profiles map[string]narrative.SportProfile) *ActivitiesImpl {
	return &ActivitiesImpl{
		logger:   logger,
		storage:  storage,
		profiles: profiles,
	}
}

// AppendEventsActivity persists a batch of raw records for a game
func (a *ActivitiesImpl) AppendEventsActivity(ctx context.Context, gameID string, events [][]byte) error {
	a.logger.Info("Appending records", "gameID", gameID, "count", len(events))

	if err := a.storage.AppendEvents(ctx, gameID, events); err != nil {
		a.logger.Error("Failed to append to storage", "error", err)
		return fmt.Errorf("failed to append to storage: %w", err)
	}
	return nil
}

// LoadEventsActivity loads all ingested records for a game
func (a *ActivitiesImpl) LoadEventsActivity(ctx context.Context, gameID string) ([][]byte, error) {
	a.logger.Info("Loading records", "gameID", gameID)

	events, err := a.storage.LoadEvents(ctx, gameID)
	if err != nil {
		a.logger.Error("Failed to load records", "error", err)
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	a.logger.Info("Loaded records", "gameID", gameID, "count", len(events))
	return events, nil
}

// AssembleTimelineActivity runs the narrative pipeline over raw records.
// The pipeline itself is total; this activity only fails on storage-layer
// problems upstream of it.
func (a *ActivitiesImpl) AssembleTimelineActivity(ctx context.Context, events [][]byte, request AssembleRequest) (*AssembleResult, error) {
	a.logger.Info("Assembling timeline", "gameID", request.GameID, "recordCount", len(events))

	opts := narrative.AssembleOptions{
		GameID:          request.GameID,
		Sport:           request.Sport,
		ExternalGroups:  request.ExternalGroups,
		Segments:        request.Segments,
		ApplyRevealGate: request.ApplyRevealGate,
		OutcomeRevealed: request.OutcomeRevealed,
	}
	if profile, ok := a.profiles[request.Sport]; ok {
		opts.Profile = &profile
	}

	timeline := narrative.AssembleTimeline(narrative.DecodeRecords(events), opts)

	result := &AssembleResult{
		Timeline: timeline,
		Metadata: map[string]interface{}{
			"record_count":  len(events),
			"group_count":   len(timeline.Groups),
			"segment_count": len(timeline.Segments),
		},
	}

	a.logger.Info("Timeline assembled", "gameID", request.GameID,
		"events", len(timeline.Events), "groups", len(timeline.Groups))
	return result, nil
}
