package temporal

import "github.com/gamethread/narrative-timeline/pkg/narrative"

// AssembleRequest asks for one game's narrative timeline to be assembled
// from its ingested raw records
type AssembleRequest struct {
	GameID          string                       `json:"game_id"`
	Sport           string                       `json:"sport,omitempty"`
	OutcomeRevealed bool                         `json:"outcome_revealed"`
	ApplyRevealGate bool                         `json:"apply_reveal_gate"`
	ExternalGroups  []narrative.ExternalGroup    `json:"external_groups,omitempty"`
	Segments        []narrative.NarrativeSegment `json:"segments,omitempty"`
}

// AssembleResult carries the assembled timeline plus processing metadata
type AssembleResult struct {
	Timeline narrative.Timeline     `json:"timeline"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
