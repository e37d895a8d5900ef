package narrative

// EventKind classifies a timeline entry by its upstream record type
type EventKind string

const (
	KindPlay       EventKind = "play"
	KindSocialPost EventKind = "socialPost"
	KindOddsUpdate EventKind = "oddsUpdate"
	KindUnknown    EventKind = "unknown"
)

// Tier is the ordinal narrative importance of a single play; lower is more important
type Tier int

const (
	TierUnset     Tier = 0
	TierPrimary   Tier = 1
	TierSecondary Tier = 2
	TierTertiary  Tier = 3
)

// String returns the human-readable tier name
func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unset"
	}
}

// Score is a running game score at a point in the timeline
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Margin returns home minus away
func (s Score) Margin() int {
	return s.Home - s.Away
}

// RevealLevel tags content as safe or unsafe to show before the viewer has
// opted into seeing the game's outcome
type RevealLevel string

const (
	RevealPre     RevealLevel = "pre"
	RevealPost    RevealLevel = "post"
	RevealUnknown RevealLevel = ""
)

// NormalizedEvent is the canonical, schema-independent representation of one
// timeline entry. Construction never fails: absent or malformed upstream
// fields become zero values or nil pointers, not errors.
type NormalizedEvent struct {
	ID          string                 `json:"id"`
	Kind        EventKind              `json:"kind"`
	RawKind     string                 `json:"raw_kind,omitempty"`
	Period      *int                   `json:"period,omitempty"`
	Clock       string                 `json:"clock,omitempty"`
	Description string                 `json:"description,omitempty"`
	Team        string                 `json:"team,omitempty"`
	Player      string                 `json:"player,omitempty"`
	Score       *Score                 `json:"score,omitempty"`
	Tier        Tier                   `json:"tier,omitempty"`
	Reveal      RevealLevel            `json:"reveal,omitempty"`
	Attrs       map[string]interface{} `json:"attrs,omitempty"`
}

// PlayGroup is an ordered cluster of events sharing a tier. Groups emitted
// for one play list form a total, order-preserving partition of that list.
type PlayGroup struct {
	ID     string            `json:"id"`
	Tier   Tier              `json:"tier"`
	Label  string            `json:"label,omitempty"`
	Events []NormalizedEvent `json:"events"`
}

// ExternalGroup is a server-supplied contiguous span of play indices with a
// human-readable summary label
type ExternalGroup struct {
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Label      string `json:"label"`
}

// ID derives the group's identity from its span boundaries
func (g ExternalGroup) ID() string {
	return groupID("server", g.StartIndex, g.EndIndex)
}

// BeatType labels the narrative shape of a multi-play segment
type BeatType string

const (
	BeatFastStart       BeatType = "fastStart"
	BeatRun             BeatType = "run"
	BeatBackAndForth    BeatType = "backAndForth"
	BeatEarlyControl    BeatType = "earlyControl"
	BeatResponse        BeatType = "response"
	BeatStall           BeatType = "stall"
	BeatCrunchSetup     BeatType = "crunchSetup"
	BeatClosingSequence BeatType = "closingSequence"
	BeatOvertime        BeatType = "overtime"
)

var beatHighlights = map[BeatType]bool{
	BeatRun:             true,
	BeatCrunchSetup:     true,
	BeatClosingSequence: true,
	BeatOvertime:        true,
}

// IsHighlight reports whether this beat type is rendered with highlight styling
func (b BeatType) IsHighlight() bool {
	return beatHighlights[b]
}

// NarrativeSegment is an externally supplied, ordered range of plays with a
// narrative text. The beat deriver labels segments but never changes their
// boundaries.
type NarrativeSegment struct {
	StartPlayID string   `json:"start_play_id"`
	EndPlayID   string   `json:"end_play_id"`
	Period      int      `json:"period,omitempty"`
	ScoreBefore Score    `json:"score_before"`
	ScoreAfter  Score    `json:"score_after"`
	Progression []Score  `json:"progression,omitempty"`
	Text        string   `json:"text,omitempty"`
	Beat        BeatType `json:"beat,omitempty"`
	BeatTeam    string   `json:"beat_team,omitempty"`
	Highlight   bool     `json:"highlight"`
}

// Timeline is the assembled narrative view of one game's play-by-play
type Timeline struct {
	GameID   string             `json:"game_id,omitempty"`
	Sport    string             `json:"sport"`
	Events   []NormalizedEvent  `json:"events"`
	Groups   []PlayGroup        `json:"groups"`
	Segments []NarrativeSegment `json:"segments,omitempty"`
}
