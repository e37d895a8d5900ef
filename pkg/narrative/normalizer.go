package narrative

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// RawEventRecord is one loosely-typed upstream record. Field names and value
// shapes vary by source and schema version; the normalizer resolves them
// through ordered alias chains.
type RawEventRecord map[string]interface{}

// extractor pulls one candidate value out of a raw field value
type extractor func(value interface{}) (string, bool)

// candidate pairs an upstream key with the extractor that understands its shape
type candidate struct {
	key     string
	extract extractor
}

// Alias chains are data, not branching code: adding a new upstream field name
// is an entry here, not a new code path. Order matters; first match wins.
var (
	idCandidates = []candidate{
		{"id", stringOrIntValue},
		{"event_id", stringOrIntValue},
		{"index", intStringValue},
	}
	clockCandidates = []candidate{
		{"game_clock", stringValue},
		{"clock", stringValue},
	}
	kindCandidates = []candidate{
		{"event_type", stringValue},
		{"play_type", stringValue},
		{"type", stringValue},
	}
	teamCandidates = []candidate{
		{"team", stringValue},
		{"team_abbreviation", stringValue},
	}
	playerCandidates = []candidate{
		{"player_name", stringValue},
		{"player", stringValue},
	}
	descriptionCandidates = []candidate{
		{"description", stringValue},
		{"play_description", stringValue},
		{"text", stringValue},
	}
	revealCandidates = []candidate{
		{"reveal_level", stringValue},
		{"spoiler_level", stringValue},
	}
	periodCandidates = []candidate{
		{"period", intStringValue},
		{"quarter", intStringValue},
	}
)

// kindAliases maps declared upstream type strings onto the closed kind set.
// Anything unrecognized becomes KindUnknown with the original string kept.
var kindAliases = map[string]EventKind{
	"play":        KindPlay,
	"pbp":         KindPlay,
	"play_event":  KindPlay,
	"social":      KindSocialPost,
	"social_post": KindSocialPost,
	"socialpost":  KindSocialPost,
	"post":        KindSocialPost,
	"odds":        KindOddsUpdate,
	"odds_update": KindOddsUpdate,
	"oddsupdate":  KindOddsUpdate,
	"line_move":   KindOddsUpdate,
}

// Player-name derivation patterns, tried in order against the description:
// a name leading the string (initial-plus-surname or first-plus-last,
// interior capitals allowed), then a "by <Name>" / "on <Name>" reference.
var (
	leadingNamePattern = regexp.MustCompile(`^([A-Z][A-Za-z]*\.?\s+[A-Z][A-Za-z'.-]+)`)
	byNamePattern      = regexp.MustCompile(`\b(?:by|on)\s+([A-Z][A-Za-z'.-]*(?:\s+[A-Z][A-Za-z'.-]+)?)`)
)

// Normalizer turns heterogeneous raw records into canonical events. It is
// total: every record yields an event, with absent or malformed fields
// degrading to absent values.
type Normalizer struct {
	sport SportProfile
}

// NewNormalizer creates a normalizer for the given sport profile
func NewNormalizer(sport SportProfile) *Normalizer {
	return &Normalizer{sport: sport}
}

// Normalize converts an ordered record sequence into one event per record
func (n *Normalizer) Normalize(records []RawEventRecord) []NormalizedEvent {
	events := make([]NormalizedEvent, len(records))
	for i, record := range records {
		events[i] = n.NormalizeRecord(record, i)
	}
	return events
}

// NormalizeRecord converts a single record. The position guarantees a stable,
// unique synthesized id when the record carries none of its own.
func (n *Normalizer) NormalizeRecord(record RawEventRecord, position int) NormalizedEvent {
	event := NormalizedEvent{
		ID:          resolveString(record, idCandidates),
		Clock:       resolveString(record, clockCandidates),
		Description: resolveString(record, descriptionCandidates),
		Team:        resolveString(record, teamCandidates),
		Player:      resolveString(record, playerCandidates),
	}

	if event.ID == "" {
		event.ID = fmt.Sprintf("event-%d", position)
	}

	rawKind := resolveString(record, kindCandidates)
	event.Kind, event.RawKind = resolveKind(rawKind)

	if period, ok := resolveInt(record, periodCandidates); ok {
		event.Period = &period
	}

	event.Score = resolveScore(record)
	event.Reveal = resolveReveal(record)

	if event.Player == "" {
		event.Player = derivePlayerName(event.Description)
	}

	if len(record) > 0 {
		event.Attrs = make(map[string]interface{}, len(record))
		for k, v := range record {
			event.Attrs[k] = v
		}
	}

	return event
}

// DecodeRecords unmarshals raw JSON payloads into records. Malformed payloads
// decode to empty records so downstream normalization still yields a placeholder
// event instead of dropping a timeline position.
func DecodeRecords(payloads [][]byte) []RawEventRecord {
	records := make([]RawEventRecord, len(payloads))
	for i, payload := range payloads {
		var record RawEventRecord
		if err := json.Unmarshal(payload, &record); err != nil || record == nil {
			record = RawEventRecord{}
		}
		records[i] = record
	}
	return records
}

// resolveKind maps a declared type string onto the closed kind set
func resolveKind(raw string) (EventKind, string) {
	if raw == "" {
		return KindUnknown, ""
	}
	if kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return kind, ""
	}
	return KindUnknown, raw
}

// resolveReveal maps a reveal tag onto the closed reveal set, defaulting to
// untagged for anything unrecognized
func resolveReveal(record RawEventRecord) RevealLevel {
	switch strings.ToLower(resolveString(record, revealCandidates)) {
	case "pre", "pregame", "pre_reveal":
		return RevealPre
	case "post", "postgame", "post_reveal":
		return RevealPost
	default:
		return RevealUnknown
	}
}

// resolveScore tries the three known score shapes in order: separate
// home/away integers, a delimited "away-home" string, then a nested object.
// Unparseable input yields a nil score, never an error.
func resolveScore(record RawEventRecord) *Score {
	if home, ok := intValue(record["home_score"]); ok {
		if away, ok := intValue(record["away_score"]); ok {
			return &Score{Home: home, Away: away}
		}
	}

	switch v := record["score"].(type) {
	case string:
		parts := strings.Split(v, "-")
		if len(parts) != 2 {
			return nil
		}
		away, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		home, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			return nil
		}
		return &Score{Home: home, Away: away}
	case map[string]interface{}:
		home, okHome := intValue(v["home"])
		away, okAway := intValue(v["away"])
		if okHome && okAway {
			return &Score{Home: home, Away: away}
		}
	}

	return nil
}

// derivePlayerName attempts to pull a player name out of free-form
// description text, returning empty when neither pattern matches
func derivePlayerName(description string) string {
	if description == "" {
		return ""
	}
	if m := leadingNamePattern.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	if m := byNamePattern.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	return ""
}

// resolveString walks an alias chain and returns the first extractable value
func resolveString(record RawEventRecord, candidates []candidate) string {
	for _, c := range candidates {
		if value, exists := record[c.key]; exists {
			if s, ok := c.extract(value); ok {
				return s
			}
		}
	}
	return ""
}

// resolveInt walks an alias chain expecting integer-shaped values
func resolveInt(record RawEventRecord, candidates []candidate) (int, bool) {
	for _, c := range candidates {
		if value, exists := record[c.key]; exists {
			if n, ok := intValue(value); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// Extractors. JSON numbers arrive as float64; integral values are accepted,
// fractional ones are not.

func stringValue(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func intStringValue(v interface{}) (string, bool) {
	if n, ok := intValue(v); ok {
		return strconv.Itoa(n), true
	}
	return "", false
}

func stringOrIntValue(v interface{}) (string, bool) {
	if s, ok := stringValue(v); ok {
		return s, true
	}
	return intStringValue(v)
}

func intValue(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
		return 0, false
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		return 0, false
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
		return 0, false
	default:
		return 0, false
	}
}
