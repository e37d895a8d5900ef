package narrative

import (
	"reflect"
	"testing"
)

func sampleRecords() []RawEventRecord {
	return []RawEventRecord{
		{"id": "p1", "event_type": "play", "period": float64(1), "game_clock": "11:40", "description": "Jayson Tatum makes layup", "score": "0-2"},
		{"id": "p2", "event_type": "play", "period": float64(1), "game_clock": "11:10", "description": "Defensive rebound by Anthony Davis"},
		{"id": "p3", "event_type": "play", "period": float64(1), "game_clock": "10:55", "description": "LeBron James misses 3-pointer"},
		{"id": "p4", "event_type": "social_post", "period": float64(1), "description": "Tatum looking sharp early", "reveal_level": "pre"},
		{"id": "p5", "event_type": "play", "period": float64(2), "game_clock": "6:00", "description": "LeBron James makes dunk", "score": "4-2"},
		{"id": "p6", "event_type": "odds_update", "period": float64(2), "description": "BOS -2.5", "reveal_level": "post"},
		{"id": "p7", "event_type": "play", "period": float64(2), "game_clock": "0:30", "description": "Jaylen Brown makes jumper", "score": "4-8"},
	}
}

func TestAssembleTimeline_EndToEnd(t *testing.T) {
	timeline := AssembleTimeline(sampleRecords(), AssembleOptions{
		GameID: "game-42",
		Sport:  "basketball",
	})

	if timeline.Sport != "basketball" {
		t.Errorf("Expected sport basketball, got %s", timeline.Sport)
	}
	if len(timeline.Events) != 7 {
		t.Fatalf("Expected 7 events, got %d", len(timeline.Events))
	}

	// Groups partition the full event list in order.
	var ids []string
	for _, group := range timeline.Groups {
		for _, event := range group.Events {
			ids = append(ids, event.ID)
		}
	}
	want := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("Groups do not partition events: got %v, want %v", ids, want)
	}

	// Local fallback segmentation is one segment per period.
	if len(timeline.Segments) != 2 {
		t.Fatalf("Expected 2 period segments, got %d", len(timeline.Segments))
	}
	if timeline.Segments[0].ScoreAfter != (Score{Home: 2, Away: 0}) {
		t.Errorf("Expected first period to end 2-0 home, got %+v", timeline.Segments[0].ScoreAfter)
	}
	if timeline.Segments[1].Beat != BeatClosingSequence {
		t.Errorf("Expected final segment labeled closingSequence, got %s", timeline.Segments[1].Beat)
	}
	for _, segment := range timeline.Segments {
		if segment.Beat == "" {
			t.Errorf("Segment %s..%s missing beat", segment.StartPlayID, segment.EndPlayID)
		}
	}
}

func TestAssembleTimeline_Determinism(t *testing.T) {
	opts := AssembleOptions{GameID: "game-42", Sport: "basketball"}

	first := AssembleTimeline(sampleRecords(), opts)
	second := AssembleTimeline(sampleRecords(), opts)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Assembly is not deterministic")
	}
}

func TestAssembleTimeline_RevealGate(t *testing.T) {
	hidden := AssembleTimeline(sampleRecords(), AssembleOptions{
		Sport:           "basketball",
		ApplyRevealGate: true,
		OutcomeRevealed: false,
	})

	// Only the pre-tagged social post survives; untagged and post-tagged
	// items are treated as potential spoilers.
	if len(hidden.Events) != 1 || hidden.Events[0].ID != "p4" {
		t.Fatalf("Expected only the pre-tagged event, got %+v", hidden.Events)
	}

	// Groups still partition whatever remains visible.
	total := 0
	for _, group := range hidden.Groups {
		total += len(group.Events)
	}
	if total != len(hidden.Events) {
		t.Errorf("Visible groups cover %d events, want %d", total, len(hidden.Events))
	}

	revealed := AssembleTimeline(sampleRecords(), AssembleOptions{
		Sport:           "basketball",
		ApplyRevealGate: true,
		OutcomeRevealed: true,
	})
	if len(revealed.Events) != 7 {
		t.Errorf("Expected all 7 events once the outcome is revealed, got %d", len(revealed.Events))
	}
}

func TestAssembleTimeline_RevealGateRemapsServerGroups(t *testing.T) {
	records := []RawEventRecord{
		{"id": "e1", "event_type": "play", "period": float64(4), "game_clock": "1:30", "description": "Jaylen Brown makes jumper", "score": "98-100", "reveal_level": "post"},
		{"id": "e2", "event_type": "play", "period": float64(4), "game_clock": "1:10", "description": "Austin Reaves makes 3-pointer", "score": "101-100", "reveal_level": "post"},
		{"id": "e3", "event_type": "play", "period": float64(2), "game_clock": "8:40", "description": "Rui Hachimura misses jumper", "reveal_level": "pre"},
		{"id": "e4", "event_type": "play", "period": float64(2), "game_clock": "8:20", "description": "Sam Hauser misses 3-pointer", "reveal_level": "pre"},
		{"id": "e5", "event_type": "play", "period": float64(2), "game_clock": "8:05", "description": "Gabe Vincent misses layup", "reveal_level": "pre"},
		{"id": "e6", "event_type": "play", "period": float64(2), "game_clock": "7:50", "description": "Al Horford makes layup", "score": "0-2", "reveal_level": "pre"},
	}
	// Spans index the raw record list; the first two records are gated out.
	external := []ExternalGroup{
		{StartIndex: 0, EndIndex: 1, Label: "late scoring burst"},
		{StartIndex: 2, EndIndex: 4, Label: "3 missed shots"},
	}

	timeline := AssembleTimeline(records, AssembleOptions{
		Sport:           "basketball",
		ExternalGroups:  external,
		ApplyRevealGate: true,
		OutcomeRevealed: false,
	})

	if len(timeline.Events) != 4 {
		t.Fatalf("Expected 4 visible events, got %d", len(timeline.Events))
	}

	var labeled *PlayGroup
	for i := range timeline.Groups {
		if timeline.Groups[i].Label == "3 missed shots" {
			labeled = &timeline.Groups[i]
		}
		if timeline.Groups[i].Label == "late scoring burst" {
			t.Errorf("Fully gated-out span must not survive: %+v", timeline.Groups[i])
		}
	}
	if labeled == nil {
		t.Fatalf("Expected remapped server group in output, got %+v", timeline.Groups)
	}

	// The labeled group must cover exactly the three misses, not whichever
	// events happen to sit at its raw indices after filtering.
	var memberIDs []string
	for _, event := range labeled.Events {
		memberIDs = append(memberIDs, event.ID)
	}
	if !reflect.DeepEqual(memberIDs, []string{"e3", "e4", "e5"}) {
		t.Errorf("Server group attached to wrong events: %v", memberIDs)
	}

	// The made layup stays outside the span as its own primary singleton.
	var ids []string
	for _, group := range timeline.Groups {
		for _, event := range group.Events {
			ids = append(ids, event.ID)
		}
	}
	if !reflect.DeepEqual(ids, []string{"e3", "e4", "e5", "e6"}) {
		t.Errorf("Groups do not partition visible events: %v", ids)
	}
	last := timeline.Groups[len(timeline.Groups)-1]
	if last.Tier != TierPrimary || len(last.Events) != 1 || last.Events[0].ID != "e6" {
		t.Errorf("Expected primary singleton for the made layup, got %+v", last)
	}
}

func TestAssembleTimeline_ServerInputs(t *testing.T) {
	external := []ExternalGroup{{StartIndex: 1, EndIndex: 3, Label: "quiet stretch"}}
	segments := []NarrativeSegment{
		{StartPlayID: "p1", EndPlayID: "p4", Period: 1, ScoreBefore: Score{}, ScoreAfter: Score{Home: 2, Away: 0}},
		{StartPlayID: "p5", EndPlayID: "p7", Period: 2, ScoreBefore: Score{Home: 2, Away: 0}, ScoreAfter: Score{Home: 4, Away: 8}},
	}

	timeline := AssembleTimeline(sampleRecords(), AssembleOptions{
		Sport:          "basketball",
		ExternalGroups: external,
		Segments:       segments,
	})

	var labeled *PlayGroup
	for i := range timeline.Groups {
		if timeline.Groups[i].Label == "quiet stretch" {
			labeled = &timeline.Groups[i]
		}
	}
	if labeled == nil {
		t.Fatalf("Expected server group in output, got %+v", timeline.Groups)
	}
	if labeled.Tier != TierTertiary || len(labeled.Events) != 3 {
		t.Errorf("Expected tertiary server group of 3, got %+v", labeled)
	}

	if len(timeline.Segments) != 2 {
		t.Fatalf("Expected the 2 supplied segments, got %d", len(timeline.Segments))
	}
	if timeline.Segments[0].StartPlayID != "p1" || timeline.Segments[1].EndPlayID != "p7" {
		t.Errorf("Supplied segment boundaries must be preserved: %+v", timeline.Segments)
	}
}

func TestSegmentsByPeriod(t *testing.T) {
	one, two := 1, 2
	events := []NormalizedEvent{
		{ID: "a", Period: &one, Score: &Score{Home: 2, Away: 0}},
		{ID: "b", Period: &one},
		{ID: "c", Period: &two, Score: &Score{Home: 2, Away: 3}},
		{ID: "d", Period: &two, Score: &Score{Home: 4, Away: 3}},
	}

	segments := SegmentsByPeriod(events)

	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(segments))
	}
	if segments[0].StartPlayID != "a" || segments[0].EndPlayID != "b" {
		t.Errorf("First segment span wrong: %+v", segments[0])
	}
	if segments[1].ScoreBefore != (Score{Home: 2, Away: 0}) {
		t.Errorf("Second segment should start from the running score, got %+v", segments[1].ScoreBefore)
	}
	if segments[1].ScoreAfter != (Score{Home: 4, Away: 3}) {
		t.Errorf("Second segment end score wrong: %+v", segments[1].ScoreAfter)
	}
	if len(segments[1].Progression) != 2 {
		t.Errorf("Expected 2 progression points in second segment, got %d", len(segments[1].Progression))
	}
}

func TestSegmentsByPeriod_LeadingEventsWithoutPeriod(t *testing.T) {
	one, two := 1, 2
	events := []NormalizedEvent{
		{ID: "pregame-1"},
		{ID: "pregame-2"},
		{ID: "a", Period: &one, Score: &Score{Home: 2, Away: 0}},
		{ID: "b", Period: &two, Score: &Score{Home: 2, Away: 3}},
	}

	segments := SegmentsByPeriod(events)

	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(segments))
	}
	// Leading events without a period open the first segment and fold into
	// the first period once one appears.
	if segments[0].StartPlayID != "pregame-1" || segments[0].EndPlayID != "a" {
		t.Errorf("First segment span wrong: %+v", segments[0])
	}
	if segments[0].Period != 1 {
		t.Errorf("First segment should adopt period 1, got %d", segments[0].Period)
	}
	if segments[1].StartPlayID != "b" || segments[1].Period != 2 {
		t.Errorf("Second segment span wrong: %+v", segments[1])
	}
}

func TestSegmentsByPeriod_NoPeriodsAtAll(t *testing.T) {
	events := []NormalizedEvent{
		{ID: "x", Score: &Score{Home: 2, Away: 0}},
		{ID: "y"},
	}

	segments := SegmentsByPeriod(events)

	if len(segments) != 1 {
		t.Fatalf("Expected a single covering segment, got %d", len(segments))
	}
	if segments[0].StartPlayID != "x" || segments[0].EndPlayID != "y" {
		t.Errorf("Segment must cover the whole list: %+v", segments[0])
	}
}
