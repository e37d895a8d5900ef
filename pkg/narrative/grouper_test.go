package narrative

import (
	"reflect"
	"testing"
)

func tieredEvent(id string, tier Tier) NormalizedEvent {
	return NormalizedEvent{ID: id, Kind: KindPlay, Tier: tier}
}

// collectIDs flattens the groups back into the original event order
func collectIDs(groups []PlayGroup) []string {
	var ids []string
	for _, group := range groups {
		for _, event := range group.Events {
			ids = append(ids, event.ID)
		}
	}
	return ids
}

func TestGroupPlays_TertiaryClusterThenPrimary(t *testing.T) {
	events := []NormalizedEvent{
		tieredEvent("a", TierTertiary),
		tieredEvent("b", TierTertiary),
		tieredEvent("c", TierTertiary),
		tieredEvent("d", TierPrimary),
	}

	groups := GroupPlays(events)

	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	if groups[0].Tier != TierTertiary || len(groups[0].Events) != 3 {
		t.Errorf("Expected tertiary cluster of size 3, got tier %s size %d", groups[0].Tier, len(groups[0].Events))
	}
	if groups[1].Tier != TierPrimary || len(groups[1].Events) != 1 {
		t.Errorf("Expected primary singleton, got tier %s size %d", groups[1].Tier, len(groups[1].Events))
	}
	if groups[1].Events[0].ID != "d" {
		t.Errorf("Expected primary event 'd', got '%s'", groups[1].Events[0].ID)
	}
}

func TestGroupPlays_SecondaryBreaksCluster(t *testing.T) {
	events := []NormalizedEvent{
		tieredEvent("a", TierTertiary),
		tieredEvent("b", TierSecondary),
		tieredEvent("c", TierTertiary),
		tieredEvent("d", TierTertiary),
	}

	groups := GroupPlays(events)

	if len(groups) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(groups))
	}
	if groups[1].Tier != TierSecondary || len(groups[1].Events) != 1 {
		t.Errorf("Expected secondary singleton in the middle, got tier %s size %d", groups[1].Tier, len(groups[1].Events))
	}
	// Trailing tertiary buffer flushes at the end.
	if groups[2].Tier != TierTertiary || len(groups[2].Events) != 2 {
		t.Errorf("Expected trailing tertiary cluster of size 2, got tier %s size %d", groups[2].Tier, len(groups[2].Events))
	}
}

func TestGroupPlays_EmptyInput(t *testing.T) {
	if groups := GroupPlays(nil); len(groups) != 0 {
		t.Errorf("Expected no groups for empty input, got %d", len(groups))
	}
}

func TestGroupPlays_Partition(t *testing.T) {
	events := []NormalizedEvent{
		tieredEvent("a", TierTertiary),
		tieredEvent("b", TierPrimary),
		tieredEvent("c", TierSecondary),
		tieredEvent("d", TierTertiary),
		tieredEvent("e", TierTertiary),
		tieredEvent("f", TierPrimary),
		tieredEvent("g", TierTertiary),
	}

	groups := GroupPlays(events)

	want := []string{"a", "b", "c", "d", "e", "f", "g"}
	if got := collectIDs(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("Groups do not partition the input: got %v, want %v", got, want)
	}
}

func TestReconcileGroups_ServerGroupEmittedOnce(t *testing.T) {
	events := make([]NormalizedEvent, 9)
	for i := range events {
		events[i] = tieredEvent(string(rune('a'+i)), TierTertiary)
	}
	events[8] = tieredEvent("i", TierPrimary)

	external := []ExternalGroup{
		{StartIndex: 5, EndIndex: 7, Label: "3 missed shots"},
	}

	groups := ReconcileGroups(events, external)

	if len(groups) != 3 {
		t.Fatalf("Expected 3 groups, got %d: %+v", len(groups), groups)
	}

	// Uncovered leading events flush as one secondary-tier buffer group.
	if groups[0].Tier != TierSecondary || len(groups[0].Events) != 5 {
		t.Errorf("Expected uncovered buffer of 5 as secondary, got tier %s size %d", groups[0].Tier, len(groups[0].Events))
	}

	if groups[1].Label != "3 missed shots" || groups[1].Tier != TierTertiary {
		t.Errorf("Expected labeled tertiary server group, got %+v", groups[1])
	}
	if len(groups[1].Events) != 3 {
		t.Errorf("Expected server group of size 3, got %d", len(groups[1].Events))
	}

	if groups[2].Tier != TierPrimary || groups[2].Events[0].ID != "i" {
		t.Errorf("Expected trailing primary singleton 'i', got %+v", groups[2])
	}

	want := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	if got := collectIDs(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("Reconciled groups do not partition the input: got %v, want %v", got, want)
	}
}

func TestReconcileGroups_UncoveredPrimaryFlushesBuffer(t *testing.T) {
	events := []NormalizedEvent{
		tieredEvent("a", TierTertiary),
		tieredEvent("b", TierPrimary),
		tieredEvent("c", TierTertiary),
		tieredEvent("d", TierTertiary),
	}
	external := []ExternalGroup{
		{StartIndex: 2, EndIndex: 3, Label: "quiet stretch"},
	}

	groups := ReconcileGroups(events, external)

	if len(groups) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(groups))
	}
	if groups[0].Tier != TierSecondary || groups[0].Events[0].ID != "a" {
		t.Errorf("Expected uncovered buffer flushed before primary, got %+v", groups[0])
	}
	if groups[1].Tier != TierPrimary {
		t.Errorf("Expected primary singleton second, got %+v", groups[1])
	}
	if groups[2].Label != "quiet stretch" {
		t.Errorf("Expected server group last, got %+v", groups[2])
	}
}

func TestReconcileGroups_OverlappingSpansNeverDuplicate(t *testing.T) {
	events := make([]NormalizedEvent, 6)
	for i := range events {
		events[i] = tieredEvent(string(rune('a'+i)), TierTertiary)
	}
	external := []ExternalGroup{
		{StartIndex: 0, EndIndex: 2, Label: "first"},
		{StartIndex: 2, EndIndex: 4, Label: "second"},
	}

	groups := ReconcileGroups(events, external)

	want := []string{"a", "b", "c", "d", "e", "f"}
	if got := collectIDs(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("Overlapping spans broke the partition: got %v, want %v", got, want)
	}

	// Index 2 belongs to the first span that claimed it.
	if len(groups[0].Events) != 3 || groups[0].Label != "first" {
		t.Errorf("Expected first span to own indices 0-2, got %+v", groups[0])
	}
	if len(groups[1].Events) != 2 || groups[1].Label != "second" {
		t.Errorf("Expected second span to own indices 3-4, got %+v", groups[1])
	}
}

func TestReconcileGroups_OutOfRangeSpanIgnored(t *testing.T) {
	events := []NormalizedEvent{
		tieredEvent("a", TierTertiary),
		tieredEvent("b", TierTertiary),
	}
	external := []ExternalGroup{
		{StartIndex: 5, EndIndex: 9, Label: "phantom"},
	}

	groups := ReconcileGroups(events, external)

	want := []string{"a", "b"}
	if got := collectIDs(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected phantom span ignored, got %v", got)
	}
	for _, group := range groups {
		if group.Label == "phantom" {
			t.Errorf("Phantom span should never be emitted: %+v", group)
		}
	}
}

func TestReconcileGroups_NoExternalFallsBackToLocal(t *testing.T) {
	events := []NormalizedEvent{
		tieredEvent("a", TierTertiary),
		tieredEvent("b", TierPrimary),
	}

	local := GroupPlays(events)
	reconciled := ReconcileGroups(events, nil)

	if !reflect.DeepEqual(local, reconciled) {
		t.Errorf("With no server groups, reconciliation should match the local heuristic")
	}
}
