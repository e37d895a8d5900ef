package narrative

import "fmt"

// groupFold is the invocation-scoped accumulator carried through a grouping
// pass: the groups emitted so far plus the currently open buffer.
type groupFold struct {
	groups []PlayGroup
	buffer []NormalizedEvent
}

// flush closes the open buffer into one group of the given tier
func (f groupFold) flush(tier Tier) groupFold {
	if len(f.buffer) == 0 {
		return f
	}
	f.groups = append(f.groups, PlayGroup{
		ID:     spanID(f.buffer),
		Tier:   tier,
		Events: f.buffer,
	})
	f.buffer = nil
	return f
}

// emit appends a single event as its own singleton group
func (f groupFold) emit(event NormalizedEvent) groupFold {
	f.groups = append(f.groups, PlayGroup{
		ID:     event.ID,
		Tier:   event.Tier,
		Events: []NormalizedEvent{event},
	})
	return f
}

// buffered appends an event to the open buffer
func (f groupFold) buffered(event NormalizedEvent) groupFold {
	f.buffer = append(f.buffer, event)
	return f
}

// GroupPlays clusters an ordered, already-tiered event list using the local
// heuristic: consecutive tertiary events collapse into one group, and every
// primary or secondary event stands alone. The result is a total,
// order-preserving partition of the input.
func GroupPlays(events []NormalizedEvent) []PlayGroup {
	fold := groupFold{}
	for _, event := range events {
		switch event.Tier {
		case TierPrimary, TierSecondary:
			fold = fold.flush(TierTertiary)
			fold = fold.emit(event)
		default:
			fold = fold.buffered(event)
		}
	}
	fold = fold.flush(TierTertiary)
	return fold.groups
}

// ReconcileGroups merges server-supplied group spans with the locally tiered
// event list. Server groups are authoritative where present: each is emitted
// exactly once, tagged tertiary and carrying its summary label, the first
// time any of its member indices is visited. Events the server did not cover
// are grouped locally, so the output is a single gap-free partition even
// under partial server coverage.
func ReconcileGroups(events []NormalizedEvent, external []ExternalGroup) []PlayGroup {
	if len(external) == 0 {
		return GroupPlays(events)
	}

	// First group to claim an index owns it; overlaps never double-assign.
	claimed := make(map[int]ExternalGroup)
	for _, group := range external {
		for i := group.StartIndex; i <= group.EndIndex; i++ {
			if i < 0 || i >= len(events) {
				continue
			}
			if _, taken := claimed[i]; !taken {
				claimed[i] = group
			}
		}
	}

	emitted := make(map[string]bool)
	fold := groupFold{}

	for i, event := range events {
		if group, covered := claimed[i]; covered {
			if emitted[group.ID()] {
				continue
			}
			emitted[group.ID()] = true
			fold = fold.flush(TierSecondary)
			fold.groups = append(fold.groups, externalGroup(events, claimed, group))
			continue
		}

		if event.Tier == TierPrimary {
			fold = fold.flush(TierSecondary)
			fold = fold.emit(event)
			continue
		}

		fold = fold.buffered(event)
	}

	fold = fold.flush(TierSecondary)
	return fold.groups
}

// externalGroup materializes a server span into a group containing exactly
// the member events that span owns
func externalGroup(events []NormalizedEvent, claimed map[int]ExternalGroup, group ExternalGroup) PlayGroup {
	var members []NormalizedEvent
	for i := group.StartIndex; i <= group.EndIndex && i < len(events); i++ {
		if i < 0 {
			continue
		}
		if owner, ok := claimed[i]; ok && owner.ID() == group.ID() {
			members = append(members, events[i])
		}
	}
	return PlayGroup{
		ID:     group.ID(),
		Tier:   TierTertiary,
		Label:  group.Label,
		Events: members,
	}
}

// spanID derives a group identity from its first and last member ids
func spanID(events []NormalizedEvent) string {
	if len(events) == 1 {
		return events[0].ID
	}
	return fmt.Sprintf("%s..%s", events[0].ID, events[len(events)-1].ID)
}

func groupID(prefix string, start, end int) string {
	return fmt.Sprintf("%s-%d-%d", prefix, start, end)
}
