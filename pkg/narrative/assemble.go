package narrative

// AssembleOptions carries the per-invocation inputs surrounding the raw
// records: sport tuning, optional server-supplied groups and segments, and
// the viewer's reveal state.
type AssembleOptions struct {
	GameID          string
	Sport           string
	Profile         *SportProfile // overrides the Sport code lookup when set
	ExternalGroups  []ExternalGroup
	Segments        []NarrativeSegment
	ApplyRevealGate bool
	OutcomeRevealed bool
}

// AssembleTimeline runs the full pipeline over one fetched response:
// normalize, classify tiers, group, and label narrative beats. It is pure
// and deterministic; identical inputs produce identical timelines.
func AssembleTimeline(records []RawEventRecord, opts AssembleOptions) Timeline {
	profile := ProfileFor(opts.Sport)
	if opts.Profile != nil {
		profile = *opts.Profile
	}

	events := NewNormalizer(profile).Normalize(records)

	// The reveal gate runs before grouping so the emitted groups partition
	// exactly the events the viewer is allowed to see. Server group spans
	// index the raw record list, so filtering remaps them onto the
	// surviving positions.
	external := opts.ExternalGroups
	if opts.ApplyRevealGate {
		events, external = filterRevealable(events, external, opts.OutcomeRevealed)
	}

	events = ClassifyTiers(events, profile)

	groups := ReconcileGroups(events, external)

	segments := opts.Segments
	if len(segments) == 0 {
		segments = SegmentsByPeriod(events)
	}
	segments = DeriveBeats(segments, profile)

	return Timeline{
		GameID:   opts.GameID,
		Sport:    profile.Code,
		Events:   events,
		Groups:   groups,
		Segments: segments,
	}
}

// filterRevealable drops events the viewer is not yet allowed to see and
// remaps external group spans onto the surviving positions. A span whose
// members are all filtered out is dropped.
func filterRevealable(events []NormalizedEvent, external []ExternalGroup, outcomeRevealed bool) ([]NormalizedEvent, []ExternalGroup) {
	visible := make([]NormalizedEvent, 0, len(events))
	newIndex := make(map[int]int, len(events))
	for i, event := range events {
		if SafeToShow(event.Reveal, outcomeRevealed) {
			newIndex[i] = len(visible)
			visible = append(visible, event)
		}
	}

	var remapped []ExternalGroup
	for _, group := range external {
		start, end := -1, -1
		for i := group.StartIndex; i <= group.EndIndex; i++ {
			if ni, ok := newIndex[i]; ok {
				if start == -1 {
					start = ni
				}
				end = ni
			}
		}
		if start == -1 {
			continue
		}
		remapped = append(remapped, ExternalGroup{StartIndex: start, EndIndex: end, Label: group.Label})
	}
	return visible, remapped
}

// SegmentsByPeriod builds the local fallback segmentation when the upstream
// service supplied none: one segment per period, with score progression taken
// from the plays' running scores. The first segment opens at the first event
// regardless of period presence, so leading entries without a period still
// belong to a segment; they fold into the first period once one appears.
func SegmentsByPeriod(events []NormalizedEvent) []NarrativeSegment {
	var segments []NarrativeSegment
	var current *NarrativeSegment
	running := Score{}

	for _, event := range events {
		switch {
		case current == nil:
			current = &NarrativeSegment{
				StartPlayID: event.ID,
				ScoreBefore: running,
				ScoreAfter:  running,
			}
			if event.Period != nil {
				current.Period = *event.Period
			}
		case event.Period != nil && current.Period == 0:
			current.Period = *event.Period
		case event.Period != nil && *event.Period != current.Period:
			segments = append(segments, *current)
			current = &NarrativeSegment{
				StartPlayID: event.ID,
				Period:      *event.Period,
				ScoreBefore: running,
				ScoreAfter:  running,
			}
		}
		current.EndPlayID = event.ID
		if event.Score != nil {
			running = *event.Score
			current.ScoreAfter = running
			current.Progression = append(current.Progression, running)
		}
	}

	if current != nil {
		segments = append(segments, *current)
	}
	return segments
}
