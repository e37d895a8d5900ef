package narrative

// DeriveBeats labels every segment in an ordered list with a BeatType. It
// never alters segment boundaries and is deterministic: the label is a pure
// function of each segment's scores, position, and the list length.
func DeriveBeats(segments []NarrativeSegment, sport SportProfile) []NarrativeSegment {
	labeled := make([]NarrativeSegment, len(segments))
	for i, segment := range segments {
		beat, team := deriveBeat(segment, i, len(segments), sport)
		segment.Beat = beat
		segment.BeatTeam = team
		segment.Highlight = beat.IsHighlight()
		labeled[i] = segment
	}
	return labeled
}

// deriveBeat applies the decision ladder; first match wins. Unrecognized
// shapes fall through to backAndForth, the least-emphasized label.
func deriveBeat(segment NarrativeSegment, position, total int, sport SportProfile) (BeatType, string) {
	homePoints := segment.ScoreAfter.Home - segment.ScoreBefore.Home
	awayPoints := segment.ScoreAfter.Away - segment.ScoreBefore.Away
	combined := homePoints + awayPoints

	switch {
	case position == total-1:
		return BeatClosingSequence, ""
	case sport.FinalPeriod > 0 && segment.Period > sport.FinalPeriod:
		return BeatOvertime, ""
	case LeadChanges(segment.ScoreBefore, segment.Progression) >= 2:
		return BeatBackAndForth, ""
	case homePoints-awayPoints >= sport.RunMargin:
		return BeatRun, "home"
	case awayPoints-homePoints >= sport.RunMargin:
		return BeatRun, "away"
	case position == 0 && combined >= sport.FastStartTotal:
		return BeatFastStart, ""
	case segment.ScoreAfter.Home == segment.ScoreAfter.Away:
		return BeatBackAndForth, ""
	case abs(segment.ScoreAfter.Margin()) >= sport.RunMargin:
		return BeatEarlyControl, ""
	case combined < sport.StallTotal:
		return BeatStall, ""
	case total > 0 && position*4 >= total*3:
		return BeatCrunchSetup, ""
	default:
		return BeatBackAndForth, ""
	}
}

// LeadChanges counts sign inversions of the home-minus-away differential
// across a score progression. A score that touches an exact tie without the
// lead inverting counts as zero changes: only a flip from one leader to the
// other, with or without passing through a tie, is a lead change.
func LeadChanges(before Score, progression []Score) int {
	changes := 0
	lastSign := sign(before.Margin())
	for _, score := range progression {
		s := sign(score.Margin())
		if s == 0 {
			continue
		}
		if lastSign != 0 && s != lastSign {
			changes++
		}
		lastSign = s
	}
	return changes
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
