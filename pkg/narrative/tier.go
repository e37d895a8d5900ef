package narrative

import "strings"

// Keyword sets for narrative classification. Matching is substring-based on
// the lowercased description; exclusion keywords keep misses and waved-off
// scores out of the scoring set.
var (
	scoringKeywords = []string{
		"makes", "made", "scores", "dunk", "layup", "3-pointer",
		"three pointer", "free throw", "jumper", "touchdown", "goal",
	}
	missKeywords = []string{"miss", "no good", "no goal", "blocked shot"}

	foulKeywords      = []string{"foul", "flagrant", "technical"}
	turnoverKeywords  = []string{"turnover", "steal", "intercept"}
	violationKeywords = []string{"violation", "traveling", "goaltending", "offside", "icing"}
	penaltyKeywords   = []string{"penalty", "penalized"}
)

// ClassifyTier assigns a narrative tier to one event given the score
// immediately preceding it and its period context. It is a pure function of
// its inputs; a tier is never recomputed after assignment.
//
// Non-play kinds carry moderate narrative weight by default.
func ClassifyTier(event NormalizedEvent, previous *Score, pctx PeriodContext) Tier {
	if event.Kind != KindPlay {
		return TierSecondary
	}

	desc := strings.ToLower(event.Description)

	if isScoringPlay(desc) {
		if previous != nil && event.Score != nil {
			if leadInverted(*previous, *event.Score) {
				return TierPrimary
			}
			if previous.Margin() != 0 && event.Score.Margin() == 0 {
				return TierPrimary
			}
		}
		if pctx.IsClutchTime() {
			return TierPrimary
		}
		if pctx.IsLateGame() && previous != nil && event.Score != nil && leadInverted(*previous, *event.Score) {
			return TierPrimary
		}
		// Every made score is at minimum primary tier.
		return TierPrimary
	}

	if containsAny(desc, foulKeywords) ||
		containsAny(desc, turnoverKeywords) ||
		containsAny(desc, violationKeywords) ||
		containsAny(desc, penaltyKeywords) ||
		isDefensiveBlock(desc) {
		return TierSecondary
	}

	// Misses, rebounds, substitutions, administrative events.
	return TierTertiary
}

// ClassifyTiers walks an ordered event list, threading the running score
// through each classification, and returns a copy with tiers assigned.
func ClassifyTiers(events []NormalizedEvent, sport SportProfile) []NormalizedEvent {
	tiered := make([]NormalizedEvent, len(events))
	var running *Score
	for i, event := range events {
		pctx := PeriodContext{Clock: event.Clock, Sport: sport}
		if event.Period != nil {
			pctx.Period = *event.Period
		}
		event.Tier = ClassifyTier(event, running, pctx)
		if event.Score != nil {
			score := *event.Score
			running = &score
		}
		tiered[i] = event
	}
	return tiered
}

// isScoringPlay detects made scores, excluding misses and waved-off goals.
// The keyword sets fold in sport-specific scoring language: hockey goals
// ("goal" minus "no goal") and football touchdowns and successful field goals.
func isScoringPlay(desc string) bool {
	if desc == "" {
		return false
	}
	if containsAny(desc, missKeywords) {
		return false
	}
	if strings.Contains(desc, "field goal") {
		return true
	}
	return containsAny(desc, scoringKeywords)
}

// isDefensiveBlock matches defensive blocks that are not shot-blocking plays
func isDefensiveBlock(desc string) bool {
	return strings.Contains(desc, "block") && !strings.Contains(desc, "shot")
}

// leadInverted reports whether the scoring side flipped which team leads
func leadInverted(before, after Score) bool {
	return (before.Margin() > 0 && after.Margin() < 0) ||
		(before.Margin() < 0 && after.Margin() > 0)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
