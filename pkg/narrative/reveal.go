package narrative

// SafeToShow is the spoiler gate every rendering surface consults before
// showing score-bearing or outcome-dependent content. Pre-tagged content is
// always safe; post-tagged content needs the viewer to have revealed the
// outcome; untagged content is treated as potentially spoiling and gated the
// same way.
func SafeToShow(level RevealLevel, outcomeRevealed bool) bool {
	switch level {
	case RevealPre:
		return true
	case RevealPost:
		return outcomeRevealed
	default:
		return outcomeRevealed
	}
}
