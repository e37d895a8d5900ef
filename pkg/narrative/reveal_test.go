package narrative

import "testing"

func TestSafeToShow(t *testing.T) {
	tests := []struct {
		name            string
		level           RevealLevel
		outcomeRevealed bool
		want            bool
	}{
		{"pre is always safe", RevealPre, false, true},
		{"pre with outcome revealed", RevealPre, true, true},
		{"post hidden before reveal", RevealPost, false, false},
		{"post safe after reveal", RevealPost, true, true},
		{"untagged gated conservatively", RevealUnknown, false, false},
		{"untagged safe after reveal", RevealUnknown, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeToShow(tt.level, tt.outcomeRevealed); got != tt.want {
				t.Errorf("SafeToShow(%q, %v) = %v, want %v", tt.level, tt.outcomeRevealed, got, tt.want)
			}
		})
	}
}
