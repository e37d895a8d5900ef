package narrative

import (
	"strconv"
	"strings"
)

// SportProfile centralizes the per-sport tuning constants used by the tier
// classifier and the beat deriver. Profiles are plain data so new sports can
// be added through configuration instead of new code paths.
type SportProfile struct {
	Code            string `json:"code"`
	FinalPeriod     int    `json:"final_period"`
	ClutchSeconds   int    `json:"clutch_seconds"`
	LateGameSeconds int    `json:"late_game_seconds"`
	RunMargin       int    `json:"run_margin"`
	FastStartTotal  int    `json:"fast_start_total"`
	StallTotal      int    `json:"stall_total"`
}

// Built-in profiles. HCL sport configuration can override or extend these.
var defaultProfiles = map[string]SportProfile{
	"basketball": {
		Code:            "basketball",
		FinalPeriod:     4,
		ClutchSeconds:   120,
		LateGameSeconds: 300,
		RunMargin:       8,
		FastStartTotal:  18,
		StallTotal:      6,
	},
	"hockey": {
		Code:            "hockey",
		FinalPeriod:     3,
		ClutchSeconds:   120,
		LateGameSeconds: 300,
		RunMargin:       3,
		FastStartTotal:  2,
		StallTotal:      1,
	},
	"football": {
		Code:            "football",
		FinalPeriod:     4,
		ClutchSeconds:   120,
		LateGameSeconds: 300,
		RunMargin:       10,
		FastStartTotal:  14,
		StallTotal:      3,
	},
	"soccer": {
		Code:            "soccer",
		FinalPeriod:     2,
		ClutchSeconds:   120,
		LateGameSeconds: 300,
		RunMargin:       2,
		FastStartTotal:  2,
		StallTotal:      1,
	},
}

// ProfileFor returns the profile for a sport code, falling back to the
// basketball profile for empty or unrecognized codes so classification
// always has workable thresholds.
func ProfileFor(code string) SportProfile {
	if p, ok := defaultProfiles[strings.ToLower(strings.TrimSpace(code))]; ok {
		return p
	}
	return defaultProfiles["basketball"]
}

// Profiles returns a copy of the built-in profile set
func Profiles() map[string]SportProfile {
	out := make(map[string]SportProfile, len(defaultProfiles))
	for k, v := range defaultProfiles {
		out[k] = v
	}
	return out
}

// PeriodContext carries where in the game an event occurs
type PeriodContext struct {
	Period int
	Clock  string
	Sport  SportProfile
}

// IsFinalPeriod reports whether the period is the last regulation period or later
func (p PeriodContext) IsFinalPeriod() bool {
	return p.Sport.FinalPeriod > 0 && p.Period >= p.Sport.FinalPeriod
}

// IsOvertime reports whether the period is past regulation
func (p PeriodContext) IsOvertime() bool {
	return p.Sport.FinalPeriod > 0 && p.Period > p.Sport.FinalPeriod
}

// IsClutchTime reports whether the clock is inside the clutch window of the
// final period
func (p PeriodContext) IsClutchTime() bool {
	secs, ok := ParseClockSeconds(p.Clock)
	return ok && p.IsFinalPeriod() && secs <= p.Sport.ClutchSeconds
}

// IsLateGame reports whether the clock is inside the late-game window of the
// final period
func (p PeriodContext) IsLateGame() bool {
	secs, ok := ParseClockSeconds(p.Clock)
	return ok && p.IsFinalPeriod() && secs <= p.Sport.LateGameSeconds
}

// ParseClockSeconds converts a "MM:SS" game clock to total seconds remaining.
// Malformed clocks report false rather than failing.
func ParseClockSeconds(clock string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return 0, false
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, false
	}
	return minutes*60 + seconds, true
}
