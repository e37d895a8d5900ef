package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/gamethread/narrative-timeline/pkg/narrative"
	"github.com/gamethread/narrative-timeline/pkg/temporal"
)

// HCLSportFile is the top-level structure of a sport profile file
type HCLSportFile struct {
	Sports []HCLSport `hcl:"sport,block"`
}

// HCLSport is one sport block. Omitted attributes inherit from the built-in
// profile for the same code, so a file only needs to state what it tunes.
type HCLSport struct {
	Code            string `hcl:"code,label"`
	FinalPeriod     *int   `hcl:"final_period,optional"`
	ClutchSeconds   *int   `hcl:"clutch_seconds,optional"`
	LateGameSeconds *int   `hcl:"late_game_seconds,optional"`
	RunMargin       *int   `hcl:"run_margin,optional"`
	FastStartTotal  *int   `hcl:"fast_start_total,optional"`
	StallTotal      *int   `hcl:"stall_total,optional"`
}

// HCLAssembleRequest is a timeline assembly request expressed in HCL
type HCLAssembleRequest struct {
	GameID          string       `hcl:"game_id"`
	Sport           *string      `hcl:"sport,optional"`
	OutcomeRevealed *bool        `hcl:"outcome_revealed,optional"`
	ApplyRevealGate *bool        `hcl:"apply_reveal_gate,optional"`
	Groups          []HCLGroup   `hcl:"group,block"`
	Segments        []HCLSegment `hcl:"segment,block"`
}

// HCLGroup is a server-supplied play group span
type HCLGroup struct {
	Start int    `hcl:"start"`
	End   int    `hcl:"end"`
	Label string `hcl:"label"`
}

// HCLSegment is a narrative segment. Scores use the upstream "away-home"
// string convention.
type HCLSegment struct {
	StartPlayID string   `hcl:"start_play_id"`
	EndPlayID   string   `hcl:"end_play_id"`
	Period      *int     `hcl:"period,optional"`
	ScoreBefore string   `hcl:"score_before"`
	ScoreAfter  string   `hcl:"score_after"`
	Progression []string `hcl:"progression,optional"`
	Text        *string  `hcl:"text,optional"`
}

// evalContext provides helper functions available inside profile and request
// files, e.g. clutch_seconds = minutes(2).
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{
			"minutes": function.New(&function.Spec{
				Params: []function.Parameter{
					{
						Name: "minutes",
						Type: cty.Number,
					},
				},
				Type: function.StaticReturnType(cty.Number),
				Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
					return args[0].Multiply(cty.NumberIntVal(60)), nil
				},
			}),
		},
	}
}

// ParseSportProfiles parses sport profile HCL content into a profile map
// keyed by sport code
func ParseSportProfiles(hclContent string) (map[string]narrative.SportProfile, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL([]byte(hclContent), "sports.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return parseSportProfilesFromFile(file)
}

func parseSportProfilesFromFile(file *hcl.File) (map[string]narrative.SportProfile, error) {
	var sportFile HCLSportFile
	diags := gohcl.DecodeBody(file.Body, evalContext(), &sportFile)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL body: %s", diags.Error())
	}

	profiles := make(map[string]narrative.SportProfile, len(sportFile.Sports))
	for _, sport := range sportFile.Sports {
		profile := narrative.ProfileFor(sport.Code)
		profile.Code = sport.Code
		if sport.FinalPeriod != nil {
			profile.FinalPeriod = *sport.FinalPeriod
		}
		if sport.ClutchSeconds != nil {
			profile.ClutchSeconds = *sport.ClutchSeconds
		}
		if sport.LateGameSeconds != nil {
			profile.LateGameSeconds = *sport.LateGameSeconds
		}
		if sport.RunMargin != nil {
			profile.RunMargin = *sport.RunMargin
		}
		if sport.FastStartTotal != nil {
			profile.FastStartTotal = *sport.FastStartTotal
		}
		if sport.StallTotal != nil {
			profile.StallTotal = *sport.StallTotal
		}
		if profile.FinalPeriod <= 0 {
			return nil, fmt.Errorf("sport %q: final_period must be positive", sport.Code)
		}
		profiles[sport.Code] = profile
	}
	return profiles, nil
}

// ParseAssembleRequest parses an HCL assembly request into the workflow
// request shape
func ParseAssembleRequest(hclContent string) (*temporal.AssembleRequest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL([]byte(hclContent), "request.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return parseAssembleRequestFromFile(file)
}

func parseAssembleRequestFromFile(file *hcl.File) (*temporal.AssembleRequest, error) {
	var hclRequest HCLAssembleRequest
	diags := gohcl.DecodeBody(file.Body, evalContext(), &hclRequest)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL body: %s", diags.Error())
	}

	request := &temporal.AssembleRequest{
		GameID: hclRequest.GameID,
	}
	if hclRequest.Sport != nil {
		request.Sport = *hclRequest.Sport
	}
	if hclRequest.OutcomeRevealed != nil {
		request.OutcomeRevealed = *hclRequest.OutcomeRevealed
	}
	if hclRequest.ApplyRevealGate != nil {
		request.ApplyRevealGate = *hclRequest.ApplyRevealGate
	}

	for _, group := range hclRequest.Groups {
		if group.End < group.Start {
			return nil, fmt.Errorf("group %q: end %d before start %d", group.Label, group.End, group.Start)
		}
		request.ExternalGroups = append(request.ExternalGroups, narrative.ExternalGroup{
			StartIndex: group.Start,
			EndIndex:   group.End,
			Label:      group.Label,
		})
	}

	for _, segment := range hclRequest.Segments {
		converted, err := convertSegment(segment)
		if err != nil {
			return nil, err
		}
		request.Segments = append(request.Segments, converted)
	}

	return request, nil
}

func convertSegment(segment HCLSegment) (narrative.NarrativeSegment, error) {
	before, err := parseScore(segment.ScoreBefore)
	if err != nil {
		return narrative.NarrativeSegment{}, fmt.Errorf("segment %s: %w", segment.StartPlayID, err)
	}
	after, err := parseScore(segment.ScoreAfter)
	if err != nil {
		return narrative.NarrativeSegment{}, fmt.Errorf("segment %s: %w", segment.StartPlayID, err)
	}

	converted := narrative.NarrativeSegment{
		StartPlayID: segment.StartPlayID,
		EndPlayID:   segment.EndPlayID,
		ScoreBefore: before,
		ScoreAfter:  after,
	}
	if segment.Period != nil {
		converted.Period = *segment.Period
	}
	if segment.Text != nil {
		converted.Text = *segment.Text
	}
	for _, point := range segment.Progression {
		score, err := parseScore(point)
		if err != nil {
			return narrative.NarrativeSegment{}, fmt.Errorf("segment %s progression: %w", segment.StartPlayID, err)
		}
		converted.Progression = append(converted.Progression, score)
	}
	return converted, nil
}

// parseScore reads the "away-home" string convention used by upstream feeds
func parseScore(s string) (narrative.Score, error) {
	var away, home int
	if _, err := fmt.Sscanf(s, "%d-%d", &away, &home); err != nil {
		return narrative.Score{}, fmt.Errorf("invalid score %q: want \"away-home\"", s)
	}
	return narrative.Score{Home: home, Away: away}, nil
}
