package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cageside/picks-cli/internal/model"
)

func sampleFightAnalysis() *model.FightAnalysis {
	return &model.FightAnalysis{
		Fight: model.FightInfo{
			FightID:   "f1",
			FighterA:  "Jon Jones",
			FighterB:  "Stipe Miocic",
			EventName: "UFC 309",
		},
		Summary: model.PickSummary{TotalPredictions: 5, PicksForA: 4, PicksForB: 1},
		FighterA: model.SideContext{
			TopTags: []model.TagCount{
				{Tag: "wrestling_advantage", Count: 3},
				{Tag: "reach_advantage", Count: 2},
			},
			Methods:           []model.MethodCount{{Method: "KO/TKO", Count: 2}, {Method: "Submission", Count: 2}},
			ExampleRationales: []string{"Jones controls everywhere the fight goes.", "Miocic has been out too long.", "third rationale that should be dropped"},
		},
		FighterB: model.SideContext{},
		Analysts: model.AnalystInfo{
			CountA:       4,
			CountB:       1,
			RevealNames:  true,
			TopAnalystsA: []string{"Ana", "Ben", "Cam", "Dee"},
			TopAnalystsB: []string{"Eve"},
		},
	}
}

func TestFightAnalysis_Content(t *testing.T) {
	t.Parallel()

	p := FightAnalysis(sampleFightAnalysis(), "who wins?")

	assert.Contains(t, p, "You are CagesidePicks")
	assert.Contains(t, p, "USER QUESTION: who wins?")
	assert.Contains(t, p, "Event: UFC 309")
	assert.Contains(t, p, "Fight: Jon Jones vs Stipe Miocic")
	assert.Contains(t, p, "- Total analysts: 5")
	assert.Contains(t, p, "KEY FACTORS FOR JON JONES:")
	// tag underscores are humanized
	assert.Contains(t, p, "- wrestling advantage: mentioned by 3 analysts")
	assert.NotContains(t, p, "wrestling_advantage")
	assert.Contains(t, p, "Expected methods: KO/TKO (2), Submission (2)")
	// only the first two rationales survive
	assert.Contains(t, p, "1. Jones controls everywhere")
	assert.NotContains(t, p, "third rationale")
	// only three analysts are named per side
	assert.Contains(t, p, "For Jon Jones: Ana, Ben, Cam\n")
	assert.NotContains(t, p, "Dee")
	assert.Contains(t, p, "INSTRUCTIONS:")
}

func TestFightAnalysis_HiddenNames(t *testing.T) {
	t.Parallel()

	ctx := sampleFightAnalysis()
	ctx.Analysts.RevealNames = false
	p := FightAnalysis(ctx, "who wins?")

	assert.NotContains(t, p, "TOP ANALYSTS")
	assert.NotContains(t, p, "Ana")
	assert.Contains(t, p, "- 4 analysts picked Jon Jones")
	assert.Contains(t, p, "- 1 analysts picked Stipe Miocic")
}

func TestFightAnalysis_Deterministic(t *testing.T) {
	t.Parallel()

	ctx := sampleFightAnalysis()
	first := FightAnalysis(ctx, "who wins?")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, FightAnalysis(ctx, "who wins?"))
	}
}

func TestFightAnalysis_LongRationaleTruncated(t *testing.T) {
	t.Parallel()

	ctx := sampleFightAnalysis()
	long := strings.Repeat("x", 300)
	ctx.FighterA.ExampleRationales = []string{long}
	p := FightAnalysis(ctx, "who wins?")

	assert.Contains(t, p, strings.Repeat("x", 200)+"...")
	assert.NotContains(t, p, strings.Repeat("x", 201))
}

func TestConsensusPicks_Format(t *testing.T) {
	t.Parallel()

	ctx := &model.EventConsensus{
		Event: "UFC 309",
		Picks: []model.ConsensusFight{
			{
				Fight:               "Jon Jones vs Stipe Miocic",
				FighterA:            "Jon Jones",
				FighterB:            "Stipe Miocic",
				ConsensusFighter:    "Jon Jones",
				ConsensusCount:      2,
				OpposingCount:       1,
				TotalPredictions:    3,
				ConsensusPercentage: 66.66666666666667,
			},
		},
	}
	p := ConsensusPicks(ctx, "top picks?")

	assert.Contains(t, p, "EVENT: UFC 309")
	assert.Contains(t, p, "1. Jon Jones over Stipe Miocic")
	// one decimal place
	assert.Contains(t, p, "Consensus: 2-1 (66.7%)")
}

func TestInsideDistance_Empty(t *testing.T) {
	t.Parallel()

	p := InsideDistance(&model.InsideDistance{Event: "UFC 309"}, "finishes?")
	assert.Contains(t, p, "No fighters have significant finish predictions")
}

func TestInsideDistance_CapsAtTen(t *testing.T) {
	t.Parallel()

	ctx := &model.InsideDistance{Event: "UFC 309"}
	for i := 0; i < 12; i++ {
		ctx.Picks = append(ctx.Picks, model.FinishFight{
			Fight:                 "A vs B",
			FavoredFighter:        "A",
			FinishPredictionCount: 12 - i,
			Methods:               []string{"KO/TKO", "KO/TKO", "Submission"},
		})
	}
	p := InsideDistance(ctx, "finishes?")

	assert.Contains(t, p, "10. A (A vs B)")
	assert.NotContains(t, p, "11. A")
	assert.Contains(t, p, "Methods: KO/TKO (2), Submission (1)")
}

func TestUnderdogs_Format(t *testing.T) {
	t.Parallel()

	ctx := &model.EventUnderdogs{
		Event: "UFC 309",
		Picks: []model.UnderdogFight{
			{
				Fight:              "C vs D",
				Underdog:           "D",
				UnderdogCount:      2,
				FavoriteCount:      4,
				UnderdogPercentage: 33.333333,
				Backers: []model.UnderdogBacker{
					{Name: "Ana"}, {Name: "Ben"}, {Name: "Cam"}, {Name: "Dee"},
				},
				TopTags: []model.TagCount{{Tag: "grappling_edge", Count: 2}},
			},
		},
	}
	p := Underdogs(ctx, "dogs?")

	// whole-number percentage
	assert.Contains(t, p, "Underdog pick: 2-4 (33%)")
	assert.Contains(t, p, "Key factors: grappling edge")
	assert.Contains(t, p, "Backed by: Ana, Ben, Cam\n")
	assert.NotContains(t, p, "Dee")
}

func TestUnderdogs_Empty(t *testing.T) {
	t.Parallel()

	p := Underdogs(&model.EventUnderdogs{Event: "UFC 309"}, "dogs?")
	assert.Contains(t, p, "No clear underdog opportunities")
}

func TestGeneral(t *testing.T) {
	t.Parallel()

	p := General("what is mma?")
	assert.Contains(t, p, "You are CagesidePicks")
	assert.Contains(t, p, "The user asked: what is mma?")
	assert.Contains(t, p, "general question")
}
