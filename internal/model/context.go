package model

// Intent is a recognized query type.
type Intent string

const (
	IntentFightSpecific  Intent = "fight_specific"
	IntentInsideDistance Intent = "inside_distance"
	IntentConsensusPicks Intent = "consensus_picks"
	IntentUnderdogs      Intent = "underdogs"
	IntentGeneral        Intent = "general"
)

// QueryParams carries the parameters extracted alongside an intent.
type QueryParams struct {
	FighterA  string `json:"fighter_a,omitempty"`
	FighterB  string `json:"fighter_b,omitempty"`
	EventName string `json:"event_name,omitempty"`
}

// Context is an aggregated, bounded summary ready for prompt rendering.
// Exactly one variant exists per intent.
type Context interface {
	Kind() Intent
}

// TagCount is a reasoning tag with its mention count.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// MethodCount is a predicted method with its pick count, in first-encountered
// order so renders stay deterministic.
type MethodCount struct {
	Method string `json:"method"`
	Count  int    `json:"count"`
}

// SideContext summarizes the picks aligned with one fighter.
type SideContext struct {
	TopTags           []TagCount    `json:"top_tags"`
	Methods           []MethodCount `json:"methods"`
	ExampleRationales []string      `json:"example_rationales"`
}

// PickSummary counts classified picks for a fight.
type PickSummary struct {
	TotalPredictions int `json:"total_predictions"`
	PicksForA        int `json:"picks_for_a"`
	PicksForB        int `json:"picks_for_b"`
}

// AnalystInfo lists the analysts behind each side.
type AnalystInfo struct {
	CountA       int      `json:"fighter_a_count"`
	CountB       int      `json:"fighter_b_count"`
	RevealNames  bool     `json:"reveal_names"`
	TopAnalystsA []string `json:"top_analysts_a"`
	TopAnalystsB []string `json:"top_analysts_b"`
}

// FightAnalysis is the fight_specific context.
type FightAnalysis struct {
	Fight    FightInfo   `json:"fight"`
	Summary  PickSummary `json:"summary"`
	FighterA SideContext `json:"fighter_a_context"`
	FighterB SideContext `json:"fighter_b_context"`
	Analysts AnalystInfo `json:"analyst_info"`
}

func (FightAnalysis) Kind() Intent { return IntentFightSpecific }

// ConsensusFight is one fight's majority-side summary.
type ConsensusFight struct {
	Fight               string  `json:"fight"`
	FighterA            string  `json:"fighter_a"`
	FighterB            string  `json:"fighter_b"`
	ConsensusFighter    string  `json:"consensus_fighter"`
	ConsensusCount      int     `json:"consensus_count"`
	OpposingCount       int     `json:"opposing_count"`
	TotalPredictions    int     `json:"total_predictions"`
	ConsensusPercentage float64 `json:"consensus_percentage"`
}

// EventConsensus is the consensus_picks context.
type EventConsensus struct {
	Event          string           `json:"event"`
	ResultsEntered bool             `json:"results_entered"`
	Picks          []ConsensusFight `json:"consensus_picks"`
}

func (EventConsensus) Kind() Intent { return IntentConsensusPicks }

// FinishFight is one fight's finish-prediction summary.
type FinishFight struct {
	Fight                  string   `json:"fight"`
	FighterA               string   `json:"fighter_a"`
	FighterB               string   `json:"fighter_b"`
	FavoredFighter         string   `json:"favored_fighter"`
	FinishPredictionCount  int      `json:"finish_prediction_count"`
	Methods                []string `json:"methods"`
	TotalFinishPredictions int      `json:"total_finish_predictions"`
}

// InsideDistance is the inside_distance context.
type InsideDistance struct {
	Event string        `json:"event"`
	Picks []FinishFight `json:"inside_distance_picks"`
}

func (InsideDistance) Kind() Intent { return IntentInsideDistance }

// UnderdogBacker is one analyst behind an underdog pick. Accuracy is not
// tracked yet and stays zero.
type UnderdogBacker struct {
	Name      string  `json:"name"`
	Accuracy  float64 `json:"accuracy"`
	Reasoning string  `json:"reasoning,omitempty"`
}

// UnderdogFight is one fight's minority-side summary.
type UnderdogFight struct {
	Fight              string           `json:"fight"`
	FighterA           string           `json:"fighter_a"`
	FighterB           string           `json:"fighter_b"`
	Underdog           string           `json:"underdog"`
	UnderdogCount      int              `json:"underdog_count"`
	FavoriteCount      int              `json:"favorite_count"`
	TotalPredictions   int              `json:"total_predictions"`
	UnderdogPercentage float64          `json:"underdog_percentage"`
	ValueScore         float64          `json:"value_score"`
	Backers            []UnderdogBacker `json:"high_accuracy_analysts"`
	TopTags            []TagCount       `json:"top_tags"`
}

// EventUnderdogs is the underdogs context.
type EventUnderdogs struct {
	Event          string          `json:"event"`
	ResultsEntered bool            `json:"results_entered"`
	Picks          []UnderdogFight `json:"underdog_picks"`
}

func (EventUnderdogs) Kind() Intent { return IntentUnderdogs }
