package model

// ResultType labels what kind of answer came back, including the recovered
// not-found and no-data cases that never reach the language model.
type ResultType string

const (
	ResultFightAnalysis  ResultType = "fight_analysis"
	ResultInsideDistance ResultType = "inside_distance"
	ResultConsensusPicks ResultType = "consensus_picks"
	ResultUnderdogs      ResultType = "underdogs"
	ResultGeneral        ResultType = "general"
	ResultFightNotFound  ResultType = "fight_not_found"
	ResultNoPredictions  ResultType = "no_predictions"
	ResultMissingEvent   ResultType = "missing_event"
	ResultEventNotFound  ResultType = "event_not_found"
	ResultNoConsensus    ResultType = "no_consensus"
	ResultNoUnderdogs    ResultType = "no_underdogs"
	ResultError          ResultType = "error"
)

// CostEstimate is the token and dollar accounting for one model call.
type CostEstimate struct {
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	TotalTokens  int64   `json:"total_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// Metadata describes how an answer was produced.
type Metadata struct {
	QueryType ResultType    `json:"query_type"`
	Fight     *FightInfo    `json:"fight,omitempty"`
	Cost      *CostEstimate `json:"cost_estimate,omitempty"`
}

// Answer is the final result for one question. The orchestrator always
// returns a well-formed Answer, whatever went wrong underneath.
type Answer struct {
	Answer   string   `json:"answer"`
	Metadata Metadata `json:"metadata"`
}
