package model

import "time"

// Method is a predicted way a fight ends.
type Method string

const (
	MethodKOTKO      Method = "KO/TKO"
	MethodSubmission Method = "Submission"
	MethodDecision   Method = "Decision"
	MethodNC         Method = "NC"
	MethodDQ         Method = "DQ"
)

// FinishMethods lists every method value counted as a finish. The bare
// "KO"/"TKO"/"Sub" tokens survive from rows ingested before method values
// were normalized.
var FinishMethods = map[string]bool{
	string(MethodKOTKO):      true,
	string(MethodSubmission): true,
	"KO":                     true,
	"TKO":                    true,
	"Sub":                    true,
}

// Confidence is an analyst's stated conviction in a pick.
type Confidence string

const (
	ConfidenceLean      Confidence = "lean"
	ConfidenceConfident Confidence = "confident"
	ConfidenceLock      Confidence = "lock"
)

// Event is a fight card.
type Event struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Date     *time.Time `json:"date,omitempty"`
	Location string     `json:"location,omitempty"`
}

// Fight is a single bout on an event. The fighter pair is unordered: a fight
// between A and B is the same fight regardless of stored order.
type Fight struct {
	ID          string `json:"id"`
	EventID     string `json:"event_id"`
	FighterA    string `json:"fighter_a"`
	FighterB    string `json:"fighter_b"`
	WeightClass string `json:"weight_class,omitempty"`
	BoutOrder   *int   `json:"bout_order,omitempty"`
	Status      string `json:"status,omitempty"`
}

// FightInfo is a fight joined with its owning event.
type FightInfo struct {
	FightID   string     `json:"fight_id"`
	FighterA  string     `json:"fighter_a"`
	FighterB  string     `json:"fighter_b"`
	EventName string     `json:"event"`
	EventDate *time.Time `json:"date,omitempty"`
	// ResultsEntered stays false until results tracking exists.
	ResultsEntered bool `json:"results_entered"`
}

// Pick is one analyst's prediction for one fight.
type Pick struct {
	ID               string    `json:"id"`
	FightID          string    `json:"fight_id"`
	AnalystName      string    `json:"analyst_name"`
	Platform         string    `json:"platform,omitempty"`
	PickedFighter    string    `json:"picked_fighter,omitempty"`
	MethodPrediction string    `json:"method_prediction,omitempty"`
	ConfidenceTag    string    `json:"confidence_tag"`
	ReasoningNotes   string    `json:"reasoning_notes,omitempty"`
	SourceURL        string    `json:"source_url"`
	CreatedAt        time.Time `json:"created_at"`
	Tags             []string  `json:"tags,omitempty"`
}

// Alias maps a free-text spelling or nickname to one canonical fighter name.
// Never enforced as a foreign key.
type Alias struct {
	CanonicalName string `json:"canonical_name"`
	Alias         string `json:"alias"`
}
