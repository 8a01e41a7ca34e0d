// Package classify maps natural-language questions to query intents.
//
// Classification is an explicit ordered rule list checked by substring
// containment, first match wins. That is deliberate: it keeps routing
// deterministic and testable, not a placeholder for a trained model.
package classify

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cageside/picks-cli/internal/model"
)

// Keyword sets per intent, checked in priority order: inside_distance beats
// consensus beats underdogs beats the fighter-vs-fighter pattern. Order
// matters — "best underdog picks" would otherwise match the consensus set's
// "picks" neighbors.
var (
	insideDistanceKeywords = []string{
		"inside the distance", "inside distance", "finish",
		"knockout", " ko ", "submission", "most likely to finish",
		"not go the distance",
	}
	consensusKeywords = []string{
		"consensus", "top picks", "favorites", "who should win",
		"most likely to win", "best bets", "safest picks", "locks",
	}
	underdogKeywords = []string{
		"underdog", "upset", "dark horse", "value pick", "sleeper",
		"best underdog", "undervalued", "contrarian",
	}
	fightSeparators = []string{" vs ", " vs. ", " versus ", " v ", " against "}
)

var (
	eventPattern = regexp.MustCompile(`ufc\s+(\d+|vegas\s+\d+|fight\s+night\s+\d+)`)
	punctuation  = regexp.MustCompile(`[^\w\s']`)
	titleCaser   = cases.Title(language.Und)
)

// EventSource is the single store read the classifier may make: the fallback
// when a question names no event.
type EventSource interface {
	MostRecentEvent(ctx context.Context) (*model.Event, error)
}

// Classifier routes questions to intents.
type Classifier struct {
	events EventSource
}

// New creates a Classifier. events may be nil, in which case the
// most-recent-event fallback is skipped.
func New(events EventSource) *Classifier {
	return &Classifier{events: events}
}

// Classify maps a question to an intent and its extracted parameters.
func (c *Classifier) Classify(ctx context.Context, question string) (model.Intent, model.QueryParams) {
	q := strings.ToLower(question)

	if containsAny(q, insideDistanceKeywords) {
		return model.IntentInsideDistance, model.QueryParams{EventName: c.extractEventName(ctx, q)}
	}
	if containsAny(q, consensusKeywords) {
		return model.IntentConsensusPicks, model.QueryParams{EventName: c.extractEventName(ctx, q)}
	}
	if containsAny(q, underdogKeywords) {
		return model.IntentUnderdogs, model.QueryParams{EventName: c.extractEventName(ctx, q)}
	}

	for _, sep := range fightSeparators {
		if !strings.Contains(q, sep) {
			continue
		}
		parts := strings.SplitN(q, sep, 2)
		fighterA := cleanFighterName(lastWords(parts[0], 2))
		fighterB := cleanFighterName(firstWords(parts[1], 2))
		if fighterA != "" && fighterB != "" {
			return model.IntentFightSpecific, model.QueryParams{FighterA: fighterA, FighterB: fighterB}
		}
	}

	return model.IntentGeneral, model.QueryParams{}
}

func (c *Classifier) extractEventName(ctx context.Context, q string) string {
	if m := eventPattern.FindStringSubmatch(q); m != nil {
		return "UFC " + titleCaser.String(m[1])
	}
	if c.events == nil {
		return ""
	}
	ev, err := c.events.MostRecentEvent(ctx)
	if err != nil || ev == nil {
		return ""
	}
	return ev.Name
}

func containsAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func lastWords(s string, n int) []string {
	words := strings.Fields(strings.TrimSpace(s))
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return words
}

func firstWords(s string, n int) []string {
	words := strings.Fields(strings.TrimSpace(s))
	if len(words) > n {
		words = words[:n]
	}
	return words
}

func cleanFighterName(words []string) string {
	name := punctuation.ReplaceAllString(strings.Join(words, " "), "")
	return titleCaser.String(strings.TrimSpace(name))
}
