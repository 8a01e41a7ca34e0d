// Package match resolves free-text fighter names: side classification for
// aggregation and alias resolution for ingestion review.
package match

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultSideThreshold is the minimum token-set score for a pick to be
// assigned to a fight side. Below it on both sides, the pick is
// unclassifiable and excluded from every aggregate.
const DefaultSideThreshold = 60

// Side identifies which fighter a pick was classified to.
type Side int

const (
	SideNone Side = iota
	SideA
	SideB
)

// Matcher scores free-text names with token-set matching: order-insensitive
// and substring-tolerant, 0-100.
type Matcher struct {
	sideThreshold int
}

// New creates a Matcher. A non-positive threshold falls back to the default.
func New(sideThreshold int) *Matcher {
	if sideThreshold <= 0 {
		sideThreshold = DefaultSideThreshold
	}
	return &Matcher{sideThreshold: sideThreshold}
}

// Score returns the token-set similarity of two names in [0,100].
func (m *Matcher) Score(name, candidate string) int {
	return fuzzy.TokenSetRatio(strings.ToLower(name), strings.ToLower(candidate))
}

// ClassifySide assigns a picked-fighter string to one of the two fight
// participants, or to neither when both scores fall under the threshold.
// Equal scores at or above the threshold resolve to fighter A — source
// behavior kept for compatibility, not semantics.
func (m *Matcher) ClassifySide(picked, fighterA, fighterB string) Side {
	scoreA := m.Score(picked, fighterA)
	scoreB := m.Score(picked, fighterB)

	switch {
	case scoreA >= scoreB && scoreA >= m.sideThreshold:
		return SideA
	case scoreB > scoreA && scoreB >= m.sideThreshold:
		return SideB
	default:
		return SideNone
	}
}

// BestMatch scores a raw name against every candidate and returns the best
// candidate with its score. Earlier candidates win score ties. Returns
// ("", 0) for an empty candidate list.
func (m *Matcher) BestMatch(raw string, candidates []string) (string, int) {
	best := ""
	bestScore := 0
	for _, c := range candidates {
		if score := m.Score(raw, c); score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best, bestScore
}
