// Package aggregate turns unbounded pick collections into bounded,
// deterministic context objects, one shape per query intent.
package aggregate

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/cageside/picks-cli/internal/match"
	"github.com/cageside/picks-cli/internal/model"
	"github.com/cageside/picks-cli/internal/store"
)

// ErrFightNotFound distinguishes a missing fight from a fight with no picks.
var ErrFightNotFound = eris.New("aggregate: fight not found")

// Thresholds are the eligibility cutoffs for event-wide aggregations.
type Thresholds struct {
	// UnderdogMinTotal is the minimum classified picks a fight needs before
	// an underdog read means anything.
	UnderdogMinTotal int
	// UnderdogMinCount excludes trivial one-pick noise from underdog value.
	UnderdogMinCount int
	// FinishMinPicks is the minimum finish-type picks for an
	// inside-the-distance entry.
	FinishMinPicks int
}

// DefaultThresholds returns the production cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{UnderdogMinTotal: 5, UnderdogMinCount: 2, FinishMinPicks: 3}
}

const (
	maxTopTags      = 5
	maxUnderdogTags = 3
	maxRationales   = 3
	maxTopAnalysts  = 5
	fightLookupCap  = 5
)

// Optimizer fetches and summarizes pick data for one query intent. Each
// aggregation is a sequence of plain reads with no transaction around them;
// the store may change between reads and the result is still well-formed.
type Optimizer struct {
	store      store.Store
	matcher    *match.Matcher
	thresholds Thresholds
}

// New creates an Optimizer.
func New(st store.Store, matcher *match.Matcher, thresholds Thresholds) *Optimizer {
	if thresholds.UnderdogMinTotal <= 0 {
		thresholds.UnderdogMinTotal = DefaultThresholds().UnderdogMinTotal
	}
	if thresholds.UnderdogMinCount <= 0 {
		thresholds.UnderdogMinCount = DefaultThresholds().UnderdogMinCount
	}
	if thresholds.FinishMinPicks <= 0 {
		thresholds.FinishMinPicks = DefaultThresholds().FinishMinPicks
	}
	return &Optimizer{store: st, matcher: matcher, thresholds: thresholds}
}

// FightByFighters resolves a fight from two partial name hints, trying both
// orderings. With an event hint, a fight on a matching event is preferred;
// otherwise the most recent match wins. Returns nil when nothing matches.
func (o *Optimizer) FightByFighters(ctx context.Context, hintA, hintB, eventHint string) (*model.FightInfo, error) {
	orderings := [][2]string{{hintA, hintB}, {hintB, hintA}}
	for _, pair := range orderings {
		fights, err := o.store.FindFights(ctx, pair[0], pair[1], fightLookupCap)
		if err != nil {
			return nil, err
		}
		if len(fights) == 0 {
			continue
		}
		if eventHint != "" {
			for i := range fights {
				if strings.Contains(strings.ToLower(fights[i].EventName), strings.ToLower(eventHint)) {
					return &fights[i], nil
				}
			}
		}
		return &fights[0], nil
	}
	return nil, nil
}

// AggregateFightContext partitions a fight's picks into two fighter-aligned
// sides and summarizes each. meta may carry a pre-fetched fight; when nil the
// fight is looked up and ErrFightNotFound reported if absent. A nil context
// with nil error means the fight exists but has no picks yet.
func (o *Optimizer) AggregateFightContext(ctx context.Context, fightID string, meta *model.FightInfo) (*model.FightAnalysis, error) {
	if meta == nil {
		fi, err := o.store.GetFight(ctx, fightID)
		if err != nil {
			return nil, err
		}
		if fi == nil {
			return nil, ErrFightNotFound
		}
		meta = fi
	}

	picks, err := o.store.ListPicks(ctx, fightID)
	if err != nil {
		return nil, err
	}
	if len(picks) == 0 {
		return nil, nil
	}

	picksA, picksB := o.classifyPicks(picks, meta.FighterA, meta.FighterB)

	return &model.FightAnalysis{
		Fight: *meta,
		Summary: model.PickSummary{
			// Picks unclassifiable to either side are excluded from the
			// total as well as from both sides.
			TotalPredictions: len(picksA) + len(picksB),
			PicksForA:        len(picksA),
			PicksForB:        len(picksB),
		},
		FighterA: buildSideContext(picksA),
		FighterB: buildSideContext(picksB),
		Analysts: model.AnalystInfo{
			CountA:       len(picksA),
			CountB:       len(picksB),
			RevealNames:  true,
			TopAnalystsA: uniqueAnalysts(picksA, maxTopAnalysts),
			TopAnalystsB: uniqueAnalysts(picksB, maxTopAnalysts),
		},
	}, nil
}

// EventConsensus computes the majority side for every fight on an event that
// has at least one classified pick, strongest consensus first. Returns nil
// when the event is not found.
func (o *Optimizer) EventConsensus(ctx context.Context, eventName string) (*model.EventConsensus, error) {
	event, err := o.store.GetEvent(ctx, eventName)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, nil
	}

	fights, err := o.store.ListFights(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	var consensus []model.ConsensusFight
	for _, fight := range fights {
		picks, err := o.store.ListPicks(ctx, fight.ID)
		if err != nil {
			return nil, err
		}
		if len(picks) == 0 {
			continue
		}

		picksA, picksB := o.classifyPicks(picks, fight.FighterA, fight.FighterB)
		total := len(picksA) + len(picksB)
		if total == 0 {
			continue
		}

		// Ties favor fighter A. Source behavior, kept for compatibility.
		consensusFighter := fight.FighterA
		consensusCount := len(picksA)
		opposingCount := len(picksB)
		if len(picksB) > len(picksA) {
			consensusFighter = fight.FighterB
			consensusCount = len(picksB)
			opposingCount = len(picksA)
		}

		consensus = append(consensus, model.ConsensusFight{
			Fight:               fight.FighterA + " vs " + fight.FighterB,
			FighterA:            fight.FighterA,
			FighterB:            fight.FighterB,
			ConsensusFighter:    consensusFighter,
			ConsensusCount:      consensusCount,
			OpposingCount:       opposingCount,
			TotalPredictions:    total,
			ConsensusPercentage: float64(consensusCount) / float64(total) * 100,
		})
	}

	sort.SliceStable(consensus, func(i, j int) bool {
		return consensus[i].ConsensusPercentage > consensus[j].ConsensusPercentage
	})

	return &model.EventConsensus{Event: event.Name, Picks: consensus}, nil
}

// InsideDistance lists fights likely to end in a finish: only picks with a
// finish-type method count, and a fight needs at least FinishMinPicks of
// them. Sorted by the favored side's finish count, descending.
func (o *Optimizer) InsideDistance(ctx context.Context, eventName string) (*model.InsideDistance, error) {
	event, err := o.store.GetEvent(ctx, eventName)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, nil
	}

	fights, err := o.store.ListFights(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	var finishes []model.FinishFight
	for _, fight := range fights {
		picks, err := o.store.ListPicks(ctx, fight.ID)
		if err != nil {
			return nil, err
		}

		var finishPicks []model.Pick
		for _, p := range picks {
			if model.FinishMethods[p.MethodPrediction] {
				finishPicks = append(finishPicks, p)
			}
		}
		if len(finishPicks) < o.thresholds.FinishMinPicks {
			continue
		}

		picksA, picksB := o.classifyPicks(finishPicks, fight.FighterA, fight.FighterB)
		if len(picksA) == 0 && len(picksB) == 0 {
			continue
		}

		favored := fight.FighterA
		favoredPicks := picksA
		count := len(picksA)
		if len(picksB) > len(picksA) {
			favored = fight.FighterB
			favoredPicks = picksB
			count = len(picksB)
		}

		var methods []string
		for _, p := range favoredPicks {
			if p.MethodPrediction != "" {
				methods = append(methods, p.MethodPrediction)
			}
		}

		finishes = append(finishes, model.FinishFight{
			Fight:                  fight.FighterA + " vs " + fight.FighterB,
			FighterA:               fight.FighterA,
			FighterB:               fight.FighterB,
			FavoredFighter:         favored,
			FinishPredictionCount:  count,
			Methods:                methods,
			TotalFinishPredictions: len(finishPicks),
		})
	}

	sort.SliceStable(finishes, func(i, j int) bool {
		return finishes[i].FinishPredictionCount > finishes[j].FinishPredictionCount
	})

	return &model.InsideDistance{Event: event.Name, Picks: finishes}, nil
}

// EventUnderdogs surfaces fights where a meaningful minority backs one side:
// at least UnderdogMinTotal classified picks, a strict minority side of at
// least UnderdogMinCount, and under half the total (near-50/50 splits carry
// no underdog value). Sorted by value score, descending.
func (o *Optimizer) EventUnderdogs(ctx context.Context, eventName string) (*model.EventUnderdogs, error) {
	event, err := o.store.GetEvent(ctx, eventName)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, nil
	}

	fights, err := o.store.ListFights(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	var underdogs []model.UnderdogFight
	for _, fight := range fights {
		picks, err := o.store.ListPicks(ctx, fight.ID)
		if err != nil {
			return nil, err
		}

		picksA, picksB := o.classifyPicks(picks, fight.FighterA, fight.FighterB)
		total := len(picksA) + len(picksB)
		if total < o.thresholds.UnderdogMinTotal {
			continue
		}

		underdog := fight.FighterB
		underdogPicks := picksB
		favoritePicks := picksA
		if len(picksA) < len(picksB) {
			underdog = fight.FighterA
			underdogPicks = picksA
			favoritePicks = picksB
		}

		underdogCount := len(underdogPicks)
		// An even split means no underdog; the half-total bound excludes it.
		if underdogCount < o.thresholds.UnderdogMinCount || float64(underdogCount) >= float64(total)/2 {
			continue
		}

		backers := make([]model.UnderdogBacker, 0, len(underdogPicks))
		for _, p := range underdogPicks {
			backers = append(backers, model.UnderdogBacker{
				Name:      p.AnalystName,
				Accuracy:  0, // accuracy tracking does not exist yet
				Reasoning: p.ReasoningNotes,
			})
		}

		underdogs = append(underdogs, model.UnderdogFight{
			Fight:              fight.FighterA + " vs " + fight.FighterB,
			FighterA:           fight.FighterA,
			FighterB:           fight.FighterB,
			Underdog:           underdog,
			UnderdogCount:      underdogCount,
			FavoriteCount:      len(favoritePicks),
			TotalPredictions:   total,
			UnderdogPercentage: float64(underdogCount) / float64(total) * 100,
			ValueScore:         float64(underdogCount) / float64(total),
			Backers:            backers,
			TopTags:            countTags(underdogPicks, maxUnderdogTags),
		})
	}

	sort.SliceStable(underdogs, func(i, j int) bool {
		return underdogs[i].ValueScore > underdogs[j].ValueScore
	})

	return &model.EventUnderdogs{Event: event.Name, Picks: underdogs}, nil
}

// classifyPicks splits picks into the two fight sides. A pick lands on
// exactly one side or on neither, never both.
func (o *Optimizer) classifyPicks(picks []model.Pick, fighterA, fighterB string) (picksA, picksB []model.Pick) {
	for _, p := range picks {
		switch o.matcher.ClassifySide(p.PickedFighter, fighterA, fighterB) {
		case match.SideA:
			picksA = append(picksA, p)
		case match.SideB:
			picksB = append(picksB, p)
		}
	}
	return picksA, picksB
}

func buildSideContext(picks []model.Pick) model.SideContext {
	sideCtx := model.SideContext{
		TopTags:           countTags(picks, maxTopTags),
		ExampleRationales: []string{},
	}

	methodIdx := map[string]int{}
	for _, p := range picks {
		if p.MethodPrediction == "" {
			continue
		}
		if i, ok := methodIdx[p.MethodPrediction]; ok {
			sideCtx.Methods[i].Count++
			continue
		}
		methodIdx[p.MethodPrediction] = len(sideCtx.Methods)
		sideCtx.Methods = append(sideCtx.Methods, model.MethodCount{Method: p.MethodPrediction, Count: 1})
	}

	for _, p := range picks {
		if p.ReasoningNotes == "" {
			continue
		}
		sideCtx.ExampleRationales = append(sideCtx.ExampleRationales, p.ReasoningNotes)
		if len(sideCtx.ExampleRationales) == maxRationales {
			break
		}
	}
	return sideCtx
}

// countTags counts tags across picks and returns the top n. Counts are taken
// in first-encountered order and the sort is stable, so ties break toward
// the tag seen first — required for deterministic prompts.
func countTags(picks []model.Pick, n int) []model.TagCount {
	idx := map[string]int{}
	counts := []model.TagCount{}
	for _, p := range picks {
		for _, tag := range p.Tags {
			if i, ok := idx[tag]; ok {
				counts[i].Count++
				continue
			}
			idx[tag] = len(counts)
			counts = append(counts, model.TagCount{Tag: tag, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// uniqueAnalysts returns up to n distinct analyst names in first-encountered
// order.
func uniqueAnalysts(picks []model.Pick, n int) []string {
	seen := map[string]bool{}
	names := []string{}
	for _, p := range picks {
		if seen[p.AnalystName] {
			continue
		}
		seen[p.AnalystName] = true
		names = append(names, p.AnalystName)
		if len(names) == n {
			break
		}
	}
	return names
}
