package aggregate

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cageside/picks-cli/internal/match"
	"github.com/cageside/picks-cli/internal/model"
	"github.com/cageside/picks-cli/internal/store"
)

// memStore is a hand-rolled Store for aggregation tests.
type memStore struct {
	events []model.Event
	fights map[string][]model.Fight
	info   map[string]model.FightInfo
	picks  map[string][]model.Pick
}

var _ store.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		fights: map[string][]model.Fight{},
		info:   map[string]model.FightInfo{},
		picks:  map[string][]model.Pick{},
	}
}

func (s *memStore) addEvent(id, name string) {
	s.events = append(s.events, model.Event{ID: id, Name: name})
}

func (s *memStore) addFight(id, eventID, fighterA, fighterB, eventName string) {
	s.fights[eventID] = append(s.fights[eventID], model.Fight{
		ID: id, EventID: eventID, FighterA: fighterA, FighterB: fighterB,
	})
	s.info[id] = model.FightInfo{
		FightID: id, FighterA: fighterA, FighterB: fighterB, EventName: eventName,
	}
}

func (s *memStore) addPick(fightID, analyst, picked, method string, tags ...string) {
	id := fmt.Sprintf("%s-p%d", fightID, len(s.picks[fightID])+1)
	s.picks[fightID] = append(s.picks[fightID], model.Pick{
		ID: id, FightID: fightID, AnalystName: analyst,
		PickedFighter: picked, MethodPrediction: method, Tags: tags,
	})
}

func (s *memStore) GetEvent(_ context.Context, nameLike string) (*model.Event, error) {
	for i := range s.events {
		if s.events[i].Name == nameLike {
			return &s.events[i], nil
		}
	}
	return nil, nil
}

func (s *memStore) MostRecentEvent(_ context.Context) (*model.Event, error) {
	if len(s.events) == 0 {
		return nil, nil
	}
	return &s.events[0], nil
}

func (s *memStore) ListFights(_ context.Context, eventID string) ([]model.Fight, error) {
	return s.fights[eventID], nil
}

func (s *memStore) GetFight(_ context.Context, fightID string) (*model.FightInfo, error) {
	if fi, ok := s.info[fightID]; ok {
		return &fi, nil
	}
	return nil, nil
}

func (s *memStore) FindFights(_ context.Context, hintA, hintB string, limit int) ([]model.FightInfo, error) {
	matcher := match.New(0)
	var out []model.FightInfo
	for _, evFights := range s.fights {
		for _, f := range evFights {
			if matcher.Score(hintA, f.FighterA) == 100 && (hintB == "" || matcher.Score(hintB, f.FighterB) == 100) {
				out = append(out, s.info[f.ID])
			}
			if len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func (s *memStore) ListPicks(_ context.Context, fightID string) ([]model.Pick, error) {
	return s.picks[fightID], nil
}

func (s *memStore) ListAliases(_ context.Context) ([]model.Alias, error)         { return nil, nil }
func (s *memStore) UpsertEvent(_ context.Context, _ model.Event) (string, error) { return "", nil }
func (s *memStore) UpsertFight(_ context.Context, _ model.Fight) (string, error) { return "", nil }
func (s *memStore) CreatePick(_ context.Context, _ model.Pick) (string, error)   { return "", nil }
func (s *memStore) SaveAlias(_ context.Context, _, _ string) error               { return nil }
func (s *memStore) Migrate(_ context.Context) error                              { return nil }
func (s *memStore) Close() error                                                 { return nil }

func newOptimizer(st store.Store) *Optimizer {
	return New(st, match.New(0), DefaultThresholds())
}

func TestAggregateFightContext(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	st.addEvent("ev1", "UFC 309")
	st.addFight("f1", "ev1", "Jon Jones", "Stipe Miocic", "UFC 309")
	st.addPick("f1", "Ana", "Jon Jones", "KO/TKO", "speed_advantage", "age_gap")
	st.addPick("f1", "Ben", "jones", "KO/TKO", "speed_advantage")
	st.addPick("f1", "Cam", "Miocic", "Decision")
	st.addPick("f1", "Dee", "Someone Else", "Decision") // unclassifiable

	o := newOptimizer(st)
	ctx, err := o.AggregateFightContext(context.Background(), "f1", nil)
	require.NoError(t, err)
	require.NotNil(t, ctx)

	// The unclassifiable pick counts nowhere.
	assert.Equal(t, 3, ctx.Summary.TotalPredictions)
	assert.Equal(t, 2, ctx.Summary.PicksForA)
	assert.Equal(t, 1, ctx.Summary.PicksForB)

	assert.Equal(t, []model.TagCount{
		{Tag: "speed_advantage", Count: 2},
		{Tag: "age_gap", Count: 1},
	}, ctx.FighterA.TopTags)
	assert.Equal(t, []model.MethodCount{{Method: "KO/TKO", Count: 2}}, ctx.FighterA.Methods)
	assert.Equal(t, []string{"Ana", "Ben"}, ctx.Analysts.TopAnalystsA)
	assert.Equal(t, []string{"Cam"}, ctx.Analysts.TopAnalystsB)
}

func TestAggregateFightContext_NoPicks(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	st.addEvent("ev1", "UFC 309")
	st.addFight("f1", "ev1", "A", "B", "UFC 309")

	o := newOptimizer(st)
	ctx, err := o.AggregateFightContext(context.Background(), "f1", nil)
	require.NoError(t, err)
	assert.Nil(t, ctx, "fight exists but has no picks")
}

func TestAggregateFightContext_FightNotFound(t *testing.T) {
	t.Parallel()

	o := newOptimizer(newMemStore())
	_, err := o.AggregateFightContext(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ErrFightNotFound)
}

func TestAggregateFightContext_Idempotent(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	st.addEvent("ev1", "UFC 309")
	st.addFight("f1", "ev1", "Jon Jones", "Stipe Miocic", "UFC 309")
	st.addPick("f1", "Ana", "Jon Jones", "KO/TKO", "speed_advantage")
	st.addPick("f1", "Ben", "Stipe Miocic", "Decision", "cardio_edge")

	o := newOptimizer(st)
	first, err := o.AggregateFightContext(context.Background(), "f1", nil)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := o.AggregateFightContext(context.Background(), "f1", nil)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFightByFighters_ReversedHints(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	st.addEvent("ev1", "UFC 309")
	st.addFight("f1", "ev1", "Jon Jones", "Stipe Miocic", "UFC 309")

	o := newOptimizer(st)

	fi, err := o.FightByFighters(context.Background(), "Jon Jones", "Stipe Miocic", "")
	require.NoError(t, err)
	require.NotNil(t, fi)
	assert.Equal(t, "f1", fi.FightID)

	// Hints in the wrong orientation still resolve.
	fi, err = o.FightByFighters(context.Background(), "Stipe Miocic", "Jon Jones", "")
	require.NoError(t, err)
	require.NotNil(t, fi)
	assert.Equal(t, "f1", fi.FightID)

	fi, err = o.FightByFighters(context.Background(), "Bo Nickal", "Paulo Costa", "")
	require.NoError(t, err)
	assert.Nil(t, fi)
}

func TestEventConsensus(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	st.addEvent("ev1", "UFC 309")
	st.addFight("f1", "ev1", "Jon Jones", "Stipe Miocic", "UFC 309")
	st.addFight("f2", "ev1", "Charles Oliveira", "Michael Chandler", "UFC 309")
	st.addFight("f3", "ev1", "Bo Nickal", "Paul Craig", "UFC 309")

	// f1: 3-1 for Jones (75%)
	st.addPick("f1", "Ana", "Jon Jones", "KO/TKO")
	st.addPick("f1", "Ben", "Jon Jones", "Decision")
	st.addPick("f1", "Cam", "Jon Jones", "KO/TKO")
	st.addPick("f1", "Dee", "Stipe Miocic", "Decision")
	// f2: 1-1 tie, resolves to fighter A at 50%
	st.addPick("f2", "Ana", "Charles Oliveira", "Submission")
	st.addPick("f2", "Ben", "Michael Chandler", "KO/TKO")
	// f3: no picks, excluded entirely

	o := newOptimizer(st)
	consensus, err := o.EventConsensus(context.Background(), "UFC 309")
	require.NoError(t, err)
	require.NotNil(t, consensus)
	require.Len(t, consensus.Picks, 2)

	// Strongest consensus first.
	assert.Equal(t, "Jon Jones", consensus.Picks[0].ConsensusFighter)
	assert.Equal(t, 3, consensus.Picks[0].ConsensusCount)
	assert.Equal(t, 1, consensus.Picks[0].OpposingCount)
	assert.InDelta(t, 75.0, consensus.Picks[0].ConsensusPercentage, 1e-9)

	assert.Equal(t, "Charles Oliveira", consensus.Picks[1].ConsensusFighter, "ties resolve to fighter A")
	assert.InDelta(t, 50.0, consensus.Picks[1].ConsensusPercentage, 1e-9)
}

func TestEventConsensus_SinglePickFullStrength(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	st.addEvent("ev1", "UFC 309")
	st.addFight("f1", "ev1", "Jon Jones", "Stipe Miocic", "UFC 309")
	st.addPick("f1", "Ana", "Jon Jones", "KO/TKO")

	o := newOptimizer(st)

	// One pick still yields a consensus entry at full strength.
	consensus, err := o.EventConsensus(context.Background(), "UFC 309")
	require.NoError(t, err)
	require.Len(t, consensus.Picks, 1)
	assert.InDelta(t, 100.0, consensus.Picks[0].ConsensusPercentage, 1e-9)

	// But one pick is far below the underdog total floor.
	dogs, err := o.EventUnderdogs(context.Background(), "UFC 309")
	require.NoError(t, err)
	assert.Empty(t, dogs.Picks)
}

func TestEventConsensus_EventNotFound(t *testing.T) {
	t.Parallel()

	o := newOptimizer(newMemStore())
	consensus, err := o.EventConsensus(context.Background(), "UFC 999")
	require.NoError(t, err)
	assert.Nil(t, consensus)
}

func TestInsideDistance(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	st.addEvent("ev1", "UFC 309")
	st.addFight("f1", "ev1", "Jon Jones", "Stipe Miocic", "UFC 309")
	st.addFight("f2", "ev1", "Bo Nickal", "Paul Craig", "UFC 309")

	// f1: four finish picks, favored side Jones with 3.
	st.addPick("f1", "Ana", "Jon Jones", "KO/TKO")
	st.addPick("f1", "Ben", "Jon Jones", "Submission")
	st.addPick("f1", "Cam", "Jon Jones", "KO")
	st.addPick("f1", "Dee", "Stipe Miocic", "TKO")
	st.addPick("f1", "Eve", "Jon Jones", "Decision") // not a finish, ignored
	// f2: two finish picks, below the three-pick floor.
	st.addPick("f2", "Ana", "Bo Nickal", "Submission")
	st.addPick("f2", "Ben", "Bo Nickal", "KO/TKO")

	o := newOptimizer(st)
	id, err := o.InsideDistance(context.Background(), "UFC 309")
	require.NoError(t, err)
	require.NotNil(t, id)
	require.Len(t, id.Picks, 1)

	pick := id.Picks[0]
	assert.Equal(t, "Jon Jones", pick.FavoredFighter)
	assert.Equal(t, 3, pick.FinishPredictionCount)
	assert.Equal(t, 4, pick.TotalFinishPredictions)
	assert.Equal(t, []string{"KO/TKO", "Submission", "KO"}, pick.Methods)
}

func TestEventUnderdogs(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	st.addEvent("ev1", "UFC 309")
	st.addFight("f1", "ev1", "Jon Jones", "Stipe Miocic", "UFC 309")
	st.addFight("f2", "ev1", "Bo Nickal", "Paul Craig", "UFC 309")
	st.addFight("f3", "ev1", "Charles Oliveira", "Michael Chandler", "UFC 309")

	// f1: 4-2 split. Miocic is a qualifying underdog (2 of 6, under half).
	st.addPick("f1", "Ana", "Jon Jones", "KO/TKO")
	st.addPick("f1", "Ben", "Jon Jones", "Decision")
	st.addPick("f1", "Cam", "Jon Jones", "KO/TKO")
	st.addPick("f1", "Dee", "Jon Jones", "Submission")
	st.addPick("f1", "Eve", "Stipe Miocic", "KO/TKO", "heavy_hands")
	st.addPick("f1", "Fay", "Stipe Miocic", "Decision", "heavy_hands")
	// f2: 5-1. The single backer is below the two-pick minimum.
	st.addPick("f2", "Ana", "Bo Nickal", "Submission")
	st.addPick("f2", "Ben", "Bo Nickal", "KO/TKO")
	st.addPick("f2", "Cam", "Bo Nickal", "Decision")
	st.addPick("f2", "Dee", "Bo Nickal", "KO/TKO")
	st.addPick("f2", "Eve", "Bo Nickal", "Submission")
	st.addPick("f2", "Fay", "Paul Craig", "Submission")
	// f3: 3-3 even split, no underdog.
	st.addPick("f3", "Ana", "Charles Oliveira", "Submission")
	st.addPick("f3", "Ben", "Charles Oliveira", "Decision")
	st.addPick("f3", "Cam", "Charles Oliveira", "Submission")
	st.addPick("f3", "Dee", "Michael Chandler", "KO/TKO")
	st.addPick("f3", "Eve", "Michael Chandler", "KO/TKO")
	st.addPick("f3", "Fay", "Michael Chandler", "Decision")

	o := newOptimizer(st)
	dogs, err := o.EventUnderdogs(context.Background(), "UFC 309")
	require.NoError(t, err)
	require.NotNil(t, dogs)
	require.Len(t, dogs.Picks, 1)

	dog := dogs.Picks[0]
	assert.Equal(t, "Stipe Miocic", dog.Underdog)
	assert.Equal(t, 2, dog.UnderdogCount)
	assert.Equal(t, 4, dog.FavoriteCount)
	assert.InDelta(t, 33.333333, dog.UnderdogPercentage, 1e-4)
	require.Len(t, dog.Backers, 2)
	assert.Equal(t, "Eve", dog.Backers[0].Name)
	assert.Zero(t, dog.Backers[0].Accuracy)
	assert.Equal(t, []model.TagCount{{Tag: "heavy_hands", Count: 2}}, dog.TopTags)
}

func TestEventUnderdogs_BelowTotalFloor(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	st.addEvent("ev1", "UFC 309")
	st.addFight("f1", "ev1", "A B", "C D", "UFC 309")
	st.addPick("f1", "Ana", "A B", "Decision")
	st.addPick("f1", "Ben", "A B", "Decision")
	st.addPick("f1", "Cam", "C D", "Decision")
	st.addPick("f1", "Dee", "C D", "Decision")

	o := newOptimizer(st)
	dogs, err := o.EventUnderdogs(context.Background(), "UFC 309")
	require.NoError(t, err)
	require.NotNil(t, dogs)
	assert.Empty(t, dogs.Picks, "four total picks is under the five-pick floor")
}

func TestCountTags_DeterministicTieBreak(t *testing.T) {
	t.Parallel()

	picks := []model.Pick{
		{Tags: []string{"cardio_edge", "reach_advantage"}},
		{Tags: []string{"reach_advantage", "cardio_edge"}},
		{Tags: []string{"chin_concerns"}},
	}
	// cardio_edge and reach_advantage both count 2; first-encountered wins.
	got := countTags(picks, 5)
	assert.Equal(t, []model.TagCount{
		{Tag: "cardio_edge", Count: 2},
		{Tag: "reach_advantage", Count: 2},
		{Tag: "chin_concerns", Count: 1},
	}, got)

	assert.Equal(t, []model.TagCount{{Tag: "cardio_edge", Count: 2}}, countTags(picks, 1))
}
