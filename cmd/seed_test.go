package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cageside/picks-cli/internal/store"
)

const seedFixture = `
events:
  - name: UFC 309
    date: 2026-08-15
    location: New York
    fights:
      - fighter_a: Jon Jones
        fighter_b: Stipe Miocic
        weight_class: Heavyweight
        bout_order: 1
        picks:
          - analyst: Ana
            platform: youtube
            picked_fighter: Jon Jones
            method: KO/TKO
            confidence: lock
            reasoning: Too fast for Stipe at this stage.
            source_url: https://example.com/ana
            tags: [speed_advantage, age_gap]
          - analyst: Ben
            platform: substack
            picked_fighter: Stipe Miocic
            method: Decision
            source_url: https://example.com/ben
aliases:
  - canonical: Jon Jones
    alias: Bones
`

func TestRunSeed(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))

	var sf seedFile
	require.NoError(t, yaml.Unmarshal([]byte(seedFixture), &sf))

	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	require.NoError(t, runSeed(cmd, st, sf))

	event, err := st.GetEvent(ctx, "UFC 309")
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "New York", event.Location)
	require.NotNil(t, event.Date)
	assert.Equal(t, 2026, event.Date.Year())

	fights, err := st.ListFights(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, fights, 1)
	assert.Equal(t, "Jon Jones", fights[0].FighterA)

	picks, err := st.ListPicks(ctx, fights[0].ID)
	require.NoError(t, err)
	require.Len(t, picks, 2)
	tagsByAnalyst := map[string][]string{}
	for _, p := range picks {
		tagsByAnalyst[p.AnalystName] = p.Tags
	}
	assert.Equal(t, []string{"speed_advantage", "age_gap"}, tagsByAnalyst["Ana"])
	assert.Empty(t, tagsByAnalyst["Ben"])

	aliases, err := st.ListAliases(ctx)
	require.NoError(t, err)
	require.Len(t, aliases, 1)
	assert.Equal(t, "Bones", aliases[0].Alias)
}

func TestRunSeed_Idempotent(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))

	var sf seedFile
	require.NoError(t, yaml.Unmarshal([]byte(seedFixture), &sf))

	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	require.NoError(t, runSeed(cmd, st, sf))
	require.NoError(t, runSeed(cmd, st, sf))

	event, err := st.GetEvent(ctx, "UFC 309")
	require.NoError(t, err)
	require.NotNil(t, event)

	fights, err := st.ListFights(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, fights, 1, "event and fight upserts must not duplicate")
}
