package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cageside/picks-cli/internal/model"
	"github.com/cageside/picks-cli/internal/store"
)

// seedFile is the YAML fixture layout: events own fights, fights own picks.
type seedFile struct {
	Events []struct {
		Name     string `yaml:"name"`
		Date     string `yaml:"date"`
		Location string `yaml:"location"`
		Fights   []struct {
			FighterA    string `yaml:"fighter_a"`
			FighterB    string `yaml:"fighter_b"`
			WeightClass string `yaml:"weight_class"`
			BoutOrder   *int   `yaml:"bout_order"`
			Picks       []struct {
				Analyst       string   `yaml:"analyst"`
				Platform      string   `yaml:"platform"`
				PickedFighter string   `yaml:"picked_fighter"`
				Method        string   `yaml:"method"`
				Confidence    string   `yaml:"confidence"`
				Reasoning     string   `yaml:"reasoning"`
				SourceURL     string   `yaml:"source_url"`
				Tags          []string `yaml:"tags"`
			} `yaml:"picks"`
		} `yaml:"fights"`
	} `yaml:"events"`
	Aliases []struct {
		Canonical string `yaml:"canonical"`
		Alias     string `yaml:"alias"`
	} `yaml:"aliases"`
}

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Load events, fights, picks, and aliases from a YAML fixture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "seed: read file")
		}

		var sf seedFile
		if err := yaml.Unmarshal(raw, &sf); err != nil {
			return eris.Wrap(err, "seed: parse yaml")
		}

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		return runSeed(cmd, st, sf)
	},
}

func runSeed(cmd *cobra.Command, st store.Store, sf seedFile) error {
	ctx := cmd.Context()
	var events, fights, picks int

	for _, ev := range sf.Events {
		var date *time.Time
		if ev.Date != "" {
			d, err := time.Parse("2006-01-02", ev.Date)
			if err != nil {
				return eris.Wrapf(err, "seed: event %q date", ev.Name)
			}
			date = &d
		}

		eventID, err := st.UpsertEvent(ctx, model.Event{
			Name:     ev.Name,
			Date:     date,
			Location: ev.Location,
		})
		if err != nil {
			return err
		}
		events++

		for _, f := range ev.Fights {
			fightID, err := st.UpsertFight(ctx, model.Fight{
				EventID:     eventID,
				FighterA:    f.FighterA,
				FighterB:    f.FighterB,
				WeightClass: f.WeightClass,
				BoutOrder:   f.BoutOrder,
			})
			if err != nil {
				return err
			}
			fights++

			for _, p := range f.Picks {
				if _, err := st.CreatePick(ctx, model.Pick{
					FightID:          fightID,
					AnalystName:      p.Analyst,
					Platform:         p.Platform,
					PickedFighter:    p.PickedFighter,
					MethodPrediction: p.Method,
					ConfidenceTag:    p.Confidence,
					ReasoningNotes:   p.Reasoning,
					SourceURL:        p.SourceURL,
					Tags:             p.Tags,
				}); err != nil {
					return err
				}
				picks++
			}
		}
	}

	for _, a := range sf.Aliases {
		if err := st.SaveAlias(ctx, a.Canonical, a.Alias); err != nil {
			return err
		}
	}

	zap.L().Info("seed complete",
		zap.Int("events", events),
		zap.Int("fights", fights),
		zap.Int("picks", picks),
		zap.Int("aliases", len(sf.Aliases)),
	)
	return nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
