package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cageside/picks-cli/internal/model"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question about analyst picks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		b, err := newBot(st)
		if err != nil {
			return err
		}

		question := strings.Join(args, " ")
		ans := b.Answer(cmd.Context(), question)

		if askJSON {
			return printJSON(cmd, ans)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ans.Answer)
		if ans.Metadata.Cost != nil {
			printCost(cmd, ans.Metadata.Cost)
		}
		return nil
	},
}

func printCost(cmd *cobra.Command, est *model.CostEstimate) {
	fmt.Fprintf(cmd.OutOrStdout(), "\n[%d in / %d out tokens, $%.5f]\n",
		est.InputTokens, est.OutputTokens, est.CostUSD)
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full answer as JSON")
	rootCmd.AddCommand(askCmd)
}
