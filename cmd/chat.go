package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question session with running cost totals",
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

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "CagesidePicks chat. Ask about fights, consensus, finishes, or underdogs.")
		fmt.Fprintln(out, `Type "quit" to exit.`)

		var queries int
		var sessionTokens int64
		var sessionCost float64

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "\n> ")
			if !scanner.Scan() {
				break
			}
			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}
			if question == "quit" || question == "exit" {
				break
			}

			ans := b.Answer(cmd.Context(), question)
			fmt.Fprintln(out, ans.Answer)
			queries++
			if est := ans.Metadata.Cost; est != nil {
				sessionTokens += est.TotalTokens
				sessionCost += est.CostUSD
				fmt.Fprintf(out, "\n[%d tokens, $%.5f | session: %d tokens, $%.5f]\n",
					est.TotalTokens, est.CostUSD, sessionTokens, sessionCost)
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}

		if queries > 0 {
			fmt.Fprintf(out, "\nSession total: %d queries, %d tokens, $%.5f (avg $%.5f/query)\n",
				queries, sessionTokens, sessionCost, sessionCost/float64(queries))
		}
		return nil
	},
}

// printJSON writes any value as indented JSON, shared by ask and alias.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
