package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var aliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "Resolve and manage fighter name aliases",
}

var aliasResolveCmd = &cobra.Command{
	Use:   "resolve [name]",
	Short: "Resolve a raw name against the alias table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := newResolver(st).Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var aliasAddCmd = &cobra.Command{
	Use:   "add [canonical] [alias]",
	Short: "Record an alias for a canonical fighter name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		if err := newResolver(st).Add(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "alias %q -> %q saved\n", args[1], args[0])
		return nil
	},
}

func init() {
	aliasCmd.AddCommand(aliasResolveCmd)
	aliasCmd.AddCommand(aliasAddCmd)
	rootCmd.AddCommand(aliasCmd)
}
