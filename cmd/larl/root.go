package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "larl",
	Short: "Generate an LALR(1) parsing table from a grammar",
	Long: `larl compiles a grammar definition into an LALR(1) parsing table.
A conflicting grammar still compiles: every conflict is resolved by fixed
rules and reported as a warning.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
