package main

import (
	"fmt"

	"github.com/kasumi721/larl/grammar"
	spec "github.com/kasumi721/larl/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var checkFlags = struct {
	strict *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "check",
		Short:   "Compile a grammar and print its warnings without writing any output files",
		Example: `  larl check grammar.larl`,
		Args:    cobra.ExactArgs(1),
		RunE:    runCheck,
	}
	checkFlags.strict = cmd.Flags().Bool("strict", false, "treat conflict warnings as errors")
	rootCmd.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	gram, err := readGrammar(args[0])
	if err != nil {
		return err
	}

	cgram, _, err := grammar.Compile(gram, grammar.CompressionLevel(grammar.CompressionLevelMin))
	if err != nil {
		return err
	}

	var conflictCount int
	for _, w := range cgram.Warnings {
		pterm.Warning.Println(describeWarning(w))
		if w.Type.IsConflict() {
			conflictCount++
		}
	}
	if len(cgram.Warnings) == 0 {
		pterm.Success.Println(fmt.Sprintf("%v: no warnings, %v states", cgram.Name, cgram.Summary.StateCount))
		return nil
	}

	// Useless-symbol warnings never fail the check; only conflicts do.
	if *checkFlags.strict && conflictCount > 0 {
		return fmt.Errorf("%v conflicts found in %v", conflictCount, cgram.Name)
	}
	return nil
}

func describeWarning(w *spec.Warning) string {
	switch w.Type {
	case spec.WarningTypeUselessTerminal:
		return fmt.Sprintf("terminal '%v' is never shifted", w.Symbol)
	case spec.WarningTypeUselessNonTerminal:
		return fmt.Sprintf("non-terminal '%v' is unreachable from the start symbol", w.Symbol)
	case spec.WarningTypeUselessPrec:
		return fmt.Sprintf("the precedence of terminal '%v' never takes part in a conflict resolution", w.Symbol)
	case spec.WarningTypeUselessRule:
		return fmt.Sprintf("production %v of '%v' is never reduced", w.Production, w.Symbol)
	case spec.WarningTypeSRConflict:
		adopted := fmt.Sprintf("reduce %v", w.Production)
		if w.AdoptedShift {
			adopted = fmt.Sprintf("shift %v", w.ShiftState)
		}
		return fmt.Sprintf("state %v: shift/reduce conflict on '%v' (shift %v, reduce %v): %v adopted",
			w.State, w.Symbol, w.ShiftState, w.Production, adopted)
	case spec.WarningTypeRRConflict:
		return fmt.Sprintf("state %v: reduce/reduce conflict on '%v': production %v adopted over %v",
			w.State, w.Symbol, w.Production, w.DiscardedProduction)
	}
	return fmt.Sprintf("%v: %v", w.Type, w.Symbol)
}
