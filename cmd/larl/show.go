package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kasumi721/larl/grammar"
	spec "github.com/kasumi721/larl/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print a report in a readable format",
		Example: `  larl show grammar-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	printReport(report)

	return nil
}

func readReport(path string) (*spec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open the report %s: %w", path, err)
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	report := &spec.Report{}
	err = json.Unmarshal(d, report)
	if err != nil {
		return nil, err
	}

	return report, nil
}

// printReport renders a report section by section. Headings and conflict
// lines go through pterm; the rows stay plain so their column alignment
// survives.
func printReport(report *spec.Report) {
	f := &reportFormatter{report: report}

	pterm.DefaultSection.Println("Conflicts")
	fmt.Println(f.conflictSummary())

	pterm.DefaultSection.Println("Terminals")
	for _, term := range report.Terminals[1:] {
		fmt.Println(f.terminalLine(term))
	}

	pterm.DefaultSection.Println("Productions")
	for _, prod := range report.Productions[1:] {
		fmt.Println(f.productionLine(prod))
	}

	pterm.DefaultSection.Println("States")
	for _, state := range report.States {
		pterm.DefaultSection.WithLevel(2).Println(fmt.Sprintf("State %v", state.Number))
		for _, item := range state.Kernel {
			fmt.Println(f.itemLine(item))
		}
		fmt.Println()
		for _, tran := range state.Shift {
			fmt.Println(f.shiftLine(tran))
		}
		for _, reduce := range state.Reduce {
			fmt.Println(f.reduceLine(reduce))
		}
		for _, tran := range state.GoTo {
			fmt.Println(f.goToLine(tran))
		}
		for _, sr := range state.SRConflict {
			pterm.Warning.Println(f.srConflictLine(sr))
		}
		for _, rr := range state.RRConflict {
			pterm.Warning.Println(f.rrConflictLine(rr))
		}
	}
}

type reportFormatter struct {
	report *spec.Report
}

func (f *reportFormatter) termName(sym int) string {
	return f.report.Terminals[sym].Name
}

func (f *reportFormatter) nonTermName(sym int) string {
	return f.report.NonTerminals[sym].Name
}

func (f *reportFormatter) termAssoc(sym int) string {
	switch f.report.Terminals[sym].Associativity {
	case "l":
		return "left"
	case "r":
		return "right"
	default:
		return "no"
	}
}

func (f *reportFormatter) prodAssoc(prod int) string {
	switch f.report.Productions[prod].Associativity {
	case "l":
		return "left"
	case "r":
		return "right"
	default:
		return "no"
	}
}

func (f *reportFormatter) conflictSummary() string {
	var implicitlyResolvedCount int
	var explicitlyResolvedCount int
	for _, s := range f.report.States {
		for _, c := range s.SRConflict {
			if c.ResolvedBy == grammar.ResolvedByShift.Int() {
				implicitlyResolvedCount++
			} else {
				explicitlyResolvedCount++
			}
		}
		for _, c := range s.RRConflict {
			if c.ResolvedBy == grammar.ResolvedByProdOrder.Int() {
				implicitlyResolvedCount++
			} else {
				explicitlyResolvedCount++
			}
		}
	}

	var b strings.Builder
	if implicitlyResolvedCount == 1 {
		fmt.Fprintf(&b, "%v conflict occurred and was resolved implicitly.\n", implicitlyResolvedCount)
	} else if implicitlyResolvedCount > 1 {
		fmt.Fprintf(&b, "%v conflicts occurred and were resolved implicitly.\n", implicitlyResolvedCount)
	}
	if explicitlyResolvedCount == 1 {
		fmt.Fprintf(&b, "%v conflict occurred and was resolved explicitly.\n", explicitlyResolvedCount)
	} else if explicitlyResolvedCount > 1 {
		fmt.Fprintf(&b, "%v conflicts occurred and were resolved explicitly.\n", explicitlyResolvedCount)
	}
	if implicitlyResolvedCount == 0 && explicitlyResolvedCount == 0 {
		fmt.Fprintf(&b, "No conflict")
	}
	return b.String()
}

func (f *reportFormatter) terminalLine(term *spec.Terminal) string {
	var prec string
	if term.Precedence != 0 {
		prec = fmt.Sprintf("%2v", term.Precedence)
	} else {
		prec = " -"
	}

	var assoc string
	if term.Associativity != "" {
		assoc = term.Associativity
	} else {
		assoc = "-"
	}

	if term.Anonymous {
		return fmt.Sprintf("%4v %v %v '%v' (anonymous)", term.Number, prec, assoc, term.Name)
	}
	return fmt.Sprintf("%4v %v %v %v", term.Number, prec, assoc, term.Name)
}

func (f *reportFormatter) productionLine(prod *spec.Production) string {
	var prec string
	if prod.Precedence != 0 {
		prec = fmt.Sprintf("%2v", prod.Precedence)
	} else {
		prec = " -"
	}

	var assoc string
	if prod.Associativity != "" {
		assoc = prod.Associativity
	} else {
		assoc = "-"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%v →", f.nonTermName(prod.LHS))
	if len(prod.RHS) > 0 {
		for _, e := range prod.RHS {
			if e > 0 {
				fmt.Fprintf(&b, " %v", f.termName(e))
			} else {
				fmt.Fprintf(&b, " %v", f.nonTermName(e*-1))
			}
		}
	} else {
		fmt.Fprintf(&b, " ε")
	}

	return fmt.Sprintf("%4v %v %v %v", prod.Number, prec, assoc, b.String())
}

func (f *reportFormatter) itemLine(item *spec.Item) string {
	prod := f.report.Productions[item.Production]

	var b strings.Builder
	fmt.Fprintf(&b, "%v →", f.nonTermName(prod.LHS))
	for i, e := range prod.RHS {
		if i == item.Dot {
			fmt.Fprintf(&b, " ・")
		}
		if e > 0 {
			fmt.Fprintf(&b, " %v", f.termName(e))
		} else {
			fmt.Fprintf(&b, " %v", f.nonTermName(e*-1))
		}
	}
	if item.Dot >= len(prod.RHS) {
		fmt.Fprintf(&b, " ・")
	}

	return fmt.Sprintf("%4v %v", prod.Number, b.String())
}

func (f *reportFormatter) shiftLine(tran *spec.Transition) string {
	return fmt.Sprintf("shift  %4v on %v", tran.State, f.termName(tran.Symbol))
}

func (f *reportFormatter) reduceLine(reduce *spec.Reduce) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v", f.termName(reduce.LookAhead[0]))
	for _, a := range reduce.LookAhead[1:] {
		fmt.Fprintf(&b, ", %v", f.termName(a))
	}
	return fmt.Sprintf("reduce %4v on %v", reduce.Production, b.String())
}

func (f *reportFormatter) goToLine(tran *spec.Transition) string {
	return fmt.Sprintf("goto   %4v on %v", tran.State, f.nonTermName(tran.Symbol))
}

func (f *reportFormatter) srConflictLine(sr *spec.SRConflict) string {
	var adopted string
	switch {
	case sr.AdoptedState != nil:
		adopted = fmt.Sprintf("shift %v", *sr.AdoptedState)
	case sr.AdoptedProduction != nil:
		adopted = fmt.Sprintf("reduce %v", *sr.AdoptedProduction)
	}
	var resolvedBy string
	switch sr.ResolvedBy {
	case grammar.ResolvedByPrec.Int():
		if sr.AdoptedState != nil {
			resolvedBy = fmt.Sprintf("symbol %v has higher precedence than production %v", f.termName(sr.Symbol), sr.Production)
		} else {
			resolvedBy = fmt.Sprintf("production %v has higher precedence than symbol %v", sr.Production, f.termName(sr.Symbol))
		}
	case grammar.ResolvedByAssoc.Int():
		if sr.AdoptedState != nil {
			resolvedBy = fmt.Sprintf("symbol %v and production %v have the same precedence, and symbol %v has %v associativity", f.termName(sr.Symbol), sr.Production, f.termName(sr.Symbol), f.termAssoc(sr.Symbol))
		} else {
			resolvedBy = fmt.Sprintf("production %v and symbol %v have the same precedence, and production %v has %v associativity", sr.Production, f.termName(sr.Symbol), sr.Production, f.prodAssoc(sr.Production))
		}
	case grammar.ResolvedByShift.Int():
		resolvedBy = fmt.Sprintf("symbol %v and production %v don't define a precedence comparison (default rule)", f.termName(sr.Symbol), sr.Production)
	default:
		resolvedBy = "?"
	}
	return fmt.Sprintf("shift/reduce conflict (shift %v, reduce %v) on %v: %v adopted because %v", sr.State, sr.Production, f.termName(sr.Symbol), adopted, resolvedBy)
}

func (f *reportFormatter) rrConflictLine(rr *spec.RRConflict) string {
	var resolvedBy string
	switch rr.ResolvedBy {
	case grammar.ResolvedByProdOrder.Int():
		resolvedBy = fmt.Sprintf("production %v and %v don't define a precedence comparison (default rule)", rr.Production1, rr.Production2)
	default:
		resolvedBy = "?"
	}
	return fmt.Sprintf("reduce/reduce conflict (%v, %v) on %v: reduce %v adopted because %v", rr.Production1, rr.Production2, f.termName(rr.Symbol), rr.AdoptedProduction, resolvedBy)
}
