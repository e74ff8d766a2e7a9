package main

import (
	"testing"

	"github.com/kasumi721/larl/grammar"
	spec "github.com/kasumi721/larl/spec/grammar"
)

func testReport() *spec.Report {
	return &spec.Report{
		Terminals: []*spec.Terminal{
			{},
			{Number: 1, Name: "<eof>"},
			{Number: 2, Name: "add", Precedence: 1, Associativity: "l"},
			{Number: 3, Name: "+", Anonymous: true, Pattern: "+"},
		},
		NonTerminals: []*spec.NonTerminal{
			{},
			{Number: 1, Name: "expr'"},
			{Number: 2, Name: "expr"},
		},
		Productions: []*spec.Production{
			{},
			{Number: 1, LHS: 1, RHS: []int{-2}},
			{Number: 2, LHS: 2, RHS: []int{-2, 2, -2}, Precedence: 1, Associativity: "l"},
			{Number: 3, LHS: 2},
		},
	}
}

func TestReportFormatter(t *testing.T) {
	f := &reportFormatter{report: testReport()}

	tests := []struct {
		caption string
		line    string
		want    string
	}{
		{
			caption: "a declared terminal with a precedence",
			line:    f.terminalLine(f.report.Terminals[2]),
			want:    "   2  1 l add",
		},
		{
			caption: "an anonymous terminal",
			line:    f.terminalLine(f.report.Terminals[3]),
			want:    "   3  - - '+' (anonymous)",
		},
		{
			caption: "a production",
			line:    f.productionLine(f.report.Productions[2]),
			want:    "   2  1 l expr → expr add expr",
		},
		{
			caption: "an empty production",
			line:    f.productionLine(f.report.Productions[3]),
			want:    "   3  - - expr → ε",
		},
		{
			caption: "an item with the dot mid-RHS",
			line:    f.itemLine(&spec.Item{Production: 2, Dot: 1}),
			want:    "   2 expr → expr ・ add expr",
		},
		{
			caption: "an item with the dot at the end",
			line:    f.itemLine(&spec.Item{Production: 1, Dot: 1}),
			want:    "   1 expr' → expr ・",
		},
		{
			caption: "a shift",
			line:    f.shiftLine(&spec.Transition{Symbol: 2, State: 4}),
			want:    "shift     4 on add",
		},
		{
			caption: "a reduce with multiple look-aheads",
			line:    f.reduceLine(&spec.Reduce{LookAhead: []int{1, 2}, Production: 3}),
			want:    "reduce    3 on <eof>, add",
		},
		{
			caption: "a goto",
			line:    f.goToLine(&spec.Transition{Symbol: 2, State: 5}),
			want:    "goto      5 on expr",
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			if tt.line != tt.want {
				t.Errorf("line is mismatched;\nwant: %q\ngot:  %q", tt.want, tt.line)
			}
		})
	}
}

func TestReportFormatterConflicts(t *testing.T) {
	report := testReport()
	adoptedState := 4
	report.States = []*spec.State{
		{
			Number: 4,
			SRConflict: []*spec.SRConflict{
				{
					Symbol:       2,
					State:        4,
					Production:   3,
					AdoptedState: &adoptedState,
					ResolvedBy:   grammar.ResolvedByShift.Int(),
				},
			},
			RRConflict: []*spec.RRConflict{
				{
					Symbol:            1,
					State:             4,
					Production1:       2,
					Production2:       3,
					AdoptedProduction: 2,
					ResolvedBy:        grammar.ResolvedByProdOrder.Int(),
				},
			},
		},
	}
	f := &reportFormatter{report: report}

	wantSR := "shift/reduce conflict (shift 4, reduce 3) on add: shift 4 adopted because symbol add and production 3 don't define a precedence comparison (default rule)"
	if line := f.srConflictLine(report.States[0].SRConflict[0]); line != wantSR {
		t.Errorf("line is mismatched;\nwant: %q\ngot:  %q", wantSR, line)
	}

	wantRR := "reduce/reduce conflict (2, 3) on <eof>: reduce 2 adopted because production 2 and 3 don't define a precedence comparison (default rule)"
	if line := f.rrConflictLine(report.States[0].RRConflict[0]); line != wantRR {
		t.Errorf("line is mismatched;\nwant: %q\ngot:  %q", wantRR, line)
	}

	// Both conflicts above fall back to the default rules.
	wantSummary := "2 conflicts occurred and were resolved implicitly.\n"
	if s := f.conflictSummary(); s != wantSummary {
		t.Errorf("summary is mismatched;\nwant: %q\ngot:  %q", wantSummary, s)
	}

	f = &reportFormatter{report: testReport()}
	if s := f.conflictSummary(); s != "No conflict" {
		t.Errorf("summary is mismatched;\nwant: %q\ngot:  %q", "No conflict", s)
	}
}
