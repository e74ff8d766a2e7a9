package grammar

import (
	"fmt"
	"sort"

	"github.com/kasumi721/larl/compressor"
	"github.com/kasumi721/larl/grammar/symbol"
	spec "github.com/kasumi721/larl/spec/grammar"
)

const (
	CompressionLevelMin = 0
	CompressionLevelMax = 2
)

type compileConfig struct {
	isReportingEnabled bool
	compressionLevel   int
}

type CompileOption func(config *compileConfig)

func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

func CompressionLevel(lv int) CompileOption {
	return func(config *compileConfig) {
		config.compressionLevel = lv
	}
}

// Compile generates the LALR(1) parsing table of a grammar. The compilation
// itself never fails on conflicts; every conflict is resolved by the fixed
// rules and surfaces as a warning in the artifact.
func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{
		compressionLevel: CompressionLevelMax,
	}
	for _, opt := range opts {
		opt(config)
	}

	terms, err := gram.symbolTable.TerminalTexts()
	if err != nil {
		return nil, nil, err
	}
	nonTerms, err := gram.symbolTable.NonTerminalTexts()
	if err != nil {
		return nil, nil, err
	}

	firstSet, err := genFirstSet(gram.productionSet)
	if err != nil {
		return nil, nil, err
	}

	lr0, err := genLR0Automaton(gram.productionSet, gram.augmentedStartSymbol)
	if err != nil {
		return nil, nil, err
	}

	lalr1, err := genLALR1Automaton(lr0, gram.productionSet, firstSet)
	if err != nil {
		return nil, nil, err
	}

	b := &lrTableBuilder{
		automaton:    lalr1.lr0Automaton,
		prods:        gram.productionSet,
		termCount:    len(terms),
		nonTermCount: len(nonTerms),
		symTab:       gram.symbolTable,
		precAndAssoc: gram.precAndAssoc,
	}
	tab, err := b.build()
	if err != nil {
		return nil, nil, err
	}

	var report *spec.Report
	if config.isReportingEnabled {
		report, err = b.genReport(tab, gram)
		if err != nil {
			return nil, nil, err
		}
	}

	warnings, err := b.conflictWarnings()
	if err != nil {
		return nil, nil, err
	}
	analyzer := &usageAnalyzer{
		gram:        gram,
		ptab:        tab,
		srConflicts: b.srConflicts,
	}
	usageWarnings, err := analyzer.analyze()
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, usageWarnings...)
	sortWarnings(warnings)

	action := make([]int, len(tab.actionTable))
	for i, e := range tab.actionTable {
		action[i] = int(e)
	}
	goTo := make([]int, len(tab.goToTable))
	for i, e := range tab.goToTable {
		goTo[i] = int(e)
	}

	compAction, rawAction, err := compressTable(action, tab.terminalCount, config.compressionLevel)
	if err != nil {
		return nil, nil, err
	}
	compGoTo, rawGoTo, err := compressTable(goTo, tab.nonTerminalCount, config.compressionLevel)
	if err != nil {
		return nil, nil, err
	}

	lhsSyms := make([]int, gram.productionSet.count()+1)
	altSymCounts := make([]int, gram.productionSet.count()+1)
	for _, p := range gram.productionSet.getAllProductions() {
		lhsSyms[p.num] = p.lhs.Num().Int()
		altSymCounts[p.num] = p.rhsLen
	}

	termPatterns := make([]string, tab.terminalCount)
	for num, pat := range gram.termPatterns {
		termPatterns[num.Int()] = pat
	}

	artifactWarnings := make([]*spec.Warning, len(warnings))
	for i, w := range warnings {
		artifactWarnings[i] = &spec.Warning{
			Type:                w.Type,
			Symbol:              w.Symbol,
			State:               w.State,
			Production:          w.Production,
			DiscardedProduction: w.DiscardedProduction,
			ShiftState:          w.ShiftState,
			AdoptedShift:        w.AdoptedShift,
			ResolvedBy:          w.ResolvedBy.Int(),
		}
	}

	return &spec.CompiledGrammar{
		Name: gram.name,
		Syntactic: &spec.SyntacticSpec{
			Action:                  compAction,
			UncompressedAction:      rawAction,
			GoTo:                    compGoTo,
			UncompressedGoTo:        rawGoTo,
			StateCount:              tab.stateCount,
			InitialState:            tab.InitialState.Int(),
			StartProduction:         productionNumStart.Int(),
			LHSSymbols:              lhsSyms,
			AlternativeSymbolCounts: altSymCounts,
			Terminals:               terms,
			TerminalCount:           tab.terminalCount,
			TerminalPatterns:        termPatterns,
			NonTerminals:            nonTerms,
			NonTerminalCount:        tab.nonTerminalCount,
			EOFSymbol:               symbol.SymbolEOF.Num().Int(),
		},
		Warnings: artifactWarnings,
		Summary: &spec.Summary{
			StateCount:      tab.stateCount,
			SRConflicts:     len(b.srConflicts),
			RRConflicts:     len(b.rrConflicts),
			WarningCount:    len(warnings),
			TerminalCount:   tab.terminalCount,
			ProductionCount: gram.productionSet.count(),
		},
	}, report, nil
}

// compressTable applies the requested compression level to a row-major table.
// Level 0 keeps the table as is, level 1 deduplicates rows, and level 2 also
// row-displaces the surviving rows.
func compressTable(entries []int, colCount int, level int) (*spec.UniqueEntriesTable, []int, error) {
	if level <= CompressionLevelMin {
		return nil, entries, nil
	}

	orig, err := compressor.NewOriginalTable(entries, colCount)
	if err != nil {
		return nil, nil, err
	}
	ueTab := compressor.NewUniqueEntriesTable()
	if err := ueTab.Compress(orig); err != nil {
		return nil, nil, err
	}

	result := &spec.UniqueEntriesTable{
		RowNums:          ueTab.RowNums,
		OriginalRowCount: ueTab.OriginalRowCount,
		OriginalColCount: ueTab.OriginalColCount,
		EmptyValue:       0,
	}
	if level < CompressionLevelMax {
		result.UncompressedUniqueEntries = ueTab.UniqueEntries
		return result, nil, nil
	}

	ueOrig, err := compressor.NewOriginalTable(ueTab.UniqueEntries, colCount)
	if err != nil {
		return nil, nil, err
	}
	rdTab := compressor.NewRowDisplacementTable(0)
	if err := rdTab.Compress(ueOrig); err != nil {
		return nil, nil, err
	}
	result.UniqueEntries = &spec.RowDisplacementTable{
		OriginalRowCount: rdTab.OriginalRowCount,
		OriginalColCount: rdTab.OriginalColCount,
		EmptyValue:       rdTab.EmptyValue,
		Entries:          rdTab.Entries,
		Bounds:           rdTab.Bounds,
		RowDisplacement:  rdTab.RowDisplacement,
	}
	return result, nil, nil
}

func (b *lrTableBuilder) genReport(tab *ParsingTable, gram *Grammar) (*spec.Report, error) {
	var terms []*spec.Terminal
	{
		termSyms := b.symTab.TerminalSymbols()
		terms = make([]*spec.Terminal, tab.terminalCount)

		for _, sym := range termSyms {
			name, ok := b.symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate terminals: symbol not found: %v", sym)
			}

			term := &spec.Terminal{
				Number:  sym.Num().Int(),
				Name:    name,
				Pattern: gram.termPatterns[sym.Num()],
			}
			if _, ok := gram.anonTerms[sym.Num()]; ok {
				term.Anonymous = true
			}

			prec := b.precAndAssoc.terminalPrecedence(sym.Num())
			if prec != precNil {
				term.Precedence = prec
			}

			switch b.precAndAssoc.terminalAssociativity(sym.Num()) {
			case assocTypeLeft:
				term.Associativity = "l"
			case assocTypeRight:
				term.Associativity = "r"
			}

			terms[sym.Num()] = term
		}
	}

	var nonTerms []*spec.NonTerminal
	{
		nonTermSyms := b.symTab.NonTerminalSymbols()
		nonTerms = make([]*spec.NonTerminal, tab.nonTerminalCount)
		for _, sym := range nonTermSyms {
			name, ok := b.symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate non-terminals: symbol not found: %v", sym)
			}

			nonTerms[sym.Num()] = &spec.NonTerminal{
				Number: sym.Num().Int(),
				Name:   name,
			}
		}
	}

	var prods []*spec.Production
	{
		ps := gram.productionSet.getAllProductions()
		prods = make([]*spec.Production, len(ps)+1)
		for _, p := range ps {
			rhs := make([]int, len(p.rhs))
			for i, e := range p.rhs {
				if e.IsTerminal() {
					rhs[i] = e.Num().Int()
				} else {
					rhs[i] = e.Num().Int() * -1
				}
			}

			prod := &spec.Production{
				Number: p.num.Int(),
				LHS:    p.lhs.Num().Int(),
				RHS:    rhs,
			}

			prec := b.precAndAssoc.productionPrecedence(p.num)
			if prec != precNil {
				prod.Precedence = prec
			}

			switch b.precAndAssoc.productionAssociativity(p.num) {
			case assocTypeLeft:
				prod.Associativity = "l"
			case assocTypeRight:
				prod.Associativity = "r"
			}

			prods[p.num.Int()] = prod
		}
	}

	var states []*spec.State
	{
		srConflicts := map[stateNum][]*shiftReduceConflict{}
		for _, c := range b.srConflicts {
			srConflicts[c.state] = append(srConflicts[c.state], c)
		}
		rrConflicts := map[stateNum][]*reduceReduceConflict{}
		for _, c := range b.rrConflicts {
			rrConflicts[c.state] = append(rrConflicts[c.state], c)
		}

		states = make([]*spec.State, len(b.automaton.states))
		for _, s := range b.automaton.states {
			kernel := make([]*spec.Item, len(s.items))
			for i, item := range s.items {
				p, ok := b.prods.findByID(item.prod)
				if !ok {
					return nil, fmt.Errorf("failed to generate states: production of kernel item not found: %v", item.prod)
				}

				kernel[i] = &spec.Item{
					Production: p.num.Int(),
					Dot:        item.dot,
				}
			}

			sort.Slice(kernel, func(i, j int) bool {
				if kernel[i].Production != kernel[j].Production {
					return kernel[i].Production < kernel[j].Production
				}
				return kernel[i].Dot < kernel[j].Dot
			})

			var shift []*spec.Transition
			var reduce []*spec.Reduce
			var goTo []*spec.Transition
			{
			TERMINALS_LOOP:
				for _, t := range b.symTab.TerminalSymbols() {
					act, next, prod := tab.getAction(s.num, t.Num())
					switch act {
					case ActionTypeShift:
						shift = append(shift, &spec.Transition{
							Symbol: t.Num().Int(),
							State:  next.Int(),
						})
					case ActionTypeReduce, ActionTypeAccept:
						for _, r := range reduce {
							if r.Production == prod.Int() {
								r.LookAhead = append(r.LookAhead, t.Num().Int())
								continue TERMINALS_LOOP
							}
						}
						reduce = append(reduce, &spec.Reduce{
							LookAhead:  []int{t.Num().Int()},
							Production: prod.Int(),
						})
					}
				}

				for _, n := range b.symTab.NonTerminalSymbols() {
					ty, next := tab.getGoTo(s.num, n.Num())
					if ty == GoToTypeRegistered {
						goTo = append(goTo, &spec.Transition{
							Symbol: n.Num().Int(),
							State:  next.Int(),
						})
					}
				}

				sort.Slice(shift, func(i, j int) bool {
					return shift[i].State < shift[j].State
				})
				sort.Slice(reduce, func(i, j int) bool {
					return reduce[i].Production < reduce[j].Production
				})
				sort.Slice(goTo, func(i, j int) bool {
					return goTo[i].State < goTo[j].State
				})
			}

			sr := []*spec.SRConflict{}
			rr := []*spec.RRConflict{}
			{
				for _, c := range srConflicts[s.num] {
					conflict := &spec.SRConflict{
						Symbol:     c.sym.Num().Int(),
						State:      c.nextState.Int(),
						Production: c.prodNum.Int(),
						ResolvedBy: c.resolvedBy.Int(),
					}

					ty, adoptedState, adoptedProd := tab.getAction(s.num, c.sym.Num())
					switch ty {
					case ActionTypeShift:
						n := adoptedState.Int()
						conflict.AdoptedState = &n
					case ActionTypeReduce:
						n := adoptedProd.Int()
						conflict.AdoptedProduction = &n
					}

					sr = append(sr, conflict)
				}

				sort.Slice(sr, func(i, j int) bool {
					return sr[i].Symbol < sr[j].Symbol
				})

				for _, c := range rrConflicts[s.num] {
					rr = append(rr, &spec.RRConflict{
						Symbol:            c.sym.Num().Int(),
						State:             s.num.Int(),
						Production1:       c.prodNum1.Int(),
						Production2:       c.prodNum2.Int(),
						AdoptedProduction: c.adoptedProd.Int(),
						ResolvedBy:        c.resolvedBy.Int(),
					})
				}

				sort.Slice(rr, func(i, j int) bool {
					return rr[i].Symbol < rr[j].Symbol
				})
			}

			states[s.num.Int()] = &spec.State{
				Number:     s.num.Int(),
				Kernel:     kernel,
				Shift:      shift,
				Reduce:     reduce,
				GoTo:       goTo,
				SRConflict: sr,
				RRConflict: rr,
			}
		}
	}

	return &spec.Report{
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		States:       states,
	}, nil
}
