package grammar

import (
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/kasumi721/larl/grammar/symbol"
)

// usageAnalyzer derives the useless_* warnings from the final parsing table.
// Reachability alone is not enough: a rule can be reachable in the grammar yet
// lose every conflict, leaving it without a single reduce cell. The analysis
// therefore runs after conflict resolution, over the table the parser would
// actually execute.
type usageAnalyzer struct {
	gram        *Grammar
	ptab        *ParsingTable
	srConflicts []*shiftReduceConflict
}

func (a *usageAnalyzer) analyze() ([]*Warning, error) {
	symTab := a.gram.symbolTable

	// Every terminal and rule starts out unused; the table sweep removes the
	// ones the parser would actually exercise. The treesets iterate in symbol
	// and rule number order, so the warnings come out in declaration order.
	unusedTerms := treeset.NewWithIntComparator()
	termSyms := map[int]symbol.Symbol{}
	for _, sym := range symTab.TerminalSymbols() {
		if sym.IsEOF() {
			continue
		}
		termSyms[sym.Num().Int()] = sym
		unusedTerms.Add(sym.Num().Int())
	}
	unusedProds := treeset.NewWithIntComparator()
	for num := productionNumMin; num.Int() <= a.gram.productionSet.count(); num++ {
		unusedProds.Add(num.Int())
	}

	for state := 0; state < a.ptab.stateCount; state++ {
		for term := 0; term < a.ptab.terminalCount; term++ {
			ty, _, prod := a.ptab.readAction(state, term).describe()
			switch ty {
			case ActionTypeShift:
				unusedTerms.Remove(term)
			case ActionTypeReduce:
				unusedProds.Remove(prod.Int())
			}
		}
	}

	var warnings []*Warning

	for _, v := range unusedTerms.Values() {
		sym := termSyms[v.(int)]
		text, ok := symTab.ToText(sym)
		if !ok {
			return nil, fmt.Errorf("symbol not found: %v", sym)
		}
		warnings = append(warnings, &Warning{
			Type:   WarningUselessTerminal,
			Symbol: text,
			State:  -1,
		})
	}

	reachable := a.reachableNonTerminals()
	for _, sym := range symTab.NonTerminalSymbols() {
		if sym.IsStart() {
			continue
		}
		if _, ok := reachable[sym]; ok {
			continue
		}
		text, ok := symTab.ToText(sym)
		if !ok {
			return nil, fmt.Errorf("symbol not found: %v", sym)
		}
		warnings = append(warnings, &Warning{
			Type:   WarningUselessNonTerminal,
			Symbol: text,
			State:  -1,
		})
	}

	precWarnings, err := a.uselessPrecedences()
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, precWarnings...)

	for _, v := range unusedProds.Values() {
		num := v.(int)
		prod, ok := a.gram.productionSet.findByNum(productionNum(num))
		if !ok {
			continue
		}
		text, ok := symTab.ToText(prod.lhs)
		if !ok {
			return nil, fmt.Errorf("symbol not found: %v", prod.lhs)
		}
		warnings = append(warnings, &Warning{
			Type:       WarningUselessRule,
			Symbol:     text,
			State:      -1,
			Production: num,
		})
	}

	return warnings, nil
}

// reachableNonTerminals walks the production graph from the augmented start
// symbol.
func (a *usageAnalyzer) reachableNonTerminals() map[symbol.Symbol]struct{} {
	reachable := map[symbol.Symbol]struct{}{}
	queue := []symbol.Symbol{a.gram.augmentedStartSymbol}
	reachable[a.gram.augmentedStartSymbol] = struct{}{}
	for len(queue) > 0 {
		sym := queue[0]
		queue = queue[1:]
		prods, ok := a.gram.productionSet.findByLHS(sym)
		if !ok {
			continue
		}
		for _, prod := range prods {
			for _, rhsSym := range prod.rhs {
				if !rhsSym.IsNonTerminal() {
					continue
				}
				if _, seen := reachable[rhsSym]; seen {
					continue
				}
				reachable[rhsSym] = struct{}{}
				queue = append(queue, rhsSym)
			}
		}
	}
	return reachable
}

// uselessPrecedences reports terminals whose precedence declaration never
// took part in deciding a conflict. A declaration counts as used only when
// both sides of a shift/reduce conflict carried a precedence, because only
// then is the comparison actually made.
func (a *usageAnalyzer) uselessPrecedences() ([]*Warning, error) {
	pa := a.gram.precAndAssoc
	used := map[symbol.SymbolNum]struct{}{}
	for _, c := range a.srConflicts {
		symPrec := pa.terminalPrecedence(c.sym.Num())
		prodPrec := pa.productionPrecedence(c.prodNum)
		if symPrec == precNil || prodPrec == precNil {
			continue
		}
		used[c.sym.Num()] = struct{}{}
		if srcTerm, ok := pa.productionPrecedenceSource(c.prodNum); ok {
			used[srcTerm] = struct{}{}
		}
	}

	var warnings []*Warning
	symTab := a.gram.symbolTable
	for _, sym := range symTab.TerminalSymbols() {
		if _, declared := pa.termPrec[sym.Num()]; !declared {
			continue
		}
		if _, ok := used[sym.Num()]; ok {
			continue
		}
		text, ok := symTab.ToText(sym)
		if !ok {
			return nil, fmt.Errorf("symbol not found: %v", sym)
		}
		warnings = append(warnings, &Warning{
			Type:   WarningUselessPrec,
			Symbol: text,
			State:  -1,
		})
	}
	return warnings, nil
}
