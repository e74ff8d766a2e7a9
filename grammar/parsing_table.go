package grammar

import (
	"fmt"
	"sort"

	"github.com/kasumi721/larl/grammar/symbol"
)

type ActionType string

const (
	ActionTypeShift  = ActionType("shift")
	ActionTypeReduce = ActionType("reduce")
	ActionTypeAccept = ActionType("accept")
	ActionTypeError  = ActionType("error")
)

// actionEntry packs one action table cell into an int: a negative value is a
// shift to state -v, a positive value is a reduce by production v, and zero
// is the error entry. The accept action is the reduce by the augmented start
// production and is unpacked by the table, not stored specially.
type actionEntry int

const actionEntryEmpty = actionEntry(0)

func newShiftActionEntry(state stateNum) actionEntry {
	return actionEntry(state * -1)
}

func newReduceActionEntry(prod productionNum) actionEntry {
	return actionEntry(prod)
}

func (e actionEntry) isEmpty() bool {
	return e == actionEntryEmpty
}

func (e actionEntry) describe() (ActionType, stateNum, productionNum) {
	if e == actionEntryEmpty {
		return ActionTypeError, stateNumInitial, productionNumNil
	}
	if e < 0 {
		return ActionTypeShift, stateNum(e * -1), productionNumNil
	}
	return ActionTypeReduce, stateNumInitial, productionNum(e)
}

type GoToType string

const (
	GoToTypeRegistered = GoToType("registered")
	GoToTypeError      = GoToType("error")
)

type goToEntry uint

const goToEntryEmpty = goToEntry(0)

func newGoToEntry(state stateNum) goToEntry {
	return goToEntry(state)
}

func (e goToEntry) describe() (GoToType, stateNum) {
	if e == goToEntryEmpty {
		return GoToTypeError, stateNumInitial
	}
	return GoToTypeRegistered, stateNum(e)
}

type shiftReduceConflict struct {
	state        stateNum
	sym          symbol.Symbol
	nextState    stateNum
	prodNum      productionNum
	resolvedBy   ConflictResolution
	adoptedShift bool
}

type reduceReduceConflict struct {
	state       stateNum
	sym         symbol.Symbol
	prodNum1    productionNum
	prodNum2    productionNum
	adoptedProd productionNum
	resolvedBy  ConflictResolution
}

// ParsingTable is the immutable action/goto table of a compiled grammar.
type ParsingTable struct {
	actionTable      []actionEntry
	goToTable        []goToEntry
	stateCount       int
	terminalCount    int
	nonTerminalCount int
	startProduction  productionNum

	InitialState stateNum
}

func (t *ParsingTable) getAction(state stateNum, sym symbol.SymbolNum) (ActionType, stateNum, productionNum) {
	pos := state.Int()*t.terminalCount + sym.Int()
	ty, next, prod := t.actionTable[pos].describe()
	if ty == ActionTypeReduce && prod == t.startProduction {
		return ActionTypeAccept, stateNumInitial, prod
	}
	return ty, next, prod
}

func (t *ParsingTable) getGoTo(state stateNum, sym symbol.SymbolNum) (GoToType, stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Int()
	return t.goToTable[pos].describe()
}

func (t *ParsingTable) readAction(row int, col int) actionEntry {
	return t.actionTable[row*t.terminalCount+col]
}

func (t *ParsingTable) writeAction(row int, col int, act actionEntry) {
	t.actionTable[row*t.terminalCount+col] = act
}

func (t *ParsingTable) writeGoTo(state stateNum, sym symbol.Symbol, nextState stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Num().Int()
	t.goToTable[pos] = newGoToEntry(nextState)
}

type lrTableBuilder struct {
	automaton    *lr0Automaton
	prods        *productionSet
	termCount    int
	nonTermCount int
	symTab       *symbol.SymbolTableReader
	precAndAssoc *precAndAssoc

	srConflicts []*shiftReduceConflict
	rrConflicts []*reduceReduceConflict
}

func (b *lrTableBuilder) build() (*ParsingTable, error) {
	initialState, ok := b.automaton.states[b.automaton.initialState]
	if !ok {
		return nil, fmt.Errorf("initial state not found: %v", b.automaton.initialState)
	}
	ptab := &ParsingTable{
		actionTable:      make([]actionEntry, len(b.automaton.states)*b.termCount),
		goToTable:        make([]goToEntry, len(b.automaton.states)*b.nonTermCount),
		stateCount:       len(b.automaton.states),
		terminalCount:    b.termCount,
		nonTerminalCount: b.nonTermCount,
		startProduction:  productionNumStart,
		InitialState:     initialState.num,
	}

	// The table content does not depend on fill order, but the recorded
	// conflicts do. Walking states, transitions, and look-aheads in a fixed
	// order keeps the warning list identical across runs.
	states := make([]*lrState, 0, len(b.automaton.states))
	for _, state := range b.automaton.states {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].num < states[j].num
	})

	for _, state := range states {
		nextSyms := make([]symbol.Symbol, 0, len(state.next))
		for sym := range state.next {
			nextSyms = append(nextSyms, sym)
		}
		sort.Slice(nextSyms, func(i, j int) bool {
			return nextSyms[i] < nextSyms[j]
		})
		for _, sym := range nextSyms {
			nextState := b.automaton.states[state.next[sym]]
			if sym.IsTerminal() {
				b.writeShiftAction(ptab, state.num, sym, nextState.num)
			} else {
				ptab.writeGoTo(state.num, sym, nextState.num)
			}
		}

		reducibleProds := make([]*production, 0, len(state.reducible))
		for prodID := range state.reducible {
			reducibleProd, ok := b.prods.findByID(prodID)
			if !ok {
				return nil, fmt.Errorf("reducible production not found: %v", prodID)
			}
			reducibleProds = append(reducibleProds, reducibleProd)
		}
		sort.Slice(reducibleProds, func(i, j int) bool {
			return reducibleProds[i].num < reducibleProds[j].num
		})
		for _, reducibleProd := range reducibleProds {
			var reducibleItem *lrItem
			for _, item := range state.items {
				if item.prod == reducibleProd.id {
					reducibleItem = item
					break
				}
			}
			if reducibleItem == nil {
				for _, item := range state.emptyProdItems {
					if item.prod == reducibleProd.id {
						reducibleItem = item
						break
					}
				}
				if reducibleItem == nil {
					return nil, fmt.Errorf("reducible item not found; state: %v, production: %v", state.num, reducibleProd.num)
				}
			}

			lookAhead := make([]symbol.Symbol, 0, len(reducibleItem.lookAhead.symbols))
			for a := range reducibleItem.lookAhead.symbols {
				lookAhead = append(lookAhead, a)
			}
			sort.Slice(lookAhead, func(i, j int) bool {
				return lookAhead[i] < lookAhead[j]
			})
			for _, a := range lookAhead {
				b.writeReduceAction(ptab, state.num, a, reducibleProd.num)
			}
		}
	}

	tracer().Debugf("parsing table: %d states, %d s/r conflicts, %d r/r conflicts",
		ptab.stateCount, len(b.srConflicts), len(b.rrConflicts))

	return ptab, nil
}

// writeShiftAction writes a shift action. When the cell already holds a
// reduce action, the shift/reduce conflict is resolved via precedence and
// associativity; without usable precedence the shift wins, matching the
// yacc-family convention.
func (b *lrTableBuilder) writeShiftAction(tab *ParsingTable, state stateNum, sym symbol.Symbol, nextState stateNum) {
	act := tab.readAction(state.Int(), sym.Num().Int())
	if !act.isEmpty() {
		ty, _, prod := act.describe()
		if ty == ActionTypeReduce {
			adopted, method := b.resolveSRConflict(sym.Num(), prod)
			b.srConflicts = append(b.srConflicts, &shiftReduceConflict{
				state:        state,
				sym:          sym,
				nextState:    nextState,
				prodNum:      prod,
				resolvedBy:   method,
				adoptedShift: adopted == ActionTypeShift,
			})
			if adopted == ActionTypeShift {
				tab.writeAction(state.Int(), sym.Num().Int(), newShiftActionEntry(nextState))
			}
			return
		}
	}
	tab.writeAction(state.Int(), sym.Num().Int(), newShiftActionEntry(nextState))
}

// writeReduceAction writes a reduce action. A competing shift resolves like
// writeShiftAction; a competing reduce always resolves to the
// earliest-declared production and records the conflict.
func (b *lrTableBuilder) writeReduceAction(tab *ParsingTable, state stateNum, sym symbol.Symbol, prod productionNum) {
	act := tab.readAction(state.Int(), sym.Num().Int())
	if act.isEmpty() {
		tab.writeAction(state.Int(), sym.Num().Int(), newReduceActionEntry(prod))
		return
	}

	ty, next, existingProd := act.describe()
	switch ty {
	case ActionTypeReduce:
		if existingProd == prod {
			return
		}

		adopted := existingProd
		if prod < existingProd {
			adopted = prod
		}
		b.rrConflicts = append(b.rrConflicts, &reduceReduceConflict{
			state:       state,
			sym:         sym,
			prodNum1:    existingProd,
			prodNum2:    prod,
			adoptedProd: adopted,
			resolvedBy:  ResolvedByProdOrder,
		})
		tab.writeAction(state.Int(), sym.Num().Int(), newReduceActionEntry(adopted))
	case ActionTypeShift:
		adopted, method := b.resolveSRConflict(sym.Num(), prod)
		b.srConflicts = append(b.srConflicts, &shiftReduceConflict{
			state:        state,
			sym:          sym,
			nextState:    next,
			prodNum:      prod,
			resolvedBy:   method,
			adoptedShift: adopted == ActionTypeShift,
		})
		if adopted == ActionTypeReduce {
			tab.writeAction(state.Int(), sym.Num().Int(), newReduceActionEntry(prod))
		}
	}
}

// resolveSRConflict decides a shift/reduce conflict between shifting sym and
// reducing by prod. Precedence levels rise with declaration order; the higher
// level wins. Equal levels fall back to the production's associativity:
// left reduces, right shifts, and none is unresolved and shifts.
func (b *lrTableBuilder) resolveSRConflict(sym symbol.SymbolNum, prod productionNum) (ActionType, ConflictResolution) {
	symPrec := b.precAndAssoc.terminalPrecedence(sym)
	prodPrec := b.precAndAssoc.productionPrecedence(prod)
	if symPrec == precNil || prodPrec == precNil {
		return ActionTypeShift, ResolvedByShift
	}
	if symPrec > prodPrec {
		return ActionTypeShift, ResolvedByPrec
	}
	if symPrec < prodPrec {
		return ActionTypeReduce, ResolvedByPrec
	}
	switch b.precAndAssoc.productionAssociativity(prod) {
	case assocTypeLeft:
		return ActionTypeReduce, ResolvedByAssoc
	case assocTypeRight:
		return ActionTypeShift, ResolvedByAssoc
	default:
		return ActionTypeShift, ResolvedByShift
	}
}

// conflictWarnings converts the recorded conflicts into warnings, resolving
// symbol names through the symbol table.
func (b *lrTableBuilder) conflictWarnings() ([]*Warning, error) {
	var warnings []*Warning
	for _, c := range b.srConflicts {
		text, ok := b.symTab.ToText(c.sym)
		if !ok {
			return nil, fmt.Errorf("symbol not found: %v", c.sym)
		}
		warnings = append(warnings, &Warning{
			Type:         WarningSRConflict,
			Symbol:       text,
			State:        c.state.Int(),
			Production:   c.prodNum.Int(),
			ShiftState:   c.nextState.Int(),
			AdoptedShift: c.adoptedShift,
			ResolvedBy:   c.resolvedBy,
		})
	}
	for _, c := range b.rrConflicts {
		text, ok := b.symTab.ToText(c.sym)
		if !ok {
			return nil, fmt.Errorf("symbol not found: %v", c.sym)
		}
		discarded := c.prodNum1
		if discarded == c.adoptedProd {
			discarded = c.prodNum2
		}
		warnings = append(warnings, &Warning{
			Type:                WarningRRConflict,
			Symbol:              text,
			State:               c.state.Int(),
			Production:          c.adoptedProd.Int(),
			DiscardedProduction: discarded.Int(),
			ResolvedBy:          c.resolvedBy,
		})
	}
	return warnings, nil
}
