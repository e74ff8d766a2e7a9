package grammar

import (
	"fmt"

	"github.com/kasumi721/larl/grammar/symbol"
)

type stateAndLRItem struct {
	kernelID kernelID
	itemID   lrItemID
}

type propagation struct {
	src  *stateAndLRItem
	dest []*stateAndLRItem
}

type lalr1Automaton struct {
	*lr0Automaton
}

// genLALR1Automaton annotates the kernel items of an LR(0) automaton with
// LALR(1) look-ahead sets. Look-ahead has two sources: symbols generated
// spontaneously from FIRST of the suffix behind the dot, and symbols
// propagated from predecessor items when that suffix is nullable. The
// propagation edges are collected first, then walked to a fixed point.
//
// Because states merged by LR(0) core share one look-ahead set per item, the
// result can contain reduce/reduce conflicts a canonical LR(1) automaton
// would not have. That is inherent to LALR, not a defect.
func genLALR1Automaton(lr0 *lr0Automaton, prods *productionSet, first *firstSet) (*lalr1Automaton, error) {
	// Seed the initial item [S' →・S] with the EOF look-ahead.
	iniState := lr0.states[lr0.initialState]
	iniState.items[0].lookAhead.symbols = map[symbol.Symbol]struct{}{
		symbol.SymbolEOF: {},
	}

	var props []*propagation
	for _, state := range lr0.states {
		for _, kItem := range state.items {
			items, err := genLALR1Closure(kItem, prods, first)
			if err != nil {
				return nil, err
			}

			kItem.lookAhead.propagation = true

			var propDests []*stateAndLRItem
			for _, item := range items {
				if item.reducible {
					p, ok := prods.findByID(item.prod)
					if !ok {
						return nil, fmt.Errorf("production not found: %v", item.prod)
					}

					if p.isEmpty() {
						reducibleItem := state.findEmptyProdItem(item.id)
						if reducibleItem == nil {
							return nil, fmt.Errorf("reducible item not found: %v", item.id)
						}
						reducibleItem.mergeLookAhead(item.lookAhead.symbols)

						propDests = append(propDests, &stateAndLRItem{
							kernelID: state.id,
							itemID:   item.id,
						})
					}
					continue
				}

				nextKID, ok := state.next[item.dottedSymbol]
				if !ok {
					return nil, fmt.Errorf("transition not found: state: %v, symbol: %v", state.num, item.dottedSymbol)
				}
				var nextItemID lrItemID
				{
					p, ok := prods.findByID(item.prod)
					if !ok {
						return nil, fmt.Errorf("production not found: %v", item.prod)
					}
					it, err := newLR0Item(p, item.dot+1)
					if err != nil {
						return nil, fmt.Errorf("failed to generate an item ID: %w", err)
					}
					nextItemID = it.id
				}

				if item.lookAhead.propagation {
					propDests = append(propDests, &stateAndLRItem{
						kernelID: nextKID,
						itemID:   nextItemID,
					})
				} else {
					nextState := lr0.states[nextKID]
					nextItem := nextState.findKernelItem(nextItemID)
					if nextItem == nil {
						return nil, fmt.Errorf("item not found: %v", nextItemID)
					}
					nextItem.mergeLookAhead(item.lookAhead.symbols)
				}
			}
			if len(propDests) == 0 {
				continue
			}

			props = append(props, &propagation{
				src: &stateAndLRItem{
					kernelID: state.id,
					itemID:   kItem.id,
				},
				dest: propDests,
			})
		}
	}

	err := propagateLookAhead(lr0, props)
	if err != nil {
		return nil, fmt.Errorf("failed to propagate look-ahead symbols: %w", err)
	}

	return &lalr1Automaton{
		lr0Automaton: lr0,
	}, nil
}

func (s *lrState) findKernelItem(id lrItemID) *lrItem {
	for _, item := range s.items {
		if item.id == id {
			return item
		}
	}
	return nil
}

func (s *lrState) findEmptyProdItem(id lrItemID) *lrItem {
	for _, item := range s.emptyProdItems {
		if item.id == id {
			return item
		}
	}
	return nil
}

func (item *lrItem) mergeLookAhead(symbols map[symbol.Symbol]struct{}) bool {
	changed := false
	for a := range symbols {
		if _, ok := item.lookAhead.symbols[a]; ok {
			continue
		}
		if item.lookAhead.symbols == nil {
			item.lookAhead.symbols = map[symbol.Symbol]struct{}{}
		}
		item.lookAhead.symbols[a] = struct{}{}
		changed = true
	}
	return changed
}

// genLALR1Closure closes a single kernel item while distinguishing
// spontaneously generated look-ahead symbols from the propagation marker.
// Items created under a nullable suffix get the propagation flag: whatever
// the source item's look-ahead turns out to be flows into them.
func genLALR1Closure(srcItem *lrItem, prods *productionSet, first *firstSet) ([]*lrItem, error) {
	items := []*lrItem{srcItem}
	knownItems := map[lrItemID]map[symbol.Symbol]struct{}{}
	knownItemsProp := map[lrItemID]struct{}{}
	uncheckedItems := []*lrItem{srcItem}
	for len(uncheckedItems) > 0 {
		nextUncheckedItems := []*lrItem{}
		for _, item := range uncheckedItems {
			if !item.dottedSymbol.IsNonTerminal() {
				continue
			}

			p, ok := prods.findByID(item.prod)
			if !ok {
				return nil, fmt.Errorf("production not found: %v", item.prod)
			}

			fst, err := first.find(p, item.dot+1)
			if err != nil {
				return nil, err
			}

			var spontaneous []symbol.Symbol
			for s := range fst.symbols {
				spontaneous = append(spontaneous, s)
			}
			if fst.empty {
				for a := range item.lookAhead.symbols {
					spontaneous = append(spontaneous, a)
				}
			}

			ps, _ := prods.findByLHS(item.dottedSymbol)
			for _, prod := range ps {
				for _, a := range spontaneous {
					newItem, err := newLR0Item(prod, 0)
					if err != nil {
						return nil, err
					}
					if las, exist := knownItems[newItem.id]; exist {
						if _, exist := las[a]; exist {
							continue
						}
					}

					newItem.lookAhead.symbols = map[symbol.Symbol]struct{}{
						a: {},
					}

					items = append(items, newItem)
					if knownItems[newItem.id] == nil {
						knownItems[newItem.id] = map[symbol.Symbol]struct{}{}
					}
					knownItems[newItem.id][a] = struct{}{}
					nextUncheckedItems = append(nextUncheckedItems, newItem)
				}

				if fst.empty {
					newItem, err := newLR0Item(prod, 0)
					if err != nil {
						return nil, err
					}
					if _, exist := knownItemsProp[newItem.id]; exist {
						continue
					}

					newItem.lookAhead.propagation = true

					items = append(items, newItem)
					knownItemsProp[newItem.id] = struct{}{}
					nextUncheckedItems = append(nextUncheckedItems, newItem)
				}
			}
		}
		uncheckedItems = nextUncheckedItems
	}

	return items, nil
}

// propagateLookAhead walks the propagation edges until no look-ahead set
// changes. The sets are subsets of the finite terminal alphabet and only
// grow, so the loop terminates.
func propagateLookAhead(lr0 *lr0Automaton, props []*propagation) error {
	passes := 0
	for {
		passes++
		changed := false
		for _, prop := range props {
			srcState, ok := lr0.states[prop.src.kernelID]
			if !ok {
				return fmt.Errorf("source state not found: %v", prop.src.kernelID)
			}
			srcItem := srcState.findKernelItem(prop.src.itemID)
			if srcItem == nil {
				return fmt.Errorf("source item not found: %v", prop.src.itemID)
			}

			for _, dest := range prop.dest {
				destState, ok := lr0.states[dest.kernelID]
				if !ok {
					return fmt.Errorf("destination state not found: %v", dest.kernelID)
				}
				destItem := destState.findKernelItem(dest.itemID)
				if destItem == nil {
					destItem = destState.findEmptyProdItem(dest.itemID)
					if destItem == nil {
						return fmt.Errorf("destination item not found: %v", dest.itemID)
					}
				}

				if destItem.mergeLookAhead(srcItem.lookAhead.symbols) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	tracer().Debugf("look-ahead propagation converged after %d passes", passes)

	return nil
}
