package grammar

import (
	"sort"

	spec "github.com/kasumi721/larl/spec/grammar"
)

const (
	WarningUselessTerminal    = spec.WarningTypeUselessTerminal
	WarningUselessNonTerminal = spec.WarningTypeUselessNonTerminal
	WarningUselessPrec        = spec.WarningTypeUselessPrec
	WarningUselessRule        = spec.WarningTypeUselessRule
	WarningSRConflict         = spec.WarningTypeSRConflict
	WarningRRConflict         = spec.WarningTypeRRConflict
)

// warningTypeOrder defines the type precedence used when sorting the warning
// list of a compiled grammar.
var warningTypeOrder = map[spec.WarningType]int{
	WarningUselessTerminal:    0,
	WarningUselessNonTerminal: 1,
	WarningUselessPrec:        2,
	WarningUselessRule:        3,
	WarningSRConflict:         4,
	WarningRRConflict:         5,
}

type ConflictResolution int

const (
	// ResolvedByPrec means one side had strictly higher precedence.
	ResolvedByPrec ConflictResolution = iota + 1

	// ResolvedByAssoc means both sides had equal precedence and the
	// associativity decided.
	ResolvedByAssoc

	// ResolvedByShift means the conflict had no usable precedence information
	// and fell back to the conventional shift.
	ResolvedByShift

	// ResolvedByProdOrder means a reduce/reduce conflict fell back to the
	// earliest-declared production.
	ResolvedByProdOrder
)

func (r ConflictResolution) Int() int {
	return int(r)
}

func (r ConflictResolution) String() string {
	switch r {
	case ResolvedByPrec:
		return "precedence"
	case ResolvedByAssoc:
		return "associativity"
	case ResolvedByShift:
		return "shift preference"
	case ResolvedByProdOrder:
		return "production order"
	}
	return "unknown"
}

// Warning is one diagnostic record of a compiled grammar. Conflicts are
// always recorded even when resolved; the discarded alternative stays
// available for reporting. A Warning carries identities, not message text;
// rendering belongs to the caller.
type Warning struct {
	Type spec.WarningType `json:"type"`

	// Symbol is the name of the terminal or non-terminal the warning
	// concerns: the useless symbol, the terminal with a useless precedence
	// declaration, or the look-ahead terminal of a conflict.
	Symbol string `json:"symbol,omitempty"`

	// State is the state number a conflict occurred in. -1 for warnings that
	// are not tied to a state.
	State int `json:"state"`

	// Production is the production number of a useless rule, or the
	// production competing in a conflict (the adopted one for rr_conflict).
	Production int `json:"production,omitempty"`

	// DiscardedProduction is the losing production of a reduce/reduce
	// conflict.
	DiscardedProduction int `json:"discarded_production,omitempty"`

	// ShiftState is the shift target competing in a shift/reduce conflict.
	ShiftState int `json:"shift_state,omitempty"`

	// AdoptedShift reports whether a shift/reduce conflict kept the shift.
	AdoptedShift bool `json:"adopted_shift,omitempty"`

	// ResolvedBy records how a conflict was decided.
	ResolvedBy ConflictResolution `json:"resolved_by,omitempty"`

	// seq is the discovery order within a type, fixed when the warning is
	// recorded.
	seq int
}

// sortWarnings orders warnings by type precedence first, then by first
// occurrence. The order is part of the determinism guarantee: recompiling an
// unchanged grammar yields an identical warning list.
func sortWarnings(warnings []*Warning) {
	for i, w := range warnings {
		w.seq = i
	}
	sort.SliceStable(warnings, func(i, j int) bool {
		oi := warningTypeOrder[warnings[i].Type]
		oj := warningTypeOrder[warnings[j].Type]
		if oi != oj {
			return oi < oj
		}
		return warnings[i].seq < warnings[j].seq
	})
}
