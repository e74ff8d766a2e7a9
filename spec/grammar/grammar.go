package grammar

// CompiledGrammar is the on-disk artifact of a grammar compilation. It is
// plain data; loading it back requires no recomputation.
type CompiledGrammar struct {
	Name      string         `json:"name"`
	Syntactic *SyntacticSpec `json:"syntactic"`
	Warnings  []*Warning     `json:"warnings"`
	Summary   *Summary       `json:"summary"`
}

// RowDisplacementTable is a two-dimensional table compressed by row
// displacement. Empty cells of overlapping rows share storage.
type RowDisplacementTable struct {
	OriginalRowCount int   `json:"original_row_count"`
	OriginalColCount int   `json:"original_col_count"`
	EmptyValue       int   `json:"empty_value"`
	Entries          []int `json:"entries"`
	Bounds           []int `json:"bounds"`
	RowDisplacement  []int `json:"row_displacement"`
}

// UniqueEntriesTable deduplicates identical rows before an optional row
// displacement pass over the surviving rows.
type UniqueEntriesTable struct {
	UniqueEntries             *RowDisplacementTable `json:"unique_entries,omitempty"`
	UncompressedUniqueEntries []int                 `json:"uncompressed_unique_entries,omitempty"`
	RowNums                   []int                 `json:"row_nums"`
	OriginalRowCount          int                   `json:"original_row_count"`
	OriginalColCount          int                   `json:"original_col_count"`
	EmptyValue                int                   `json:"empty_value"`
}

// SyntacticSpec holds the LALR(1) action and goto tables along with the
// symbol and production metadata a driver needs to run them.
//
// An action entry encodes a shift to state s as -s, a reduce by production p
// as p, and the error action as 0. The accept action is the reduce by
// StartProduction.
type SyntacticSpec struct {
	Action                  *UniqueEntriesTable `json:"action,omitempty"`
	UncompressedAction      []int               `json:"uncompressed_action,omitempty"`
	GoTo                    *UniqueEntriesTable `json:"goto,omitempty"`
	UncompressedGoTo        []int               `json:"uncompressed_goto,omitempty"`
	StateCount              int                 `json:"state_count"`
	InitialState            int                 `json:"initial_state"`
	StartProduction         int                 `json:"start_production"`
	LHSSymbols              []int               `json:"lhs_symbols"`
	AlternativeSymbolCounts []int               `json:"alternative_symbol_counts"`
	Terminals               []string            `json:"terminals"`
	TerminalCount           int                 `json:"terminal_count"`
	TerminalPatterns        []string            `json:"terminal_patterns"`
	NonTerminals            []string            `json:"non_terminals"`
	NonTerminalCount        int                 `json:"non_terminal_count"`
	EOFSymbol               int                 `json:"eof_symbol"`
}

type WarningType string

const (
	WarningTypeUselessTerminal    = WarningType("useless_terminal")
	WarningTypeUselessNonTerminal = WarningType("useless_nonterminal")
	WarningTypeUselessPrec        = WarningType("useless_prec")
	WarningTypeUselessRule        = WarningType("useless_rule")
	WarningTypeSRConflict         = WarningType("sr_conflict")
	WarningTypeRRConflict         = WarningType("rr_conflict")
)

// IsConflict reports whether the warning type records a resolved conflict
// rather than an unused symbol, rule, or precedence.
func (t WarningType) IsConflict() bool {
	return t == WarningTypeSRConflict || t == WarningTypeRRConflict
}

// Warning is the serialized form of a compilation diagnostic. The list is
// ordered and stable: recompiling an unchanged grammar reproduces it exactly.
type Warning struct {
	Type                WarningType `json:"type"`
	Symbol              string      `json:"symbol,omitempty"`
	State               int         `json:"state"`
	Production          int         `json:"production,omitempty"`
	DiscardedProduction int         `json:"discarded_production,omitempty"`
	ShiftState          int         `json:"shift_state,omitempty"`
	AdoptedShift        bool        `json:"adopted_shift,omitempty"`
	ResolvedBy          int         `json:"resolved_by,omitempty"`
}

type Summary struct {
	StateCount      int `json:"state_count"`
	SRConflicts     int `json:"sr_conflicts"`
	RRConflicts     int `json:"rr_conflicts"`
	WarningCount    int `json:"warning_count"`
	TerminalCount   int `json:"terminal_count"`
	ProductionCount int `json:"production_count"`
}
