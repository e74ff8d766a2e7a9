package grammar

import (
	"fmt"

	verr "github.com/kasumi721/larl/error"
	"github.com/kasumi721/larl/grammar/symbol"
	"github.com/kasumi721/larl/spec/grammar/parser"
)

type assocType int

const (
	assocTypeNil assocType = iota
	assocTypeLeft
	assocTypeRight
)

const (
	precNil = 0
	precMin = 1
)

// precAndAssoc maps terminals and productions to their precedence levels and
// associativities. Levels rise with declaration order, so a later `#left` or
// `#right` group binds tighter than an earlier one.
type precAndAssoc struct {
	termPrec  map[symbol.SymbolNum]int
	termAssoc map[symbol.SymbolNum]assocType

	prodPrec  map[productionNum]int
	prodAssoc map[productionNum]assocType

	// prodPrecSrcTerm records which terminal's declaration a production's
	// precedence came from, either the rightmost terminal of its RHS or the
	// argument of a `#prec` directive. Conflict resolution consulting the
	// production's precedence counts as a use of that terminal's declaration.
	prodPrecSrcTerm map[productionNum]symbol.SymbolNum
}

func (pa *precAndAssoc) terminalPrecedence(sym symbol.SymbolNum) int {
	prec, ok := pa.termPrec[sym]
	if !ok {
		return precNil
	}
	return prec
}

func (pa *precAndAssoc) terminalAssociativity(sym symbol.SymbolNum) assocType {
	assoc, ok := pa.termAssoc[sym]
	if !ok {
		return assocTypeNil
	}
	return assoc
}

func (pa *precAndAssoc) productionPrecedence(prod productionNum) int {
	prec, ok := pa.prodPrec[prod]
	if !ok {
		return precNil
	}
	return prec
}

func (pa *precAndAssoc) productionAssociativity(prod productionNum) assocType {
	assoc, ok := pa.prodAssoc[prod]
	if !ok {
		return assocTypeNil
	}
	return assoc
}

func (pa *precAndAssoc) productionPrecedenceSource(prod productionNum) (symbol.SymbolNum, bool) {
	term, ok := pa.prodPrecSrcTerm[prod]
	return term, ok
}

// Grammar is the symbolic model a parsing table is generated from.
type Grammar struct {
	name                 string
	productionSet        *productionSet
	augmentedStartSymbol symbol.Symbol
	symbolTable          *symbol.SymbolTableReader
	precAndAssoc         *precAndAssoc

	// termPatterns holds the pattern or literal text a declared or anonymous
	// terminal stands for. The table generator never consults it; it exists
	// for the compiled artifact and reports.
	termPatterns map[symbol.SymbolNum]string

	// anonTerms marks terminals that appeared only inline as a pattern or
	// string, without a declaration.
	anonTerms map[symbol.SymbolNum]struct{}
}

func (g *Grammar) Name() string {
	return g.name
}

type GrammarBuilder struct {
	AST *parser.RootNode

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build() (*Grammar, error) {
	name := b.genName()

	termDecls, synProds := b.partitionProductions()
	if len(synProds) == 0 {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrNoProduction,
		})
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	symTab := symbol.NewSymbolTable()
	w := symTab.Writer()
	r := symTab.Reader()

	startText := synProds[0].LHS + "'"
	startSym, err := w.RegisterStartSymbol(startText)
	if err != nil {
		return nil, err
	}
	for _, prod := range synProds {
		_, err := w.RegisterNonTerminalSymbol(prod.LHS)
		if err != nil {
			return nil, err
		}
	}
	termPatterns := map[symbol.SymbolNum]string{}
	for _, decl := range termDecls {
		if sym, declared := r.ToSymbol(decl.LHS); declared && sym.IsNonTerminal() {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateName,
				Detail: decl.LHS,
				Row:    decl.Pos.Row,
				Col:    decl.Pos.Col,
			})
			continue
		}
		sym, err := w.RegisterTerminalSymbol(decl.LHS)
		if err != nil {
			return nil, err
		}
		elem := decl.RHS[0].Elements[0]
		if elem.Pattern != "" {
			termPatterns[sym.Num()] = elem.Pattern
		} else {
			termPatterns[sym.Num()] = elem.String
		}
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	anonTerms := map[symbol.SymbolNum]struct{}{}
	prods, prodAndAlts, err := b.genProductions(w, r, startSym, synProds, termPatterns, anonTerms)
	if err != nil {
		return nil, err
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	pa := b.genPrecAndAssoc(r, prodAndAlts)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	return &Grammar{
		name:                 name,
		productionSet:        prods,
		augmentedStartSymbol: startSym,
		symbolTable:          r,
		precAndAssoc:         pa,
		termPatterns:         termPatterns,
		anonTerms:            anonTerms,
	}, nil
}

// genName extracts the grammar name from the top-level `#name` directive and
// rejects unknown top-level directives.
func (b *GrammarBuilder) genName() string {
	var name string
	for _, dir := range b.AST.Directives {
		switch dir.Name {
		case "name":
			if len(dir.Parameters) != 1 || dir.Parameters[0].ID == "" {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDirInvalidParam,
					Detail: "'name' takes just one ID parameter",
					Row:    dir.Pos.Row,
					Col:    dir.Pos.Col,
				})
				continue
			}
			name = dir.Parameters[0].ID
		case "prec":
			// Handled by genPrecAndAssoc after the terminals are known.
		default:
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDirInvalidName,
				Detail: dir.Name,
				Row:    dir.Pos.Row,
				Col:    dir.Pos.Col,
			})
		}
	}
	if name == "" {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrNoGrammarName,
		})
	}
	return name
}

// partitionProductions splits the declarations into terminal declarations and
// syntactic productions. A terminal declaration has a single alternative whose
// body is exactly one pattern or string. A name declared both ways is an
// error.
func (b *GrammarBuilder) partitionProductions() ([]*parser.ProductionNode, []*parser.ProductionNode) {
	var termDecls []*parser.ProductionNode
	var synProds []*parser.ProductionNode
	declaredTerms := map[string]struct{}{}
	declaredNonTerms := map[string]struct{}{}
	for _, prod := range b.AST.Productions {
		if isTerminalDeclaration(prod) {
			if _, declared := declaredTerms[prod.LHS]; declared {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDuplicateName,
					Detail: prod.LHS,
					Row:    prod.Pos.Row,
					Col:    prod.Pos.Col,
				})
				continue
			}
			declaredTerms[prod.LHS] = struct{}{}
			termDecls = append(termDecls, prod)
		} else {
			if isMalformedTerminalDeclaration(prod) {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrInvalidTermDecl,
					Detail: prod.LHS,
					Row:    prod.Pos.Row,
					Col:    prod.Pos.Col,
				})
				continue
			}
			declaredNonTerms[prod.LHS] = struct{}{}
			synProds = append(synProds, prod)
		}
	}
	for _, decl := range termDecls {
		if _, declared := declaredNonTerms[decl.LHS]; declared {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateName,
				Detail: decl.LHS,
				Row:    decl.Pos.Row,
				Col:    decl.Pos.Col,
			})
		}
	}
	return termDecls, synProds
}

func isTerminalDeclaration(prod *parser.ProductionNode) bool {
	if len(prod.RHS) != 1 {
		return false
	}
	alt := prod.RHS[0]
	if len(alt.Directives) > 0 || len(alt.Elements) != 1 {
		return false
	}
	elem := alt.Elements[0]
	return elem.Pattern != "" || elem.String != ""
}

// isMalformedTerminalDeclaration reports whether every alternative consists
// solely of patterns or strings without satisfying the terminal declaration
// shape. Such a production is an attempted terminal declaration, not a
// syntactic rule over anonymous terminals.
func isMalformedTerminalDeclaration(prod *parser.ProductionNode) bool {
	for _, alt := range prod.RHS {
		if len(alt.Elements) == 0 {
			return false
		}
		for _, elem := range alt.Elements {
			if elem.ID != "" {
				return false
			}
		}
	}
	return true
}

type productionAndAlt struct {
	prod *production
	alt  *parser.AlternativeNode
}

// genProductions builds the production set, starting with the augmented start
// production. Anonymous terminals written inline as patterns or strings are
// registered under their own text.
func (b *GrammarBuilder) genProductions(w *symbol.SymbolTableWriter, r *symbol.SymbolTableReader, startSym symbol.Symbol, synProds []*parser.ProductionNode, termPatterns map[symbol.SymbolNum]string, anonTerms map[symbol.SymbolNum]struct{}) (*productionSet, []*productionAndAlt, error) {
	prods := newProductionSet()

	firstSym, ok := r.ToSymbol(synProds[0].LHS)
	if !ok {
		return nil, nil, fmt.Errorf("start production LHS not registered: %v", synProds[0].LHS)
	}
	startProd, err := newProduction(startSym, []symbol.Symbol{firstSym})
	if err != nil {
		return nil, nil, err
	}
	prods.append(startProd)

	var prodAndAlts []*productionAndAlt
	for _, synProd := range synProds {
		lhsSym, ok := r.ToSymbol(synProd.LHS)
		if !ok {
			return nil, nil, fmt.Errorf("production LHS not registered: %v", synProd.LHS)
		}
		for _, alt := range synProd.RHS {
			rhs := make([]symbol.Symbol, 0, len(alt.Elements))
			for _, elem := range alt.Elements {
				var sym symbol.Symbol
				switch {
				case elem.ID != "":
					var ok bool
					sym, ok = r.ToSymbol(elem.ID)
					if !ok {
						b.errs = append(b.errs, &verr.SpecError{
							Cause:  semErrUndefinedSym,
							Detail: elem.ID,
							Row:    elem.Pos.Row,
							Col:    elem.Pos.Col,
						})
						continue
					}
				default:
					text := elem.Pattern
					if text == "" {
						text = elem.String
					}
					if existing, registered := r.ToSymbol(text); registered && existing.IsNonTerminal() {
						b.errs = append(b.errs, &verr.SpecError{
							Cause:  semErrDuplicateName,
							Detail: text,
							Row:    elem.Pos.Row,
							Col:    elem.Pos.Col,
						})
						continue
					}
					var err error
					sym, err = w.RegisterTerminalSymbol(text)
					if err != nil {
						return nil, nil, err
					}
					if _, known := termPatterns[sym.Num()]; !known {
						termPatterns[sym.Num()] = text
						anonTerms[sym.Num()] = struct{}{}
					}
				}
				rhs = append(rhs, sym)
			}

			prod, err := newProduction(lhsSym, rhs)
			if err != nil {
				return nil, nil, err
			}
			prods.append(prod)
			prodAndAlts = append(prodAndAlts, &productionAndAlt{
				prod: prod,
				alt:  alt,
			})
		}
	}

	return prods, prodAndAlts, nil
}

// genPrecAndAssoc assigns precedence levels and associativities. Terminal
// declarations come from the top-level `#prec` groups; each production then
// inherits from the rightmost terminal of its RHS unless an alternative-level
// `#prec` directive overrides the source terminal.
func (b *GrammarBuilder) genPrecAndAssoc(r *symbol.SymbolTableReader, prodAndAlts []*productionAndAlt) *precAndAssoc {
	termPrec := map[symbol.SymbolNum]int{}
	termAssoc := map[symbol.SymbolNum]assocType{}

	precN := precMin
	for _, dir := range b.AST.Directives {
		if dir.Name != "prec" {
			continue
		}
		if len(dir.Parameters) != 1 || dir.Parameters[0].Group == nil {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDirInvalidParam,
				Detail: "'prec' takes just one directive group parameter",
				Row:    dir.Pos.Row,
				Col:    dir.Pos.Col,
			})
			continue
		}
		for _, group := range dir.Parameters[0].Group {
			var assoc assocType
			switch group.Name {
			case "left":
				assoc = assocTypeLeft
			case "right":
				assoc = assocTypeRight
			case "assign":
				assoc = assocTypeNil
			default:
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDirInvalidName,
					Detail: group.Name,
					Row:    group.Pos.Row,
					Col:    group.Pos.Col,
				})
				continue
			}
			if len(group.Parameters) == 0 {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDirInvalidParam,
					Detail: fmt.Sprintf("'%v' needs at least one terminal symbol", group.Name),
					Row:    group.Pos.Row,
					Col:    group.Pos.Col,
				})
				continue
			}
			for _, param := range group.Parameters {
				text := param.ID
				if text == "" {
					text = param.Pattern
				}
				if text == "" {
					text = param.String
				}
				sym, ok := r.ToSymbol(text)
				if !ok || !sym.IsTerminal() {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrDirInvalidParam,
						Detail: fmt.Sprintf("'%v' is not a terminal symbol", text),
						Row:    param.Pos.Row,
						Col:    param.Pos.Col,
					})
					continue
				}
				if _, assigned := termPrec[sym.Num()]; assigned {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrDuplicateAssoc,
						Detail: text,
						Row:    param.Pos.Row,
						Col:    param.Pos.Col,
					})
					continue
				}
				termPrec[sym.Num()] = precN
				termAssoc[sym.Num()] = assoc
			}
			precN++
		}
	}

	prodPrec := map[productionNum]int{}
	prodAssoc := map[productionNum]assocType{}
	prodPrecSrcTerm := map[productionNum]symbol.SymbolNum{}
	for _, pa := range prodAndAlts {
		srcTerm := symbol.SymbolNil
		for _, dir := range pa.alt.Directives {
			if dir.Name != "prec" {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrInvalidProdDir,
					Detail: dir.Name,
					Row:    dir.Pos.Row,
					Col:    dir.Pos.Col,
				})
				continue
			}
			if len(dir.Parameters) != 1 || dir.Parameters[0].ID == "" {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDirInvalidParam,
					Detail: "'prec' takes just one terminal symbol",
					Row:    dir.Pos.Row,
					Col:    dir.Pos.Col,
				})
				continue
			}
			sym, ok := r.ToSymbol(dir.Parameters[0].ID)
			if !ok || !sym.IsTerminal() {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDirInvalidParam,
					Detail: fmt.Sprintf("'%v' is not a terminal symbol", dir.Parameters[0].ID),
					Row:    dir.Parameters[0].Pos.Row,
					Col:    dir.Parameters[0].Pos.Col,
				})
				continue
			}
			srcTerm = sym
		}
		if srcTerm.IsNil() {
			for _, sym := range pa.prod.rhs {
				if sym.IsTerminal() {
					srcTerm = sym
				}
			}
		}
		if srcTerm.IsNil() {
			continue
		}
		if prec, declared := termPrec[srcTerm.Num()]; declared {
			prodPrec[pa.prod.num] = prec
			prodAssoc[pa.prod.num] = termAssoc[srcTerm.Num()]
			prodPrecSrcTerm[pa.prod.num] = srcTerm.Num()
		}
	}

	return &precAndAssoc{
		termPrec:        termPrec,
		termAssoc:       termAssoc,
		prodPrec:        prodPrec,
		prodAssoc:       prodAssoc,
		prodPrecSrcTerm: prodPrecSrcTerm,
	}
}
