package parser

import (
	"fmt"
	"io"

	verr "github.com/kasumi721/larl/error"
)

type RootNode struct {
	Directives  []*DirectiveNode
	Productions []*ProductionNode
}

// DirectiveNode is a `#name param...` clause. At the top level the known
// directives are `#name` and `#prec`; inside a `#prec` group they are
// `#left`, `#right`, and `#assign`; attached to an alternative only `#prec`
// is meaningful. Validation happens in the grammar builder, not here.
type DirectiveNode struct {
	Name       string
	Parameters []*ParameterNode
	Pos        Position
}

type ParameterNode struct {
	ID      string
	Pattern string
	String  string
	Group   []*DirectiveNode
	Pos     Position
}

type ProductionNode struct {
	LHS string
	RHS []*AlternativeNode
	Pos Position
}

type AlternativeNode struct {
	Elements   []*ElementNode
	Directives []*DirectiveNode
	Pos        Position
}

// ElementNode is one symbol reference on the right-hand side of an
// alternative: a symbol name, a pattern, or a string literal.
type ElementNode struct {
	ID      string
	Pattern string
	String  string
	Pos     Position
}

func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	return p.parse()
}

type parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		if err := recover(); err != nil {
			var ok bool
			retErr, ok = err.(error)
			if !ok {
				panic(err)
			}
		}
	}()
	return p.parseRoot(), nil
}

func (p *parser) parseRoot() *RootNode {
	root := &RootNode{}
	for {
		if p.consume(tokenKindDirectiveMarker) {
			dirPos := p.lastTok.pos
			root.Directives = append(root.Directives, p.parseDirective(dirPos))
			if !p.consume(tokenKindSemicolon) {
				raiseSyntaxError(p, synErrNoSemicolon)
			}
			continue
		}

		prod := p.parseProduction()
		if prod == nil {
			break
		}
		root.Productions = append(root.Productions, prod)
	}
	if len(root.Productions) == 0 {
		raiseSyntaxError(p, synErrNoProduction)
	}
	return root
}

func (p *parser) parseDirective(pos Position) *DirectiveNode {
	if !p.consume(tokenKindID) {
		raiseSyntaxError(p, synErrNoDirectiveName)
	}
	dir := &DirectiveNode{
		Name: p.lastTok.text,
		Pos:  pos,
	}

	for {
		param := p.parseParameter()
		if param == nil {
			break
		}
		dir.Parameters = append(dir.Parameters, param)
	}

	return dir
}

func (p *parser) parseParameter() *ParameterNode {
	switch {
	case p.consume(tokenKindID):
		return &ParameterNode{
			ID:  p.lastTok.text,
			Pos: p.lastTok.pos,
		}
	case p.consume(tokenKindPattern):
		return &ParameterNode{
			Pattern: p.lastTok.text,
			Pos:     p.lastTok.pos,
		}
	case p.consume(tokenKindString):
		return &ParameterNode{
			String: p.lastTok.text,
			Pos:    p.lastTok.pos,
		}
	case p.consume(tokenKindLParen):
		pos := p.lastTok.pos
		var group []*DirectiveNode
		for p.consume(tokenKindDirectiveMarker) {
			dirPos := p.lastTok.pos
			group = append(group, p.parseDirective(dirPos))
		}
		if !p.consume(tokenKindRParen) {
			raiseSyntaxError(p, synErrUnclosedGroup)
		}
		return &ParameterNode{
			Group: group,
			Pos:   pos,
		}
	}
	return nil
}

func (p *parser) parseProduction() *ProductionNode {
	if p.consume(tokenKindEOF) {
		return nil
	}
	if !p.consume(tokenKindID) {
		raiseSyntaxError(p, synErrNoProductionName)
	}
	lhs := p.lastTok.text
	lhsPos := p.lastTok.pos
	if !p.consume(tokenKindColon) {
		raiseSyntaxError(p, synErrNoColon)
	}
	alt := p.parseAlternative()
	rhs := []*AlternativeNode{alt}
	for p.consume(tokenKindOr) {
		rhs = append(rhs, p.parseAlternative())
	}
	if !p.consume(tokenKindSemicolon) {
		raiseSyntaxError(p, synErrNoSemicolon)
	}
	return &ProductionNode{
		LHS: lhs,
		RHS: rhs,
		Pos: lhsPos,
	}
}

func (p *parser) parseAlternative() *AlternativeNode {
	alt := &AlternativeNode{
		Elements: []*ElementNode{},
	}
	first := true
	for {
		elem := p.parseElement()
		if elem == nil {
			break
		}
		if first {
			alt.Pos = elem.Pos
			first = false
		}
		alt.Elements = append(alt.Elements, elem)
	}
	for p.consume(tokenKindDirectiveMarker) {
		dirPos := p.lastTok.pos
		alt.Directives = append(alt.Directives, p.parseDirective(dirPos))
	}
	return alt
}

func (p *parser) parseElement() *ElementNode {
	switch {
	case p.consume(tokenKindID):
		return &ElementNode{
			ID:  p.lastTok.text,
			Pos: p.lastTok.pos,
		}
	case p.consume(tokenKindPattern):
		return &ElementNode{
			Pattern: p.lastTok.text,
			Pos:     p.lastTok.pos,
		}
	case p.consume(tokenKindString):
		return &ElementNode{
			String: p.lastTok.text,
			Pos:    p.lastTok.pos,
		}
	}
	return nil
}

func (p *parser) consume(expected tokenKind) bool {
	var tok *token
	if p.peekedTok != nil {
		tok = p.peekedTok
		p.peekedTok = nil
	} else {
		var err error
		tok, err = p.lex.next()
		if err != nil {
			panic(err)
		}
	}
	p.lastTok = tok
	if tok.kind == tokenKindInvalid {
		raiseSyntaxError(p, synErrInvalidToken)
	}
	if tok.kind == expected {
		return true
	}
	p.peekedTok = tok
	p.lastTok = nil

	return false
}

func raiseSyntaxError(p *parser, synErr *SyntaxError) {
	specErr := &verr.SpecError{
		Cause: synErr,
	}
	if p.lastTok != nil {
		specErr.Row = p.lastTok.pos.Row
		specErr.Col = p.lastTok.pos.Col
		if p.lastTok.kind == tokenKindInvalid {
			specErr.Detail = fmt.Sprintf("%q", p.lastTok.text)
		}
	}
	panic(specErr)
}
