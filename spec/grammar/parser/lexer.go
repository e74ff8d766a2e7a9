package parser

import (
	"fmt"
	"io"
	"strings"
	"sync"

	verr "github.com/kasumi721/larl/error"
	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

type tokenKind string

const (
	tokenKindID              = tokenKind("id")
	tokenKindPattern         = tokenKind("pattern")
	tokenKindString          = tokenKind("string")
	tokenKindColon           = tokenKind(":")
	tokenKindOr              = tokenKind("|")
	tokenKindSemicolon       = tokenKind(";")
	tokenKindLParen          = tokenKind("(")
	tokenKindRParen          = tokenKind(")")
	tokenKindDirectiveMarker = tokenKind("#")
	tokenKindEOF             = tokenKind("eof")
	tokenKindInvalid         = tokenKind("invalid")
)

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

// lexSpec describes the token language of grammar files. It is assembled in
// code and compiled once per process; the compiled DFA is shared by every
// lexer instance.
var (
	lexSpecOnce     sync.Once
	compiledLexSpec *mlspec.CompiledLexSpec
	lexSpecErr      error
)

func lexSpec() (*mlspec.CompiledLexSpec, error) {
	lexSpecOnce.Do(func() {
		s := &mlspec.LexSpec{
			Name: "larl",
			Entries: []*mlspec.LexEntry{
				{
					Kind:    mlspec.LexKindName("white_space"),
					Pattern: mlspec.LexPattern(`[\u{0009}\u{000A}\u{000D}\u{0020}]+`),
				},
				{
					Kind:    mlspec.LexKindName("line_comment"),
					Pattern: mlspec.LexPattern(`//[^\u{000A}]*`),
				},
				{
					Kind:    mlspec.LexKindName("identifier"),
					Pattern: mlspec.LexPattern(`[A-Za-z_][0-9A-Za-z_]*`),
				},
				{
					Kind:    mlspec.LexKindName("pattern"),
					Pattern: mlspec.LexPattern(`"(\\"|\\\\|[^"])*"`),
				},
				{
					Kind:    mlspec.LexKindName("string"),
					Pattern: mlspec.LexPattern(`'[^']*'`),
				},
				{
					Kind:    mlspec.LexKindName("colon"),
					Pattern: mlspec.LexPattern(`:`),
				},
				{
					Kind:    mlspec.LexKindName("or"),
					Pattern: mlspec.LexPattern(`\|`),
				},
				{
					Kind:    mlspec.LexKindName("semicolon"),
					Pattern: mlspec.LexPattern(`;`),
				},
				{
					Kind:    mlspec.LexKindName("l_paren"),
					Pattern: mlspec.LexPattern(`\(`),
				},
				{
					Kind:    mlspec.LexKindName("r_paren"),
					Pattern: mlspec.LexPattern(`\)`),
				},
				{
					Kind:    mlspec.LexKindName("directive_marker"),
					Pattern: mlspec.LexPattern(`#`),
				},
			},
		}
		clspec, err, cErrs := mlcompiler.Compile(s, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if err != nil {
			if len(cErrs) > 0 {
				lexSpecErr = fmt.Errorf("failed to compile the lexical specification: %v: %v", cErrs[0].Kind, cErrs[0].Cause)
				return
			}
			lexSpecErr = err
			return
		}
		compiledLexSpec = clspec
	})
	return compiledLexSpec, lexSpecErr
}

type lexer struct {
	clspec *mlspec.CompiledLexSpec
	d      *mldriver.Lexer
}

func newLexer(src io.Reader) (*lexer, error) {
	clspec, err := lexSpec()
	if err != nil {
		return nil, err
	}
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(clspec), src)
	if err != nil {
		return nil, err
	}
	return &lexer{
		clspec: clspec,
		d:      d,
	}, nil
}

func (l *lexer) next() (*token, error) {
	var tok *mldriver.Token
	for {
		var err error
		tok, err = l.d.Next()
		if err != nil {
			return nil, err
		}
		if tok.Invalid {
			return &token{
				kind: tokenKindInvalid,
				text: string(tok.Lexeme),
				pos:  newPosition(tok.Row+1, tok.Col+1),
			}, nil
		}
		if tok.EOF {
			return &token{
				kind: tokenKindEOF,
			}, nil
		}
		switch l.clspec.KindNames[tok.KindID].String() {
		case "white_space", "line_comment":
			continue
		}
		break
	}

	pos := newPosition(tok.Row+1, tok.Col+1)
	switch l.clspec.KindNames[tok.KindID].String() {
	case "identifier":
		return &token{
			kind: tokenKindID,
			text: string(tok.Lexeme),
			pos:  pos,
		}, nil
	case "pattern":
		text := string(tok.Lexeme)
		// Strip the delimiters and undo the escaping the delimiters require.
		// All other escape sequences stay verbatim; the pattern is an opaque
		// alias to this tool.
		pat := strings.ReplaceAll(text[1:len(text)-1], `\"`, `"`)
		pat = strings.ReplaceAll(pat, `\\`, `\`)
		if pat == "" {
			return nil, &verr.SpecError{
				Cause: synErrEmptyPattern,
				Row:   pos.Row,
				Col:   pos.Col,
			}
		}
		return &token{
			kind: tokenKindPattern,
			text: pat,
			pos:  pos,
		}, nil
	case "string":
		text := string(tok.Lexeme)
		str := text[1 : len(text)-1]
		if str == "" {
			return nil, &verr.SpecError{
				Cause: synErrEmptyString,
				Row:   pos.Row,
				Col:   pos.Col,
			}
		}
		return &token{
			kind: tokenKindString,
			text: str,
			pos:  pos,
		}, nil
	case "colon":
		return &token{kind: tokenKindColon, pos: pos}, nil
	case "or":
		return &token{kind: tokenKindOr, pos: pos}, nil
	case "semicolon":
		return &token{kind: tokenKindSemicolon, pos: pos}, nil
	case "l_paren":
		return &token{kind: tokenKindLParen, pos: pos}, nil
	case "r_paren":
		return &token{kind: tokenKindRParen, pos: pos}, nil
	case "directive_marker":
		return &token{kind: tokenKindDirectiveMarker, pos: pos}, nil
	}

	return nil, fmt.Errorf("unknown token kind: %v", l.clspec.KindNames[tok.KindID])
}
