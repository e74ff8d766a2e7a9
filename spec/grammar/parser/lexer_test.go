package parser

import (
	"strings"
	"testing"

	verr "github.com/kasumi721/larl/error"
)

func TestLexer(t *testing.T) {
	src := `
// a comment spans to the end of the line
name_2 "pa\"t\\tern" 'str'
: | ; ( ) #
`

	expected := []*token{
		{kind: tokenKindID, text: "name_2", pos: newPosition(3, 1)},
		{kind: tokenKindPattern, text: `pa"t\tern`, pos: newPosition(3, 8)},
		{kind: tokenKindString, text: "str", pos: newPosition(3, 22)},
		{kind: tokenKindColon, pos: newPosition(4, 1)},
		{kind: tokenKindOr, pos: newPosition(4, 3)},
		{kind: tokenKindSemicolon, pos: newPosition(4, 5)},
		{kind: tokenKindLParen, pos: newPosition(4, 7)},
		{kind: tokenKindRParen, pos: newPosition(4, 9)},
		{kind: tokenKindDirectiveMarker, pos: newPosition(4, 11)},
		{kind: tokenKindEOF},
	}

	lex, err := newLexer(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range expected {
		tok, err := lex.next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.kind != want.kind {
			t.Fatalf("token kind is mismatched; token: #%v, want: %v, got: %v", i, want.kind, tok.kind)
		}
		if tok.text != want.text {
			t.Fatalf("token text is mismatched; token: #%v, want: %v, got: %v", i, want.text, tok.text)
		}
		if want.kind != tokenKindEOF && tok.pos != want.pos {
			t.Fatalf("token position is mismatched; token: #%v, want: %v, got: %v", i, want.pos, tok.pos)
		}
	}
}

func TestLexerInvalidToken(t *testing.T) {
	lex, err := newLexer(strings.NewReader(`@`))
	if err != nil {
		t.Fatal(err)
	}
	tok, err := lex.next()
	if err != nil {
		t.Fatal(err)
	}
	if tok.kind != tokenKindInvalid {
		t.Fatalf("token kind is mismatched; want: %v, got: %v", tokenKindInvalid, tok.kind)
	}
	if tok.text != "@" {
		t.Fatalf("token text is mismatched; want: %v, got: %v", "@", tok.text)
	}
}

func TestLexerEmptyLiterals(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		synErr  *SyntaxError
	}{
		{
			caption: "an empty pattern",
			src:     `""`,
			synErr:  synErrEmptyPattern,
		},
		{
			caption: "an empty string",
			src:     `''`,
			synErr:  synErrEmptyString,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			lex, err := newLexer(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			_, err = lex.next()
			if err == nil {
				t.Fatal("an error must occur")
			}
			specErr, ok := err.(*verr.SpecError)
			if !ok {
				t.Fatalf("unexpected error type: %T: %v", err, err)
			}
			if specErr.Cause != tt.synErr {
				t.Errorf("cause is mismatched; want: %v, got: %v", tt.synErr, specErr.Cause)
			}
		})
	}
}
