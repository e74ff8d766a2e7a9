package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	verr "github.com/kasumi721/larl/error"
)

func TestParse(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		ast     *RootNode
	}{
		{
			caption: "a grammar with directives, alternatives, and terminal declarations",
			src: `
#name test;

#prec (
    #left add sub
);

expr
    : expr add expr #prec add
    | id
    |
    ;
add: '+';
sub: "-";
`,
			ast: &RootNode{
				Directives: []*DirectiveNode{
					{
						Name: "name",
						Parameters: []*ParameterNode{
							{ID: "test"},
						},
					},
					{
						Name: "prec",
						Parameters: []*ParameterNode{
							{
								Group: []*DirectiveNode{
									{
										Name: "left",
										Parameters: []*ParameterNode{
											{ID: "add"},
											{ID: "sub"},
										},
									},
								},
							},
						},
					},
				},
				Productions: []*ProductionNode{
					{
						LHS: "expr",
						RHS: []*AlternativeNode{
							{
								Elements: []*ElementNode{
									{ID: "expr"},
									{ID: "add"},
									{ID: "expr"},
								},
								Directives: []*DirectiveNode{
									{
										Name: "prec",
										Parameters: []*ParameterNode{
											{ID: "add"},
										},
									},
								},
							},
							{
								Elements: []*ElementNode{
									{ID: "id"},
								},
							},
							{
								Elements: []*ElementNode{},
							},
						},
					},
					{
						LHS: "add",
						RHS: []*AlternativeNode{
							{
								Elements: []*ElementNode{
									{String: "+"},
								},
							},
						},
					},
					{
						LHS: "sub",
						RHS: []*AlternativeNode{
							{
								Elements: []*ElementNode{
									{Pattern: "-"},
								},
							},
						},
					},
				},
			},
		},
		{
			caption: "patterns and strings can appear inline on a right-hand side",
			src:     `s: "foo" 'bar' baz;`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					{
						LHS: "s",
						RHS: []*AlternativeNode{
							{
								Elements: []*ElementNode{
									{Pattern: "foo"},
									{String: "bar"},
									{ID: "baz"},
								},
							},
						},
					},
				},
			},
		},
		{
			caption: "a pattern keeps its escape sequences except the delimiter escapes",
			src:     `s: "\"\\[a-z]+";`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					{
						LHS: "s",
						RHS: []*AlternativeNode{
							{
								Elements: []*ElementNode{
									{Pattern: `"\[a-z]+`},
								},
							},
						},
					},
				},
			},
		},
		{
			caption: "comments and whitespace are not significant",
			src: `
// a leading comment
s // a comment after a name
    : foo // a comment after an element
    ;
`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					{
						LHS: "s",
						RHS: []*AlternativeNode{
							{
								Elements: []*ElementNode{
									{ID: "foo"},
								},
							},
						},
					},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			ast, err := Parse(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}

			opts := []cmp.Option{
				cmpopts.IgnoreFields(DirectiveNode{}, "Pos"),
				cmpopts.IgnoreFields(ParameterNode{}, "Pos"),
				cmpopts.IgnoreFields(ProductionNode{}, "Pos"),
				cmpopts.IgnoreFields(AlternativeNode{}, "Pos"),
				cmpopts.IgnoreFields(ElementNode{}, "Pos"),
				cmpopts.EquateEmpty(),
			}
			if diff := cmp.Diff(tt.ast, ast, opts...); diff != "" {
				t.Errorf("unexpected AST:\n%v", diff)
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		synErr  *SyntaxError
	}{
		{
			caption: "a grammar must have at least one production",
			src:     ``,
			synErr:  synErrNoProduction,
		},
		{
			caption: "a production needs a name",
			src:     `: a;`,
			synErr:  synErrNoProductionName,
		},
		{
			caption: "a production needs a colon",
			src:     `s a;`,
			synErr:  synErrNoColon,
		},
		{
			caption: "a production needs a terminating semicolon",
			src:     `s: a`,
			synErr:  synErrNoSemicolon,
		},
		{
			caption: "a directive needs a name",
			src:     `#;`,
			synErr:  synErrNoDirectiveName,
		},
		{
			caption: "a directive group must be closed",
			src: `
#prec (
    #left a
;
s: a;
`,
			synErr: synErrUnclosedGroup,
		},
		{
			caption: "an invalid token is rejected",
			src:     `s: @;`,
			synErr:  synErrInvalidToken,
		},
		{
			caption: "a pattern must not be empty",
			src:     `s: "";`,
			synErr:  synErrEmptyPattern,
		},
		{
			caption: "a string must not be empty",
			src:     `s: '';`,
			synErr:  synErrEmptyString,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
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
