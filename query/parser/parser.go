// Package parser compiles the path/query surface syntax (C7) into
// query/ast trees, reusing the matcher lexer for tokenizing and the
// matcher parser for embedded subfield-matcher filters.
package parser

import (
	"fmt"
	"strings"

	qast "github.com/dnb-pica/picabatch/query/ast"

	mast "github.com/dnb-pica/picabatch/matcher/ast"
	"github.com/dnb-pica/picabatch/matcher/lexer"
	"github.com/dnb-pica/picabatch/matcher/parser"
	"github.com/dnb-pica/picabatch/matcher/token"
	"github.com/dnb-pica/picabatch/pattern"
)

// Options controls parse-time behavior passed through to the embedded
// subfield-matcher filter grammar.
type Options struct {
	CaseIgnore bool
}

// ParseQuery compiles src as a comma-separated list of fragments.
func ParseQuery(src string, opts Options) (*qast.Query, error) {
	lex := lexer.New(src)
	var fragments []qast.Fragment
	for {
		lex.SkipSpace()
		start := lex.Pos()
		f, err := parseFragment(lex, opts)
		if err != nil {
			return nil, err
		}
		setRaw(f, strings.TrimSpace(src[start:lex.Pos()]))
		fragments = append(fragments, f)
		if _, ok := tryConsume(lex, token.COMMA); !ok {
			break
		}
	}
	if tok := lex.NextToken(); tok.Type != token.EOF {
		return nil, fmt.Errorf("query: unexpected trailing input %q at line %d, col %d", tok.Literal, tok.Line, tok.Column)
	}
	return &qast.Query{Fragments: fragments, Raw: src}, nil
}

func setRaw(f qast.Fragment, raw string) {
	switch n := f.(type) {
	case *qast.PathFragment:
		n.Raw = raw
	case *qast.LiteralFragment:
		n.Raw = raw
	case *qast.FormatFragment:
		n.Raw = raw
	}
}

func tryConsume(lex *lexer.Lexer, types ...token.Type) (token.Token, bool) {
	mark := lex.Mark()
	tok := lex.NextToken()
	for _, tt := range types {
		if tok.Type == tt {
			return tok, true
		}
	}
	lex.Reset(mark)
	return token.Token{}, false
}

func expect(lex *lexer.Lexer, tt token.Type) (token.Token, error) {
	tok := lex.NextToken()
	if tok.Type != tt {
		return token.Token{}, fmt.Errorf("query: expected %s, got %s %q at line %d, col %d", tt, tok.Type, tok.Literal, tok.Line, tok.Column)
	}
	return tok, nil
}

func parseFragment(lex *lexer.Lexer, opts Options) (qast.Fragment, error) {
	lex.SkipSpace()
	switch lex.Peek() {
	case '\'', '"':
		tok := lex.NextToken()
		if tok.Type != token.STRING {
			return nil, fmt.Errorf("query: invalid string literal at line %d, col %d", tok.Line, tok.Column)
		}
		return &qast.LiteralFragment{Value: tok.Literal}, nil
	case 0:
		return nil, fmt.Errorf("query: unexpected end of input, expected a path or literal fragment")
	}
	return parsePathOrFormat(lex, opts)
}

func parsePathOrFormat(lex *lexer.Lexer, opts Options) (qast.Fragment, error) {
	raw, err := lex.ScanTagToken()
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	tag, err := pattern.CompileTag(raw)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	occRaw := lex.ScanOccurrenceToken()
	occ, err := pattern.CompileOccurrence(occRaw)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	if _, ok := tryConsume(lex, token.DOT); ok {
		codes, err := parseCodeSet(lex)
		if err != nil {
			return nil, err
		}
		return &qast.PathFragment{Tag: tag, Occ: occ, CodeSets: []mast.CodeSet{codes}}, nil
	}

	if _, err := expect(lex, token.LBRACE); err != nil {
		return nil, err
	}

	mark := lex.Mark()
	if tok, ok := tryConsume(lex, token.IDENT); ok && tok.Literal == "tpl" {
		tpl, err := expect(lex, token.STRING)
		if err != nil {
			return nil, err
		}
		if _, err := expect(lex, token.RBRACE); err != nil {
			return nil, err
		}
		return &qast.FormatFragment{Tag: tag, Occ: occ, Template: tpl.Literal}, nil
	}
	lex.Reset(mark)

	codeSets, err := parseCodeList(lex)
	if err != nil {
		return nil, err
	}
	var filter mast.SubfieldMatcher
	if _, ok := tryConsume(lex, token.PIPE); ok {
		src := scanFilterSource(lex)
		filter, err = parser.ParseSubfieldMatcher(src, parser.Options{CaseIgnore: opts.CaseIgnore})
		if err != nil {
			return nil, fmt.Errorf("query: invalid path filter %q: %w", src, err)
		}
	}
	if _, err := expect(lex, token.RBRACE); err != nil {
		return nil, err
	}
	return &qast.PathFragment{Tag: tag, Occ: occ, CodeSets: codeSets, Filter: filter}, nil
}

// parseCodeList parses a CODELIST: a comma-separated list of code-sets,
// optionally wrapped in parens for symmetry with the simple-form dot
// syntax (§4.7).
func parseCodeList(lex *lexer.Lexer) ([]mast.CodeSet, error) {
	wrapped := false
	if _, ok := tryConsume(lex, token.LPAREN); ok {
		wrapped = true
	}
	var sets []mast.CodeSet
	for {
		cs, err := parseCodeSet(lex)
		if err != nil {
			return nil, err
		}
		sets = append(sets, cs)
		if _, ok := tryConsume(lex, token.COMMA); ok {
			continue
		}
		break
	}
	if wrapped {
		if _, err := expect(lex, token.RPAREN); err != nil {
			return nil, err
		}
	}
	return sets, nil
}

// parseCodeSet parses a single CODESET: "*", a bracketed list/range, or a
// single literal code, with an optional leading "$" (the compat alias
// recorded in DESIGN.md) silently accepted and discarded.
func parseCodeSet(lex *lexer.Lexer) (mast.CodeSet, error) {
	lex.SkipSpace()
	if lex.Peek() == '$' {
		lex.Advance()
	}
	if _, ok := tryConsume(lex, token.ASTERISK); ok {
		return mast.NewCodeSetAll(), nil
	}
	if _, ok := tryConsume(lex, token.LBRACKET); ok {
		var body strings.Builder
		for lex.Peek() != ']' && lex.Peek() != 0 {
			body.WriteRune(lex.Peek())
			lex.Advance()
		}
		if lex.Peek() != ']' {
			return mast.CodeSet{}, fmt.Errorf("query: unterminated '[' in codeset")
		}
		lex.Advance()
		return mast.NewCodeSetBracket(body.String())
	}
	tok := lex.NextToken()
	if (tok.Type == token.IDENT || tok.Type == token.INT) && len(tok.Literal) == 1 {
		return mast.NewCodeSetLiteral(tok.Literal[0]), nil
	}
	return mast.CodeSet{}, fmt.Errorf("query: expected codeset, got %s %q at line %d, col %d", tok.Type, tok.Literal, tok.Line, tok.Column)
}

// scanFilterSource collects raw source text up to (but not including) the
// first top-level unquoted '}', for handing to the subfield-matcher
// parser. The subfield grammar never itself uses '}', so no nesting
// tracking beyond quote-awareness is needed.
func scanFilterSource(lex *lexer.Lexer) string {
	var out strings.Builder
	for {
		ch := lex.Peek()
		if ch == 0 || ch == '}' {
			break
		}
		if ch == '\'' || ch == '"' {
			quote := ch
			out.WriteRune(ch)
			lex.Advance()
			for {
				ch = lex.Peek()
				if ch == 0 {
					break
				}
				if ch == '\\' {
					out.WriteRune(ch)
					lex.Advance()
					out.WriteRune(lex.Peek())
					lex.Advance()
					continue
				}
				out.WriteRune(ch)
				lex.Advance()
				if ch == quote {
					break
				}
			}
			continue
		}
		out.WriteRune(ch)
		lex.Advance()
	}
	return out.String()
}
