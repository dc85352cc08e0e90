// Package parser compiles the subfield, field, and record matcher source
// syntax (C4-C6) into matcher/ast trees. All three grammars share the
// same boolean-composite shape and precedence (!  binds tighter than &&,
// then ^/XOR, then ||, all left-associative), differing only in their
// leaf forms.
//
// The lexer mixes conventional token scanning with raw, context-sensitive
// scanning for the tag/occurrence micro-syntax. Every speculative token
// fetch below (tryConsume) is paired with a lexer Mark/Reset so a
// mismatched guess never leaves the cursor disturbed.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dnb-pica/picabatch/matcher/ast"
	"github.com/dnb-pica/picabatch/matcher/lexer"
	"github.com/dnb-pica/picabatch/matcher/token"
	"github.com/dnb-pica/picabatch/pattern"
)

// DefaultMaxDepth is the minimum group-nesting depth the grammar
// guarantees (§4.4): exceeding it is a parse error.
const DefaultMaxDepth = 32

// Options controls parse-time behavior shared by the three grammars.
type Options struct {
	CaseIgnore bool
	MaxDepth   int // 0 means DefaultMaxDepth
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// ParseSubfieldMatcher compiles the C4 subfield-matcher grammar.
func ParseSubfieldMatcher(src string, opts Options) (ast.SubfieldMatcher, error) {
	p := &subfieldParser{lex: lexer.New(src), caseIgnore: opts.CaseIgnore, maxDepth: opts.maxDepth()}
	m, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.lex.NextToken(); tok.Type != token.EOF {
		return nil, fmt.Errorf("parser: unexpected trailing input %q at line %d, col %d", tok.Literal, tok.Line, tok.Column)
	}
	return m, nil
}

// ParseFieldMatcher compiles the C5 field-matcher grammar.
func ParseFieldMatcher(src string, opts Options) (ast.FieldMatcher, error) {
	p := &fieldParser{lex: lexer.New(src), caseIgnore: opts.CaseIgnore, maxDepth: opts.maxDepth()}
	m, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.lex.NextToken(); tok.Type != token.EOF {
		return nil, fmt.Errorf("parser: unexpected trailing input %q at line %d, col %d", tok.Literal, tok.Line, tok.Column)
	}
	return m, nil
}

// ParseRecordMatcher compiles the top-level C6 record-matcher grammar,
// which shares its shape with the C5 field matcher (§4.6) and produces
// the same tree; the evaluator applies it to the record's full field
// list, so a cardinality atom counts across the whole record.
func ParseRecordMatcher(src string, opts Options) (ast.FieldMatcher, error) {
	return ParseFieldMatcher(src, opts)
}

// --- shared lexer helpers ---

// tryConsume speculatively fetches the next token and keeps it if its type
// is among types; otherwise it rewinds the lexer and reports no match.
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
		return token.Token{}, fmt.Errorf("parser: expected %s, got %s %q at line %d, col %d", tt, tok.Type, tok.Literal, tok.Line, tok.Column)
	}
	return tok, nil
}

func expectString(lex *lexer.Lexer) (string, error) {
	tok := lex.NextToken()
	if tok.Type == token.ILLEGAL {
		return "", fmt.Errorf("parser: %s at line %d, col %d", tok.Literal, tok.Line, tok.Column)
	}
	if tok.Type != token.STRING {
		return "", fmt.Errorf("parser: expected string literal, got %s %q at line %d, col %d", tok.Type, tok.Literal, tok.Line, tok.Column)
	}
	return tok.Literal, nil
}

func expectInt(lex *lexer.Lexer) (int, error) {
	tok := lex.NextToken()
	if tok.Type != token.INT {
		return 0, fmt.Errorf("parser: expected integer, got %s %q at line %d, col %d", tok.Type, tok.Literal, tok.Line, tok.Column)
	}
	n, err := strconv.Atoi(tok.Literal)
	if err != nil {
		return 0, fmt.Errorf("parser: invalid integer %q: %w", tok.Literal, err)
	}
	return n, nil
}

func parseCmpOp(lex *lexer.Lexer) (ast.CmpOp, error) {
	if _, ok := tryConsume(lex, token.EQ); ok {
		return ast.CmpEq, nil
	}
	if _, ok := tryConsume(lex, token.NEQ); ok {
		return ast.CmpNeq, nil
	}
	if _, ok := tryConsume(lex, token.GTE); ok {
		return ast.CmpGte, nil
	}
	if _, ok := tryConsume(lex, token.GT); ok {
		return ast.CmpGt, nil
	}
	if _, ok := tryConsume(lex, token.LTE); ok {
		return ast.CmpLte, nil
	}
	if _, ok := tryConsume(lex, token.LT); ok {
		return ast.CmpLt, nil
	}
	tok := lex.NextToken()
	return 0, fmt.Errorf("parser: expected comparison operator, got %s %q at line %d, col %d", tok.Type, tok.Literal, tok.Line, tok.Column)
}

// parseCodeSet parses a CODESET: "*", a bracketed list/range, or a single
// literal code, with an optional leading "$" (the compat alias recorded
// in DESIGN.md) silently accepted and discarded.
func parseCodeSet(lex *lexer.Lexer) (ast.CodeSet, error) {
	lex.SkipSpace()
	if lex.Peek() == '$' {
		lex.Advance()
	}
	if _, ok := tryConsume(lex, token.ASTERISK); ok {
		return ast.NewCodeSetAll(), nil
	}
	if _, ok := tryConsume(lex, token.LBRACKET); ok {
		var body strings.Builder
		for lex.Peek() != ']' && lex.Peek() != 0 {
			body.WriteRune(lex.Peek())
			lex.Advance()
		}
		if lex.Peek() != ']' {
			return ast.CodeSet{}, fmt.Errorf("parser: unterminated '[' in codeset")
		}
		lex.Advance()
		return ast.NewCodeSetBracket(body.String())
	}
	tok := lex.NextToken()
	if (tok.Type == token.IDENT || tok.Type == token.INT) && len(tok.Literal) == 1 {
		return ast.NewCodeSetLiteral(tok.Literal[0]), nil
	}
	return ast.CodeSet{}, fmt.Errorf("parser: expected codeset, got %s %q at line %d, col %d", tok.Type, tok.Literal, tok.Line, tok.Column)
}

// parseSingleCode parses the single-byte code used by a subfield
// cardinality atom ("# code OP INT"): exactly one alphanumeric, no
// wildcard or bracket form, with the same optional leading "$" as
// parseCodeSet.
func parseSingleCode(lex *lexer.Lexer) (byte, error) {
	lex.SkipSpace()
	if lex.Peek() == '$' {
		lex.Advance()
	}
	tok := lex.NextToken()
	if (tok.Type == token.IDENT || tok.Type == token.INT) && len(tok.Literal) == 1 {
		return tok.Literal[0], nil
	}
	return 0, fmt.Errorf("parser: expected a single code, got %s %q at line %d, col %d", tok.Type, tok.Literal, tok.Line, tok.Column)
}

func parseQuantifier(lex *lexer.Lexer) ast.Quantifier {
	if _, ok := tryConsume(lex, token.ALL); ok {
		return ast.All
	}
	tryConsume(lex, token.ANY) // consume an explicit ANY too; default is ANY regardless
	return ast.Any
}

// --- C4: subfield matcher ---

type subfieldParser struct {
	lex        *lexer.Lexer
	caseIgnore bool
	depth      int
	maxDepth   int
}

func (p *subfieldParser) parseOr() (ast.SubfieldMatcher, error) {
	left, err := p.parseXor()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := tryConsume(p.lex, token.OR); !ok {
			return left, nil
		}
		right, err := p.parseXor()
		if err != nil {
			return nil, err
		}
		left = &ast.SubfieldBinary{Op: ast.Or, Left: left, Right: right}
	}
}

func (p *subfieldParser) parseXor() (ast.SubfieldMatcher, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := tryConsume(p.lex, token.XOR); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.SubfieldBinary{Op: ast.Xor, Left: left, Right: right}
	}
}

func (p *subfieldParser) parseAnd() (ast.SubfieldMatcher, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := tryConsume(p.lex, token.AND); !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.SubfieldBinary{Op: ast.And, Left: left, Right: right}
	}
}

func (p *subfieldParser) parseUnary() (ast.SubfieldMatcher, error) {
	if _, ok := tryConsume(p.lex, token.NOT); ok {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.SubfieldNot{Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *subfieldParser) parsePrimary() (ast.SubfieldMatcher, error) {
	if _, ok := tryConsume(p.lex, token.LPAREN); ok {
		p.depth++
		if p.depth > p.maxDepth {
			return nil, fmt.Errorf("parser: group nesting exceeds limit of %d", p.maxDepth)
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := expect(p.lex, token.RPAREN); err != nil {
			return nil, err
		}
		p.depth--
		return inner, nil
	}
	if _, ok := tryConsume(p.lex, token.HASH); ok {
		code, err := parseSingleCode(p.lex)
		if err != nil {
			return nil, err
		}
		op, err := parseCmpOp(p.lex)
		if err != nil {
			return nil, err
		}
		n, err := expectInt(p.lex)
		if err != nil {
			return nil, err
		}
		return &ast.SubfieldCardinality{Code: code, Op: op, Value: n}, nil
	}
	quant := parseQuantifier(p.lex)
	codes, err := parseCodeSet(p.lex)
	if err != nil {
		return nil, err
	}
	return p.parseSuffix(quant, codes)
}

func (p *subfieldParser) parseSuffix(quant ast.Quantifier, codes ast.CodeSet) (ast.SubfieldMatcher, error) {
	if _, ok := tryConsume(p.lex, token.QMARK); ok {
		return &ast.SubfieldExists{Codes: codes}, nil
	}
	if _, ok := tryConsume(p.lex, token.RE_EQ); ok {
		return p.parseRegex(quant, codes, false)
	}
	if _, ok := tryConsume(p.lex, token.RE_NEQ); ok {
		return p.parseRegex(quant, codes, true)
	}
	if _, ok := tryConsume(p.lex, token.IN); ok {
		return p.parseIn(quant, codes, false)
	}
	if tok, ok := tryConsume(p.lex, token.IDENT); ok {
		if tok.Literal != "not" {
			return nil, fmt.Errorf("parser: unexpected identifier %q at line %d, col %d", tok.Literal, tok.Line, tok.Column)
		}
		if _, err := expect(p.lex, token.IN); err != nil {
			return nil, err
		}
		return p.parseIn(quant, codes, true)
	}
	for _, rel := range []struct {
		tt token.Type
		op ast.RelOp
	}{
		{token.EQ, ast.Eq},
		{token.NEQ, ast.Neq},
		{token.SW, ast.StartsWith},
		{token.NSW, ast.NotStartsWith},
		{token.EW, ast.EndsWith},
		{token.NEW, ast.NotEndsWith},
		{token.SIM, ast.Similar},
		{token.EXISTS, ast.Contains},
	} {
		if _, ok := tryConsume(p.lex, rel.tt); ok {
			lit, err := expectString(p.lex)
			if err != nil {
				return nil, err
			}
			return &ast.SubfieldRelation{Quantifier: quant, Codes: codes, Op: rel.op, Literal: lit}, nil
		}
	}
	tok := p.lex.NextToken()
	return nil, fmt.Errorf("parser: expected subfield operator after codeset %s, got %s %q at line %d, col %d", codes, tok.Type, tok.Literal, tok.Line, tok.Column)
}

func (p *subfieldParser) parseRegex(quant ast.Quantifier, codes ast.CodeSet, negate bool) (ast.SubfieldMatcher, error) {
	sources, err := p.parseStringOrStringList()
	if err != nil {
		return nil, err
	}
	return ast.NewSubfieldRegex(quant, codes, negate, sources, p.caseIgnore)
}

func (p *subfieldParser) parseIn(quant ast.Quantifier, codes ast.CodeSet, negate bool) (ast.SubfieldMatcher, error) {
	values, err := p.requireStringList()
	if err != nil {
		return nil, err
	}
	return &ast.SubfieldIn{Quantifier: quant, Codes: codes, Negate: negate, Values: values}, nil
}

// parseStringOrStringList parses either a single 'string' literal or a
// "[ 'a', 'b' ]" list, returning a one-element slice for the former.
func (p *subfieldParser) parseStringOrStringList() ([]string, error) {
	if _, ok := tryConsume(p.lex, token.LBRACKET); ok {
		return p.restOfStringList()
	}
	s, err := expectString(p.lex)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

func (p *subfieldParser) requireStringList() ([]string, error) {
	if _, err := expect(p.lex, token.LBRACKET); err != nil {
		return nil, err
	}
	return p.restOfStringList()
}

func (p *subfieldParser) restOfStringList() ([]string, error) {
	var values []string
	for {
		s, err := expectString(p.lex)
		if err != nil {
			return nil, err
		}
		values = append(values, s)
		if _, ok := tryConsume(p.lex, token.COMMA); ok {
			continue
		}
		break
	}
	if _, err := expect(p.lex, token.RBRACKET); err != nil {
		return nil, err
	}
	return values, nil
}

// --- C5/C6: field and record matcher ---

type fieldParser struct {
	lex        *lexer.Lexer
	caseIgnore bool
	depth      int
	maxDepth   int
}

func (p *fieldParser) parseOr() (ast.FieldMatcher, error) {
	left, err := p.parseXor()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := tryConsume(p.lex, token.OR); !ok {
			return left, nil
		}
		right, err := p.parseXor()
		if err != nil {
			return nil, err
		}
		left = &ast.FieldBinary{Op: ast.Or, Left: left, Right: right}
	}
}

func (p *fieldParser) parseXor() (ast.FieldMatcher, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := tryConsume(p.lex, token.XOR); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.FieldBinary{Op: ast.Xor, Left: left, Right: right}
	}
}

func (p *fieldParser) parseAnd() (ast.FieldMatcher, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := tryConsume(p.lex, token.AND); !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.FieldBinary{Op: ast.And, Left: left, Right: right}
	}
}

func (p *fieldParser) parseUnary() (ast.FieldMatcher, error) {
	if _, ok := tryConsume(p.lex, token.NOT); ok {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.FieldNot{Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *fieldParser) parsePrimary() (ast.FieldMatcher, error) {
	if _, ok := tryConsume(p.lex, token.LPAREN); ok {
		p.depth++
		if p.depth > p.maxDepth {
			return nil, fmt.Errorf("parser: group nesting exceeds limit of %d", p.maxDepth)
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := expect(p.lex, token.RPAREN); err != nil {
			return nil, err
		}
		p.depth--
		return inner, nil
	}
	if _, ok := tryConsume(p.lex, token.HASH); ok {
		return p.parseCardinality()
	}
	quant := parseQuantifier(p.lex)
	tag, occ, err := p.scanTagOcc()
	if err != nil {
		return nil, err
	}
	if _, ok := tryConsume(p.lex, token.QMARK); ok {
		return &ast.FieldExists{Tag: tag, Occ: occ}, nil
	}
	if _, ok := tryConsume(p.lex, token.DOT); ok {
		sub := &subfieldParser{lex: p.lex, caseIgnore: p.caseIgnore, maxDepth: p.maxDepth}
		codes, err := parseCodeSet(p.lex)
		if err != nil {
			return nil, err
		}
		inner, err := sub.parseSuffix(quant, codes)
		if err != nil {
			return nil, err
		}
		return &ast.FieldSubfields{Quantifier: quant, Tag: tag, Occ: occ, Inner: inner, DotForm: true}, nil
	}
	if _, ok := tryConsume(p.lex, token.LBRACE); ok {
		sub := &subfieldParser{lex: p.lex, caseIgnore: p.caseIgnore, maxDepth: p.maxDepth}
		inner, err := sub.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := expect(p.lex, token.RBRACE); err != nil {
			return nil, err
		}
		return &ast.FieldSubfields{Quantifier: quant, Tag: tag, Occ: occ, Inner: inner, DotForm: false}, nil
	}
	tok := p.lex.NextToken()
	return nil, fmt.Errorf("parser: expected '?', '.', or '{' after tag/occurrence, got %s %q at line %d, col %d", tok.Type, tok.Literal, tok.Line, tok.Column)
}

func (p *fieldParser) parseCardinality() (ast.FieldMatcher, error) {
	tag, occ, err := p.scanTagOcc()
	if err != nil {
		return nil, err
	}
	var inner ast.SubfieldMatcher
	if _, ok := tryConsume(p.lex, token.LBRACE); ok {
		sub := &subfieldParser{lex: p.lex, caseIgnore: p.caseIgnore, maxDepth: p.maxDepth}
		inner, err = sub.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := expect(p.lex, token.RBRACE); err != nil {
			return nil, err
		}
	}
	op, err := parseCmpOp(p.lex)
	if err != nil {
		return nil, err
	}
	n, err := expectInt(p.lex)
	if err != nil {
		return nil, err
	}
	return &ast.FieldCardinality{Tag: tag, Occ: occ, Inner: inner, Op: op, Value: n}, nil
}

// scanTagOcc raw-scans a contiguous "TAG" or "TAGOCC" token, e.g. "003@",
// "028A/01", "[01].[A-Z]": tag and occurrence never contain internal
// whitespace.
func (p *fieldParser) scanTagOcc() (pattern.Tag, pattern.Occurrence, error) {
	p.lex.SkipSpace()
	raw, err := p.lex.ScanTagToken()
	if err != nil {
		return pattern.Tag{}, pattern.Occurrence{}, err
	}
	tag, err := pattern.CompileTag(raw)
	if err != nil {
		return pattern.Tag{}, pattern.Occurrence{}, err
	}
	occRaw := p.lex.ScanOccurrenceToken()
	occ, err := pattern.CompileOccurrence(occRaw)
	if err != nil {
		return pattern.Tag{}, pattern.Occurrence{}, err
	}
	return tag, occ, nil
}
