// Package ast defines the Abstract Syntax Tree nodes shared by the
// subfield, field, and record matcher grammars (C4-C6). A single tree
// shape serves all three levels: SubfieldMatcher nodes are leaves and
// composites evaluated against one field's subfields; FieldMatcher nodes
// wrap them (or record-level cardinality atoms) and compose over a
// record's field list. Both share the same boolean-composite shape,
// precedence, and depth discipline (§4.4, §4.5, §4.6).
package ast

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dnb-pica/picabatch/pattern"
	"github.com/dnb-pica/picabatch/record"
)

// Quantifier controls whether ALL or ANY qualifying elements must satisfy
// an inner predicate. The zero value is ANY, matching the grammar's
// default (§4.4).
type Quantifier int

const (
	Any Quantifier = iota
	All
)

func (q Quantifier) String() string {
	if q == All {
		return "ALL"
	}
	return "ANY"
}

// RelOp is a string relational operator over subfield values (§4.4).
type RelOp int

const (
	Eq RelOp = iota
	Neq
	StartsWith
	NotStartsWith
	EndsWith
	NotEndsWith
	Similar
	Contains
)

func (op RelOp) String() string {
	switch op {
	case Eq:
		return "=="
	case Neq:
		return "!="
	case StartsWith:
		return "=^"
	case NotStartsWith:
		return "!^"
	case EndsWith:
		return "=$"
	case NotEndsWith:
		return "!$"
	case Similar:
		return "=*"
	case Contains:
		return "=?"
	}
	return "?"
}

// CmpOp is an integer comparison operator used by cardinality atoms.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNeq
	CmpGte
	CmpGt
	CmpLte
	CmpLt
)

func (op CmpOp) String() string {
	switch op {
	case CmpEq:
		return "=="
	case CmpNeq:
		return "!="
	case CmpGte:
		return ">="
	case CmpGt:
		return ">"
	case CmpLte:
		return "<="
	case CmpLt:
		return "<"
	}
	return "?"
}

// Eval reports whether n relates to the right operand by op.
func (op CmpOp) Eval(n, right int) bool {
	switch op {
	case CmpEq:
		return n == right
	case CmpNeq:
		return n != right
	case CmpGte:
		return n >= right
	case CmpGt:
		return n > right
	case CmpLte:
		return n <= right
	case CmpLt:
		return n < right
	}
	return false
}

// BoolOp is the binary composite connective shared by both grammars.
type BoolOp int

const (
	And BoolOp = iota
	Xor
	Or
)

func (op BoolOp) String() string {
	switch op {
	case And:
		return "&&"
	case Xor:
		return "^"
	case Or:
		return "||"
	}
	return "?"
}

// CodeSet is a compiled subfield-code predicate: a single code, a
// bracketed list/range, or "*" (all alphanumerics).
type CodeSet struct {
	all   bool
	codes map[byte]bool
	src   string
}

// NewCodeSetAll returns the CodeSet matching every alphanumeric code ("*").
func NewCodeSetAll() CodeSet { return CodeSet{all: true, src: "*"} }

// NewCodeSetLiteral returns the CodeSet matching exactly one code.
func NewCodeSetLiteral(c byte) CodeSet {
	return CodeSet{codes: map[byte]bool{c: true}, src: string(c)}
}

// NewCodeSetBracket compiles a bracketed code list/range body (the
// characters between `[` and `]`) such as "ab0-3X".
func NewCodeSetBracket(body string) (CodeSet, error) {
	codes := make(map[byte]bool)
	var rendered strings.Builder
	rendered.WriteByte('[')
	for i := 0; i < len(body); i++ {
		if i+2 < len(body) && body[i+1] == '-' {
			lo, hi := body[i], body[i+2]
			if lo >= hi {
				return CodeSet{}, fmt.Errorf("ast: codeset range %q..%q: low must be < high", string(lo), string(hi))
			}
			for c := lo; c <= hi; c++ {
				if !isAlnum(c) {
					return CodeSet{}, fmt.Errorf("ast: codeset range %q..%q: byte %q out of [0-9A-Za-z]", string(lo), string(hi), string(c))
				}
				codes[c] = true
			}
			rendered.WriteByte(lo)
			rendered.WriteByte('-')
			rendered.WriteByte(hi)
			i += 2
			continue
		}
		if !isAlnum(body[i]) {
			return CodeSet{}, fmt.Errorf("ast: codeset %q: byte %q out of [0-9A-Za-z]", body, string(body[i]))
		}
		codes[body[i]] = true
		rendered.WriteByte(body[i])
	}
	rendered.WriteByte(']')
	if len(codes) == 0 {
		return CodeSet{}, fmt.Errorf("ast: codeset %q: empty", body)
	}
	return CodeSet{codes: codes, src: rendered.String()}, nil
}

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// Matches reports whether code is in the set.
func (cs CodeSet) Matches(code record.Code) bool {
	if cs.all {
		return true
	}
	return cs.codes[byte(code)]
}

func (cs CodeSet) String() string { return cs.src }

// SubfieldMatcher is a node of the C4 predicate tree, evaluated against
// one field's subfields.
type SubfieldMatcher interface {
	subfieldMatcherNode()
	String() string
}

// SubfieldExists is the "CODESET ?" leaf: at least one subfield with a
// code in CodeSet exists.
type SubfieldExists struct {
	Codes CodeSet
}

func (*SubfieldExists) subfieldMatcherNode() {}
func (n *SubfieldExists) String() string     { return n.Codes.String() + " ?" }

// SubfieldRelation is the "(quantifier?) CODESET OP 'literal'" leaf.
type SubfieldRelation struct {
	Quantifier Quantifier
	Codes      CodeSet
	Op         RelOp
	Literal    string
}

func (*SubfieldRelation) subfieldMatcherNode() {}
func (n *SubfieldRelation) String() string {
	return fmt.Sprintf("%s %s %s %q", n.Quantifier, n.Codes, n.Op, n.Literal)
}

// SubfieldRegex is the "(quantifier?) CODESET =~/!~ 'regex'" leaf. One or
// more compiled patterns; a regex-set leaf matches if any pattern in the
// set matches (negated accordingly for !~).
type SubfieldRegex struct {
	Quantifier Quantifier
	Codes      CodeSet
	Negate     bool
	Patterns   []*regexp.Regexp
	src        string
}

// NewSubfieldRegex compiles the given source patterns (Unicode-aware when
// caseIgnore is set) under §4.8's "failing compile is a parse error" rule.
func NewSubfieldRegex(q Quantifier, codes CodeSet, negate bool, sources []string, caseIgnore bool) (*SubfieldRegex, error) {
	patterns := make([]*regexp.Regexp, 0, len(sources))
	for _, s := range sources {
		pat := s
		if caseIgnore {
			pat = "(?i)" + pat
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("ast: regex %q: %w", s, err)
		}
		patterns = append(patterns, re)
	}
	op := "=~"
	if negate {
		op = "!~"
	}
	rendered := strconv.Quote(sources[0])
	if len(sources) > 1 {
		var parts []string
		for _, s := range sources {
			parts = append(parts, strconv.Quote(s))
		}
		rendered = "[ " + strings.Join(parts, ", ") + " ]"
	}
	return &SubfieldRegex{
		Quantifier: q,
		Codes:      codes,
		Negate:     negate,
		Patterns:   patterns,
		src:        fmt.Sprintf("%s %s %s %s", q, codes, op, rendered),
	}, nil
}

func (*SubfieldRegex) subfieldMatcherNode() {}
func (n *SubfieldRegex) String() string     { return n.src }

// SubfieldIn is the "(quantifier?) CODESET in/not in [ 'v1', … ]" leaf.
type SubfieldIn struct {
	Quantifier Quantifier
	Codes      CodeSet
	Negate     bool
	Values     []string
}

func (*SubfieldIn) subfieldMatcherNode() {}
func (n *SubfieldIn) String() string {
	op := "in"
	if n.Negate {
		op = "not in"
	}
	var parts []string
	for _, v := range n.Values {
		parts = append(parts, strconv.Quote(v))
	}
	return fmt.Sprintf("%s %s %s [ %s ]", n.Quantifier, n.Codes, op, strings.Join(parts, ", "))
}

// SubfieldCardinality is the "# code OP INT" leaf: counts subfields with
// the exact single code and compares to Value.
type SubfieldCardinality struct {
	Code  byte
	Op    CmpOp
	Value int
}

func (*SubfieldCardinality) subfieldMatcherNode() {}
func (n *SubfieldCardinality) String() string {
	return fmt.Sprintf("# %s %s %d", string(n.Code), n.Op, n.Value)
}

// SubfieldNot negates an inner subfield matcher.
type SubfieldNot struct {
	Inner SubfieldMatcher
}

func (*SubfieldNot) subfieldMatcherNode() {}
func (n *SubfieldNot) String() string     { return "!" + parenIfComposite(n.Inner) }

// SubfieldBinary is a boolean composite of two subfield matchers.
type SubfieldBinary struct {
	Op    BoolOp
	Left  SubfieldMatcher
	Right SubfieldMatcher
}

func (*SubfieldBinary) subfieldMatcherNode() {}
func (n *SubfieldBinary) String() string {
	return fmt.Sprintf("%s %s %s", parenIfComposite(n.Left), n.Op, parenIfComposite(n.Right))
}

func parenIfComposite(m SubfieldMatcher) string {
	if _, ok := m.(*SubfieldBinary); ok {
		return "(" + m.String() + ")"
	}
	return m.String()
}

// FieldMatcher is a node of the C5/C6 predicate tree, evaluated against a
// record's field list (C5: one matching field's subfields; C6: the whole
// record). Record-level cardinality (§4.6) reuses the same Cardinality
// node scoped across every field rather than one.
type FieldMatcher interface {
	fieldMatcherNode()
	String() string
}

// FieldExists is the "TAG OCC ?" leaf.
type FieldExists struct {
	Tag pattern.Tag
	Occ pattern.Occurrence
}

func (*FieldExists) fieldMatcherNode() {}
func (n *FieldExists) String() string  { return fmt.Sprintf("%s%s ?", n.Tag, occSuffix(n.Occ)) }

// FieldSubfields is the "(quantifier?) TAG OCC .SUBSPEC" or
// "(quantifier?) TAG OCC { SUBFIELD_MATCHER }" leaf.
type FieldSubfields struct {
	Quantifier Quantifier
	Tag        pattern.Tag
	Occ        pattern.Occurrence
	Inner      SubfieldMatcher
	DotForm    bool
}

func (*FieldSubfields) fieldMatcherNode() {}
func (n *FieldSubfields) String() string {
	if n.DotForm {
		inner := strings.TrimPrefix(n.Inner.String(), n.Quantifier.String()+" ")
		return fmt.Sprintf("%s %s%s.%s", n.Quantifier, n.Tag, occSuffix(n.Occ), inner)
	}
	return fmt.Sprintf("%s %s%s { %s }", n.Quantifier, n.Tag, occSuffix(n.Occ), n.Inner)
}

// FieldCardinality is the "# TAG OCC { SUBFIELD_MATCHER }? OP INT" atom,
// used both at field level (C5, counting fields of this shape within the
// matcher's current field list) and record level (C6, across the whole
// record — same node, wider scope supplied by the evaluator).
type FieldCardinality struct {
	Tag   pattern.Tag
	Occ   pattern.Occurrence
	Inner SubfieldMatcher // nil if no inner filter given
	Op    CmpOp
	Value int
}

func (*FieldCardinality) fieldMatcherNode() {}
func (n *FieldCardinality) String() string {
	inner := ""
	if n.Inner != nil {
		inner = fmt.Sprintf(" { %s }", n.Inner)
	}
	return fmt.Sprintf("# %s%s%s %s %d", n.Tag, occSuffix(n.Occ), inner, n.Op, n.Value)
}

// FieldNot negates an inner field matcher.
type FieldNot struct {
	Inner FieldMatcher
}

func (*FieldNot) fieldMatcherNode() {}
func (n *FieldNot) String() string  { return "!" + parenIfFieldComposite(n.Inner) }

// FieldBinary is a boolean composite of two field matchers.
type FieldBinary struct {
	Op    BoolOp
	Left  FieldMatcher
	Right FieldMatcher
}

func (*FieldBinary) fieldMatcherNode() {}
func (n *FieldBinary) String() string {
	return fmt.Sprintf("%s %s %s", parenIfFieldComposite(n.Left), n.Op, parenIfFieldComposite(n.Right))
}

func parenIfFieldComposite(m FieldMatcher) string {
	if _, ok := m.(*FieldBinary); ok {
		return "(" + m.String() + ")"
	}
	return m.String()
}

func occSuffix(o pattern.Occurrence) string {
	s := o.String()
	if s == "" {
		return ""
	}
	return s
}
