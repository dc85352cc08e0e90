// Package matcher implements the evaluation engine (C8) binding the
// subfield/field/record matcher AST (C4-C6) to a parsed record, and
// exposes the public compile/eval surface the rest of the module uses.
package matcher

import (
	"regexp"

	"github.com/dnb-pica/picabatch/internal/simfold"
	"github.com/dnb-pica/picabatch/matcher/ast"
	"github.com/dnb-pica/picabatch/matcher/parser"
	"github.com/dnb-pica/picabatch/pattern"
	"github.com/dnb-pica/picabatch/record"
)

// Options controls the semantics of string comparison during evaluation
// (spec §6's recognized option keys, the subset relevant to matchers).
type Options struct {
	// CaseIgnore folds both sides of a string comparison before
	// comparing.
	CaseIgnore bool
	// StrsimThreshold is the strict lower bound a normalized Levenshtein
	// similarity must exceed for "=*" to succeed.
	StrsimThreshold float64
}

// DefaultStrsimThreshold is used when an Options value leaves
// StrsimThreshold at its zero value, which would otherwise make "=*"
// trivially true for almost any pair of strings.
const DefaultStrsimThreshold = 0.8

func (o Options) threshold() float64 {
	if o.StrsimThreshold == 0 {
		return DefaultStrsimThreshold
	}
	return o.StrsimThreshold
}

// Matcher is a compiled record-matcher (C6), ready to evaluate against
// many records.
type Matcher struct {
	root ast.FieldMatcher
}

// Compile parses src as a C6 record matcher.
func Compile(src string, caseIgnore bool) (*Matcher, error) {
	root, err := parser.ParseRecordMatcher(src, parser.Options{CaseIgnore: caseIgnore})
	if err != nil {
		return nil, newSyntaxError(src, err)
	}
	return &Matcher{root: root}, nil
}

// Eval reports whether r satisfies the compiled matcher under opts.
func (m *Matcher) Eval(r record.Record, opts Options) bool {
	return evalField(m.root, r.Fields, opts)
}

// String renders the compiled matcher back to its source syntax.
func (m *Matcher) String() string { return m.root.String() }

// CompileSubfield parses src as a standalone C4 subfield matcher, for
// callers (e.g. the query package's curly-form path filter) that need
// just that grammar.
func CompileSubfield(src string, caseIgnore bool) (ast.SubfieldMatcher, error) {
	m, err := parser.ParseSubfieldMatcher(src, parser.Options{CaseIgnore: caseIgnore})
	if err != nil {
		return nil, newSyntaxError(src, err)
	}
	return m, nil
}

// EvalSubfields reports whether the subfields of f satisfy m.
func EvalSubfields(m ast.SubfieldMatcher, f record.Field, opts Options) bool {
	return evalSubfield(m, f.Subfields, opts)
}

// --- C4: subfield matcher evaluation ---

func evalSubfield(m ast.SubfieldMatcher, subfields []record.Subfield, opts Options) bool {
	switch n := m.(type) {
	case *ast.SubfieldExists:
		return len(filterByCodeSet(subfields, n.Codes)) > 0
	case *ast.SubfieldRelation:
		matching := filterByCodeSet(subfields, n.Codes)
		return evalQuantifier(n.Quantifier, matching, func(sf record.Subfield) bool {
			return evalRelation(n.Op, sf.Value.String(), n.Literal, opts)
		})
	case *ast.SubfieldRegex:
		matching := filterByCodeSet(subfields, n.Codes)
		return evalQuantifier(n.Quantifier, matching, func(sf record.Subfield) bool {
			matched := matchesAnyRegex(n.Patterns, sf.Value.String())
			if n.Negate {
				return !matched
			}
			return matched
		})
	case *ast.SubfieldIn:
		matching := filterByCodeSet(subfields, n.Codes)
		return evalQuantifier(n.Quantifier, matching, func(sf record.Subfield) bool {
			in := valueInList(sf.Value.String(), n.Values, opts.CaseIgnore)
			if n.Negate {
				return !in
			}
			return in
		})
	case *ast.SubfieldCardinality:
		count := 0
		for _, sf := range subfields {
			if sf.Code.Byte() == n.Code {
				count++
			}
		}
		return n.Op.Eval(count, n.Value)
	case *ast.SubfieldNot:
		return !evalSubfield(n.Inner, subfields, opts)
	case *ast.SubfieldBinary:
		return evalBool(n.Op, func() bool { return evalSubfield(n.Left, subfields, opts) }, func() bool { return evalSubfield(n.Right, subfields, opts) })
	}
	return false
}

func filterByCodeSet(subfields []record.Subfield, codes ast.CodeSet) []record.Subfield {
	var out []record.Subfield
	for _, sf := range subfields {
		if codes.Matches(sf.Code) {
			out = append(out, sf)
		}
	}
	return out
}

// evalQuantifier applies the ANY/ALL convention of §4.4: ANY succeeds if
// at least one element of elems satisfies pred; ALL succeeds if every
// element does, with vacuous truth over an empty slice.
func evalQuantifier(q ast.Quantifier, elems []record.Subfield, pred func(record.Subfield) bool) bool {
	if q == ast.All {
		for _, e := range elems {
			if !pred(e) {
				return false
			}
		}
		return true
	}
	for _, e := range elems {
		if pred(e) {
			return true
		}
	}
	return false
}

func evalRelation(op ast.RelOp, value, literal string, opts Options) bool {
	a := simfold.FoldIf(value, opts.CaseIgnore)
	b := simfold.FoldIf(literal, opts.CaseIgnore)
	switch op {
	case ast.Eq:
		return a == b
	case ast.Neq:
		return a != b
	case ast.StartsWith:
		return len(a) >= len(b) && a[:len(b)] == b
	case ast.NotStartsWith:
		return !(len(a) >= len(b) && a[:len(b)] == b)
	case ast.EndsWith:
		return len(a) >= len(b) && a[len(a)-len(b):] == b
	case ast.NotEndsWith:
		return !(len(a) >= len(b) && a[len(a)-len(b):] == b)
	case ast.Similar:
		return simfold.Similarity(a, b) > opts.threshold()
	case ast.Contains:
		return stringContains(a, b)
	}
	return false
}

func stringContains(s, substr string) bool {
	if len(substr) == 0 {
		return true
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func matchesAnyRegex(patterns []*regexp.Regexp, value string) bool {
	for _, p := range patterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

func valueInList(value string, values []string, caseIgnore bool) bool {
	folded := simfold.FoldIf(value, caseIgnore)
	for _, v := range values {
		if simfold.FoldIf(v, caseIgnore) == folded {
			return true
		}
	}
	return false
}

func evalBool(op ast.BoolOp, left, right func() bool) bool {
	switch op {
	case ast.And:
		return left() && right()
	case ast.Xor:
		return left() != right()
	case ast.Or:
		return left() || right()
	}
	return false
}

// --- C5/C6: field and record matcher evaluation ---

func evalField(m ast.FieldMatcher, fields []record.Field, opts Options) bool {
	switch n := m.(type) {
	case *ast.FieldExists:
		for _, f := range fields {
			if n.Tag.Matches(f.Tag) && n.Occ.Matches(f.Occurrence) {
				return true
			}
		}
		return false
	case *ast.FieldSubfields:
		matching := fieldsMatchingTagOcc(fields, n.Tag, n.Occ)
		return evalFieldQuantifier(n.Quantifier, matching, func(f record.Field) bool {
			return evalSubfield(n.Inner, f.Subfields, opts)
		})
	case *ast.FieldCardinality:
		count := 0
		for _, f := range fields {
			if !n.Tag.Matches(f.Tag) || !n.Occ.Matches(f.Occurrence) {
				continue
			}
			if n.Inner != nil && !evalSubfield(n.Inner, f.Subfields, opts) {
				continue
			}
			count++
		}
		return n.Op.Eval(count, n.Value)
	case *ast.FieldNot:
		return !evalField(n.Inner, fields, opts)
	case *ast.FieldBinary:
		return evalBool(n.Op, func() bool { return evalField(n.Left, fields, opts) }, func() bool { return evalField(n.Right, fields, opts) })
	}
	return false
}

func fieldsMatchingTagOcc(fields []record.Field, tag pattern.Tag, occ pattern.Occurrence) []record.Field {
	var out []record.Field
	for _, f := range fields {
		if tag.Matches(f.Tag) && occ.Matches(f.Occurrence) {
			out = append(out, f)
		}
	}
	return out
}

// evalFieldQuantifier mirrors evalQuantifier at field scope: ANY succeeds
// if one matching field's subfields satisfy pred, ALL requires every
// matching field to, with vacuous truth when no field matches.
func evalFieldQuantifier(q ast.Quantifier, fields []record.Field, pred func(record.Field) bool) bool {
	if q == ast.All {
		for _, f := range fields {
			if !pred(f) {
				return false
			}
		}
		return true
	}
	for _, f := range fields {
		if pred(f) {
			return true
		}
	}
	return false
}
