// Package ast defines the path/query AST (C7): a query is a sequence of
// fragments (path, literal, or format), each contributing one or more
// columns to the final Outcome relation.
package ast

import (
	"strings"

	mast "github.com/dnb-pica/picabatch/matcher/ast"
	"github.com/dnb-pica/picabatch/pattern"
)

// Fragment is one comma-separated element of a query.
type Fragment interface {
	fragmentNode()
	String() string
}

// PathFragment extracts one or more columns of subfield values from
// fields matching Tag/Occ, optionally restricted by Filter. CodeSets has
// one entry per output column: a single entry for the simple "TAG
// OCC.CODE" form, several for the curly "TAG OCC{ c1, c2 }" form.
type PathFragment struct {
	Tag      pattern.Tag
	Occ      pattern.Occurrence
	CodeSets []mast.CodeSet
	Filter   mast.SubfieldMatcher // nil if the path has no "| filter"
	Raw      string
}

func (*PathFragment) fragmentNode() {}
func (p *PathFragment) String() string { return p.Raw }

// LiteralFragment contributes a single constant-valued column.
type LiteralFragment struct {
	Value string
	Raw   string
}

func (*LiteralFragment) fragmentNode() {}
func (l *LiteralFragment) String() string { return l.Raw }

// FormatFragment renders a template against each matching field's
// subfields, substituting "$code" placeholders with that field's
// subfield values for the named code (joined with "" if repeated).
type FormatFragment struct {
	Tag      pattern.Tag
	Occ      pattern.Occurrence
	Template string
	Raw      string
}

func (*FormatFragment) fragmentNode() {}
func (f *FormatFragment) String() string { return f.Raw }

// Query is a comma-separated list of fragments (§4.7).
type Query struct {
	Fragments []Fragment
	Raw       string
}

func (q *Query) String() string {
	if q.Raw != "" {
		return q.Raw
	}
	parts := make([]string, len(q.Fragments))
	for i, f := range q.Fragments {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}
