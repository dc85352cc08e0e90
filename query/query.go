// Package query implements the path/query projection language (C7):
// compiling query source into an AST and evaluating it against a record
// to produce an Outcome relation (§4.7).
package query

import (
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/dnb-pica/picabatch/matcher"
	mast "github.com/dnb-pica/picabatch/matcher/ast"
	"github.com/dnb-pica/picabatch/pattern"
	"github.com/dnb-pica/picabatch/query/ast"
	"github.com/dnb-pica/picabatch/query/parser"
	"github.com/dnb-pica/picabatch/record"
)

// DefaultStrsimThreshold mirrors matcher.DefaultStrsimThreshold, used when
// an Options value leaves StrsimThreshold at its zero value.
const DefaultStrsimThreshold = matcher.DefaultStrsimThreshold

var logger atomic.Pointer[slog.Logger]

func init() { logger.Store(slog.Default()) }

// SetLogger installs the logger used for the squash-separator collision
// warning (§4.7). Passing nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	logger.Store(l)
}

// Query is a compiled path/query expression (C7), ready to evaluate
// against many records.
type Query struct {
	root *ast.Query
}

// Compile parses src as a comma-separated list of query fragments.
func Compile(src string, caseIgnore bool) (*Query, error) {
	root, err := parser.ParseQuery(src, parser.Options{CaseIgnore: caseIgnore})
	if err != nil {
		return nil, newQuerySyntaxError(src, err)
	}
	return &Query{root: root}, nil
}

// String renders the compiled query back to its source syntax.
func (q *Query) String() string { return q.root.String() }

// Eval runs the compiled query against r and returns the resulting
// Outcome (§4.7's engine contract: single-record, pure, deterministic).
func (q *Query) Eval(r record.Record, opts Options) Outcome {
	var result Outcome
	for i, f := range q.root.Fragments {
		fo := evalFragment(f, r, opts)
		if opts.Merge {
			fo = merge(fo, opts.separator())
		}
		if i == 0 {
			result = fo
			continue
		}
		result = mul(result, fo)
	}
	return result
}

func evalFragment(f ast.Fragment, r record.Record, opts Options) Outcome {
	switch n := f.(type) {
	case *ast.LiteralFragment:
		return singleCellOutcome(n.Value)
	case *ast.PathFragment:
		return evalPath(n, r, opts)
	case *ast.FormatFragment:
		return evalFormat(n, r, opts)
	}
	return emptyOutcome
}

func matchingFields(r record.Record, tag pattern.Tag, occ pattern.Occurrence) []record.Field {
	var out []record.Field
	for _, f := range r.Fields {
		if tag.Matches(f.Tag) && occ.Matches(f.Occurrence) {
			out = append(out, f)
		}
	}
	return out
}

func evalPath(p *ast.PathFragment, r record.Record, opts Options) Outcome {
	matcherOpts := matcher.Options{CaseIgnore: opts.CaseIgnore, StrsimThreshold: opts.StrsimThreshold}

	var outcome Outcome
	for _, f := range matchingFields(r, p.Tag, p.Occ) {
		if p.Filter != nil && !matcher.EvalSubfields(p.Filter, f, matcherOpts) {
			continue
		}
		var perField Outcome
		for _, codes := range p.CodeSets {
			col := valueColumn(f, codes)
			if opts.Squash {
				tag, code := p.Tag.String(), codes.String()
				col = squash(col, opts.separator(), func() {
					logger.Load().Warn("WARNING: A subfield value contains squash separator",
						"tag", tag, "code", code, "separator", opts.separator())
				})
			}
			if perField == nil {
				perField = col
				continue
			}
			perField = mul(perField, col)
		}
		outcome = add(outcome, perField)
	}
	if len(outcome) == 0 {
		row := make([]string, len(p.CodeSets))
		outcome = Outcome{row}
	}
	return outcome
}

func valueColumn(f record.Field, codes mast.CodeSet) Outcome {
	var values []string
	for _, sf := range f.Subfields {
		if codes.Matches(sf.Code) {
			values = append(values, sf.Value.String())
		}
	}
	if len(values) == 0 {
		return Outcome{{""}}
	}
	col := make(Outcome, len(values))
	for i, v := range values {
		col[i] = []string{v}
	}
	return col
}

func evalFormat(fr *ast.FormatFragment, r record.Record, opts Options) Outcome {
	fields := matchingFields(r, fr.Tag, fr.Occ)
	if len(fields) == 0 {
		fields = []record.Field{{}}
	}
	var outcome Outcome
	for _, f := range fields {
		outcome = add(outcome, singleCellOutcome(renderTemplate(fr.Template, f)))
	}
	return outcome
}

func renderTemplate(tpl string, f record.Field) string {
	var out strings.Builder
	for i := 0; i < len(tpl); i++ {
		if tpl[i] == '$' && i+1 < len(tpl) && isAlnum(tpl[i+1]) {
			code := tpl[i+1]
			out.WriteString(joinSubfieldValues(f, code))
			i++
			continue
		}
		out.WriteByte(tpl[i])
	}
	return out.String()
}

func joinSubfieldValues(f record.Field, code byte) string {
	var values []string
	for _, sf := range f.Subfields {
		if sf.Code.Byte() == code {
			values = append(values, sf.Value.String())
		}
	}
	return strings.Join(values, "")
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
