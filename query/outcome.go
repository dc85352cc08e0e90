package query

import "strings"

// Outcome is the rectangular relation produced by projecting a query
// against a record (§3, §4.7): a sequence of rows, each row a sequence of
// cells, all rows of equal width for a given projection.
type Outcome [][]string

// emptyOutcome is the identity for both add and mul.
var emptyOutcome = Outcome(nil)

func singleCellOutcome(s string) Outcome { return Outcome{{s}} }

// add is Outcome's "+": row-wise concatenation (union of row sets, same
// column count). An empty operand is the identity.
func add(a, b Outcome) Outcome {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(Outcome, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// mul is Outcome's "*": cartesian product, for each row in a emit it
// concatenated with each row in b. An empty operand is the identity.
func mul(a, b Outcome) Outcome {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(Outcome, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			row := make([]string, 0, len(x)+len(y))
			row = append(row, x...)
			row = append(row, y...)
			out = append(out, row)
		}
	}
	return out
}

// squash flattens o to a single cell, joining every cell of every row
// with sep in row order. warn is invoked once if any
// collapsed value itself contains a non-empty sep and more than one value
// contributed to the flattened set (§4.7).
func squash(o Outcome, sep string, warn func()) Outcome {
	if len(o) == 0 {
		return o
	}
	var flattened []string
	for _, row := range o {
		flattened = append(flattened, row...)
	}
	if len(flattened) > 1 && sep != "" {
		for _, v := range flattened {
			if strings.Contains(v, sep) {
				warn()
				break
			}
		}
	}
	return Outcome{{strings.Join(flattened, sep)}}
}

// merge joins o's rows column-wise with sep into a single row.
func merge(o Outcome, sep string) Outcome {
	if len(o) <= 1 {
		return o
	}
	cols := len(o[0])
	result := make([]string, cols)
	for i := 0; i < cols; i++ {
		parts := make([]string, len(o))
		for r, row := range o {
			parts[r] = row[i]
		}
		result[i] = strings.Join(parts, sep)
	}
	return Outcome{result}
}
