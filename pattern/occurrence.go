package pattern

import (
	"fmt"

	"github.com/dnb-pica/picabatch/record"
)

// occKind discriminates the five occurrence matcher forms of §4.3.
type occKind int

const (
	occAbsentOrZero occKind = iota // "" or "/00"
	occExact                       // "/NN" or "/NNN", NN != "00"
	occRange                       // "/LO-HI"
	occAny                         // "/*"
)

// Occurrence is a compiled occurrence matcher.
type Occurrence struct {
	kind     occKind
	exact    string
	lo, hi   string
	src      string
}

// CompileOccurrence compiles one of the five occurrence matcher syntaxes
// (§4.3). src is the matcher text including its leading "/" if any, e.g.
// "", "/00", "/01", "/01-05", "/*".
func CompileOccurrence(src string) (Occurrence, error) {
	o := Occurrence{src: src}
	if src == "" || src == "/00" {
		o.kind = occAbsentOrZero
		return o, nil
	}
	if src == "/*" {
		o.kind = occAny
		return o, nil
	}
	if len(src) < 2 || src[0] != '/' {
		return Occurrence{}, fmt.Errorf("pattern: occurrence %q: must start with '/'", src)
	}
	body := src[1:]
	if dash := indexByte(body, '-'); dash >= 0 {
		lo, hi := body[:dash], body[dash+1:]
		if err := validDigits(lo); err != nil {
			return Occurrence{}, fmt.Errorf("pattern: occurrence %q: low bound: %w", src, err)
		}
		if err := validDigits(hi); err != nil {
			return Occurrence{}, fmt.Errorf("pattern: occurrence %q: high bound: %w", src, err)
		}
		if len(lo) != len(hi) {
			return Occurrence{}, fmt.Errorf("pattern: occurrence %q: bounds must have equal width", src)
		}
		if lo >= hi {
			return Occurrence{}, fmt.Errorf("pattern: occurrence %q: low bound must be less than high bound", src)
		}
		o.kind = occRange
		o.lo, o.hi = lo, hi
		return o, nil
	}
	if err := validDigits(body); err != nil {
		return Occurrence{}, fmt.Errorf("pattern: occurrence %q: %w", src, err)
	}
	if body == "00" {
		o.kind = occAbsentOrZero
		return o, nil
	}
	o.kind = occExact
	o.exact = body
	return o, nil
}

// MustCompileOccurrence is CompileOccurrence but panics on error.
func MustCompileOccurrence(src string) Occurrence {
	o, err := CompileOccurrence(src)
	if err != nil {
		panic(err)
	}
	return o
}

// AnyOccurrence matches every occurrence, including absent.
var AnyOccurrence = Occurrence{kind: occAny, src: "/*"}

// Matches reports whether occ satisfies this occurrence matcher.
func (o Occurrence) Matches(occ record.Occurrence) bool {
	switch o.kind {
	case occAny:
		return true
	case occAbsentOrZero:
		return occ.IsAbsent() || occ.IsZero()
	case occExact:
		return !occ.IsAbsent() && occ.Digits() == o.exact
	case occRange:
		if occ.IsAbsent() {
			return false
		}
		d := occ.Digits()
		return len(d) == len(o.lo) && d >= o.lo && d <= o.hi
	}
	return false
}

// String renders the matcher back to its source syntax.
func (o Occurrence) String() string { return o.src }

func validDigits(s string) error {
	if len(s) < 2 || len(s) > 3 {
		return fmt.Errorf("must be 2-3 digits, got %q", s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return fmt.Errorf("must be all digits, got %q", s)
		}
	}
	return nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
