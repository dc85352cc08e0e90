package pattern

import (
	"testing"

	"github.com/dnb-pica/picabatch/record"
)

func tag(t *testing.T, s string) record.Tag {
	t.Helper()
	tg, err := record.NewTag(s)
	if err != nil {
		t.Fatalf("NewTag(%q): %v", s, err)
	}
	return tg
}

func TestCompileTagLiteral(t *testing.T) {
	p := MustCompileTag("003@")
	if !p.Matches(tag(t, "003@")) {
		t.Errorf("expected literal match")
	}
	if p.Matches(tag(t, "003A")) {
		t.Errorf("expected literal mismatch")
	}
}

func TestCompileTagWildcardAndClasses(t *testing.T) {
	p := MustCompileTag("0.[3-9]A")
	if !p.Matches(tag(t, "008A")) {
		t.Errorf("expected match for 008A")
	}
	if p.Matches(tag(t, "002A")) {
		t.Errorf("slot 2 out of [3-9], should not match")
	}
	if p.Matches(tag(t, "108A")) {
		t.Errorf("slot 0 fixed to '0', should not match '1'")
	}
}

func TestCompileTagRejectsBadRange(t *testing.T) {
	if _, err := CompileTag("[a-a]..."); err == nil {
		t.Fatalf("expected error for empty range [a-a]")
	}
}

func TestCompileTagRejectsOutOfCharset(t *testing.T) {
	if _, err := CompileTag("3..."); err == nil {
		t.Fatalf("slot 0 only allows [012.], expected error for '3'")
	}
}

func occ(t *testing.T, digits string) record.Occurrence {
	t.Helper()
	o, err := record.NewOccurrence(digits)
	if err != nil {
		t.Fatalf("NewOccurrence(%q): %v", digits, err)
	}
	return o
}

func TestCompileOccurrenceForms(t *testing.T) {
	absentOrZero := MustCompileOccurrence("")
	if !absentOrZero.Matches(occ(t, "")) || !absentOrZero.Matches(occ(t, "00")) {
		t.Errorf("empty pattern must match absent and 00")
	}
	if absentOrZero.Matches(occ(t, "01")) {
		t.Errorf("empty pattern must not match 01")
	}

	zeroAlias := MustCompileOccurrence("/00")
	if !zeroAlias.Matches(occ(t, "")) || !zeroAlias.Matches(occ(t, "00")) {
		t.Errorf("/00 must match absent and 00, by alias")
	}

	exact := MustCompileOccurrence("/01")
	if !exact.Matches(occ(t, "01")) || exact.Matches(occ(t, "02")) || exact.Matches(occ(t, "")) {
		t.Errorf("/01 must match only exactly 01")
	}

	rng := MustCompileOccurrence("/01-05")
	for _, d := range []string{"01", "03", "05"} {
		if !rng.Matches(occ(t, d)) {
			t.Errorf("/01-05 should match %q", d)
		}
	}
	if rng.Matches(occ(t, "06")) || rng.Matches(occ(t, "")) {
		t.Errorf("/01-05 should not match 06 or absent")
	}

	any := MustCompileOccurrence("/*")
	if !any.Matches(occ(t, "")) || !any.Matches(occ(t, "42")) {
		t.Errorf("/* must match everything including absent")
	}
}

func TestCompileOccurrenceRejectsBadRange(t *testing.T) {
	if _, err := CompileOccurrence("/05-01"); err == nil {
		t.Fatalf("expected error: low bound not less than high bound")
	}
	if _, err := CompileOccurrence("/1-05"); err == nil {
		t.Fatalf("expected error: unequal width bounds")
	}
}
