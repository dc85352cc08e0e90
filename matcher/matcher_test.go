package matcher

import (
	"testing"

	"github.com/dnb-pica/picabatch/record"
)

func parseRecord(t *testing.T, wire string) record.Record {
	t.Helper()
	r, err := record.Parse([]byte(wire))
	if err != nil {
		t.Fatalf("Parse(%q): %v", wire, err)
	}
	return r
}

func mustCompile(t *testing.T, src string, caseIgnore bool) *Matcher {
	t.Helper()
	m, err := Compile(src, caseIgnore)
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	return m
}

// Scenario 1: simple filter by PPN (spec §8.1).
func TestFilterByPPN(t *testing.T) {
	r1 := parseRecord(t, "003@ \x1f0118540238\x1e\n")
	r2 := parseRecord(t, "003@ \x1f0040379442\x1e\n")
	m := mustCompile(t, "003@.0 == '118540238'", false)

	if !m.Eval(r1, Options{}) {
		t.Errorf("expected R1 to match")
	}
	if m.Eval(r2, Options{}) {
		t.Errorf("expected R2 not to match")
	}
}

// Scenario 2: subfield matcher with quantifier (spec §8.2).
func TestSubfieldQuantifier(t *testing.T) {
	r := parseRecord(t, "028A \x1faAda\x1fdLovelace\x1e\n")

	cases := []struct {
		src  string
		want bool
	}{
		{"028A.a == 'Ada'", true},
		{"ALL 028A.[ad] == 'Ada'", false},
		{"ANY 028A.[ad] == 'Ada'", true},
	}
	for _, tt := range cases {
		m := mustCompile(t, tt.src, false)
		if got := m.Eval(r, Options{}); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.src, got, tt.want)
		}
	}
}

// Scenario 3: cardinality (spec §8.3).
func TestCardinality(t *testing.T) {
	r := parseRecord(t,
		"012A \x1faabc\x1e"+
			"012A \x1faabd\x1e"+
			"012A \x1fax\x1e\n")

	cases := []struct {
		src  string
		want bool
	}{
		{"#012A{ a =^ 'ab' } == 2", true},
		{"#012A >= 3", true},
		{"#012A > 3", false},
	}
	for _, tt := range cases {
		m := mustCompile(t, tt.src, false)
		if got := m.Eval(r, Options{}); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.src, got, tt.want)
		}
	}
}

// Scenario 4: similarity threshold (spec §8.4).
func TestSimilarityThreshold(t *testing.T) {
	r := parseRecord(t, "028A \x1faLovelace\x1e\n")
	m := mustCompile(t, "028A.a =* 'Lovelaca'", false)

	if !m.Eval(r, Options{StrsimThreshold: 0.75}) {
		t.Errorf("expected match at threshold 0.75")
	}
	if m.Eval(r, Options{StrsimThreshold: 0.90}) {
		t.Errorf("expected no match at threshold 0.90")
	}
}

func TestBooleanComposition(t *testing.T) {
	r := parseRecord(t, "003@ \x1f0118540238\x1e\n")

	if !mustCompile(t, "!(003@.0 == 'x')", false).Eval(r, Options{}) {
		t.Errorf("negation of false should be true")
	}
	if !mustCompile(t, "003@.0 == '118540238' && 003@ ?", false).Eval(r, Options{}) {
		t.Errorf("conjunction of two true matchers should be true")
	}
	if mustCompile(t, "003@.0 == 'x' ^ 003@.0 == 'x'", false).Eval(r, Options{}) {
		t.Errorf("xor of two false matchers should be false")
	}
}

func TestFieldExistsAndOccurrence(t *testing.T) {
	r := parseRecord(t, "045A/01 \x1faFoo\x1e\n")

	if !mustCompile(t, "045A/01 ?", false).Eval(r, Options{}) {
		t.Errorf("expected field with matching occurrence to exist")
	}
	if mustCompile(t, "045A/02 ?", false).Eval(r, Options{}) {
		t.Errorf("expected no match for a different occurrence")
	}
	if !mustCompile(t, "045A/* ?", false).Eval(r, Options{}) {
		t.Errorf("/* should match any occurrence")
	}
}

func TestCaseIgnoreAndRegex(t *testing.T) {
	r := parseRecord(t, "028A \x1faADA\x1e\n")

	if mustCompile(t, "028A.a == 'ada'", false).Eval(r, Options{}) {
		t.Errorf("expected case-sensitive mismatch")
	}
	if !mustCompile(t, "028A.a == 'ada'", true).Eval(r, Options{CaseIgnore: true}) {
		t.Errorf("expected case-insensitive match")
	}
	if !mustCompile(t, "028A.a =~ '^AD'", false).Eval(r, Options{}) {
		t.Errorf("expected regex prefix match")
	}
	if !mustCompile(t, "028A.a !~ '^ZZ'", false).Eval(r, Options{}) {
		t.Errorf("expected negated regex non-match to succeed")
	}
}

func TestInList(t *testing.T) {
	r := parseRecord(t, "028A \x1fager\x1e\n")

	if !mustCompile(t, "028A { a in [ 'ger', 'eng' ] }", false).Eval(r, Options{}) {
		t.Errorf("expected 'ger' to be in the list")
	}
	if !mustCompile(t, "028A { a not in [ 'fre' ] }", false).Eval(r, Options{}) {
		t.Errorf("expected 'ger' to not be in the list")
	}
}

func TestGroupDepthLimit(t *testing.T) {
	deep := ""
	for i := 0; i < 40; i++ {
		deep += "("
	}
	deep += "003@ ?"
	for i := 0; i < 40; i++ {
		deep += ")"
	}
	if _, err := Compile(deep, false); err == nil {
		t.Fatalf("expected a parse error for nesting beyond the default depth limit")
	}
}

// The "$" code prefix is an accepted compat alias for a bare code,
// wherever a code or codeset is expected (DESIGN.md).
func TestDollarPrefixedCode(t *testing.T) {
	r := parseRecord(t, "003@ \x1f0118540238\x1e\n")
	m := mustCompile(t, "003@.$0 == '118540238'", false)
	if !m.Eval(r, Options{}) {
		t.Errorf("expected a leading '$' before a code to be accepted")
	}

	r2 := parseRecord(t,
		"012A \x1faabc\x1e"+
			"012A \x1faabd\x1e"+
			"012A \x1fax\x1e\n")
	m2 := mustCompile(t, "#012A{ $a =^ 'ab' } == 2", false)
	if !m2.Eval(r2, Options{}) {
		t.Errorf("expected a leading '$' before a cardinality codeset to be accepted")
	}

	r3 := parseRecord(t, "012A \x1faX\x1faY\x1e\n")
	m3 := mustCompile(t, "012A{ #$a == 2 }", false)
	if !m3.Eval(r3, Options{}) {
		t.Errorf("expected a leading '$' before a bare cardinality code to be accepted")
	}
}
