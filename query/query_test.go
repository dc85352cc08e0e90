package query

import (
	"reflect"
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

func mustCompile(t *testing.T, src string) *Query {
	t.Helper()
	q, err := Compile(src, false)
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	return q
}

func TestQueryLiteral(t *testing.T) {
	r := parseRecord(t, "003@ \x1f0119232022\x1e\n")

	got := mustCompile(t, "'foo'").Eval(r, Options{})
	want := Outcome{{"foo"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got = mustCompile(t, "'foo','bar'").Eval(r, Options{})
	want = Outcome{{"foo", "bar"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQueryPathSimple(t *testing.T) {
	r := parseRecord(t, "003@ \x1f0119232022\x1e002@ \x1f0Tp1\x1e\n")

	got := mustCompile(t, "003@.0").Eval(r, Options{})
	want := Outcome{{"119232022"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got = mustCompile(t, "003@.0, 002@.0").Eval(r, Options{})
	want = Outcome{{"119232022", "Tp1"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQueryPathCrossProduct(t *testing.T) {
	r := parseRecord(t,
		"003@ \x1f0119232022\x1e"+
			"008A \x1fas\x1e"+
			"008A \x1faz\x1e"+
			"008A \x1faf\x1e\n")

	got := mustCompile(t, "003@.0, 008A.a").Eval(r, Options{})
	want := Outcome{
		{"119232022", "s"},
		{"119232022", "z"},
		{"119232022", "f"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQueryPathMissingFieldYieldsEmptyCell(t *testing.T) {
	r := parseRecord(t, "003@ \x1f0119232022\x1e\n")

	got := mustCompile(t, "003@.0, 008X.a").Eval(r, Options{})
	want := Outcome{{"119232022", ""}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQueryPathSquash(t *testing.T) {
	r := parseRecord(t,
		"012A \x1faX\x1fb1\x1fb2\x1e"+
			"012A \x1faX\x1fb3\x1e\n")

	got := mustCompile(t, "012A{ a, b }").Eval(r, Options{Squash: true})
	want := Outcome{{"X", "1|2"}, {"X", "3"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQueryPathSquashSingleField(t *testing.T) {
	r := parseRecord(t, "003@ \x1f0X\x1e008A \x1fas\x1fag\x1e\n")

	got := mustCompile(t, "003@.0, 008A.a").Eval(r, Options{Squash: true})
	want := Outcome{{"X", "s|g"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// The "$" code prefix is an accepted compat alias for a bare code,
// wherever a code or codeset is expected (DESIGN.md).
func TestQueryDollarPrefixedCode(t *testing.T) {
	r := parseRecord(t, "003@ \x1f0119232022\x1e\n")

	got := mustCompile(t, "003@.$0").Eval(r, Options{})
	want := Outcome{{"119232022"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got = mustCompile(t, "003@{ $0 }").Eval(r, Options{})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQueryPathMerge(t *testing.T) {
	r := parseRecord(t,
		"012A \x1faX\x1fb1\x1fb2\x1e"+
			"012A \x1faX\x1fb3\x1e\n")

	got := mustCompile(t, "012A{ a, b }").Eval(r, Options{Merge: true})
	want := Outcome{{"X|X|X", "1|2|3"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQueryPathWithFilter(t *testing.T) {
	r := parseRecord(t,
		"007N \x1f04370325-2\x1faswd\x1e"+
			"007N \x1f0other\x1fanotswd\x1e\n")

	got := mustCompile(t, "007N{ 0 | a == 'swd' }").Eval(r, Options{})
	want := Outcome{{"4370325-2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQueryFormatFragment(t *testing.T) {
	r := parseRecord(t, "003@ \x1f0119232022\x1e\n")

	got := mustCompile(t, "003@{ tpl 'https://d-nb.info/gnd/$0' }").Eval(r, Options{})
	want := Outcome{{"https://d-nb.info/gnd/119232022"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQuerySyntaxError(t *testing.T) {
	if _, err := Compile("003@.", false); err == nil {
		t.Fatalf("expected a syntax error for a truncated path")
	}
}

func TestOutcomeAlgebra(t *testing.T) {
	a := Outcome{{"1"}}
	b := Outcome{{"2"}}
	if got := add(a, b); !reflect.DeepEqual(got, Outcome{{"1"}, {"2"}}) {
		t.Errorf("add: got %v", got)
	}
	if got := mul(a, b); !reflect.DeepEqual(got, Outcome{{"1", "2"}}) {
		t.Errorf("mul: got %v", got)
	}
	if got := mul(emptyOutcome, b); !reflect.DeepEqual(got, b) {
		t.Errorf("mul identity: got %v", got)
	}
	if got := add(emptyOutcome, b); !reflect.DeepEqual(got, b) {
		t.Errorf("add identity: got %v", got)
	}
}
