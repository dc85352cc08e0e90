// Command picaquery is a thin demo binary: it reads PICA+ records from
// stdin, filters them with a record matcher, and projects each surviving
// record with a query, writing one tab-separated line per output row.
//
// It does not implement file framing, gzip, CSV/TSV output, allow/deny
// listing, or any of the other host concerns spec.md's Non-goals exclude;
// it exists to exercise the library end to end.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/dnb-pica/picabatch/matcher"
	"github.com/dnb-pica/picabatch/query"
	"github.com/dnb-pica/picabatch/record"
)

var version string

type options struct {
	Where           string  `long:"where" description:"record matcher expression; records failing it are skipped"`
	CaseIgnore      bool    `long:"case-ignore" description:"fold case before string comparisons"`
	StrsimThreshold float64 `long:"strsim-threshold" description:"similarity threshold for =*" default:"0.8"`
	Squash          bool    `long:"squash" description:"collapse each path's repeated subfield values into one cell"`
	Merge           bool    `long:"merge" description:"join a query's output rows column-wise into one row"`
	Separator       string  `long:"separator" description:"squash/merge join separator" default:"|"`
	Version         bool    `long:"version" description:"show this version"`
	Args            struct {
		Query string `positional-arg-name:"query" description:"query expression"`
	} `positional-args:"yes" required:"yes"`
}

func parseOptions(args []string) *options {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[option...] query"
	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	return &opts
}

func main() {
	opts := parseOptions(os.Args[1:])

	var recordMatcher *matcher.Matcher
	if opts.Where != "" {
		m, err := matcher.Compile(opts.Where, opts.CaseIgnore)
		if err != nil {
			log.Fatalf("picaquery: invalid --where expression: %v", err)
		}
		recordMatcher = m
	}

	q, err := query.Compile(opts.Args.Query, opts.CaseIgnore)
	if err != nil {
		log.Fatalf("picaquery: invalid query expression: %v", err)
	}

	queryOpts := query.Options{
		CaseIgnore:      opts.CaseIgnore,
		StrsimThreshold: opts.StrsimThreshold,
		Squash:          opts.Squash,
		Merge:           opts.Merge,
		Separator:       opts.Separator,
	}
	matcherOpts := matcher.Options{
		CaseIgnore:      opts.CaseIgnore,
		StrsimThreshold: opts.StrsimThreshold,
	}

	if err := run(os.Stdin, os.Stdout, recordMatcher, matcherOpts, q, queryOpts); err != nil {
		log.Fatalf("picaquery: %v", err)
	}
}

func run(in *os.File, out *os.File, recordMatcher *matcher.Matcher, matcherOpts matcher.Options, q *query.Query, queryOpts query.Options) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	scanner.Split(scanRecords)
	w := bufio.NewWriter(out)
	defer w.Flush()

	for scanner.Scan() {
		r, err := record.Parse(scanner.Bytes())
		if err != nil {
			return fmt.Errorf("reading record: %w", err)
		}
		if recordMatcher != nil && !recordMatcher.Eval(r, matcherOpts) {
			continue
		}
		for _, row := range q.Eval(r, queryOpts) {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
	}
	return scanner.Err()
}

// scanRecords splits stdin on the 0x0A record terminator, keeping it as
// part of each token so record.Parse sees byte-identical input.
func scanRecords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		if b == '\n' {
			return i + 1, data[:i+1], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
