package matcher

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// SyntaxError reports malformed subfield/field/record matcher source. It
// wraps the parser's positional error with a trimmed, quoted prefix of the
// offending source, per §4.8.
type SyntaxError struct {
	Source string // the full matcher source that failed to compile
	Prefix string // a trimmed quoted prefix of Source, for display
	cause  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("matcher: invalid syntax near %q: %v", e.Prefix, e.cause)
}

func (e *SyntaxError) Unwrap() error { return e.cause }

func newSyntaxError(src string, cause error) error {
	prefix := src
	const maxPrefix = 40
	if len(prefix) > maxPrefix {
		prefix = prefix[:maxPrefix] + "…"
	}
	prefix = strings.TrimSpace(prefix)
	return errors.WithStack(&SyntaxError{Source: src, Prefix: prefix, cause: cause})
}
