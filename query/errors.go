package query

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// SyntaxError reports malformed path/query source (§4.8), mirroring
// matcher.SyntaxError.
type SyntaxError struct {
	Source string
	Prefix string
	cause  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("query: invalid syntax near %q: %v", e.Prefix, e.cause)
}

func (e *SyntaxError) Unwrap() error { return e.cause }

func newQuerySyntaxError(src string, cause error) error {
	prefix := src
	const maxPrefix = 40
	if len(prefix) > maxPrefix {
		prefix = prefix[:maxPrefix] + "…"
	}
	prefix = strings.TrimSpace(prefix)
	return errors.WithStack(&SyntaxError{Source: src, Prefix: prefix, cause: cause})
}
