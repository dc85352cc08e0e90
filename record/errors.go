package record

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseError reports malformed PICA+ bytes. It is the single error kind
// the codec produces; a record is either fully accepted or fully
// rejected, so there is no partial/recovered variant.
type ParseError struct {
	Offset  int    // byte offset into the input buffer
	Lexeme  string // the offending byte(s), trimmed for display
	Context string // what the parser was trying to read
}

func (e *ParseError) Error() string {
	if e.Lexeme == "" {
		return fmt.Sprintf("pica: parse error at offset %d: %s", e.Offset, e.Context)
	}
	return fmt.Sprintf("pica: parse error at offset %d: %s (near %q)", e.Offset, e.Context, e.Lexeme)
}

func newParseError(offset int, context, lexeme string) error {
	return errors.WithStack(&ParseError{Offset: offset, Context: context, Lexeme: lexeme})
}

// InvalidPrimitiveError reports an attempt to construct a SubfieldCode,
// SubfieldValue, Tag or Occurrence from bytes that violate the model
// invariants.
type InvalidPrimitiveError struct {
	Kind  string // "subfield code", "subfield value", "tag", "occurrence", "record"
	Value string
	Why   string
}

func (e *InvalidPrimitiveError) Error() string {
	return fmt.Sprintf("pica: invalid %s %q: %s", e.Kind, e.Value, e.Why)
}

func newInvalidPrimitive(kind, value, why string) error {
	return errors.WithStack(&InvalidPrimitiveError{Kind: kind, Value: value, Why: why})
}
