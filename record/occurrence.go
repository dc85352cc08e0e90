package record

// Occurrence is a field's optional 2-3 digit occurrence suffix. The zero
// value represents "absent" (no "/NN" was present in the source bytes).
// "00" is a distinguished, structurally valid occurrence value: matchers
// (see the matcher package) treat it as equivalent to absent by default,
// but the codec preserves the distinction on the wire.
type Occurrence struct {
	digits string
	set    bool
}

// NoOccurrence is the absent occurrence.
var NoOccurrence = Occurrence{}

// NewOccurrence validates and constructs an Occurrence from its digit
// string (without the leading "/"). An empty string constructs the
// absent occurrence.
func NewOccurrence(digits string) (Occurrence, error) {
	if digits == "" {
		return NoOccurrence, nil
	}
	if len(digits) < 2 || len(digits) > 3 {
		return Occurrence{}, newInvalidPrimitive("occurrence", digits, "must be absent or 2-3 ASCII digits")
	}
	for _, b := range []byte(digits) {
		if b < '0' || b > '9' {
			return Occurrence{}, newInvalidPrimitive("occurrence", digits, "must be absent or 2-3 ASCII digits")
		}
	}
	return Occurrence{digits: digits, set: true}, nil
}

// IsAbsent reports whether no occurrence suffix was present on the wire.
func (o Occurrence) IsAbsent() bool { return !o.set }

// IsZero reports whether the occurrence is the distinguished "00" value.
func (o Occurrence) IsZero() bool { return o.set && o.digits == "00" }

// Digits returns the raw digit string, or "" if absent.
func (o Occurrence) Digits() string { return o.digits }

// String renders the occurrence as it appears on the wire, including the
// leading "/", or "" if absent.
func (o Occurrence) String() string {
	if !o.set {
		return ""
	}
	return "/" + o.digits
}

// Equal reports whether two occurrences are structurally identical
// (absent-ness and digits both match; "00" and absent are NOT equal here
// — that equivalence is a matcher-level policy, not a model invariant).
func (o Occurrence) Equal(other Occurrence) bool {
	return o.set == other.set && o.digits == other.digits
}
