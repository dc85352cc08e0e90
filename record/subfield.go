package record

// Subfield is the pair (code, value) making up one unit of a field.
type Subfield struct {
	Code  Code
	Value Value
}

// NewSubfield constructs a Subfield from an already-validated code and
// value.
func NewSubfield(code Code, value Value) Subfield {
	return Subfield{Code: code, Value: value}
}

// Len returns the serialized length of the subfield: 1 (0x1F) + 1 (code)
// + len(value).
func (s Subfield) Len() int { return 2 + len(s.Value) }

// AppendTo appends the wire representation of s to buf and returns the
// result: 0x1F, the code byte, then the value bytes.
func (s Subfield) AppendTo(buf []byte) []byte {
	buf = append(buf, subfieldSeparator, s.Code.Byte())
	buf = append(buf, s.Value...)
	return buf
}

// Clone returns an owned copy of s whose Value does not alias any input
// buffer.
func (s Subfield) Clone() Subfield {
	return Subfield{Code: s.Code, Value: s.Value.Clone()}
}
