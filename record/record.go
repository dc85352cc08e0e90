package record

// Record is an ordered, non-empty sequence of fields. Field order is
// preserved. The borrowed form (produced by Parse) has Subfield.Value
// slices aliasing the input buffer; Clone detaches a Record into the
// owned form.
type Record struct {
	Fields []Field
}

// NewRecord constructs a Record from already-validated fields. It
// returns an error if fields is empty: the empty record is not legal.
func NewRecord(fields []Field) (Record, error) {
	if len(fields) == 0 {
		return Record{}, newInvalidPrimitive("record", "", "a record must contain at least one field")
	}
	return Record{Fields: fields}, nil
}

// Serialize renders r back to its exact wire form: the concatenation of
// each field's serialization, followed by a trailing newline.
func (r Record) Serialize() []byte {
	var buf []byte
	for _, f := range r.Fields {
		buf = f.AppendTo(buf)
	}
	buf = append(buf, '\n')
	return buf
}

// Clone returns an owned, deep copy of r.
func (r Record) Clone() Record {
	out := Record{Fields: make([]Field, len(r.Fields))}
	for i, f := range r.Fields {
		out.Fields[i] = f.Clone()
	}
	return out
}

// FieldsWithTag returns, in record order, the fields whose tag equals
// tag.
func (r Record) FieldsWithTag(tag Tag) []Field {
	var out []Field
	for _, f := range r.Fields {
		if f.Tag == tag {
			out = append(out, f)
		}
	}
	return out
}
