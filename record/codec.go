package record

import "fmt"

// codec is a tiny single-pass scanner over a PICA+ byte buffer. It never
// allocates for subfield values: every Value it returns aliases buf.
type codec struct {
	buf []byte
	pos int
}

// ParseSubfield parses exactly one subfield starting at the beginning of
// buf: 0x1F, a valid code byte, then a maximal run of bytes that are
// neither 0x1E nor 0x1F. It returns the subfield and the number of bytes
// consumed.
func ParseSubfield(buf []byte) (Subfield, int, error) {
	c := &codec{buf: buf}
	sf, err := c.parseSubfield()
	if err != nil {
		return Subfield{}, 0, err
	}
	return sf, c.pos, nil
}

// ParseField parses exactly one field starting at the beginning of buf: a
// valid tag, an optional "/occurrence", one 0x20, zero or more subfields,
// then 0x1E. It returns the field and the number of bytes consumed.
func ParseField(buf []byte) (Field, int, error) {
	c := &codec{buf: buf}
	f, err := c.parseField()
	if err != nil {
		return Field{}, 0, err
	}
	return f, c.pos, nil
}

// Parse parses buf as a complete record: one or more fields followed by
// an optional trailing 0x0A, with no trailing garbage. A record is
// accepted or rejected atomically; there is no partial acceptance.
func Parse(buf []byte) (Record, error) {
	c := &codec{buf: buf}
	return c.parseRecord()
}

func (c *codec) eof() bool { return c.pos >= len(c.buf) }

func (c *codec) peek() (byte, bool) {
	if c.eof() {
		return 0, false
	}
	return c.buf[c.pos], true
}

func (c *codec) errorf(context string, lexemeFrom int) error {
	end := lexemeFrom + 1
	if end > len(c.buf) {
		end = len(c.buf)
	}
	lexeme := ""
	if lexemeFrom < len(c.buf) {
		lexeme = string(c.buf[lexemeFrom:end])
	}
	return newParseError(lexemeFrom, context, lexeme)
}

func (c *codec) parseSubfield() (Subfield, error) {
	start := c.pos
	b, ok := c.peek()
	if !ok || b != subfieldSeparator {
		return Subfield{}, c.errorf("expected subfield separator 0x1F", start)
	}
	c.pos++

	codeByte, ok := c.peek()
	if !ok {
		return Subfield{}, c.errorf("expected subfield code after 0x1F", c.pos)
	}
	if !isCodeByte(codeByte) {
		return Subfield{}, c.errorf("invalid subfield code", c.pos)
	}
	code := Code(codeByte)
	c.pos++

	valueStart := c.pos
	for {
		b, ok := c.peek()
		if !ok || b == recordSeparator || b == subfieldSeparator {
			break
		}
		c.pos++
	}
	value := Value(c.buf[valueStart:c.pos])
	return Subfield{Code: code, Value: value}, nil
}

func (c *codec) parseTag() (Tag, error) {
	start := c.pos
	if len(c.buf)-c.pos < 4 {
		return Tag{}, c.errorf("expected 4-byte tag", start)
	}
	s := string(c.buf[c.pos : c.pos+4])
	tag, err := NewTag(s)
	if err != nil {
		return Tag{}, c.errorf(fmt.Sprintf("invalid tag: %v", err), start)
	}
	c.pos += 4
	return tag, nil
}

func (c *codec) parseOccurrence() (Occurrence, error) {
	b, ok := c.peek()
	if !ok || b != '/' {
		return NoOccurrence, nil
	}
	start := c.pos
	c.pos++ // consume '/'
	digitsStart := c.pos
	for {
		b, ok := c.peek()
		if !ok || b < '0' || b > '9' {
			break
		}
		c.pos++
		if c.pos-digitsStart == 3 {
			break
		}
	}
	digits := string(c.buf[digitsStart:c.pos])
	occ, err := NewOccurrence(digits)
	if err != nil {
		return NoOccurrence, c.errorf(fmt.Sprintf("invalid occurrence: %v", err), start)
	}
	return occ, nil
}

func (c *codec) parseField() (Field, error) {
	tag, err := c.parseTag()
	if err != nil {
		return Field{}, err
	}
	occ, err := c.parseOccurrence()
	if err != nil {
		return Field{}, err
	}
	b, ok := c.peek()
	if !ok || b != ' ' {
		return Field{}, c.errorf("expected space after tag/occurrence", c.pos)
	}
	c.pos++

	var subfields []Subfield
	for {
		b, ok := c.peek()
		if !ok {
			return Field{}, c.errorf("unterminated field: expected 0x1E", c.pos)
		}
		if b == recordSeparator {
			c.pos++
			break
		}
		sf, err := c.parseSubfield()
		if err != nil {
			return Field{}, err
		}
		subfields = append(subfields, sf)
	}
	return Field{Tag: tag, Occurrence: occ, Subfields: subfields}, nil
}

func (c *codec) parseRecord() (Record, error) {
	var fields []Field
	for {
		if c.eof() {
			break
		}
		if b, _ := c.peek(); b == '\n' {
			break
		}
		f, err := c.parseField()
		if err != nil {
			return Record{}, err
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return Record{}, c.errorf("a record must contain at least one field", c.pos)
	}
	if b, ok := c.peek(); ok && b == '\n' {
		c.pos++
	}
	if !c.eof() {
		return Record{}, c.errorf("trailing data after record", c.pos)
	}
	return Record{Fields: fields}, nil
}
