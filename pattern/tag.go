// Package pattern implements the tag and occurrence matchers (C3):
// class-set patterns over a field's 4-byte tag, and the five occurrence
// matcher forms. Both are compiled once from source syntax and reused
// across many records; neither allocates during Matches.
package pattern

import (
	"fmt"

	"github.com/dnb-pica/picabatch/record"
)

// slot is the allowed byte set for one of a tag's four positions: either
// the wildcard ".", a single literal byte, or a bracketed
// alternation/range such as "[abc]", "[a-c]" or "[a-cx]".
type slot struct {
	wildcard bool
	ranges   []byteRange
}

type byteRange struct{ lo, hi byte }

func (s slot) matches(b byte) bool {
	if s.wildcard {
		return true
	}
	for _, r := range s.ranges {
		if b >= r.lo && b <= r.hi {
			return true
		}
	}
	return false
}

func (s slot) String() string {
	if s.wildcard {
		return "."
	}
	if len(s.ranges) == 1 && s.ranges[0].lo == s.ranges[0].hi {
		return string(rune(s.ranges[0].lo))
	}
	out := "["
	for _, r := range s.ranges {
		if r.lo == r.hi {
			out += string(rune(r.lo))
		} else {
			out += string(rune(r.lo)) + "-" + string(rune(r.hi))
		}
	}
	return out + "]"
}

// slotCharsets is the full character set allowed at each tag position
// before narrowing by the pattern (§4.2).
var slotCharsets = [4]string{"012", "0123456789", "0123456789", "ABCDEFGHIJKLMNOPQRSTUVWXYZ@"}

// Tag is a compiled tag matcher: four slots tested independently.
type Tag struct {
	slots [4]slot
	src   string
}

// CompileTag compiles a tag pattern. src must be exactly 4 tokens long,
// where a token is "." or a single allowed char or a "[...]" group; each
// slot's allowed bytes must lie within that position's base character
// set (§4.2).
func CompileTag(src string) (Tag, error) {
	var t Tag
	t.src = src
	pos := 0
	for slotIdx := 0; slotIdx < 4; slotIdx++ {
		if pos >= len(src) {
			return Tag{}, fmt.Errorf("pattern: tag %q: too few slots", src)
		}
		var s slot
		var err error
		s, pos, err = parseSlot(src, pos, slotCharsets[slotIdx])
		if err != nil {
			return Tag{}, fmt.Errorf("pattern: tag %q: slot %d: %w", src, slotIdx, err)
		}
		t.slots[slotIdx] = s
	}
	if pos != len(src) {
		return Tag{}, fmt.Errorf("pattern: tag %q: trailing input after 4 slots", src)
	}
	return t, nil
}

// MustCompileTag is CompileTag but panics on error; for tests and
// compile-time constants.
func MustCompileTag(src string) Tag {
	t, err := CompileTag(src)
	if err != nil {
		panic(err)
	}
	return t
}

// Matches reports whether tag satisfies every slot of the pattern.
func (t Tag) Matches(tag record.Tag) bool {
	for i := 0; i < 4; i++ {
		if !t.slots[i].matches(tag[i]) {
			return false
		}
	}
	return true
}

// String renders the pattern back to its source syntax.
func (t Tag) String() string {
	out := ""
	for _, s := range t.slots {
		out += s.String()
	}
	return out
}

func parseSlot(src string, pos int, charset string) (slot, int, error) {
	if pos >= len(src) {
		return slot{}, pos, fmt.Errorf("unexpected end of pattern")
	}
	if src[pos] == '.' {
		return slot{wildcard: true}, pos + 1, nil
	}
	if src[pos] == '[' {
		end := -1
		for i := pos + 1; i < len(src); i++ {
			if src[i] == ']' {
				end = i
				break
			}
		}
		if end < 0 {
			return slot{}, pos, fmt.Errorf("unterminated '['")
		}
		body := src[pos+1 : end]
		ranges, err := parseBracketBody(body, charset)
		if err != nil {
			return slot{}, pos, err
		}
		return slot{ranges: ranges}, end + 1, nil
	}
	b := src[pos]
	if !containsByte(charset, b) {
		return slot{}, pos, fmt.Errorf("byte %q is not in this slot's character set %q", b, charset)
	}
	return slot{ranges: []byteRange{{b, b}}}, pos + 1, nil
}

func parseBracketBody(body, charset string) ([]byteRange, error) {
	if body == "" {
		return nil, fmt.Errorf("empty bracket expression")
	}
	var out []byteRange
	i := 0
	for i < len(body) {
		lo := body[i]
		if i+2 < len(body) && body[i+1] == '-' {
			hi := body[i+2]
			if hi <= lo {
				return nil, fmt.Errorf("range %q-%q is empty or reversed", lo, hi)
			}
			out = append(out, byteRange{lo, hi})
			i += 3
			continue
		}
		out = append(out, byteRange{lo, lo})
		i++
	}
	for _, r := range out {
		if !containsByte(charset, r.lo) || !containsByte(charset, r.hi) {
			return nil, fmt.Errorf("range %q-%q falls outside this slot's character set %q", r.lo, r.hi, charset)
		}
	}
	return out, nil
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}
