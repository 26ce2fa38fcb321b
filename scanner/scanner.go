// Package scanner provides string-boundary-aware scanning primitives for
// Ralph source text. It encapsulates the tracking of double-quoted string
// literals, b`...` byte-string literals, and // line comments, eliminating
// the need for every repair pass to re-implement this logic.
//
// Ralph has no block comments and no single-quoted strings; the only state
// transitions are CODE→string on an unescaped `"` or on the two-byte b`
// opener, and CODE→comment on //. Unterminated literals consume to end of
// input: generated source is routinely truncated and the scanner must keep
// going rather than fail.
package scanner

// closingKind tracks which type of literal was just closed, so the closing
// delimiter itself is still classified as part of the literal.
type closingKind byte

const (
	noClosing closingKind = iota
	closingDouble
	closingBacktick
)

// CodeScanner iterates byte-by-byte over source text, tracking literal
// boundaries and escape sequences. Callers check InCode() instead of
// maintaining their own inString/inComment/escaped flags.
//
// InString() returns true for the entire literal span including both the
// opening and closing delimiters; for byte strings the span starts at the
// b prefix.
type CodeScanner struct {
	src       string
	pos       int
	line      int
	inDbl     bool
	inBt      bool
	inComment bool
	escaped   bool
	btOpening bool // the b of b` was just seen; the next byte is the opening backtick
	closing   closingKind
}

// New creates a CodeScanner for the given source text.
// Call Next() to advance to the first byte.
func New(src string) *CodeScanner {
	return &CodeScanner{src: src, pos: -1, line: 1}
}

// Next advances to the next byte, updating literal/escape state.
// Returns the byte and true, or (0, false) at end of input.
func (s *CodeScanner) Next() (byte, bool) {
	s.closing = noClosing
	s.pos++
	if s.pos >= len(s.src) {
		return 0, false
	}
	ch := s.src[s.pos]
	if ch == '\n' {
		s.line++
	}

	if s.inComment {
		if ch == '\n' {
			// The newline terminates the comment and belongs to code.
			s.inComment = false
		}
		return ch, true
	}

	if s.inBt {
		if s.btOpening {
			// The opening backtick right after the b prefix.
			s.btOpening = false
		} else if ch == '`' {
			s.inBt = false
			s.closing = closingBacktick
		}
		return ch, true
	}

	if s.escaped {
		s.escaped = false
		return ch, true
	}
	if ch == '\\' && s.inDbl {
		s.escaped = true
		return ch, true
	}
	if ch == '"' {
		if s.inDbl {
			s.closing = closingDouble
		}
		s.inDbl = !s.inDbl
		return ch, true
	}
	if s.inDbl {
		return ch, true
	}

	// Code state from here on.
	if ch == 'b' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '`' {
		s.inBt = true
		s.btOpening = true
		return ch, true
	}
	if ch == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/' {
		s.inComment = true
		return ch, true
	}
	return ch, true
}

// InString reports whether the current position is inside a string literal
// (double-quoted or b`...`), including the delimiters and the b prefix.
func (s *CodeScanner) InString() bool {
	return s.inDbl || s.inBt || s.closing != noClosing
}

// InComment reports whether the current position is inside a // comment.
// The terminating newline is not part of the comment.
func (s *CodeScanner) InComment() bool { return s.inComment }

// InCode reports whether the current position is outside all literals
// and comments.
func (s *CodeScanner) InCode() bool { return !s.InString() && !s.inComment }

// Pos returns the current byte offset (the position of the last byte
// returned by Next). Returns -1 before the first call to Next.
func (s *CodeScanner) Pos() int { return s.pos }

// Line returns the current 1-based line number.
func (s *CodeScanner) Line() int { return s.line }

// Src returns the full source text being scanned.
func (s *CodeScanner) Src() string { return s.src }

// Peek returns the next byte without advancing, or (0, false) at end.
func (s *CodeScanner) Peek() (byte, bool) {
	if s.pos+1 >= len(s.src) {
		return 0, false
	}
	return s.src[s.pos+1], true
}

// Skip advances past n bytes without returning them. Literal/escape state
// is updated for each skipped byte. Returns the number of bytes actually
// skipped (may be less than n at end of input).
func (s *CodeScanner) Skip(n int) int {
	skipped := 0
	for i := 0; i < n; i++ {
		if _, ok := s.Next(); !ok {
			break
		}
		skipped++
	}
	return skipped
}

// MatchBrace returns the index of the '}' matching the '{' at open,
// skipping braces that appear inside double-quoted strings or // comments.
// Returns -1 when no match exists (truncated or malformed source); callers
// treat that as a normal condition, not an error.
func MatchBrace(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '"':
			for i++; i < len(src); i++ {
				if src[i] == '"' && src[i-1] != '\\' {
					break
				}
			}
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				for i += 2; i < len(src) && src[i] != '\n'; i++ {
				}
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// StripLiterals returns src with every byte belonging to a string literal,
// b`...` byte string, or // comment replaced by a space. Newlines that
// terminate comments are kept, so byte offsets and line structure are
// identical between input and output — positions computed on the stripped
// view are valid in the original.
func StripLiterals(src string) string {
	buf := make([]byte, 0, len(src))
	sc := New(src)
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if sc.InCode() {
			buf = append(buf, ch)
		} else {
			buf = append(buf, ' ')
		}
	}
	return string(buf)
}
