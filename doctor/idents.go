package doctor

import (
	"strings"

	"ralfix/scanner"
)

// fixUnderscores rewrites leading-underscore identifiers to the trailing
// form Ralph expects: _foo becomes foo_. String literals and comments are
// carried over byte for byte, a bare _ stays a wildcard, and __x style
// names are left alone. Rewritten text is never re-scanned, so the pass
// cannot cascade.
func fixUnderscores(src string) string {
	var out strings.Builder
	out.Grow(len(src))
	sc := scanner.New(src)
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if !sc.InCode() || ch != '_' {
			out.WriteByte(ch)
			continue
		}
		i := sc.Pos()
		if i > 0 && isWordByte(src[i-1]) {
			// Mid-identifier underscore.
			out.WriteByte(ch)
			continue
		}
		if i+1 >= len(src) || !isAlnumByte(src[i+1]) {
			// Bare _ or a __x name.
			out.WriteByte(ch)
			continue
		}
		j := i + 1
		for j < len(src) && isWordByte(src[j]) {
			j++
		}
		out.WriteString(src[i+1 : j])
		out.WriteByte('_')
		sc.Skip(j - i - 1)
	}
	return out.String()
}

func isWordByte(b byte) bool {
	return b == '_' || isAlnumByte(b)
}

func isAlnumByte(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
