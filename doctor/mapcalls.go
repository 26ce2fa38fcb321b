package doctor

import "regexp"

var mapInsertBraceRe = regexp.MustCompile(`\.insert!\{[^}]*\}\(`)

// fixMapInsert drops the spurious brace argument generators put between
// insert! and its call parens: m.insert!{depositor}(key, value) becomes
// m.insert!(key, value).
func fixMapInsert(src string) string {
	return mapInsertBraceRe.ReplaceAllString(src, ".insert!(")
}
