package doctor

import (
	"regexp"

	"ralfix/scanner"
)

// contractHeaderRe tolerates multi-line field lists and optional
// Abstract/extends/implements clauses. It matches up to and including the
// opening brace of the contract body.
var (
	contractHeaderRe = regexp.MustCompile(`(?s)(?:Abstract\s+)?Contract\s+(\w+)\s*\((.*?)\)\s*(?:extends[^{]*)?\s*(?:implements[^{]*)?\s*\{`)
	mutFieldRe       = regexp.MustCompile(`mut\s+(\w+)`)
	mappingDeclRe    = regexp.MustCompile(`mapping\s*\[[^\]]+\]\s+(\w+)`)
)

// contractIndex records, per contract name, the mutable field names from
// the header parameter list and the mapping names declared in the body.
type contractIndex struct {
	fields   map[string]map[string]bool
	mappings map[string]map[string]bool
}

// indexContracts scans src for contract definitions. A contract whose body
// brace never closes still contributes its fields, with an empty mapping
// set.
func indexContracts(src string) *contractIndex {
	ix := &contractIndex{
		fields:   make(map[string]map[string]bool),
		mappings: make(map[string]map[string]bool),
	}
	for _, m := range contractHeaderRe.FindAllStringSubmatchIndex(src, -1) {
		name := src[m[2]:m[3]]
		params := src[m[4]:m[5]]

		fields := make(map[string]bool)
		for _, f := range mutFieldRe.FindAllStringSubmatch(params, -1) {
			fields[f[1]] = true
		}
		ix.fields[name] = fields

		maps := make(map[string]bool)
		if end := scanner.MatchBrace(src, m[1]-1); end != -1 {
			for _, d := range mappingDeclRe.FindAllStringSubmatch(src[m[1]:end], -1) {
				maps[d[1]] = true
			}
		}
		ix.mappings[name] = maps
	}
	return ix
}

// containingContract returns the name of the contract whose body contains
// pos, or "" when pos sits outside every contract. When headers nest or
// overlap the latest-starting candidate wins. A contract whose closing
// brace is missing extends to the end of input.
func containingContract(src string, pos int) string {
	best := -1
	name := ""
	for _, m := range contractHeaderRe.FindAllStringSubmatchIndex(src, -1) {
		if m[1] > pos {
			continue
		}
		end := scanner.MatchBrace(src, m[1]-1)
		if end != -1 && end < pos {
			continue
		}
		if m[0] > best {
			best = m[0]
			name = src[m[2]:m[3]]
		}
	}
	return name
}
