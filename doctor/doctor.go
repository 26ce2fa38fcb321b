// Package doctor repairs recurring compile errors in generated Ralph
// contract source. It works on raw text: a handful of targeted passes fix
// what generators reliably get wrong (trailing enum commas, leading
// underscore identifiers, braced insert! call syntax, missing or stale
// @using annotations) without parsing the language.
//
// Every pass degrades gracefully. Malformed or truncated source is the
// common case here, so a pass that cannot make sense of its input leaves
// it unchanged instead of failing.
package doctor

// Fix runs all repair passes over src and returns the repaired source.
// The optional mappings name map fields declared outside src, used when
// fixing fragments that lack their contract header.
//
// Fix never fails. Input it cannot repair comes back as close to
// untouched as the passes allow.
func Fix(src string, mappings ...string) string {
	hints := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		if m != "" {
			hints[m] = true
		}
	}

	// The index is built from the original buffer. Later passes only
	// rewrite function interiors and annotation lines, so contract names,
	// field names and mapping names stay valid.
	ix := indexContracts(src)

	src = fixEnums(src)
	src = fixUnderscores(src)
	src = fixMapInsert(src)
	return fixAnnotations(src, ix, hints)
}
