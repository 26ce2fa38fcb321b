package doctor

import (
	"regexp"
	"strings"

	"ralfix/scanner"
)

// funcHeaderRe matches a complete function header up to and including the
// opening brace: an optional existing @using annotation, optional pub, the
// name, the parameter list and an optional return clause.
//
// Submatch index layout (FindAllStringSubmatchIndex):
//
//	m[2]:m[3] existing annotation (may be empty)
//	m[4]:m[5] "pub " (absent when m[4] == -1)
//	m[6]:m[7] function name
//	m[8]:m[9] parameter list
var funcHeaderRe = regexp.MustCompile(`((?:@using\([^)]+\)\s*)?)(pub\s+)?fn\s+(\w+)\s*\(([^)]*)\)\s*(?:->\s*[^{]+)?\s*\{`)

// fixAnnotations rewrites the @using annotation of every function in code
// to match what its body actually does. Bodies are preserved byte for
// byte; only the annotation line and the header line spacing are rebuilt.
// When a function's closing brace cannot be found the remainder of the
// buffer is emitted untouched and the pass stops.
func fixAnnotations(code string, ix *contractIndex, hints map[string]bool) string {
	var out strings.Builder
	out.Grow(len(code))
	last := 0

	for _, m := range funcHeaderRe.FindAllStringSubmatchIndex(code, -1) {
		if m[0] < last {
			// Header text inside an already-emitted body, e.g. a
			// function-shaped string. Skip it.
			continue
		}
		bodyStart := m[1]
		bodyEnd := scanner.MatchBrace(code, bodyStart-1)
		if bodyEnd == -1 {
			out.WriteString(code[last:])
			return out.String()
		}
		body := code[bodyStart:bodyEnd]

		var fields, maps map[string]bool
		if name := containingContract(code, m[0]); name != "" {
			fields = ix.fields[name]
			maps = ix.mappings[name]
		}
		flags := analyzeBody(body, fields, unionSet(maps, hints))

		existing := code[m[2]:m[3]]
		isPub := m[4] != -1
		annot := mergeAnnotation(flags, existing, isPub)

		lineStart := strings.LastIndexByte(code[:m[0]], '\n') + 1
		if lineStart < last {
			lineStart = last
		}
		indent := headerIndent(code, m[3])
		header := strings.TrimLeft(code[m[3]:m[1]], " \t\r\n")

		out.WriteString(code[last:lineStart])
		if annot != "" {
			out.WriteString(indent)
			out.WriteString(annot)
			out.WriteByte('\n')
		}
		out.WriteString(indent)
		out.WriteString(header)
		out.WriteString(body)
		out.WriteByte('}')

		last = bodyEnd + 1
	}
	out.WriteString(code[last:])
	return out.String()
}

// headerIndent returns the leading whitespace of the line containing pos.
// pos points at the start of the pub/fn keywords, so an annotation on its
// own line above never contributes the indent.
func headerIndent(code string, pos int) string {
	start := strings.LastIndexByte(code[:pos], '\n') + 1
	end := start
	for end < len(code) && (code[end] == ' ' || code[end] == '\t') {
		end++
	}
	return code[start:end]
}

func unionSet(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

var usingRe = regexp.MustCompile(`@using\((.*)\)`)

// annotProps is an insertion-ordered key/value set for @using properties.
// Existing keys keep their position when overwritten; new keys append.
type annotProps struct {
	keys []string
	vals map[string]string
}

func parseAnnotation(existing string) *annotProps {
	p := &annotProps{vals: make(map[string]string)}
	m := usingRe.FindStringSubmatch(existing)
	if m == nil {
		return p
	}
	for _, part := range strings.Split(m[1], ",") {
		if k, v, ok := strings.Cut(part, "="); ok {
			p.set(strings.TrimSpace(k), strings.TrimSpace(v))
		}
	}
	return p
}

func (p *annotProps) set(k, v string) {
	if _, ok := p.vals[k]; !ok {
		p.keys = append(p.keys, k)
	}
	p.vals[k] = v
}

func (p *annotProps) del(k string) {
	if _, ok := p.vals[k]; !ok {
		return
	}
	delete(p.vals, k)
	for i, key := range p.keys {
		if key == k {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

func (p *annotProps) get(k string) string { return p.vals[k] }

// mergeAnnotation folds the analysis flags into any existing annotation
// and renders the result, or "" when no properties remain.
//
// Capabilities the body earns are set to true. updateFields and
// payToContractOnly are kept only while justified, in both directions: a
// stale value from the existing annotation is dropped. A public function
// that earns a capability without calling checkCaller! gets
// checkExternalCaller = false; a private one loses it.
func mergeAnnotation(a bodyFlags, existing string, public bool) string {
	p := parseAnnotation(existing)

	if a.assetsInContract {
		p.set("assetsInContract", "true")
	}
	if a.preapprovedAssets {
		p.set("preapprovedAssets", "true")
	}
	if a.updateFields {
		p.set("updateFields", "true")
	} else {
		p.del("updateFields")
	}

	if p.get("preapprovedAssets") == "true" &&
		p.get("assetsInContract") != "true" &&
		a.transferToSelf {
		p.set("payToContractOnly", "true")
	} else {
		p.del("payToContractOnly")
	}

	needsCheck := p.get("assetsInContract") == "true" ||
		p.get("updateFields") == "true" ||
		p.get("preapprovedAssets") == "true"
	if needsCheck && !a.checkCaller {
		if public {
			p.set("checkExternalCaller", "false")
		} else {
			p.del("checkExternalCaller")
		}
	}

	if len(p.keys) == 0 {
		return ""
	}
	pairs := make([]string, len(p.keys))
	for i, k := range p.keys {
		pairs[i] = k + " = " + p.vals[k]
	}
	return "@using(" + strings.Join(pairs, ", ") + ")"
}
