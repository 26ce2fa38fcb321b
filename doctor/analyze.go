package doctor

import (
	"regexp"
	"strings"

	"ralfix/scanner"
)

// bodyFlags is what a function body analysis produces: which asset
// capabilities the body exercises, whether it writes mutable state, and
// whether it already guards the caller.
type bodyFlags struct {
	assetsInContract  bool
	preapprovedAssets bool
	updateFields      bool
	checkCaller       bool
	transferToSelf    bool
}

var (
	selfTokenRemainingRe = regexp.MustCompile(`tokenRemaining!\s*\(\s*selfAddress!\s*\(\s*\)`)
	selfBurnRe           = regexp.MustCompile(`burnToken!\s*\(\s*selfAddress!\s*\(\s*\)`)
	assetCreateRe        = regexp.MustCompile(`createContract!\s*\{`)
	assetCreateSubRe     = regexp.MustCompile(`createSubContract!\s*\{`)
	bareInsertRe         = regexp.MustCompile(`\w+\.insert!\s*\(`)
	bareRemoveRe         = regexp.MustCompile(`\w+\.remove!\s*\(`)
)

// analyzeBody inspects a function body and reports which @using
// capabilities it needs. fields are the owning contract's mutable field
// names, mappings its mapping names plus any external hints. The body is
// analyzed with string literals and comments blanked out, so builtin
// names inside strings never trigger a capability.
func analyzeBody(body string, fields, mappings map[string]bool) bodyFlags {
	var a bodyFlags
	clean := scanner.StripLiterals(body)

	// Reading or moving the contract's own assets.
	if selfTokenRemainingRe.MatchString(clean) {
		a.assetsInContract = true
	}
	if strings.Contains(clean, "transferTokenFromSelf!") {
		a.assetsInContract = true
	}

	// Pulling assets in from the caller.
	if strings.Contains(clean, "transferTokenToSelf!") {
		a.preapprovedAssets = true
		a.transferToSelf = true
	}
	if strings.Contains(clean, "transferToken!") &&
		!strings.Contains(clean, "transferTokenFromSelf!") &&
		!strings.Contains(clean, "transferTokenToSelf!") {
		a.preapprovedAssets = true
	}

	// Burning the contract's own tokens is an assetsInContract operation;
	// burning anything else spends the caller's approved assets.
	if strings.Contains(clean, "burnToken!") {
		if selfBurnRe.MatchString(clean) {
			a.assetsInContract = true
		} else {
			a.preapprovedAssets = true
		}
	}
	if strings.Contains(clean, "lockApprovedAssets!") {
		a.preapprovedAssets = true
	}

	// Contract creation with an asset block funds the new contract from
	// approved assets. Map insertion pays the entry deposit the same way.
	if assetCreateRe.MatchString(clean) || assetCreateSubRe.MatchString(clean) {
		a.preapprovedAssets = true
	}
	if strings.Contains(clean, "insert!") {
		a.preapprovedAssets = true
	}

	// A mutable field assignment needs updateFields at any nesting depth.
	for field := range fields {
		if fieldAssigned(clean, field) {
			a.updateFields = true
			break
		}
	}

	// Mapping writes count only at the function's main scope. Writes
	// inside nested blocks belong to branches the compiler checks
	// separately.
	for name := range mappings {
		if mappingTouched(clean, name) {
			a.updateFields = true
			break
		}
	}
	if len(mappings) == 0 {
		if mainScopeMatch(clean, bareInsertRe) || mainScopeMatch(clean, bareRemoveRe) {
			a.updateFields = true
		}
	}

	if strings.Contains(clean, "checkCaller!") {
		a.checkCaller = true
	}
	return a
}

// fieldAssigned reports whether any line of clean assigns to field: the
// field name appears, as a whole word, left of a plain = that is not part
// of ==, !=, <= or >=.
func fieldAssigned(clean, field string) bool {
	fieldRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(field) + `\b`)
	for _, line := range strings.Split(clean, "\n") {
		if !strings.Contains(line, field) || !strings.Contains(line, "=") {
			continue
		}
		for idx := 0; idx < len(line); idx++ {
			if line[idx] != '=' {
				continue
			}
			if idx+1 < len(line) && line[idx+1] == '=' {
				idx++
				continue
			}
			if idx > 0 && strings.IndexByte("!<>=", line[idx-1]) != -1 {
				continue
			}
			if fieldRe.MatchString(line[:idx]) {
				return true
			}
		}
	}
	return false
}

// mappingTouched reports a main-scope write to the named mapping:
// subscript assignment, insert! or remove!.
func mappingTouched(clean, name string) bool {
	q := regexp.QuoteMeta(name)
	for _, pat := range []string{
		`\b` + q + `\s*\[.*?\]\s*=[^=]`,
		`\b` + q + `\.insert!\s*\(`,
		`\b` + q + `\.remove!\s*\(`,
	} {
		if mainScopeMatch(clean, regexp.MustCompile(pat)) {
			return true
		}
	}
	return false
}

// mainScopeMatch reports whether re matches somewhere at brace depth zero
// of clean. Matches are found against the whole text first, so word
// boundaries in re see real neighboring bytes; only the match position is
// then checked for depth.
func mainScopeMatch(clean string, re *regexp.Regexp) bool {
	locs := re.FindAllStringIndex(clean, -1)
	if len(locs) == 0 {
		return false
	}
	depth := 0
	li := 0
	for i := 0; i < len(clean) && li < len(locs); i++ {
		for li < len(locs) && locs[li][0] == i {
			if depth == 0 {
				return true
			}
			li++
		}
		switch clean[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return false
}
