package doctor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func TestAnalyzeTransferFromSelf(t *testing.T) {
	a := analyzeBody("\n  transferTokenFromSelf!(to, tokenId, 100)\n", nil, nil)
	assert.True(t, a.assetsInContract)
	assert.False(t, a.preapprovedAssets)
}

func TestAnalyzeTransferToSelf(t *testing.T) {
	a := analyzeBody("\n  transferTokenToSelf!(from, tokenId, 100)\n", nil, nil)
	assert.True(t, a.preapprovedAssets)
	assert.True(t, a.transferToSelf)
	assert.False(t, a.assetsInContract)
}

func TestAnalyzeGenericTransferToken(t *testing.T) {
	a := analyzeBody("\n  transferToken!(from, to, tokenId, 100)\n", nil, nil)
	assert.True(t, a.preapprovedAssets)
}

func TestAnalyzeTokenRemainingSelf(t *testing.T) {
	a := analyzeBody("\n  return tokenRemaining!(selfAddress!(), tokenId)\n", nil, nil)
	assert.True(t, a.assetsInContract)
}

func TestAnalyzeBurnSelfVersusOther(t *testing.T) {
	self := analyzeBody("\n  burnToken!(selfAddress!(), tokenId, 100)\n", nil, nil)
	assert.True(t, self.assetsInContract)
	assert.False(t, self.preapprovedAssets)

	other := analyzeBody("\n  burnToken!(caller, tokenId, 100)\n", nil, nil)
	assert.True(t, other.preapprovedAssets)
	assert.False(t, other.assetsInContract)
}

func TestAnalyzeCreateContractAssetBlock(t *testing.T) {
	a := analyzeBody("\n  return createContract!{caller -> ALPH: 1 alph}(bytecode, #, #)\n", nil, nil)
	assert.True(t, a.preapprovedAssets)
}

func TestAnalyzeFieldAssignmentAnyDepth(t *testing.T) {
	body := "\n  if (true) {\n    val = 1\n  } else {\n    val = 2\n  }\n"
	a := analyzeBody(body, set("val"), nil)
	assert.True(t, a.updateFields)
}

func TestAnalyzeComparisonIsNotAssignment(t *testing.T) {
	a := analyzeBody("\n  return val == 10\n", set("val"), nil)
	assert.False(t, a.updateFields)

	a = analyzeBody("\n  assert!(val >= 10, 1)\n  assert!(val != 3, 2)\n", set("val"), nil)
	assert.False(t, a.updateFields)
}

func TestAnalyzeMappingWriteMainScopeOnly(t *testing.T) {
	main := "\n  balances[sender] = balances[sender] - amount\n"
	a := analyzeBody(main, nil, set("balances"))
	assert.True(t, a.updateFields)

	nested := "\n  if (balances.contains!(sender)) {\n    balances[sender] = balances[sender] + amount\n  }\n"
	a = analyzeBody(nested, nil, set("balances"))
	assert.False(t, a.updateFields)
}

func TestAnalyzeMappingWordBoundary(t *testing.T) {
	// A longer identifier sharing the suffix is not a write to the mapping.
	a := analyzeBody("\n  xbalances[sender] = 1\n", nil, set("balances"))
	assert.False(t, a.updateFields)
}

func TestAnalyzeUnknownMappingFallback(t *testing.T) {
	a := analyzeBody("\n  tokenURIs.insert!(caller, index, uri)\n", nil, nil)
	assert.True(t, a.updateFields)
	assert.True(t, a.preapprovedAssets)

	nested := "\n  if (x) {\n    tokenURIs.remove!(caller)\n  }\n"
	a = analyzeBody(nested, nil, nil)
	assert.False(t, a.updateFields)
}

func TestAnalyzeBuiltinInsideStringIgnored(t *testing.T) {
	a := analyzeBody("\n  let s = \"transferTokenFromSelf!\"\n  // burnToken!(x, y, z)\n", nil, nil)
	assert.False(t, a.assetsInContract)
	assert.False(t, a.preapprovedAssets)
}

func TestAnalyzeCheckCaller(t *testing.T) {
	a := analyzeBody("\n  checkCaller!(callerAddress!() == owner, 1)\n  val = 2\n", set("val"), nil)
	assert.True(t, a.checkCaller)
	assert.True(t, a.updateFields)
}

func TestMergeAnnotationOrdering(t *testing.T) {
	got := mergeAnnotation(
		bodyFlags{preapprovedAssets: true, updateFields: true},
		"@using(preapprovedAssets = true)",
		true,
	)
	assert.Equal(t, "@using(preapprovedAssets = true, updateFields = true, checkExternalCaller = false)", got)
}

func TestMergeAnnotationDropsStaleUpdateFields(t *testing.T) {
	got := mergeAnnotation(bodyFlags{}, "@using(updateFields = true)", true)
	assert.Equal(t, "", got)
}

func TestMergeAnnotationDropsStalePayToContractOnly(t *testing.T) {
	got := mergeAnnotation(
		bodyFlags{preapprovedAssets: true},
		"@using(preapprovedAssets = true, payToContractOnly = true)",
		true,
	)
	assert.Equal(t, "@using(preapprovedAssets = true, checkExternalCaller = false)", got)
}

func TestMergeAnnotationPrivateLosesCheckExternalCaller(t *testing.T) {
	got := mergeAnnotation(
		bodyFlags{updateFields: true},
		"@using(checkExternalCaller = false)",
		false,
	)
	assert.Equal(t, "@using(updateFields = true)", got)
}

func TestMergeAnnotationEmptyInputNoFlags(t *testing.T) {
	assert.Equal(t, "", mergeAnnotation(bodyFlags{}, "", true))
}
