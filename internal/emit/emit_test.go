package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/kimchilang/internal/parser"
	"github.com/oxhq/kimchilang/internal/scanner"
)

func mustEmit(t *testing.T, src string) string {
	t.Helper()
	toks, err := scanner.Scan(src, scanner.Config{})
	require.NoError(t, err)
	prog, err := parser.Parse(toks)
	require.NoError(t, err)
	out, err := New(Options{}).Emit(prog)
	require.NoError(t, err)
	return out
}

func TestHexLiteralDecIsDeepFrozen(t *testing.T) {
	out := mustEmit(t, "dec x = 0xFF")
	assert.Contains(t, out, "const x = _deepFreeze(0xFF);")
}

func TestFunctionDeclEmitsParenthesizedAddition(t *testing.T) {
	out := mustEmit(t, "fn add(a, b) { return a + b }")
	assert.Contains(t, out, "function add(a, b) {")
	assert.Contains(t, out, "return (a + b);")
}

func TestRangeExpandsToArrayFrom(t *testing.T) {
	out := mustEmit(t, "dec sum = 0..5")
	assert.Contains(t, out, "Array.from({ length: 5 - 0 }, (_, i) => 0 + i)")
}

func TestPipeNestsCallsLeftToRight(t *testing.T) {
	out := mustEmit(t, "fn double(n) { return n }\nfn addOne(n) { return n }\ndec r = 5 ~> double ~> addOne")
	assert.Contains(t, out, "addOne(double(5))")
}

func TestFlowComposesInSourceOrder(t *testing.T) {
	out := mustEmit(t, "fn double(n) { return n }\nfn addOne(n) { return n }\ntransform >> addOne double")
	assert.Contains(t, out, "const transform = (..._args) => double(addOne(..._args));")
}

func TestEnumAutoIncrementsAndResetsOnExplicitValue(t *testing.T) {
	out := mustEmit(t, "enum C { A, B = 10, C }")
	assert.Contains(t, out, "Object.freeze({ A: 0, B: 10, C: 11 })")
}

func TestSecretDecWrapsInitializerInSecretHelper(t *testing.T) {
	out := mustEmit(t, "secret dec k = \"s\"")
	assert.Contains(t, out, "const k = _deepFreeze(_secret(\"s\"));")
}

func TestDestructuringDecFreezesSourceBeforeDestructure(t *testing.T) {
	out := mustEmit(t, "dec obj = {foo: 1, bar: 2}\ndec {foo, bar: b} = obj")
	assert.Contains(t, out, "const { foo, bar: b } = _deepFreeze(obj);")
}

func TestIdentityComparisonEmitsIdTagCheck(t *testing.T) {
	out := mustEmit(t, "dec same = a is b")
	assert.Contains(t, out, "(a?._id === b?._id)")
}

func TestNullSafeMemberAccessChains(t *testing.T) {
	out := mustEmit(t, "dec v = a.b.c")
	assert.Contains(t, out, "a?.b?.c")
}

func TestMemoizedFunctionEmitsCachingIIFE(t *testing.T) {
	out := mustEmit(t, "memo fn slow(n) { return n }")
	assert.Contains(t, out, "const slow = (() => {")
	assert.Contains(t, out, "const _cache = new Map();")
	assert.Contains(t, out, "JSON.stringify(args)")
}

func TestExposedDecAndFunctionAppearInReturnedObject(t *testing.T) {
	out := mustEmit(t, "expose dec greeting = \"hi\"\nexpose fn greet() { return greeting }\ndec hidden = 1")
	assert.Contains(t, out, "return { greeting, greet };")
	assert.NotContains(t, out, "hidden }")
}

func TestRequiredArgMissingThrows(t *testing.T) {
	out := mustEmit(t, "arg !name")
	assert.Contains(t, out, "if (!(\"name\" in _opts)) {")
	assert.Contains(t, out, "throw error.create('MissingArgument', \"arg 'name' is required\");")
}

func TestDepStmtResolvesOverrideBeforeImportDefault(t *testing.T) {
	out := mustEmit(t, "as db dep app.storage.db")
	assert.Contains(t, out, "import _dep_db from './app/storage/db.km';")
	assert.Contains(t, out, "const db = _opts[\"app.storage.db\"] || _dep_db();")
}

func TestDescribeAndTestBlocksEmitRuntimeCalls(t *testing.T) {
	out := mustEmit(t, "describe \"math\" { test \"adds\" { assert(1 + 1 == 2) } }")
	assert.Contains(t, out, `_describe("math", () => {`)
	assert.Contains(t, out, `_test("adds", () => {`)
	assert.Contains(t, out, "_assert(((1 + 1) === 2));")
}

func TestExpectStmtEmitsMatcherCall(t *testing.T) {
	out := mustEmit(t, "expect(1 + 1).toBe(2)")
	assert.Contains(t, out, "_expect((1 + 1)).toBe(2);")
}

func TestPatternMatchInFunctionReturnsEachArm(t *testing.T) {
	out := mustEmit(t, "fn classify(n) {\n  |n == 0| => { print(\"zero\") }\n  |n > 0| => { print(\"pos\") }\n}")
	assert.Contains(t, out, "if ((n === 0)) {")
	assert.Contains(t, out, "} else if ((n > 0)) {")
	assert.Contains(t, out, "return;")
}

func TestRegexPatternMatchOmitsNilSubjectArgument(t *testing.T) {
	out := mustEmit(t, "/^a/ => { print(1) }\n/^b/ => { print(2) }")
	assert.Contains(t, out, ".test()")
	assert.NotContains(t, out, ".test(undefined)")
}

func TestPreambleRuntimeHelpersArePresent(t *testing.T) {
	out := mustEmit(t, "dec x = 1")
	assert.Contains(t, out, "globalThis._deepFreeze")
	assert.Contains(t, out, "globalThis._secret")
	assert.Contains(t, out, "globalThis._shell")
	assert.Contains(t, out, "globalThis._runTests")
}
