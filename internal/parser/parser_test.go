package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/kimchilang/internal/ast"
	"github.com/oxhq/kimchilang/internal/scanner"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := scanner.Scan(src, scanner.Config{})
	require.NoError(t, err)
	prog, err := Parse(toks)
	require.NoError(t, err)
	return prog
}

func TestParseDecAndReassignIsImmutabilityError(t *testing.T) {
	toks, err := scanner.Scan("dec x = 1\nx = 2", scanner.Config{})
	require.NoError(t, err)
	_, err = Parse(toks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x")
}

func TestParseNestedMemberReassignReportsFullPath(t *testing.T) {
	toks, err := scanner.Scan("dec obj = {}\nobj.inner.value = 1", scanner.Config{})
	require.NoError(t, err)
	_, err = Parse(toks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "obj.inner.value")
}

func TestParseMutableAssignmentSucceeds(t *testing.T) {
	prog := mustParse(t, "fn f() {\n  y = 1\n  y = 2\n}")
	require.Len(t, prog.Stmts, 1)
}

func TestParseBitwiseOrBinaryExpression(t *testing.T) {
	prog := mustParse(t, "dec x = a | b")
	require.Len(t, prog.Stmts, 1)
	dec := prog.Stmts[0].(*ast.DecBinding)
	bin, ok := dec.Init.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "|", bin.Op.String())
}

func TestParsePatternGuardMatch(t *testing.T) {
	prog := mustParse(t, "|x > 1| => { print(x) }\n|x <= 1| => { print(0) }")
	require.Len(t, prog.Stmts, 1)
	match := prog.Stmts[0].(*ast.PatternMatchStmt)
	assert.False(t, match.IsRegex)
	require.Len(t, match.Cases, 2)
}

func TestParseRegexPatternMatch(t *testing.T) {
	prog := mustParse(t, `/^a/ => { print(1) }` + "\n" + `/^b/ => { print(2) }`)
	require.Len(t, prog.Stmts, 1)
	match := prog.Stmts[0].(*ast.PatternMatchStmt)
	assert.True(t, match.IsRegex)
	require.Len(t, match.Cases, 2)
}

func TestParseFlowExpression(t *testing.T) {
	prog := mustParse(t, "dec result = transform >> addOne double")
	dec := prog.Stmts[0].(*ast.DecBinding)
	flow, ok := dec.Init.(*ast.Flow)
	require.True(t, ok)
	assert.Equal(t, "transform", flow.Target)
	assert.Equal(t, []string{"addOne", "double"}, flow.Functions)
}

func TestParseShiftStillWorksOutsideFlowContext(t *testing.T) {
	prog := mustParse(t, "dec result = (a) >> b")
	dec := prog.Stmts[0].(*ast.DecBinding)
	bin, ok := dec.Init.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ">>", bin.Op.String())
}

func TestParsePipeExpression(t *testing.T) {
	prog := mustParse(t, "dec result = x ~> f ~> g")
	dec := prog.Stmts[0].(*ast.DecBinding)
	outer, ok := dec.Init.(*ast.Pipe)
	require.True(t, ok)
	inner, ok := outer.Left.(*ast.Pipe)
	require.True(t, ok)
	assert.Equal(t, "x", inner.Left.(*ast.Identifier).Name)
}

func TestParseArrayDestructureWithHole(t *testing.T) {
	prog := mustParse(t, "dec [a, , b] = arr")
	dec := prog.Stmts[0].(*ast.DecBinding)
	pat, ok := dec.Pattern.(*ast.ArrayPattern)
	require.True(t, ok)
	require.Len(t, pat.Elements, 3)
	assert.True(t, pat.Elements[1].Hole)
	assert.Equal(t, "a", pat.Elements[0].Name)
	assert.Equal(t, "b", pat.Elements[2].Name)
}

func TestParseObjectDestructureWithAlias(t *testing.T) {
	prog := mustParse(t, "dec {a, b: x} = obj")
	dec := prog.Stmts[0].(*ast.DecBinding)
	pat, ok := dec.Pattern.(*ast.ObjectPattern)
	require.True(t, ok)
	require.Len(t, pat.Props, 2)
	assert.Equal(t, "a", pat.Props[0].Alias)
	assert.Equal(t, "x", pat.Props[1].Alias)
}

func TestParseElifRewritesToNestedElseIf(t *testing.T) {
	prog := mustParse(t, "if a {\n  print(1)\n} elif b {\n  print(2)\n} else {\n  print(3)\n}")
	top := prog.Stmts[0].(*ast.IfStmt)
	nested, ok := top.Else.(*ast.IfStmt)
	require.True(t, ok)
	assert.NotNil(t, nested.Else)
}

func TestParseExposeSecretDecModifiers(t *testing.T) {
	prog := mustParse(t, "expose secret dec apiKey = \"x\"")
	dec := prog.Stmts[0].(*ast.DecBinding)
	assert.True(t, dec.Exposed)
	assert.True(t, dec.Secret)
}

func TestParseRequiredArgAndEnv(t *testing.T) {
	prog := mustParse(t, "arg !name\nenv !HOME")
	argDecl := prog.Stmts[0].(*ast.ArgDecl)
	envDecl := prog.Stmts[1].(*ast.EnvDecl)
	assert.True(t, argDecl.Required)
	assert.Equal(t, "name", argDecl.Name)
	assert.True(t, envDecl.Required)
	assert.Equal(t, "HOME", envDecl.Name)
}

func TestParseDepStmtWithOverride(t *testing.T) {
	prog := mustParse(t, "as db dep services.storage.db({ timeout: 30 })")
	dep := prog.Stmts[0].(*ast.DepStmt)
	assert.Equal(t, "db", dep.Alias)
	assert.Equal(t, []string{"services", "storage", "db"}, dep.Path)
	require.NotNil(t, dep.Override)
}

func TestParseTemplateLiteralInterpolation(t *testing.T) {
	prog := mustParse(t, `dec greeting = "hi ${name}!"`)
	dec := prog.Stmts[0].(*ast.DecBinding)
	tmpl, ok := dec.Init.(*ast.TemplateLiteral)
	require.True(t, ok)
	require.Len(t, tmpl.Exprs, 1)
	ident, ok := tmpl.Exprs[0].(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "name", ident.Name)
	assert.Equal(t, []string{"hi ", "!"}, tmpl.Parts)
}

func TestParseShellBlockAcceptsSecretInputWithoutConsole(t *testing.T) {
	toks, err := scanner.Scan("secret arg token\nshell(token) { echo ${token} }", scanner.Config{})
	require.NoError(t, err)
	_, err = Parse(toks)
	require.NoError(t, err) // shell body doesn't reference console.*, so no leak
}

func TestParseJSBlockRejectsConsoleLeakOfSecretInput(t *testing.T) {
	toks, err := scanner.Scan(`secret arg token
js(token) { console.log(token) }`, scanner.Config{})
	require.NoError(t, err)
	_, err = Parse(toks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leaks secret")
}

func TestParseJSBlockReassemblesStrictEquality(t *testing.T) {
	prog := mustParse(t, `js { const ok = a === b && a !== c }`)
	block := prog.Stmts[0].(*ast.JSBlock)
	assert.Contains(t, block.Raw, "a === b")
	assert.Contains(t, block.Raw, "a !== c")
	assert.NotContains(t, block.Raw, "== =")
	assert.NotContains(t, block.Raw, "!= =")
}

func TestParseArrowFunctionSingleParam(t *testing.T) {
	prog := mustParse(t, "dec double = x => x * 2")
	dec := prog.Stmts[0].(*ast.DecBinding)
	fn, ok := dec.Init.(*ast.ArrowFunction)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, fn.Params)
	require.NotNil(t, fn.Expr)
}

func TestParseEnumWithExplicitAndAutoValues(t *testing.T) {
	prog := mustParse(t, "enum Color {\n  Red,\n  Green = 10,\n  Blue\n}")
	enum := prog.Stmts[0].(*ast.EnumDecl)
	require.Len(t, enum.Members, 3)
	require.NotNil(t, enum.Members[1].ExplicitValue)
	assert.Equal(t, 10, *enum.Members[1].ExplicitValue)
	assert.Nil(t, enum.Members[0].ExplicitValue)
}
