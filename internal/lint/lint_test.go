package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/kimchilang/internal/diag"
	"github.com/oxhq/kimchilang/internal/parser"
	"github.com/oxhq/kimchilang/internal/scanner"
)

func mustLint(t *testing.T, src string) diag.Report {
	t.Helper()
	toks, err := scanner.Scan(src, scanner.Config{})
	require.NoError(t, err)
	prog, err := parser.Parse(toks)
	require.NoError(t, err)
	return New().Lint(prog)
}

func findRule(t *testing.T, report diag.Report, substr string) diag.Diagnostic {
	t.Helper()
	for _, d := range report {
		if assertContains(d.Message, substr) {
			return d
		}
	}
	t.Fatalf("no diagnostic containing %q in %v", substr, report)
	return diag.Diagnostic{}
}

func assertContains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func TestUnusedVariableWarns(t *testing.T) {
	report := mustLint(t, `dec x = 1
print(2)`)
	d := findRule(t, report, "x")
	assert.Equal(t, diag.LintWarning, d.Kind)
}

func TestUnusedVariableSuppressedByUnderscorePrefix(t *testing.T) {
	report := mustLint(t, `dec _ignored = 1
print(2)`)
	for _, d := range report {
		assert.NotContains(t, d.Message, "_ignored")
	}
}

func TestExposedDecIsNeverFlaggedUnused(t *testing.T) {
	report := mustLint(t, `expose dec shared = 1`)
	for _, d := range report {
		assert.NotContains(t, d.Message, "shared")
	}
}

func TestUnusedFunctionWarns(t *testing.T) {
	report := mustLint(t, `fn helper() {
  return 1
}
print(2)`)
	d := findRule(t, report, "helper")
	assert.Equal(t, diag.LintWarning, d.Kind)
}

func TestShadowVariableWarns(t *testing.T) {
	report := mustLint(t, `dec x = 1
fn f() {
  dec x = 2
  print(x)
}
print(x)`)
	d := findRule(t, report, "shadows")
	assert.Equal(t, diag.LintWarning, d.Kind)
}

func TestUnreachableCodeAfterReturnWarns(t *testing.T) {
	report := mustLint(t, `fn f() {
  return 1
  print(2)
}`)
	d := findRule(t, report, "unreachable")
	assert.Equal(t, diag.LintWarning, d.Kind)
}

func TestEmptyBlockIsInfo(t *testing.T) {
	report := mustLint(t, `if true {
}`)
	found := false
	for _, d := range report {
		if d.Kind == diag.LintInfo {
			found = true
		}
	}
	assert.True(t, found)
}

func TestConstantConditionWarns(t *testing.T) {
	report := mustLint(t, `if true {
  print(1)
}`)
	d := findRule(t, report, "always")
	assert.Equal(t, diag.LintWarning, d.Kind)
}

func TestDuplicateKeyIsError(t *testing.T) {
	report := mustLint(t, `dec obj = { foo: 1, foo: 2 }
print(obj)`)
	d := findRule(t, report, "duplicate")
	assert.Equal(t, diag.LintError, d.Kind)
	assert.True(t, d.Kind.Fatal())
}
