package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/kimchilang/internal/parser"
	"github.com/oxhq/kimchilang/internal/registry"
	"github.com/oxhq/kimchilang/internal/scanner"
)

func mustCheck(t *testing.T, src, modulePath string, reg *registry.Registry) (*Checker, []string) {
	t.Helper()
	toks, err := scanner.Scan(src, scanner.Config{})
	require.NoError(t, err)
	prog, err := parser.Parse(toks)
	require.NoError(t, err)
	c := New(reg)
	diags := c.Check(prog, modulePath)
	msgs := make([]string, len(diags))
	for i, d := range diags {
		msgs[i] = d.Message
	}
	return c, msgs
}

func TestUndefinedIdentifierIsTypeError(t *testing.T) {
	_, msgs := mustCheck(t, "print(whoKnows)", "", nil)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "whoKnows")
}

func TestBuiltinWhitelistSuppressesUndefinedError(t *testing.T) {
	_, msgs := mustCheck(t, "print(console)", "", nil)
	assert.Empty(t, msgs)
}

func TestMissingPropertyOnKnownObjectIsError(t *testing.T) {
	_, msgs := mustCheck(t, `dec obj = { foo: 1 }
print(obj.bar)`, "", nil)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "bar")
}

func TestCallOfNonFunctionIsError(t *testing.T) {
	_, msgs := mustCheck(t, `dec x = 1
x()`, "", nil)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "not a function")
}

func TestEnumMissingMemberIsError(t *testing.T) {
	_, msgs := mustCheck(t, `enum Color {
  Red,
  Green
}
print(Color.Blue)`, "", nil)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Blue")
}

func TestExportRegistryPublishesObjectShape(t *testing.T) {
	reg := registry.New()
	_, msgs := mustCheck(t, `expose dec foo = "x"
arg bar`, "services.storage.db", reg)
	require.Empty(t, msgs)

	shape, ok := reg.Lookup("services.storage.db")
	require.True(t, ok)
	require.Equal(t, registry.Object, shape.Kind)
	assert.Equal(t, registry.String, shape.Props["foo"].Kind)
	assert.Equal(t, registry.Any, shape.Props["bar"].Kind)
}

func TestExportRegistryTracksRequiredArgsAndEnv(t *testing.T) {
	reg := registry.New()
	_, msgs := mustCheck(t, `arg !name
env !HOME
arg optional = "x"`, "services.storage.db", reg)
	require.Empty(t, msgs)

	shape, ok := reg.Lookup("services.storage.db")
	require.True(t, ok)
	assert.True(t, shape.Required["name"])
	assert.True(t, shape.Required["HOME"])
	assert.False(t, shape.Required["optional"])
}

func TestDepStmtBindsRegisteredShapeAndValidatesOverride(t *testing.T) {
	reg := registry.New()
	reg.Register("services.storage.db", registry.ObjectOf(map[string]*registry.Shape{
		"timeout": registry.Prim(registry.Number),
	}))
	_, msgs := mustCheck(t, `as db dep services.storage.db({ timeout: 30 })`, "", reg)
	assert.Empty(t, msgs)
}

func TestDepStmtOverrideIncompatibleShapeIsError(t *testing.T) {
	reg := registry.New()
	reg.Register("services.storage.db", registry.ObjectOf(map[string]*registry.Shape{
		"timeout": registry.Prim(registry.Number),
	}))
	_, msgs := mustCheck(t, `as db dep services.storage.db({ timeout: "soon" })`, "", reg)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "timeout")
}

func TestDepStmtUnresolvedPathBindsAny(t *testing.T) {
	reg := registry.New()
	_, msgs := mustCheck(t, `as db dep nowhere.at.all
print(db)`, "", reg)
	assert.Empty(t, msgs)
}

func TestDestructureMissingPropertyIsError(t *testing.T) {
	_, msgs := mustCheck(t, `dec obj = { foo: 1 }
dec {bar} = obj`, "", nil)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "bar")
}

func TestBuiltinArrayMethodsDoNotFalselyTriggerMissingProperty(t *testing.T) {
	_, msgs := mustCheck(t, `dec nums = [1, 2, 3]
dec doubled = nums.map(x => x * 2)
print(doubled.length)`, "", nil)
	assert.Empty(t, msgs)
}

func TestFunctionIsHoistedForForwardReference(t *testing.T) {
	_, msgs := mustCheck(t, `dec result = greet()
fn greet() {
  return "hi"
}`, "", nil)
	assert.Empty(t, msgs)
}
