package staticdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringNumberBoolLiterals(t *testing.T) {
	n, err := Parse(`
Title "Hello"
Count 3
Ratio 1.5
Active true
Disabled false
`, "mod")
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "Count", "Ratio", "Active", "Disabled"}, n.Keys)
	assert.Equal(t, "Hello", n.Props["Title"].Str)
	assert.Equal(t, "3", n.Props["Count"].Num)
	assert.Equal(t, "1.5", n.Props["Ratio"].Num)
	assert.True(t, n.Props["Active"].Bool)
	assert.False(t, n.Props["Disabled"].Bool)
}

func TestParseSecretTopLevelDeclaration(t *testing.T) {
	n, err := Parse(`secret ApiKey "xyz"`, "mod")
	require.NoError(t, err)
	assert.True(t, n.Props["ApiKey"].Secret)
}

func TestParseArrayValue(t *testing.T) {
	n, err := Parse(`Colors ["red", "green", "blue"]`, "mod")
	require.NoError(t, err)
	arr := n.Props["Colors"]
	require.Equal(t, KindArray, arr.Kind)
	require.Len(t, arr.Values, 3)
	assert.Equal(t, "green", arr.Values[1].Str)
}

func TestParseObjectValueRequiresEquals(t *testing.T) {
	n, err := Parse(`Config { timeout = 30, secret token = "t" }`, "mod")
	require.NoError(t, err)
	obj := n.Props["Config"]
	require.Equal(t, KindObject, obj.Kind)
	assert.Equal(t, "30", obj.Props["timeout"].Num)
	assert.True(t, obj.Props["token"].Secret)
}

func TestParseEnumShorthand(t *testing.T) {
	n, err := Parse("Status `Active = 1, Inactive = 2, Pending = 3`", "mod")
	require.NoError(t, err)
	enum := n.Props["Status"]
	require.Equal(t, KindEnum, enum.Kind)
	require.Len(t, enum.Members, 3)
	assert.Equal(t, "Active", enum.Members[0].Name)
	assert.Equal(t, "2", enum.Members[1].Value.Num)
}

func TestParseDottedReference(t *testing.T) {
	n, err := Parse(`Owner app.config.owner`, "mod")
	require.NoError(t, err)
	ref := n.Props["Owner"]
	require.Equal(t, KindReference, ref.Kind)
	assert.Equal(t, []string{"app", "config", "owner"}, ref.Path)
}

func TestParseNewlineAndCommaInterchangeable(t *testing.T) {
	n, err := Parse("A 1, B 2\nC 3", "mod")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, n.Keys)
}

func TestGenerateProducesExportConstPerDeclaration(t *testing.T) {
	n, err := Parse(`
Title "Hello"
Count 3
secret ApiKey "xyz"
`, "app.config")
	require.NoError(t, err)
	out, err := Generate(n, "app.config")
	require.NoError(t, err)
	assert.Contains(t, out, `export const Title = "Hello";`)
	assert.Contains(t, out, `export const Count = 3;`)
	assert.Contains(t, out, `export const ApiKey = _secret("xyz");`)
	assert.Contains(t, out, "class _Secret")
}

func TestGenerateOmitsSecretHelperWhenUnused(t *testing.T) {
	n, err := Parse(`Title "Hello"`, "app.config")
	require.NoError(t, err)
	out, err := Generate(n, "app.config")
	require.NoError(t, err)
	assert.NotContains(t, out, "_Secret")
}

func TestGenerateArrayObjectAndEnum(t *testing.T) {
	n, err := Parse(`
Colors ["red", "green"]
Config { timeout = 30 }
Status `+"`Active = 1, Inactive = 2`"+`
`, "app.config")
	require.NoError(t, err)
	out, err := Generate(n, "app.config")
	require.NoError(t, err)
	assert.Contains(t, out, `export const Colors = ["red", "green"];`)
	assert.Contains(t, out, `export const Config = { timeout: 30 };`)
	assert.Contains(t, out, `export const Status = Object.freeze({ Active: 1, Inactive: 2 });`)
}

func TestParseUnterminatedStringReportsLine(t *testing.T) {
	_, err := Parse("Title \"unterminated", "mod")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
}
