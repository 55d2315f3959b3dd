package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/kimchilang/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, 0, len(toks))
	for _, t := range toks {
		if t.Kind == token.NEWLINE {
			continue
		}
		ks = append(ks, t.Kind)
	}
	return ks
}

func TestScanNumericLiteralsPreserveRawForm(t *testing.T) {
	toks, err := Scan(`0xFF 0b101 0o17 3.14 1e10 2e-3 42`, Config{})
	require.NoError(t, err)
	var nums []string
	for _, tok := range toks {
		if tok.Kind == token.NUMBER {
			nums = append(nums, tok.Lexeme)
		}
	}
	assert.Equal(t, []string{"0xFF", "0b101", "0o17", "3.14", "1e10", "2e-3", "42"}, nums)
}

func TestScanRegexVsDivision(t *testing.T) {
	toks, err := Scan(`a / b`, Config{})
	require.NoError(t, err)
	require.Len(t, toks, 4) // a / b EOF
	assert.Equal(t, token.SLASH, toks[1].Kind)

	toks, err = Scan(`/abc/gi`, Config{})
	require.NoError(t, err)
	require.Equal(t, token.REGEX, toks[0].Kind)
	rv, ok := toks[0].Value.(token.RegexValue)
	require.True(t, ok)
	assert.Equal(t, "abc", rv.Pattern)
	assert.Equal(t, "gi", rv.Flags)

	// After a closing paren, / is division not regex.
	toks, err = Scan(`f(x) / 2`, Config{})
	require.NoError(t, err)
	var sawSlash bool
	for _, tk := range toks {
		if tk.Kind == token.SLASH {
			sawSlash = true
		}
		assert.NotEqual(t, token.REGEX, tk.Kind)
	}
	assert.True(t, sawSlash)
}

func TestScanStringInterpolation(t *testing.T) {
	toks, err := Scan(`"hi ${name}!"`, Config{})
	require.NoError(t, err)
	require.Equal(t, token.TEMPLATE_STRING, toks[0].Kind)
	val, ok := toks[0].Value.(string)
	require.True(t, ok)
	assert.Contains(t, val, "name")
	assert.Contains(t, val, string(rune(markOpen)))
	assert.Contains(t, val, string(rune(markClose)))
}

func TestScanPlainStringNoInterpolation(t *testing.T) {
	toks, err := Scan(`"plain string"`, Config{})
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[0].Kind)
}

func TestScanShellRawCapture(t *testing.T) {
	toks, err := Scan("shell(a, b) { echo ${a} { nested } ${b} }", Config{})
	require.NoError(t, err)
	var content string
	for _, tk := range toks {
		if tk.Kind == token.SHELL_CONTENT {
			content = tk.Lexeme
		}
	}
	assert.Contains(t, content, "nested")
	assert.Contains(t, content, "${a}")
}

func TestScanNewlineCollapsing(t *testing.T) {
	toks, err := Scan("a\n\n\nb", Config{})
	require.NoError(t, err)
	newlineCount := 0
	for _, tk := range toks {
		if tk.Kind == token.NEWLINE {
			newlineCount++
		}
	}
	assert.Equal(t, 1, newlineCount)
}

func TestScanUnterminatedStringFailsFast(t *testing.T) {
	_, err := Scan(`"unterminated`, Config{})
	require.Error(t, err)
}

func TestScanUnterminatedBlockComment(t *testing.T) {
	_, err := Scan(`/* never closes`, Config{})
	require.Error(t, err)
}

func TestScanDisallowedBitwiseAnd(t *testing.T) {
	_, err := Scan(`a & b`, Config{})
	require.Error(t, err)
}

func TestScanKeywords(t *testing.T) {
	toks, err := Scan(`dec expose fn memo secret`, Config{})
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{token.DEC, token.EXPOSE, token.FN, token.MEMO, token.SECRET, token.EOF},
		kinds(toks))
}

func TestScanLogicalOrVsPipe(t *testing.T) {
	toks, err := Scan(`a || b`, Config{})
	require.NoError(t, err)
	assert.Equal(t, token.OROR, toks[1].Kind)

	toks, err = Scan(`a | b`, Config{})
	require.NoError(t, err)
	assert.Equal(t, token.PIPE, toks[1].Kind)
}

func TestScanBacktickVerbatim(t *testing.T) {
	toks, err := Scan("`raw ${not interpolated}`", Config{})
	require.NoError(t, err)
	require.Equal(t, token.BACKTICK, toks[0].Kind)
	assert.Contains(t, toks[0].Lexeme, "${not interpolated}")
}
