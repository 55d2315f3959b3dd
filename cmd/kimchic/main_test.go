package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferModulePath(t *testing.T) {
	cases := map[string]string{
		"app/services/billing.km": "app.services.billing",
		"./billing.kimchi":        "billing",
		"billing.kc":              "billing",
	}
	for in, want := range cases {
		assert.Equal(t, want, inferModulePath(in))
	}
}

func TestHasKnownExtension(t *testing.T) {
	assert.True(t, hasKnownExtension("billing.km"))
	assert.True(t, hasKnownExtension("billing.static"))
	assert.False(t, hasKnownExtension("billing.js"))
}

func TestCompileCmdWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "greet.km")
	out := filepath.Join(dir, "greet.out.js")
	require.NoError(t, os.WriteFile(src, []byte("expose dec greeting = \"hi\""), 0o644))

	root := newRootCmd()
	root.SetArgs([]string{"compile", src, "--out", out, "--skip-typecheck"})
	require.NoError(t, root.Execute())

	emitted, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(emitted), "greeting")
}

func TestCompileCmdFailsOnScanError(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.km")
	require.NoError(t, os.WriteFile(src, []byte("dec x = @@@"), 0o644))

	root := newRootCmd()
	root.SetArgs([]string{"compile", src})
	assert.Error(t, root.Execute())
}
