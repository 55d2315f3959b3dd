package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/kimchilang/internal/registry"
)

func TestOpenCreatesTables(t *testing.T) {
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.Close()

	assert.True(t, s.db.Migrator().HasTable(&CompileRun{}))
	assert.True(t, s.db.Migrator().HasTable(&ExportSnapshot{}))
	assert.True(t, s.db.Migrator().HasTable(&SealedValue{}))
}

func TestRecordCompileRunPersists(t *testing.T) {
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	defer s.Close()

	s.RecordCompileRun(CompileRun{
		ModulePath:      "app.billing",
		SourceHash:      "abc123",
		EmittedHash:     "def456",
		DiagnosticCount: 0,
		DurationMillis:  12,
	})

	require.Eventually(t, func() bool {
		var count int64
		s.db.Model(&CompileRun{}).Count(&count)
		return count == 1
	}, time.Second, 5*time.Millisecond)

	var run CompileRun
	require.NoError(t, s.db.First(&run).Error)
	assert.Equal(t, "app.billing", run.ModulePath)
	assert.Equal(t, "abc123", run.SourceHash)
}

func TestRecordCompileRunDropsWhenQueueFull(t *testing.T) {
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	defer s.Close()

	// Fill the channel directly so RecordCompileRun's non-blocking send has
	// nowhere to go; the call must return without panicking or blocking.
	for i := 0; i < cap(s.writes); i++ {
		s.writes <- compileRunWrite{run: CompileRun{ModulePath: "filler"}}
	}

	done := make(chan struct{})
	go func() {
		s.RecordCompileRun(CompileRun{ModulePath: "dropped"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RecordCompileRun blocked on a full queue")
	}
}

func TestPublishSnapshotRoundTripsThroughWarmStart(t *testing.T) {
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	defer s.Close()

	shape := registry.ObjectOf(map[string]*registry.Shape{
		"total":  registry.Prim(registry.Number),
		"tiers":  registry.ArrayOf(registry.Prim(registry.String)),
		"charge": registry.FuncOf([]*registry.Shape{registry.Prim(registry.Number)}, registry.Prim(registry.Boolean)),
	})

	require.NoError(t, s.PublishSnapshot("app.billing", shape, nil))

	reg := registry.New()
	require.NoError(t, s.WarmStart(context.Background(), reg))

	loaded, ok := reg.Lookup("app.billing")
	require.True(t, ok)
	assert.Equal(t, registry.Object, loaded.Kind)
	assert.Equal(t, registry.Number, loaded.Props["total"].Kind)
	assert.Equal(t, registry.Array, loaded.Props["tiers"].Kind)
	assert.Equal(t, registry.String, loaded.Props["tiers"].Element.Kind)
	assert.Equal(t, registry.Function, loaded.Props["charge"].Kind)
	assert.Equal(t, registry.Boolean, loaded.Props["charge"].Return.Kind)
}

func TestPublishSnapshotSealsSecretPaths(t *testing.T) {
	masterKey := make([]byte, 32)
	for i := range masterKey {
		masterKey[i] = byte(i)
	}
	s, err := Open(":memory:", masterKey)
	require.NoError(t, err)
	defer s.Close()

	shape := registry.ObjectOf(map[string]*registry.Shape{
		"apiKey": registry.Prim(registry.String),
	})
	require.NoError(t, s.PublishSnapshot("app.auth", shape, []string{"apiKey"}))

	var snap ExportSnapshot
	require.NoError(t, s.db.First(&snap, "module_path = ?", "app.auth").Error)
	assert.True(t, snap.Sealed)

	var sealed SealedValue
	require.NoError(t, s.db.First(&sealed, "module_path = ? AND field_path = ?", "app.auth", "apiKey").Error)
	assert.NotEmpty(t, sealed.Ciphertext)

	plain, err := s.seal.Open("app.auth.apiKey", sealed.Nonce, sealed.Ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "apiKey", string(plain))
}

func TestPublishSnapshotWithoutMasterKeySkipsSealedValues(t *testing.T) {
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	defer s.Close()

	shape := registry.Prim(registry.String)
	require.NoError(t, s.PublishSnapshot("app.secretish", shape, []string{"token"}))

	var count int64
	s.db.Model(&SealedValue{}).Count(&count)
	assert.Zero(t, count)
}

func TestWarmStartIgnoresCorruptShapeJSON(t *testing.T) {
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.db.Create(&ExportSnapshot{ModulePath: "app.broken", Shape: []byte("not json")}).Error)

	reg := registry.New()
	require.NoError(t, s.WarmStart(context.Background(), reg))

	_, ok := reg.Lookup("app.broken")
	assert.False(t, ok)
}
