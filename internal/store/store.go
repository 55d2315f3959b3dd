// Package store is an optional, disabled-by-default persistence layer that
// a long-running host (a language server, a build daemon) can attach to a
// compiler.Compiler: every successful compile is recorded, and every
// export-registry publish is mirrored so a fresh process can warm-start its
// in-memory registry instead of recompiling every dependency from scratch.
//
// Grounded on the teacher's models+db packages: gorm model structs with
// TableName() overrides, datatypes.JSON columns for opaque payloads, and a
// gorm.Open(sqlite.Open(dsn)) connection helper. The teacher's remote/edge
// libsql driver is dropped for github.com/glebarez/sqlite (pure Go, no
// cgo) — see DESIGN.md.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oxhq/kimchilang/internal/registry"
)

// Store wraps a gorm connection plus an optional sealer for secret-tainted
// values.
type Store struct {
	db     *gorm.DB
	seal   *sealer
	writes chan compileRunWrite
}

type compileRunWrite struct {
	run CompileRun
}

// Open connects to a SQLite database at dsn (a file path; the directory is
// created if missing) and runs migrations. masterKey, if non-nil, enables
// sealing of secret-tainted export values before they're persisted; a nil
// masterKey means secret values are simply never written.
func Open(dsn string, masterKey []byte) (*Store, error) {
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.AutoMigrate(&CompileRun{}, &ExportSnapshot{}, &SealedValue{}); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	var s *sealer
	if masterKey != nil {
		s = newSealer(masterKey)
	}

	store := &Store{db: db, seal: s, writes: make(chan compileRunWrite, 64)}
	go store.drainWrites()
	return store, nil
}

// drainWrites is the single goroutine that owns CompileRun persistence. A
// full channel means RecordCompileRun drops the write with a logged
// diagnostic rather than blocking a compile's return (spec.md §5).
func (s *Store) drainWrites() {
	for w := range s.writes {
		if err := s.db.Create(&w.run).Error; err != nil {
			fmt.Fprintf(os.Stderr, "store: failed to record compile run for %s: %v\n", w.run.ModulePath, err)
		}
	}
}

// RecordCompileRun enqueues a fire-and-forget write; it never blocks the
// caller beyond the channel send, and drops the write if the queue is full.
func (s *Store) RecordCompileRun(run CompileRun) {
	select {
	case s.writes <- compileRunWrite{run: run}:
	default:
		fmt.Fprintf(os.Stderr, "store: write queue full, dropping compile run for %s\n", run.ModulePath)
	}
}

// PublishSnapshot mirrors a registry.Register call to the store so a future
// process can warm-start from it. The shape is saved in full (it holds types,
// not values). For each of secretPaths (the dotted field names known to be
// secret-tainted at emit time) a SealedValue row is written whose sealed
// plaintext is that field name, under a key derived from modulePath.path.
func (s *Store) PublishSnapshot(modulePath string, shape *registry.Shape, secretPaths []string) error {
	raw, err := json.Marshal(shapeToJSON(shape))
	if err != nil {
		return fmt.Errorf("marshal shape: %w", err)
	}

	snap := ExportSnapshot{ModulePath: modulePath, Shape: datatypes.JSON(raw), Sealed: len(secretPaths) > 0}
	if err := s.db.Save(&snap).Error; err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	if s.seal == nil || len(secretPaths) == 0 {
		return nil
	}
	for _, path := range secretPaths {
		nonce, ciphertext, err := s.seal.Seal(modulePath+"."+path, []byte(path))
		if err != nil {
			return fmt.Errorf("seal %s.%s: %w", modulePath, path, err)
		}
		row := SealedValue{ModulePath: modulePath, FieldPath: path, Nonce: nonce, Ciphertext: ciphertext}
		if err := s.db.Create(&row).Error; err != nil {
			return fmt.Errorf("persist sealed value %s.%s: %w", modulePath, path, err)
		}
	}
	return nil
}

// WarmStart loads every persisted ExportSnapshot into reg, letting a fresh
// process skip recompiling every dependency from scratch.
func (s *Store) WarmStart(ctx context.Context, reg *registry.Registry) error {
	var snaps []ExportSnapshot
	if err := s.db.WithContext(ctx).Find(&snaps).Error; err != nil {
		return fmt.Errorf("load snapshots: %w", err)
	}
	for _, snap := range snaps {
		var raw map[string]any
		if err := json.Unmarshal(snap.Shape, &raw); err != nil {
			continue
		}
		reg.Register(snap.ModulePath, shapeFromJSON(raw))
	}
	return nil
}

// Close stops accepting further async writes and closes the underlying
// connection.
func (s *Store) Close() error {
	close(s.writes)
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func shapeToJSON(shape *registry.Shape) map[string]any {
	if shape == nil {
		return nil
	}
	out := map[string]any{"kind": shape.Kind.String()}
	if shape.Element != nil {
		out["element"] = shapeToJSON(shape.Element)
	}
	if shape.Props != nil {
		props := make(map[string]any, len(shape.Props))
		for k, v := range shape.Props {
			props[k] = shapeToJSON(v)
		}
		out["props"] = props
	}
	if len(shape.Required) > 0 {
		required := make([]string, 0, len(shape.Required))
		for k := range shape.Required {
			required = append(required, k)
		}
		out["required"] = required
	}
	if shape.Name != "" {
		out["name"] = shape.Name
	}
	if len(shape.Members) > 0 {
		out["members"] = shape.Members
	}
	if len(shape.Params) > 0 {
		params := make([]any, len(shape.Params))
		for i, p := range shape.Params {
			params[i] = shapeToJSON(p)
		}
		out["params"] = params
	}
	if shape.Return != nil {
		out["return"] = shapeToJSON(shape.Return)
	}
	return out
}

func shapeFromJSON(raw map[string]any) *registry.Shape {
	kindStr, _ := raw["kind"].(string)
	shape := &registry.Shape{Kind: kindFromString(kindStr)}
	if props, ok := raw["props"].(map[string]any); ok {
		shape.Props = make(map[string]*registry.Shape, len(props))
		for k, v := range props {
			if m, ok := v.(map[string]any); ok {
				shape.Props[k] = shapeFromJSON(m)
			}
		}
	}
	if required, ok := raw["required"].([]any); ok {
		shape.Required = make(map[string]bool, len(required))
		for _, r := range required {
			if s, ok := r.(string); ok {
				shape.Required[s] = true
			}
		}
	}
	if name, ok := raw["name"].(string); ok {
		shape.Name = name
	}
	if members, ok := raw["members"].([]any); ok {
		for _, m := range members {
			if s, ok := m.(string); ok {
				shape.Members = append(shape.Members, s)
			}
		}
	}
	if elem, ok := raw["element"].(map[string]any); ok {
		shape.Element = shapeFromJSON(elem)
	}
	if params, ok := raw["params"].([]any); ok {
		for _, p := range params {
			if m, ok := p.(map[string]any); ok {
				shape.Params = append(shape.Params, shapeFromJSON(m))
			}
		}
	}
	if ret, ok := raw["return"].(map[string]any); ok {
		shape.Return = shapeFromJSON(ret)
	}
	return shape
}

func kindFromString(s string) registry.Kind {
	kinds := []registry.Kind{
		registry.Unknown, registry.Any, registry.Number, registry.String, registry.Boolean,
		registry.Null, registry.Void, registry.Array, registry.Object, registry.Function, registry.Enum,
	}
	for _, k := range kinds {
		if k.String() == s {
			return k
		}
	}
	return registry.Unknown
}
