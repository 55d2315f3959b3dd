package store

import (
	"time"

	"gorm.io/datatypes"
)

// CompileRun records one successful compile, grounded on the teacher's
// db.BeginRun run-tracking idiom.
type CompileRun struct {
	ID              uint   `gorm:"primaryKey"`
	ModulePath      string `gorm:"type:varchar(255);index"`
	SourceHash      string `gorm:"type:varchar(64)"`
	EmittedHash     string `gorm:"type:varchar(64)"`
	DiagnosticCount int
	DurationMillis  int64
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (CompileRun) TableName() string { return "compile_runs" }

// ExportSnapshot is a persisted, point-in-time copy of one module path's
// export Shape, used only to warm-start a fresh process's in-memory
// ExportRegistry.
type ExportSnapshot struct {
	ModulePath string         `gorm:"primaryKey;type:varchar(255)"`
	Shape      datatypes.JSON `gorm:"type:jsonb"`
	Sealed     bool           `gorm:"default:false"` // true when any leaf value was secret-tainted and has been sealed
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
}

func (ExportSnapshot) TableName() string { return "export_snapshots" }

// SealedValue is a secret-tainted value sealed for storage: AEAD-encrypted,
// never written in the clear. One row per persisted secret leaf.
type SealedValue struct {
	ID         uint   `gorm:"primaryKey"`
	ModulePath string `gorm:"type:varchar(255);index"`
	FieldPath  string `gorm:"type:varchar(255)"` // dotted path within the module's export object
	Nonce      []byte `gorm:"type:blob"`
	Ciphertext []byte `gorm:"type:blob"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (SealedValue) TableName() string { return "sealed_values" }
