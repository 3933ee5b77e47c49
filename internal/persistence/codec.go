package persistence

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/reportai/internal/entity"
)

// ErrCorrupt means persisted bytes exist but do not decode to a valid snapshot.
var ErrCorrupt = errors.New("corrupt snapshot")

//go:embed snapshot.schema.json
var snapshotSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func snapshotSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("snapshot.schema.json", bytes.NewReader(snapshotSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("snapshot.schema.json")
	})
	return schema, schemaErr
}

// EncodeSnapshot renders snap as indented JSON.
func EncodeSnapshot(snap *entity.Snapshot) ([]byte, error) {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot parses and schema-checks persisted bytes. Any failure wraps ErrCorrupt.
func DecodeSnapshot(b []byte) (*entity.Snapshot, error) {
	sch, err := snapshotSchema()
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	snap := entity.EmptySnapshot()
	if err := json.Unmarshal(b, snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if snap.Documents == nil {
		snap.Documents = []entity.Document{}
	}
	if snap.Reports == nil {
		snap.Reports = []entity.Report{}
	}
	return snap, nil
}
