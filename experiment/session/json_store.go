package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONStore writes the record as a top-level JSON array of
// {"trial_number", "cursor_positions"} objects.
type JSONStore struct{}

func (JSONStore) Ext() string { return ".json" }

func (JSONStore) Save(path string, _ Meta, rec Record) error {
	if rec == nil {
		rec = Record{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	if err := enc.Encode(rec); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %q: %w", path, err)
	}
	return f.Close()
}

func (JSONStore) Load(path string) (Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	if rec == nil {
		rec = Record{}
	}
	return rec, nil
}
