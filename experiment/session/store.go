package session

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Artifact formats.
const (
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// StoreFor returns the store for a configured format name.
func StoreFor(format string) (Store, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return JSONStore{}, nil
	case FormatSQLite:
		return SQLiteStore{}, nil
	default:
		return nil, fmt.Errorf("session: unknown format %q", format)
	}
}

// Open reads an artifact, choosing the store from the file extension.
func Open(path string) (Record, error) {
	var s Store
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		s = JSONStore{}
	case ".db", ".sqlite":
		s = SQLiteStore{}
	default:
		return nil, fmt.Errorf("session: unknown artifact type %q", path)
	}
	return s.Load(path)
}
