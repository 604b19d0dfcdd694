package session

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Backend names accepted by Open
const (
	BackendKeyring = "keyring"
	BackendFile    = "file"
	BackendSQLite  = "sqlite"
	BackendMemory  = "memory"
)

// Open builds the KV for the named backend. path is only used by the file
// and sqlite backends; an empty path selects the per-user default location.
// The returned closer must be called on shutdown.
func Open(backend, path string, zlog zerolog.Logger) (KV, io.Closer, error) {
	switch strings.ToLower(backend) {
	case "", BackendKeyring:
		return NewKeyringKV(DefaultKeyringService), nopCloser{}, nil
	case BackendFile:
		kv, err := NewFileKV(path)
		if err != nil {
			return nil, nil, err
		}
		return kv, nopCloser{}, nil
	case BackendSQLite:
		if path == "" {
			p, err := DefaultFilePath()
			if err != nil {
				return nil, nil, err
			}
			path = filepath.Join(filepath.Dir(p), "session.sqlite")
		}
		kv, err := OpenSQLiteKV(path, zlog)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv, nil
	case BackendMemory:
		return NewMemoryKV(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q (want keyring, file, sqlite or memory)", backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
