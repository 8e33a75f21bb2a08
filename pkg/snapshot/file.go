package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/shelfworks/shelfstack/pkg/errors"
)

// FileStore persists records as JSON files in a directory, for CLI usage.
// Keys are hashed so arbitrary session identifiers map to safe file names.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based store in the given directory.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create snapshot dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// fileEntry wraps the record with expiration metadata.
type fileEntry struct {
	Record    Record    `json:"record"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Save stores a record under key.
func (f *FileStore) Save(_ context.Context, key string, rec Record, ttl time.Duration) error {
	entry := fileEntry{Record: rec}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot %s", key)
	}

	path := f.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create snapshot dir for %s", key)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write snapshot %s", key)
	}
	return nil
}

// Load retrieves a record by key. A corrupt file is treated as a miss and
// removed.
func (f *FileStore) Load(_ context.Context, key string) (Record, bool, error) {
	path := f.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, errors.Wrap(errors.ErrCodeInternal, err, "read snapshot %s", key)
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return Record{}, false, nil
	}

	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return Record{}, false, nil
	}

	return entry.Record, true, nil
}

// Delete removes a record.
func (f *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file store.
func (f *FileStore) Close() error { return nil }

// path converts a key to a file path. The first two hash characters form a
// subdirectory so large libraries spread across directories.
func (f *FileStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	hash := hex.EncodeToString(sum[:])
	return filepath.Join(f.dir, hash[:2], hash[2:]+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
