package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// FileStore keeps one <userId>.json file per user in a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("session: create dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(userID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(userID, 10)+".json")
}

func (s *FileStore) Get(_ context.Context, userID int64) (*Record, error) {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: read %d: %w", userID, err)
	}
	rec, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("session: decode %d: %w", userID, err)
	}
	return rec, nil
}

// Put writes the record to a temp file and renames it into place so a
// concurrent reader never sees a partial file.
func (s *FileStore) Put(_ context.Context, userID int64, rec *Record) error {
	data, err := encodeIndent(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("session: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("session: write %d: %w", userID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session: close %d: %w", userID, err)
	}
	if err := os.Rename(tmp.Name(), s.path(userID)); err != nil {
		return fmt.Errorf("session: rename %d: %w", userID, err)
	}
	return nil
}

// ListAll reads every <id>.json in the directory. Files with a
// non-numeric name are ignored.
func (s *FileStore) ListAll(ctx context.Context) ([]Listing, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("session: list: %w", err)
	}
	var ids []int64
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok {
			continue
		}
		id, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]Listing, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		rec, err := s.Get(ctx, id)
		out = append(out, Listing{UserID: id, Record: rec, Err: err})
	}
	return out, nil
}
