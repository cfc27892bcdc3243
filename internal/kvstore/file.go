package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 50 * time.Millisecond

// FileStore keeps all records in one JSON document. Every operation takes
// an advisory file lock so several player processes can share the file.
type FileStore struct {
	path string
	lock *flock.Flock
	mu   sync.Mutex
}

func OpenFile(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := s.withLock(ctx, false, func(data map[string]json.RawMessage) (bool, error) {
		raw, ok := data[key]
		if ok {
			value, found = []byte(raw), true
		}
		return false, nil
	})
	return value, found, err
}

// values must be valid JSON since they are embedded in the document
func (s *FileStore) Put(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("put %q: file store values must be JSON", key)
	}
	return s.withLock(ctx, true, func(data map[string]json.RawMessage) (bool, error) {
		data[key] = append(json.RawMessage(nil), value...)
		return true, nil
	})
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	return s.withLock(ctx, true, func(data map[string]json.RawMessage) (bool, error) {
		if _, ok := data[key]; !ok {
			return false, nil
		}
		delete(data, key)
		return true, nil
	})
}

func (s *FileStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.withLock(ctx, false, func(data map[string]json.RawMessage) (bool, error) {
		for k := range data {
			keys = append(keys, k)
		}
		return false, nil
	})
	sort.Strings(keys)
	return keys, err
}

func (s *FileStore) Close() error {
	return nil
}

// withLock loads the document under the file lock and writes it back when
// fn reports a change.
func (s *FileStore) withLock(
	ctx context.Context,
	exclusive bool,
	fn func(map[string]json.RawMessage) (bool, error),
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = s.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = s.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return fmt.Errorf("lock store: %w", err)
	}
	if !ok {
		return errors.New("lock store: not acquired")
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	data, err := s.load()
	if err != nil {
		return err
	}

	changed, err := fn(data)
	if err != nil || !changed {
		return err
	}
	return s.save(data)
}

func (s *FileStore) load() (map[string]json.RawMessage, error) {
	data := make(map[string]json.RawMessage)

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse store: %w", err)
	}
	return data, nil
}

func (s *FileStore) save(data map[string]json.RawMessage) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
