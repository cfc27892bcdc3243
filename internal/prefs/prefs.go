// Package prefs keeps per-file player preferences: the subtitle delay and
// the last highlighted entry, stored as JSON records in a kvstore.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/lipiplay/internal/kvstore"
	"github.com/mgpai22/lipiplay/internal/logging"
)

// Record is what gets persisted for one subtitle file.
type Record struct {
	// subtitle_time + DelayMs = video_time
	DelayMs     int64     `json:"delay_ms"`
	LastCounter int       `json:"last_counter,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Store struct {
	kv     kvstore.Store
	logger *logging.Logger
	now    func() time.Time
}

func New(kv kvstore.Store, logger *logging.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logging.OrNop(logger).Named("prefs"),
		now:    time.Now,
	}
}

// Key is the storage key for a file: its base name, so the same file
// opened from another directory keeps its settings.
func Key(file string) string {
	return filepath.Base(strings.TrimSpace(file))
}

// Load returns the record for file, or a zero record when none exists.
func (s *Store) Load(ctx context.Context, file string) (Record, error) {
	key := Key(file)
	if key == "" || key == "." {
		return Record{}, errors.New("file name is empty")
	}

	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return Record{}, fmt.Errorf("failed to load preferences for %s: %w", key, err)
	}
	if !ok {
		return Record{}, nil
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to decode preferences for %s: %w", key, err)
	}
	return rec, nil
}

func (s *Store) save(ctx context.Context, file string, rec Record) error {
	key := Key(file)
	rec.UpdatedAt = s.now().UTC()

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode preferences for %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to save preferences for %s: %w", key, err)
	}
	return nil
}

func (s *Store) update(ctx context.Context, file string, fn func(*Record)) (Record, error) {
	rec, err := s.Load(ctx, file)
	if err != nil {
		return Record{}, err
	}
	fn(&rec)
	if err := s.save(ctx, file, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// last highlighted counter for file; ok is false when none was saved
func (s *Store) RestorePoint(ctx context.Context, file string) (int, bool, error) {
	rec, err := s.Load(ctx, file)
	if err != nil {
		return 0, false, err
	}
	return rec.LastCounter, rec.LastCounter > 0, nil
}

func (s *Store) SetRestorePoint(ctx context.Context, file string, counter int) error {
	_, err := s.update(ctx, file, func(r *Record) {
		r.LastCounter = counter
	})
	return err
}

// Forget removes everything stored for file.
func (s *Store) Forget(ctx context.Context, file string) error {
	if err := s.kv.Delete(ctx, Key(file)); err != nil {
		return fmt.Errorf("failed to forget %s: %w", Key(file), err)
	}
	return nil
}

// stored record with its key
type Item struct {
	File string
	Record
}

// List returns every stored record ordered by key. Undecodable records are
// skipped with a warning.
func (s *Store) List(ctx context.Context) ([]Item, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}

	items := make([]Item, 0, len(keys))
	for _, key := range keys {
		rec, err := s.Load(ctx, key)
		if err != nil {
			s.logger.Warnw("Skipping unreadable preferences",
				"file", key,
				"error", err,
			)
			continue
		}
		items = append(items, Item{File: key, Record: rec})
	}
	return items, nil
}
