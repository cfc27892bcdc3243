package prefs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/lipiplay/internal/kvstore"
)

func newTestStore() (*Store, *kvstore.Memory) {
	kv := kvstore.NewMemory()
	s := New(kv, nil)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s, kv
}

func TestDelayDefaultsToZero(t *testing.T) {
	s, _ := newTestStore()

	delay, err := s.Delay(context.Background(), "/videos/movie.srt")
	require.NoError(t, err)
	assert.Zero(t, delay)
}

func TestSetDelayRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	for _, ms := range []int64{1500, -2750, 0, 1 << 40} {
		require.NoError(t, s.SetDelay(ctx, "movie.srt", ms))

		got, err := s.Delay(ctx, "movie.srt")
		require.NoError(t, err)
		assert.Equal(t, ms, got)
	}
}

func TestKeyIgnoresDirectory(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	require.NoError(t, s.SetDelay(ctx, "/a/b/movie.srt", 300))

	got, err := s.Delay(ctx, "/elsewhere/movie.srt")
	require.NoError(t, err)
	assert.Equal(t, int64(300), got)
	assert.Equal(t, "movie.srt", Key(" /x/movie.srt "))
}

func TestPinDelay(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	delay, err := s.PinDelay(ctx, "movie.srt", 5000, 5200)
	require.NoError(t, err)
	assert.Equal(t, int64(200), delay)

	delay, err = s.PinDelay(ctx, "movie.srt", 5000, 4000)
	require.NoError(t, err)
	assert.Equal(t, int64(-1000), delay)

	stored, err := s.Delay(ctx, "movie.srt")
	require.NoError(t, err)
	assert.Equal(t, int64(-1000), stored)
}

func TestRestorePointKeepsDelay(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	_, ok, err := s.RestorePoint(ctx, "movie.srt")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetDelay(ctx, "movie.srt", 120))
	require.NoError(t, s.SetRestorePoint(ctx, "movie.srt", 42))

	counter, ok, err := s.RestorePoint(ctx, "movie.srt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, counter)

	rec, err := s.Load(ctx, "movie.srt")
	require.NoError(t, err)
	assert.Equal(t, int64(120), rec.DelayMs)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), rec.UpdatedAt)
}

func TestForgetAndList(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore()

	require.NoError(t, s.SetDelay(ctx, "b.srt", 2))
	require.NoError(t, s.SetDelay(ctx, "a.srt", 1))
	require.NoError(t, kv.Put(ctx, "broken.srt", []byte("{")))

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a.srt", items[0].File)
	assert.Equal(t, int64(1), items[0].DelayMs)
	assert.Equal(t, "b.srt", items[1].File)

	require.NoError(t, s.Forget(ctx, "a.srt"))
	delay, err := s.Delay(ctx, "a.srt")
	require.NoError(t, err)
	assert.Zero(t, delay)
}

func TestLoadRejectsEmptyName(t *testing.T) {
	s, _ := newTestStore()

	_, err := s.Load(context.Background(), "  ")
	assert.Error(t, err)
}

type failingKV struct {
	kvstore.Store
}

func (failingKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func TestStoreErrorsPropagate(t *testing.T) {
	s := New(failingKV{}, nil)

	_, err := s.Delay(context.Background(), "movie.srt")
	assert.ErrorContains(t, err, "disk on fire")

	err = s.SetDelay(context.Background(), "movie.srt", 10)
	assert.ErrorContains(t, err, "disk on fire")
}
