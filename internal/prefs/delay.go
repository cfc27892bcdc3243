package prefs

import "context"

// Delay returns the stored delay for file in milliseconds, 0 by default.
func (s *Store) Delay(ctx context.Context, file string) (int64, error) {
	rec, err := s.Load(ctx, file)
	if err != nil {
		return 0, err
	}
	return rec.DelayMs, nil
}

// SetDelay stores ms as the delay for file. Any value, including a
// negative one, is accepted.
func (s *Store) SetDelay(ctx context.Context, file string, ms int64) error {
	_, err := s.update(ctx, file, func(r *Record) {
		r.DelayMs = ms
	})
	if err != nil {
		return err
	}
	s.logger.Debugw("Stored delay", "file", Key(file), "delay_ms", ms)
	return nil
}

// PinDelay aligns the subtitle boundary at boundaryMs with the current
// video position and stores the resulting delay.
func (s *Store) PinDelay(ctx context.Context, file string, boundaryMs, videoMs int64) (int64, error) {
	delay := videoMs - boundaryMs
	if err := s.SetDelay(ctx, file, delay); err != nil {
		return 0, err
	}
	return delay, nil
}
