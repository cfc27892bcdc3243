package cli

import (
	"fmt"

	"github.com/mgpai22/lipiplay/internal/kvstore"
	"github.com/mgpai22/lipiplay/internal/prefs"
)

// openPrefs opens the configured store; the caller closes the returned
// kvstore.Store.
func openPrefs() (*prefs.Store, kvstore.Store, error) {
	kv, err := kvstore.Open(kvstore.Backend(cfg.Store.Backend), cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open preference store: %w", err)
	}
	logger.Debugw("Opened preference store",
		"backend", cfg.Store.Backend,
		"path", cfg.Store.Path,
	)
	return prefs.New(kv, logger), kv, nil
}
