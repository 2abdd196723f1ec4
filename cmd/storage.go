package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/resonate/internal/shared"
	"github.com/urfave/cli/v3"
)

// keyLister is implemented by storages that can enumerate their records.
type keyLister interface {
	Keys() ([]string, error)
	UpdatedAt(key string) (time.Time, error)
}

type storedKey struct {
	Key       string    `json:"key"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StorageList prints every key in local storage.
func (r *Runner) StorageList(ctx context.Context, cmd *cli.Command) error {
	lister, ok := r.storage.(keyLister)
	if !ok {
		return fmt.Errorf("%w: local storage cannot be listed", shared.ErrServiceUnavailable)
	}

	keys, err := lister.Keys()
	if err != nil {
		return err
	}

	entries := make([]storedKey, 0, len(keys))
	for _, key := range keys {
		updated, err := lister.UpdatedAt(key)
		if err != nil {
			r.logger.Warn("failed to read key timestamp", "key", key, "error", err)
		}
		entries = append(entries, storedKey{Key: key, UpdatedAt: updated})
	}

	return r.render(cmd, entries, func() error {
		if len(entries) == 0 {
			return r.writePlain("Local storage is empty\n")
		}
		for _, e := range entries {
			r.writePlain("%-24s %s\n", e.Key, e.UpdatedAt.Local().Format(time.DateTime))
		}
		return nil
	})
}

// StorageRemove deletes one key from local storage.
func (r *Runner) StorageRemove(ctx context.Context, cmd *cli.Command) error {
	if r.storage == nil {
		return fmt.Errorf("%w: local storage not initialized", shared.ErrServiceUnavailable)
	}

	key, err := requireArg(cmd, "key")
	if err != nil {
		return err
	}

	if _, err := r.storage.Get(key); err != nil {
		return err
	}
	if err := r.storage.Remove(key); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s\n", key)
}
