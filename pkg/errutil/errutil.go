package errutil

import (
	"fmt"

	"github.com/small-frappuccino/mirrorcore/pkg/log"
)

// Small error-handling helpers shared across packages. Each helper runs the
// provided function, logs any error to the matching category logger, and
// returns a wrapped error where appropriate.

// HandleDiscordError executes fn and logs any error as a Discord-related error.
// It returns whatever error fn returns, unmodified, after logging it.
func HandleDiscordError(operation string, fn func() error) error {
	if fn == nil {
		return fmt.Errorf("nil function provided")
	}

	err := fn()
	if err == nil {
		return nil
	}

	log.Discord().Error("Discord operation failed", "operation", operation, "error", err)
	return err
}

// HandleStoreError executes fn and logs any error as a settings-store error.
// It returns a wrapped error with context about the operation.
func HandleStoreError(operation string, fn func() error) error {
	if fn == nil {
		return fmt.Errorf("nil function provided")
	}

	err := fn()
	if err == nil {
		return nil
	}

	log.Database().Error("Store operation failed", "operation", operation, "error", err)
	return fmt.Errorf("store %s: %w", operation, err)
}

// LogBestEffort logs err under operation without propagating it. Used for
// cleanup and side-effect paths that must never fail the caller.
func LogBestEffort(operation string, err error) {
	if err == nil {
		return
	}
	log.Application().Warn("Best-effort operation failed", "operation", operation, "error", err)
}
