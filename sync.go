package glcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/glcore/driver"
)

// ErrWaitExhausted is returned when a fence fails to signal within the
// allotted attempts.
var ErrWaitExhausted = errors.New("glcore: fence wait exhausted")

const (
	// waitAttempts bounds how many times a single Sync retries a timed
	// out fence before giving up. A fence that stays unsignaled this
	// long means a wedged device, not a slow frame.
	waitAttempts = 8

	waitSlice = 125 * time.Millisecond
)

// Sync inserts a fence and blocks until the device has consumed all
// work submitted so far, ctx is done, or the wait budget runs out.
func (e *Engine) Sync(ctx context.Context) error {
	f, err := e.ctx.FenceSync()
	if err != nil {
		return fmt.Errorf("glcore: insert fence: %w", err)
	}
	defer e.ctx.DeleteFence(f)

	for attempt := 0; attempt < waitAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		status, err := e.ctx.ClientWait(f, waitSlice)
		if err != nil {
			return fmt.Errorf("glcore: fence wait: %w", err)
		}
		if status == driver.FenceSignaled {
			return nil
		}
		slogger().Debug("fence still pending", "attempt", attempt+1)
	}
	return fmt.Errorf("%w: after %d attempts", ErrWaitExhausted, waitAttempts)
}
