package framebuffer

import "errors"

var (
	// ErrNotBound is returned by operations that require the target to
	// be bound at a specific framebuffer target first.
	ErrNotBound = errors.New("framebuffer: target not bound")

	// ErrDestroyed is returned for operations on a destroyed target.
	ErrDestroyed = errors.New("framebuffer: target destroyed")

	// ErrNoAttachments is returned when a target is configured without
	// any attachments.
	ErrNoAttachments = errors.New("framebuffer: no attachments configured")
)
