package kv

import "context"

// Watcher is implemented by stores that can report writes, including
// writes made by another process sharing the same backing storage.
//
// Watch calls onChange from a background goroutine after any key may have
// changed, until ctx is done. Notifications can be spurious; callers read
// the store again to find out what changed.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}
