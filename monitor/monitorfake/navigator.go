package monitorfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-employee-console/monitor"
)

var _ monitor.Navigator = (*Navigator)(nil)

// Navigator records every route it is asked to replace the current view with
type Navigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *Navigator) Replace(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *Navigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

func (n *Navigator) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.routes)
}

var _ monitor.Notifier = (*Notifier)(nil)

// Notifier records logout notifications and fails with Err when set. When
// Block is set it waits for it to close, or for ctx, before returning.
type Notifier struct {
	Err   error
	Block chan struct{}

	mu     sync.Mutex
	tokens []string
}

func (n *Notifier) NotifyLogout(ctx context.Context, token string) error {
	n.mu.Lock()
	n.tokens = append(n.tokens, token)
	n.mu.Unlock()

	if n.Block != nil {
		select {
		case <-n.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return n.Err
}

func (n *Notifier) Tokens() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.tokens...)
}
