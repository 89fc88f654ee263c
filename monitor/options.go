package monitor

import "time"

type Option func(*Monitor)

func WithMode(mode Mode) Option {
	return func(m *Monitor) {
		m.mode = mode
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// WithScheduler replaces time.AfterFunc
func WithScheduler(s Scheduler) Option {
	return func(m *Monitor) {
		if s != nil {
			m.scheduler = s
		}
	}
}

// WithNotifier enables the fire-and-forget server notification on Logout
func WithNotifier(n Notifier) Option {
	return func(m *Monitor) {
		m.notifier = n
	}
}

// WithNotifyTimeout bounds the server notification
func WithNotifyTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.notifyTimeout = d
		}
	}
}

// WithOnTick is called with the countdown value whenever it changes. It may
// run on a timer goroutine.
func WithOnTick(f func(remaining int64)) Option {
	return func(m *Monitor) {
		m.onTick = f
	}
}

// WithOnExpired is called after every logout, once the store is cleared and
// the navigator has been told.
func WithOnExpired(f func(reason Reason)) Option {
	return func(m *Monitor) {
		m.onExpired = f
	}
}

// WithWarningThreshold sets when Warning starts reporting true
func WithWarningThreshold(d time.Duration) Option {
	return func(m *Monitor) {
		if d >= 0 {
			m.warning = d
		}
	}
}
