package monitor

import (
	"context"
	"fmt"
	"time"
)

// RouteLogin is where a forced logout sends the user
const RouteLogin = "/login"

type State int

const (
	Unchecked State = iota
	Active
	Expired
)

func (s State) String() string {
	switch s {
	case Unchecked:
		return "UNCHECKED"
	case Active:
		return "ACTIVE"
	case Expired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// Reason records why a session ended. It is logged, never shown: every
// reason has the same outcome.
type Reason string

const (
	ReasonTokenAbsent      Reason = "token_absent"
	ReasonTokenMalformed   Reason = "token_malformed"
	ReasonTokenExpired     Reason = "token_expired"
	ReasonStoreError       Reason = "store_error"
	ReasonCountdownElapsed Reason = "countdown_elapsed"
	ReasonUserLogout       Reason = "user_logout"
	ReasonForced           Reason = "forced"
)

type Mode int

const (
	// ModeTick decrements a visible countdown once a second
	ModeTick Mode = iota
	// ModeTimer arms a single timer for the remaining validity
	ModeTimer
)

func (m Mode) String() string {
	if m == ModeTimer {
		return "timer"
	}
	return "tick"
}

// Navigator moves the user to another view, replacing the current entry so
// "back" cannot return to it.
type Navigator interface {
	Replace(route string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(route string)

func (f NavigatorFunc) Replace(route string) { f(route) }

// Notifier tells the server a session is over. It is best effort.
type Notifier interface {
	NotifyLogout(ctx context.Context, token string) error
}

// Timer is a cancellable handle to a deferred callback
type Timer interface {
	Stop() bool
}

// Scheduler arms deferred callbacks
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// FormatRemaining renders seconds as mm:ss
func FormatRemaining(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
