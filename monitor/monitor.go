package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-employee-console/internal/errors"
	"github.com/jrsteele09/go-employee-console/session"
	"github.com/jrsteele09/go-employee-console/token"
	"github.com/rs/zerolog/log"
)

const (
	defaultWarning       = 10 * time.Second
	defaultNotifyTimeout = 3 * time.Second
	storeTimeout         = 5 * time.Second
	tickInterval         = time.Second
)

// Monitor is the session guard of one hosting view
type Monitor struct {
	store         *session.Store
	nav           Navigator
	notifier      Notifier
	mode          Mode
	now           func() time.Time
	scheduler     Scheduler
	warning       time.Duration
	notifyTimeout time.Duration
	onTick        func(remaining int64)
	onExpired     func(reason Reason)

	mu         sync.Mutex
	state      State
	generation uint64 // bumped by Evaluate and Stop; stale callbacks compare against it
	cycle      string
	token      string // token the current cycle was evaluated with
	stopped    bool
	timer      Timer
	unwatch    context.CancelFunc
	remaining  int64 // countdown value in ModeTick
	displayed  bool
	expiresAt  time.Time

	notifications sync.WaitGroup
}

// New creates a monitor reading credentials from store and redirecting
// through nav.
func New(store *session.Store, nav Navigator, opts ...Option) *Monitor {
	m := &Monitor{
		store:         store,
		nav:           nav,
		mode:          ModeTick,
		now:           time.Now,
		scheduler:     realScheduler{},
		warning:       defaultWarning,
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Evaluate checks the stored token and either arms the deferred expiry or
// forces a logout straight away. Any callback armed by a previous call is
// cancelled first. While the session is active the store is watched, and a
// change to the stored token evaluates it again.
func (m *Monitor) Evaluate(ctx context.Context) State {
	return m.evaluate(ctx, 0)
}

// evaluate starts a new cycle. A non-zero expect only lets it run when the
// monitor is still on that generation and has not been stopped.
func (m *Monitor) evaluate(ctx context.Context, expect uint64) State {
	m.mu.Lock()
	if expect != 0 && (expect != m.generation || m.stopped) {
		state := m.state
		m.mu.Unlock()
		return state
	}
	m.stopped = false
	m.cancelLocked()
	m.generation++
	gen := m.generation
	m.cycle = uuid.NewString()
	m.state = Unchecked
	m.displayed = false
	m.remaining = 0
	m.expiresAt = time.Time{}
	m.token = ""
	m.mu.Unlock()

	creds, err := m.store.Get(ctx)
	if err != nil {
		m.expire(ctx, gen, ReasonStoreError, err)
		return m.State()
	}

	claims, err := token.Decode(creds.Token)
	switch {
	case errors.Is(err, errors.ErrTokenAbsent):
		m.expire(ctx, gen, ReasonTokenAbsent, nil)
		return m.State()
	case err != nil:
		m.expire(ctx, gen, ReasonTokenMalformed, err)
		return m.State()
	}

	remaining := claims.Remaining(m.now())
	if remaining <= 0 {
		m.expire(ctx, gen, ReasonTokenExpired, nil)
		return m.State()
	}

	m.mu.Lock()
	if gen != m.generation {
		// Superseded by a newer Evaluate or a Stop while reading the store
		state := m.state
		m.mu.Unlock()
		return state
	}
	m.state = Active
	m.token = creds.Token
	m.expiresAt = claims.ExpiresAt
	m.remaining = token.FloorSeconds(remaining)
	m.displayed = true
	switch m.mode {
	case ModeTimer:
		// One timer at a time: first the warning, then the expiry
		if m.warning > 0 && remaining > m.warning {
			m.timer = m.scheduler.AfterFunc(remaining-m.warning, func() { m.warn(gen) })
		} else {
			m.timer = m.scheduler.AfterFunc(remaining, func() { m.fire(gen) })
		}
	default:
		m.timer = m.scheduler.AfterFunc(firstTickDelay(remaining, m.remaining), func() { m.tick(gen) })
	}
	value, cycle := m.remaining, m.cycle
	watching := m.unwatch != nil
	m.mu.Unlock()

	if !watching {
		m.watch()
	}
	log.Debug().Str("cycle", cycle).Str("mode", m.mode.String()).Int64("remaining", value).
		Str("user", creds.UserID).Msg("session active")
	m.publish(value)
	return Active
}

// firstTickDelay places the ticks so that the one taking the countdown to
// zero fires exactly at expiry, never before it.
func firstTickDelay(remaining time.Duration, floored int64) time.Duration {
	if floored == 0 {
		return remaining
	}
	return tickInterval + remaining - time.Duration(floored)*time.Second
}

func (m *Monitor) tick(gen uint64) {
	m.mu.Lock()
	if gen != m.generation || m.state != Active {
		m.mu.Unlock()
		return
	}
	next := m.remaining - 1
	if next <= 0 {
		m.remaining = 0
		m.timer = nil
		m.mu.Unlock()
		m.publish(0)
		m.expireDeferred(gen)
		return
	}
	current := m.token
	m.timer = nil
	m.mu.Unlock()

	// Stores that cannot be watched are polled once a second instead
	if m.recheck(gen, current) {
		return
	}

	m.mu.Lock()
	if gen != m.generation || m.state != Active {
		m.mu.Unlock()
		return
	}
	m.remaining = next
	m.timer = m.scheduler.AfterFunc(tickInterval, func() { m.tick(gen) })
	m.mu.Unlock()
	m.publish(next)
}

// watch subscribes to store changes until the monitor stops or logs out
func (m *Monitor) watch() {
	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	if m.unwatch != nil || m.state != Active {
		m.mu.Unlock()
		cancel()
		return
	}
	m.unwatch = cancel
	m.mu.Unlock()

	err := m.store.Watch(ctx, m.storeChanged)
	if err == nil {
		return
	}
	if !errors.Is(err, errors.ErrUnsupported) {
		log.Warn().Err(err).Msg("cannot watch session store")
	}
	m.mu.Lock()
	m.unwatch = nil
	m.mu.Unlock()
	cancel()
}

func (m *Monitor) storeChanged() {
	m.mu.Lock()
	gen, current := m.generation, m.token
	active := m.state == Active && !m.stopped
	m.mu.Unlock()
	if active {
		m.recheck(gen, current)
	}
}

// recheck reads the store and starts a new cycle when the token is no
// longer the one cycle gen was evaluated with. It reports whether it did.
func (m *Monitor) recheck(gen uint64, current string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	creds, err := m.store.Get(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("cannot read session store, keeping current session")
		return false
	}
	if creds.Token == current {
		return false
	}

	m.mu.Lock()
	cycle := m.cycle
	m.mu.Unlock()
	log.Info().Str("cycle", cycle).Bool("cleared", creds.Empty()).Msg("stored session changed")
	m.evaluate(ctx, gen)
	return true
}

// warn publishes the remaining time once the warning threshold is reached
// in ModeTimer, then arms the expiry.
func (m *Monitor) warn(gen uint64) {
	m.mu.Lock()
	if gen != m.generation || m.state != Active {
		m.mu.Unlock()
		return
	}
	left := m.expiresAt.Sub(m.now())
	if left <= 0 {
		m.timer = nil
		m.mu.Unlock()
		m.expireDeferred(gen)
		return
	}
	m.timer = m.scheduler.AfterFunc(left, func() { m.fire(gen) })
	m.mu.Unlock()

	m.publish(token.FloorSeconds(left))
}

func (m *Monitor) fire(gen uint64) {
	m.mu.Lock()
	active := gen == m.generation && m.state == Active
	if active {
		m.timer = nil
	}
	m.mu.Unlock()
	if active {
		m.expireDeferred(gen)
	}
}

func (m *Monitor) expireDeferred(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	m.expire(ctx, gen, ReasonCountdownElapsed, nil)
}

// expire ends cycle gen. It does nothing when the cycle has been superseded
// or has already ended, so the deferred path logs out at most once.
func (m *Monitor) expire(ctx context.Context, gen uint64, reason Reason, cause error) {
	m.mu.Lock()
	if gen != m.generation || m.state == Expired {
		m.mu.Unlock()
		return
	}
	m.endLocked()
	cycle := m.cycle
	m.mu.Unlock()

	m.logout(ctx, cycle, reason, cause)
}

// ForceLogout clears the stored session and sends the user to the login
// view. Calling it again only navigates again.
func (m *Monitor) ForceLogout(ctx context.Context) {
	m.forceLogout(ctx, ReasonForced)
}

// Logout is the explicit user action. The server is told on a best-effort
// basis in the background; the local logout never waits for it.
func (m *Monitor) Logout(ctx context.Context) {
	if m.notifier != nil {
		creds, err := m.store.Get(ctx)
		if err == nil && !creds.Empty() {
			m.notifications.Add(1)
			go m.notify(creds.Token)
		}
	}
	m.forceLogout(ctx, ReasonUserLogout)
}

func (m *Monitor) notify(rawToken string) {
	defer m.notifications.Done()
	ctx, cancel := context.WithTimeout(context.Background(), m.notifyTimeout)
	defer cancel()
	if err := m.notifier.NotifyLogout(ctx, rawToken); err != nil {
		log.Warn().Err(err).Msg("logout notification failed")
	}
}

// Wait blocks until background logout notifications have finished
func (m *Monitor) Wait() {
	m.notifications.Wait()
}

func (m *Monitor) forceLogout(ctx context.Context, reason Reason) {
	m.mu.Lock()
	m.endLocked()
	cycle := m.cycle
	m.mu.Unlock()

	m.logout(ctx, cycle, reason, nil)
}

func (m *Monitor) logout(ctx context.Context, cycle string, reason Reason, cause error) {
	event := log.Info().Str("cycle", cycle).Str("reason", string(reason))
	if cause != nil {
		event = event.AnErr("cause", cause)
	}
	event.Msg("session ended")

	if err := m.store.Clear(ctx); err != nil {
		log.Error().Err(err).Str("cycle", cycle).Msg("failed to clear stored session")
	}
	if m.nav != nil {
		m.nav.Replace(RouteLogin)
	}
	if m.onExpired != nil {
		m.onExpired(reason)
	}
}

// Stop is called when the hosting view is torn down. Nothing armed before
// it will fire afterwards.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked()
	m.unwatchLocked()
	m.generation++
	m.stopped = true
	m.displayed = false
}

func (m *Monitor) endLocked() {
	m.cancelLocked()
	m.unwatchLocked()
	m.state = Expired
	m.displayed = false
	m.remaining = 0
}

func (m *Monitor) cancelLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Monitor) unwatchLocked() {
	if m.unwatch != nil {
		m.unwatch()
		m.unwatch = nil
	}
}

func (m *Monitor) publish(remaining int64) {
	if m.onTick != nil {
		m.onTick(remaining)
	}
}

// State returns the state of the current cycle
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Remaining returns the live countdown in whole seconds. ok is false when
// there is no countdown to show.
func (m *Monitor) Remaining() (seconds int64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remainingLocked()
}

func (m *Monitor) remainingLocked() (int64, bool) {
	if !m.displayed || m.state != Active {
		return 0, false
	}
	if m.mode == ModeTimer {
		return token.FloorSeconds(m.expiresAt.Sub(m.now())), true
	}
	return m.remaining, true
}

// Warning reports whether the countdown is within the warning threshold
func (m *Monitor) Warning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	remaining, ok := m.remainingLocked()
	return ok && time.Duration(remaining)*time.Second <= m.warning
}

// ExpiresAt returns the expiry of the active token
func (m *Monitor) ExpiresAt() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiresAt, m.state == Active
}
