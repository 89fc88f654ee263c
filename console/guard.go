package console

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jrsteele09/go-employee-console/monitor"
)

type evaluatedMsg struct {
	viewID uint64
	state  monitor.State
}

// guard ties a monitor to the lifetime of the view hosting it
type guard struct {
	viewID    uint64
	mon       *monitor.Monitor
	warning   time.Duration
	unmounted atomic.Bool

	remaining int64
	counting  bool
}

func newGuard(viewID uint64, mon *monitor.Monitor, warning time.Duration) *guard {
	return &guard{viewID: viewID, mon: mon, warning: warning}
}

// evaluate runs the session check off the UI loop. The monitor may navigate
// through the router while it runs.
func (g *guard) evaluate() tea.Cmd {
	return func() tea.Msg {
		state := g.mon.Evaluate(context.Background())
		if g.unmounted.Load() {
			// The view went away while the check ran
			g.mon.Stop()
		}
		return evaluatedMsg{viewID: g.viewID, state: state}
	}
}

func (g *guard) stop() {
	g.unmounted.Store(true)
	g.mon.Stop()
}

// logout is the explicit user logout
func (g *guard) logout() tea.Cmd {
	return func() tea.Msg {
		g.mon.Logout(context.Background())
		return nil
	}
}

// handle consumes messages addressed to this guard. ok reports whether the
// message was one, active whether the session check passed.
func (g *guard) handle(msg tea.Msg) (ok, active bool) {
	switch msg := msg.(type) {
	case sessionTickMsg:
		if msg.viewID != g.viewID {
			return true, false
		}
		g.remaining = msg.remaining
		g.counting = true
		return true, false
	case evaluatedMsg:
		if msg.viewID != g.viewID {
			return true, false
		}
		return true, msg.state == monitor.Active
	}
	return false, false
}

func (g *guard) warn() bool {
	return time.Duration(g.remaining)*time.Second <= g.warning
}

// countdown renders the live countdown banner
func (g *guard) countdown() string {
	if !g.counting {
		return ""
	}
	text := "Session expires in: " + monitor.FormatRemaining(g.remaining)
	if g.warn() {
		return bannerDangerStyle.Render(text)
	}
	return bannerStyle.Render(text)
}

// deadline renders the expiry time for views without a ticking countdown.
// Their monitor sends one sessionTickMsg when the warning starts, which
// redraws it in the danger style.
func (g *guard) deadline() string {
	exp, ok := g.mon.ExpiresAt()
	if !ok {
		return ""
	}
	at := exp.Local().Format("15:04:05")
	if g.mon.Warning() {
		return bannerDangerStyle.Render("Session expires soon, at " + at)
	}
	return bannerStyle.Render("Session expires at " + at)
}
