// Package console is the terminal front end of the employee admin. Views
// that need a logged in user host a session monitor for their lifetime.
package console

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jrsteele09/go-employee-console/employees"
	"github.com/jrsteele09/go-employee-console/internal/errors"
	"github.com/jrsteele09/go-employee-console/monitor"
	"github.com/jrsteele09/go-employee-console/session"
	"github.com/rs/zerolog/log"
)

// Deps are the collaborators shared by every view
type Deps struct {
	AppName        string
	Store          *session.Store
	Client         *employees.Client
	Warning        time.Duration
	NotifyTimeout  time.Duration
	MonitorOptions []monitor.Option
}

// view is one screen. Mount runs when the view becomes active and Unmount
// when it is replaced.
type view interface {
	Mount() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	Unmount()
}

type sessionTickMsg struct {
	viewID    uint64
	remaining int64
}

// sessionEndedMsg follows the redirect to login when a monitor logs out
type sessionEndedMsg struct {
	reason monitor.Reason
}

const expiredFlash = "Your session has expired, please log in again"

type quitMsg struct{}

func quit() tea.Msg { return quitMsg{} }

// App is the root bubbletea model
type App struct {
	deps   Deps
	router *Router
	start  string

	current  view
	route    string
	nextView uint64
	width    int

	// active is the monitor of the current view. Monitors of views that
	// are gone are only waited on until their logout notification ends.
	monitorLock sync.Mutex
	active      *monitor.Monitor
	retired     sync.WaitGroup
	retiring    atomic.Int32
}

var _ tea.Model = (*App)(nil)

// NewApp builds the console. The first view shown is the employee list,
// whose monitor redirects to login when there is no usable session.
func NewApp(deps Deps, router *Router) *App {
	if deps.Warning <= 0 {
		deps.Warning = 10 * time.Second
	}
	if deps.AppName == "" {
		deps.AppName = "Employee Console"
	}
	return &App{deps: deps, router: router, start: RouteEmployees}
}

func (a *App) Init() tea.Cmd {
	return navigate(a.start, "")
}

// Route returns the route of the active view
func (a *App) Route() string {
	return a.route
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, a.shutdown()
		}
	case tea.WindowSizeMsg:
		a.width = msg.Width
	case NavigateMsg:
		return a, a.navigate(msg)
	case quitMsg:
		return a, a.shutdown()
	case sessionEndedMsg:
		if login, ok := a.current.(*loginView); ok && expiredReason(msg.reason) {
			login.flash = expiredFlash
		}
		return a, nil
	}

	if a.current == nil {
		return a, nil
	}
	return a, a.current.Update(msg)
}

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(a.deps.AppName))
	b.WriteString("\n")
	if a.current != nil {
		b.WriteString(a.current.View())
	}
	return b.String()
}

func (a *App) navigate(msg NavigateMsg) tea.Cmd {
	if a.current != nil {
		a.current.Unmount()
	}
	a.retire()
	a.nextView++
	a.route = msg.Route
	a.current = a.build(a.nextView, msg)
	log.Debug().Str("route", a.route).Uint64("view", a.nextView).Int32("retiring", a.retiring.Load()).Msg("navigate")
	return a.current.Mount()
}

func (a *App) build(id uint64, msg NavigateMsg) view {
	switch msg.Route {
	case RouteLogin:
		return newLoginView(a.deps, msg.Flash)
	case RouteRegister:
		return newRegisterView(a.deps)
	case RouteEmployees:
		return newListView(id, a.deps, a.newMonitor(id, monitor.ModeTick), msg.Flash)
	case RouteAddEmployee:
		return newFormView(id, a.deps, a.newMonitor(id, monitor.ModeTimer), 0)
	}
	if empID, ok := parseEditRoute(msg.Route); ok {
		return newFormView(id, a.deps, a.newMonitor(id, monitor.ModeTimer), empID)
	}

	log.Warn().Str("route", msg.Route).Msg("unknown route")
	a.route = RouteLogin
	return newLoginView(a.deps, "")
}

func (a *App) newMonitor(viewID uint64, mode monitor.Mode) *monitor.Monitor {
	opts := []monitor.Option{
		monitor.WithMode(mode),
		monitor.WithWarningThreshold(a.deps.Warning),
		monitor.WithOnTick(func(remaining int64) {
			a.router.Send(sessionTickMsg{viewID: viewID, remaining: remaining})
		}),
		monitor.WithOnExpired(func(reason monitor.Reason) {
			a.router.Send(sessionEndedMsg{reason: reason})
		}),
	}
	if a.deps.Client != nil {
		opts = append(opts, monitor.WithNotifier(a.deps.Client))
	}
	if a.deps.NotifyTimeout > 0 {
		opts = append(opts, monitor.WithNotifyTimeout(a.deps.NotifyTimeout))
	}
	m := monitor.New(a.deps.Store, a.router, append(opts, a.deps.MonitorOptions...)...)

	a.monitorLock.Lock()
	a.active = m
	a.monitorLock.Unlock()
	return m
}

// retire lets go of the current view's monitor once its background logout
// notification, if any, has finished
func (a *App) retire() {
	a.monitorLock.Lock()
	m := a.active
	a.active = nil
	a.monitorLock.Unlock()
	if m == nil {
		return
	}

	a.retired.Add(1)
	a.retiring.Add(1)
	go func() {
		defer a.retired.Done()
		defer a.retiring.Add(-1)
		m.Wait()
	}()
}

func expiredReason(reason monitor.Reason) bool {
	return reason == monitor.ReasonCountdownElapsed || reason == monitor.ReasonTokenExpired
}

func (a *App) shutdown() tea.Cmd {
	if a.current != nil {
		a.current.Unmount()
		a.current = nil
	}
	a.retire()
	return tea.Quit
}

// Wait blocks until logout notifications sent by any view have finished
func (a *App) Wait() {
	a.monitorLock.Lock()
	m := a.active
	a.monitorLock.Unlock()

	if m != nil {
		m.Wait()
	}
	a.retired.Wait()
}

func formatError(err error) string {
	if err == nil {
		return ""
	}
	var verr *employees.ValidationError
	if errors.As(err, &verr) {
		return "Please correct the highlighted fields"
	}
	var apiErr *employees.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
