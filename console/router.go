package console

import (
	"strconv"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jrsteele09/go-employee-console/monitor"
	"github.com/rs/zerolog/log"
)

// Routes of the console views
const (
	RouteLogin        = monitor.RouteLogin
	RouteRegister     = "/register"
	RouteEmployees    = "/employees"
	RouteAddEmployee  = "/employees/add"
	RouteEditEmployee = "/employees/edit"
)

// EditRoute is the route of the edit view for employee id
func EditRoute(id int64) string {
	return RouteEditEmployee + "/" + strconv.FormatInt(id, 10)
}

func parseEditRoute(route string) (int64, bool) {
	raw, ok := strings.CutPrefix(route, RouteEditEmployee+"/")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

// NavigateMsg asks the app to replace the active view. There is no history
// to go back to.
type NavigateMsg struct {
	Route string
	Flash string
}

func navigate(route, flash string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Route: route, Flash: flash}
	}
}

// Router delivers navigation and session events from outside the UI loop.
// It must be bound to the running program before monitors fire.
type Router struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

var _ monitor.Navigator = (*Router)(nil)

func NewRouter() *Router {
	return &Router{}
}

// Bind connects the router to a sender, normally (*tea.Program).Send
func (r *Router) Bind(send func(tea.Msg)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = send
}

func (r *Router) Replace(route string) {
	r.Send(NavigateMsg{Route: route})
}

func (r *Router) Send(msg tea.Msg) {
	r.mu.Lock()
	send := r.send
	r.mu.Unlock()

	if send == nil {
		log.Warn().Type("msg", msg).Msg("router not bound, dropping message")
		return
	}
	send(msg)
}
