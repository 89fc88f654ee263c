package console

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jrsteele09/go-employee-console/kv"
	"github.com/jrsteele09/go-employee-console/session"
	"github.com/stretchr/testify/require"
)

func TestApp_OnlyTracksTheCurrentMonitor(t *testing.T) {
	router := NewRouter()
	router.Bind(func(tea.Msg) {})
	app := NewApp(Deps{Store: session.NewStore(kv.NewMemory())}, router)

	for i := 0; i < 50; i++ {
		app.navigate(NavigateMsg{Route: RouteAddEmployee})
	}
	first := app.active
	require.NotNil(t, first)

	app.navigate(NavigateMsg{Route: RouteEmployees})
	require.NotSame(t, first, app.active)
	require.Eventually(t, func() bool { return app.retiring.Load() == 0 }, time.Second, 5*time.Millisecond)

	app.navigate(NavigateMsg{Route: RouteLogin})
	require.Nil(t, app.active)
	app.Wait()
}
