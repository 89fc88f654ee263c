package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jrsteele09/go-employee-console/employees"
	"github.com/jrsteele09/go-employee-console/monitor"
	"github.com/rs/zerolog/log"
)

type pageMsg struct {
	viewID uint64
	page   employees.Page
	err    error
}

type deletedMsg struct {
	viewID uint64
	id     int64
	err    error
}

var listColumns = []table.Column{
	{Title: "ID", Width: 5},
	{Title: "Name", Width: 24},
	{Title: "Email", Width: 28},
	{Title: "Department", Width: 16},
	{Title: "Designation", Width: 16},
}

// listView shows the employee table under a ticking session countdown
type listView struct {
	deps  Deps
	guard *guard

	table    table.Model
	page     employees.Page
	loaded   bool
	loading  bool
	deleting *employees.Employee
	flash    string
	err      error
}

func newListView(id uint64, deps Deps, mon *monitor.Monitor, flash string) *listView {
	t := table.New(
		table.WithColumns(listColumns),
		table.WithFocused(true),
		table.WithHeight(pageSize(deps)+3),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.Foreground(colorAccent).Bold(true)
	t.SetStyles(styles)

	return &listView{
		deps:  deps,
		guard: newGuard(id, mon, deps.Warning),
		table: t,
		flash: flash,
	}
}

func pageSize(deps Deps) int {
	if deps.Client == nil {
		return 5
	}
	return deps.Client.PageSize()
}

func (v *listView) Mount() tea.Cmd {
	return v.guard.evaluate()
}

func (v *listView) Unmount() {
	v.guard.stop()
}

func (v *listView) Update(msg tea.Msg) tea.Cmd {
	if ok, active := v.guard.handle(msg); ok {
		if active {
			return v.fetch(0)
		}
		return nil
	}

	switch msg := msg.(type) {
	case pageMsg:
		if msg.viewID != v.guard.viewID {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.err = msg.err
			return nil
		}
		v.err = nil
		v.loaded = true
		v.page = msg.page
		v.table.SetRows(rows(msg.page.Content))
		v.table.SetCursor(0)
		return nil

	case deletedMsg:
		if msg.viewID != v.guard.viewID {
			return nil
		}
		if msg.err != nil {
			v.err = msg.err
			return nil
		}
		v.flash = fmt.Sprintf("Employee %d deleted", msg.id)
		number := v.page.Number
		if len(v.page.Content) == 1 && number > 0 {
			number--
		}
		return v.fetch(number)

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return nil
}

func (v *listView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.deleting != nil {
		switch msg.String() {
		case "y":
			target := v.deleting
			v.deleting = nil
			return v.remove(target.ID)
		case "n", "esc":
			v.deleting = nil
		}
		return nil
	}

	switch msg.String() {
	case "n", "right":
		if v.page.HasNext() && !v.loading {
			return v.fetch(v.page.Number + 1)
		}
	case "p", "left":
		if v.page.HasPrevious() && !v.loading {
			return v.fetch(v.page.Number - 1)
		}
	case "a":
		return navigate(RouteAddEmployee, "")
	case "e", "enter":
		if e, ok := v.selected(); ok {
			return navigate(EditRoute(e.ID), "")
		}
	case "d":
		if e, ok := v.selected(); ok {
			v.deleting = &e
		}
	case "r":
		return v.fetch(v.page.Number)
	case "l":
		return v.guard.logout()
	case "q":
		return quit
	default:
		var cmd tea.Cmd
		v.table, cmd = v.table.Update(msg)
		return cmd
	}
	return nil
}

func (v *listView) selected() (employees.Employee, bool) {
	i := v.table.Cursor()
	if i < 0 || i >= len(v.page.Content) {
		return employees.Employee{}, false
	}
	return v.page.Content[i], true
}

func (v *listView) fetch(number int) tea.Cmd {
	v.loading = true
	client, id := v.deps.Client, v.guard.viewID
	return func() tea.Msg {
		page, err := client.List(context.Background(), number, 0)
		if err != nil {
			log.Warn().Err(err).Int("page", number).Msg("failed to list employees")
		}
		return pageMsg{viewID: id, page: page, err: err}
	}
}

func (v *listView) remove(empID int64) tea.Cmd {
	client, id := v.deps.Client, v.guard.viewID
	return func() tea.Msg {
		err := client.Delete(context.Background(), empID)
		if err != nil {
			log.Warn().Err(err).Int64("employee", empID).Msg("failed to delete employee")
		}
		return deletedMsg{viewID: id, id: empID, err: err}
	}
}

func rows(list []employees.Employee) []table.Row {
	out := make([]table.Row, 0, len(list))
	for _, e := range list {
		out = append(out, table.Row{
			strconv.FormatInt(e.ID, 10),
			e.FullName(),
			e.Email,
			e.Department,
			e.Designation,
		})
	}
	return out
}

func (v *listView) View() string {
	var b strings.Builder
	if banner := v.guard.countdown(); banner != "" {
		b.WriteString(banner + "\n\n")
	}
	b.WriteString("Employees\n\n")
	if v.flash != "" {
		b.WriteString(flashStyle.Render(v.flash) + "\n\n")
	}

	switch {
	case !v.loaded && v.loading:
		b.WriteString("Loading...\n")
	case v.loaded && len(v.page.Content) == 0:
		b.WriteString("No employees found\n")
	case v.loaded:
		b.WriteString(v.table.View() + "\n")
		b.WriteString(fmt.Sprintf("Page %d of %d\n", v.page.Number+1, max(v.page.TotalPages, 1)))
	}

	if v.deleting != nil {
		b.WriteString("\n" + confirmStyle.Render(fmt.Sprintf("Delete %s? (y/n)", v.deleting.FullName())) + "\n")
	}
	if v.err != nil {
		b.WriteString("\n" + errorStyle.Render(formatError(v.err)) + "\n")
	}

	help := []string{"a add", "e edit", "d delete"}
	if v.page.HasPrevious() {
		help = append(help, "p previous")
	}
	if v.page.HasNext() {
		help = append(help, "n next")
	}
	help = append(help, "r refresh", "l logout", "q quit")
	b.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return b.String()
}
