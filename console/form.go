package console

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jrsteele09/go-employee-console/employees"
	"github.com/jrsteele09/go-employee-console/monitor"
	"github.com/rs/zerolog/log"
)

type employeeMsg struct {
	viewID   uint64
	employee employees.Employee
	err      error
}

type savedMsg struct {
	viewID uint64
	err    error
}

// formView adds an employee, or edits one when employeeID is set. It holds
// a single expiry timer rather than a ticking countdown.
type formView struct {
	deps       Deps
	guard      *guard
	employeeID int64
	employee   employees.Employee

	fields  *fieldSet
	ready   bool
	pending bool
	err     error
}

func newFormView(id uint64, deps Deps, mon *monitor.Monitor, employeeID int64) *formView {
	return &formView{
		deps:       deps,
		guard:      newGuard(id, mon, deps.Warning),
		employeeID: employeeID,
		fields: newFieldSet(
			fieldSpec{key: "firstName", label: "First name", limit: 50},
			fieldSpec{key: "lastName", label: "Last name", limit: 50},
			fieldSpec{key: "email", label: "Email"},
			fieldSpec{key: "password", label: "Password", secret: true, limit: 50, optional: true},
			fieldSpec{key: "department", label: "Department", optional: true},
			fieldSpec{key: "designation", label: "Designation", optional: true},
			fieldSpec{key: "phoneNumber", label: "Phone", limit: 20, optional: true},
			fieldSpec{key: "address", label: "Address", limit: 200, optional: true},
		),
	}
}

func (v *formView) editing() bool {
	return v.employeeID != 0
}

func (v *formView) Mount() tea.Cmd {
	return v.guard.evaluate()
}

func (v *formView) Unmount() {
	v.guard.stop()
}

func (v *formView) Update(msg tea.Msg) tea.Cmd {
	if ok, active := v.guard.handle(msg); ok {
		if !active {
			return nil
		}
		if v.editing() {
			return v.load()
		}
		v.ready = true
		return nil
	}

	switch msg := msg.(type) {
	case employeeMsg:
		if msg.viewID != v.guard.viewID {
			return nil
		}
		if msg.err != nil {
			v.err = msg.err
			return nil
		}
		v.employee = msg.employee
		v.fill(msg.employee)
		v.ready = true
		return nil

	case savedMsg:
		if msg.viewID != v.guard.viewID {
			return nil
		}
		v.pending = false
		if msg.err != nil {
			v.err = msg.err
			v.fields.setError(msg.err)
			return nil
		}
		flash := "Employee added"
		if v.editing() {
			flash = "Employee updated"
		}
		return navigate(RouteEmployees, flash)

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return navigate(RouteEmployees, "")
		case "enter":
			if v.ready && !v.pending {
				return v.submit()
			}
			return nil
		}
	}

	if !v.ready || v.pending {
		return nil
	}
	cmd, _ := v.fields.update(msg)
	return cmd
}

func (v *formView) load() tea.Cmd {
	client, id, empID := v.deps.Client, v.guard.viewID, v.employeeID
	return func() tea.Msg {
		e, err := client.Find(context.Background(), empID)
		return employeeMsg{viewID: id, employee: e, err: err}
	}
}

func (v *formView) fill(e employees.Employee) {
	v.fields.setValue("firstName", e.FirstName)
	v.fields.setValue("lastName", e.LastName)
	v.fields.setValue("email", e.Email)
	v.fields.setValue("password", e.Password)
	v.fields.setValue("department", e.Department)
	v.fields.setValue("designation", e.Designation)
	v.fields.setValue("phoneNumber", e.PhoneNumber)
	v.fields.setValue("address", e.Address)
}

func (v *formView) collect() employees.Employee {
	e := v.employee
	e.ID = v.employeeID
	e.FirstName = v.fields.value("firstName")
	e.LastName = v.fields.value("lastName")
	e.Email = v.fields.value("email")
	e.Password = v.fields.value("password")
	e.Department = v.fields.value("department")
	e.Designation = v.fields.value("designation")
	e.PhoneNumber = v.fields.value("phoneNumber")
	e.Address = v.fields.value("address")
	return e
}

func (v *formView) submit() tea.Cmd {
	e := v.collect()
	if err := employees.Validate(e); err != nil {
		v.err = err
		v.fields.setError(err)
		return nil
	}
	v.err = nil
	v.fields.setError(nil)
	v.pending = true

	client, store, id, editing := v.deps.Client, v.deps.Store, v.guard.viewID, v.editing()
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if editing {
			creds, serr := store.Get(ctx)
			if serr != nil {
				return savedMsg{viewID: id, err: serr}
			}
			err = client.Update(ctx, creds.UserID, e)
		} else {
			err = client.Add(ctx, e)
		}
		if err != nil {
			log.Warn().Err(err).Bool("editing", editing).Msg("failed to save employee")
		}
		return savedMsg{viewID: id, err: err}
	}
}

func (v *formView) View() string {
	var b strings.Builder
	if banner := v.guard.deadline(); banner != "" {
		b.WriteString(banner + "\n\n")
	}
	if v.editing() {
		b.WriteString(fmt.Sprintf("Edit employee %d\n\n", v.employeeID))
	} else {
		b.WriteString("Add employee\n\n")
	}

	if v.ready {
		b.WriteString(v.fields.view())
	} else if v.err == nil {
		b.WriteString("Loading...\n")
	}
	if v.pending {
		b.WriteString("\nSaving...\n")
	}
	if v.err != nil {
		b.WriteString("\n" + errorStyle.Render(formatError(v.err)) + "\n")
	}
	b.WriteString(helpStyle.Render("tab next field • enter save • esc cancel"))
	return b.String()
}
