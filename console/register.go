package console

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jrsteele09/go-employee-console/employees"
)

type registeredMsg struct {
	err error
}

type registerView struct {
	deps    Deps
	fields  *fieldSet
	err     error
	pending bool
}

func newRegisterView(deps Deps) *registerView {
	return &registerView{
		deps: deps,
		fields: newFieldSet(
			fieldSpec{key: "username", label: "Username", limit: 50},
			fieldSpec{key: "email", label: "Email"},
			fieldSpec{key: "password", label: "Password", secret: true, limit: 50},
			fieldSpec{key: "confirmPassword", label: "Confirm", secret: true, limit: 50},
			fieldSpec{key: "role", label: "Role", initial: employees.RoleUser, limit: 5},
		),
	}
}

func (v *registerView) Mount() tea.Cmd { return nil }

func (v *registerView) Unmount() {}

func (v *registerView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case registeredMsg:
		v.pending = false
		if msg.err != nil {
			v.err = msg.err
			v.fields.setError(msg.err)
			return nil
		}
		return navigate(RouteLogin, "Registration successful, please log in")
	case tea.KeyMsg:
		if v.pending {
			return nil
		}
		switch msg.String() {
		case "enter":
			return v.submit()
		case "esc":
			return navigate(RouteLogin, "")
		}
	}
	cmd, _ := v.fields.update(msg)
	return cmd
}

func (v *registerView) submit() tea.Cmd {
	form := employees.RegisterForm{
		Username:        v.fields.value("username"),
		Email:           v.fields.value("email"),
		Password:        v.fields.value("password"),
		ConfirmPassword: v.fields.value("confirmPassword"),
		Role:            strings.ToUpper(v.fields.value("role")),
	}
	if err := employees.Validate(form); err != nil {
		v.err = err
		v.fields.setError(err)
		return nil
	}
	v.err = nil
	v.fields.setError(nil)
	v.pending = true

	client := v.deps.Client
	return func() tea.Msg {
		return registeredMsg{err: client.Register(context.Background(), form)}
	}
}

func (v *registerView) View() string {
	var b strings.Builder
	b.WriteString("Register\n\n")
	b.WriteString(v.fields.view())
	if v.pending {
		b.WriteString("\nRegistering...\n")
	}
	if v.err != nil {
		b.WriteString("\n" + errorStyle.Render(formatError(v.err)) + "\n")
	}
	b.WriteString(helpStyle.Render("tab next field • enter register • esc back to login"))
	return b.String()
}
