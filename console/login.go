package console

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jrsteele09/go-employee-console/employees"
	"github.com/jrsteele09/go-employee-console/session"
	"github.com/rs/zerolog/log"
)

type loginDoneMsg struct {
	err error
}

// loginView is public, so it hosts no monitor
type loginView struct {
	deps    Deps
	fields  *fieldSet
	flash   string
	err     error
	pending bool
}

func newLoginView(deps Deps, flash string) *loginView {
	return &loginView{
		deps:  deps,
		flash: flash,
		fields: newFieldSet(
			fieldSpec{key: "email", label: "Email"},
			fieldSpec{key: "password", label: "Password", secret: true},
		),
	}
}

func (v *loginView) Mount() tea.Cmd { return nil }

func (v *loginView) Unmount() {}

func (v *loginView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loginDoneMsg:
		v.pending = false
		if msg.err != nil {
			v.err = msg.err
			v.fields.setError(msg.err)
			return nil
		}
		return navigate(RouteEmployees, "")
	case tea.KeyMsg:
		if v.pending {
			return nil
		}
		switch msg.String() {
		case "enter":
			return v.submit()
		case "ctrl+r":
			return navigate(RouteRegister, "")
		}
	}
	cmd, _ := v.fields.update(msg)
	return cmd
}

func (v *loginView) submit() tea.Cmd {
	form := employees.LoginForm{
		Email:    v.fields.value("email"),
		Password: v.fields.value("password"),
	}
	if err := employees.Validate(form); err != nil {
		v.err = err
		v.fields.setError(err)
		return nil
	}
	v.err = nil
	v.flash = ""
	v.fields.setError(nil)
	v.pending = true

	client, store := v.deps.Client, v.deps.Store
	return func() tea.Msg {
		ctx := context.Background()
		result, err := client.Login(ctx, form)
		if err != nil {
			log.Info().Err(err).Msg("login failed")
			return loginDoneMsg{err: err}
		}
		if err := store.Set(ctx, session.Credentials{Token: result.Token, UserID: result.UserID}); err != nil {
			log.Error().Err(err).Msg("failed to store session")
			return loginDoneMsg{err: err}
		}
		log.Info().Str("user", result.UserID).Msg("logged in")
		return loginDoneMsg{}
	}
}

func (v *loginView) View() string {
	var b strings.Builder
	b.WriteString("Log in\n\n")
	if v.flash != "" {
		b.WriteString(flashStyle.Render(v.flash) + "\n\n")
	}
	b.WriteString(v.fields.view())
	if v.pending {
		b.WriteString("\nLogging in...\n")
	}
	if v.err != nil {
		b.WriteString("\n" + errorStyle.Render(formatError(v.err)) + "\n")
	}
	b.WriteString(helpStyle.Render("tab next field • enter log in • ctrl+r register • ctrl+c quit"))
	return b.String()
}
