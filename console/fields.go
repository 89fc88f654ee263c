package console

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jrsteele09/go-employee-console/employees"
	"github.com/jrsteele09/go-employee-console/internal/errors"
)

type field struct {
	key   string // JSON name, matches validation error keys
	label string
	input textinput.Model
}

// fieldSet is a vertical list of labelled text inputs with one focused
type fieldSet struct {
	fields []field
	focus  int
	errs   map[string]string
}

type fieldSpec struct {
	key      string
	label    string
	secret   bool
	limit    int
	initial  string
	optional bool
}

func newFieldSet(specs ...fieldSpec) *fieldSet {
	fs := &fieldSet{}
	for _, spec := range specs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Width = 40
		ti.CharLimit = spec.limit
		if ti.CharLimit == 0 {
			ti.CharLimit = 100
		}
		if spec.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '*'
		}
		if spec.optional {
			ti.Placeholder = "optional"
		}
		ti.Cursor.SetMode(cursor.CursorStatic)
		ti.SetValue(spec.initial)
		fs.fields = append(fs.fields, field{key: spec.key, label: spec.label, input: ti})
	}
	fs.setFocus(0)
	return fs
}

func (fs *fieldSet) setFocus(i int) {
	n := len(fs.fields)
	fs.focus = ((i % n) + n) % n
	for j := range fs.fields {
		if j == fs.focus {
			fs.fields[j].input.Focus()
		} else {
			fs.fields[j].input.Blur()
		}
	}
}

func (fs *fieldSet) value(key string) string {
	for _, f := range fs.fields {
		if f.key == key {
			return strings.TrimSpace(f.input.Value())
		}
	}
	return ""
}

func (fs *fieldSet) setValue(key, v string) {
	for i := range fs.fields {
		if fs.fields[i].key == key {
			fs.fields[i].input.SetValue(v)
		}
	}
}

// setError records validation messages, or clears them when err carries none
func (fs *fieldSet) setError(err error) {
	fs.errs = nil
	var verr *employees.ValidationError
	if errors.As(err, &verr) {
		fs.errs = verr.Fields
	}
}

// update moves focus on tab and arrows, and feeds everything else to the
// focused input. It reports whether the message was a focus move.
func (fs *fieldSet) update(msg tea.Msg) (tea.Cmd, bool) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			fs.setFocus(fs.focus + 1)
			return nil, true
		case "shift+tab", "up":
			fs.setFocus(fs.focus - 1)
			return nil, true
		}
	}
	var cmd tea.Cmd
	fs.fields[fs.focus].input, cmd = fs.fields[fs.focus].input.Update(msg)
	return cmd, false
}

func (fs *fieldSet) view() string {
	var b strings.Builder
	for _, f := range fs.fields {
		b.WriteString(labelStyle.Render(f.label))
		b.WriteString(f.input.View())
		b.WriteString("\n")
		if msg, ok := fs.errs[f.key]; ok {
			b.WriteString(labelStyle.Render(""))
			b.WriteString(errorStyle.Render(msg))
			b.WriteString("\n")
		}
	}
	return b.String()
}
