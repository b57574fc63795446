package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// loginForm is the email/password form shown while unauthenticated.
type loginForm struct {
	email      textinput.Model
	password   textinput.Model
	focus      int
	submitting bool
	err        string
}

func newInput(prompt, placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = 256
	in.Width = 40
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

func newLoginForm() loginForm {
	f := loginForm{
		email:    newInput("Email:    ", "you@example.com"),
		password: newInput("Password: ", ""),
	}
	f.password.EchoMode = textinput.EchoPassword
	f.email.Focus()
	return f
}

func (f *loginForm) setFocus(i int) {
	f.focus = i
	if i == 0 {
		f.email.Focus()
		f.password.Blur()
	} else {
		f.password.Focus()
		f.email.Blur()
	}
}

// credentials returns the trimmed email and the password when both are set.
func (f loginForm) credentials() (string, string, bool) {
	email := strings.TrimSpace(f.email.Value())
	password := f.password.Value()
	return email, password, email != "" && password != ""
}

// reset clears the password and shows err, keeping the email.
func (f *loginForm) reset(err string) {
	f.submitting = false
	f.err = err
	f.password.SetValue("")
	f.setFocus(1)
}

// update handles a key on the form. submit is true when the form should be
// sent.
func (f loginForm) update(msg tea.KeyMsg) (loginForm, tea.Cmd, bool) {
	if f.submitting {
		return f, nil, false
	}
	switch msg.String() {
	case "tab", "down":
		f.setFocus((f.focus + 1) % 2)
		return f, nil, false
	case "shift+tab", "up":
		f.setFocus((f.focus + 1) % 2)
		return f, nil, false
	case "enter":
		if f.focus == 0 {
			f.setFocus(1)
			return f, nil, false
		}
		if _, _, ok := f.credentials(); !ok {
			f.err = "Email and password are required"
			return f, nil, false
		}
		f.err = ""
		f.submitting = true
		return f, nil, true
	}

	var cmd tea.Cmd
	if f.focus == 0 {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return f, cmd, false
}

func (f loginForm) view() string {
	var b strings.Builder
	b.WriteString(ColumnTitleStyle.Render("Sign in"))
	b.WriteString("\n\n")
	b.WriteString(f.email.View())
	b.WriteString("\n")
	b.WriteString(f.password.View())
	b.WriteString("\n\n")
	switch {
	case f.submitting:
		b.WriteString(MutedStyle.Render("Signing in…"))
	case f.err != "":
		b.WriteString(ErrorStyle.Render(f.err))
	default:
		b.WriteString(MutedStyle.Render("enter to sign in · tab to switch field · ctrl+c to quit"))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(FormStyle.Render(b.String()))
}
