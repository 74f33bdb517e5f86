package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"shopadmin/internal/backend"
)

// loginPage is the sign-in form shown whenever no admitted session exists.
type loginPage struct {
	auth backend.SessionAuthority

	email    textinput.Model
	password textinput.Model
	focus    int // 0 email, 1 password
	busy     bool
	notice   string

	styles Styles
}

func newLoginPage(auth backend.SessionAuthority, styles Styles) *loginPage {
	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 128
	email.Width = 36

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 128
	password.Width = 36
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &loginPage{
		auth:     auth,
		email:    email,
		password: password,
		styles:   styles,
	}
}

func (p *loginPage) reset() tea.Cmd {
	p.busy = false
	p.password.SetValue("")
	p.email.Blur()
	p.password.Blur()
	p.focus = 0
	return p.email.Focus()
}

// signIn attempts authentication. signUp creates the account instead; the
// admission check downstream decides whether either may enter.
func (p *loginPage) submit(signUp bool) tea.Cmd {
	email := strings.TrimSpace(p.email.Value())
	password := p.password.Value()
	p.busy = true
	p.notice = ""
	auth := p.auth
	return func() tea.Msg {
		var err error
		if signUp {
			_, err = auth.SignUp(context.Background(), email, password)
		} else {
			_, err = auth.SignIn(context.Background(), email, password)
		}
		return signInResultMsg{err: err}
	}
}

func (p *loginPage) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if p.busy {
			return nil
		}
		switch msg.String() {
		case "tab", "down":
			return p.toggleFocus()
		case "shift+tab", "up":
			return p.toggleFocus()
		case "enter":
			return p.submit(false)
		case "ctrl+n":
			return p.submit(true)
		}
		var cmd tea.Cmd
		if p.focus == 0 {
			p.email, cmd = p.email.Update(msg)
		} else {
			p.password, cmd = p.password.Update(msg)
		}
		return cmd

	case signInResultMsg:
		p.busy = false
		if msg.err != nil {
			p.notice = p.styles.Error.Render(backend.UserMessage(msg.err))
			return nil
		}
		// Success flows in through the session change callback.
		p.notice = ""

	case forcedSignOutMsg:
		p.busy = false
		p.notice = p.styles.Error.Render("This account does not have admin access.")
	}
	return nil
}

func (p *loginPage) toggleFocus() tea.Cmd {
	if p.focus == 0 {
		p.focus = 1
		p.email.Blur()
		return p.password.Focus()
	}
	p.focus = 0
	p.password.Blur()
	return p.email.Focus()
}

func (p *loginPage) view() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render("Shop Admin") + "\n")
	sb.WriteString(p.styles.Subtitle.Render("Sign in to continue") + "\n\n")

	emailStyle, passStyle := p.styles.Input, p.styles.Input
	if p.focus == 0 {
		emailStyle = p.styles.Focused
	} else {
		passStyle = p.styles.Focused
	}
	sb.WriteString(emailStyle.Render(p.email.View()) + "\n")
	sb.WriteString(passStyle.Render(p.password.View()) + "\n\n")

	if p.busy {
		sb.WriteString(p.styles.Muted.Render("Signing in...") + "\n")
	} else {
		sb.WriteString(p.styles.Muted.Render("[enter] Sign in  [ctrl+n] Sign up  [ctrl+c] Quit") + "\n")
	}
	if p.notice != "" {
		sb.WriteString("\n" + p.notice + "\n")
	}
	return p.styles.Card.Render(sb.String())
}
