package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/husseinbouik/taskman/internal/session"
	"github.com/husseinbouik/taskman/internal/ui/keys"
	"github.com/husseinbouik/taskman/internal/ui/nav"
	"github.com/husseinbouik/taskman/internal/ui/styles"
)

// LoginView collects credentials and establishes the session.
type LoginView struct {
	store      *session.Store
	styles     *styles.Styles
	keys       keys.KeyMap
	username   textinput.Model
	password   textinput.Model
	focusIdx   int // 0=username, 1=password, 2=sign in, 3=register link
	submitting bool
	status     statusLine
	width      int
	height     int
}

func NewLoginView(store *session.Store) *LoginView {
	username := textinput.New()
	username.Placeholder = "Username"
	username.CharLimit = 100
	username.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword

	return &LoginView{
		store:    store,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		username: username,
		password: password,
	}
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

type loginFailedMsg struct {
	err error
}

func (v *LoginView) submit() tea.Cmd {
	username := strings.TrimSpace(v.username.Value())
	password := v.password.Value()
	if username == "" || password == "" {
		return v.status.set("Username and password are required", statusError)
	}

	v.submitting = true
	return func() tea.Msg {
		if _, err := v.store.Login(context.Background(), username, password); err != nil {
			return loginFailedMsg{err: err}
		}
		return LoggedIn{}
	}
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case clearStatusMsg:
		v.status.handleClear(msg)
		return v, nil

	case loginFailedMsg:
		v.submitting = false
		return v, v.status.set("Login failed: invalid credentials or server unreachable", statusError)

	case tea.KeyMsg:
		if v.submitting {
			return v, nil
		}

		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit

		case msg.String() == "shift+tab":
			v.focusIdx = (v.focusIdx + 3) % 4
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % 4
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Enter):
			switch v.focusIdx {
			case 0:
				v.focusIdx = 1
				v.updateFocus()
				return v, nil
			case 1, 2:
				return v, v.submit()
			case 3:
				return v, navTo(nav.Register)
			}
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.username, cmd = v.username.Update(msg)
	case 1:
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *LoginView) updateFocus() {
	v.username.Blur()
	v.password.Blur()
	switch v.focusIdx {
	case 0:
		v.username.Focus()
	case 1:
		v.password.Focus()
	}
}

func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 40)

	usernameStyle := s.Input
	passwordStyle := s.Input
	signInStyle := s.Button
	registerStyle := s.Button

	switch v.focusIdx {
	case 0:
		usernameStyle = s.InputFocused
	case 1:
		passwordStyle = s.InputFocused
	case 2:
		signInStyle = s.ButtonFocused
	case 3:
		registerStyle = s.ButtonFocused
	}

	signInLabel := " Sign In "
	if v.submitting {
		signInLabel = " Signing in... "
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Task Manager"),
		"",
		"Username:",
		usernameStyle.Width(inputWidth).Render(v.username.View()),
		"",
		"Password:",
		passwordStyle.Width(inputWidth).Render(v.password.View()),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			signInStyle.Render(signInLabel),
			"  ",
			registerStyle.Render(" Register "),
		),
		"",
		v.status.render(s),
		s.TitleMuted.Render("Tab: next • Enter: submit"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
