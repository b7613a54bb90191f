package views

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/husseinbouik/taskman/internal/api"
	"github.com/husseinbouik/taskman/internal/ui/keys"
	"github.com/husseinbouik/taskman/internal/ui/nav"
	"github.com/husseinbouik/taskman/internal/ui/styles"
)

// RegisterView creates a new account and hands off to the login view.
type RegisterView struct {
	client     *api.Client
	styles     *styles.Styles
	keys       keys.KeyMap
	username   textinput.Model
	email      textinput.Model
	password   textinput.Model
	focusIdx   int // 0=username, 1=email, 2=password, 3=create, 4=back
	submitting bool
	status     statusLine
	width      int
	height     int
}

func NewRegisterView(client *api.Client) *RegisterView {
	username := textinput.New()
	username.Placeholder = "Username"
	username.CharLimit = 100
	username.Focus()

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 100

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword

	return &RegisterView{
		client:   client,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		username: username,
		email:    email,
		password: password,
	}
}

func (v *RegisterView) Init() tea.Cmd {
	return textinput.Blink
}

type registerFailedMsg struct {
	err error
}

func (v *RegisterView) submit() tea.Cmd {
	username := strings.TrimSpace(v.username.Value())
	email := strings.TrimSpace(v.email.Value())
	password := v.password.Value()
	if username == "" || password == "" {
		return v.status.set("Username and password are required", statusError)
	}

	v.submitting = true
	return func() tea.Msg {
		if _, err := v.client.Register(context.Background(), username, email, password); err != nil {
			return registerFailedMsg{err: err}
		}
		return Navigate{Route: nav.Route{Name: nav.Login}}
	}
}

func (v *RegisterView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case clearStatusMsg:
		v.status.handleClear(msg)
		return v, nil

	case registerFailedMsg:
		v.submitting = false
		text := "Registration failed"
		var apiErr *api.Error
		if errors.As(msg.err, &apiErr) && apiErr.Message != "" {
			text = apiErr.Message
		}
		return v, v.status.set(text, statusError)

	case tea.KeyMsg:
		if v.submitting {
			return v, nil
		}

		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit

		case key.Matches(msg, v.keys.Back):
			return v, navTo(nav.Login)

		case msg.String() == "shift+tab":
			v.focusIdx = (v.focusIdx + 4) % 5
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % 5
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Enter):
			switch v.focusIdx {
			case 0, 1:
				v.focusIdx++
				v.updateFocus()
				return v, nil
			case 2, 3:
				return v, v.submit()
			case 4:
				return v, navTo(nav.Login)
			}
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.username, cmd = v.username.Update(msg)
	case 1:
		v.email, cmd = v.email.Update(msg)
	case 2:
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *RegisterView) updateFocus() {
	v.username.Blur()
	v.email.Blur()
	v.password.Blur()
	switch v.focusIdx {
	case 0:
		v.username.Focus()
	case 1:
		v.email.Focus()
	case 2:
		v.password.Focus()
	}
}

func (v *RegisterView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 40)

	usernameStyle := s.Input
	emailStyle := s.Input
	passwordStyle := s.Input
	createStyle := s.Button
	backStyle := s.Button

	switch v.focusIdx {
	case 0:
		usernameStyle = s.InputFocused
	case 1:
		emailStyle = s.InputFocused
	case 2:
		passwordStyle = s.InputFocused
	case 3:
		createStyle = s.ButtonFocused
	case 4:
		backStyle = s.ButtonFocused
	}

	createLabel := " Create Account "
	if v.submitting {
		createLabel = " Creating... "
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Create Account"),
		"",
		"Username:",
		usernameStyle.Width(inputWidth).Render(v.username.View()),
		"",
		"Email:",
		emailStyle.Width(inputWidth).Render(v.email.View()),
		"",
		"Password:",
		passwordStyle.Width(inputWidth).Render(v.password.View()),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			createStyle.Render(createLabel),
			"  ",
			backStyle.Render(" Back to Login "),
		),
		"",
		v.status.render(s),
		s.TitleMuted.Render("Tab: next • Enter: submit • Esc: back"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
