package views

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/husseinbouik/taskman/internal/api"
	"github.com/husseinbouik/taskman/internal/ui/nav"
	"github.com/husseinbouik/taskman/internal/ui/styles"
)

// Navigate asks the app to switch views. The route guard is applied
// before rendering.
type Navigate struct {
	Route nav.Route
}

// SessionExpired reports that a protected call was rejected with a
// 401. The app clears the session and redirects to login.
type SessionExpired struct{}

// LoggedIn reports a successful login.
type LoggedIn struct{}

// LoggedOut reports an explicit logout request.
type LoggedOut struct{}

func navTo(name nav.Name) tea.Cmd {
	return func() tea.Msg {
		return Navigate{Route: nav.Route{Name: name}}
	}
}

func navToEntity(name nav.Name, id int64) tea.Cmd {
	return func() tea.Msg {
		return Navigate{Route: nav.Route{Name: name, ID: id}}
	}
}

// failure converts an operation error into the message the view loop
// handles: a 401 invalidates the session, anything else lands on the
// status line.
func failure(err error) tea.Msg {
	if api.IsUnauthorized(err) {
		return SessionExpired{}
	}
	return errMsg{err: err}
}

type errMsg struct {
	err error
}

// statusTTL bounds how long a success or error message stays visible.
const statusTTL = 4 * time.Second

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusError
)

type clearStatusMsg struct {
	seq int
}

// statusLine holds the most recent operation outcome. Each set bumps
// seq so a stale clear tick cannot erase a newer message.
type statusLine struct {
	text  string
	level statusLevel
	seq   int
}

func (s *statusLine) set(text string, level statusLevel) tea.Cmd {
	s.text = text
	s.level = level
	s.seq++
	seq := s.seq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (s *statusLine) handleClear(msg clearStatusMsg) {
	if msg.seq == s.seq {
		s.text = ""
	}
}

func (s *statusLine) render(st *styles.Styles) string {
	if s.text == "" {
		return ""
	}
	switch s.level {
	case statusError:
		return st.StatusError.Render(s.text)
	case statusSuccess:
		return st.StatusSuccess.Render(s.text)
	}
	return st.StatusInfo.Render(s.text)
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
