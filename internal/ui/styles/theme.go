package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color scheme for the application
type Theme struct {
	Name string

	// Base colors
	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// UI element colors
	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Background:    lipgloss.Color("#1a1b26"),
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary:   lipgloss.Color("#7aa2f7"),
	Secondary: lipgloss.Color("#bb9af7"),
	Accent:    lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),
	Info:    lipgloss.Color("#7aa2f7"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
}

// Current holds the active theme
var Current = TokyoNight

// MaxWidth is the maximum content width for the app (classic terminal width)
const MaxWidth = 80

// ContentWidth returns the actual content width to use (min of terminal width and MaxWidth)
func ContentWidth(terminalWidth int) int {
	if terminalWidth > MaxWidth {
		return MaxWidth
	}
	return terminalWidth
}

// CenterView wraps content and centers it horizontally if terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// Styles holds all the pre-computed styles for the UI
type Styles struct {
	// App container
	App lipgloss.Style

	// Titles
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	// Lists
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	// Buttons
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style

	// Input fields
	Input        lipgloss.Style
	InputFocused lipgloss.Style

	// Dashboard stat boxes
	StatBox      lipgloss.Style
	StatValue    lipgloss.Style
	StatLabel    lipgloss.Style
	StatAlert    lipgloss.Style
	SectionTitle lipgloss.Style

	// Status line feedback
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style

	// Task status badges
	BadgePending    lipgloss.Style
	BadgeInProgress lipgloss.Style
	BadgeCompleted  lipgloss.Style
	BadgeOverdue    lipgloss.Style

	// Help text
	Help    lipgloss.Style
	HelpKey lipgloss.Style

	// Status bar
	StatusBar lipgloss.Style
}

// NewStyles creates styles based on the current theme
func NewStyles() *Styles {
	t := Current

	return &Styles{
		App: lipgloss.NewStyle().
			Background(t.Background).
			Foreground(t.Foreground),

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TitleMuted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 2),

		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 2).
			Bold(true),

		Button: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2),

		ButtonFocused: lipgloss.NewStyle().
			Foreground(t.Primary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 2).
			Bold(true),

		ButtonPrimary: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		Input: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		StatBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2).
			MarginRight(1),

		StatValue: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		StatLabel: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		StatAlert: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		SectionTitle: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),

		StatusInfo: lipgloss.NewStyle().
			Foreground(t.Info).
			Padding(0, 1),

		StatusError: lipgloss.NewStyle().
			Foreground(t.Error).
			Padding(0, 1),

		StatusSuccess: lipgloss.NewStyle().
			Foreground(t.Success).
			Padding(0, 1),

		BadgePending: lipgloss.NewStyle().
			Foreground(t.Warning),

		BadgeInProgress: lipgloss.NewStyle().
			Foreground(t.Info),

		BadgeCompleted: lipgloss.NewStyle().
			Foreground(t.Success),

		BadgeOverdue: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(1, 2),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		StatusBar: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),
	}
}
