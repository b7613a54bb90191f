package views

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/husseinbouik/taskman/internal/api"
	"github.com/husseinbouik/taskman/internal/dashboard"
	"github.com/husseinbouik/taskman/internal/models"
	"github.com/husseinbouik/taskman/internal/ui/keys"
	"github.com/husseinbouik/taskman/internal/ui/nav"
	"github.com/husseinbouik/taskman/internal/ui/styles"
)

const recentLimit = 3

// DashboardView is the default protected landing view: aggregate
// counters over the current task/project collections plus the most
// recent items. Tasks and projects are fetched concurrently and the
// metrics are recomputed once both arrive.
type DashboardView struct {
	client *api.Client
	styles *styles.Styles
	keys   keys.KeyMap

	tasks          []models.Task
	projects       []models.Project
	tasksLoaded    bool
	projectsLoaded bool
	metrics        dashboard.Metrics

	status statusLine
	width  int
	height int
}

func NewDashboardView(client *api.Client) *DashboardView {
	return &DashboardView{
		client: client,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

func (v *DashboardView) Init() tea.Cmd {
	v.tasksLoaded = false
	v.projectsLoaded = false
	return tea.Batch(v.loadTasks, v.loadProjects)
}

type dashTasksMsg struct {
	tasks []models.Task
}

type dashProjectsMsg struct {
	projects []models.Project
}

func (v *DashboardView) loadTasks() tea.Msg {
	tasks, err := v.client.ListTasks(context.Background())
	if err != nil {
		return failure(err)
	}
	return dashTasksMsg{tasks: tasks}
}

func (v *DashboardView) loadProjects() tea.Msg {
	projects, err := v.client.ListProjects(context.Background())
	if err != nil {
		return failure(err)
	}
	return dashProjectsMsg{projects: projects}
}

func (v *DashboardView) recompute() {
	if v.tasksLoaded && v.projectsLoaded {
		v.metrics = dashboard.Compute(v.tasks, v.projects, time.Now())
	}
}

func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case dashTasksMsg:
		v.tasks = msg.tasks
		v.tasksLoaded = true
		v.recompute()
		return v, nil

	case dashProjectsMsg:
		v.projects = msg.projects
		v.projectsLoaded = true
		v.recompute()
		return v, nil

	case errMsg:
		return v, v.status.set("Failed to load dashboard: "+msg.err.Error(), statusError)

	case clearStatusMsg:
		v.status.handleClear(msg)
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Projects):
			return v, navTo(nav.Projects)
		case key.Matches(msg, v.keys.Tasks):
			return v, navTo(nav.Tasks)
		case key.Matches(msg, v.keys.New):
			return v, navTo(nav.AddTask)
		case key.Matches(msg, v.keys.Refresh):
			return v, v.Init()
		case key.Matches(msg, v.keys.Logout):
			return v, func() tea.Msg { return LoggedOut{} }
		}
	}

	return v, nil
}

func (v *DashboardView) View() string {
	s := v.styles

	if !v.tasksLoaded || !v.projectsLoaded {
		return styles.CenterView(s.TitleMuted.Render("Loading dashboard..."), v.width, v.height)
	}

	m := v.metrics

	counters := lipgloss.JoinHorizontal(lipgloss.Top,
		v.statBox(fmt.Sprintf("%d", m.TotalTasks), "Total Tasks", false),
		v.statBox(fmt.Sprintf("%d", m.CompletedTasks), "Completed", false),
		v.statBox(fmt.Sprintf("%d", m.PendingTasks), "Pending", false),
		v.statBox(fmt.Sprintf("%d", m.OverdueTasks), "Overdue", m.OverdueTasks > 0),
	)
	secondRow := lipgloss.JoinHorizontal(lipgloss.Top,
		v.statBox(fmt.Sprintf("%d", m.TotalProjects), "Projects", false),
		v.statBox(fmt.Sprintf("%d%%", m.CompletionRate), "Completion", false),
		v.statBox(fmt.Sprintf("%d", m.TasksDueToday), "Due Today", false),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Dashboard"),
		"",
		counters,
		secondRow,
		"",
		s.SectionTitle.Render("Recent Tasks"),
		v.renderRecentTasks(),
		"",
		s.SectionTitle.Render("Recent Projects"),
		v.renderRecentProjects(),
		v.status.render(s),
		v.renderHelp(),
	)

	return styles.CenterView(content, v.width, v.height)
}

func (v *DashboardView) statBox(value, label string, alert bool) string {
	s := v.styles
	valueStyle := s.StatValue
	if alert {
		valueStyle = s.StatAlert
	}
	return s.StatBox.Render(lipgloss.JoinVertical(lipgloss.Center,
		valueStyle.Render(value),
		s.StatLabel.Render(label),
	))
}

func (v *DashboardView) renderRecentTasks() string {
	if len(v.tasks) == 0 {
		return v.styles.TitleMuted.Render("  No tasks yet")
	}

	recent := make([]models.Task, len(v.tasks))
	copy(recent, v.tasks)
	sort.SliceStable(recent, func(i, j int) bool {
		return createdAfter(recent[i].CreatedAt, recent[j].CreatedAt)
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	lines := make([]string, 0, len(recent))
	for _, t := range recent {
		badge := statusBadge(v.styles, t)
		lines = append(lines, fmt.Sprintf("  %s %s", badge, t.Title))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *DashboardView) renderRecentProjects() string {
	if len(v.projects) == 0 {
		return v.styles.TitleMuted.Render("  No projects yet")
	}

	recent := make([]models.Project, len(v.projects))
	copy(recent, v.projects)
	sort.SliceStable(recent, func(i, j int) bool {
		return createdAfter(recent[i].CreatedAt, recent[j].CreatedAt)
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	lines := make([]string, 0, len(recent))
	for _, p := range recent {
		lines = append(lines, "  • "+p.Name)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *DashboardView) renderHelp() string {
	s := v.styles
	return s.Help.Render(
		fmt.Sprintf("%s projects • %s tasks • %s new task • %s refresh • %s logout • %s quit",
			s.HelpKey.Render("2"),
			s.HelpKey.Render("3"),
			s.HelpKey.Render("n"),
			s.HelpKey.Render("r"),
			s.HelpKey.Render("ctrl+l"),
			s.HelpKey.Render("q"),
		),
	)
}

// createdAfter orders newest first; entities without a timestamp sink
// to the end.
func createdAfter(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}

// statusBadge renders a task's status marker, promoting overdue tasks
// to the alert color.
func statusBadge(s *styles.Styles, t models.Task) string {
	if t.DueDate != nil && t.DueDate.Before(time.Now()) && t.Status != models.StatusCompleted {
		return s.BadgeOverdue.Render("[!]")
	}
	switch t.Status {
	case models.StatusCompleted:
		return s.BadgeCompleted.Render("[x]")
	case models.StatusInProgress:
		return s.BadgeInProgress.Render("[~]")
	default:
		return s.BadgePending.Render("[ ]")
	}
}
