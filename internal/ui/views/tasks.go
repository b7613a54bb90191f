package views

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/husseinbouik/taskman/internal/api"
	"github.com/husseinbouik/taskman/internal/models"
	"github.com/husseinbouik/taskman/internal/ui/keys"
	"github.com/husseinbouik/taskman/internal/ui/nav"
	"github.com/husseinbouik/taskman/internal/ui/styles"
)

type taskItem struct {
	task        models.Task
	projectName string
}

func (i taskItem) Title() string       { return i.task.Title }
func (i taskItem) Description() string { return i.task.Description }
func (i taskItem) FilterValue() string { return i.task.Title }

type taskDelegate struct {
	styles *styles.Styles
	width  int
}

func (d taskDelegate) Height() int                               { return 2 }
func (d taskDelegate) Spacing() int                              { return 1 }
func (d taskDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, metaStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		metaStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		metaStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	badge := statusBadge(d.styles, it.task)
	meta := it.projectName
	if due := it.task.DueDate; due != nil {
		meta += " • due " + due.Format("2006-01-02")
	}

	title := titleStyle.Render(badge + " " + it.task.Title)
	desc := metaStyle.Render(meta)

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

// TaskListView fetches the task collection on activation and keeps it
// consistent by re-fetching after every mutation.
type TaskListView struct {
	client   *api.Client
	list     list.Model
	delegate *taskDelegate
	styles   *styles.Styles
	keys     keys.KeyMap

	projects map[int64]string
	loaded   bool

	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	viewing     bool
	viewingTask models.Task

	status statusLine
	width  int
	height int
}

func NewTaskListView(client *api.Client) *TaskListView {
	s := styles.NewStyles()
	delegate := &taskDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Tasks"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &TaskListView{
		client:   client,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		projects: make(map[int64]string),
	}
}

func (v *TaskListView) Init() tea.Cmd {
	return tea.Batch(v.loadTasks, v.loadProjects)
}

type tasksLoadedMsg struct {
	tasks []models.Task
}

type taskProjectsMsg struct {
	projects []models.Project
}

type taskDeletedMsg struct {
	title string
}

func (v *TaskListView) loadTasks() tea.Msg {
	tasks, err := v.client.ListTasks(context.Background())
	if err != nil {
		return failure(err)
	}
	return tasksLoadedMsg{tasks: tasks}
}

func (v *TaskListView) loadProjects() tea.Msg {
	projects, err := v.client.ListProjects(context.Background())
	if err != nil {
		return failure(err)
	}
	return taskProjectsMsg{projects: projects}
}

// projectNameFor resolves the displayed project name: the backend's
// convenience field first, then a local lookup, then "unassigned".
func (v *TaskListView) projectNameFor(t models.Task) string {
	if t.ProjectName != "" {
		return t.ProjectName
	}
	if t.ProjectID != nil {
		if name, ok := v.projects[*t.ProjectID]; ok {
			return name
		}
	}
	return "unassigned"
}

func (v *TaskListView) setTasks(tasks []models.Task) {
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = taskItem{task: t, projectName: v.projectNameFor(t)}
	}
	v.list.SetItems(items)
	v.loaded = true
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case tasksLoadedMsg:
		v.setTasks(msg.tasks)
		return v, nil

	case taskProjectsMsg:
		v.projects = make(map[int64]string, len(msg.projects))
		for _, p := range msg.projects {
			v.projects[p.ID] = p.Name
		}
		// Re-resolve names on the already-loaded items
		if v.loaded {
			items := v.list.Items()
			tasks := make([]models.Task, len(items))
			for i, it := range items {
				tasks[i] = it.(taskItem).task
			}
			v.setTasks(tasks)
		}
		return v, nil

	case taskDeletedMsg:
		return v, tea.Batch(
			v.loadTasks,
			v.status.set(fmt.Sprintf("Deleted %q", msg.title), statusSuccess),
		)

	case errMsg:
		return v, v.status.set(msg.err.Error(), statusError)

	case clearStatusMsg:
		v.status.handleClear(msg)
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.viewing {
			return v.updateViewing(msg)
		}
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Dashboard):
			return v, navTo(nav.Dashboard)
		case key.Matches(msg, v.keys.Projects):
			return v, navTo(nav.Projects)
		case key.Matches(msg, v.keys.New):
			return v, navTo(nav.AddTask)
		case key.Matches(msg, v.keys.Refresh):
			return v, v.Init()
		case key.Matches(msg, v.keys.Logout):
			return v, func() tea.Msg { return LoggedOut{} }
		case key.Matches(msg, v.keys.Edit):
			if item, ok := v.list.SelectedItem().(taskItem); ok {
				return v, navToEntity(nav.EditTask, item.task.ID)
			}
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(taskItem); ok {
				v.viewing = true
				v.viewingTask = item.task
				return v, nil
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(taskItem); ok {
				v.confirmingDelete = true
				v.deleteTargetID = item.task.ID
				v.deleteTargetName = item.task.Title
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := v.deleteTargetID
		title := v.deleteTargetName
		v.confirmingDelete = false
		return v, func() tea.Msg {
			if err := v.client.DeleteTask(context.Background(), id); err != nil {
				return failure(err)
			}
			return taskDeletedMsg{title: title}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateViewing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
		v.viewing = false
		return v, nil
	case key.Matches(msg, v.keys.Edit):
		v.viewing = false
		return v, navToEntity(nav.EditTask, v.viewingTask.ID)
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *TaskListView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.viewing {
		return v.renderTaskDetail()
	}

	if !v.loaded {
		return styles.CenterView(v.styles.TitleMuted.Render("Loading tasks..."), v.width, v.height)
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.status.render(v.styles) + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *TaskListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Tasks"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first task"),
		"",
		s.ButtonPrimary.Render(" New Task "),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderTaskDetail() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	t := v.viewingTask

	due := "none"
	if t.DueDate != nil {
		due = t.DueDate.Format("2006-01-02")
	}
	created := ""
	if t.CreatedAt != nil {
		created = t.CreatedAt.Format("2006-01-02 15:04")
	}

	detail := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(t.Title),
		"",
		statusBadge(s, t)+" "+t.Status,
		"",
		s.TitleMuted.Render("Project: ")+v.projectNameFor(t),
		s.TitleMuted.Render("Due: ")+due,
		s.TitleMuted.Render("Created: ")+created,
		"",
		t.Description,
		"",
		s.TitleMuted.Render("e: edit • Esc: close"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		detail,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("Delete %q permanently?", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderHelp() string {
	s := v.styles
	return s.Help.Render(
		fmt.Sprintf("%s view • %s new • %s edit • %s del • %s refresh • %s back • %s quit",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("n"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("r"),
			s.HelpKey.Render("esc"),
			s.HelpKey.Render("q"),
		),
	)
}
