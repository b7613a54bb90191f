package views

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/husseinbouik/taskman/internal/api"
	"github.com/husseinbouik/taskman/internal/models"
	"github.com/husseinbouik/taskman/internal/ui/keys"
	"github.com/husseinbouik/taskman/internal/ui/nav"
	"github.com/husseinbouik/taskman/internal/ui/styles"
)

const dueDateLayout = "2006-01-02"

// TaskFormView is the dedicated page for creating a task or editing an
// existing one. In edit mode the form is pre-populated from the
// fetched entity.
type TaskFormView struct {
	client *api.Client
	styles *styles.Styles
	keys   keys.KeyMap

	taskID   int64 // 0 when creating
	loaded   bool
	notFound bool

	title      textinput.Model
	desc       textinput.Model
	due        textinput.Model
	statusIx    int
	projects    []models.Project
	projIx      int    // 0 = unassigned, otherwise projects[projIx-1]
	editProjID  *int64 // project of the edit target, until projects arrive
	projTouched bool   // user moved the selector; their choice wins

	focusIdx   int // 0=title, 1=desc, 2=status, 3=project, 4=due, 5=save
	submitting bool
	status     statusLine
	width      int
	height     int
}

// NewTaskFormView creates the form. taskID zero means a new task.
func NewTaskFormView(client *api.Client, taskID int64) *TaskFormView {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 100
	title.Focus()

	desc := textinput.New()
	desc.Placeholder = "Description (optional)"
	desc.CharLimit = 200

	due := textinput.New()
	due.Placeholder = "Due date YYYY-MM-DD (optional)"
	due.CharLimit = 10

	return &TaskFormView{
		client: client,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		taskID: taskID,
		title:  title,
		desc:   desc,
		due:    due,
		loaded: taskID == 0,
	}
}

func (v *TaskFormView) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, v.loadProjects}
	if v.taskID != 0 {
		cmds = append(cmds, v.loadTask)
	}
	return tea.Batch(cmds...)
}

type formProjectsMsg struct {
	projects []models.Project
}

type formTaskMsg struct {
	task *models.Task
}

type formNotFoundMsg struct{}

type taskSavedMsg struct{}

func (v *TaskFormView) loadProjects() tea.Msg {
	projects, err := v.client.ListProjects(context.Background())
	if err != nil {
		return failure(err)
	}
	return formProjectsMsg{projects: projects}
}

func (v *TaskFormView) loadTask() tea.Msg {
	task, err := v.client.GetTask(context.Background(), v.taskID)
	if err != nil {
		if api.IsNotFound(err) {
			return formNotFoundMsg{}
		}
		return failure(err)
	}
	return formTaskMsg{task: task}
}

func (v *TaskFormView) populate(t *models.Task) {
	v.title.SetValue(t.Title)
	v.desc.SetValue(t.Description)
	if t.DueDate != nil {
		v.due.SetValue(t.DueDate.Format(dueDateLayout))
	}
	for i, s := range models.Statuses {
		if s == t.Status {
			v.statusIx = i
		}
	}
	v.editProjID = t.ProjectID
	v.syncProjectIndex()
	v.loaded = true
}

// syncProjectIndex points the project selector at the edit target's
// project. Tasks and projects load concurrently, so this runs when
// either arrives.
func (v *TaskFormView) syncProjectIndex() {
	if v.editProjID == nil || v.projTouched {
		return
	}
	for i, p := range v.projects {
		if p.ID == *v.editProjID {
			v.projIx = i + 1
		}
	}
}

func (v *TaskFormView) submit() tea.Cmd {
	title := strings.TrimSpace(v.title.Value())
	if title == "" {
		return v.status.set("Title is required", statusError)
	}

	var due *time.Time
	if raw := strings.TrimSpace(v.due.Value()); raw != "" {
		parsed, err := time.ParseInLocation(dueDateLayout, raw, time.Local)
		if err != nil {
			return v.status.set("Due date must be YYYY-MM-DD", statusError)
		}
		due = &parsed
	}

	input := api.TaskInput{
		Title:       title,
		Description: strings.TrimSpace(v.desc.Value()),
		Status:      models.Statuses[v.statusIx],
		DueDate:     due,
	}
	if v.projIx > 0 {
		id := v.projects[v.projIx-1].ID
		input.ProjectID = &id
	} else if !v.projTouched && v.editProjID != nil {
		// Projects have not resolved the selector yet; keep the
		// existing assignment instead of silently clearing it
		input.ProjectID = v.editProjID
	}

	v.submitting = true
	taskID := v.taskID
	return func() tea.Msg {
		var err error
		if taskID == 0 {
			_, err = v.client.CreateTask(context.Background(), input)
		} else {
			_, err = v.client.UpdateTask(context.Background(), taskID, input)
		}
		if err != nil {
			if api.IsNotFound(err) {
				return formNotFoundMsg{}
			}
			return failure(err)
		}
		return taskSavedMsg{}
	}
}

func (v *TaskFormView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case formProjectsMsg:
		v.projects = msg.projects
		v.syncProjectIndex()
		return v, nil

	case formTaskMsg:
		v.populate(msg.task)
		return v, nil

	case formNotFoundMsg:
		v.notFound = true
		v.submitting = false
		return v, nil

	case taskSavedMsg:
		return v, navTo(nav.Tasks)

	case errMsg:
		v.submitting = false
		return v, v.status.set(msg.err.Error(), statusError)

	case clearStatusMsg:
		v.status.handleClear(msg)
		return v, nil

	case tea.KeyMsg:
		if v.notFound {
			if key.Matches(msg, v.keys.Back) || key.Matches(msg, v.keys.Enter) {
				return v, navTo(nav.Tasks)
			}
			return v, nil
		}
		if v.submitting {
			return v, nil
		}

		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit

		case key.Matches(msg, v.keys.Back):
			return v, navTo(nav.Tasks)

		case msg.String() == "ctrl+s":
			return v, v.submit()

		case msg.String() == "shift+tab":
			v.focusIdx = (v.focusIdx + 5) % 6
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % 6
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx == 5 {
				return v, v.submit()
			}
			v.focusIdx++
			v.updateFocus()
			return v, nil

		case msg.String() == "left", msg.String() == "right":
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			switch v.focusIdx {
			case 2:
				n := len(models.Statuses)
				v.statusIx = (v.statusIx + delta + n) % n
				return v, nil
			case 3:
				n := len(v.projects) + 1
				v.projIx = (v.projIx + delta + n) % n
				v.projTouched = true
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.title, cmd = v.title.Update(msg)
	case 1:
		v.desc, cmd = v.desc.Update(msg)
	case 4:
		v.due, cmd = v.due.Update(msg)
	}
	return v, cmd
}

func (v *TaskFormView) updateFocus() {
	v.title.Blur()
	v.desc.Blur()
	v.due.Blur()
	switch v.focusIdx {
	case 0:
		v.title.Focus()
	case 1:
		v.desc.Focus()
	case 4:
		v.due.Focus()
	}
}

func (v *TaskFormView) projectLabel() string {
	if v.projIx == 0 {
		return "unassigned"
	}
	return v.projects[v.projIx-1].Name
}

func (v *TaskFormView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	if v.notFound {
		content := lipgloss.JoinVertical(lipgloss.Center,
			s.Title.Foreground(styles.Current.Error).Render("Task Not Found"),
			"",
			s.TitleMuted.Render("The task no longer exists on the server."),
			"",
			s.ButtonPrimary.Render(" Back to Tasks "),
		)
		centered := lipgloss.Place(contentWidth, v.height,
			lipgloss.Center, lipgloss.Center, content)
		return styles.CenterView(centered, v.width, v.height)
	}

	if !v.loaded {
		return styles.CenterView(s.TitleMuted.Render("Loading task..."), v.width, v.height)
	}

	heading := "New Task"
	saveLabel := " Create "
	if v.taskID != 0 {
		heading = "Edit Task"
		saveLabel = " Save "
	}
	if v.submitting {
		saveLabel = " Saving... "
	}

	titleStyle := s.Input
	descStyle := s.Input
	dueStyle := s.Input
	statusStyle := s.Input
	projStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		statusStyle = s.InputFocused
	case 3:
		projStyle = s.InputFocused
	case 4:
		dueStyle = s.InputFocused
	case 5:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(heading),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.title.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.desc.View()),
		"",
		"Status:",
		statusStyle.Width(inputWidth).Render("◂ "+models.Statuses[v.statusIx]+" ▸"),
		"",
		"Project:",
		projStyle.Width(inputWidth).Render("◂ "+v.projectLabel()+" ▸"),
		"",
		"Due date:",
		dueStyle.Width(inputWidth).Render(v.due.View()),
		"",
		btnStyle.Render(saveLabel),
		"",
		v.status.render(s),
		s.TitleMuted.Render("Tab: next • ←/→: cycle • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
