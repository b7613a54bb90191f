package views

import (
	"context"
	"strings"

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

// ProjectFormView is the dedicated page for editing a project,
// pre-populated from the fetched entity.
type ProjectFormView struct {
	client *api.Client
	styles *styles.Styles
	keys   keys.KeyMap

	projectID int64
	loaded    bool
	notFound  bool

	name       textinput.Model
	desc       textinput.Model
	focusIdx   int // 0=name, 1=desc, 2=save
	submitting bool
	status     statusLine
	width      int
	height     int
}

func NewProjectFormView(client *api.Client, projectID int64) *ProjectFormView {
	name := textinput.New()
	name.Placeholder = "Project name"
	name.CharLimit = 100
	name.Focus()

	desc := textinput.New()
	desc.Placeholder = "Description (optional)"
	desc.CharLimit = 200

	return &ProjectFormView{
		client:    client,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		projectID: projectID,
		name:      name,
		desc:      desc,
	}
}

func (v *ProjectFormView) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, v.loadProject)
}

type formProjectMsg struct {
	project *models.Project
}

type projectSavedMsg struct{}

func (v *ProjectFormView) loadProject() tea.Msg {
	project, err := v.client.GetProject(context.Background(), v.projectID)
	if err != nil {
		if api.IsNotFound(err) {
			return formNotFoundMsg{}
		}
		return failure(err)
	}
	return formProjectMsg{project: project}
}

func (v *ProjectFormView) submit() tea.Cmd {
	name := strings.TrimSpace(v.name.Value())
	if name == "" {
		return v.status.set("Project name is required", statusError)
	}

	input := api.ProjectInput{
		Name:        name,
		Description: strings.TrimSpace(v.desc.Value()),
	}

	v.submitting = true
	return func() tea.Msg {
		if _, err := v.client.UpdateProject(context.Background(), v.projectID, input); err != nil {
			if api.IsNotFound(err) {
				return formNotFoundMsg{}
			}
			return failure(err)
		}
		return projectSavedMsg{}
	}
}

func (v *ProjectFormView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case formProjectMsg:
		v.name.SetValue(msg.project.Name)
		v.desc.SetValue(msg.project.Description)
		v.loaded = true
		return v, nil

	case formNotFoundMsg:
		v.notFound = true
		v.submitting = false
		return v, nil

	case projectSavedMsg:
		return v, navTo(nav.Projects)

	case errMsg:
		v.submitting = false
		return v, v.status.set(msg.err.Error(), statusError)

	case clearStatusMsg:
		v.status.handleClear(msg)
		return v, nil

	case tea.KeyMsg:
		if v.notFound {
			if key.Matches(msg, v.keys.Back) || key.Matches(msg, v.keys.Enter) {
				return v, navTo(nav.Projects)
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
			return v, navTo(nav.Projects)

		case msg.String() == "ctrl+s":
			return v, v.submit()

		case msg.String() == "shift+tab":
			v.focusIdx = (v.focusIdx + 2) % 3
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % 3
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx == 2 {
				return v, v.submit()
			}
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.name, cmd = v.name.Update(msg)
	case 1:
		v.desc, cmd = v.desc.Update(msg)
	}
	return v, cmd
}

func (v *ProjectFormView) updateFocus() {
	v.name.Blur()
	v.desc.Blur()
	switch v.focusIdx {
	case 0:
		v.name.Focus()
	case 1:
		v.desc.Focus()
	}
}

func (v *ProjectFormView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	if v.notFound {
		content := lipgloss.JoinVertical(lipgloss.Center,
			s.Title.Foreground(styles.Current.Error).Render("Project Not Found"),
			"",
			s.TitleMuted.Render("The project no longer exists on the server."),
			"",
			s.ButtonPrimary.Render(" Back to Projects "),
		)
		centered := lipgloss.Place(contentWidth, v.height,
			lipgloss.Center, lipgloss.Center, content)
		return styles.CenterView(centered, v.width, v.height)
	}

	if !v.loaded {
		return styles.CenterView(s.TitleMuted.Render("Loading project..."), v.width, v.height)
	}

	nameStyle := s.Input
	descStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	saveLabel := " Save "
	if v.submitting {
		saveLabel = " Saving... "
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Edit Project"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.name.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.desc.View()),
		"",
		btnStyle.Render(saveLabel),
		"",
		v.status.render(s),
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
