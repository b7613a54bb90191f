package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/husseinbouik/taskman/internal/api"
	"github.com/husseinbouik/taskman/internal/models"
	"github.com/husseinbouik/taskman/internal/ui/keys"
	"github.com/husseinbouik/taskman/internal/ui/nav"
	"github.com/husseinbouik/taskman/internal/ui/styles"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string       { return i.project.Name }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	desc := p.project.Description
	if p.project.OwnerName != "" {
		if desc != "" {
			desc += " • "
		}
		desc += "owner: " + p.project.OwnerName
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(p.Title()), descStyle.Render(desc))
}

// ProjectListView fetches the project collection on activation.
// Creation happens inline; editing an existing project is a dedicated
// view.
type ProjectListView struct {
	client   *api.Client
	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	loaded   bool

	creating bool
	newName  textinput.Model
	newDesc  textinput.Model
	focusIdx int // 0=name, 1=desc, 2=confirm

	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	viewing        bool
	viewingProject models.Project

	status statusLine
	width  int
	height int
}

func NewProjectListView(client *api.Client) *ProjectListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 100

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 200

	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		client:   client,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
		newDesc:  newDesc,
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects
}

type projectsLoadedMsg struct {
	projects []models.Project
}

type projectCreatedMsg struct {
	name string
}

type projectDeletedMsg struct {
	name string
}

func (v *ProjectListView) loadProjects() tea.Msg {
	projects, err := v.client.ListProjects(context.Background())
	if err != nil {
		return failure(err)
	}
	return projectsLoadedMsg{projects: projects}
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case projectsLoadedMsg:
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
		}
		v.list.SetItems(items)
		v.loaded = true
		return v, nil

	case projectCreatedMsg:
		return v, tea.Batch(
			v.loadProjects,
			v.status.set(fmt.Sprintf("Created %q", msg.name), statusSuccess),
		)

	case projectDeletedMsg:
		return v, tea.Batch(
			v.loadProjects,
			v.status.set(fmt.Sprintf("Deleted %q", msg.name), statusSuccess),
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
		if v.creating {
			return v.updateCreating(msg)
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
		case key.Matches(msg, v.keys.Tasks):
			return v, navTo(nav.Tasks)
		case key.Matches(msg, v.keys.Refresh):
			return v, v.loadProjects
		case key.Matches(msg, v.keys.Logout):
			return v, func() tea.Msg { return LoggedOut{} }
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.focusIdx = 0
			v.newName.Reset()
			v.newDesc.Reset()
			v.newName.Focus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Edit):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, navToEntity(nav.EditProject, item.project.ID)
			}
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.viewing = true
				v.viewingProject = item.project
				return v, nil
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTargetID = item.project.ID
				v.deleteTargetName = item.project.Name
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := v.deleteTargetID
		name := v.deleteTargetName
		v.confirmingDelete = false
		return v, func() tea.Msg {
			if err := v.client.DeleteProject(context.Background(), id); err != nil {
				return failure(err)
			}
			return projectDeletedMsg{name: name}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *ProjectListView) updateViewing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
		v.viewing = false
		return v, nil
	case key.Matches(msg, v.keys.Edit):
		v.viewing = false
		return v, navToEntity(nav.EditProject, v.viewingProject.ID)
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *ProjectListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v.submitCreate()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 2 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v.submitCreate()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	}
	return v, cmd
}

func (v *ProjectListView) submitCreate() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(v.newName.Value())
	if name == "" {
		return v, v.status.set("Project name is required", statusError)
	}
	desc := strings.TrimSpace(v.newDesc.Value())
	v.creating = false
	return v, func() tea.Msg {
		if _, err := v.client.CreateProject(context.Background(), api.ProjectInput{Name: name, Description: desc}); err != nil {
			return failure(err)
		}
		return projectCreatedMsg{name: name}
	}
}

func (v *ProjectListView) updateFocus() {
	v.newName.Blur()
	v.newDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newDesc.Focus()
	}
}

func (v *ProjectListView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.creating {
		return v.renderCreateForm()
	}
	if v.viewing {
		return v.renderProjectDetail()
	}

	if !v.loaded {
		return styles.CenterView(v.styles.TitleMuted.Render("Loading projects..."), v.width, v.height)
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.status.render(v.styles) + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

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

	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Project"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
		"",
		btnStyle.Render(" Create "),
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

func (v *ProjectListView) renderProjectDetail() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	p := v.viewingProject

	owner := p.OwnerName
	if owner == "" {
		owner = "unknown"
	}
	created := ""
	if p.CreatedAt != nil {
		created = p.CreatedAt.Format("2006-01-02 15:04")
	}

	detail := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(p.Name),
		"",
		s.TitleMuted.Render("Owner: ")+owner,
		s.TitleMuted.Render("Created: ")+created,
		"",
		p.Description,
		"",
		s.TitleMuted.Render("e: edit • Esc: close"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		detail,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
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

func (v *ProjectListView) renderHelp() string {
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
