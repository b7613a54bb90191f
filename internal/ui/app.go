package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/husseinbouik/taskman/internal/api"
	"github.com/husseinbouik/taskman/internal/db"
	"github.com/husseinbouik/taskman/internal/models"
	"github.com/husseinbouik/taskman/internal/session"
	"github.com/husseinbouik/taskman/internal/ui/nav"
	"github.com/husseinbouik/taskman/internal/ui/views"
)

const lastRouteKey = "last_route"

// view is what every screen implements. Views mutate themselves in
// place; the returned model is ignored by the app.
type view interface {
	Init() tea.Cmd
	Update(tea.Msg) (tea.Model, tea.Cmd)
	View() string
}

// App routes between views. Every navigation goes through the route
// guard, so a protected view is never built without a session.
type App struct {
	client   *api.Client
	store    *session.Store
	settings *db.DB

	route   nav.Route
	current view
	width   int
	height  int
}

// NewApp creates the application, restoring the last visited view when
// a session survived the restart.
func NewApp(client *api.Client, store *session.Store, settings *db.DB) *App {
	a := &App{
		client:   client,
		store:    store,
		settings: settings,
	}

	// A remembered route belongs to the session; forget it when the
	// session ends so the next login starts at the dashboard
	store.Subscribe(func(sess *models.Session) {
		if sess == nil {
			_ = settings.DeleteSetting(lastRouteKey)
		}
	})

	start := nav.Route{Name: nav.Dashboard}
	if saved, err := settings.GetSetting(lastRouteKey); err == nil && saved != "" {
		start = nav.Route{Name: nav.Name(saved)}
	}

	a.route = nav.Resolve(start, store.Current() != nil)
	a.current = a.buildView(a.route)
	return a
}

// Route returns the route currently rendered.
func (a *App) Route() nav.Route {
	return a.route
}

func (a *App) Init() tea.Cmd {
	return a.current.Init()
}

func (a *App) buildView(r nav.Route) view {
	switch r.Name {
	case nav.Login:
		return views.NewLoginView(a.store)
	case nav.Register:
		return views.NewRegisterView(a.client)
	case nav.Projects:
		return views.NewProjectListView(a.client)
	case nav.Tasks:
		return views.NewTaskListView(a.client)
	case nav.AddTask:
		return views.NewTaskFormView(a.client, 0)
	case nav.EditTask:
		return views.NewTaskFormView(a.client, r.ID)
	case nav.EditProject:
		return views.NewProjectFormView(a.client, r.ID)
	default:
		return views.NewDashboardView(a.client)
	}
}

func (a *App) navigate(r nav.Route) tea.Cmd {
	resolved := nav.Resolve(r, a.store.Current() != nil)
	a.route = resolved
	a.current = a.buildView(resolved)

	// Only the three list-level views are worth restoring on restart
	switch resolved.Name {
	case nav.Dashboard, nav.Projects, nav.Tasks:
		_ = a.settings.SetSetting(lastRouteKey, string(resolved.Name))
	}

	return tea.Batch(
		a.current.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case views.Navigate:
		return a, a.navigate(msg.Route)

	case views.LoggedIn:
		return a, a.navigate(nav.Route{Name: nav.Dashboard})

	case views.LoggedOut:
		a.store.Logout()
		return a, a.navigate(nav.Route{Name: nav.Login})

	case views.SessionExpired:
		a.store.Invalidate()
		return a, a.navigate(nav.Route{Name: nav.Login})
	}

	var cmd tea.Cmd
	_, cmd = a.current.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	return a.current.View()
}
