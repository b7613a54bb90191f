package ui_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/husseinbouik/taskman/internal/api"
	"github.com/husseinbouik/taskman/internal/apitest"
	"github.com/husseinbouik/taskman/internal/db"
	"github.com/husseinbouik/taskman/internal/session"
	"github.com/husseinbouik/taskman/internal/ui"
	"github.com/husseinbouik/taskman/internal/ui/nav"
	"github.com/husseinbouik/taskman/internal/ui/views"
)

type fixture struct {
	server   *apitest.Server
	settings *db.DB
	store    *session.Store
	client   *api.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	server := apitest.New()
	t.Cleanup(server.Close)
	server.AddUser("alice", "alice@example.com", "secret")

	settings, err := db.New(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = settings.Close() })

	f := &fixture{server: server, settings: settings}
	f.client = api.New(server.BaseURL(), 5*time.Second, api.TokenFunc(func() string {
		if f.store == nil {
			return ""
		}
		return f.store.Token()
	}))

	f.store, err = session.NewStore(f.client, settings)
	require.NoError(t, err)
	return f
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	_, err := f.store.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
}

func TestApp_StartsAtLoginWithoutSession(t *testing.T) {
	f := newFixture(t)
	app := ui.NewApp(f.client, f.store, f.settings)
	require.Equal(t, nav.Login, app.Route().Name)
}

func TestApp_StartsAtDashboardWithSession(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	app := ui.NewApp(f.client, f.store, f.settings)
	require.Equal(t, nav.Dashboard, app.Route().Name)
}

func TestApp_RestoresLastRoute(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, f.settings.SetSetting("last_route", "tasks"))

	app := ui.NewApp(f.client, f.store, f.settings)
	require.Equal(t, nav.Tasks, app.Route().Name)
}

func TestApp_LastRouteStillGuarded(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.settings.SetSetting("last_route", "tasks"))

	// No session: the remembered route must not bypass the guard
	app := ui.NewApp(f.client, f.store, f.settings)
	require.Equal(t, nav.Login, app.Route().Name)
}

func TestApp_NavigationToProtectedViewRedirects(t *testing.T) {
	f := newFixture(t)
	app := ui.NewApp(f.client, f.store, f.settings)

	app.Update(views.Navigate{Route: nav.Route{Name: nav.Tasks}})
	require.Equal(t, nav.Login, app.Route().Name)

	app.Update(views.Navigate{Route: nav.Route{Name: nav.EditTask, ID: 4}})
	require.Equal(t, nav.Login, app.Route().Name)
}

func TestApp_NavigationToPublicViewWithSessionRedirects(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	app := ui.NewApp(f.client, f.store, f.settings)

	app.Update(views.Navigate{Route: nav.Route{Name: nav.Login}})
	require.Equal(t, nav.Dashboard, app.Route().Name)

	app.Update(views.Navigate{Route: nav.Route{Name: nav.Register}})
	require.Equal(t, nav.Dashboard, app.Route().Name)
}

func TestApp_NavigationBetweenProtectedViews(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	app := ui.NewApp(f.client, f.store, f.settings)

	app.Update(views.Navigate{Route: nav.Route{Name: nav.Projects}})
	require.Equal(t, nav.Projects, app.Route().Name)

	app.Update(views.Navigate{Route: nav.Route{Name: nav.AddTask}})
	require.Equal(t, nav.AddTask, app.Route().Name)

	app.Update(views.Navigate{Route: nav.Route{Name: nav.EditProject, ID: 12}})
	require.Equal(t, nav.EditProject, app.Route().Name)
	require.Equal(t, int64(12), app.Route().ID)
}

func TestApp_LoggedInLandsOnDashboard(t *testing.T) {
	f := newFixture(t)
	app := ui.NewApp(f.client, f.store, f.settings)
	f.login(t)

	app.Update(views.LoggedIn{})
	require.Equal(t, nav.Dashboard, app.Route().Name)
}

func TestApp_SessionExpiredClearsSessionAndShowsLogin(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	app := ui.NewApp(f.client, f.store, f.settings)

	app.Update(views.Navigate{Route: nav.Route{Name: nav.Tasks}})
	require.Equal(t, nav.Tasks, app.Route().Name)

	// A 401 from any protected call surfaces as SessionExpired
	app.Update(views.SessionExpired{})
	require.Equal(t, nav.Login, app.Route().Name)
	require.Nil(t, f.store.Current())
}

func TestApp_LogoutClearsSessionAndShowsLogin(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	app := ui.NewApp(f.client, f.store, f.settings)

	app.Update(views.LoggedOut{})
	require.Equal(t, nav.Login, app.Route().Name)
	require.Nil(t, f.store.Current())
}

func TestApp_LogoutForgetsLastRoute(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	app := ui.NewApp(f.client, f.store, f.settings)

	app.Update(views.Navigate{Route: nav.Route{Name: nav.Tasks}})
	saved, err := f.settings.GetSetting("last_route")
	require.NoError(t, err)
	require.Equal(t, "tasks", saved)

	app.Update(views.LoggedOut{})
	saved, err = f.settings.GetSetting("last_route")
	require.NoError(t, err)
	require.Empty(t, saved)
}
