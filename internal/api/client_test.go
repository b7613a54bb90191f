package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/husseinbouik/taskman/internal/api"
	"github.com/husseinbouik/taskman/internal/apitest"
	"github.com/husseinbouik/taskman/internal/models"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newClient(t *testing.T, server *apitest.Server, token string) *api.Client {
	t.Helper()
	return api.New(server.BaseURL(), 5*time.Second, staticToken(token))
}

func newServer(t *testing.T) *apitest.Server {
	t.Helper()
	server := apitest.New()
	t.Cleanup(server.Close)
	return server
}

func TestClient_Login(t *testing.T) {
	server := newServer(t)
	server.AddUser("alice", "alice@example.com", "secret")
	client := newClient(t, server, "")

	sess, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.Equal(t, "alice", sess.User.Username)
}

func TestClient_LoginRejected(t *testing.T) {
	server := newServer(t)
	server.AddUser("alice", "alice@example.com", "secret")
	client := newClient(t, server, "")

	_, err := client.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	require.True(t, api.IsUnauthorized(err))
}

func TestClient_RegisterDuplicate(t *testing.T) {
	server := newServer(t)
	server.AddUser("alice", "alice@example.com", "secret")
	client := newClient(t, server, "")

	_, err := client.Register(context.Background(), "alice", "other@example.com", "pw")
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Contains(t, apiErr.Message, "Username already exists")
}

func TestClient_UnauthenticatedCallRejected(t *testing.T) {
	server := newServer(t)
	client := newClient(t, server, "")

	_, err := client.ListTasks(context.Background())
	require.Error(t, err)
	require.True(t, api.IsUnauthorized(err))
	require.False(t, api.IsNotFound(err))
}

func TestClient_RevokedTokenRejected(t *testing.T) {
	server := newServer(t)
	user := server.AddUser("alice", "alice@example.com", "secret")
	token := server.IssueToken(user.ID)
	client := newClient(t, server, token)

	_, err := client.ListTasks(context.Background())
	require.NoError(t, err)

	server.RevokeToken(token)
	_, err = client.ListTasks(context.Background())
	require.True(t, api.IsUnauthorized(err))
}

func TestClient_TaskLifecycle(t *testing.T) {
	server := newServer(t)
	user := server.AddUser("alice", "alice@example.com", "secret")
	client := newClient(t, server, server.IssueToken(user.ID))

	project := server.SeedProject(models.Project{Name: "Website"})

	created, err := client.CreateTask(context.Background(), api.TaskInput{
		Title:     "Draft launch checklist",
		Status:    models.StatusPending,
		ProjectID: &project.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	// The list reflects the mutation, with the project name resolved
	tasks, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "Draft launch checklist", tasks[0].Title)
	require.Equal(t, "Website", tasks[0].ProjectName)

	require.NoError(t, client.DeleteTask(context.Background(), created.ID))

	tasks, err = client.ListTasks(context.Background())
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestClient_UpdateTask(t *testing.T) {
	server := newServer(t)
	user := server.AddUser("alice", "alice@example.com", "secret")
	client := newClient(t, server, server.IssueToken(user.ID))

	seeded := server.SeedTask(models.Task{Title: "Draft", Status: models.StatusPending})

	updated, err := client.UpdateTask(context.Background(), seeded.ID, api.TaskInput{
		Title:  "Draft v2",
		Status: models.StatusCompleted,
	})
	require.NoError(t, err)
	require.Equal(t, "Draft v2", updated.Title)
	require.Equal(t, models.StatusCompleted, updated.Status)
}

func TestClient_NotFound(t *testing.T) {
	server := newServer(t)
	user := server.AddUser("alice", "alice@example.com", "secret")
	client := newClient(t, server, server.IssueToken(user.ID))

	_, err := client.GetTask(context.Background(), 9999)
	require.True(t, api.IsNotFound(err))

	_, err = client.GetProject(context.Background(), 9999)
	require.True(t, api.IsNotFound(err))

	err = client.DeleteProject(context.Background(), 9999)
	require.True(t, api.IsNotFound(err))
}

func TestClient_ProjectLifecycle(t *testing.T) {
	server := newServer(t)
	user := server.AddUser("alice", "alice@example.com", "secret")
	client := newClient(t, server, server.IssueToken(user.ID))

	created, err := client.CreateProject(context.Background(), api.ProjectInput{
		Name:        "Launch",
		Description: "Q3 launch plan",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", created.OwnerName)

	updated, err := client.UpdateProject(context.Background(), created.ID, api.ProjectInput{Name: "Launch v2"})
	require.NoError(t, err)
	require.Equal(t, "Launch v2", updated.Name)

	projects, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
}

func TestClient_Me(t *testing.T) {
	server := newServer(t)
	user := server.AddUser("alice", "alice@example.com", "secret")
	client := newClient(t, server, server.IssueToken(user.ID))

	me, err := client.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, user.ID, me.ID)
	require.Equal(t, "alice", me.Username)
}

func TestClient_UserLifecycle(t *testing.T) {
	server := newServer(t)
	alice := server.AddUser("alice", "alice@example.com", "secret")
	bob := server.AddUser("bob", "bob@example.com", "hunter2")
	client := newClient(t, server, server.IssueToken(alice.ID))

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	got, err := client.GetUser(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Equal(t, "bob", got.Username)

	updated, err := client.UpdateUser(context.Background(), bob.ID, api.UserInput{
		Username: "bobby",
		Email:    "bobby@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "bobby", updated.Username)
	require.Equal(t, "bobby@example.com", updated.Email)

	require.NoError(t, client.DeleteUser(context.Background(), bob.ID))

	_, err = client.GetUser(context.Background(), bob.ID)
	require.True(t, api.IsNotFound(err))

	err = client.DeleteUser(context.Background(), bob.ID)
	require.True(t, api.IsNotFound(err))
}

func TestClient_NetworkError(t *testing.T) {
	client := api.New("http://127.0.0.1:1", time.Second, staticToken(""))

	_, err := client.ListTasks(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, api.ErrNetwork))
	require.False(t, api.IsUnauthorized(err))
}
