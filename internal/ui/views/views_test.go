package views

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/husseinbouik/taskman/internal/api"
	"github.com/husseinbouik/taskman/internal/apitest"
	"github.com/husseinbouik/taskman/internal/models"
)

func TestProjectNameResolution(t *testing.T) {
	v := NewTaskListView(nil)
	v.projects = map[int64]string{1: "Website"}

	id := int64(1)
	unknown := int64(99)

	tests := []struct {
		name string
		task models.Task
		want string
	}{
		{"backend-supplied name wins", models.Task{ProjectID: &id, ProjectName: "From Server"}, "From Server"},
		{"local lookup", models.Task{ProjectID: &id}, "Website"},
		{"unknown project falls back", models.Task{ProjectID: &unknown}, "unassigned"},
		{"no project renders unassigned", models.Task{}, "unassigned"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, v.projectNameFor(tt.task))
		})
	}
}

func TestStatusLineStaleClearIgnored(t *testing.T) {
	var s statusLine

	s.set("first", statusError)
	stale := clearStatusMsg{seq: s.seq}
	s.set("second", statusSuccess)

	// A clear tick from the first message must not erase the second
	s.handleClear(stale)
	require.Equal(t, "second", s.text)

	s.handleClear(clearStatusMsg{seq: s.seq})
	require.Empty(t, s.text)
}

func TestDashboardJoinsConcurrentFetches(t *testing.T) {
	v := NewDashboardView(nil)

	due := time.Now().AddDate(0, 0, -1)
	tasks := []models.Task{
		{Title: "a", Status: models.StatusCompleted},
		{Title: "b", Status: models.StatusPending, DueDate: &due},
	}
	projects := []models.Project{{Name: "p"}}

	// Tasks arriving first must not produce metrics yet
	v.Update(dashTasksMsg{tasks: tasks})
	require.False(t, v.tasksLoaded && v.projectsLoaded)

	v.Update(dashProjectsMsg{projects: projects})
	require.True(t, v.tasksLoaded && v.projectsLoaded)

	require.Equal(t, 2, v.metrics.TotalTasks)
	require.Equal(t, 1, v.metrics.CompletedTasks)
	require.Equal(t, 1, v.metrics.OverdueTasks)
	require.Equal(t, 1, v.metrics.TotalProjects)
	require.Equal(t, 50, v.metrics.CompletionRate)
}

func TestDashboardRendersAfterLoad(t *testing.T) {
	v := NewDashboardView(nil)
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	v.Update(dashTasksMsg{})
	v.Update(dashProjectsMsg{})

	out := v.View()
	require.Contains(t, out, "Dashboard")
	require.Contains(t, out, "No tasks yet")
	require.Contains(t, out, "No projects yet")
}

func newFormClient(t *testing.T) (*apitest.Server, *api.Client) {
	t.Helper()
	server := apitest.New()
	t.Cleanup(server.Close)
	user := server.AddUser("alice", "alice@example.com", "secret")
	token := server.IssueToken(user.ID)
	client := api.New(server.BaseURL(), 5*time.Second, api.TokenFunc(func() string { return token }))
	return server, client
}

func TestTaskFormEditKeepsAssignmentBeforeProjectsLoad(t *testing.T) {
	server, client := newFormClient(t)
	project := server.SeedProject(models.Project{Name: "Alpha"})
	task := server.SeedTask(models.Task{Title: "ship it", ProjectID: &project.ID})

	v := NewTaskFormView(client, task.ID)
	loaded := task
	v.Update(formTaskMsg{task: &loaded})

	// Projects have not arrived; saving must not drop the assignment
	msg := v.submit()()
	require.IsType(t, taskSavedMsg{}, msg)

	got, err := client.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ProjectID)
	require.Equal(t, project.ID, *got.ProjectID)

	// Once projects land the selector points at the real assignment
	v.Update(formProjectsMsg{projects: []models.Project{project}})
	require.Equal(t, 1, v.projIx)
}

func TestTaskFormEditExplicitUnassign(t *testing.T) {
	server, client := newFormClient(t)
	project := server.SeedProject(models.Project{Name: "Alpha"})
	task := server.SeedTask(models.Task{Title: "ship it", ProjectID: &project.ID})

	v := NewTaskFormView(client, task.ID)
	loaded := task
	v.Update(formTaskMsg{task: &loaded})
	v.Update(formProjectsMsg{projects: []models.Project{project}})
	require.Equal(t, 1, v.projIx)

	// Cycling to unassigned is a deliberate choice and must stick
	v.focusIdx = 3
	v.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, 0, v.projIx)

	msg := v.submit()()
	require.IsType(t, taskSavedMsg{}, msg)

	got, err := client.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.Nil(t, got.ProjectID)
}
