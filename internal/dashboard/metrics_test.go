package dashboard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/husseinbouik/taskman/internal/dashboard"
	"github.com/husseinbouik/taskman/internal/models"
)

func taskWith(status string, due *time.Time) models.Task {
	return models.Task{Title: "t", Status: status, DueDate: due}
}

func TestCompute_Empty(t *testing.T) {
	m := dashboard.Compute(nil, nil, time.Now())
	require.Equal(t, dashboard.Metrics{}, m)
	require.Equal(t, 0, m.CompletionRate)
}

func TestCompute_CompletionRate(t *testing.T) {
	tasks := []models.Task{
		taskWith(models.StatusCompleted, nil),
		taskWith(models.StatusCompleted, nil),
		taskWith(models.StatusCompleted, nil),
		taskWith(models.StatusPending, nil),
	}

	m := dashboard.Compute(tasks, nil, time.Now())
	require.Equal(t, 4, m.TotalTasks)
	require.Equal(t, 3, m.CompletedTasks)
	require.Equal(t, 1, m.PendingTasks)
	require.Equal(t, 75, m.CompletionRate)
}

func TestCompute_Overdue(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	pending := []models.Task{taskWith(models.StatusPending, &yesterday)}
	m := dashboard.Compute(pending, nil, now)
	require.Equal(t, 1, m.OverdueTasks)

	// The same task completed no longer counts
	completed := []models.Task{taskWith(models.StatusCompleted, &yesterday)}
	m = dashboard.Compute(completed, nil, now)
	require.Equal(t, 0, m.OverdueTasks)

	// A task without a due date never counts
	m = dashboard.Compute([]models.Task{taskWith(models.StatusPending, nil)}, nil, now)
	require.Equal(t, 0, m.OverdueTasks)
}

func TestCompute_DueToday(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"same day earlier hour", time.Date(2024, 6, 15, 0, 30, 0, 0, time.UTC), 1},
		{"same day later hour", time.Date(2024, 6, 15, 23, 0, 0, 0, time.UTC), 1},
		{"tomorrow", time.Date(2024, 6, 16, 12, 0, 0, 0, time.UTC), 0},
		{"yesterday", time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := []models.Task{taskWith(models.StatusPending, &tt.due)}
			m := dashboard.Compute(tasks, nil, now)
			require.Equal(t, tt.want, m.TasksDueToday)
		})
	}
}

func TestCompute_ProjectsCounted(t *testing.T) {
	projects := []models.Project{{Name: "a"}, {Name: "b"}}
	m := dashboard.Compute(nil, projects, time.Now())
	require.Equal(t, 2, m.TotalProjects)
}

func TestCompute_Idempotent(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -2)
	tasks := []models.Task{
		taskWith(models.StatusCompleted, nil),
		taskWith(models.StatusPending, &due),
		taskWith(models.StatusInProgress, nil),
	}
	projects := []models.Project{{Name: "p"}}

	first := dashboard.Compute(tasks, projects, now)
	second := dashboard.Compute(tasks, projects, now)
	require.Equal(t, first, second)

	// Inputs are not mutated
	require.Equal(t, models.StatusCompleted, tasks[0].Status)
	require.Len(t, tasks, 3)
}
