package dashboard

import (
	"math"
	"time"

	"github.com/husseinbouik/taskman/internal/models"
)

// Metrics is derived from the current task/project collections on
// every render and never persisted.
type Metrics struct {
	TotalTasks     int
	CompletedTasks int
	PendingTasks   int
	OverdueTasks   int
	TasksDueToday  int
	TotalProjects  int
	CompletionRate int // rounded integer percentage
}

// Compute derives dashboard metrics. Pure: the input slices are not
// mutated and equal inputs yield equal output.
func Compute(tasks []models.Task, projects []models.Project, now time.Time) Metrics {
	m := Metrics{
		TotalTasks:    len(tasks),
		TotalProjects: len(projects),
	}

	for _, t := range tasks {
		switch t.Status {
		case models.StatusCompleted:
			m.CompletedTasks++
		case models.StatusPending:
			m.PendingTasks++
		}

		if t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(now) && t.Status != models.StatusCompleted {
			m.OverdueTasks++
		}
		if sameDay(*t.DueDate, now) {
			m.TasksDueToday++
		}
	}

	if m.TotalTasks > 0 {
		m.CompletionRate = int(math.Round(float64(m.CompletedTasks) / float64(m.TotalTasks) * 100))
	}

	return m
}

// sameDay compares calendar dates, ignoring time of day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
