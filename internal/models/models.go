package models

import "time"

// Task status values as stored by the backend.
const (
	StatusPending    = "pending"
	StatusInProgress = "in progress"
	StatusCompleted  = "completed"
)

// Statuses lists the valid task statuses in form-cycling order.
var Statuses = []string{StatusPending, StatusInProgress, StatusCompleted}

// User identifies an account on the backend.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Session is the client-held proof of authentication.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Project groups tasks. OwnerName is a convenience field supplied by
// the backend and may be empty.
type Project struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	OwnerName   string     `json:"ownerName,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// Task is a single unit of work. ProjectID is nil for unassigned
// tasks; ProjectName mirrors the backend's convenience field and may
// be empty even when ProjectID is set.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	ProjectID   *int64     `json:"projectId,omitempty"`
	ProjectName string     `json:"projectName,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}
