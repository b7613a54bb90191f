// Package nav owns the navigable view table and the session-based
// route guard.
package nav

// Name identifies a navigable view.
type Name string

const (
	Login       Name = "login"
	Register    Name = "register"
	Dashboard   Name = "dashboard"
	Projects    Name = "projects"
	Tasks       Name = "tasks"
	AddTask     Name = "add-task"
	EditTask    Name = "edit-task"
	EditProject Name = "edit-project"
)

// Access tags a view as reachable with or without a session.
type Access int

const (
	Public Access = iota
	Protected
)

// table is the single source of truth for per-view access.
var table = map[Name]Access{
	Login:       Public,
	Register:    Public,
	Dashboard:   Protected,
	Projects:    Protected,
	Tasks:       Protected,
	AddTask:     Protected,
	EditTask:    Protected,
	EditProject: Protected,
}

// Route is one navigation target. ID carries the entity for the edit
// views and is zero otherwise.
type Route struct {
	Name Name
	ID   int64
}

// AccessFor returns the access tag for a view. Unknown names are
// treated as Protected.
func AccessFor(n Name) Access {
	access, ok := table[n]
	if !ok {
		return Protected
	}
	return access
}

// Resolve maps a navigation attempt to the route actually rendered:
// protected views without a session fall back to login, and public
// views with an active session fall back to the dashboard landing.
func Resolve(r Route, hasSession bool) Route {
	if AccessFor(r.Name) == Protected && !hasSession {
		return Route{Name: Login}
	}
	if AccessFor(r.Name) == Public && hasSession {
		return Route{Name: Dashboard}
	}
	return r
}
