// Package apitest runs an in-process stand-in for the task/project
// backend so client packages can be tested against real HTTP traffic.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/husseinbouik/taskman/internal/models"
)

// Server is a fake backend speaking the same REST contract as the real
// one: bearer-token auth, JSON bodies, {"error": ...} rejections.
type Server struct {
	HTTP *httptest.Server

	mu       sync.Mutex
	users    map[int64]*account
	tokens   map[string]int64 // token -> user id
	tasks    map[int64]models.Task
	projects map[int64]models.Project
	nextID   int64
}

type account struct {
	user models.User
	hash []byte
}

// New starts a fake backend. Callers own shutdown via Close.
func New() *Server {
	s := &Server{
		users:    make(map[int64]*account),
		tokens:   make(map[string]int64),
		tasks:    make(map[int64]models.Task),
		projects: make(map[int64]models.Project),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(s.authMiddleware)
	protected.HandleFunc("/users/me", s.handleMe).Methods(http.MethodGet)
	protected.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	protected.HandleFunc("/users/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	protected.HandleFunc("/users/{id:[0-9]+}", s.handleUpdateUser).Methods(http.MethodPut)
	protected.HandleFunc("/users/{id:[0-9]+}", s.handleDeleteUser).Methods(http.MethodDelete)
	protected.HandleFunc("/tasks", s.handleListTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks", s.handleCreateTask).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{id:[0-9]+}", s.handleGetTask).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{id:[0-9]+}", s.handleUpdateTask).Methods(http.MethodPut)
	protected.HandleFunc("/tasks/{id:[0-9]+}", s.handleDeleteTask).Methods(http.MethodDelete)
	protected.HandleFunc("/projects", s.handleListProjects).Methods(http.MethodGet)
	protected.HandleFunc("/projects", s.handleCreateProject).Methods(http.MethodPost)
	protected.HandleFunc("/projects/{id:[0-9]+}", s.handleGetProject).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{id:[0-9]+}", s.handleUpdateProject).Methods(http.MethodPut)
	protected.HandleFunc("/projects/{id:[0-9]+}", s.handleDeleteProject).Methods(http.MethodDelete)

	s.HTTP = httptest.NewServer(r)
	return s
}

// BaseURL is the API base URL to point a client at.
func (s *Server) BaseURL() string { return s.HTTP.URL + "/api" }

// Close shuts the server down.
func (s *Server) Close() { s.HTTP.Close() }

// AddUser registers an account directly, bypassing HTTP.
func (s *Server) AddUser(username, email, password string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("apitest: hashing password: %v", err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user := models.User{ID: s.nextID, Username: username, Email: email}
	s.users[user.ID] = &account{user: user, hash: hash}
	return user
}

// IssueToken mints a valid token for a user, bypassing login.
func (s *Server) IssueToken(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

// RevokeToken invalidates a token so subsequent calls see a 401.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// SeedProject inserts a project directly.
func (s *Server) SeedProject(p models.Project) models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		s.nextID++
		p.ID = s.nextID
	}
	if p.CreatedAt == nil {
		now := time.Now()
		p.CreatedAt = &now
	}
	s.projects[p.ID] = p
	return p
}

// SeedTask inserts a task directly.
func (s *Server) SeedTask(t models.Task) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		s.nextID++
		t.ID = s.nextID
	}
	if t.Status == "" {
		t.Status = models.StatusPending
	}
	if t.CreatedAt == nil {
		now := time.Now()
		t.CreatedAt = &now
	}
	s.tasks[t.ID] = t
	return t
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

		s.mu.Lock()
		_, ok := s.tokens[token]
		s.mu.Unlock()

		if token == "" || !ok {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	s.mu.Lock()
	for _, acct := range s.users {
		if acct.user.Username == req.Username {
			s.mu.Unlock()
			writeError(w, http.StatusBadRequest, "Username already exists. Please choose a different username.")
			return
		}
	}
	s.mu.Unlock()

	user := s.AddUser(req.Username, req.Email, req.Password)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	var match *account
	for _, acct := range s.users {
		if acct.user.Username == req.Username {
			match = acct
			break
		}
	}
	s.mu.Unlock()

	if match == nil || bcrypt.CompareHashAndPassword(match.hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token := s.IssueToken(match.user.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    match.user,
		"token":   token,
	})
}

func (s *Server) currentUser(r *http.Request) (models.User, bool) {
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[token]
	if !ok {
		return models.User{}, false
	}
	acct, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return acct.user, true
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users := make([]models.User, 0, len(s.users))
	for _, acct := range s.users {
		users = append(users, acct.user)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	acct, ok := s.users[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, acct.user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	acct, ok := s.users[id]
	if ok {
		if input.Username != "" {
			acct.user.Username = input.Username
		}
		if input.Email != "" {
			acct.user.Email = input.Email
		}
		if input.Password != "" {
			if hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.MinCost); err == nil {
				acct.hash = hash
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, acct.user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	_, ok := s.users[id]
	delete(s.users, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

// resolveProjectName mirrors the real backend, which serializes the
// joined project name onto each task.
func (s *Server) resolveProjectName(t *models.Task) {
	if t.ProjectID == nil {
		t.ProjectName = ""
		return
	}
	if p, ok := s.projects[*t.ProjectID]; ok {
		t.ProjectName = p.Name
	}
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tasks := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		s.resolveProjectName(&t)
		tasks = append(tasks, t)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var input models.Task
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if input.Status == "" {
		input.Status = models.StatusPending
	}
	now := time.Now()
	input.CreatedAt = &now

	s.mu.Lock()
	s.nextID++
	input.ID = s.nextID
	s.tasks[input.ID] = input
	s.resolveProjectName(&input)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, input)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	t, ok := s.tasks[id]
	if ok {
		s.resolveProjectName(&t)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var input models.Task
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	existing, ok := s.tasks[id]
	if ok {
		existing.Title = input.Title
		existing.Description = input.Description
		existing.Status = input.Status
		existing.ProjectID = input.ProjectID
		existing.DueDate = input.DueDate
		s.tasks[id] = existing
		s.resolveProjectName(&existing)
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	_, ok := s.tasks[id]
	delete(s.tasks, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	projects := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		projects = append(projects, p)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var input models.Project
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	now := time.Now()
	input.CreatedAt = &now
	if user, ok := s.currentUser(r); ok {
		input.OwnerName = user.Username
	}

	s.mu.Lock()
	s.nextID++
	input.ID = s.nextID
	s.projects[input.ID] = input
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, input)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	p, ok := s.projects[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var input models.Project
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	existing, ok := s.projects[id]
	if ok {
		existing.Name = input.Name
		existing.Description = input.Description
		s.projects[id] = existing
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	_, ok := s.projects[id]
	delete(s.projects, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Project deleted"})
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
