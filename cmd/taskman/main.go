package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/husseinbouik/taskman/internal/api"
	"github.com/husseinbouik/taskman/internal/config"
	"github.com/husseinbouik/taskman/internal/db"
	"github.com/husseinbouik/taskman/internal/session"
	"github.com/husseinbouik/taskman/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("taskman %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Local settings database holding the durable session slots
	database, err := db.New(cfg.DB.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing settings store: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	// The client reads the token through the store; the store logs in
	// through the client
	var store *session.Store
	client := api.New(cfg.API.BaseURL, cfg.API.Timeout, api.TokenFunc(func() string {
		if store == nil {
			return ""
		}
		return store.Token()
	}))

	store, err = session.NewStore(client, database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error restoring session: %v\n", err)
		os.Exit(1)
	}

	app := ui.NewApp(client, store, database)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}
