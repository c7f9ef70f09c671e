package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"chaoscontext/chat"
	"chaoscontext/config"
	"chaoscontext/storage"
	"chaoscontext/ui"
)

const Version = "v0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	config.InitDebugLog(cfg.DataDir())

	// A broken storage medium degrades to a memory-only client rather than
	// refusing to start; the chat flow never depends on persistence.
	var store chat.Store
	sessionStore, err := storage.NewSessionStore(cfg.DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: session persistence unavailable: %v\n", err)
		if config.DebugLog != nil {
			config.DebugLog.Printf("session persistence unavailable: %v", err)
		}
	} else {
		store = sessionStore
		defer sessionStore.Close()
	}

	client := chat.NewClient(cfg.APIURL, store)

	p := tea.NewProgram(
		ui.NewAppView(client, Version),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running chaoscontext: %v\n", err)
		os.Exit(1)
	}
}
