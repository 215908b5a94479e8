// Package tui provides the terminal request panel for striko.
// It uses Bubble Tea for the TUI framework.
//
// File organization:
// - app.go: Entry point (Run function)
// - model.go: Model struct and message types
// - init.go: Model initialization
// - update.go: Event handling and state updates
// - view.go: Rendering and display logic
// - keys.go: Keyboard input handling
// - styles.go: Visual styling (colors, borders, etc.)
// - highlight.go: JSON syntax highlighting
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/holps-7/striko/pkg/core"
)

// Run starts the request panel for session and blocks until the user quits.
func Run(session *core.Session) error {
	changes, stop := session.Tracker().Subscribe()
	defer stop()

	m := NewModel(session, changes)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	_, err := prog.Run()
	return err
}
