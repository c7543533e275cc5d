package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"phpsniff/internal/driver"
)

// RunProgress renders events until the channel is closed. If the user
// quits early the remaining events are drained so producers never block.
func RunProgress(out io.Writer, title string, files []string, events <-chan driver.Event) error {
	model := NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out))
	_, err := program.Run()
	go func() {
		for range events {
		}
	}()
	return err
}
