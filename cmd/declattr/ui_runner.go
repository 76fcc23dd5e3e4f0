package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"declattr/internal/driver"
	"declattr/internal/ui"
)

func runProgress(title string, files []string, events <-chan driver.UnitEvent) error {
	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, err := program.Run()
	return err
}
