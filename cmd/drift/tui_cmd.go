package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/signaldrift/signaldrift/cmd/drift/tui"
)

var tuiCommand = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal UI",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCommand)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	p := tea.NewProgram(tui.New(newGateway()), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
