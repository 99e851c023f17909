package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/arin-jaff/peach-data-tool/internal/ui"
)

func newOpenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <session-id>",
		Short: "Open a session dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, args[0])
		},
	}
	addDashboardFlags(cmd)
	return cmd
}

func runBrowserCmd(cmd *cobra.Command, _ []string) error {
	return runTUI(cmd, "")
}

func runTUI(cmd *cobra.Command, sessionID string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := ensureDir(s.logFile); err != nil {
		return err
	}
	logFile, err := tea.LogToFile(s.logFile, "peach")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()
	log := s.logger(logFile)
	log.Infof("starting TUI against %s", s.serverURL)

	model := ui.NewModel(s.client(), ui.Options{
		Dashboard: s.dashboardOptions(),
		Timeout:   s.timeout,
		Logger:    log,
		SessionID: sessionID,
		Source:    s.serverURL,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
