package tui

import (
	"fmt"

	"ftxwidget/pkg/config"
	"ftxwidget/pkg/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the terminal UI against a started store until the user quits.
func Start(st *store.Store, cfg config.WidgetConfig, version string) error {
	Version = version

	sub := st.Subscribe()
	defer st.Unsubscribe(sub)

	p := tea.NewProgram(
		initialModel(st.Dispatch, sub, st.State(), cfg),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
