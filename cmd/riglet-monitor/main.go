// riglet-monitor shows CPU load and the health of the autopatch and clock2po
// services in the terminal.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aerialviews007/riglet/monitor"
)

func main() {
	p := tea.NewProgram(monitor.NewModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "riglet-monitor: %v\n", err)
		os.Exit(1)
	}
}
