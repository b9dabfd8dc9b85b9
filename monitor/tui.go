package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	barCells     = 8
	samplePeriod = time.Second
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	amberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	downStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type tickMsg time.Time

type statsMsg struct {
	sample    CPUSample
	autopatch bool
	clock     bool
}

// Model renders CPU load and daemon health, refreshed once a second.
type Model struct {
	prev     CPUSample
	havePrev bool

	cpu       float64
	autopatch bool
	clock     bool
	quitting  bool
}

// NewModel returns the monitor model.
func NewModel() Model {
	return Model{}
}

func (m Model) Init() tea.Cmd {
	return sampleStats
}

func sampleStats() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), samplePeriod)
	defer cancel()

	sample, err := ReadCPUSample()
	if err != nil {
		sample = CPUSample{}
	}
	return statsMsg{
		sample:    sample,
		autopatch: ServiceActive(ctx, ServiceAutopatch),
		clock:     ServiceActive(ctx, ServiceClock),
	}
}

func tick() tea.Cmd {
	return tea.Tick(samplePeriod, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		return m, sampleStats

	case statsMsg:
		if m.havePrev {
			m.cpu = BusyFraction(m.prev, msg.sample)
		}
		m.prev = msg.sample
		m.havePrev = true
		m.autopatch = msg.autopatch
		m.clock = msg.clock
		return m, tick()
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("riglet monitor"))
	b.WriteString("\n\n")

	filled := int(m.cpu*barCells + 0.5)
	bar := amberStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barCells-filled))
	fmt.Fprintf(&b, "cpu  %s %3.0f%%\n\n", bar, m.cpu*100)

	b.WriteString(serviceLine(ServiceAutopatch, m.autopatch))
	b.WriteString(serviceLine(ServiceClock, m.clock))

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("q to quit"))
	b.WriteString("\n")
	return b.String()
}

func serviceLine(name string, active bool) string {
	dot := downStyle.Render("●")
	label := "down"
	if active {
		dot = okStyle.Render("●")
		label = "active"
	}
	return fmt.Sprintf("%s %-24s %s\n", dot, name, label)
}
