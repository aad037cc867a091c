package main

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robmorgan/kinetic/fixture"
	"github.com/robmorgan/kinetic/protocol"
)

// sender writes messages to the status server.
type sender interface {
	WriteJSON(v interface{}) error
}

type motorRow struct {
	label    string
	channels int
}

type model struct {
	sub     chan protocol.StatusPayload // where we'll receive status updates
	conn    sender
	spinner spinner.Model
	motors  []motorRow

	status    protocol.StatusPayload
	updates   int
	connected bool
	err       error
	quitting  bool
}

func newModel(f *fixture.Fixture, conn sender, sub chan protocol.StatusPayload) model {
	s := spinner.New()
	s.Style = spinnerStyle

	names := []string{"A", "B", "C"}
	rows := make([]motorRow, 0, fixture.MotorRoles)
	for role := 1; role <= fixture.MotorRoles; role++ {
		m := f.GetMotor(role)
		rows = append(rows, motorRow{
			label:    m.Label() + " Motor " + names[role-1],
			channels: m.GetChannelCount(),
		})
	}

	return model{
		sub:       sub,
		conn:      conn,
		spinner:   s,
		motors:    rows,
		connected: true,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForStatus(m.sub), m.spinner.Tick)
}

type statusMsg protocol.StatusPayload

type disconnectedMsg struct{}

// waitForStatus waits for the next status update from the server.
func waitForStatus(sub chan protocol.StatusPayload) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-sub
		if !ok {
			return disconnectedMsg{}
		}
		return statusMsg(p)
	}
}

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(14)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	appStyle     = lipgloss.NewStyle().Margin(1, 2, 0, 2)
)
