package main

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robmorgan/kinetic/protocol"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if m.connected {
				m.err = m.conn.WriteJSON(protocol.Message{Type: protocol.TypeReset})
			}
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	case statusMsg:
		m.status = protocol.StatusPayload(msg)
		m.updates++
		return m, waitForStatus(m.sub)
	case disconnectedMsg:
		m.connected = false
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}
