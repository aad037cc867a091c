package main

import (
	"fmt"
	"strings"

	"github.com/robmorgan/kinetic/engine"
)

func (m model) View() string {
	var s strings.Builder

	if m.connected {
		fmt.Fprintf(&s, "%s Status updates: %d\n\n", m.spinner.View(), m.updates)
	} else {
		s.WriteString(errorStyle.Render("Disconnected from status server") + "\n\n")
	}

	for _, row := range m.status.Table {
		s.WriteString(labelStyle.Render(row.Name) + row.Value + "\n")
	}
	s.WriteString("\n")

	if m.status.Error != "" {
		s.WriteString(errorStyle.Render("DARK: "+m.status.Error) + "\n\n")
	}

	channels := m.status.Channels
	first := 0
	for _, row := range m.motors {
		n := row.channels
		if n > len(channels) {
			n = len(channels)
		}
		s.WriteString(row.label)
		if n > 0 {
			s.WriteString(" " + engine.ChannelName(first) + "-" + engine.ChannelName(first+n-1))
		}
		s.WriteString(":")
		for _, v := range channels[:n] {
			fmt.Fprintf(&s, " %d", int(v))
		}
		s.WriteString("\n")
		channels = channels[n:]
		first += n
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("(R)eset offset\n\nPress q or ctrl+c to exit\n"))

	if m.quitting {
		s.WriteString("\n")
	}
	return appStyle.Render(s.String())
}
