// Command monitor shows the live state of the kinetic light in the terminal.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/robmorgan/kinetic/config"
	"github.com/robmorgan/kinetic/fixture"
	"github.com/robmorgan/kinetic/protocol"
)

func main() {
	configPath := flag.String("config", "", "path to the kinetic config file")
	addr := flag.String("addr", "", "status server address, defaults to status.listen_addr from the config")
	flag.Parse()

	cfg := config.NewKineticConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Println("Error loading config:", err)
			os.Exit(1)
		}
	}
	if *addr == "" {
		*addr = cfg.Status.ListenAddr
	}

	f, err := fixture.NewFromConfig(cfg)
	if err != nil {
		fmt.Println("Error creating fixture:", err)
		os.Exit(1)
	}

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws", *addr), nil)
	if err != nil {
		fmt.Println("Error connecting to status server:", err)
		os.Exit(1)
	}
	defer conn.Close()

	sub := make(chan protocol.StatusPayload)
	go readStatus(conn, sub)

	if err := tea.NewProgram(newModel(f, conn, sub)).Start(); err != nil {
		fmt.Println("Error running program:", err)
		os.Exit(1)
	}
}

// readStatus forwards status messages from conn to sub until the connection drops.
func readStatus(conn *websocket.Conn, sub chan<- protocol.StatusPayload) {
	defer close(sub)

	for {
		var msg protocol.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type != protocol.TypeStatus {
			continue
		}

		var p protocol.StatusPayload
		if err := msg.ParsePayload(&p); err != nil {
			continue
		}
		sub <- p
	}
}
