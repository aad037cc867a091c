package fixture

import (
	"fmt"
	"io"
	"sync"

	"github.com/robmorgan/kinetic/config"
	"github.com/robmorgan/kinetic/logger"
	"github.com/tarm/serial"
)

const (
	enttecStartOfMessage = 0x7E
	enttecEndOfMessage   = 0xE7
	enttecSendDMXLabel   = 6
	enttecBaud           = 57600

	// the widget refuses frames shorter than this
	enttecMinChannels = 24
)

// EnttecClient sends DMX through an Enttec DMX USB Pro compatible widget. The widget drives a
// single universe, frames for any other universe are dropped.
type EnttecClient struct {
	Universe int

	mu   sync.Mutex
	port io.WriteCloser
}

// NewEnttecClient opens the serial device of a DMX USB Pro widget.
func NewEnttecClient(device string, universe int) (*EnttecClient, error) {
	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: enttecBaud})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", device, err)
	}
	logger.GetProjectLogger().WithField("device", device).Info("opened dmx widget")
	return &EnttecClient{Universe: universe, port: port}, nil
}

// SendDmx writes one DMX frame for universe.
func (c *EnttecClient) SendDmx(universe int, values []byte) (bool, error) {
	if universe != c.Universe {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.port.Write(EnttecFrame(values)); err != nil {
		return false, err
	}
	return true, nil
}

// Close closes the serial port.
func (c *EnttecClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.port.Close(); err != nil {
		logger.GetProjectLogger().WithError(err).Warn("closing dmx widget")
	}
}

// EnttecFrame wraps DMX values in a "send DMX packet" widget message. The payload is the DMX
// start code followed by the channel values.
func EnttecFrame(values []byte) []byte {
	n := len(values)
	if n < enttecMinChannels {
		n = enttecMinChannels
	}
	if n > config.UniverseChannels {
		n = config.UniverseChannels
	}

	size := n + 1
	frame := make([]byte, 0, size+5)
	frame = append(frame, enttecStartOfMessage, enttecSendDMXLabel, byte(size&0xFF), byte(size>>8), 0x00)

	data := make([]byte, n)
	copy(data, values)
	frame = append(frame, data...)
	return append(frame, enttecEndOfMessage)
}
