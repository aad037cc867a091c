package fixture

import "github.com/robmorgan/kinetic/utils"

// Channels stores the DMX values of a single motor, addressed by 1-based channel number.
//
// Every channel from 1 to the declared count starts at 0. Writes are clamped into 0-255 and
// never fail; channels outside the declared range read as 0 and ignore writes.
type Channels struct {
	values []uint8
}

// NewChannels creates a channel store with count channels, all set to 0.
func NewChannels(count int) Channels {
	if count < 0 {
		count = 0
	}
	return Channels{values: make([]uint8, count)}
}

// SetChannel clamps value into the DMX range and stores it.
func (c *Channels) SetChannel(channel int, value int) {
	if channel < 1 || channel > len(c.values) {
		return
	}
	c.values[channel-1] = uint8(utils.ClampByte(value))
}

// GetChannel returns the stored value or 0 if the channel was never declared.
func (c *Channels) GetChannel(channel int) int {
	if channel < 1 || channel > len(c.values) {
		return 0
	}
	return int(c.values[channel-1])
}

// GetChannelCount returns the number of declared channels.
func (c *Channels) GetChannelCount() int {
	return len(c.values)
}

// Reset sets every channel back to 0.
func (c *Channels) Reset() {
	for i := range c.values {
		c.values[i] = 0
	}
}
