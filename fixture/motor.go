package fixture

import (
	"fmt"
	"strings"

	"github.com/robmorgan/kinetic/profile"
)

// MotorType is the DMX mode of a motor, identified by its channel count.
type MotorType int

const (
	NineChannel     MotorType = 9
	TenChannel      MotorType = 10
	SixtyTwoChannel MotorType = 62
)

// MotorTypeForChannels returns the motor type that occupies count channels.
func MotorTypeForChannels(count int) (MotorType, error) {
	switch t := MotorType(count); t {
	case NineChannel, TenChannel, SixtyTwoChannel:
		return t, nil
	default:
		return 0, fmt.Errorf("no motor type uses %d channels", count)
	}
}

// ChannelCount returns the number of channels the motor type declares.
func (t MotorType) ChannelCount() int {
	return int(t)
}

// Label returns the display label, e.g. "62CH".
func (t MotorType) Label() string {
	return fmt.Sprintf("%dCH", int(t))
}

// Motor is a single hoist motor on the kinetic fixture.
type Motor struct {
	Channels

	// Type fixes the channel count and never changes after creation.
	Type MotorType

	// layout maps channel types (position, fine, speed...) to channel numbers
	layout map[string]int
}

// NewMotor creates a motor of type t with the default position/fine/speed layout.
func NewMotor(t MotorType) Motor {
	return Motor{
		Channels: NewChannels(t.ChannelCount()),
		Type:     t,
		layout:   profile.MotorLayout(),
	}
}

// NewMotorFromProfile creates a motor whose type and layout come from a motor profile.
func NewMotorFromProfile(p profile.Profile) (Motor, error) {
	if err := p.Validate(); err != nil {
		return Motor{}, err
	}
	t, err := MotorTypeForChannels(p.ChannelCount)
	if err != nil {
		return Motor{}, fmt.Errorf("profile %q: %w", p.Name, err)
	}

	m := NewMotor(t)
	if len(p.Channels) > 0 {
		m.layout = make(map[string]int, len(p.Channels))
		for k, v := range p.Channels {
			m.layout[k] = v
		}
	}
	return m, nil
}

// Label returns the display label of the motor type.
func (m *Motor) Label() string {
	return m.Type.Label()
}

// Channel returns the channel number for a channel type, or 0 when the layout has none.
func (m *Motor) Channel(channelType string) int {
	return m.layout[channelType]
}

// Status returns a one line dump of the motor label and every channel value.
func (m *Motor) Status() string {
	var sb strings.Builder
	sb.WriteString(m.Label())
	sb.WriteString(" Motor -")
	for ch := 1; ch <= m.GetChannelCount(); ch++ {
		fmt.Fprintf(&sb, " CH%d: %d", ch, m.GetChannel(ch))
	}
	return sb.String()
}
