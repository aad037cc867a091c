package profile

import "fmt"

const (
	ChannelTypeMotorPosition = "channel:type:motor:position"
	ChannelTypeMotorFine     = "channel:type:motor:fine"
	ChannelTypeMotorSpeed    = "channel:type:motor:speed"

	ChannelTypeIntensity = "channel:type:intensity"
	ChannelTypeStrobe    = "channel:type:strobe"

	ChannelTypeRed   = "channel:type:red"
	ChannelTypeGreen = "channel:type:green"
	ChannelTypeBlue  = "channel:type:blue"
	ChannelTypeWhite = "channel:type:white"

	ChannelTypeFunctionSelect = "channel:type:function:select"
	ChannelTypeUnknown        = "channel:type:unknown"
)

// Profile holds info for a motor profile including the channel count and channel mappings.
type Profile struct {
	Name string `yaml:"name"`

	// ChannelCount is the number of DMX channels the motor occupies.
	ChannelCount int `yaml:"channel_count"`

	// The motor channels, keyed by channel type
	Channels map[string]int `yaml:"channels"`
}

// Channel returns the channel number mapped to the channel type, or 0 if the profile does not map it.
func (p Profile) Channel(channelType string) int {
	return p.Channels[channelType]
}

// Validate checks that every mapped channel falls within the profile's channel count.
func (p Profile) Validate() error {
	if p.ChannelCount <= 0 {
		return fmt.Errorf("profile %q has no channels", p.Name)
	}
	for t, ch := range p.Channels {
		if ch < 1 || ch > p.ChannelCount {
			return fmt.Errorf("profile %q maps %s to channel %d, outside 1-%d", p.Name, t, ch, p.ChannelCount)
		}
	}
	return nil
}

// MotorLayout returns the default layout shared by every kinetic motor: position, fine tuning then speed.
func MotorLayout() map[string]int {
	return map[string]int{
		ChannelTypeMotorPosition: 1,
		ChannelTypeMotorFine:     2,
		ChannelTypeMotorSpeed:    3,
	}
}
