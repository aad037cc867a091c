package config

import "github.com/robmorgan/kinetic/profile"

func initializeFixtureProfiles() map[string]profile.Profile {
	out := map[string]profile.Profile{
		"kinetic-motor-9ch": {
			Name:         "Kinetic Motor",
			ChannelCount: 9,
			Channels: map[string]int{
				profile.ChannelTypeMotorPosition: 1,
				profile.ChannelTypeMotorFine:     2,
				profile.ChannelTypeMotorSpeed:    3,
			},
		},
		"kinetic-motor-10ch": {
			Name:         "Kinetic Motor",
			ChannelCount: 10,
			Channels: map[string]int{
				profile.ChannelTypeMotorPosition: 1,
				profile.ChannelTypeMotorFine:     2,
				profile.ChannelTypeMotorSpeed:    3,
			},
		},
		"kinetic-motor-62ch": {
			Name: "Kinetic Motor with LED Head",
			// 62 channel mode, channels 4-62 drive the light head
			ChannelCount: 62,
			Channels: map[string]int{
				profile.ChannelTypeMotorPosition:  1,
				profile.ChannelTypeMotorFine:      2,
				profile.ChannelTypeMotorSpeed:     3,
				profile.ChannelTypeIntensity:      4,
				profile.ChannelTypeRed:            5,
				profile.ChannelTypeGreen:          6,
				profile.ChannelTypeBlue:           7,
				profile.ChannelTypeWhite:          8,
				profile.ChannelTypeStrobe:         9,
				profile.ChannelTypeFunctionSelect: 10,
			},
		},
	}

	return out
}
