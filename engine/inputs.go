package engine

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/kinetic/config"
	"github.com/robmorgan/kinetic/fixture"
	"github.com/robmorgan/kinetic/kinematics"
	"github.com/robmorgan/kinetic/profile"
	"github.com/robmorgan/kinetic/utils"
)

// DefaultSpeed is the motor speed used when no speed input is connected.
const DefaultSpeed = 127.0

// Inputs is one sample of every input the control cycle reads. A nil field means the input is not
// connected, a NaN sample is treated the same way.
type Inputs struct {
	Height *float64
	Roll   *float64
	Pitch  *float64
	Yaw    *float64
	Speed  *float64

	// Aux holds extra DMX values for the lighting channels of the first motor, indexed by
	// channel number minus one.
	Aux []float64
}

// InputSource supplies the inputs for each control cycle.
type InputSource interface {
	Sample() Inputs
}

// InputSourceFunc adapts a plain function to an InputSource.
type InputSourceFunc func() Inputs

func (f InputSourceFunc) Sample() Inputs {
	return f()
}

func valueOr(v *float64, def float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return def
	}
	return *v
}

// Pose resolves the pose inputs, falling back to defaultHeight and level angles.
func (in Inputs) Pose(defaultHeight float64) kinematics.Pose {
	return kinematics.Pose{
		Height: valueOr(in.Height, defaultHeight),
		Roll:   valueOr(in.Roll, 0),
		Pitch:  valueOr(in.Pitch, 0),
		Yaw:    valueOr(in.Yaw, 0),
	}
}

// SpeedValue returns the speed input clamped into the DMX range, or DefaultSpeed when absent.
func (in Inputs) SpeedValue() int {
	return int(utils.Clamp(valueOr(in.Speed, DefaultSpeed), 0, 255))
}

// AuxValue returns the aux DMX value for channel, or 0 when the aux array is too short.
func (in Inputs) AuxValue(channel int) int {
	if channel < 1 || channel > len(in.Aux) || math.IsNaN(in.Aux[channel-1]) {
		return 0
	}
	return int(utils.Clamp(in.Aux[channel-1], 0, 255))
}

// AuxFromColor builds an aux array that shows a static colour on the lighting channels of m.
// When the motor profile has no intensity channel the colour itself is dimmed.
func AuxFromColor(m *fixture.Motor, lighting config.Lighting) ([]float64, error) {
	c, err := colorful.Hex(lighting.Color)
	if err != nil {
		return nil, err
	}

	intensity := utils.Clamp(lighting.Intensity, 0, 1)
	aux := make([]float64, m.GetChannelCount())

	set := func(channelType string, v float64) {
		if ch := m.Channel(channelType); ch > 0 && ch <= len(aux) {
			aux[ch-1] = v
		}
	}

	dim := 1.0
	if m.Channel(profile.ChannelTypeIntensity) > 0 {
		set(profile.ChannelTypeIntensity, math.Round(intensity*255))
	} else {
		dim = intensity
	}

	r, g, b := c.RGB255()
	set(profile.ChannelTypeRed, math.Round(float64(r)*dim))
	set(profile.ChannelTypeGreen, math.Round(float64(g)*dim))
	set(profile.ChannelTypeBlue, math.Round(float64(b)*dim))

	return aux, nil
}
