package scale

import (
	"errors"
	"math"
)

var (
	// ErrDegenerateCalibration is returned when the calibration heights are equal, leaving no range to scale over.
	ErrDegenerateCalibration = errors.New("calibration min height equals max height")

	// ErrInvalidHeight is returned for heights that cannot be mapped, such as NaN.
	ErrInvalidHeight = errors.New("height is not a number")
)

func clamp(t, min, max float64) float64 {
	min, max = math.Min(min, max), math.Max(min, max)
	return math.Max(math.Min(t, max), min)
}

// Clamp returns a function that scales a number from the interval [rMin,rMax] to the interval
// [dMin,dMax], clamping the result to [dMin,dMax].
func Clamp(rMin, rMax, dMin, dMax float64) func(m float64) float64 {
	return func(m float64) float64 {
		return clamp((m-rMin)/(rMax-rMin)*(dMax-dMin)+dMin, dMin, dMax)
	}
}

// Calibration maps the physical height of a motor to the DMX value that drives it there.
type Calibration struct {
	MinHeight float64 `yaml:"min_height"`
	MaxHeight float64 `yaml:"max_height"`
	MinDMX    float64 `yaml:"min_dmx"`
	MaxDMX    float64 `yaml:"max_dmx"`
}

// Validate reports a calibration whose heights span no range.
func (c Calibration) Validate() error {
	if c.MinHeight == c.MaxHeight {
		return ErrDegenerateCalibration
	}
	return nil
}

// ToDMX maps height onto the calibrated DMX range.
func (c Calibration) ToDMX(height float64) (uint8, error) {
	return HeightToDMX(height, c.MinHeight, c.MaxHeight, c.MinDMX, c.MaxDMX)
}

// HeightToDMX linearly maps height from [minHeight,maxHeight] onto [minDMX,maxDMX], rounds to the
// nearest step and clamps the result into the DMX range. Heights outside the calibration clamp
// rather than wrap. Swapped DMX bounds give a falling ramp.
func HeightToDMX(height, minHeight, maxHeight, minDMX, maxDMX float64) (uint8, error) {
	if minHeight == maxHeight {
		return 0, ErrDegenerateCalibration
	}
	if math.IsNaN(height) {
		return 0, ErrInvalidHeight
	}

	// the destination is shifted by half a step so truncation rounds to the nearest value
	toDMX := Clamp(minHeight, maxHeight, minDMX+0.5, maxDMX+0.5)
	v := clamp(clamp(toDMX(height), minDMX, maxDMX), 0, 255)
	if math.IsNaN(v) {
		return 0, ErrInvalidHeight
	}
	return uint8(v), nil
}
