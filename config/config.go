package config

import (
	"fmt"
	"os"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/kinetic/engine/scale"
	"github.com/robmorgan/kinetic/profile"
	"gopkg.in/yaml.v3"
)

const (
	DriverOLA    = "ola"
	DriverEnttec = "enttec"
	DriverNone   = "none"

	// UniverseChannels is the number of channels in a DMX512 universe.
	UniverseChannels = 512
)

// KineticConfig represents options that configure the global behavior of the program
type KineticConfig struct {
	// LogLevel is passed to the project logger, e.g. "info" or "debug"
	LogLevel string `yaml:"log_level"`

	// FPS is the number of control cycles per second
	FPS int `yaml:"fps"`

	Motion      Motion            `yaml:"motion"`
	Limits      AngleLimits       `yaml:"limits"`
	Calibration scale.Calibration `yaml:"calibration"`
	Lighting    Lighting          `yaml:"lighting"`

	// Patch stores the patched kinetic fixture
	Patch PatchedFixture `yaml:"patch"`

	// The motor profiles, keyed by profile name
	FixtureProfiles map[string]profile.Profile `yaml:"profiles"`

	Output Output `yaml:"output"`
	OSC    OSC    `yaml:"osc"`
	Status Status `yaml:"status"`
}

// Motion holds the geometry and operating range of the platform.
type Motion struct {
	// BaseSize is the side length of the motor triangle
	BaseSize float64 `yaml:"base_size"`

	MinHeight float64 `yaml:"min_height"`
	MaxHeight float64 `yaml:"max_height"`
}

// AngleLimits bound the roll, pitch and yaw inputs in degrees. They are only applied when Clamp is set.
type AngleLimits struct {
	Clamp bool `yaml:"clamp"`

	MinRoll  float64 `yaml:"min_roll"`
	MaxRoll  float64 `yaml:"max_roll"`
	MinPitch float64 `yaml:"min_pitch"`
	MaxPitch float64 `yaml:"max_pitch"`
	MinYaw   float64 `yaml:"min_yaw"`
	MaxYaw   float64 `yaml:"max_yaw"`
}

// Lighting sets a static colour on the lighting channels of the first motor when no aux DMX input is present.
type Lighting struct {
	// Color is a hex colour such as "#FF8800". Empty leaves the lighting channels at 0.
	Color string `yaml:"color"`

	// Intensity is the master dimmer between 0 and 1
	Intensity float64 `yaml:"intensity"`
}

// Output selects where DMX frames are sent.
type Output struct {
	Driver       string `yaml:"driver"`
	OLAAddress   string `yaml:"ola_address"`
	SerialDevice string `yaml:"serial_device"`

	// TickMS is the interval between DMX frames in milliseconds
	TickMS int `yaml:"tick_ms"`
}

// OSC configures the pose input listener. An empty address disables it.
type OSC struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Status configures the websocket status server. An empty address disables it.
type Status struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Create a new KineticConfig object with reasonable defaults for real usage
func NewKineticConfig() KineticConfig {
	return KineticConfig{
		LogLevel: "info",
		FPS:      40,
		Motion: Motion{
			BaseSize:  1.0,
			MinHeight: 0.5,
			MaxHeight: 3.0,
		},
		Limits: AngleLimits{
			MinRoll:  -45,
			MaxRoll:  45,
			MinPitch: -45,
			MaxPitch: 45,
			MinYaw:   -45,
			MaxYaw:   45,
		},
		Calibration: scale.Calibration{
			MinHeight: 0.5,
			MaxHeight: 3.0,
			MinDMX:    0,
			MaxDMX:    255,
		},
		Lighting: Lighting{
			Intensity: 1.0,
		},
		Patch:           PatchFixture(),
		FixtureProfiles: initializeFixtureProfiles(),
		Output: Output{
			Driver:       DriverOLA,
			OLAAddress:   "localhost:9010",
			SerialDevice: "/dev/ttyUSB0",
			TickMS:       40,
		},
		OSC: OSC{
			ListenAddr: "127.0.0.1:8765",
		},
		Status: Status{
			ListenAddr: "127.0.0.1:8090",
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (KineticConfig, error) {
	cfg := NewKineticConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WithStackTrace(err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WithStackTrace(fmt.Errorf("parsing %s: %w", path, err))
	}
	return cfg, nil
}

// LevelPoseInRange reports whether a level platform passes the per-cycle range check. Motor heights
// are solved relative to the centroid, so a level pose puts every motor at 0 and a MinHeight above 0
// or a MaxHeight below 0 keeps the fixture dark for most poses.
func (c KineticConfig) LevelPoseInRange() bool {
	return c.Motion.MinHeight <= 0 && c.Motion.MaxHeight >= 0
}

// Validate reports problems that stop the fixture from being patched at all. Motion and calibration
// values are checked every control cycle instead, so a bad value there blacks out the fixture rather
// than stopping the program.
func (c KineticConfig) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}

	switch c.Output.Driver {
	case DriverOLA, DriverEnttec, DriverNone:
	default:
		return fmt.Errorf("unknown output driver %q", c.Output.Driver)
	}
	if c.Output.Driver != DriverNone && c.Output.TickMS <= 0 {
		return fmt.Errorf("output tick must be positive, got %dms", c.Output.TickMS)
	}

	if c.Patch.Universe < 1 {
		return fmt.Errorf("fixture %s: universe must be at least 1", c.Patch.Name)
	}

	total := 0
	for _, m := range c.Patch.Motors {
		p, ok := c.FixtureProfiles[m.Profile]
		if !ok {
			return fmt.Errorf("motor %s uses unknown profile %q", m.Name, m.Profile)
		}
		if err := p.Validate(); err != nil {
			return err
		}
		total += p.ChannelCount
	}

	if c.Patch.Address < 1 || c.Patch.Address+total-1 > UniverseChannels {
		return fmt.Errorf("fixture %s: %d channels at address %d do not fit in a universe", c.Patch.Name, total, c.Patch.Address)
	}

	return nil
}
