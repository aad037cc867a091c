package fixture

import (
	"fmt"
	"io"

	"github.com/robmorgan/kinetic/config"
)

// MotorRoles is the number of motors carried by a kinetic fixture.
const MotorRoles = 3

// Fixture is a kinetic light: a platform hung from three motors on the corners of an
// equilateral triangle. Motors are addressed by role 1, 2 and 3; role 1 is the motor that
// also carries the lighting channels.
type Fixture struct {
	// Name of the patched fixture
	Name string

	// The DMX universe and starting address
	Universe int
	Address  int

	motors [MotorRoles]Motor
}

// NewFixture creates a fixture that owns the three motors. Callers should not keep using the
// motors they pass in.
func NewFixture(m1, m2, m3 Motor) *Fixture {
	return &Fixture{
		Universe: 1,
		Address:  1,
		motors:   [MotorRoles]Motor{m1, m2, m3},
	}
}

// NewFromConfig builds the patched fixture, creating each motor from its profile.
func NewFromConfig(cfg config.KineticConfig) (*Fixture, error) {
	patch := cfg.Patch
	if len(patch.Motors) != MotorRoles {
		return nil, fmt.Errorf("fixture %s patches %d motors, expected %d", patch.Name, len(patch.Motors), MotorRoles)
	}

	var motors [MotorRoles]Motor
	for i, pm := range patch.Motors {
		p, ok := cfg.FixtureProfiles[pm.Profile]
		if !ok {
			return nil, fmt.Errorf("motor %s uses unknown profile %q", pm.Name, pm.Profile)
		}
		m, err := NewMotorFromProfile(p)
		if err != nil {
			return nil, fmt.Errorf("motor %s: %w", pm.Name, err)
		}
		motors[i] = m
	}

	f := NewFixture(motors[0], motors[1], motors[2])
	f.Name = patch.Name
	f.Universe = patch.Universe
	f.Address = patch.Address
	return f, nil
}

// SetMotorChannel sets a channel on the motor at role. Unknown roles are ignored.
func (f *Fixture) SetMotorChannel(role, channel, value int) {
	if m := f.GetMotor(role); m != nil {
		m.SetChannel(channel, value)
	}
}

// GetMotor returns the motor at role (1-3), or nil for any other role.
func (f *Fixture) GetMotor(role int) *Motor {
	if role < 1 || role > MotorRoles {
		return nil
	}
	return &f.motors[role-1]
}

// GetChannelCount returns the total number of channels across all motors.
func (f *Fixture) GetChannelCount() int {
	total := 0
	for i := range f.motors {
		total += f.motors[i].GetChannelCount()
	}
	return total
}

// Values returns every channel of every motor, ordered by role then channel.
func (f *Fixture) Values() []uint8 {
	out := make([]uint8, 0, f.GetChannelCount())
	for i := range f.motors {
		m := &f.motors[i]
		for ch := 1; ch <= m.GetChannelCount(); ch++ {
			out = append(out, uint8(m.GetChannel(ch)))
		}
	}
	return out
}

// Reset sets every channel of every motor back to 0.
func (f *Fixture) Reset() {
	for i := range f.motors {
		f.motors[i].Reset()
	}
}

// PrintStatus writes the label and channel values of each motor to w.
func (f *Fixture) PrintStatus(w io.Writer) {
	fmt.Fprintln(w, "Kinetic Light Status:")
	for i := range f.motors {
		fmt.Fprintln(w, f.motors[i].Status())
	}
}
