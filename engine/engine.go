// Package engine runs the control cycle of a kinetic light: it turns a platform pose into
// motor positions and writes them, with speed and lighting values, into the fixture channels.
package engine

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/robmorgan/kinetic/config"
	"github.com/robmorgan/kinetic/fixture"
	"github.com/robmorgan/kinetic/kinematics"
	"github.com/robmorgan/kinetic/profile"
)

var (
	// ErrConfigInvalid tags a cycle that failed because of the configuration, e.g. min height >= max height.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrRangeViolation tags a cycle whose solved motor heights fall outside the operating range.
	ErrRangeViolation = errors.New("motor heights out of range")
)

// Output holds one value per fixture channel, ordered by motor role then channel.
type Output []float32

// Bytes converts the output to DMX bytes.
func (o Output) Bytes() []byte {
	b := make([]byte, len(o))
	for i, v := range o {
		b[i] = byte(v)
	}
	return b
}

// ChannelName returns the display name of output channel index, e.g. "dmx1".
func ChannelName(index int) string {
	return fmt.Sprintf("dmx%d", index+1)
}

// Status is a snapshot of the engine diagnostics after a cycle.
type Status struct {
	ExecuteCount int64
	Offset       float64
	Output       Output
	Err          error

	// Info and Table carry the diagnostics as live channels and as a name/value table.
	Info  []InfoChannel
	Table [][2]string
}

// InfoChannel is a named diagnostic value.
type InfoChannel struct {
	Name  string
	Value float64
}

// Engine drives a kinetic fixture one control cycle at a time.
type Engine struct {
	fixture *fixture.Fixture
	solve   kinematics.SolveFunc

	mu           sync.Mutex
	executeCount int64
	offset       float64
	last         Status
	listeners    []func(Status)
}

// New creates an engine that drives f with the standard three motor kinematics.
func New(f *fixture.Fixture) *Engine {
	return &Engine{
		fixture: f,
		solve:   kinematics.MotorHeights,
	}
}

// SetSolver replaces the kinematics solver.
func (e *Engine) SetSolver(solve kinematics.SolveFunc) {
	e.solve = solve
}

// AddListener registers fn to be called with the status after every cycle. Listeners run on the
// cycle goroutine and must not block.
func (e *Engine) AddListener(fn func(Status)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Step runs one control cycle. Any failure, including a panic, blacks out the fixture: the
// returned output is all zeros and the error says why.
func (e *Engine) Step(cfg config.KineticConfig, in Inputs) (out Output, err error) {
	e.mu.Lock()
	e.executeCount++
	e.mu.Unlock()

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("cycle panicked: %v", r)
			}
		}()
		out, err = e.Cycle(cfg, in)
	}()

	if err != nil {
		e.fixture.Reset()
		out = make(Output, e.fixture.GetChannelCount())
	}

	e.mu.Lock()
	e.last = Status{ExecuteCount: e.executeCount, Offset: e.offset, Output: out, Err: err}
	status := e.statusLocked()
	listeners := e.listeners
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(status)
	}
	return out, err
}

// Cycle resolves the inputs, solves the motor heights and writes every motor channel. It returns
// an error tagged ErrConfigInvalid or ErrRangeViolation instead of partial output.
func (e *Engine) Cycle(cfg config.KineticConfig, in Inputs) (Output, error) {
	motion := cfg.Motion
	pose := in.Pose(motion.MinHeight)
	if cfg.Limits.Clamp {
		l := cfg.Limits
		pose = pose.ClampAngles(l.MinRoll, l.MaxRoll, l.MinPitch, l.MaxPitch, l.MinYaw, l.MaxYaw)
	}

	if motion.MinHeight >= motion.MaxHeight {
		return nil, fmt.Errorf("%w: min height %g is not below max height %g", ErrConfigInvalid, motion.MinHeight, motion.MaxHeight)
	}
	if err := cfg.Calibration.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	if in.Aux == nil && cfg.Lighting.Color != "" {
		values, err := AuxFromColor(e.fixture.GetMotor(1), cfg.Lighting)
		if err != nil {
			return nil, fmt.Errorf("%w: lighting color %q: %v", ErrConfigInvalid, cfg.Lighting.Color, err)
		}
		in.Aux = values
	}

	heights := e.solve(motion.BaseSize, pose.Roll, pose.Pitch, pose.Yaw)
	if outOfRange(heights, motion.MinHeight, motion.MaxHeight) {
		return nil, fmt.Errorf("%w: heights %.3f, %.3f, %.3f outside %g-%g", ErrRangeViolation,
			heights[0], heights[1], heights[2], motion.MinHeight, motion.MaxHeight)
	}

	speed := in.SpeedValue()
	for role := 1; role <= fixture.MotorRoles; role++ {
		m := e.fixture.GetMotor(role)

		v, err := cfg.Calibration.ToDMX(heights[role-1] + pose.Height)
		if err != nil {
			return nil, fmt.Errorf("%w: motor %d: %v", ErrRangeViolation, role, err)
		}

		position := m.Channel(profile.ChannelTypeMotorPosition)
		if position == 0 {
			return nil, fmt.Errorf("%w: motor %d has no position channel", ErrConfigInvalid, role)
		}
		m.SetChannel(position, int(v))
		m.SetChannel(m.Channel(profile.ChannelTypeMotorFine), 0)
		m.SetChannel(m.Channel(profile.ChannelTypeMotorSpeed), speed)
	}

	// the first motor carries the light head, every other channel comes from the aux input
	m := e.fixture.GetMotor(1)
	for ch := 1; ch <= m.GetChannelCount(); ch++ {
		if isMotorControl(m, ch) {
			continue
		}
		m.SetChannel(ch, in.AuxValue(ch))
	}

	values := e.fixture.Values()
	out := make(Output, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out, nil
}

// outOfRange reports whether all three heights are below min or all three are above max.
func outOfRange(h [3]float64, min, max float64) bool {
	allBelow := h[0] < min && h[1] < min && h[2] < min
	allAbove := h[0] > max && h[1] > max && h[2] > max
	return allBelow || allAbove
}

func isMotorControl(m *fixture.Motor, channel int) bool {
	switch channel {
	case m.Channel(profile.ChannelTypeMotorPosition),
		m.Channel(profile.ChannelTypeMotorFine),
		m.Channel(profile.ChannelTypeMotorSpeed):
		return true
	}
	return false
}

// Reset clears the offset. It is the handler for the external reset action.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offset = 0
}

// SetOffset sets the diagnostic offset value.
func (e *Engine) SetOffset(offset float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offset = offset
}

// ExecuteCount returns the number of cycles run so far, including failed ones.
func (e *Engine) ExecuteCount() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.executeCount
}


// LastStatus returns the status recorded by the most recent cycle.
func (e *Engine) LastStatus() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statusLocked()
}

// statusLocked returns the last status with the current diagnostics. It must be called with the lock held.
func (e *Engine) statusLocked() Status {
	s := e.last
	s.Offset = e.offset
	s.Info = e.infoChannelsLocked()
	s.Table = e.infoTableLocked()
	return s
}

// infoChannelsLocked returns the diagnostic values as named channels.
func (e *Engine) infoChannelsLocked() []InfoChannel {
	return []InfoChannel{
		{Name: "executeCount", Value: float64(e.executeCount)},
		{Name: "offset", Value: e.offset},
	}
}

// infoTableLocked returns the diagnostic values as a two row name/value table.
func (e *Engine) infoTableLocked() [][2]string {
	return [][2]string{
		{"executeCount", strconv.FormatInt(e.executeCount, 10)},
		{"offset", strconv.FormatFloat(e.offset, 'g', -1, 64)},
	}
}
