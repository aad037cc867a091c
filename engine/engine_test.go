package engine

import (
	"math"
	"testing"

	"github.com/robmorgan/kinetic/config"
	"github.com/robmorgan/kinetic/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
)

func constantSolver(h1, h2, h3 float64) func(float64, float64, float64, float64) [3]float64 {
	return func(float64, float64, float64, float64) [3]float64 {
		return [3]float64{h1, h2, h3}
	}
}

func newTestEngine(t *testing.T, solve func(float64, float64, float64, float64) [3]float64) (*Engine, config.KineticConfig) {
	t.Helper()

	cfg := config.NewKineticConfig()
	f, err := fixture.NewFromConfig(cfg)
	require.NoError(t, err)

	e := New(f)
	if solve != nil {
		e.SetSolver(solve)
	}
	return e, cfg
}

func assertDark(t *testing.T, out Output) {
	t.Helper()
	require.Len(t, out, 80)
	for i, v := range out {
		assert.Zerof(t, v, "%s should be dark", ChannelName(i))
	}
}

func TestCycleWritesMotorChannels(t *testing.T) {
	t.Parallel()

	e, cfg := newTestEngine(t, constantSolver(1, 1, 1))

	out, err := e.Step(cfg, Inputs{})
	require.NoError(t, err)
	require.Len(t, out, 80)

	// motor A: 62 channels, then motor B and C with 9 each
	for _, base := range []int{0, 62, 71} {
		assert.Equal(t, float32(102), out[base], "position")
		assert.Equal(t, float32(0), out[base+1], "fine")
		assert.Equal(t, float32(127), out[base+2], "speed")
	}
	for i := 3; i < 62; i++ {
		assert.Zero(t, out[i])
	}
}

func TestCycleUsesHeightInput(t *testing.T) {
	t.Parallel()

	e, cfg := newTestEngine(t, constantSolver(0, 1, -0.5))

	out, err := e.Step(cfg, Inputs{Height: ptr.To(1.5)})
	require.NoError(t, err)

	assert.Equal(t, float32(102), out[0])  // 1.5
	assert.Equal(t, float32(204), out[62]) // 2.5
	assert.Equal(t, float32(51), out[71])  // 1.0
}

func TestCycleDefaultsPoseInputs(t *testing.T) {
	t.Parallel()

	var got [4]float64
	e, cfg := newTestEngine(t, func(base, roll, pitch, yaw float64) [3]float64 {
		got = [4]float64{base, roll, pitch, yaw}
		return [3]float64{1, 1, 1}
	})
	cfg.Motion.BaseSize = 2

	_, err := e.Step(cfg, Inputs{Roll: ptr.To(math.NaN())})
	require.NoError(t, err)
	assert.Equal(t, [4]float64{2, 0, 0, 0}, got)
}

func TestCycleClampsAnglesWhenEnabled(t *testing.T) {
	t.Parallel()

	var roll, pitch float64
	e, cfg := newTestEngine(t, func(_, r, p, _ float64) [3]float64 {
		roll, pitch = r, p
		return [3]float64{1, 1, 1}
	})

	in := Inputs{Roll: ptr.To(80.0), Pitch: ptr.To(-10.0)}

	_, err := e.Step(cfg, in)
	require.NoError(t, err)
	assert.Equal(t, 80.0, roll)

	cfg.Limits.Clamp = true
	cfg.Limits.MaxRoll = 30
	_, err = e.Step(cfg, in)
	require.NoError(t, err)
	assert.Equal(t, 30.0, roll)
	assert.Equal(t, -10.0, pitch)
}

func TestCycleSpeed(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		speed *float64
		want  float32
	}{
		{"default", nil, 127},
		{"in range", ptr.To(200.7), 200},
		{"too fast", ptr.To(300.0), 255},
		{"negative", ptr.To(-5.0), 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e, cfg := newTestEngine(t, constantSolver(1, 1, 1))
			out, err := e.Step(cfg, Inputs{Speed: tc.speed})
			require.NoError(t, err)
			assert.Equal(t, tc.want, out[2])
			assert.Equal(t, tc.want, out[64])
			assert.Equal(t, tc.want, out[73])
		})
	}
}

func TestCycleCopiesAuxIntoLightingChannels(t *testing.T) {
	t.Parallel()

	e, cfg := newTestEngine(t, constantSolver(1, 1, 1))

	aux := make([]float64, 62)
	aux[0] = 99 // position channel, never taken from aux
	aux[3] = 10
	aux[9] = 12.9
	aux[61] = 300

	out, err := e.Step(cfg, Inputs{Aux: aux})
	require.NoError(t, err)

	assert.Equal(t, float32(102), out[0])
	assert.Equal(t, float32(10), out[3])
	assert.Equal(t, float32(12), out[9])
	assert.Equal(t, float32(255), out[61])

	// only the first motor carries lighting channels
	assert.Equal(t, float32(0), out[65])
}

func TestCycleShortAuxLeavesChannelsDark(t *testing.T) {
	t.Parallel()

	e, cfg := newTestEngine(t, constantSolver(1, 1, 1))

	aux := make([]float64, 62)
	for i := range aux {
		aux[i] = 50
	}
	_, err := e.Step(cfg, Inputs{Aux: aux})
	require.NoError(t, err)

	out, err := e.Step(cfg, Inputs{Aux: []float64{1, 2, 3, 4, 5}})
	require.NoError(t, err)
	assert.Equal(t, float32(4), out[3])
	assert.Equal(t, float32(5), out[4])
	for i := 5; i < 62; i++ {
		assert.Zero(t, out[i], ChannelName(i))
	}
}

func TestCycleStaticColor(t *testing.T) {
	t.Parallel()

	e, cfg := newTestEngine(t, constantSolver(1, 1, 1))
	cfg.Lighting.Color = "#ff8000"
	cfg.Lighting.Intensity = 0.5

	out, err := e.Step(cfg, Inputs{})
	require.NoError(t, err)
	assert.Equal(t, float32(128), out[3]) // intensity
	assert.Equal(t, float32(255), out[4])
	assert.Equal(t, float32(128), out[5])
	assert.Equal(t, float32(0), out[6])

	// aux input wins over the configured colour
	out, err = e.Step(cfg, Inputs{Aux: []float64{}})
	require.NoError(t, err)
	assert.Zero(t, out[4])
}

func TestCycleInvalidColor(t *testing.T) {
	t.Parallel()

	e, cfg := newTestEngine(t, constantSolver(1, 1, 1))
	cfg.Lighting.Color = "orange"

	out, err := e.Step(cfg, Inputs{})
	assert.ErrorIs(t, err, ErrConfigInvalid)
	assertDark(t, out)
}

func TestCycleConfigInvalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(*config.KineticConfig)
	}{
		{"equal heights", func(c *config.KineticConfig) { c.Motion.MinHeight = 3 }},
		{"inverted heights", func(c *config.KineticConfig) { c.Motion.MinHeight, c.Motion.MaxHeight = 3, 1 }},
		{"degenerate calibration", func(c *config.KineticConfig) { c.Calibration.MaxHeight = c.Calibration.MinHeight }},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e, cfg := newTestEngine(t, constantSolver(1, 1, 1))
			tc.mutate(&cfg)

			out, err := e.Step(cfg, Inputs{})
			assert.ErrorIs(t, err, ErrConfigInvalid)
			assertDark(t, out)
		})
	}
}

func TestCycleRangeViolation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		heights [3]float64
		fails   bool
	}{
		{"all above", [3]float64{5, 5, 5}, true},
		{"all below", [3]float64{0.1, 0.2, 0.3}, true},
		{"mixed", [3]float64{0, 1, 5}, false},
		{"one in range", [3]float64{0.1, 0.2, 1}, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e, cfg := newTestEngine(t, constantSolver(tc.heights[0], tc.heights[1], tc.heights[2]))
			out, err := e.Step(cfg, Inputs{})
			if tc.fails {
				assert.ErrorIs(t, err, ErrRangeViolation)
				assertDark(t, out)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCycleMixedHeightsClampToCalibration(t *testing.T) {
	t.Parallel()

	e, cfg := newTestEngine(t, constantSolver(0, 1, 5))

	out, err := e.Step(cfg, Inputs{})
	require.NoError(t, err)
	assert.Equal(t, float32(0), out[0])
	assert.Equal(t, float32(102), out[62])
	assert.Equal(t, float32(255), out[71])
}

func TestLevelPoseSolvesBelowOperatingRange(t *testing.T) {
	t.Parallel()

	// the solver returns heights relative to the centroid, so a level pose gives three zeros
	e, cfg := newTestEngine(t, nil)

	_, err := e.Step(cfg, Inputs{Height: ptr.To(1.0)})
	assert.ErrorIs(t, err, ErrRangeViolation)

	cfg.Motion.MinHeight = -1
	out, err := e.Step(cfg, Inputs{Height: ptr.To(1.0)})
	require.NoError(t, err)
	assert.Equal(t, float32(51), out[0])
}

func TestStepRecoversFromPanics(t *testing.T) {
	t.Parallel()

	e, cfg := newTestEngine(t, func(float64, float64, float64, float64) [3]float64 {
		panic("solver exploded")
	})

	out, err := e.Step(cfg, Inputs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "solver exploded")
	assertDark(t, out)
	assert.Equal(t, int64(1), e.ExecuteCount())
}

func TestStepBlacksOutAfterGoodCycle(t *testing.T) {
	t.Parallel()

	e, cfg := newTestEngine(t, constantSolver(1, 1, 1))

	out, err := e.Step(cfg, Inputs{})
	require.NoError(t, err)
	require.Equal(t, float32(102), out[0])
	require.Equal(t, 102, e.fixture.GetMotor(2).GetChannel(1))

	cfg.Motion.MaxHeight = cfg.Motion.MinHeight
	out, err = e.Step(cfg, Inputs{})
	require.Error(t, err)
	assertDark(t, out)

	// the fixture itself is cleared, not just the returned output
	assert.Equal(t, make([]uint8, 80), e.fixture.Values())
}

func TestExecuteCountIncludesFailures(t *testing.T) {
	t.Parallel()

	e, cfg := newTestEngine(t, constantSolver(1, 1, 1))
	bad := cfg
	bad.Motion.MinHeight = 10

	_, _ = e.Step(cfg, Inputs{})
	_, _ = e.Step(bad, Inputs{})
	_, _ = e.Step(cfg, Inputs{})

	assert.Equal(t, int64(3), e.ExecuteCount())
	assert.Equal(t, int64(3), e.LastStatus().ExecuteCount)
	assert.NoError(t, e.LastStatus().Err)
}

func TestInfo(t *testing.T) {
	t.Parallel()

	e, cfg := newTestEngine(t, constantSolver(1, 1, 1))
	_, _ = e.Step(cfg, Inputs{})
	_, _ = e.Step(cfg, Inputs{})

	assert.Equal(t, [][2]string{{"executeCount", "2"}, {"offset", "0"}}, e.LastStatus().Table)
	assert.Equal(t, []InfoChannel{{"executeCount", 2}, {"offset", 0}}, e.LastStatus().Info)

	e.SetOffset(1.5)
	assert.Equal(t, "1.5", e.LastStatus().Table[1][1])

	e.Reset()
	assert.Equal(t, 0.0, e.LastStatus().Offset)
	assert.Equal(t, "0", e.LastStatus().Table[1][1])
	assert.Equal(t, int64(2), e.ExecuteCount())
}

func TestStatusCarriesDiagnostics(t *testing.T) {
	t.Parallel()

	e, cfg := newTestEngine(t, constantSolver(1, 1, 1))
	e.SetOffset(0.25)

	var got Status
	e.AddListener(func(s Status) { got = s })
	_, _ = e.Step(cfg, Inputs{})

	assert.Equal(t, []InfoChannel{{"executeCount", 1}, {"offset", 0.25}}, got.Info)
	assert.Equal(t, [][2]string{{"executeCount", "1"}, {"offset", "0.25"}}, got.Table)

	e.Reset()
	last := e.LastStatus()
	assert.Equal(t, [][2]string{{"executeCount", "1"}, {"offset", "0"}}, last.Table)
	assert.Equal(t, []InfoChannel{{"executeCount", 1}, {"offset", 0}}, last.Info)
}

func TestListeners(t *testing.T) {
	t.Parallel()

	e, cfg := newTestEngine(t, constantSolver(5, 5, 5))

	var got []Status
	e.AddListener(func(s Status) { got = append(got, s) })

	_, _ = e.Step(cfg, Inputs{})
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ExecuteCount)
	assert.ErrorIs(t, got[0].Err, ErrRangeViolation)
	assert.Len(t, got[0].Output, 80)
}

func TestChannelName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dmx1", ChannelName(0))
	assert.Equal(t, "dmx80", ChannelName(79))
}

func TestOutputBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte{0, 102, 255}, Output{0, 102, 255}.Bytes())
}
