package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-9

func requireHeights(t *testing.T, expected, actual [3]float64) {
	t.Helper()
	for i := range expected {
		require.InDelta(t, expected[i], actual[i], delta, "motor %d", i+1)
	}
}

func TestFlatPlatform(t *testing.T) {
	t.Parallel()

	for _, base := range []float64{0, 0.1, 1, 2, 5, 100} {
		requireHeights(t, [3]float64{0, 0, 0}, MotorHeights(base, 0, 0, 0))
	}
}

func TestYawAloneLeavesHeightsFlat(t *testing.T) {
	t.Parallel()

	for _, yaw := range []float64{-90, -45, 30, 90, 180} {
		requireHeights(t, [3]float64{0, 0, 0}, MotorHeights(1, 0, 0, yaw))
	}
}

func TestRoll(t *testing.T) {
	t.Parallel()

	// centroid relative points for base 2: (-1, -√3/3), (1, -√3/3), (0, 2√3/3)
	// rolling about X lifts each point by sin(roll) * y
	s3 := math.Sqrt(3)
	requireHeights(t, [3]float64{-s3 / 6, -s3 / 6, s3 / 3}, MotorHeights(2, 30, 0, 0))
}

func TestPitch(t *testing.T) {
	t.Parallel()

	// pitching about Y lowers each point by sin(pitch) * x
	requireHeights(t, [3]float64{0.5, -0.5, 0}, MotorHeights(2, 0, 30, 0))
}

func TestRotationOrder(t *testing.T) {
	t.Parallel()

	// yaw 90 swings motor 1 to y=-1 and motor 2 to y=+1 before the roll is applied
	heights := MotorHeights(2, 30, 0, 90)
	requireHeights(t, [3]float64{-0.5, 0.5, 0}, heights)

	// applying roll before yaw would have left motors 1 and 2 level with each other
	rollOnly := MotorHeights(2, 30, 0, 0)
	assert.NotEqual(t, math.Round(heights[0]*1e6), math.Round(rollOnly[0]*1e6))
}

func TestCombinedRotation(t *testing.T) {
	t.Parallel()

	base, roll, pitch, yaw := 1.5, 12.0, -20.0, 35.0
	heights := MotorHeights(base, roll, pitch, yaw)

	r := roll * math.Pi / 180
	p := pitch * math.Pi / 180
	y := yaw * math.Pi / 180

	cx, cy := base/2, base*math.Sqrt(3)/6
	points := [][2]float64{{0, 0}, {base, 0}, {base / 2, base * math.Sqrt(3) / 2}}
	for i, pt := range points {
		x, yy := pt[0]-cx, pt[1]-cy

		// yaw, then pitch, then roll on a point with z = 0
		xYaw := math.Cos(y)*x - math.Sin(y)*yy
		yYaw := math.Sin(y)*x + math.Cos(y)*yy
		zPitch := -math.Sin(p) * xYaw
		zRoll := math.Sin(r)*yYaw + math.Cos(r)*zPitch

		require.InDelta(t, zRoll, heights[i], delta, "motor %d", i+1)
	}
}

func TestHeightsSumToZero(t *testing.T) {
	t.Parallel()

	for _, angles := range [][3]float64{{10, 20, 30}, {-45, 45, 0}, {89, -89, 180}} {
		h := MotorHeights(3, angles[0], angles[1], angles[2])
		require.InDelta(t, 0, h[0]+h[1]+h[2], delta)
	}
}

func TestClampAngles(t *testing.T) {
	t.Parallel()

	p := Pose{Height: 2, Roll: 60, Pitch: -70, Yaw: 10}.ClampAngles(-45, 45, -45, 45, -45, 45)
	assert.Equal(t, Pose{Height: 2, Roll: 45, Pitch: -45, Yaw: 10}, p)
}
