// Package kinematics converts a platform orientation into the displacement of each of the three
// motors that carry it.
package kinematics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/robmorgan/kinetic/utils"
)

// Pose is the desired state of the platform for one control cycle. Angles are in degrees.
type Pose struct {
	Height float64
	Roll   float64
	Pitch  float64
	Yaw    float64
}

// SolveFunc computes the vertical displacement of each motor for a base triangle and orientation.
type SolveFunc func(baseSize, roll, pitch, yaw float64) [3]float64

// MountPoints returns the motor mount points of an equilateral triangle with the given side length.
// Motor 1 sits at the origin, motor 2 along the X axis and motor 3 at the apex.
func MountPoints(baseSize float64) [3]mgl64.Vec3 {
	return [3]mgl64.Vec3{
		{0, 0, 0},
		{baseSize, 0, 0},
		{baseSize / 2, baseSize * math.Sqrt(3) / 2, 0},
	}
}

// MotorHeights returns the height of each motor relative to the centre of the triangle after
// rotating the platform by yaw, then pitch, then roll. The order matters: rotations do not commute.
func MotorHeights(baseSize, roll, pitch, yaw float64) [3]float64 {
	points := MountPoints(baseSize)
	center := points[0].Add(points[1]).Add(points[2]).Mul(1.0 / 3)

	rotation := mgl64.Rotate3DX(mgl64.DegToRad(roll)).
		Mul3(mgl64.Rotate3DY(mgl64.DegToRad(pitch))).
		Mul3(mgl64.Rotate3DZ(mgl64.DegToRad(yaw)))

	var heights [3]float64
	for i, p := range points {
		rotated := rotation.Mul3x1(p.Sub(center))
		heights[i] = rotated.Z() + center.Z()
	}
	return heights
}

// ClampAngles limits roll, pitch and yaw to the given bounds.
func (p Pose) ClampAngles(minRoll, maxRoll, minPitch, maxPitch, minYaw, maxYaw float64) Pose {
	p.Roll = utils.Clamp(p.Roll, minRoll, maxRoll)
	p.Pitch = utils.Clamp(p.Pitch, minPitch, maxPitch)
	p.Yaw = utils.Clamp(p.Yaw, minYaw, maxYaw)
	return p
}
