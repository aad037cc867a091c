// Package effect generates demo poses for the kinetic light when no live input is connected.
package effect

import (
	"math"
	"sync"
	"time"

	"github.com/fogleman/ease"
	"github.com/robmorgan/kinetic/engine"
	"k8s.io/utils/clock"
	"k8s.io/utils/ptr"
)

const twoPi = 2 * math.Pi

// FPS returns the time delta between frames at n frames per second.
func FPS(n int) float64 {
	return (time.Second / time.Duration(n)).Seconds()
}

// Sweep tilts the platform around in a circle while the height rises and falls between
// MinHeight and MaxHeight. One full cycle takes Period.
type Sweep struct {
	// The easing function applied to the height
	EasingFunc ease.Function

	Period time.Duration

	// Tilt in degrees at the edge of the circle
	Amplitude float64

	MinHeight float64
	MaxHeight float64

	// Motor speed reported with every sample
	Speed float64

	clk clock.PassiveClock

	mu    sync.Mutex
	start time.Time
}

// NewSweep creates a sweep that starts now.
func NewSweep(clk clock.PassiveClock, period time.Duration, amplitude, minHeight, maxHeight float64) *Sweep {
	return &Sweep{
		EasingFunc: ease.InOutQuad,
		Period:     period,
		Amplitude:  amplitude,
		MinHeight:  minHeight,
		MaxHeight:  maxHeight,
		Speed:      engine.DefaultSpeed,
		clk:        clk,
		start:      clk.Now(),
	}
}

// Restart moves the start of the sweep to now.
func (s *Sweep) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start = s.clk.Now()
}

// phase returns how far through the current cycle the sweep is, between 0 and 1.
func (s *Sweep) phase() float64 {
	if s.Period <= 0 {
		return 0
	}
	s.mu.Lock()
	elapsed := s.clk.Since(s.start)
	s.mu.Unlock()
	return float64(elapsed%s.Period) / float64(s.Period)
}

// Sample returns the pose for the current time.
func (s *Sweep) Sample() engine.Inputs {
	p := s.phase()

	// up for the first half of the cycle, back down for the second
	rise := 1 - math.Abs(2*p-1)
	height := s.MinHeight + s.EasingFunc(rise)*(s.MaxHeight-s.MinHeight)

	return engine.Inputs{
		Height: ptr.To(height),
		Roll:   ptr.To(s.Amplitude * math.Sin(twoPi*p)),
		Pitch:  ptr.To(s.Amplitude * math.Cos(twoPi*p)),
		Yaw:    ptr.To(0.0),
		Speed:  ptr.To(s.Speed),
	}
}
