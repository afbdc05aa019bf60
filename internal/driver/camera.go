package driver

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"cpu-rasterizer/internal/mathutil"
)

// OrbitCamera circles a target point. Yaw advances linearly through a full
// turn every Period seconds; height bobs between Low and High with a sine
// ease, reversing at each end.
type OrbitCamera struct {
	Target mathutil.Vec3
	Radius float32
	Low    float32
	High   float32

	yaw    float32
	height float32
	rising bool

	yawTween    *gween.Tween
	heightTween *gween.Tween
	period      float32
	bob         float32
}

// NewOrbitCamera returns a camera orbiting target at radius. period is the
// seconds per revolution; bob the seconds per half height cycle. A
// non-positive period keeps the camera still.
func NewOrbitCamera(target mathutil.Vec3, radius, low, high, period, bob float32) *OrbitCamera {
	c := &OrbitCamera{
		Target: target,
		Radius: radius,
		Low:    low,
		High:   high,
		height: low,
		rising: true,
		period: period,
		bob:    bob,
	}
	if period > 0 {
		c.yawTween = gween.New(0, 2*math.Pi, period, ease.Linear)
	}
	if bob > 0 && high != low {
		c.heightTween = gween.New(low, high, bob, ease.InOutSine)
	}
	return c
}

// Update advances the animation by dt seconds.
func (c *OrbitCamera) Update(dt float32) {
	if c.yawTween != nil {
		val, done := c.yawTween.Update(dt)
		c.yaw = val
		if done {
			c.yaw = 0
			c.yawTween.Reset()
		}
	}
	if c.heightTween != nil {
		val, done := c.heightTween.Update(dt)
		c.height = val
		if done {
			c.rising = !c.rising
			if c.rising {
				c.heightTween = gween.New(c.Low, c.High, c.bob, ease.InOutSine)
			} else {
				c.heightTween = gween.New(c.High, c.Low, c.bob, ease.InOutSine)
			}
		}
	}
}

// Yaw returns the current orbit angle in radians.
func (c *OrbitCamera) Yaw() float32 { return c.yaw }

// Eye returns the camera position.
func (c *OrbitCamera) Eye() mathutil.Vec3 {
	s, co := math.Sincos(float64(c.yaw))
	return mathutil.Vec3{
		c.Target[0] + c.Radius*float32(s),
		c.Target[1] + c.height,
		c.Target[2] + c.Radius*float32(co),
	}
}

// View returns the look-at matrix toward Target.
func (c *OrbitCamera) View() mathutil.Mat4 {
	return mathutil.LookAt(c.Eye(), c.Target, mathutil.Vec3{0, 1, 0})
}
