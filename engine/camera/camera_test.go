package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestDefaultCameraBasis(t *testing.T) {
	s := NewCamera().Snapshot()

	assert.Equal(t, common.Vec3{0, 0, 5}, s.Position)
	assert.True(t, s.Forward.ApproxEqual(common.Vec3{0, 0, -1}, 1e-6))
	assert.True(t, s.Right.ApproxEqual(common.Vec3{1, 0, 0}, 1e-6), "right = %v", s.Right)
	assert.True(t, s.Up.ApproxEqual(common.Vec3{0, 1, 0}, 1e-6), "up = %v", s.Up)
	assert.InDelta(t, math32.Pi/2, s.Fov, 1e-6)
	assert.Equal(t, float32(0.1), s.Near)
	assert.Equal(t, float32(1000), s.Far)
}

func TestBasisIsOrthonormal(t *testing.T) {
	cam := NewCamera(WithForward(common.Vec3{1, -0.5, -2}), WithUp(common.Vec3{0, 1, 0.2}))
	s := cam.Snapshot()

	assert.InDelta(t, 1, s.Forward.Length(), 1e-5)
	assert.InDelta(t, 1, s.Right.Length(), 1e-5)
	assert.InDelta(t, 1, s.Up.Length(), 1e-5)
	assert.InDelta(t, 0, s.Forward.Dot(s.Right), 1e-5)
	assert.InDelta(t, 0, s.Forward.Dot(s.Up), 1e-5)
	assert.InDelta(t, 0, s.Right.Dot(s.Up), 1e-5)
}

func TestBasisForwardParallelToUp(t *testing.T) {
	s := NewCamera(WithForward(common.Vec3{0, 1, 0})).Snapshot()
	assert.InDelta(t, 1, s.Right.Length(), 1e-5)
	assert.InDelta(t, 0, s.Forward.Dot(s.Up), 1e-5)
}

func TestSettersRejectInvalidValues(t *testing.T) {
	cam := NewCamera()
	cam.SetForward(common.Vec3{})
	cam.SetAspect(0)
	cam.SetClip(10, 1)
	cam.LookAt(cam.Position())

	s := cam.Snapshot()
	assert.True(t, s.Forward.ApproxEqual(common.Vec3{0, 0, -1}, 1e-6))
	assert.Equal(t, float32(1), s.Aspect)
	assert.Equal(t, float32(0.1), s.Near)
}

func TestSnapshotIsDetached(t *testing.T) {
	cam := NewCamera()
	s := cam.Snapshot()
	cam.SetPosition(common.Vec3{9, 9, 9})
	assert.Equal(t, common.Vec3{0, 0, 5}, s.Position)
}

func TestGPUCameraUniformLayout(t *testing.T) {
	u := NewCamera(WithAspect(800.0 / 600.0)).Snapshot().GPUUniform(2.5)
	assert.Equal(t, 208, u.Size())

	buf := u.Marshal()
	assert.Len(t, buf, 208)
	assert.Equal(t, []byte{0, 0, 0x20, 0x40}, buf[204:208])
}

func TestOrbitControllerDrivesCamera(t *testing.T) {
	cc := NewOrbitController()
	cam := NewCamera()

	cc.Apply(cam)
	assert.True(t, cam.Position().ApproxEqual(common.Vec3{0, 0, 5}, 1e-5))
	assert.True(t, cam.Forward().ApproxEqual(common.Vec3{0, 0, -1}, 1e-5))

	cc.Orbit(math32.Pi/2, 0)
	cc.Apply(cam)
	assert.True(t, cam.Position().ApproxEqual(common.Vec3{5, 0, 0}, 1e-4), "position = %v", cam.Position())
	assert.True(t, cam.Forward().ApproxEqual(common.Vec3{-1, 0, 0}, 1e-4))
}

func TestOrbitControllerClamps(t *testing.T) {
	cc := NewOrbitController(WithRadiusBounds(1, 10), WithElevationBounds(-0.5, 0.5))

	cc.Zoom(1000)
	assert.Equal(t, float32(1), cc.Radius())
	cc.Zoom(-1000)
	assert.Equal(t, float32(10), cc.Radius())

	cc.Orbit(0, 3)
	p := cc.Position()
	assert.InDelta(t, 10*math32.Sin(0.5), p[1], 1e-4)
}
