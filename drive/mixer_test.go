package drive

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMixerWheels(t *testing.T) {
	m := Mixer{}

	Convey("straight drives use the full speed on both wheels", t, func() {
		l, r := m.Wheels(MotorCommand{Direction: Forward, Speed: 255})
		So(l, ShouldEqual, 255)
		So(r, ShouldEqual, 255)

		l, r = m.Wheels(MotorCommand{Direction: Backward, Speed: 80})
		So(l, ShouldEqual, 80)
		So(r, ShouldEqual, 80)
	})

	Convey("turns reduce the inner wheel to the ratio", t, func() {
		l, r := m.Wheels(MotorCommand{Direction: Left, Speed: 200})
		So(l, ShouldEqual, 200)
		So(r, ShouldEqual, 120)

		l, r = m.Wheels(MotorCommand{Direction: Right, Speed: 200})
		So(l, ShouldEqual, 120)
		So(r, ShouldEqual, 200)
	})

	Convey("a custom ratio is honored", t, func() {
		custom := Mixer{TurnRatio: 0.5}
		l, r := custom.Wheels(MotorCommand{Direction: Right, Speed: 100})
		So(l, ShouldEqual, 50)
		So(r, ShouldEqual, 100)
	})

	Convey("nonsense ratios fall back to the default", t, func() {
		broken := Mixer{TurnRatio: 4.2}
		l, _ := broken.Wheels(MotorCommand{Direction: Right, Speed: 100})
		So(l, ShouldEqual, 60)
	})

	Convey("stop is always zero", t, func() {
		l, r := m.Wheels(MotorCommand{Direction: Stop})
		So(l, ShouldEqual, 0)
		So(r, ShouldEqual, 0)
	})
}

func TestMixerVectors(t *testing.T) {
	m := Mixer{}

	Convey("Mix performs an arcade mix with clamping", t, func() {
		l, r := m.Mix(mgl64.Vec2{0, 1})
		So(l, ShouldEqual, 1)
		So(r, ShouldEqual, 1)

		l, r = m.Mix(mgl64.Vec2{1, 1})
		So(l, ShouldEqual, 1)
		So(r, ShouldEqual, 0)

		l, r = m.Mix(mgl64.Vec2{-2, -2})
		So(l, ShouldEqual, -1)
		So(r, ShouldEqual, -1)
	})

	Convey("FromVector picks the dominant axis", t, func() {
		cmd := m.FromVector(mgl64.Vec2{0, 1})
		So(cmd.Direction, ShouldEqual, Forward)
		So(cmd.Speed, ShouldEqual, 255)

		cmd = m.FromVector(mgl64.Vec2{0, -0.5})
		So(cmd.Direction, ShouldEqual, Backward)
		So(cmd.Speed, ShouldEqual, 128)

		cmd = m.FromVector(mgl64.Vec2{-1, 0.2})
		So(cmd.Direction, ShouldEqual, Left)

		cmd = m.FromVector(mgl64.Vec2{0.9, 0.1})
		So(cmd.Direction, ShouldEqual, Right)
	})

	Convey("FromVector treats the deadzone as a stop", t, func() {
		cmd := m.FromVector(mgl64.Vec2{0.05, 0.05})
		So(cmd.Direction, ShouldEqual, Stop)
		So(cmd.Speed, ShouldEqual, 0)
	})
}
