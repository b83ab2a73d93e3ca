package firmware

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMotorPacket(t *testing.T) {
	Convey("packets carry cmd, both wheels and a checksum", t, func() {
		p := MotorPacket(0, 0)

		So(p, ShouldHaveLength, MotorPacketLen)
		So(p[0], ShouldEqual, CmdMotor)
		So(p[1], ShouldEqual, 127) // zero speed sits mid-scale
		So(p[2], ShouldEqual, 127)
		So(VerifyMotorPacket(p), ShouldBeTrue)
	})

	Convey("speed scaling saturates at the byte bounds", t, func() {
		p := MotorPacket(255, -255)
		So(p[1], ShouldEqual, 255)
		So(p[2], ShouldEqual, 0)

		p = MotorPacket(1000, -1000)
		So(p[1], ShouldEqual, 255)
		So(p[2], ShouldEqual, 0)
	})

	Convey("a corrupted packet fails verification", t, func() {
		p := MotorPacket(100, 100)
		p[2]++

		So(VerifyMotorPacket(p), ShouldBeFalse)
		So(VerifyMotorPacket(p[:2]), ShouldBeFalse)
		So(VerifyMotorPacket(HeartbeatPacket()), ShouldBeFalse)
	})

	Convey("stop packet is a motor packet at rest", t, func() {
		So(StopPacket(), ShouldResemble, MotorPacket(0, 0))
	})
}
