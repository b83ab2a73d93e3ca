// Package firmware speaks the microcontroller wire protocol: fixed-size
// command packets with an additive checksum over a serial link.
package firmware

const (
	CmdMotor     = 0x01
	CmdVersion   = 0xFE
	CmdHeartbeat = 0xFF

	// MotorPacketLen is cmd + left + right + checksum.
	MotorPacketLen = 4
)

// speedByte maps a signed wheel speed in [-255, 255] onto a single byte.
// Zero lands on 127 which the firmware treats as stopped.
func speedByte(v int16) byte {
	if v < -255 {
		v = -255
	}
	if v > 255 {
		v = 255
	}
	return byte((int(v) + 255) / 2)
}

// Checksum is the truncated byte sum the controller verifies on receipt.
func Checksum(p []byte) byte {
	var sum int
	for _, b := range p {
		sum += int(b)
	}
	return byte(sum & 0xFF)
}

// MotorPacket encodes a per-wheel drive command.
func MotorPacket(left, right int16) []byte {
	lb, rb := speedByte(left), speedByte(right)
	return []byte{CmdMotor, lb, rb, Checksum([]byte{CmdMotor, lb, rb})}
}

// StopPacket is a motor packet with both wheels at rest.
func StopPacket() []byte {
	return MotorPacket(0, 0)
}

// HeartbeatPacket keeps the controller's link watchdog fed.
func HeartbeatPacket() []byte {
	return []byte{CmdHeartbeat, 0x00}
}

// VersionPacket asks the controller for its firmware version string.
func VersionPacket() []byte {
	return []byte{CmdVersion, 0x00}
}

// VerifyMotorPacket reports whether a received motor packet is intact.
func VerifyMotorPacket(p []byte) bool {
	if len(p) != MotorPacketLen || p[0] != CmdMotor {
		return false
	}
	return Checksum(p[:MotorPacketLen-1]) == p[MotorPacketLen-1]
}
