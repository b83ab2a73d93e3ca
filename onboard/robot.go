package onboard

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Eshwarpawanpeddi/Jetbot-os/battery"
	"github.com/Eshwarpawanpeddi/Jetbot-os/drive"
	"github.com/Eshwarpawanpeddi/Jetbot-os/firmware"
	"github.com/Eshwarpawanpeddi/Jetbot-os/telemetry"
)

// Mode gates who is allowed to drive: a human operator (manual) or the
// autonomy stack (automatic).
type Mode string

const (
	ModeManual    Mode = "manual"
	ModeAutomatic Mode = "automatic"
)

var (
	ErrWrongMode = errors.New("movement control only available in manual mode")
	ErrBadMode   = errors.New(`mode must be "manual" or "automatic"`)
)

// Robot is what the transports (HTTP, websocket, shell) see of the device.
type Robot interface {
	Drive(direction string, speed *int) (drive.MotorState, error)
	Apply(cmd drive.MotorCommand) (drive.MotorState, error)
	Stop() drive.MotorState
	SetMode(raw string) error
	Mode() Mode
	Status() Status
}

// Status is the queryable device snapshot.
type Status struct {
	Mode      Mode             `json:"mode"`
	Motor     drive.MotorState `json:"motor"`
	Battery   battery.Reading  `json:"battery"`
	Simulated bool             `json:"simulated"`
	Timestamp time.Time        `json:"timestamp"`
}

// MotorRobot wires the arbiter to the firmware link, battery monitor and the
// optional telemetry mirror.
type MotorRobot struct {
	mu           sync.Mutex
	mode         Mode
	defaultSpeed uint8
	simulated    bool

	arbiter *drive.Arbiter
	link    firmware.Conn
	battery *battery.Monitor
	mirror  *telemetry.Publisher
}

// NewMotorRobot builds the device from its config. mirror may be nil when no
// redis server is configured.
func NewMotorRobot(config *RobotConfig, link firmware.Conn, mirror *telemetry.Publisher) *MotorRobot {
	r := &MotorRobot{
		mode:         ModeAutomatic,
		defaultSpeed: config.Drive.DefaultSpeed,
		link:         link,
		mirror:       mirror,
	}
	if r.defaultSpeed == 0 {
		r.defaultSpeed = drive.DefaultSpeed
	}
	if _, ok := link.(*firmware.SimLink); ok {
		r.simulated = true
	}

	r.arbiter = drive.NewArbiter(drive.Config{
		TurnRatio:     config.Drive.TurnRatio,
		SafetyTimeout: time.Duration(config.Drive.SafetyTimeout),
		PollInterval:  time.Duration(config.Drive.PollInterval),
	}, r.motorChanged)

	r.battery = battery.NewMonitor(battery.Config{
		Path:              config.Battery.Path,
		PollInterval:      time.Duration(config.Battery.PollInterval),
		LowThreshold:      config.Battery.LowThreshold,
		CriticalThreshold: config.Battery.CriticalThreshold,
	}, r.batteryChanged)

	return r
}

// Destroy stops the watchdog and battery loops, halts the motors and closes
// the link.
func (r *MotorRobot) Destroy() {
	r.arbiter.Stop()
	r.arbiter.Destroy()
	r.battery.Destroy()
	if err := r.link.Close(); err != nil {
		log.Printf("link close failed: %v", err)
	}
}

// Drive validates a raw command and applies it. A nil speed uses the
// configured default.
func (r *MotorRobot) Drive(direction string, speed *int) (drive.MotorState, error) {
	cmd, err := drive.Validate(direction, speed, r.defaultSpeed)
	if err != nil {
		return r.arbiter.State(), err
	}
	return r.Apply(cmd)
}

// Apply runs a validated command through the mode gate and the arbiter.
// Stops are always allowed.
func (r *MotorRobot) Apply(cmd drive.MotorCommand) (drive.MotorState, error) {
	if cmd.Direction != drive.Stop && r.Mode() != ModeManual {
		return r.arbiter.State(), ErrWrongMode
	}
	return r.arbiter.Apply(cmd), nil
}

// Stop halts the motors regardless of mode.
func (r *MotorRobot) Stop() drive.MotorState {
	return r.arbiter.Stop()
}

// SetMode switches between manual and automatic; leaving manual stops the
// motors so an operator cannot hand a moving robot to the autonomy stack.
func (r *MotorRobot) SetMode(raw string) error {
	var mode Mode
	switch Mode(raw) {
	case ModeManual:
		mode = ModeManual
	case ModeAutomatic:
		mode = ModeAutomatic
	default:
		return ErrBadMode
	}

	r.mu.Lock()
	prev := r.mode
	r.mode = mode
	r.mu.Unlock()

	if prev == ModeManual && mode != ModeManual {
		r.arbiter.Stop()
	}
	return nil
}

func (r *MotorRobot) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

func (r *MotorRobot) Status() Status {
	return Status{
		Mode:      r.Mode(),
		Motor:     r.arbiter.State(),
		Battery:   r.battery.Last(),
		Simulated: r.simulated,
		Timestamp: time.Now().UTC(),
	}
}

// motorChanged pushes every accepted state, watchdog stops included, to the
// controller and the telemetry mirror.
func (r *MotorRobot) motorChanged(state drive.MotorState) {
	left, right := signedWheels(state)
	if err := r.link.SendMotor(left, right); err != nil {
		log.Printf("unable to send motor command: %v", err)
	}

	if r.mirror != nil {
		if err := r.mirror.PublishMotor(state); err != nil {
			log.Printf("telemetry motor publish failed: %v", err)
		}
	}
}

func (r *MotorRobot) batteryChanged(reading battery.Reading) {
	if r.mirror == nil {
		return
	}
	if err := r.mirror.PublishBattery(reading); err != nil {
		log.Printf("telemetry battery publish failed: %v", err)
	}
}

// signedWheels maps the arbiter state onto the controller's signed wheel
// speeds. Backward drives both wheels negative; turns keep both wheels
// forward with the inner one already reduced by the mixer.
func signedWheels(state drive.MotorState) (left, right int16) {
	left, right = int16(state.Left), int16(state.Right)
	if state.Direction == drive.Backward {
		left, right = -left, -right
	}
	return
}
