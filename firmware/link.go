package firmware

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver"
	"go.bug.st/serial"
)

const (
	// FIRMWARE_VERSION is the constraint the controller must satisfy.
	FIRMWARE_VERSION = "~0.1.0"

	HeartbeatInterval = time.Second

	versionReadTimeout = 2 * time.Second
)

var (
	ErrLinkClosed = errors.New("firmware link is closed")
)

// Conn is the write side of the motor link. The arbiter's change callback is
// the only producer.
type Conn interface {
	SendMotor(left, right int16) error
	Close() error
}

// SerialLink drives the controller over a serial port, feeding its watchdog
// with periodic heartbeats.
type SerialLink struct {
	mu     sync.Mutex
	port   io.ReadWriteCloser
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
}

// Open connects to the controller, performs the version handshake and starts
// the heartbeat loop.
func Open(portName string, baud int) (*SerialLink, error) {
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("unable to open serial port %s: %v", portName, err)
	}

	return newLink(port)
}

func newLink(port io.ReadWriteCloser) (*SerialLink, error) {
	ctx, cancel := context.WithCancel(context.Background())
	l := &SerialLink{
		port:   port,
		ctx:    ctx,
		cancel: cancel,
	}

	if err := l.checkVersion(); err != nil {
		cancel()
		port.Close()
		return nil, err
	}

	go l.heartbeatLoop()

	return l, nil
}

// checkVersion requests the firmware version string and validates it against
// FIRMWARE_VERSION. A bare "DEV" build is accepted.
func (l *SerialLink) checkVersion() error {
	l.mu.Lock()
	_, err := l.port.Write(VersionPacket())
	l.mu.Unlock()
	if err != nil {
		return fmt.Errorf("version request failed: %v", err)
	}

	line := make(chan string, 1)
	readErr := make(chan error, 1)
	go func() {
		s, err := bufio.NewReader(l.port).ReadString('\n')
		if err != nil {
			readErr <- err
			return
		}
		line <- s
	}()

	var versionString string
	select {
	case versionString = <-line:
	case err := <-readErr:
		return fmt.Errorf("version read failed: %v", err)
	case <-time.After(versionReadTimeout):
		return errors.New("timed out waiting for firmware version")
	}

	versionString = strings.TrimSpace(versionString)
	if versionString == "DEV" {
		// direct dev build, consider it safe for now
		return nil
	}

	semVer, err := semver.NewVersion(versionString)
	if err != nil {
		return fmt.Errorf("unable to parse firmware version %q: %v", versionString, err)
	}

	constraint, err := semver.NewConstraint(FIRMWARE_VERSION)
	if err != nil {
		return err
	}

	if !constraint.Check(semVer) {
		return fmt.Errorf("unable to use controller: recieved version %s - require %s",
			versionString, FIRMWARE_VERSION)
	}

	return nil
}

func (l *SerialLink) heartbeatLoop() {
	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			l.mu.Lock()
			if !l.closed {
				if _, err := l.port.Write(HeartbeatPacket()); err != nil {
					log.Printf("heartbeat write failed: %v", err)
				}
			}
			l.mu.Unlock()
		}
	}
}

// SendMotor writes a motor packet for the given signed wheel speeds.
func (l *SerialLink) SendMotor(left, right int16) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLinkClosed
	}

	_, err := l.port.Write(MotorPacket(left, right))
	return err
}

// Close stops the heartbeat, issues a final stop and releases the port.
func (l *SerialLink) Close() error {
	l.cancel()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	l.port.Write(StopPacket())
	return l.port.Close()
}
