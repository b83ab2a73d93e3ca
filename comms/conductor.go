// Package comms dispatches the websocket command envelope onto the device
// and streams state snapshots back to connected clients.
package comms

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"

	"github.com/Eshwarpawanpeddi/Jetbot-os/drive"
	"github.com/Eshwarpawanpeddi/Jetbot-os/onboard"
)

// UpdateInterval is how often state snapshots go out to telemetry clients.
const UpdateInterval = 100 * time.Millisecond

// Cmd is the JSON command envelope received over the control channel.
type Cmd struct {
	Cmd       string  `json:"cmd"`
	Direction string  `json:"direction,omitempty"`
	Speed     *int    `json:"speed,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Mode      string  `json:"mode,omitempty"`
}

// Reply is sent back for every processed command.
type Reply struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	State *onboard.Status `json:"state,omitempty"`
}

// Conductor owns the device handle and the set of telemetry clients.
type Conductor struct {
	Device onboard.Robot
	Mixer  drive.Mixer

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewConductor(device onboard.Robot) *Conductor {
	return &Conductor{
		Device:  device,
		clients: make(map[*websocket.Conn]bool),
	}
}

// ProcessCommand runs one envelope against the device.
func (c *Conductor) ProcessCommand(cmd Cmd) Reply {
	switch cmd.Cmd {
	case "drive":
		state, err := c.Device.Drive(cmd.Direction, cmd.Speed)
		return c.reply(state, err)

	case "drive_vector":
		mc := c.Mixer.FromVector(mgl64.Vec2{cmd.X, cmd.Y})
		state, err := c.Device.Apply(mc)
		return c.reply(state, err)

	case "stop":
		state := c.Device.Stop()
		return c.reply(state, nil)

	case "set_mode":
		if err := c.Device.SetMode(cmd.Mode); err != nil {
			return Reply{Error: err.Error()}
		}
		return c.statusReply()

	case "status":
		return c.statusReply()

	default:
		return Reply{Error: fmt.Sprintf("unable to process command %q", cmd.Cmd)}
	}
}

func (c *Conductor) reply(state drive.MotorState, err error) Reply {
	if err != nil {
		return Reply{Error: err.Error()}
	}
	status := c.Device.Status()
	status.Motor = state
	return Reply{OK: true, State: &status}
}

func (c *Conductor) statusReply() Reply {
	status := c.Device.Status()
	return Reply{OK: true, State: &status}
}

// AddClient registers a telemetry connection for periodic updates.
func (c *Conductor) AddClient(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients[conn] = true
}

// RemoveClient drops a connection from the update set.
func (c *Conductor) RemoveClient(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.clients, conn)
}

// ClientCount reports the number of live telemetry clients.
func (c *Conductor) ClientCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

// UpdateClients pushes the device snapshot to every telemetry client on a
// fixed interval until the context is cancelled. Dead connections are pruned.
func (c *Conductor) UpdateClients(ctx context.Context) {
	ticker := time.NewTicker(UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.broadcast()
		}
	}
}

func (c *Conductor) broadcast() {
	status := c.Device.Status()

	c.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(c.clients))
	for conn := range c.clients {
		conns = append(conns, conn)
	}
	c.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(status); err != nil {
			log.Printf("telemetry client write failed, dropping: %v", err)
			conn.Close()
			c.RemoveClient(conn)
		}
	}
}
