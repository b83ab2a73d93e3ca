// Package telemetry mirrors robot state into redis for off-board consumers.
// Fields live in hashes under the "robot" prefix; a pub/sub notification is
// published on every change.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/Eshwarpawanpeddi/Jetbot-os/battery"
	"github.com/Eshwarpawanpeddi/Jetbot-os/drive"
)

const (
	motorKey     = "robot:motor"
	batteryKey   = "robot:battery"
	motorChannel = "robot motor"
	battChannel  = "robot battery"
)

// Publisher pushes state changes to a redis server.
type Publisher struct {
	mu    sync.Mutex
	redis *redis.Client
	ctx   context.Context
}

// NewPublisher connects to the redis server at addr ("host:port").
func NewPublisher(addr string) *Publisher {
	return &Publisher{
		redis: redis.NewClient(&redis.Options{Addr: addr}),
		ctx:   context.Background(),
	}
}

// PublishMotor mirrors the motor state hash and notifies subscribers.
func (p *Publisher) PublishMotor(state drive.MotorState) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pipe := p.redis.Pipeline()

	pipe.HSet(p.ctx, motorKey, motorFields(state))
	pipe.Publish(p.ctx, motorChannel, nil)

	if _, err := pipe.Exec(p.ctx); err != nil {
		return fmt.Errorf("failed to publish motor state: %v", err)
	}

	return nil
}

// PublishBattery mirrors the battery hash and notifies subscribers.
func (p *Publisher) PublishBattery(r battery.Reading) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pipe := p.redis.Pipeline()

	pipe.HSet(p.ctx, batteryKey, batteryFields(r))
	pipe.Publish(p.ctx, battChannel, nil)

	if _, err := pipe.Exec(p.ctx); err != nil {
		return fmt.Errorf("failed to publish battery state: %v", err)
	}

	return nil
}

func motorFields(state drive.MotorState) map[string]interface{} {
	return map[string]interface{}{
		"direction": state.Direction.String(),
		"left":      int(state.Left),
		"right":     int(state.Right),
		"running":   map[bool]string{true: "on", false: "off"}[state.Running],
	}
}

func batteryFields(r battery.Reading) map[string]interface{} {
	yesNo := map[bool]string{true: "yes", false: "no"}
	return map[string]interface{}{
		"level":     r.Level,
		"low":       yesNo[r.Low],
		"critical":  yesNo[r.Critical],
		"simulated": yesNo[r.Simulated],
	}
}

// Close releases the redis connection.
func (p *Publisher) Close() error {
	return p.redis.Close()
}
