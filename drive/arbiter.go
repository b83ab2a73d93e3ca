package drive

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultSafetyTimeout is how long the motors may run without a fresh
	// command before the watchdog forces a stop.
	DefaultSafetyTimeout = 5 * time.Second

	// DefaultPollInterval is the watchdog tick.
	DefaultPollInterval = 10 * time.Millisecond
)

// MotorState is the authoritative motor state owned by the Arbiter.
type MotorState struct {
	Direction   Direction `json:"direction"`
	Left        uint8     `json:"left"`
	Right       uint8     `json:"right"`
	Running     bool      `json:"running"`
	LastCommand time.Time `json:"last_command"`
}

// Config carries the drive timing and mixing parameters.
type Config struct {
	TurnRatio     float64
	SafetyTimeout time.Duration
	PollInterval  time.Duration
}

func (c *Config) withDefaults() {
	if c.SafetyTimeout <= 0 {
		c.SafetyTimeout = DefaultSafetyTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
}

// Arbiter owns the single MotorState. Commands from any transport and the
// watchdog tick both funnel through its mutex; every accepted command
// overwrites the previous state unconditionally.
type Arbiter struct {
	mu      sync.Mutex
	state   MotorState
	seq     uint64
	mixer   Mixer
	timeout time.Duration
	poll    time.Duration
	ctx     context.Context
	cancel  context.CancelFunc

	sinkMu   sync.Mutex
	sinkSeq  uint64
	onChange func(MotorState)
}

// NewArbiter creates the arbiter in the stopped state and starts its
// watchdog loop. onChange fires after every state change, watchdog stops
// included, and may be nil.
func NewArbiter(cfg Config, onChange func(MotorState)) *Arbiter {
	cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	a := &Arbiter{
		state:    MotorState{Direction: Stop},
		mixer:    Mixer{TurnRatio: cfg.TurnRatio},
		timeout:  cfg.SafetyTimeout,
		poll:     cfg.PollInterval,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
	}

	go a.watchdog()

	return a
}

// Destroy tears down the watchdog loop.
func (a *Arbiter) Destroy() {
	a.cancel()
}

// Apply records a validated command as the new motor state. It never rejects
// input; validation happens at the boundary.
func (a *Arbiter) Apply(cmd MotorCommand) MotorState {
	left, right := a.mixer.Wheels(cmd)

	a.mu.Lock()
	a.state = MotorState{
		Direction:   cmd.Direction,
		Left:        left,
		Right:       right,
		Running:     cmd.Direction != Stop,
		LastCommand: time.Now(),
	}
	a.seq++
	seq, state := a.seq, a.state
	a.mu.Unlock()

	a.notify(seq, state)
	return state
}

// Stop applies an explicit stop command.
func (a *Arbiter) Stop() MotorState {
	return a.Apply(MotorCommand{Direction: Stop})
}

// State returns a snapshot of the current motor state.
func (a *Arbiter) State() MotorState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Arbiter) watchdog() {
	ticker := time.NewTicker(a.poll)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.checkIdle()
		}
	}
}

func (a *Arbiter) checkIdle() {
	a.mu.Lock()
	if !a.state.Running || time.Since(a.state.LastCommand) <= a.timeout {
		a.mu.Unlock()
		return
	}

	a.state.Direction = Stop
	a.state.Left = 0
	a.state.Right = 0
	a.state.Running = false
	a.seq++
	seq, state := a.seq, a.state
	a.mu.Unlock()

	a.notify(seq, state)
}

// notify delivers a state change to the sink. Delivery runs outside the
// state lock so sinks may call State(), which means two changes can race to
// this point; the sequence check drops the one that lost, otherwise a stale
// non-stop state could land after a stop and leave the sink driving motors
// the arbiter believes are halted.
func (a *Arbiter) notify(seq uint64, state MotorState) {
	if a.onChange == nil {
		return
	}

	a.sinkMu.Lock()
	defer a.sinkMu.Unlock()

	if seq <= a.sinkSeq {
		return
	}
	a.sinkSeq = seq
	a.onChange(state)
}
