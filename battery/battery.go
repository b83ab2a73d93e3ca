// Package battery polls the platform power supply and reports charge levels.
package battery

import (
	"context"
	"io/ioutil"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DefaultPollInterval      = 30 * time.Second
	DefaultLowThreshold      = 20
	DefaultCriticalThreshold = 10

	// level reported when no battery sysfs node exists (bench supplies)
	simulatedLevel = 100
)

// Reading is a single battery observation.
type Reading struct {
	Level     int  `json:"level"`
	Low       bool `json:"low"`
	Critical  bool `json:"critical"`
	Simulated bool `json:"simulated"`
}

// Config tunes the monitor. Zero values fall back to defaults; an empty Path
// triggers autodetection.
type Config struct {
	Path              string
	PollInterval      time.Duration
	LowThreshold      int
	CriticalThreshold int
}

// Monitor reads the capacity node on a fixed interval and pushes readings
// through a callback.
type Monitor struct {
	mu        sync.Mutex
	path      string
	interval  time.Duration
	low       int
	critical  int
	last      Reading
	warned    bool
	onReading func(Reading)
	ctx       context.Context
	cancel    context.CancelFunc
}

// capacityPaths are the sysfs nodes probed during autodetection.
func capacityPaths() []string {
	return []string{
		"/sys/class/power_supply/battery/capacity",
		"/sys/class/power_supply/BAT0/capacity",
		"/sys/class/power_supply/BAT1/capacity",
	}
}

// FindPath returns the first existing capacity node, or "" when running
// without a battery.
func FindPath() string {
	for _, p := range capacityPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// NewMonitor starts polling immediately. onReading may be nil.
func NewMonitor(cfg Config, onReading func(Reading)) *Monitor {
	if cfg.Path == "" {
		cfg.Path = FindPath()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.LowThreshold <= 0 {
		cfg.LowThreshold = DefaultLowThreshold
	}
	if cfg.CriticalThreshold <= 0 {
		cfg.CriticalThreshold = DefaultCriticalThreshold
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		path:      cfg.Path,
		interval:  cfg.PollInterval,
		low:       cfg.LowThreshold,
		critical:  cfg.CriticalThreshold,
		onReading: onReading,
		ctx:       ctx,
		cancel:    cancel,
	}

	if m.path == "" {
		log.Println("no battery detected - using simulation mode")
	}

	m.poll()
	go m.loop()

	return m
}

// Destroy stops the poll loop.
func (m *Monitor) Destroy() {
	m.cancel()
}

// Last returns the most recent reading.
func (m *Monitor) Last() Reading {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	r := m.read()

	m.mu.Lock()
	m.last = r
	warn := (r.Low || r.Critical) && !m.warned
	m.warned = r.Low || r.Critical
	cb := m.onReading
	m.mu.Unlock()

	if warn {
		if r.Critical {
			log.Printf("battery critical: %d%%", r.Level)
		} else {
			log.Printf("battery low: %d%%", r.Level)
		}
	}

	if cb != nil {
		cb(r)
	}
}

func (m *Monitor) read() Reading {
	if m.path == "" {
		return Reading{Level: simulatedLevel, Simulated: true}
	}

	raw, err := ioutil.ReadFile(m.path)
	if err != nil {
		log.Printf("battery read failed: %v", err)
		return Reading{Level: simulatedLevel, Simulated: true}
	}

	level, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		log.Printf("battery value unparseable: %v", err)
		return Reading{Level: simulatedLevel, Simulated: true}
	}

	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}

	return Reading{
		Level:    level,
		Low:      level <= m.low,
		Critical: level <= m.critical,
	}
}
