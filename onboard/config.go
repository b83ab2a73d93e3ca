package onboard

import (
	"fmt"
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v2"
)

// Duration adds yaml support for time.ParseDuration strings ("5s", "10ms").
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %v", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// RobotConfig is the on-disk device description.
type RobotConfig struct {
	Version int `yaml:"version"`

	Serial struct {
		Port string `yaml:"port"`
		Baud int    `yaml:"baud"`
	} `yaml:"serial"`

	Drive struct {
		DefaultSpeed  uint8    `yaml:"default_speed"`
		TurnRatio     float64  `yaml:"turn_ratio"`
		SafetyTimeout Duration `yaml:"safety_timeout"`
		PollInterval  Duration `yaml:"poll_interval"`
	} `yaml:"drive"`

	Battery struct {
		Path              string   `yaml:"path"`
		PollInterval      Duration `yaml:"poll_interval"`
		LowThreshold      int      `yaml:"low_threshold"`
		CriticalThreshold int      `yaml:"critical_threshold"`
	} `yaml:"battery"`
}

// LoadConfig reads and parses a RobotConfig from disk.
func LoadConfig(filename string) (*RobotConfig, error) {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %v", err)
	}

	var config RobotConfig
	if err := yaml.Unmarshal(raw, &config); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %v", err)
	}

	switch config.Version {
	case 1:
		// current layout
	default:
		return nil, fmt.Errorf("unable to work with config version %d", config.Version)
	}

	return &config, nil
}
