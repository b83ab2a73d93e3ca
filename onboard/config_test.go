package onboard

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const testConfigYaml = `
version: 1
serial:
  port: /dev/ttyUSB0
  baud: 115200
drive:
  default_speed: 200
  turn_ratio: 0.6
  safety_timeout: 5s
  poll_interval: 10ms
battery:
  poll_interval: 30s
  low_threshold: 20
  critical_threshold: 10
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "robot_config.yaml")
	if err := ioutil.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	Convey("a valid config parses including durations", t, func() {
		config, err := LoadConfig(writeConfig(t, testConfigYaml))

		So(err, ShouldBeNil)
		So(config.Serial.Port, ShouldEqual, "/dev/ttyUSB0")
		So(config.Serial.Baud, ShouldEqual, 115200)
		So(config.Drive.DefaultSpeed, ShouldEqual, 200)
		So(config.Drive.TurnRatio, ShouldEqual, 0.6)
		So(time.Duration(config.Drive.SafetyTimeout), ShouldEqual, 5*time.Second)
		So(time.Duration(config.Drive.PollInterval), ShouldEqual, 10*time.Millisecond)
		So(config.Battery.LowThreshold, ShouldEqual, 20)
	})

	Convey("an unsupported version is rejected", t, func() {
		_, err := LoadConfig(writeConfig(t, "version: 9"))

		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "version 9")
	})

	Convey("a bad duration string is rejected", t, func() {
		_, err := LoadConfig(writeConfig(t, "version: 1\ndrive:\n  safety_timeout: soon"))

		So(err, ShouldNotBeNil)
	})

	Convey("a missing file errors cleanly", t, func() {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))

		So(err, ShouldNotBeNil)
	})
}
