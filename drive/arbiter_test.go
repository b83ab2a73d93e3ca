package drive

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// stateRecorder captures onChange callbacks for inspection.
type stateRecorder struct {
	mu     sync.Mutex
	states []MotorState
}

func (r *stateRecorder) record(s MotorState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) last() (MotorState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return MotorState{}, false
	}
	return r.states[len(r.states)-1], true
}

func TestArbiterApply(t *testing.T) {
	rec := new(stateRecorder)
	a := NewArbiter(Config{}, rec.record)
	defer a.Destroy()

	Convey("initial state is stopped", t, func() {
		s := a.State()
		So(s.Running, ShouldBeFalse)
		So(s.Direction, ShouldEqual, Stop)
		So(s.Left, ShouldEqual, 0)
		So(s.Right, ShouldEqual, 0)
	})

	Convey("forward drives both wheels at the commanded speed", t, func() {
		s := a.Apply(MotorCommand{Direction: Forward, Speed: 200})

		So(s.Left, ShouldEqual, 200)
		So(s.Right, ShouldEqual, 200)
		So(s.Running, ShouldBeTrue)
		So(s.LastCommand.IsZero(), ShouldBeFalse)

		Convey("and the change callback fires", func() {
			last, ok := rec.last()
			So(ok, ShouldBeTrue)
			So(last, ShouldResemble, s)
		})
	})

	Convey("left runs the inner wheel at the turn ratio", t, func() {
		s := a.Apply(MotorCommand{Direction: Left, Speed: 200})

		So(s.Direction, ShouldEqual, Left)
		So(s.Left, ShouldEqual, 200)
		So(s.Right, ShouldEqual, 120)
	})

	Convey("stop clears both wheels and the running flag", t, func() {
		s := a.Stop()

		So(s.Direction, ShouldEqual, Stop)
		So(s.Left, ShouldEqual, 0)
		So(s.Right, ShouldEqual, 0)
		So(s.Running, ShouldBeFalse)
	})

	Convey("last writer wins", t, func() {
		a.Apply(MotorCommand{Direction: Forward, Speed: 100})
		s := a.Apply(MotorCommand{Direction: Backward, Speed: 50})

		So(a.State().Direction, ShouldEqual, Backward)
		So(s.Left, ShouldEqual, 50)
	})
}

func TestArbiterNotifyOrdering(t *testing.T) {
	Convey("concurrent commands leave the sink holding the arbiter's state", t, func() {
		rec := new(stateRecorder)
		a := NewArbiter(Config{SafetyTimeout: time.Minute}, rec.record)
		defer a.Destroy()

		var wg sync.WaitGroup
		for n := 0; n < 4; n++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for i := 0; i < 1000; i++ {
					if n%2 == 0 {
						a.Apply(MotorCommand{Direction: Forward, Speed: 200})
					} else {
						a.Stop()
					}
				}
			}(n)
		}
		wg.Wait()

		last, ok := rec.last()
		So(ok, ShouldBeTrue)
		So(last, ShouldResemble, a.State())
	})
}

func TestArbiterWatchdog(t *testing.T) {
	rec := new(stateRecorder)
	a := NewArbiter(Config{
		SafetyTimeout: 40 * time.Millisecond,
		PollInterval:  5 * time.Millisecond,
	}, rec.record)
	defer a.Destroy()

	Convey("an unattended state is forced to stop after the timeout", t, func() {
		a.Apply(MotorCommand{Direction: Forward, Speed: 200})
		So(a.State().Running, ShouldBeTrue)

		time.Sleep(100 * time.Millisecond)

		s := a.State()
		So(s.Running, ShouldBeFalse)
		So(s.Left, ShouldEqual, 0)
		So(s.Right, ShouldEqual, 0)
		So(s.Direction, ShouldEqual, Stop)

		Convey("and the stop is delivered through the change callback", func() {
			last, ok := rec.last()
			So(ok, ShouldBeTrue)
			So(last.Running, ShouldBeFalse)
		})
	})

	Convey("fresh commands re-arm the timer", t, func() {
		for i := 0; i < 5; i++ {
			a.Apply(MotorCommand{Direction: Forward, Speed: 150})
			time.Sleep(20 * time.Millisecond)
		}

		So(a.State().Running, ShouldBeTrue)
	})

	Convey("the watchdog leaves a stopped state alone", t, func() {
		a.Stop()
		before := a.State()
		time.Sleep(60 * time.Millisecond)

		So(a.State().LastCommand, ShouldResemble, before.LastCommand)
	})
}
