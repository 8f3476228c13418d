package rtctime

import (
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ajanata/ds3231"
)

type fakeClock struct {
	nowT   time.Time
	nowErr error
	setErr error
	cfgErr error

	nowCalls int
	setCalls int
	cfgCalls int
	lastSet  time.Time
}

func (f *fakeClock) Now() (time.Time, error) {
	f.nowCalls++
	return f.nowT, f.nowErr
}

func (f *fakeClock) Set(t time.Time) error {
	f.setCalls++
	f.lastSet = t
	return f.setErr
}

func (f *fakeClock) Configure() error {
	f.cfgCalls++
	return f.cfgErr
}

// plainClock has no Configure; Setup must be happy with that.
type plainClock struct{}

func (plainClock) Now() (time.Time, error) { return time.Time{}, nil }
func (plainClock) Set(time.Time) error     { return nil }

func quiet(cfg Config) Config {
	cfg.Logger = NewNullLogger()
	return cfg
}

func TestNewDefaults(t *testing.T) {
	c := qt.New(t)

	s := New(&fakeClock{}, quiet(Config{}))
	c.Assert(s.cfg.Interval, qt.Equals, DefaultInterval)
	c.Assert(s.loc, qt.Equals, time.UTC)

	s = New(&fakeClock{}, quiet(Config{Timezone: "UTC"}))
	c.Assert(s.loc, qt.Equals, time.UTC)

	// unknown zones fall back to UTC instead of failing
	s = New(&fakeClock{}, quiet(Config{Timezone: "Not/AZone"}))
	c.Assert(s.loc, qt.Equals, time.UTC)
}

func TestUpdate(t *testing.T) {
	c := qt.New(t)
	want := time.Date(2026, 8, 21, 13, 37, 42, 0, time.UTC)
	src := &fakeClock{nowT: want}

	var set, observed time.Time
	s := New(src, quiet(Config{
		SetClock: func(t time.Time) error { set = t; return nil },
		OnSync:   func(t time.Time) { observed = t },
	}))
	c.Assert(s.Setup(), qt.IsNil)
	c.Assert(src.cfgCalls, qt.Equals, 1)

	s.Update()
	c.Assert(set, qt.Equals, want)
	c.Assert(observed, qt.Equals, want)
	c.Assert(src.nowCalls, qt.Equals, 1)
}

func TestUpdateWithoutSetClock(t *testing.T) {
	c := qt.New(t)
	want := time.Date(2026, 8, 21, 13, 37, 42, 0, time.UTC)
	src := &fakeClock{nowT: want}

	var observed time.Time
	s := New(src, quiet(Config{OnSync: func(t time.Time) { observed = t }}))
	s.Update()
	c.Assert(observed, qt.Equals, want)
}

func TestUpdateHaltedClock(t *testing.T) {
	c := qt.New(t)
	src := &fakeClock{nowErr: ds3231.ErrOscillatorStopped}

	called := false
	s := New(src, quiet(Config{SetClock: func(time.Time) error { called = true; return nil }}))
	s.Update()
	c.Assert(called, qt.Equals, false)
	c.Assert(src.nowCalls, qt.Equals, 1)
}

func TestUpdateInvalidClock(t *testing.T) {
	c := qt.New(t)
	src := &fakeClock{nowErr: ds3231.ErrInvalidTime}

	called := false
	s := New(src, quiet(Config{SetClock: func(time.Time) error { called = true; return nil }}))
	s.Update()
	c.Assert(called, qt.Equals, false)
}

func TestUpdateReadError(t *testing.T) {
	c := qt.New(t)
	src := &fakeClock{nowErr: errors.New("bus fault")}

	called := false
	s := New(src, quiet(Config{SetClock: func(time.Time) error { called = true; return nil }}))
	s.Update()
	c.Assert(called, qt.Equals, false)
}

func TestUpdateSetClockError(t *testing.T) {
	c := qt.New(t)
	src := &fakeClock{nowT: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	observed := false
	s := New(src, quiet(Config{
		SetClock: func(time.Time) error { return errors.New("nope") },
		OnSync:   func(time.Time) { observed = true },
	}))
	s.Update()
	c.Assert(observed, qt.Equals, false)
}

// Once setup fails the device is never touched again, by any operation.
func TestSetupFailureDisablesDevice(t *testing.T) {
	c := qt.New(t)
	src := &fakeClock{cfgErr: errors.New("no ack")}

	s := New(src, quiet(Config{SetClock: func(time.Time) error { return nil }}))
	c.Assert(s.Setup(), qt.Not(qt.IsNil))
	c.Assert(s.Failed(), qt.Equals, true)

	s.Update()
	s.Start()
	err := s.WriteTime()
	c.Assert(err, qt.Equals, ErrFailed)
	time.Sleep(10 * time.Millisecond)
	s.Stop()

	c.Assert(src.nowCalls, qt.Equals, 0)
	c.Assert(src.setCalls, qt.Equals, 0)
	c.Assert(src.cfgCalls, qt.Equals, 1)
}

func TestSetupWithoutConfigurer(t *testing.T) {
	c := qt.New(t)
	s := New(plainClock{}, quiet(Config{}))
	c.Assert(s.Setup(), qt.IsNil)
	c.Assert(s.Failed(), qt.Equals, false)
}

func TestWriteTime(t *testing.T) {
	c := qt.New(t)
	src := &fakeClock{}
	s := New(src, quiet(Config{}))

	host := time.Date(2026, 8, 21, 15, 37, 42, 0, time.FixedZone("UTC+2", 2*3600))
	s.now = func() time.Time { return host }

	c.Assert(s.WriteTime(), qt.IsNil)
	c.Assert(src.setCalls, qt.Equals, 1)
	c.Assert(src.lastSet, qt.Equals, host.UTC())
}

func TestWriteTimeInvalidHostTime(t *testing.T) {
	c := qt.New(t)
	src := &fakeClock{}
	s := New(src, quiet(Config{}))

	for _, host := range []time.Time{
		{},
		time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		s.now = func() time.Time { return host }
		c.Assert(s.WriteTime(), qt.Equals, ds3231.ErrInvalidTime)
	}
	c.Assert(src.setCalls, qt.Equals, 0)
}

func TestWriteTimeDeviceError(t *testing.T) {
	c := qt.New(t)
	boom := errors.New("bus fault")
	src := &fakeClock{setErr: boom}
	s := New(src, quiet(Config{}))
	s.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	c.Assert(s.WriteTime(), qt.Equals, boom)
}

func TestStartStop(t *testing.T) {
	c := qt.New(t)
	want := time.Date(2026, 8, 21, 13, 37, 42, 0, time.UTC)
	synced := make(chan time.Time, 16)

	s := New(&fakeClock{nowT: want}, quiet(Config{
		Interval: time.Millisecond,
		SetClock: func(t time.Time) error {
			select {
			case synced <- t:
			default:
			}
			return nil
		},
	}))
	s.Start()
	s.Start() // second start is a no-op

	select {
	case tm := <-synced:
		c.Assert(tm, qt.Equals, want)
	case <-time.After(5 * time.Second):
		c.Fatal("no sync before deadline")
	}

	s.Stop()
	s.Stop() // as is a second stop
}

func TestStopWithoutStart(t *testing.T) {
	s := New(&fakeClock{}, quiet(Config{}))
	s.Stop()
}
