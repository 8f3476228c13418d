// Package rtctime keeps a host clock in step with an external hardware
// real-time clock. A Synchronizer periodically reads the hardware clock and
// hands valid times to the host's clock-setting hook, and can push the
// host's time back into the hardware on demand, so a board recovers wall
// time after a power cycle without any network.
package rtctime

import (
	"errors"
	"sync"
	"time"

	"github.com/ajanata/ds3231"
)

// ErrFailed is returned by operations on a Synchronizer whose Setup failed.
// Such a synchronizer never touches the device again.
var ErrFailed = errors.New("rtctime: device failed during setup")

// DefaultInterval is how often the hardware clock is polled when Config
// leaves Interval unset.
const DefaultInterval = 15 * time.Minute

// TimeSource is the hardware clock being synchronized. *ds3231.Device
// implements it; Now is expected to return ds3231.ErrOscillatorStopped and
// ds3231.ErrInvalidTime for the conditions those errors describe.
type TimeSource interface {
	Now() (time.Time, error)
	Set(t time.Time) error
}

// Configurer is implemented by sources that need a one-time setup exchange
// with the hardware before use.
type Configurer interface {
	Configure() error
}

// SetClockFunc applies a freshly read time to the host clock.
type SetClockFunc func(t time.Time) error

type Config struct {
	// Interval between automatic polls once Start has been called.
	// Defaults to DefaultInterval.
	Interval time.Duration
	// Timezone is an IANA zone name used when logging times. Storage and
	// the SetClock hook always work in UTC. Unknown names fall back to UTC
	// with a warning.
	Timezone string
	// SetClock is called with each successfully read time. Without it the
	// synchronizer still polls and reports through OnSync, which suits
	// hosts whose clock can not be set directly.
	SetClock SetClockFunc
	// OnSync, if set, observes every successful synchronization.
	OnSync func(t time.Time)
	// Logger defaults to NewLogger(). Use NewNullLogger() to run silent.
	Logger Logger
}

// Synchronizer couples one TimeSource to the host clock. All methods are
// safe for use from the polling goroutine and the caller at the same time.
type Synchronizer struct {
	src TimeSource
	cfg Config
	loc *time.Location

	now func() time.Time

	mu     sync.Mutex
	failed bool
	stop   chan struct{}
}

func New(src TimeSource, cfg Config) *Synchronizer {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = NewLogger()
	}
	s := &Synchronizer{
		src: src,
		cfg: cfg,
		loc: time.UTC,
		now: time.Now,
	}
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			cfg.Logger.Warnf("unknown timezone %q, using UTC", cfg.Timezone)
		} else {
			s.loc = loc
		}
	}
	return s
}

// Setup runs the source's one-time configuration, when it has any. A
// failure is remembered permanently: every later operation returns ErrFailed
// without any device access, matching how a broken bus is better left alone
// than hammered every poll.
func (s *Synchronizer) Setup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.src.(Configurer)
	if !ok {
		return nil
	}
	err := c.Configure()
	if err != nil {
		s.failed = true
		s.cfg.Logger.Errorf("setting up clock: %v", err)
		return err
	}
	return nil
}

// Failed reports whether Setup failed.
func (s *Synchronizer) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Update reads the source once and, on success, applies the result to the
// host clock. Read problems are logged and swallowed; the next poll is the
// retry. A halted oscillator is only a warning, the clock simply has
// nothing trustworthy to offer until someone writes it.
func (s *Synchronizer) Update() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed {
		return
	}
	t, err := s.src.Now()
	switch {
	case err == nil:
	case errors.Is(err, ds3231.ErrOscillatorStopped):
		s.cfg.Logger.Warnf("clock halted, not syncing to host")
		return
	case errors.Is(err, ds3231.ErrInvalidTime):
		s.cfg.Logger.Errorf("invalid clock time, not syncing to host")
		return
	default:
		s.cfg.Logger.Errorf("reading clock: %v", err)
		return
	}
	if s.cfg.SetClock != nil {
		err = s.cfg.SetClock(t)
		if err != nil {
			s.cfg.Logger.Errorf("setting host clock: %v", err)
			return
		}
	}
	if s.cfg.OnSync != nil {
		s.cfg.OnSync(t)
	}
	s.cfg.Logger.Debugf("synchronized host clock to %s", t.In(s.loc).Format(time.RFC3339))
}

// WriteTime pushes the host's current time into the source. Host times the
// source can not store are rejected before any device access.
func (s *Synchronizer) WriteTime() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed {
		return ErrFailed
	}
	now := s.now().UTC()
	if now.IsZero() || now.Year() < 2000 || now.Year() > 2099 {
		s.cfg.Logger.Errorf("invalid host time, not syncing to clock")
		return ds3231.ErrInvalidTime
	}
	err := s.src.Set(now)
	if err != nil {
		s.cfg.Logger.Errorf("writing clock: %v", err)
		return err
	}
	s.cfg.Logger.Infof("wrote %s to clock", now.Format(time.RFC3339))
	return nil
}

// Start polls the source every Interval on a new goroutine until Stop is
// called. It does nothing on a failed or already running synchronizer.
func (s *Synchronizer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed || s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	go s.run(s.stop)
}

func (s *Synchronizer) run(stop chan struct{}) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Update()
		case <-stop:
			return
		}
	}
}

// Stop ends periodic polling. It is safe to call on a stopped synchronizer.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// DumpConfig logs how the synchronizer is set up, and complains once more
// if the device failed setup.
func (s *Synchronizer) DumpConfig() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.Logger.Infof("clock sync: every %s, timezone %q", s.cfg.Interval, s.loc)
	if s.failed {
		s.cfg.Logger.Errorf("communication with the clock failed")
	}
}
