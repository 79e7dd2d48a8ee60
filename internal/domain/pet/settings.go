package pet

import (
	"math/rand"
	"time"

	"github.com/nekoden/nekoden/nekoden/config"
)

// Settings tunes the rest lifecycle and the autonomous cycle.
type Settings struct {
	TickInterval time.Duration
	TickTimeout  time.Duration
	RestDuration time.Duration
	WakeDwell    time.Duration

	Now  func() time.Time
	Intn func(n int) int
}

func DefaultSettings() Settings {
	return Settings{
		TickInterval: config.DefaultTickInterval,
		TickTimeout:  config.DefaultTickTimeout,
		RestDuration: config.DefaultRestDuration,
		WakeDwell:    config.DefaultWakeDwell,
		Now:          time.Now,
		Intn:         rand.Intn,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.TickInterval <= 0 {
		s.TickInterval = d.TickInterval
	}
	if s.TickTimeout <= 0 {
		s.TickTimeout = d.TickTimeout
	}
	if s.RestDuration <= 0 {
		s.RestDuration = d.RestDuration
	}
	if s.WakeDwell <= 0 {
		s.WakeDwell = d.WakeDwell
	}
	if s.Now == nil {
		s.Now = d.Now
	}
	if s.Intn == nil {
		s.Intn = d.Intn
	}
	return s
}
