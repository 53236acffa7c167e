package fine

import (
	"time"

	"github.com/rs/zerolog"
)

// Config holds the session configuration.
type Config struct {
	// Logger receives protocol tracing (optional)
	Logger zerolog.Logger

	// Sleep waits between readiness polls. Replaced in tests.
	Sleep func(time.Duration)

	// ReadChipID queries the 16-bit chip identity right after detection
	ReadChipID bool
}

func defaultConfig() Config {
	return Config{
		Logger: zerolog.Nop(),
		Sleep:  time.Sleep,
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithLogger sets the logger used for protocol tracing.
//
// Example:
//
//	s := fine.NewSession(probe, fine.WithLogger(logger))
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithSleep replaces the function used to wait between readiness polls.
func WithSleep(sleep func(time.Duration)) Option {
	return func(c *Config) {
		if sleep != nil {
			c.Sleep = sleep
		}
	}
}

// WithChipID enables the chip identity query during bring-up.
func WithChipID(enabled bool) Option {
	return func(c *Config) {
		c.ReadChipID = enabled
	}
}
