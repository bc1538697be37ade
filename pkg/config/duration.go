// Package config provides TOML-based configuration for hydro-pulse.
package config

import (
	"fmt"
	"math"
	"time"
)

// Duration is a time.Duration read from TOML either as a Go duration string
// ("50ms", "3s", "1m") or as a bare number of seconds.
type Duration struct {
	time.Duration
}

// UnmarshalTOML implements toml.Unmarshaler.
func (d *Duration) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		return d.UnmarshalText([]byte(x))
	case int64:
		return d.setSeconds(float64(x))
	case float64:
		return d.setSeconds(x)
	}
	return fmt.Errorf("invalid duration %v: want a string or a number of seconds", v)
}

// UnmarshalText parses a Go duration string. Empty text is zero.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("negative duration %q not allowed", s)
	}
	d.Duration = parsed
	return nil
}

func (d *Duration) setSeconds(s float64) error {
	if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return fmt.Errorf("invalid duration %v seconds", s)
	}
	d.Duration = time.Duration(s * float64(time.Second))
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
