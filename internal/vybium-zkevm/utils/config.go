package utils

import (
	"errors"
	"fmt"
)

// MinTableRows is the smallest padded height any table may have.
const MinTableRows = 16

// ErrInvalidConfig is wrapped by every configuration validation error
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the configuration for one segment's witness generation
type Config struct {
	// Segment index of the execution being generated (0 for the first segment)
	Segment uint64

	// Minimum number of rows of every padded table (must be a power of 2)
	MinTableRows int

	// Upper bound on the CPU clock; 0 leaves the interpreter loop unbounded
	MaxClock int

	// Re-check every cross-table lookup on the generated tables
	CheckCTLs bool
}

// DefaultConfig returns the default generation configuration
func DefaultConfig() *Config {
	return &Config{
		Segment:      0,
		MinTableRows: MinTableRows,
		MaxClock:     0,
		CheckCTLs:    false,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !IsPowerOfTwo(c.MinTableRows) {
		return fmt.Errorf("%w: minimum table rows must be a power of 2, got %d", ErrInvalidConfig, c.MinTableRows)
	}

	if c.MinTableRows < MinTableRows {
		return fmt.Errorf("%w: minimum table rows (%d) must be at least %d", ErrInvalidConfig, c.MinTableRows, MinTableRows)
	}

	if c.MaxClock < 0 {
		return fmt.Errorf("%w: max clock must not be negative, got %d", ErrInvalidConfig, c.MaxClock)
	}

	return nil
}

// WithSegment sets the segment index
func (c *Config) WithSegment(segment uint64) *Config {
	c.Segment = segment
	return c
}

// WithMinTableRows sets the minimum padded table height
func (c *Config) WithMinTableRows(rows int) *Config {
	c.MinTableRows = rows
	return c
}

// WithMaxClock sets the interpreter clock bound
func (c *Config) WithMaxClock(clock int) *Config {
	c.MaxClock = clock
	return c
}

// WithCheckCTLs enables or disables the cross-table lookup self-check
func (c *Config) WithCheckCTLs(check bool) *Config {
	c.CheckCTLs = check
	return c
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	return &Config{
		Segment:      c.Segment,
		MinTableRows: c.MinTableRows,
		MaxClock:     c.MaxClock,
		CheckCTLs:    c.CheckCTLs,
	}
}
