package utils

import "testing"

// TestDefaultConfig tests the DefaultConfig function
func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if config.MinTableRows != MinTableRows {
		t.Errorf("MinTableRows = %d, expected %d", config.MinTableRows, MinTableRows)
	}

	if config.MaxClock != 0 {
		t.Errorf("MaxClock = %d, expected unbounded (0)", config.MaxClock)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig() should be valid: %v", err)
	}
}

// TestConfigValidate tests the Validate method
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		expectErr bool
	}{
		{"valid default config", DefaultConfig(), false},
		{"larger minimum", DefaultConfig().WithMinTableRows(64), false},
		{"minimum not a power of two", DefaultConfig().WithMinTableRows(24), true},
		{"minimum below 16", DefaultConfig().WithMinTableRows(8), true},
		{"negative max clock", DefaultConfig().WithMaxClock(-1), true},
		{"bounded clock", DefaultConfig().WithMaxClock(1 << 12), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.expectErr {
				t.Errorf("Validate() error = %v, expectErr %v", err, tt.expectErr)
			}
		})
	}
}

// TestConfigClone tests that Clone produces an independent copy
func TestConfigClone(t *testing.T) {
	original := DefaultConfig().WithSegment(3).WithCheckCTLs(true)
	clone := original.Clone()

	clone.WithSegment(4).WithCheckCTLs(false)

	if original.Segment != 3 || !original.CheckCTLs {
		t.Errorf("modifying the clone changed the original: %+v", original)
	}
}
