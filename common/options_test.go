package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLimit(t *testing.T) {
	cases := map[string]uint64{
		"10":       10,
		"250_000":  250_000,
		"5K":       5_000,
		"10M":      10_000_000,
		"2G":       2_000_000_000,
		"1T":       1_000_000_000_000,
		"1P":       1_000_000_000_000_000,
		"1E":       1_000_000_000_000_000_000,
		"10m":      10_000_000,
		" 1_000K ": 1_000_000,
	}
	for in, want := range cases {
		got, err := DecodeLimit(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}
}

func TestDecodeLimit_Bad(t *testing.T) {
	for _, in := range []string{"", "abc", "10X", "M", "-5", "1.5M"} {
		_, err := DecodeLimit(in)
		assert.Error(t, err, "input %q", in)
	}
}
