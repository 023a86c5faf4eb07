// Package common holds option decoding and run configuration shared by the
// command-line drivers.
package common

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var limitPattern = regexp.MustCompile(`^([0-9_]+)([KMGTPE]?)$`)

// DecodeLimit parses a human-readable count such as "250_000" or "10M".
// The suffixes K, M, G, T, P and E scale by successive powers of one
// thousand.
func DecodeLimit(s string) (uint64, error) {
	pieces := limitPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if pieces == nil {
		return 0, fmt.Errorf("unrecognized limit %q", s)
	}
	limit, err := strconv.ParseUint(strings.ReplaceAll(pieces[1], "_", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognized limit %q: %w", s, err)
	}
	switch pieces[2] {
	case "K":
		limit *= 1_000
	case "M":
		limit *= 1_000_000
	case "G":
		limit *= 1_000_000_000
	case "T":
		limit *= 1_000_000_000_000
	case "P":
		limit *= 1_000_000_000_000_000
	case "E":
		limit *= 1_000_000_000_000_000_000
	}
	return limit, nil
}
