// Package testutil normalizes reporter output for comparison in tests.
package testutil

import (
	"regexp"
	"strings"
)

var (
	ddPattern        = regexp.MustCompile(`\d+\.\d\ds\)`)
	dddPattern       = regexp.MustCompile(`\t\d+\.\d\d\ds`)
	ipv4AddrPattern  = regexp.MustCompile(`127\.0\.0\.1:\d+`)
	idPattern        = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	expiresAtPattern = regexp.MustCompile(`expiresAt: .+`)
)

// ReplaceOutput replaces the parts of the output which differ between runs.
func ReplaceOutput(s string) string {
	for _, f := range []func(string) string{
		ResetDuration,
		ReplaceAddr,
		ReplaceID,
		ReplaceExpiry,
	} {
		s = f(s)
	}
	return s
}

// ResetDuration resets durations from result output.
func ResetDuration(s string) string {
	s = ddPattern.ReplaceAllString(s, "0.00s)")
	return dddPattern.ReplaceAllString(s, "\t0.000s")
}

// ReplaceAddr replaces addresses of test servers.
func ReplaceAddr(s string) string {
	return ipv4AddrPattern.ReplaceAllString(s, "127.0.0.1:12345")
}

// ReplaceID replaces generated UUIDs.
func ReplaceID(s string) string {
	return idPattern.ReplaceAllString(s, "00000000-0000-0000-0000-000000000000")
}

// ReplaceExpiry replaces the expiry of credentials.
func ReplaceExpiry(s string) string {
	return expiresAtPattern.ReplaceAllString(s, "expiresAt: 0001-01-01T00:00:00Z")
}

// TrimLines removes trailing spaces of every line.
func TrimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Join(lines, "\n")
}
