package nagios

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "OK", Ok.String())
	assert.Equal(t, "WARNING", Warning.String())
	assert.Equal(t, "CRITICAL", Critical.String())
	assert.Equal(t, "UNKNOWN", Unknown.String())
	assert.Equal(t, "UNKNOWN", T(12).String())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, Ok.ExitCode())
	assert.Equal(t, 1, Warning.ExitCode())
	assert.Equal(t, 2, Critical.ExitCode())
	assert.Equal(t, 3, Unknown.ExitCode())
}

func TestWorst(t *testing.T) {
	cases := []struct {
		name     string
		in       []T
		expected T
	}{
		{name: "empty is ok", in: nil, expected: Ok},
		{name: "ok only", in: []T{Ok, Ok}, expected: Ok},
		{name: "critical is sticky", in: []T{Ok, Critical, Ok}, expected: Critical},
		{name: "critical dominates unknown", in: []T{Unknown, Critical}, expected: Critical},
		{name: "unknown dominates warning", in: []T{Warning, Unknown}, expected: Unknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, Worst(c.in...))
		})
	}
}

func TestLine(t *testing.T) {
	assert.Equal(t, "CRITICAL: osd.3=75.50%", Line(Critical, "osd.3=75.50%"))
	assert.Equal(t, "OK: ", Line(Ok, ""))
}
