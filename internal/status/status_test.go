package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityRoundTrip(t *testing.T) {
	cases := []struct {
		in   Level
		rank int
		out  Level
	}{
		{Normal, 0, Normal},
		{Safe, 0, Normal},
		{Warning, 1, Warning},
		{Danger, 2, Danger},
		{Error, 3, Error},
		{Level("bogus"), 3, Error},
	}
	for _, c := range cases {
		assert.Equal(t, c.rank, Severity(c.in), string(c.in))
		assert.Equal(t, c.out, FromSeverity(Severity(c.in)), string(c.in))
	}
}

func TestWorst(t *testing.T) {
	assert.Equal(t, Normal, Worst())
	assert.Equal(t, Normal, Worst(Normal, Safe))
	assert.Equal(t, Warning, Worst(Normal, Warning))
	assert.Equal(t, Danger, Worst(Danger, Safe))
	assert.Equal(t, Danger, Worst(Warning, Danger))
	assert.Equal(t, Error, Worst(Safe, Level("")))
}

func TestIsAlert(t *testing.T) {
	assert.False(t, Normal.IsAlert())
	assert.False(t, Safe.IsAlert())
	assert.True(t, Warning.IsAlert())
	assert.True(t, Danger.IsAlert())
	assert.False(t, Error.IsAlert())
}
