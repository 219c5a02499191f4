package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledBarIsSilent(t *testing.T) {
	for _, tc := range []struct {
		name     string
		terminal bool
		level    string
	}{
		{"not a terminal", false, "info"},
		{"debug logging", true, "debug"},
		{"quiet", true, "warn"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			b := New(&out, tc.terminal, tc.level)
			assert.False(t, b.Enabled())

			b.Start(3)
			b.Step("2024-01-01")
			b.Step("2024-01-02")
			b.Stop()

			assert.Equal(t, 2, b.Done())
			assert.Empty(t, out.String())
		})
	}
}

func TestEnabledBarCountsSteps(t *testing.T) {
	var out bytes.Buffer
	b := New(&out, true, "info")
	assert.True(t, b.Enabled())

	b.Start(2)
	b.Step("2024-01-01")
	b.Step("2024-01-02")
	b.Stop()

	assert.Equal(t, 2, b.Done())
}

func TestEmptyRunDrawsNothing(t *testing.T) {
	var out bytes.Buffer
	b := New(&out, true, "info")

	b.Start(0)
	b.Stop()

	assert.Zero(t, b.Done())
	assert.Empty(t, out.String())
}
