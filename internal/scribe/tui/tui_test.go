package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinner_NoTTY(t *testing.T) {
	var out bytes.Buffer
	s := NewSpinner(&out, false)
	s.Start("Generating commit message...")
	elapsed := s.Stop()

	assert.Equal(t, "⏺ Generating commit message...\n", out.String())
	assert.GreaterOrEqual(t, elapsed.Nanoseconds(), int64(0))
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	s := NewSpinner(&bytes.Buffer{}, true)
	assert.NotPanics(t, func() { s.Stop() })
}

func TestSpinnerModel_Stop(t *testing.T) {
	m := spinnerModel{text: "working"}
	next, cmd := m.Update(stopMsg{})
	assert.NotNil(t, cmd)
	assert.Empty(t, next.View())
}
