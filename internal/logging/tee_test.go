package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTee(level slog.Level) (*Tee, *bytes.Buffer, *bytes.Buffer) {
	var console, logged bytes.Buffer
	logger := NewLogger(Config{Level: slog.LevelDebug, Name: "STDOUT", Output: &logged})
	return NewTee(&console, logger.Logger, level), &console, &logged
}

func loggedMessages(buf *bytes.Buffer) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		// timestamp contains one ':' pair per clock field; the message is after name
		idx := strings.Index(line, ":STDOUT:")
		out = append(out, line[idx+len(":STDOUT:"):])
	}
	return out
}

func TestTee_StripsColorsForLogger(t *testing.T) {
	tee, console, logged := newTestTee(slog.LevelInfo)

	input := "\x1b[31mFAIL\x1b[0m test_x"
	n, err := tee.Write([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, len(input), n)

	assert.Equal(t, input, console.String(), "console receives the raw bytes")
	assert.Equal(t, []string{"FAIL test_x"}, loggedMessages(logged))
	assert.Contains(t, logged.String(), ":INFO:STDOUT:")
}

func TestTee_SplitsLines(t *testing.T) {
	tee, _, logged := newTestTee(slog.LevelError)

	_, err := tee.Write([]byte("first  \n\x1b[32mok\x1b[0m\r\n\n\x1b(B\x1b[m\nlast\n\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "ok", "last"}, loggedMessages(logged))
	assert.Contains(t, logged.String(), ":ERROR:STDOUT:")
}

func TestTee_Stream(t *testing.T) {
	tee, _, _ := newTestTee(slog.LevelInfo)
	assert.NoError(t, tee.Flush())
	assert.Equal(t, ^uintptr(0), tee.Fd(), "buffers have no descriptor")
}

func TestStripColors(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"\x1b[1;31mbold red\x1b[0m", "bold red"},
		{"\x1b[2Kcleared", "cleared"},
		{"\x1b[38;5mx", "x"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, StripColors(tt.in))
	}
}

func TestPump_HoldsPartialLines(t *testing.T) {
	tee, console, logged := newTestTee(slog.LevelInfo)

	pump(strings.NewReader("partial line without newline"), tee)

	assert.Equal(t, "partial line without newline", console.String())
	assert.Equal(t, []string{"partial line without newline"}, loggedMessages(logged))
}

func TestLineHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: slog.LevelInfo, Name: "harness", Output: &buf})

	logger.Debug("hidden")
	logger.Warn("Cleanup step failed", "step", "drop database")
	logger.Named("STDERR").Error("boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], ":WARNING:harness:Cleanup step failed step=drop database")
	assert.Contains(t, lines[1], ":ERROR:STDERR:boom")
}
