package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInput_SizeLimit(t *testing.T) {
	tests := []struct {
		name      string
		inputSize int
		limit     int
		wantErr   bool
	}{
		{"Under Limit", DefaultMaxInputSize - 1, 0, false},
		{"Exact Limit", DefaultMaxInputSize, 0, false},
		{"Over Limit", DefaultMaxInputSize + 1, 0, true},
		{"Custom Limit", 11, 10, true},
		{"Within Custom Limit", 5, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Input(strings.Repeat("a", tt.inputSize), tt.limit)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Can I drink coffee?", "Can I drink coffee?"},
		{"Safe Controls", "Line1\nLine2\tTabbed\r", "Line1\nLine2\tTabbed\r"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
		{"Unicode", "Что такое MTHFR? 🧬", "Что такое MTHFR? 🧬"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Input(tt.input, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestInput_InvalidUTF8(t *testing.T) {
	_, err := Input("bad \xff byte", 0)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
