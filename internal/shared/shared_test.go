package shared

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("opened manager", "location", "/tmp/data")

		assert.Contains(t, buf.String(), "opened manager")
		assert.Contains(t, buf.String(), "location=/tmp/data")
	})

	t.Run("WithLogger adds key-value pairs", func(t *testing.T) {
		var buf bytes.Buffer
		child := WithLogger(NewLogger(&buf), "component", "registry")
		child.Warn("shutdown")

		assert.Contains(t, buf.String(), "component=registry")
	})

	t.Run("SetLogLevel filters lower levels", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.ErrorLevel)
		logger.Info("hidden")

		assert.Empty(t, buf.String())
	})

	t.Run("ParseLogLevel", func(t *testing.T) {
		tc := []struct {
			name string
			in   string
			want log.Level
		}{
			{name: "empty", in: "", want: log.InfoLevel},
			{name: "debug", in: "debug", want: log.DebugLevel},
			{name: "error", in: "error", want: log.ErrorLevel},
			{name: "unknown", in: "verbose", want: log.InfoLevel},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, ParseLogLevel(tt.in))
			})
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	require.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
