package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ieg-tools/projcodes/domain"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "debug", want: zapcore.DebugLevel},
		{in: "warn", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LevelFromString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("json output", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New(Options{Level: "info", Format: FormatJSON, Output: zapcore.AddSync(&buf)})
		require.NoError(t, err)
		log.Info("hello")
		assert.Contains(t, buf.String(), `"msg":"hello"`)
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New(Options{Level: "warn", Format: FormatConsole, Output: zapcore.AddSync(&buf)})
		require.NoError(t, err)
		log.Info("quiet")
		log.Warn("loud")
		assert.False(t, strings.Contains(buf.String(), "quiet"))
		assert.Contains(t, buf.String(), "loud")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := New(Options{Format: "xml"})
		assert.Error(t, err)
	})
}

func TestNoticeLogger(t *testing.T) {
	log, observed := NewObserved()
	sink := NewNoticeLogger(log)

	sink.NotifyAll([]domain.Notice{
		domain.InfoNotice("3 unique projects found."),
		domain.WarningNotice("WARNING! 'min_pct' is outside expected range of 0 to 100."),
	})

	entries := observed.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "3 unique projects found.", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)

	var _ domain.NoticeSink = sink
	assert.NotPanics(t, func() { NewNoticeLogger(nil).Notify(domain.InfoNotice("dropped")) })
}
