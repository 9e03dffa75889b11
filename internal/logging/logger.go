// Package logging builds the zap logger used by the CLI and the MCP server and
// forwards query notices to it.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ieg-tools/projcodes/domain"
)

// Output formats
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures New
type Options struct {
	Level  string
	Format string

	// Output defaults to stderr so that reports written to stdout stay clean
	Output zapcore.WriteSyncer
}

// LevelFromString parses a level name
func LevelFromString(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
	return l, nil
}

func newEncoder(format string) (zapcore.Encoder, error) {
	switch format {
	case "", FormatConsole:
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(cfg), nil
	case FormatJSON:
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// New creates a logger from options
func New(opts Options) (*zap.Logger, error) {
	level, err := LevelFromString(opts.Level)
	if err != nil {
		return nil, err
	}
	enc, err := newEncoder(opts.Format)
	if err != nil {
		return nil, err
	}
	out := opts.Output
	if out == nil {
		out = zapcore.Lock(os.Stderr)
	}
	return zap.New(zapcore.NewCore(enc, out, level)), nil
}

// NoticeLogger forwards notices to a logger: warnings at warn level, the rest at info
type NoticeLogger struct {
	log *zap.Logger
}

// NewNoticeLogger wraps a logger; a nil logger discards notices
func NewNoticeLogger(log *zap.Logger) *NoticeLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &NoticeLogger{log: log}
}

// Notify implements domain.NoticeSink
func (n *NoticeLogger) Notify(notice domain.Notice) {
	if notice.Level == domain.NoticeWarning {
		n.log.Warn(notice.Message)
		return
	}
	n.log.Info(notice.Message)
}

// NotifyAll forwards notices in order
func (n *NoticeLogger) NotifyAll(notices []domain.Notice) {
	for _, notice := range notices {
		n.Notify(notice)
	}
}

// Logger returns the underlying logger
func (n *NoticeLogger) Logger() *zap.Logger {
	return n.log
}
