package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogOptions selects how a process logs. Every binary in the repo builds its
// logger from these, filled from config.Config.
type LogOptions struct {
	// Service names the logger and is attached to every entry.
	Service string
	// Environment picks the default level when Level is empty:
	// debug for development, info everywhere else.
	Environment string
	// Level is one of DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string
	// OutputPaths defaults to stdout. The MCP server logs to stderr because
	// stdout carries the protocol.
	OutputPaths []string
}

// NewLogger builds a production JSON logger named after the service and
// installs it as the global logger.
func NewLogger(opts LogOptions) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(LevelFor(opts.Environment, opts.Level))
	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
		cfg.ErrorOutputPaths = opts.OutputPaths
	}

	// Field names match the Promtail pipeline
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.NameKey = "logger"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.StacktraceKey = "stacktrace"

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if opts.Service != "" {
		logger = logger.Named(opts.Service).With(zap.String("service", opts.Service))
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// LevelFor resolves an explicit level name, falling back to the
// environment's default. Unknown names log at info.
func LevelFor(environment, level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "":
		if isDevelopment(environment) {
			return zap.DebugLevel
		}
		return zap.InfoLevel
	case "DEBUG":
		return zap.DebugLevel
	case "WARN":
		return zap.WarnLevel
	case "ERROR":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func isDevelopment(environment string) bool {
	switch strings.ToLower(environment) {
	case "development", "dev":
		return true
	}
	return false
}
