package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a JSON logger at the configured level writing to w. The server
// passes stderr so that stdout stays reserved for the MCP protocol.
func (c *Config) NewLogger(w zapcore.WriteSyncer) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", c.LogLevel, err)
	}

	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(ec), zapcore.Lock(w), zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller()).Named(c.ServerName), nil
}
