package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls the process-wide logger. It is read once at startup.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// New builds the singleton *zap.Logger for the process. Format "console"
// selects a human console encoder; any other value, "json" included, uses
// the JSON encoder.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, err
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
	return zap.New(core, zap.AddCaller()), nil
}

// With builds a child logger carrying the given field set, the conventional
// way Tessera's request handlers scope a logger to one request.
func With(base *zap.Logger, f Fields) *zap.Logger {
	return base.With(f.Zap()...)
}
