package logging

import (
	"fmt"
	"strings"

	"github.com/mattn/go-colorable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level string
	JSON  bool
	// Output defaults to a colorable stdout.
	Output zapcore.WriteSyncer
}

// New builds the process logger: colored console lines by default, JSON when asked.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if raw := strings.TrimSpace(opts.Level); raw != "" {
		parsed, err := zapcore.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	var encoder zapcore.Encoder
	if opts.JSON {
		config := zap.NewProductionEncoderConfig()
		config.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(config)
	} else {
		config := zap.NewDevelopmentEncoderConfig()
		config.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encoder = zapcore.NewConsoleEncoder(config)
	}

	output := opts.Output
	if output == nil {
		output = zapcore.AddSync(colorable.NewColorableStdout())
	}

	return zap.New(zapcore.NewCore(encoder, output, level)), nil
}
