package jwtauthorizer

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/keystone-auth/go-jwt-authorizer/core"
)

// Logger is the structured logging interface used across the module. It is
// compatible with log/slog: args are alternating keys and values.
type Logger = core.Logger

// NewZapLogger returns a Logger adapter for zap.
func NewZapLogger(l *zap.Logger) Logger {
	return &zapLogger{l: l.Sugar()}
}

type zapLogger struct{ l *zap.SugaredLogger }

func (z *zapLogger) Debug(msg string, args ...any) { z.l.Debugw(msg, args...) }
func (z *zapLogger) Info(msg string, args ...any)  { z.l.Infow(msg, args...) }
func (z *zapLogger) Warn(msg string, args ...any)  { z.l.Warnw(msg, args...) }
func (z *zapLogger) Error(msg string, args ...any) { z.l.Errorw(msg, args...) }

// NewZerologLogger returns a Logger adapter for zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) Logger {
	return &zerologLogger{l: l}
}

type zerologLogger struct{ l zerolog.Logger }

func (z *zerologLogger) Debug(msg string, args ...any) { z.log(z.l.Debug(), msg, args) }
func (z *zerologLogger) Info(msg string, args ...any)  { z.log(z.l.Info(), msg, args) }
func (z *zerologLogger) Warn(msg string, args ...any)  { z.log(z.l.Warn(), msg, args) }
func (z *zerologLogger) Error(msg string, args ...any) { z.log(z.l.Error(), msg, args) }

func (z *zerologLogger) log(e *zerolog.Event, msg string, args []any) {
	e.Fields(fields(args)).Msg(msg)
}

// NewLogrusLogger returns a Logger adapter for logrus.FieldLogger.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	return &logrusLogger{l: l}
}

type logrusLogger struct{ l logrus.FieldLogger }

func (l *logrusLogger) Debug(msg string, args ...any) { l.l.WithFields(fields(args)).Debug(msg) }
func (l *logrusLogger) Info(msg string, args ...any)  { l.l.WithFields(fields(args)).Info(msg) }
func (l *logrusLogger) Warn(msg string, args ...any)  { l.l.WithFields(fields(args)).Warn(msg) }
func (l *logrusLogger) Error(msg string, args ...any) { l.l.WithFields(fields(args)).Error(msg) }

// fields converts slog style key/value pairs. A trailing key without a value
// is kept under "!BADKEY", as slog does.
func fields(args []any) map[string]any {
	out := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 == len(args) {
			out["!BADKEY"] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		out[key] = args[i+1]
	}
	return out
}
