package logsvc

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/session"
)

// ZapLogger adapts a zap.Logger to core.Logger, for the command line tools.
type ZapLogger struct {
	zl *zap.Logger
}

var _ core.Logger = (*ZapLogger)(nil)

// NewZapLogger builds a production zap logger writing to stderr; verbose enables the debug level.
func NewZapLogger(verbose bool) (*ZapLogger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zl, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return &ZapLogger{zl: zl}, nil
}

func WrapZap(zl *zap.Logger) *ZapLogger { return &ZapLogger{zl: zl} }

func NewNopLogger() *ZapLogger { return &ZapLogger{zl: zap.NewNop()} }

func (l *ZapLogger) Zap() *zap.Logger { return l.zl }

func (l *ZapLogger) Sync() error { return l.zl.Sync() }

// expected fmt: msg | error, map[string]interface{}, session.Identity
func (l *ZapLogger) fields(args []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case error:
			fields = append(fields, zap.Error(v))
		case map[string]interface{}:
			for k, val := range v {
				fields = append(fields, zap.Any(k, val))
			}
		case session.Identity:
			fields = append(fields, zap.Int64("userId", v.UserID), zap.String("role", string(v.Role)))
		default:
			fields = append(fields, zap.Any(fmt.Sprintf("arg%d", i), v))
		}
	}
	return fields
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) { l.zl.Debug(msg, l.fields(args)...) }
func (l *ZapLogger) Info(msg string, args ...interface{})  { l.zl.Info(msg, l.fields(args)...) }
func (l *ZapLogger) Warn(msg string, args ...interface{})  { l.zl.Warn(msg, l.fields(args)...) }
func (l *ZapLogger) Error(msg string, args ...interface{}) { l.zl.Error(msg, l.fields(args)...) }
func (l *ZapLogger) Fatal(msg string, args ...interface{}) { l.zl.Fatal(msg, l.fields(args)...) }
