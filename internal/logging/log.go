package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	Logger *zap.SugaredLogger
)

func init() {
	build(zap.InfoLevel, os.Getenv("APPLICATION_NAME"))
}

// Configure rebuilds the process logger with the given level ("debug", "info", "warn", "error").
func Configure(level, appName string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	build(lvl, appName)
	return nil
}

func build(level zapcore.Level, appName string) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.MessageKey = "msg"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.TimeKey = "@timestamp"
	encoderConfig.CallerKey = "logger_name"

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	logger = zap.New(core,
		zap.Fields(zap.String("logName", appName)),
		zap.AddCaller(),
		zap.AddCallerSkip(1))

	Logger = logger.Sugar()
}

// Sync flushes buffered log entries.
func Sync() {
	_ = logger.Sync()
}

// With returns a logger carrying the given key-value pairs, e.g. a run ID.
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	// Callers log on the returned logger directly, not through the wrappers below.
	return logger.WithOptions(zap.AddCallerSkip(-1)).Sugar().With(keysAndValues...)
}

// Infof formats the message according to the format specifier and logs it at InfoLevel.
func Infof(message string, args ...interface{}) {
	Logger.Infof(message, args...)
}

// Infow logs a message with some additional context.
func Infow(message string, keysAndValues ...interface{}) {
	Logger.Infow(message, keysAndValues...)
}

func Debugf(message string, args ...interface{}) {
	Logger.Debugf(message, args...)
}

func Warnf(message string, args ...interface{}) {
	Logger.Warnf(message, args...)
}

// Warnw logs a message with some additional context at WarnLevel.
func Warnw(message string, keysAndValues ...interface{}) {
	Logger.Warnw(message, keysAndValues...)
}

func Errorf(message string, args ...interface{}) {
	Logger.Errorf(message, args...)
}

// Errorw logs a message with some additional context at ErrorLevel.
func Errorw(message string, keysAndValues ...interface{}) {
	Logger.Errorw(message, keysAndValues...)
}

// Fatalf formats the message according to the format specifier and calls os.Exit.
func Fatalf(message string, args ...interface{}) {
	Logger.Fatalf(message, args...)
}
