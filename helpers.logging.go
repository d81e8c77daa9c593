package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LoggerContextKey ContextKey = "request.logger"
	megabyte                    = 1 << 20
)

// RotatingWriter is a size rotated and concurrent safe file writer for the
// zap core. A new file is opened once the current one would exceed max.
type RotatingWriter struct {
	sync.Mutex
	clock  Clocker
	file   *os.File
	folder string
	max    int
	size   int64
	isProd bool
}

func NewRotatingWriter(config *Config, clock Clocker) *RotatingWriter {
	return &RotatingWriter{
		clock:  clock,
		folder: config.LogFolder,
		max:    config.LogMaxSize,
		isProd: config.IsProduction,
	}
}

// Close closes the current log file.
func (rw *RotatingWriter) Close() error {
	rw.Lock()
	defer rw.Unlock()
	if rw.file == nil {
		return nil
	}
	err := rw.file.Close()
	rw.file = nil
	return err
}

func (rw *RotatingWriter) Sync() error {
	rw.Lock()
	defer rw.Unlock()
	if rw.file == nil {
		return nil
	}
	return rw.file.Sync()
}

// Write implements io.Writer and rotates the file on max size.
func (rw *RotatingWriter) Write(p []byte) (n int, err error) {
	rw.Lock()
	defer rw.Unlock()
	limit := int64(rw.max) * megabyte
	pLen := int64(len(p))
	if pLen > limit {
		return 0, fmt.Errorf("logging: log size %d exceeds max file size %d", pLen, limit)
	}
	if rw.file == nil || pLen+rw.size > limit {
		if rw.file != nil {
			if err := rw.file.Close(); err != nil {
				return 0, err
			}
		}
		file, err := os.OpenFile(LogFilePath(rw.folder, rw.isProd, rw.clock.Now()), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return 0, err
		}
		rw.file = file
		rw.size = 0
	}
	n, err = rw.file.Write(p)
	rw.size += int64(n)
	return n, err
}

// stdoutSyncer avoids the usual sync error returned by os.Stdout.
type stdoutSyncer struct {
	out *os.File
}

func (s *stdoutSyncer) Sync() error {
	return nil
}

func (s *stdoutSyncer) Write(p []byte) (n int, err error) {
	return s.out.Write(p)
}

// SetupLogging initializes the logging module. In production all logs go to
// the rotating files as json. In development they are printed to the standard
// output as well. Timestamps come from the given clock.
func SetupLogging(config *Config, w zapcore.WriteSyncer, clock TickerClocker) (*zap.Logger, func() error) {
	var zapConfig zapcore.EncoderConfig
	if config.IsProduction {
		zapConfig = zap.NewProductionEncoderConfig()
	} else {
		zapConfig = zap.NewDevelopmentEncoderConfig()
	}
	zapConfig.TimeKey = "ts"
	zapConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.LevelKey = "lvl"
	zapConfig.NameKey = "name"
	zapConfig.MessageKey = "msg"
	zapConfig.CallerKey = "caller"
	zapConfig.StacktraceKey = "skt"

	cores := []zapcore.Core{zapcore.NewCore(zapcore.NewJSONEncoder(zapConfig), w, config.LogLevel)}
	if !config.IsProduction {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(zapConfig), zapcore.Lock(&stdoutSyncer{os.Stdout}), config.LogLevel))
	}
	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.FatalLevel), zap.WithClock(clock))
	logger = logger.With(
		zap.String("app.commit", config.GitCommit),
		zap.String("app.tag", config.GitTag),
		zap.String("app.built", config.BuildTime),
	)

	flusher := func() error {
		if err := logger.Sync(); err != nil {
			return fmt.Errorf("[flush logs]: %w", err)
		}
		return nil
	}

	return logger, flusher
}

// LoggerFromContext returns the request scoped logger or the fallback one.
func LoggerFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return fallback
}

// LogFilePath returns the path of a new log file created at t.
func LogFilePath(folder string, isProd bool, t time.Time) string {
	envKey := "dev"
	if isProd {
		envKey = "prod"
	}
	name := fmt.Sprintf("%02d%02d%02d.%02d%02d%02d.%s.log", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), envKey)
	return filepath.Join(folder, name)
}
