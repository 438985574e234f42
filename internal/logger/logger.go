// internal/logger/logger.go
package logger

import (
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	// LogFile - JSON лог с ротацией. Пусто - без файла.
	LogFile    string
	MaxSize    int  // мегабайты
	MaxAge     int  // дни
	MaxBackups int  // количество файлов
	Compress   bool // сжимать ротированные файлы
	Debug      bool
	// Pretty - цветной человекочитаемый вывод в консоль вместо стандартного.
	Pretty bool
	// Buffer получает копию логов в JSON (экран логов TUI). Консоль тогда не используется.
	Buffer *LogBuffer
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		LogFile:    "solstarter.log",
		MaxSize:    100,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
	}
}

// Logger расширяет zap.Logger
type Logger struct {
	*zap.Logger
}

// New создает логгер: консоль (или буфер TUI) и JSON файл.
func New(cfg Config) *Logger {
	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var cores []zapcore.Core
	switch {
	case cfg.Buffer != nil:
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(cfg.Buffer), level))
	case cfg.Pretty:
		cores = append(cores, &prettyCore{core: zapcore.NewCore(PrettyEncoder(), zapcore.Lock(os.Stdout), level)})
	default:
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stdout), level))
	}

	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), level))
	}

	return &Logger{
		Logger: zap.New(zapcore.NewTee(cores...),
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		),
	}
}

// WithOperation создает логгер для конкретной операции
func (l *Logger) WithOperation(operation string) *zap.Logger {
	return l.With(
		zap.String("operation", operation),
		zap.String("correlation_id", uuid.New().String()),
		zap.Time("start_time", time.Now().UTC()),
	)
}

// Sync игнорирует ошибки sync для stdout/stderr терминала.
func (l *Logger) Sync() error {
	var rest error
	for _, err := range multierr.Errors(l.Logger.Sync()) {
		if !isConsoleSyncError(err) {
			rest = multierr.Append(rest, err)
		}
	}
	return rest
}

func isConsoleSyncError(err error) bool {
	msg := err.Error()
	return msg == "sync /dev/stdout: invalid argument" ||
		msg == "sync /dev/stdout: inappropriate ioctl for device" ||
		msg == "sync /dev/stderr: invalid argument" ||
		msg == "sync /dev/stderr: inappropriate ioctl for device"
}
