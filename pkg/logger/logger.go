package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger 全局日志实例
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger
)

// Config 日志配置
type Config struct {
	Level    string // debug, info, warn, error, fatal
	Output   string // stdout, file
	FilePath string // 文件路径
}

func init() {
	// 未调用 Init 时也可以安全地记录日志
	Logger = zap.NewNop()
	Sugar = Logger.Sugar()
}

// Init 初始化日志
func Init(cfg *Config) error {
	level := parseLevel(cfg.Level)

	var writeSyncer zapcore.WriteSyncer
	if cfg.Output == "file" {
		if dir := filepath.Dir(cfg.FilePath); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		writeSyncer = zapcore.AddSync(file)
	} else {
		writeSyncer = zapcore.AddSync(os.Stdout)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    levelEncoder(cfg.Output != "file"),
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		writeSyncer,
		level,
	)

	Logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	Sugar = Logger.Sugar()

	return nil
}

// parseLevel 解析日志级别，未知取值按 info 处理
func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// levelEncoder 日志级别编码器，输出到终端时带颜色，写文件时不带
func levelEncoder(colored bool) zapcore.LevelEncoder {
	const (
		colorReset  = "\033[0m"
		colorRed    = "\033[31m"
		colorGreen  = "\033[32m"
		colorYellow = "\033[33m"
		colorBlue   = "\033[34m"
	)

	return func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		var tag, color string
		switch level {
		case zapcore.DebugLevel:
			tag, color = "[DEBUG]", colorBlue
		case zapcore.InfoLevel:
			tag, color = "[INFO] ", colorGreen
		case zapcore.WarnLevel:
			tag, color = "[WARN] ", colorYellow
		case zapcore.ErrorLevel:
			tag, color = "[ERROR]", colorRed
		case zapcore.DPanicLevel, zapcore.PanicLevel:
			tag, color = "[PANIC]", colorRed
		case zapcore.FatalLevel:
			tag, color = "[FATAL]", colorRed
		default:
			enc.AppendString("[UNKNOWN]")
			return
		}
		if colored {
			tag = color + tag + colorReset
		}
		enc.AppendString(tag)
	}
}

// Info 记录 Info 级别日志
func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

// Warn 记录 Warn 级别日志
func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

// Error 记录 Error 级别日志
func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

// Debug 记录 Debug 级别日志
func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

// Fatal 记录 Fatal 级别日志（会退出程序）
func Fatal(msg string, fields ...zap.Field) {
	Logger.Fatal(msg, fields...)
}

// Sync 同步日志（程序退出前调用）
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
