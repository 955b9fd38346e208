package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestInit 测试日志初始化
func TestInit(t *testing.T) {
	err := Init(&Config{Level: "info", Output: "stdout"})
	if err != nil {
		t.Fatalf("初始化日志失败: %v", err)
	}

	if Logger == nil {
		t.Error("Logger 未初始化")
	}
	if Sugar == nil {
		t.Error("Sugar 未初始化")
	}
}

// TestParseLevel 测试日志级别解析
func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}

	for input, want := range tests {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) 期望 %v, 实际 %v", input, want, got)
		}
	}
}

// TestInitWithFile 测试文件输出，文件中不应包含颜色控制符
func TestInitWithFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "logs", "warbler.log")

	err := Init(&Config{Level: "info", Output: "file", FilePath: tmpFile})
	if err != nil {
		t.Fatalf("初始化文件日志失败: %v", err)
	}

	Info("用户注册成功", zap.String("username", "testuser"))
	Sync()

	content, err := os.ReadFile(tmpFile)
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}

	if !strings.Contains(string(content), "用户注册成功") {
		t.Error("日志文件中未找到预期内容")
	}
	if !strings.Contains(string(content), "[INFO]") {
		t.Error("日志文件中未找到日志级别")
	}
	if strings.Contains(string(content), "\033[") {
		t.Error("日志文件中不应包含颜色控制符")
	}
}

// TestLogLevels 测试各个日志级别（只验证不会panic）
func TestLogLevels(t *testing.T) {
	Init(&Config{Level: "debug", Output: "stdout"})

	tests := []struct {
		name string
		fn   func()
	}{
		{"Debug", func() { Debug("debug message", zap.String("key", "value")) }},
		{"Info", func() { Info("info message", zap.String("key", "value")) }},
		{"Warn", func() { Warn("warn message", zap.String("key", "value")) }},
		{"Error", func() { Error("error message", zap.String("key", "value")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn()
		})
	}
}

// TestSyncWithNilLogger 测试Logger为nil时的Sync
func TestSyncWithNilLogger(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()

	Logger = nil
	Sync()
}

// BenchmarkInfo 性能测试：Info日志
func BenchmarkInfo(b *testing.B) {
	Init(&Config{Level: "error", Output: "stdout"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Info("benchmark test", zap.Int("iteration", i))
	}
}
