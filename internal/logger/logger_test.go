package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

var frameTime = time.Date(2024, 1, 1, 12, 0, 0, 125_000_000, time.UTC)

func newRecord(level slog.Level, msg string, attrs ...slog.Attr) slog.Record {
	r := slog.NewRecord(frameTime, level, msg, 0)
	r.AddAttrs(attrs...)
	return r
}

// TestParseLevel 测试日志级别解析
func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, 期望 %v", tt.input, got, tt.expected)
			}
		})
	}
}

// TestFormatValue 测试帧日志里常见值的格式
func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		value    slog.Value
		expected string
	}{
		{"浮点数保留三位", slog.Float64Value(9.695359714832659), "9.695"},
		{"Vec3", slog.AnyValue(mgl64.Vec3{0.5, -3, 1.25}), "(0.500, -3.000, 1.250)"},
		{"Vec2", slog.AnyValue(mgl64.Vec2{1, 0}), "(1.000, 0.000)"},
		{"错误加引号", slog.AnyValue(errors.New("bad level")), `"bad level"`},
		{"整数", slog.IntValue(1089), "1089"},
		{"布尔", slog.BoolValue(true), "true"},
		{"时长", slog.DurationValue(16666667 * time.Nanosecond), "16.667ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.value); got != tt.expected {
				t.Errorf("formatValue() = %q, 期望 %q", got, tt.expected)
			}
		})
	}
}

// TestConsoleHandlerLine 测试单行输出格式
func TestConsoleHandlerLine(t *testing.T) {
	var buf bytes.Buffer
	h := &consoleHandler{w: &buf, level: slog.LevelDebug}

	err := h.Handle(context.Background(), newRecord(slog.LevelDebug, "Landed", slog.Float64("speed", 3.5)))
	if err != nil {
		t.Fatalf("Handle() 返回错误: %v", err)
	}

	want := "12:00:00.125 DEBUG Landed  speed=3.500\n"
	if got := buf.String(); got != want {
		t.Errorf("输出 = %q, 期望 %q", got, want)
	}
}

// TestConsoleHandlerComponentPrefix 测试 component 属性渲染为前缀
func TestConsoleHandlerComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	h := newHandler(Config{Level: "info", Format: "console", Output: &buf})
	log := slog.New(h).With(componentKey, "sim")

	log.Info("Scene ready", "blocks", 1089, "spawn", mgl64.Vec3{0.5, 0, 0.5})

	out := buf.String()
	if !strings.Contains(out, "INFO  [sim] Scene ready  blocks=1089  spawn=(0.500, 0.000, 0.500)") {
		t.Errorf("输出应包含组件前缀和格式化属性, 实际: %q", out)
	}
	if strings.Contains(out, "component=") {
		t.Errorf("component 不应再作为普通属性输出, 实际: %q", out)
	}
}

// TestConsoleHandlerLevelFilter 测试级别过滤
func TestConsoleHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(Config{Level: "warn", Output: &buf}))

	log.Info("Config applied")
	log.Debug("Jump")
	log.Warn("Config reload failed")

	out := buf.String()
	if strings.Contains(out, "Config applied") || strings.Contains(out, "Jump") {
		t.Errorf("低于 warn 的日志不应输出, 实际: %q", out)
	}
	if !strings.Contains(out, "WARN  Config reload failed") {
		t.Errorf("warn 日志应输出, 实际: %q", out)
	}
}

// TestConsoleHandlerWithAttrsDoesNotLeak 测试 WithAttrs 不修改原 handler
func TestConsoleHandlerWithAttrsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	h := &consoleHandler{w: &buf, level: slog.LevelDebug}

	child := h.WithAttrs([]slog.Attr{slog.String(componentKey, "input"), slog.String("event", "input.move")})
	if len(h.attrs) != 0 || h.component != "" {
		t.Fatalf("原始 handler 被修改: %+v", h)
	}

	if err := child.Handle(context.Background(), newRecord(slog.LevelError, "Invalid event payload")); err != nil {
		t.Fatalf("Handle() 返回错误: %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "ERROR [input] Invalid event payload  event=input.move") {
		t.Errorf("输出 = %q", got)
	}
}

// TestConsoleHandlerGroups 测试分组前缀, 分组内的 component 只是普通属性
func TestConsoleHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(&consoleHandler{w: &buf, level: slog.LevelDebug})

	log.WithGroup("level").WithGroup("box").Info("Rejected", "component", "x", "index", 2)

	out := buf.String()
	if !strings.Contains(out, "level.box.component=x") || !strings.Contains(out, "level.box.index=2") {
		t.Errorf("输出应包含嵌套分组前缀, 实际: %q", out)
	}
	if strings.Contains(out, "[x]") {
		t.Errorf("分组内的 component 不应成为前缀, 实际: %q", out)
	}
}

// TestNewHandlerFormats 测试格式选择
func TestNewHandlerFormats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		slog.New(newHandler(Config{Format: "json", Output: &buf})).Info("Config applied", "tps", 60)

		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("json 输出无法解析: %v (%q)", err, buf.String())
		}
		if rec["msg"] != "Config applied" || rec["tps"] != float64(60) {
			t.Errorf("json 记录 = %v", rec)
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		slog.New(newHandler(Config{Format: "text", Output: &buf})).Info("Config applied")
		if !strings.Contains(buf.String(), `msg="Config applied"`) {
			t.Errorf("text 输出 = %q", buf.String())
		}
	})

	for _, format := range []string{"console", ""} {
		t.Run("console_"+format, func(t *testing.T) {
			h := newHandler(Config{Format: format})
			ch, ok := h.(*consoleHandler)
			if !ok {
				t.Fatalf("handler 类型 = %T, 期望 *consoleHandler", h)
			}
			if ch.w != os.Stdout {
				t.Errorf("默认输出应为 stdout")
			}
		})
	}
}

// TestOpenFile 测试日志同时写入文件和原输出
func TestOpenFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "stride.log")

	w, closer, err := OpenFile(path, &buf)
	if err != nil {
		t.Fatalf("OpenFile() 返回错误: %v", err)
	}
	slog.New(newHandler(Config{Output: w})).Info("Landed")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() 返回错误: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	if !strings.Contains(string(data), "Landed") {
		t.Errorf("日志文件应包含消息, 实际: %q", data)
	}
	if !strings.Contains(buf.String(), "Landed") {
		t.Errorf("原输出应包含消息, 实际: %q", buf.String())
	}
}

// TestOpenFileWithoutTee 测试只写文件
func TestOpenFileWithoutTee(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stride.log")

	w, closer, err := OpenFile(path, nil)
	if err != nil {
		t.Fatalf("OpenFile() 返回错误: %v", err)
	}
	defer closer.Close()
	if _, ok := w.(*os.File); !ok {
		t.Errorf("没有 tee 时应直接返回文件, 实际: %T", w)
	}
}

// TestOpenFileBadPath 测试无法打开的路径返回错误
func TestOpenFileBadPath(t *testing.T) {
	_, _, err := OpenFile(filepath.Join(t.TempDir(), "missing", "stride.log"), nil)
	if err == nil {
		t.Fatal("期望返回错误")
	}
}
