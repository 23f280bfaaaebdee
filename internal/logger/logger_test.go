package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_CustomWriter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.Info("catalog loaded")

	assert.Contains(t, buf.String(), "catalog loaded")
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{name: "production uses json", environment: "production", wantJSON: true},
		{name: "development uses pretty", environment: "development", wantJSON: false},
		{name: "staging uses pretty", environment: "staging", wantJSON: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: slog.LevelInfo, Environment: tt.environment, Writer: &buf})
			log.Info("test")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"test"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.NotContains(t, buf.String(), `"msg"`)
			}
		})
	}
}

func TestNew_ExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Environment: "development", Writer: &buf})
	log.Info("test")

	assert.Contains(t, buf.String(), `"msg":"test"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" info ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	handler := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})

	assert.False(t, handler.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	log.Info("submission sent", "form", "artist-submission", "fields", 37, "note", "two words")

	out := buf.String()
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "submission sent")
	assert.Contains(t, out, "form=artist-submission")
	assert.Contains(t, out, "fields=37")
	assert.Contains(t, out, `note="two words"`)
}

func TestPrettyHandler_ComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	base := &Logger{Logger: slog.New(NewPrettyHandler(&buf, nil))}

	base.Component("catalog").Info("fixture loaded", "artists", 4)

	out := buf.String()
	assert.Contains(t, out, "[catalog]")
	assert.Contains(t, out, "artists=4")
	assert.NotContains(t, out, "component=")
}

func TestPrettyHandler_GroupsAreDotted(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	log.WithGroup("request").Info("handled", "method", "GET")
	log.Info("grouped attr", slog.Group("cms", slog.String("dataset", "production")))

	out := buf.String()
	assert.Contains(t, out, "request.method=GET")
	assert.Contains(t, out, "cms.dataset=production")
}

func TestPrettyHandler_WithGroupEmptyReturnsSame(t *testing.T) {
	handler := NewPrettyHandler(&bytes.Buffer{}, nil)
	assert.Equal(t, handler, handler.WithGroup(""))
}

func TestPrettyHandler_WithAttrsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, nil)

	a := slog.New(handler.WithAttrs([]slog.Attr{slog.String("session", "form-a")}))
	b := slog.New(handler.WithAttrs([]slog.Attr{slog.String("session", "form-b")}))
	a.Info("first")
	b.Info("second")

	out := buf.String()
	assert.Contains(t, out, "session=form-a")
	assert.Contains(t, out, "session=form-b")
}

func TestPrettyHandler_WithSource(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{AddSource: true}))
	log.Info("test message")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestFormatLevel(t *testing.T) {
	tests := []struct {
		level     slog.Level
		wantStr   string
		wantColor string
	}{
		{slog.LevelDebug, "DBG", colorMagenta},
		{slog.LevelInfo, "INF", colorGreen},
		{slog.LevelWarn, "WRN", colorYellow},
		{slog.LevelError, "ERR", colorRed},
	}

	for _, tt := range tests {
		t.Run(tt.wantStr, func(t *testing.T) {
			str, color := formatLevel(tt.level)
			assert.Equal(t, tt.wantStr, str)
			assert.Equal(t, tt.wantColor, color)
		})
	}
}

func TestFormatValue(t *testing.T) {
	now := time.Now()

	assert.Equal(t, "test", formatValue(slog.StringValue("test")))
	assert.Equal(t, now.Format(time.RFC3339), formatValue(slog.TimeValue(now)))
	assert.Equal(t, "5s", formatValue(slog.DurationValue(5*time.Second)))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.WithError(errors.New("endpoint unreachable")).
		WithField("session_id", "form-123").
		WithFields(map[string]any{"step": 5}).
		Warn("submit failed")

	out := buf.String()
	assert.Contains(t, out, "endpoint unreachable")
	assert.Contains(t, out, "form-123")
	assert.Contains(t, out, `"step":5`)
}

func TestLogger_WithNilError(t *testing.T) {
	log := Discard()
	assert.Same(t, log, log.WithError(nil))
}
