package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		want    zapcore.Level
		wantErr bool
	}{
		{name: "development default", env: "dev", level: "", want: zapcore.DebugLevel},
		{name: "production info", env: "production", level: "info", want: zapcore.InfoLevel},
		{name: "explicit warn", env: "dev", level: "warn", want: zapcore.WarnLevel},
		{name: "invalid level", env: "dev", level: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.env, tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !log.Core().Enabled(tt.want) {
				t.Errorf("level %v should be enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && log.Core().Enabled(tt.want-1) {
				t.Errorf("level %v should be disabled", tt.want-1)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name      string
		handler   echo.HandlerFunc
		wantCode  int
		wantLevel zapcore.Level
	}{
		{
			name: "success",
			handler: func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			},
			wantCode:  http.StatusOK,
			wantLevel: zapcore.InfoLevel,
		},
		{
			name: "client error",
			handler: func(c echo.Context) error {
				return echo.NewHTTPError(http.StatusBadRequest, "bad")
			},
			wantCode:  http.StatusBadRequest,
			wantLevel: zapcore.WarnLevel,
		},
		{
			name: "server error",
			handler: func(c echo.Context) error {
				return errors.New("boom")
			},
			wantCode:  http.StatusInternalServerError,
			wantLevel: zapcore.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := RequestLogger(zap.New(core))(tt.handler)
			if err := h(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 log entry, got %d", len(entries))
			}
			if entries[0].Level != tt.wantLevel {
				t.Errorf("level = %v, want %v", entries[0].Level, tt.wantLevel)
			}
			if entries[0].ContextMap()["path"] != "/api/invoices" {
				t.Errorf("unexpected path field: %v", entries[0].ContextMap()["path"])
			}
		})
	}
}
