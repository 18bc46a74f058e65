package config

import (
	"flag"
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Сохраняем оригинальные значения для восстановления
	originalArgs := os.Args
	originalEnv := make(map[string]string)
	envVars := []string{"RUN_ADDRESS", "DATABASE_URI", "LOG_LEVEL", "JWT_SECRET", "TOKEN_EXPIRATION"}
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
	}

	// Восстанавливаем после всех тестов
	defer func() {
		os.Args = originalArgs
		for key, value := range originalEnv {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
		flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	}()

	tests := []struct {
		name         string
		args         []string
		envVars      map[string]string
		wantAddress  string
		wantDBURI    string
		wantLogLevel string
		wantSecret   string
		wantTokenExp time.Duration
	}{
		{
			name:         "default values",
			args:         []string{"cmd"},
			envVars:      map[string]string{},
			wantAddress:  "localhost:8080",
			wantDBURI:    "",
			wantLogLevel: "info",
			wantSecret:   "default-secret-change-in-production",
			wantTokenExp: 24 * time.Hour,
		},
		{
			name:         "flags only",
			args:         []string{"cmd", "-a", "localhost:9090", "-d", "postgresql://db", "-l", "debug", "-t", "36h"},
			envVars:      map[string]string{},
			wantAddress:  "localhost:9090",
			wantDBURI:    "postgresql://db",
			wantLogLevel: "debug",
			wantSecret:   "default-secret-change-in-production",
			wantTokenExp: 36 * time.Hour,
		},
		{
			name: "env only",
			args: []string{"cmd"},
			envVars: map[string]string{
				"RUN_ADDRESS":      "localhost:7070",
				"DATABASE_URI":     "postgresql://envdb",
				"LOG_LEVEL":        "warn",
				"JWT_SECRET":       "env-secret",
				"TOKEN_EXPIRATION": "48h",
			},
			wantAddress:  "localhost:7070",
			wantDBURI:    "postgresql://envdb",
			wantLogLevel: "warn",
			wantSecret:   "env-secret",
			wantTokenExp: 48 * time.Hour,
		},
		{
			name: "env overrides flags",
			args: []string{"cmd", "-a", "localhost:9090", "-d", "postgresql://flagdb", "-l", "debug", "-t", "72h"},
			envVars: map[string]string{
				"RUN_ADDRESS":      "localhost:7070",
				"DATABASE_URI":     "postgresql://envdb",
				"LOG_LEVEL":        "error",
				"TOKEN_EXPIRATION": "12h",
			},
			wantAddress:  "localhost:7070",
			wantDBURI:    "postgresql://envdb",
			wantLogLevel: "error",
			wantSecret:   "default-secret-change-in-production",
			wantTokenExp: 12 * time.Hour,
		},
		{
			name: "partial env",
			args: []string{"cmd", "-a", "localhost:9090", "-d", "postgresql://flagdb"},
			envVars: map[string]string{
				"RUN_ADDRESS": "localhost:7070",
				"JWT_SECRET":  "custom-secret",
			},
			wantAddress:  "localhost:7070",
			wantDBURI:    "postgresql://flagdb",
			wantLogLevel: "info",
			wantSecret:   "custom-secret",
			wantTokenExp: 24 * time.Hour,
		},
		{
			name: "invalid token expiration env fallback",
			args: []string{"cmd"},
			envVars: map[string]string{
				"TOKEN_EXPIRATION": "invalid",
			},
			wantAddress:  "localhost:8080",
			wantDBURI:    "",
			wantLogLevel: "info",
			wantSecret:   "default-secret-change-in-production",
			wantTokenExp: 24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Очищаем env переменные
			for _, key := range envVars {
				os.Unsetenv(key)
			}

			// Устанавливаем env переменные для теста
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			// Устанавливаем аргументы командной строки
			os.Args = tt.args

			// Сбрасываем флаги
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			// Загружаем конфигурацию
			cfg := Load()

			// Проверяем результаты
			if cfg.RunAddress != tt.wantAddress {
				t.Errorf("RunAddress = %v, want %v", cfg.RunAddress, tt.wantAddress)
			}
			if cfg.DatabaseURI != tt.wantDBURI {
				t.Errorf("DatabaseURI = %v, want %v", cfg.DatabaseURI, tt.wantDBURI)
			}
			if cfg.LogLevel != tt.wantLogLevel {
				t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, tt.wantLogLevel)
			}
			if cfg.JWTSecret != tt.wantSecret {
				t.Errorf("JWTSecret = %v, want %v", cfg.JWTSecret, tt.wantSecret)
			}
			if cfg.TokenExpiration != tt.wantTokenExp {
				t.Errorf("TokenExpiration = %v, want %v", cfg.TokenExpiration, tt.wantTokenExp)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	// Очищаем env
	envVars := []string{"RUN_ADDRESS", "DATABASE_URI", "LOG_LEVEL", "JWT_SECRET", "TOKEN_EXPIRATION"}
	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
	}()

	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	os.Args = []string{"cmd"}
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	cfg := Load()

	if cfg.RunAddress != "localhost:8080" {
		t.Errorf("Expected default RunAddress 'localhost:8080', got %v", cfg.RunAddress)
	}
	if cfg.DatabaseURI != "" {
		t.Errorf("Expected empty DatabaseURI, got %v", cfg.DatabaseURI)
	}
	if cfg.TokenExpiration != 24*time.Hour {
		t.Errorf("Expected TokenExpiration 24h, got %v", cfg.TokenExpiration)
	}
	if cfg.JWTSecret != "default-secret-change-in-production" {
		t.Errorf("Expected default JWT secret, got %v", cfg.JWTSecret)
	}
}

func TestJWTSecretPriority(t *testing.T) {
	originalEnv := os.Getenv("JWT_SECRET")
	defer func() {
		if originalEnv == "" {
			os.Unsetenv("JWT_SECRET")
		} else {
			os.Setenv("JWT_SECRET", originalEnv)
		}
	}()

	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	tests := []struct {
		name       string
		envSecret  string
		wantSecret string
	}{
		{
			name:       "env JWT secret set",
			envSecret:  "custom-jwt-secret",
			wantSecret: "custom-jwt-secret",
		},
		{
			name:       "env JWT secret empty",
			envSecret:  "",
			wantSecret: "default-secret-change-in-production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSecret == "" {
				os.Unsetenv("JWT_SECRET")
			} else {
				os.Setenv("JWT_SECRET", tt.envSecret)
			}

			os.Args = []string{"cmd"}
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			cfg := Load()

			if cfg.JWTSecret != tt.wantSecret {
				t.Errorf("JWTSecret = %v, want %v", cfg.JWTSecret, tt.wantSecret)
			}
		})
	}
}

func TestImportAndIntegrationSettings(t *testing.T) {
	envVars := []string{
		"IMPORT_MAX_FILE_BYTES", "IMPORT_MAX_ROWS", "IMPORT_TIMEOUT",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "MAIL_FROM", "DOCUMENTS_BUCKET", "APP_ENV",
		"STAFF_INVITE_CODE",
	}
	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
	}()

	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	t.Run("defaults", func(t *testing.T) {
		os.Args = []string{"cmd"}
		flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

		cfg := Load()

		if cfg.ImportMaxFileBytes != 2*1024*1024 {
			t.Errorf("ImportMaxFileBytes = %d, want 2 MiB", cfg.ImportMaxFileBytes)
		}
		if cfg.ImportMaxRows != 1000 {
			t.Errorf("ImportMaxRows = %d, want 1000", cfg.ImportMaxRows)
		}
		if cfg.ImportTimeout != 30*time.Second {
			t.Errorf("ImportTimeout = %v, want 30s", cfg.ImportTimeout)
		}
		if cfg.SMTPPort != 587 {
			t.Errorf("SMTPPort = %d, want 587", cfg.SMTPPort)
		}
		if cfg.MailEnabled() || cfg.DocumentsEnabled() || cfg.IsProduction() {
			t.Error("optional integrations must be disabled by default")
		}
		if cfg.StaffInviteCode != "" {
			t.Errorf("StaffInviteCode = %q, want empty", cfg.StaffInviteCode)
		}
	})

	t.Run("env values", func(t *testing.T) {
		os.Setenv("IMPORT_MAX_ROWS", "50")
		os.Setenv("IMPORT_TIMEOUT", "5s")
		os.Setenv("SMTP_HOST", "smtp.example.com")
		os.Setenv("SMTP_USER", "noreply@example.com")
		os.Setenv("DOCUMENTS_BUCKET", "invoices")
		os.Setenv("APP_ENV", "production")
		os.Setenv("STAFF_INVITE_CODE", "acc-2026")

		os.Args = []string{"cmd"}
		flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

		cfg := Load()

		if cfg.ImportMaxRows != 50 {
			t.Errorf("ImportMaxRows = %d, want 50", cfg.ImportMaxRows)
		}
		if cfg.ImportTimeout != 5*time.Second {
			t.Errorf("ImportTimeout = %v, want 5s", cfg.ImportTimeout)
		}
		if cfg.MailFrom != "noreply@example.com" {
			t.Errorf("MailFrom = %q, want SMTP user as fallback", cfg.MailFrom)
		}
		if !cfg.MailEnabled() || !cfg.DocumentsEnabled() || !cfg.IsProduction() {
			t.Error("expected mail, documents and production mode to be enabled")
		}
		if cfg.StaffInviteCode != "acc-2026" {
			t.Errorf("StaffInviteCode = %q, want acc-2026", cfg.StaffInviteCode)
		}
	})

	t.Run("invalid numbers fall back to defaults", func(t *testing.T) {
		os.Setenv("IMPORT_MAX_ROWS", "many")
		os.Setenv("IMPORT_TIMEOUT", "-1s")

		os.Args = []string{"cmd"}
		flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

		cfg := Load()

		if cfg.ImportMaxRows != 1000 {
			t.Errorf("ImportMaxRows = %d, want 1000", cfg.ImportMaxRows)
		}
		if cfg.ImportTimeout != 30*time.Second {
			t.Errorf("ImportTimeout = %v, want 30s", cfg.ImportTimeout)
		}
	})
}
