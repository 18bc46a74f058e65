package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret          = "default-secret-change-in-production"
	defaultImportMaxFileBytes = 2 << 20
	defaultImportMaxRows      = 1000
	defaultImportTimeout      = 30 * time.Second
	defaultSMTPPort           = 587
)

// Config содержит конфигурацию приложения.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	TokenExpiration time.Duration
	// Код приглашения для регистрации сотрудников. Пусто - только поставщики.
	StaffInviteCode string

	LogLevel string
	Env      string

	ImportMaxFileBytes int64
	ImportMaxRows      int
	ImportTimeout      time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	DocumentsBucket string
	S3Endpoint      string
}

// MailEnabled сообщает, настроена ли отправка почты.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}

// DocumentsEnabled сообщает, настроено ли хранилище документов.
func (c *Config) DocumentsEnabled() bool {
	return c.DocumentsBucket != ""
}

// IsProduction сообщает, запущен ли сервис в боевом окружении.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Load загружает конфигурацию из флагов командной строки и переменных окружения.
// Приоритет: переменные окружения > флаги > значения по умолчанию.
// Файл .env, если он есть, подгружается в окружение до разбора.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "адрес и порт запуска сервиса")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "строка подключения к PostgreSQL")
	flag.DurationVar(&cfg.TokenExpiration, "t", 24*time.Hour, "время жизни JWT токена")
	flag.StringVar(&cfg.LogLevel, "l", "info", "уровень логирования")
	flag.Parse()

	if envRunAddr := os.Getenv("RUN_ADDRESS"); envRunAddr != "" {
		cfg.RunAddress = envRunAddr
	}
	if envDBURI := os.Getenv("DATABASE_URI"); envDBURI != "" {
		cfg.DatabaseURI = envDBURI
	}
	if envTokenExp := os.Getenv("TOKEN_EXPIRATION"); envTokenExp != "" {
		if d, err := time.ParseDuration(envTokenExp); err == nil {
			cfg.TokenExpiration = d
		}
	}
	if envLogLevel := os.Getenv("LOG_LEVEL"); envLogLevel != "" {
		cfg.LogLevel = envLogLevel
	}

	// JWT секрет
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret
	}

	cfg.StaffInviteCode = os.Getenv("STAFF_INVITE_CODE")

	cfg.Env = getEnv("APP_ENV", "dev")

	// Ограничения импорта
	cfg.ImportMaxFileBytes = int64(getEnvInt("IMPORT_MAX_FILE_BYTES", defaultImportMaxFileBytes))
	cfg.ImportMaxRows = getEnvInt("IMPORT_MAX_ROWS", defaultImportMaxRows)
	cfg.ImportTimeout = getEnvDuration("IMPORT_TIMEOUT", defaultImportTimeout)

	// Почта
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPPort = getEnvInt("SMTP_PORT", defaultSMTPPort)
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPass = os.Getenv("SMTP_PASS")
	cfg.MailFrom = getEnv("MAIL_FROM", cfg.SMTPUser)

	// Хранилище документов
	cfg.DocumentsBucket = os.Getenv("DOCUMENTS_BUCKET")
	cfg.S3Endpoint = os.Getenv("AWS_S3_ENDPOINT")

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
