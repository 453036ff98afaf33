package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Enabled reports whether credentials are present; without them mail is logged only.
func (c SMTPConfig) Enabled() bool {
	return c.User != "" && c.Password != ""
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type Config struct {
	Port            int        `yaml:"port"`
	DatabaseURL     string     `yaml:"database_url"`
	JWTSecret       string     `yaml:"jwt_secret"`
	SMTP            SMTPConfig `yaml:"smtp"`
	FrontendBaseURL string     `yaml:"frontend_base_url"`
	UploadDir       string     `yaml:"upload_dir"`
	QRS3            S3Config   `yaml:"qr_s3"`
	CORSOrigins     []string   `yaml:"cors_allowed_origins"`

	// StateBackend selects where OTP codes and lockouts live: "memory" or "postgres".
	StateBackend          string `yaml:"state_backend"`
	StateSweepSeconds     int    `yaml:"state_sweep_interval_seconds"`
	LockoutRetentionHours int    `yaml:"lockout_retention_hours"`
	ResetLockoutOnLogin   bool   `yaml:"reset_lockout_on_login"`
	AutoMigrate           bool   `yaml:"auto_migrate"`

	LogFormat string `yaml:"log_format"`
	LogLevel  string `yaml:"log_level"`
}

func defaults() Config {
	return Config{
		Port:                  5000,
		SMTP:                  SMTPConfig{Host: "smtp.gmail.com", Port: 465},
		FrontendBaseURL:       "http://localhost:5173",
		UploadDir:             "uploads",
		StateBackend:          "memory",
		StateSweepSeconds:     60,
		LockoutRetentionHours: 24,
		LogFormat:             "json",
		LogLevel:              "info",
	}
}

// Load reads .env (if present), then the YAML file named by REGISTRAR_CONFIG
// (if set), then environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("REGISTRAR_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&cfg.DatabaseURL, "REGISTRAR_DATABASE_URL", "DATABASE_URL")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setString(&cfg.SMTP.User, "EMAIL_USER")
	setString(&cfg.SMTP.Password, "EMAIL_PASS")
	setString(&cfg.FrontendBaseURL, "FRONTEND_BASE_URL")
	setString(&cfg.UploadDir, "UPLOAD_DIR")
	setString(&cfg.QRS3.Bucket, "QR_S3_BUCKET")
	setString(&cfg.QRS3.Region, "QR_S3_REGION")
	setString(&cfg.QRS3.Endpoint, "QR_S3_ENDPOINT")
	setString(&cfg.QRS3.AccessKey, "QR_S3_ACCESS_KEY")
	setString(&cfg.QRS3.SecretKey, "QR_S3_SECRET_KEY")
	setString(&cfg.StateBackend, "STATE_BACKEND")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("REGISTRAR_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p < 65536 {
			cfg.Port = p
		}
	}

	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p < 65536 {
			cfg.SMTP.Port = p
		}
	}

	if v := os.Getenv("STATE_SWEEP_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.StateSweepSeconds = n
		}
	}

	if v := os.Getenv("LOCKOUT_RETENTION_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LockoutRetentionHours = n
		}
	}

	if v := os.Getenv("RESET_LOCKOUT_ON_LOGIN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ResetLockoutOnLogin = b
		}
	}

	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AutoMigrate = b
		}
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.StateBackend {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("state_backend postgres requires a database url")
		}
	default:
		return fmt.Errorf("unknown state_backend %q", c.StateBackend)
	}
	if c.FrontendBaseURL == "" {
		return fmt.Errorf("frontend_base_url is required")
	}
	if !c.QRS3.Enabled() && c.UploadDir == "" {
		return fmt.Errorf("upload_dir is required when no QR bucket is configured")
	}
	return nil
}

func (c Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.StateSweepSeconds) * time.Second
}

func (c Config) LockoutRetention() time.Duration {
	return time.Duration(c.LockoutRetentionHours) * time.Hour
}
