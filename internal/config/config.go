package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	Environment string `env:"APP_ENV,default=dev"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	GinMode     string `env:"GIN_MODE,default=release"`

	// http server settings
	ListenAddr      string        `env:"LISTEN_ADDR"`
	Port            int           `env:"PORT,default=8080"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s"`
	SessionSecret   string        `env:"SESSION_SECRET,default=yasite-dev-secret"`
	SecureCookies   bool          `env:"SECURE_COOKIES,default=false"`

	DatabasePath string `env:"DATABASE_PATH,default=yasite.db"`

	HomeNewsCount      int `env:"NEWS_COUNT_ON_HOME_PAGE,default=10"`
	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE,default=10"`

	// 启动时确保存在的超级用户，留空则跳过
	SuperRootUserName string `env:"SUPER_ROOT_USER_NAME"`
	SuperRootPassword string `env:"SUPER_ROOT_PASSWORD"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

var validGinModes = map[string]bool{
	"debug":   true,
	"release": true,
	"test":    true,
}

// Load 从环境变量读取应用配置，并为缺失项提供默认值。
func Load() (*AppConfig, error) {
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return FromEnvSet(es)
}

// FromEnvSet decodes and validates cfg from an explicit variable set.
func FromEnvSet(es env.EnvSet) (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	cfg.normalize()
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *AppConfig) normalize() {
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.GinMode = strings.ToLower(strings.TrimSpace(cfg.GinMode))
	cfg.DatabasePath = strings.TrimSpace(cfg.DatabasePath)
	cfg.SessionSecret = strings.TrimSpace(cfg.SessionSecret)
	cfg.SuperRootUserName = strings.TrimSpace(cfg.SuperRootUserName)
	cfg.SuperRootPassword = strings.TrimSpace(cfg.SuperRootPassword)

	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%d", cfg.Port)
	}
}

// IsProduction reports whether secure defaults must be enforced.
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "prod"
}

func validateConfig(cfg *AppConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid APP_ENV: %s", cfg.Environment)
	}
	if !validGinModes[cfg.GinMode] {
		return fmt.Errorf("invalid GIN_MODE: %s", cfg.GinMode)
	}
	if cfg.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH must not be empty")
	}
	if cfg.HomeNewsCount < 1 {
		return fmt.Errorf("NEWS_COUNT_ON_HOME_PAGE must be at least 1, got %d", cfg.HomeNewsCount)
	}
	if cfg.LoginRatePerMinute < 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MINUTE must be 0 or greater")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if (cfg.SuperRootUserName == "") != (cfg.SuperRootPassword == "") {
		return fmt.Errorf("SUPER_ROOT_USER_NAME and SUPER_ROOT_PASSWORD must be set together")
	}
	if cfg.IsProduction() && (cfg.SessionSecret == "" || cfg.SessionSecret == "yasite-dev-secret") {
		return fmt.Errorf("SESSION_SECRET must be set in prod")
	}
	return nil
}
