// Package config собирает настройки сервиса. Порядок, каждый следующий
// слой перекрывает предыдущий: значения по умолчанию, YAML файл, переменные
// окружения (включая .env), флаги командной строки.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/St1cky1/ticket-generator/internal/entity"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string         `yaml:"env"`
	HTTPAddr string         `yaml:"http_addr"`
	AMQPURL  string         `yaml:"amqp_url"`
	Session  SessionConfig  `yaml:"session"`
	Upload   UploadConfig   `yaml:"upload"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// SessionConfig - жизнь форм в памяти. При MaxSessions открытых формах
// новая вытесняет самую давно не использованную.
type SessionConfig struct {
	MaxIdle       time.Duration `yaml:"max_idle"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	MaxSessions   int           `yaml:"max_sessions"`
}

type UploadConfig struct {
	// MaxRequestBytes - предел тела запроса. Должен быть больше лимита
	// аватарки, иначе пользователь не увидит сообщение о размере.
	MaxRequestBytes int64 `yaml:"max_request_bytes"`
}

type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

func Default() Config {
	return Config{
		AppEnv:   "dev",
		HTTPAddr: ":8080",
		Session: SessionConfig{
			MaxIdle:       30 * time.Minute,
			SweepInterval: time.Minute,
			MaxSessions:   1000,
		},
		Upload: UploadConfig{
			MaxRequestBytes: 8 << 20,
		},
		Shutdown: ShutdownConfig{
			Timeout: 10 * time.Second,
		},
	}
}

// Load читает конфигурацию. args - аргументы без имени программы.
func Load(args []string) (Config, error) {
	// .env не обязателен
	_ = godotenv.Load(".env")

	cfg := Default()

	fs := pflag.NewFlagSet("ticket-generator", pflag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("TICKET_CONFIG"), "path to YAML config file")
	addr := fs.String("addr", "", "HTTP listen address")
	env := fs.String("env", "", "application environment (dev, prod)")
	amqpURL := fs.String("amqp-url", "", "RabbitMQ URL for ticket issued events, empty disables")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *configPath != "" {
		if err := loadFile(*configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if *env != "" {
		cfg.AppEnv = *env
	}
	if fs.Changed("amqp-url") {
		cfg.AMQPURL = *amqpURL
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.AppEnv = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		cfg.AMQPURL = v
	}
	if v := os.Getenv("SESSION_MAX_IDLE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_MAX_IDLE: %w", err)
		}
		cfg.Session.MaxIdle = d
	}
	if v := os.Getenv("SESSION_MAX_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_MAX_COUNT: %w", err)
		}
		cfg.Session.MaxSessions = n
	}
	if v := os.Getenv("MAX_REQUEST_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_REQUEST_BYTES: %w", err)
		}
		cfg.Upload.MaxRequestBytes = n
	}
	return nil
}

func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("http address is required")
	}
	if c.Session.MaxIdle <= 0 {
		return errors.New("session max idle must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return errors.New("session sweep interval must be positive")
	}
	if c.Session.MaxSessions <= 0 {
		return errors.New("session max sessions must be positive")
	}
	if c.Upload.MaxRequestBytes <= entity.MaxAvatarSize {
		return fmt.Errorf("max request bytes must exceed avatar limit %d", entity.MaxAvatarSize)
	}
	return nil
}
