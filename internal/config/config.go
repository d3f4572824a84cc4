package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sir_venger/media_lite/internal/logger"
)

// ByteSize — размер в байтах; в YAML задаётся числом или строкой вида "8MiB".
type ByteSize int64

func (b *ByteSize) UnmarshalYAML(n *yaml.Node) error {
	var raw string
	if err := n.Decode(&raw); err != nil {
		return err
	}
	v, err := humanize.ParseBytes(raw)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", raw, err)
	}
	*b = ByteSize(v)
	return nil
}

func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

type Config struct {
	ListenAddr      string        `yaml:"listen_addr" json:"listen_addr" validate:"required"`
	Transport       string        `yaml:"transport" json:"transport" validate:"oneof=chi stdmux"`
	MediaRoot       string        `yaml:"media_root" json:"media_root" validate:"required"`
	TempDir         string        `yaml:"temp_dir" json:"temp_dir"`
	CatalogDSN      string        `yaml:"catalog_dsn" json:"catalog_dsn"`
	CopyChunkSize   ByteSize      `yaml:"copy_chunk_size" json:"copy_chunk_size" validate:"gt=0"`
	ReadChunkSize   ByteSize      `yaml:"read_chunk_size" json:"read_chunk_size" validate:"gt=0"`
	InlineThreshold ByteSize      `yaml:"inline_threshold" json:"inline_threshold" validate:"gte=0"`
	MaxFieldSize    ByteSize      `yaml:"max_field_size" json:"max_field_size" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"gt=0"`
	GCTTL           time.Duration `yaml:"gc_ttl" json:"gc_ttl" validate:"gte=0"`
	GCInterval      time.Duration `yaml:"gc_interval" json:"gc_interval" validate:"gte=0"`
	Log             logger.Config `yaml:"log" json:"log"`
}

// Default возвращает конфигурацию, с которой сервис стартует без файла.
func Default() *Config {
	return &Config{
		ListenAddr:      ":8080",
		Transport:       "chi",
		MediaRoot:       "./media",
		CatalogDSN:      "memory://",
		CopyChunkSize:   8 << 20,
		ReadChunkSize:   64 << 10,
		InlineThreshold: 1 << 20,
		MaxFieldSize:    10 << 20,
		ShutdownTimeout: 15 * time.Second,
		GCTTL:           24 * time.Hour,
		GCInterval:      time.Hour,
		Log: logger.Config{
			Level:  "INFO",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load читает YAML-конфигурацию, применяет ENV-переопределения и возвращает актуальную структуру.
// Отсутствующий файл не ошибка: используются значения по умолчанию.
func Load() (*Config, error) {
	return LoadFile(getenv("CONFIG_PATH", "./config.yaml"))
}

func LoadFile(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err = yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	// ENV override
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("MEDIA_ROOT"); v != "" {
		c.MediaRoot = v
	}
	if v := os.Getenv("CATALOG_DSN"); v != "" {
		c.CatalogDSN = v
	}
	if v := os.Getenv("TRANSPORT"); v != "" {
		c.Transport = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}

	if err = Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate проверяет теги validate у конфигурации.
func Validate(c *Config) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}
