package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the data directory.
const FileName = "themeplane.config"

type Config struct {
	DataDir     string          `json:"data_dir" mapstructure:"data_dir"`
	ListenAddr  string          `json:"listen_addr" mapstructure:"listen_addr"`
	ClassPrefix string          `json:"class_prefix" mapstructure:"class_prefix"`
	TextTones   bool            `json:"text_tones" mapstructure:"text_tones"`
	Logging     LoggingConfig   `json:"logging" mapstructure:"logging"`
	Cache       CacheConfig     `json:"cache" mapstructure:"cache"`
	RateLimit   RateLimitConfig `json:"rate_limit" mapstructure:"rate_limit"`
}

type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

type CacheConfig struct {
	TTL        Duration `json:"ttl" mapstructure:"ttl"`
	SweepEvery Duration `json:"sweep_every" mapstructure:"sweep_every"`
	MaxEntries int      `json:"max_entries" mapstructure:"max_entries"`
}

type RateLimitConfig struct {
	RPS   float64 `json:"rps" mapstructure:"rps"`
	Burst int     `json:"burst" mapstructure:"burst"`
}

// Duration is a time.Duration written as a Go duration string ("10m").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func Default() Config {
	return Config{
		DataDir:     ".",
		ListenAddr:  ":8080",
		ClassPrefix: "mdc-theme--",
		TextTones:   false,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			TTL:        Duration(10 * time.Minute),
			SweepEvery: Duration(time.Minute),
			MaxEntries: 1024,
		},
		RateLimit: RateLimitConfig{
			RPS:   20,
			Burst: 40,
		},
	}
}

// NewViper returns a viper instance seeded with defaults and bound to
// THEMEPLANE_* environment variables (e.g. THEMEPLANE_LOGGING_LEVEL).
func NewViper() *viper.Viper {
	def := Default()
	v := viper.New()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("listen_addr", def.ListenAddr)
	v.SetDefault("class_prefix", def.ClassPrefix)
	v.SetDefault("text_tones", def.TextTones)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("cache.ttl", time.Duration(def.Cache.TTL).String())
	v.SetDefault("cache.sweep_every", time.Duration(def.Cache.SweepEvery).String())
	v.SetDefault("cache.max_entries", def.Cache.MaxEntries)
	v.SetDefault("rate_limit.rps", def.RateLimit.RPS)
	v.SetDefault("rate_limit.burst", def.RateLimit.Burst)

	v.SetEnvPrefix("themeplane")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads <dataDir>/themeplane.config. A missing file yields the
// defaults; environment variables override both.
func Load(dataDir string) (Config, *viper.Viper, error) {
	v := NewViper()
	v.SetConfigFile(filepath.Join(dataDir, FileName))
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, v, nil
}

func decode(v *viper.Viper) (Config, error) {
	def := Default()
	cfg := Config{
		DataDir:     v.GetString("data_dir"),
		ListenAddr:  v.GetString("listen_addr"),
		ClassPrefix: v.GetString("class_prefix"),
		TextTones:   v.GetBool("text_tones"),
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Cache: CacheConfig{
			TTL:        Duration(v.GetDuration("cache.ttl")),
			SweepEvery: Duration(v.GetDuration("cache.sweep_every")),
			MaxEntries: v.GetInt("cache.max_entries"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("rate_limit.rps"),
			Burst: v.GetInt("rate_limit.burst"),
		},
	}

	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}
	if cfg.ClassPrefix == "" {
		cfg.ClassPrefix = def.ClassPrefix
	}
	if cfg.RateLimit.RPS < 0 || cfg.RateLimit.Burst < 0 {
		return Config{}, fmt.Errorf("rate_limit values must not be negative")
	}
	return cfg, nil
}

// Save writes cfg to <cfg.DataDir>/themeplane.config atomically.
func Save(cfg Config) error {
	cfgPath := filepath.Join(cfg.DataDir, FileName)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	tmp := cfgPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, cfgPath)
}
