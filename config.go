package msglog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Station-Manager/errors"
	"gopkg.in/yaml.v3"
)

// Config describes a complete logging setup for Service.
type Config struct {
	// Levels maps level names to ranks; the default level set is used when empty.
	Levels       map[string]int `yaml:"levels" json:"levels" toml:"levels" validate:"omitempty,dive,keys,required,endkeys,gte=0"`
	DefaultLevel string         `yaml:"default_level" json:"default_level" toml:"default_level"`
	Threshold    string         `yaml:"threshold" json:"threshold" toml:"threshold"`
	// Styles is one of ansi, plain or auto.
	Styles  string `yaml:"styles" json:"styles" toml:"styles" validate:"omitempty,oneof=ansi plain auto"`
	TabSize int    `yaml:"tab_size" json:"tab_size" toml:"tab_size" validate:"gte=0"`
	Emitter string `yaml:"emitter" json:"emitter" toml:"emitter"`

	Console ConsoleConfig `yaml:"console" json:"console" toml:"console"`
	File    FileConfig    `yaml:"file" json:"file" toml:"file"`
	Loggly  LogglyConfig  `yaml:"loggly" json:"loggly" toml:"loggly"`
	Redis   RedisConfig   `yaml:"redis" json:"redis" toml:"redis"`
}

// ConsoleConfig controls terminal output.
type ConsoleConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`
	// Format is text (styled lines), json or pretty (zerolog console writer).
	Format string `yaml:"format" json:"format" toml:"format" validate:"omitempty,oneof=text json pretty"`
	Stdout bool   `yaml:"stdout" json:"stdout" toml:"stdout"`
}

// FileConfig controls the rolling log file.
type FileConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`
	// Dir is relative to the service working directory unless absolute.
	Dir string `yaml:"dir" json:"dir" toml:"dir"`
	// Name defaults to the executable name.
	Name       string `yaml:"name" json:"name" toml:"name"`
	Format     string `yaml:"format" json:"format" toml:"format" validate:"omitempty,oneof=text json"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb" toml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" toml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days" toml:"max_age_days" validate:"gte=0"`
}

// LogglyConfig controls the buffered Loggly HTTP sink.
type LogglyConfig struct {
	Enabled bool     `yaml:"enabled" json:"enabled" toml:"enabled"`
	Token   string   `yaml:"token" json:"token" toml:"token" validate:"required_if=Enabled true"`
	Tags    []string `yaml:"tags" json:"tags" toml:"tags"`
	URL     string   `yaml:"url" json:"url" toml:"url" validate:"omitempty,url"`
	// BatchSize records trigger an immediate flush.
	BatchSize int `yaml:"batch_size" json:"batch_size" toml:"batch_size" validate:"gte=0"`
	// MaxBuffer records may wait for delivery; more are dropped.
	MaxBuffer       int `yaml:"max_buffer" json:"max_buffer" toml:"max_buffer" validate:"gte=0"`
	FlushIntervalMS int `yaml:"flush_interval_ms" json:"flush_interval_ms" toml:"flush_interval_ms" validate:"gte=0"`
	TimeoutMS       int `yaml:"timeout_ms" json:"timeout_ms" toml:"timeout_ms" validate:"gte=0"`
}

// RedisConfig controls the Redis list sink.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled" toml:"enabled"`
	Addr     string `yaml:"addr" json:"addr" toml:"addr" validate:"required_if=Enabled true"`
	Password string `yaml:"password" json:"password" toml:"password"`
	DB       int    `yaml:"db" json:"db" toml:"db" validate:"gte=0"`
	Key      string `yaml:"key" json:"key" toml:"key"`
}

// DefaultConfig logs styled text to stderr at the default level.
func DefaultConfig() Config {
	return Config{
		DefaultLevel: DefaultLevel,
		Styles:       StylesAuto,
		TabSize:      DefaultTabSize,
		Console: ConsoleConfig{
			Enabled: true,
			Format:  FormatText,
		},
		File: FileConfig{
			Dir:        "logs",
			Format:     FormatJSON,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Loggly: LogglyConfig{
			URL:             DefaultLogglyURL,
			BatchSize:       100,
			MaxBuffer:       1000,
			FlushIntervalMS: 5000,
			TimeoutMS:       3000,
		},
		Redis: RedisConfig{
			Key: "msglog",
		},
	}
}

// Output formats.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// LevelSet builds the configured level set.
func (c *Config) LevelSet() (*LevelSet, error) {
	if len(c.Levels) == 0 {
		if c.DefaultLevel == emptyString || c.DefaultLevel == DefaultLevel {
			return DefaultLevels(), nil
		}
		return NewLevelSet(DefaultLevels().asMap(), c.DefaultLevel)
	}
	return NewLevelSet(c.Levels, c.DefaultLevel)
}

// LoadConfig reads a .yaml/.yml, .json or .toml file over DefaultConfig.
// ${VAR} and ${VAR:-default} references are expanded from the environment
// before parsing.
func LoadConfig(path string) (*Config, error) {
	const op errors.Op = "msglog.LoadConfig"
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgLoadConfig)
	}
	expanded := []byte(expandEnvVars(string(content)))

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(expanded, &cfg)
	case ".json":
		err = json.Unmarshal(expanded, &cfg)
	case ".toml":
		err = toml.Unmarshal(expanded, &cfg)
	default:
		return nil, errors.New(op).Msg(errMsgUnsupportedConf + " (" + path + ")")
	}
	if err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgLoadConfig)
	}

	if err = validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expandEnvVars replaces $VAR, ${VAR} and ${VAR:-default}.
func expandEnvVars(content string) string {
	return os.Expand(content, func(name string) string {
		if key, def, ok := strings.Cut(name, ":-"); ok {
			if v, set := os.LookupEnv(key); set && v != emptyString {
				return v
			}
			return def
		}
		return os.Getenv(name)
	})
}
