package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DeploymentLocal = "local"
	DeploymentCloud = "cloud"

	GatewayDirect = "direct"
	GatewayBridge = "bridge"
)

type Config struct {
	UserID       string             `mapstructure:"user_id" validate:"required"`
	Timezone     string             `mapstructure:"timezone" validate:"required,timezone"`
	Deployment   string             `mapstructure:"deployment" validate:"oneof=local cloud"`
	Gateway      string             `mapstructure:"gateway" validate:"oneof=direct bridge"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Local        LocalConfig        `mapstructure:"local"`
	Bridge       BridgeConfig       `mapstructure:"bridge"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Sync         SyncConfig         `mapstructure:"sync"`
	Scheduling   SchedulingConfig   `mapstructure:"scheduling"`
	Gamification GamificationConfig `mapstructure:"gamification"`
	Log          LogConfig          `mapstructure:"log"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

// LocalConfig points at the SQLite database used by the local-first deployment.
type LocalConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type BridgeConfig struct {
	URL     string        `mapstructure:"url" validate:"omitempty,url"`
	Port    int           `mapstructure:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	// RedisURL enables the Redis layer of the per-user state store when set.
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type SyncConfig struct {
	ProbeInterval   time.Duration `mapstructure:"probe_interval"`
	ProbeAttempts   uint          `mapstructure:"probe_attempts" validate:"min=1"`
	OnlineCheckHost string        `mapstructure:"online_check_host"`
}

type SchedulingConfig struct {
	MasteryThreshold int    `mapstructure:"mastery_threshold" validate:"min=1"`
	ProfilesFile     string `mapstructure:"profiles_file" validate:"omitempty,file"`
}

type GamificationConfig struct {
	BasePoints       int           `mapstructure:"base_points" validate:"min=1"`
	ComboWindow      time.Duration `mapstructure:"combo_window"`
	ExperienceBase   float64       `mapstructure:"experience_base" validate:"gt=0"`
	ExperienceGrowth float64       `mapstructure:"experience_growth" validate:"gte=1"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// Location returns the time zone used to compute local calendar dates.
func (cfg Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/studytrack")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("user_id", "local")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("deployment", DeploymentLocal)
	v.SetDefault("gateway", GatewayDirect)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "studytrack")
	v.SetDefault("database.username", "user")
	v.SetDefault("local.path", filepath.Join("data", "studytrack.db"))
	v.SetDefault("bridge.url", "")
	v.SetDefault("bridge.port", 8765)
	v.SetDefault("bridge.timeout", 10*time.Second)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("sync.probe_interval", 30*time.Second)
	v.SetDefault("sync.probe_attempts", 3)
	v.SetDefault("sync.online_check_host", "")
	v.SetDefault("scheduling.mastery_threshold", 5)
	v.SetDefault("scheduling.profiles_file", "")
	v.SetDefault("gamification.base_points", 10)
	v.SetDefault("gamification.combo_window", 5*time.Minute)
	v.SetDefault("gamification.experience_base", 100.0)
	v.SetDefault("gamification.experience_growth", 1.5)
	v.SetDefault("log.level", "info")

	// Secrets come from the environment only
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("cache.redis_url", "STUDYTRACK_REDIS_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind STUDYTRACK_REDIS_URL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
