package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Guardrail GuardrailConfig `mapstructure:"guardrail"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GuardrailConfig struct {
	ModelTag            string          `mapstructure:"model_tag"`
	StageTimeout        time.Duration   `mapstructure:"stage_timeout"`
	SimilarityThreshold float64         `mapstructure:"similarity_threshold"`
	ToxicityThreshold   float64         `mapstructure:"toxicity_threshold"`
	OpenAIKey           string          `mapstructure:"openai_key"`
	RateLimit           RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var globalConfig Config

func Load(configPath string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := viper.Unmarshal(&globalConfig, decodeHook); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaultValues()

	return nil
}

func setDefaultValues() {
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8080
	}
	if globalConfig.Server.MetricsPort == 0 {
		globalConfig.Server.MetricsPort = 9090
	}
	if globalConfig.Database.SSLMode == "" {
		globalConfig.Database.SSLMode = "disable"
	}
	if globalConfig.Webhook.Timeout == 0 {
		globalConfig.Webhook.Timeout = 5 * time.Second
	}
	if globalConfig.Guardrail.ModelTag == "" {
		globalConfig.Guardrail.ModelTag = "guard-v2-composite"
	}
	if globalConfig.Guardrail.StageTimeout == 0 {
		globalConfig.Guardrail.StageTimeout = 10 * time.Second
	}
	if globalConfig.Guardrail.SimilarityThreshold == 0 {
		globalConfig.Guardrail.SimilarityThreshold = 0.75
	}
	if globalConfig.Guardrail.ToxicityThreshold == 0 {
		globalConfig.Guardrail.ToxicityThreshold = 0.7
	}
	if globalConfig.Guardrail.RateLimit.Limit == 0 {
		globalConfig.Guardrail.RateLimit.Limit = 5
	}
	if globalConfig.Guardrail.RateLimit.Window == 0 {
		globalConfig.Guardrail.RateLimit.Window = time.Minute
	}
}

func GetConfig() *Config {
	return &globalConfig
}
