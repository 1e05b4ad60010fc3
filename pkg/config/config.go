package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type TransportConfig struct {
	Type string     `mapstructure:"type"` // "stdio" or "sse"
	Host string     `mapstructure:"host"`
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig applies to the sse transport only.
type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

type WorkflowsConfig struct {
	// DefinitionsPath optionally points to a YAML file with extra
	// workflow definitions loaded alongside the built-in plugins.
	DefinitionsPath string `mapstructure:"definitions_path"`
}

type ServerConfig struct {
	Transport       TransportConfig `mapstructure:"transport"`
	LogLevel        string          `mapstructure:"log_level"`
	LogFormat       string          `mapstructure:"log_format"`
	Timeout         time.Duration   `mapstructure:"timeout"`
	Redis           RedisConfig     `mapstructure:"redis"`
	LLM             LLMConfig       `mapstructure:"llm"`
	Workflows       WorkflowsConfig `mapstructure:"workflows"`
	DefaultLanguage string          `mapstructure:"default_language"`
}

func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Transport: TransportConfig{
			Type: "stdio",
			Host: "localhost",
			Port: 8080,
			CORS: CORSConfig{
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "Authorization"},
				MaxAge:         300,
			},
		},
		LogLevel:  "info",
		LogFormat: "json",
		Timeout:   30 * time.Second,
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "airdesk",
			TTL:    24 * time.Hour,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
		},
		DefaultLanguage: "en-US",
	}
}

func LoadConfig() (*ServerConfig, error) {
	config := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/airdesk/")
	viper.AddConfigPath("$HOME/.airdesk/")

	viper.SetEnvPrefix("AIRDESK")
	viper.AutomaticEnv()

	// Server configuration defaults
	viper.SetDefault("transport.type", config.Transport.Type)
	viper.SetDefault("transport.host", config.Transport.Host)
	viper.SetDefault("transport.port", config.Transport.Port)
	viper.SetDefault("transport.cors.enabled", config.Transport.CORS.Enabled)
	viper.SetDefault("transport.cors.allowed_origins", config.Transport.CORS.AllowedOrigins)
	viper.SetDefault("transport.cors.allowed_methods", config.Transport.CORS.AllowedMethods)
	viper.SetDefault("transport.cors.allowed_headers", config.Transport.CORS.AllowedHeaders)
	viper.SetDefault("transport.cors.max_age", config.Transport.CORS.MaxAge)
	viper.SetDefault("log_level", config.LogLevel)
	viper.SetDefault("log_format", config.LogFormat)
	viper.SetDefault("timeout", config.Timeout)
	viper.SetDefault("default_language", config.DefaultLanguage)

	// Conversation store defaults
	viper.SetDefault("redis.addr", config.Redis.Addr)
	viper.SetDefault("redis.password", config.Redis.Password)
	viper.SetDefault("redis.db", config.Redis.DB)
	viper.SetDefault("redis.prefix", config.Redis.Prefix)
	viper.SetDefault("redis.ttl", config.Redis.TTL)

	// LLM collaborator defaults
	viper.SetDefault("llm.api_key", config.LLM.APIKey)
	viper.SetDefault("llm.base_url", config.LLM.BaseURL)
	viper.SetDefault("llm.model", config.LLM.Model)
	viper.SetDefault("llm.temperature", config.LLM.Temperature)

	// Workflow definition defaults
	viper.SetDefault("workflows.definitions_path", config.Workflows.DefinitionsPath)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func validateConfig(config *ServerConfig) error {
	switch config.Transport.Type {
	case "stdio", "sse":
	default:
		return fmt.Errorf("invalid transport type: %s", config.Transport.Type)
	}

	if config.Transport.Port <= 0 || config.Transport.Port > 65535 {
		return fmt.Errorf("the port must be between 1 and 65535")
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("the timeout must be positive")
	}

	if config.Redis.Addr == "" {
		return fmt.Errorf("the redis address cannot be empty")
	}

	if config.Redis.TTL <= 0 {
		return fmt.Errorf("the conversation TTL must be positive")
	}

	if config.LLM.Model == "" {
		return fmt.Errorf("the LLM model cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	validLogFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validLogFormats[config.LogFormat] {
		return fmt.Errorf("invalid log format: %s", config.LogFormat)
	}

	return nil
}
