package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
//
// Credentials are intentionally not validated here: a missing key fails the
// dependent operation at call time, not the whole process at startup, so the
// dashboard keeps working when only some integrations are configured.
type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	DB struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`
	N8n struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
	} `mapstructure:"n8n"`
	Anthropic struct {
		APIKey    string `mapstructure:"api_key"`
		Model     string `mapstructure:"model"`
		MaxTokens int    `mapstructure:"max_tokens"`
	} `mapstructure:"anthropic"`
}

// LoadConfig loads the configuration from an optional config file and the
// environment. Environment keys are upper-cased with dots replaced by
// underscores, e.g. N8N_BASE_URL, N8N_API_KEY, ANTHROPIC_API_KEY, DB_HOST.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A config file is optional; env-only deployments are fine.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// normalize the n8n base url so path joining is predictable
	config.N8n.BaseURL = strings.TrimRight(strings.TrimSpace(config.N8n.BaseURL), "/")

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.user", "postgres")
	viper.SetDefault("db.name", "n8n_copilot")
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	viper.SetDefault("anthropic.max_tokens", 8192)
}
