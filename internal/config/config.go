package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
)

type RuntimeConfig struct {
	Provider string      `json:"provider"`
	Data     interface{} `json:"data"`
}

type SemanticConfig struct {
	Labels        []string `json:"labels"`
	CacheSize     int      `json:"cache_size"`
	RehydrateCron string   `json:"rehydrate_cron"`
}

type Config struct {
	DBPath    string           `json:"db_path"`
	Port      int              `json:"port"`
	CORSAllow []string         `json:"cors_allow"`
	LogConfig logger.LogConfig `json:"log_config"`
	Runtime   RuntimeConfig    `json:"runtime"`
	Semantic  SemanticConfig   `json:"semantic"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db_path is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 9077
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Runtime.Provider == "" {
		cfg.Runtime.Provider = "ollama"
	}
	applyRuntimeEnv(&cfg)
	if cfg.Semantic.CacheSize <= 0 {
		cfg.Semantic.CacheSize = 4096
	}
	if cfg.Semantic.RehydrateCron == "" {
		cfg.Semantic.RehydrateCron = "*/10 * * * *"
	}
	return &cfg, nil
}

// applyRuntimeEnv lets the runtime endpoint and model be overridden without
// editing the config file, which is how the local runtime usually moves
// between machines. The data map is always materialized so the provider
// factory can rely on a decodable config.
func applyRuntimeEnv(cfg *Config) {
	data, _ := cfg.Runtime.Data.(map[string]interface{})
	if data == nil {
		data = map[string]interface{}{}
	}
	if host := os.Getenv("PROMPTDECK_RUNTIME_HOST"); host != "" {
		data["host"] = host
	}
	if model := os.Getenv("PROMPTDECK_RUNTIME_MODEL"); model != "" {
		data["model"] = model
	}
	cfg.Runtime.Data = data
}
