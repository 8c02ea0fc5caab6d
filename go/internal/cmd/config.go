package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	NATS struct {
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`

	Game struct {
		Password          string `yaml:"password"`
		CooldownMinutes   int    `yaml:"cooldown_minutes"`
		DefaultWhiteCodes int    `yaml:"default_white_codes"`
		DefaultRedCodes   int    `yaml:"default_red_codes"`
		DefaultMinutes    int    `yaml:"default_minutes"`
	} `yaml:"game"`
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// loadConfig reads the YAML config file, falling back to defaults when
// the file does not exist. Environment variables override afterwards.
func loadConfig(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if config.Server.Port == "" {
		config.Server.Port = getEnv("PORT", "8000")
	}
	if config.NATS.URL == "" {
		config.NATS.URL = os.Getenv("NATS_URL")
	}
	if config.NATS.SubjectPrefix == "" {
		config.NATS.SubjectPrefix = "saper.events"
	}
	if config.Game.Password == "" {
		config.Game.Password = getEnv("GAME_PASSWORD", "SAPEREVENT")
	}
	if config.Game.CooldownMinutes <= 0 {
		config.Game.CooldownMinutes = getEnvAsInt("SCAN_COOLDOWN_MINUTES", 5)
	}
	if config.Game.DefaultWhiteCodes <= 0 {
		config.Game.DefaultWhiteCodes = 5
	}
	if config.Game.DefaultRedCodes <= 0 {
		config.Game.DefaultRedCodes = 5
	}
	if config.Game.DefaultMinutes <= 0 {
		config.Game.DefaultMinutes = 10
	}
	return &config, nil
}
