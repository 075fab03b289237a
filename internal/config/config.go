package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Bot struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"bot"`
	Replay struct {
		Symbol string `yaml:"symbol"`
		CSV    string `yaml:"csv"`
	} `yaml:"replay"`
	Strategy struct {
		UserID             string  `yaml:"user_id"`
		Symbol             string  `yaml:"symbol"`
		Quantity           int     `yaml:"quantity"`
		DailyProfitTarget  float64 `yaml:"daily_profit_target"`
		StopLossPoints     float64 `yaml:"stop_loss_points"`
		MaxTradesPerDay    int     `yaml:"max_trades_per_day"`
		TrailingStop       bool    `yaml:"trailing_stop"`
		TrailingStopPoints float64 `yaml:"trailing_stop_points"`
		DynamicHours       bool    `yaml:"dynamic_hours"`
	} `yaml:"strategy"`
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &cfg, nil
}
