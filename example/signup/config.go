package main

import (
	"encoding/json"
	"errors"
	"os"
)

type Config struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	Debug   bool   `json:"debug"`
}

// loadConfig reads path. A missing file yields an empty config, which runs
// the demo with the local parsers only.
func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	var conf Config
	err = json.Unmarshal(file, &conf)
	if err != nil {
		return nil, err
	}
	return &conf, nil
}
