package main

import "github.com/kelseyhightower/envconfig"

// Config is read from SCENEEDIT_* environment variables.
type Config struct {
	Document  string `envconfig:"DOCUMENT"`
	Settings  string `envconfig:"SETTINGS"`
	Width     int    `envconfig:"WIDTH" default:"1280"`
	Height    int    `envconfig:"HEIGHT" default:"720"`
	Debug     bool   `envconfig:"DEBUG" default:"false"`
	ShowFPS   bool   `envconfig:"SHOW_FPS" default:"false"`
	RemoteURL string `envconfig:"REMOTE_URL"`
	Project   string `envconfig:"PROJECT" default:"sample"`
	Script    string `envconfig:"SCRIPT"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("sceneedit", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
