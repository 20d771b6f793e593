// Package config carries world tuning and boundary settings. Values come
// from compiled defaults, an optional JSON file, and command-line flags,
// in that order.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Difficulty selects a starting-condition profile.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Normal Difficulty = "normal"
	Hard   Difficulty = "hard"
)

// Config tunes a single world plus the surfaces around it.
type Config struct {
	Seed          int64      `json:"seed"`
	Difficulty    Difficulty `json:"difficulty"`
	SavePath      string     `json:"save_path"`
	AutosaveEvery int        `json:"autosave_every"`

	BasePopulation int     `json:"base_population"`
	FoodPerCapita  float64 `json:"food_per_capita"`
	HappinessDecay float64 `json:"happiness_decay"`

	Port     int    `json:"port"`
	AdminKey string `json:"admin_key"`
}

// Default returns the standard tuning.
func Default() Config {
	return Config{
		Seed:           42,
		Difficulty:     Normal,
		SavePath:       "data/steading.db",
		AutosaveEvery:  5,
		BasePopulation: 8,
		FoodPerCapita:  0.4,
		HappinessDecay: 0.25,
		Port:           8099,
	}
}

// Load reads a JSON config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	switch c.Difficulty {
	case Easy, Normal, Hard:
	default:
		return fmt.Errorf("unknown difficulty %q", c.Difficulty)
	}
	if c.BasePopulation < 1 {
		return fmt.Errorf("base population %d, need at least 1", c.BasePopulation)
	}
	if c.FoodPerCapita < 0 {
		return fmt.Errorf("negative food per capita %g", c.FoodPerCapita)
	}
	if c.AutosaveEvery < 0 {
		return fmt.Errorf("negative autosave cadence %d", c.AutosaveEvery)
	}
	return nil
}
