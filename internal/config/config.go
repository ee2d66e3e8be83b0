// Package config loads Conquer's optional user configuration from
// ~/.conquer.yaml. Every key has a default, so a missing file is fine.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	// DBPath overrides the database location when non-empty.
	DBPath string

	// SubtaskBonusXP is the bonus awarded per completed checklist step.
	SubtaskBonusXP int

	// RewardCap caps the XP from a single completion. 0 means uncapped.
	RewardCap int

	// DefaultTier is the tier used when `start` is run without --tier.
	DefaultTier string
}

func Default() Config {
	return Config{
		DBPath:         "",
		SubtaskBonusXP: 2,
		RewardCap:      0,
		DefaultTier:    "low",
	}
}

// Load reads ~/.conquer.yaml if present, falling back to defaults for any
// missing keys.
func Load() (Config, error) {
	cfg := Default()

	home, err := os.UserHomeDir()
	if err != nil {
		// No home dir (odd environments); defaults still work.
		return cfg, nil
	}
	return LoadFrom(home)
}

// LoadFrom reads .conquer.yaml from the given directory.
func LoadFrom(dir string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName(".conquer")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetDefault("db.path", cfg.DBPath)
	v.SetDefault("xp.subtask_bonus", cfg.SubtaskBonusXP)
	v.SetDefault("xp.reward_cap", cfg.RewardCap)
	v.SetDefault("tasks.default_tier", cfg.DefaultTier)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	cfg.DBPath = v.GetString("db.path")
	cfg.SubtaskBonusXP = v.GetInt("xp.subtask_bonus")
	cfg.RewardCap = v.GetInt("xp.reward_cap")
	cfg.DefaultTier = v.GetString("tasks.default_tier")

	if cfg.SubtaskBonusXP < 0 {
		return cfg, fmt.Errorf("xp.subtask_bonus must be >= 0 (got %d)", cfg.SubtaskBonusXP)
	}
	if cfg.RewardCap < 0 {
		return cfg, fmt.Errorf("xp.reward_cap must be >= 0 (got %d)", cfg.RewardCap)
	}
	return cfg, nil
}
