package application

import (
	"time"

	"github.com/bnema/blum-farm-cli/internal/domain"
)

// LoopConfig holds the timings of the cycle loop. Zero fields take the defaults.
type LoopConfig struct {
	LoginBackoff  time.Duration
	ErrorPause    time.Duration
	ErrorCooldown time.Duration
	PollInterval  time.Duration
	Pacing        time.Duration
	MinSleep      time.Duration
	GamePoints    int

	// StartupDelayMax enables a random delay in [StartupDelayMin, StartupDelayMax]
	// before the first cycle.
	StartupDelayMin time.Duration
	StartupDelayMax time.Duration
	// CheckProxy logs the public address once before the first cycle when a proxy is set.
	CheckProxy bool
}

func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		LoginBackoff:  300 * time.Second,
		ErrorPause:    3 * time.Second,
		ErrorCooldown: 3 * time.Minute,
		PollInterval:  5 * time.Second,
		Pacing:        time.Second,
		MinSleep:      10 * time.Second,
		GamePoints:    domain.FixedGamePoints,
	}
}

func (c LoopConfig) withDefaults() LoopConfig {
	defaults := DefaultLoopConfig()
	if c.LoginBackoff <= 0 {
		c.LoginBackoff = defaults.LoginBackoff
	}
	if c.ErrorPause <= 0 {
		c.ErrorPause = defaults.ErrorPause
	}
	if c.ErrorCooldown <= 0 {
		c.ErrorCooldown = defaults.ErrorCooldown
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if c.Pacing <= 0 {
		c.Pacing = defaults.Pacing
	}
	if c.MinSleep <= 0 {
		c.MinSleep = defaults.MinSleep
	}
	if c.GamePoints <= 0 {
		c.GamePoints = defaults.GamePoints
	}
	if c.StartupDelayMax < c.StartupDelayMin {
		c.StartupDelayMax = c.StartupDelayMin
	}
	return c
}
