package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeStep     = 0.1
	DefaultDuration     = 20.0
	DefaultTrajectories = 100
	DefaultRadius       = 1.0
	DefaultMargin       = 0.25
	DefaultTrajNoise    = 0.1
	DefaultStateNoise   = 0.1
	DefaultWorkers      = 1
)

// Failure policies for batch generation.
const (
	OnFailureAbort = "abort"
	OnFailureSkip  = "skip"
)

type Config struct {
	TimeStep         float64 `yaml:"time_step"`
	Duration         float64 `yaml:"duration"`
	NTrajectories    int     `yaml:"n_trajectories"`
	TrajectoryNoise  float64 `yaml:"trajectory_noise"`
	StateNoise       float64 `yaml:"state_noise"`
	TrajectoryRadius float64 `yaml:"trajectory_radius"`
	TrajectoryMargin float64 `yaml:"trajectory_margin"`
	Seed             int64   `yaml:"seed"`
	Workers          int     `yaml:"workers"`
	OnFailure        string  `yaml:"on_failure"`
}

func DefaultConfig() *Config {
	return &Config{
		TimeStep:         DefaultTimeStep,
		Duration:         DefaultDuration,
		NTrajectories:    DefaultTrajectories,
		TrajectoryNoise:  DefaultTrajNoise,
		StateNoise:       DefaultStateNoise,
		TrajectoryRadius: DefaultRadius,
		TrajectoryMargin: DefaultMargin,
		Workers:          DefaultWorkers,
		OnFailure:        OnFailureAbort,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects degenerate parameter sets up front instead of
// letting them surface as malformed output downstream.
func (c *Config) Validate() error {
	if c.TimeStep <= 0 {
		return fmt.Errorf("config: time_step must be positive, got %g", c.TimeStep)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %g", c.Duration)
	}
	if c.NTrajectories < 1 {
		return fmt.Errorf("config: n_trajectories must be at least 1, got %d", c.NTrajectories)
	}
	if c.TrajectoryNoise < 0 {
		return fmt.Errorf("config: trajectory_noise must be non-negative, got %g", c.TrajectoryNoise)
	}
	if c.StateNoise < 0 {
		return fmt.Errorf("config: state_noise must be non-negative, got %g", c.StateNoise)
	}
	if c.TrajectoryRadius <= 0 {
		return fmt.Errorf("config: trajectory_radius must be positive, got %g", c.TrajectoryRadius)
	}
	if c.TrajectoryMargin < 0 || c.TrajectoryMargin >= c.TrajectoryRadius {
		return fmt.Errorf("config: trajectory_margin must be in [0, radius), got %g", c.TrajectoryMargin)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	switch c.OnFailure {
	case "", OnFailureAbort, OnFailureSkip:
	default:
		return fmt.Errorf("config: on_failure must be %q or %q, got %q", OnFailureAbort, OnFailureSkip, c.OnFailure)
	}
	return nil
}

// Steps returns the number of time steps on the generation grid.
func (c *Config) Steps() int {
	if c.TimeStep <= 0 || c.Duration <= 0 {
		return 0
	}
	n := int(c.Duration / c.TimeStep)
	if float64(n)*c.TimeStep < c.Duration {
		n++
	}
	return n
}
