package config

import "sort"

var Presets = map[string]*Config{
	"default": {
		TimeStep: 0.1, Duration: 20.0, NTrajectories: 100,
		TrajectoryNoise: 0.1, StateNoise: 0.1,
		TrajectoryRadius: 1.0, TrajectoryMargin: 0.25,
		Workers: 1, OnFailure: OnFailureAbort,
	},
	"quick": {
		TimeStep: 0.1, Duration: 10.0, NTrajectories: 8,
		TrajectoryNoise: 0.1, StateNoise: 0.1,
		TrajectoryRadius: 1.0, TrajectoryMargin: 0.25,
		Workers: 1, OnFailure: OnFailureAbort,
	},
	"clean": {
		TimeStep: 0.1, Duration: 20.0, NTrajectories: 16,
		TrajectoryNoise: 0, StateNoise: 0,
		TrajectoryRadius: 1.0, TrajectoryMargin: 0.25,
		Workers: 1, OnFailure: OnFailureAbort,
	},
	"dense": {
		TimeStep: 0.05, Duration: 20.0, NTrajectories: 100,
		TrajectoryNoise: 0.1, StateNoise: 0.1,
		TrajectoryRadius: 1.0, TrajectoryMargin: 0.25,
		Workers: 4, OnFailure: OnFailureSkip,
	},
}

func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
