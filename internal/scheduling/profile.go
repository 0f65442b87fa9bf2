// Package scheduling computes when a learning item should be reviewed next.
package scheduling

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/timing"
)

// Profile holds the interval tables of one learning mode. Hours unless stated otherwise.
type Profile struct {
	// Initial is the interval of a first review, and of any "again" review, per difficulty.
	Initial map[learning.Difficulty]float64 `yaml:"initial"`
	// Progression is the target interval indexed by review count minus one.
	Progression        []float64     `yaml:"progression"`
	MaintenanceCapDays float64       `yaml:"maintenance_cap_days"`
	Timing             timing.Window `yaml:"timing"`
}

func (p Profile) validate(mode learning.Mode) error {
	for _, d := range learning.Difficulties {
		if p.Initial[d] <= 0 {
			return fmt.Errorf("profile %s: initial interval for %s must be positive", mode, d)
		}
	}
	if len(p.Progression) == 0 {
		return fmt.Errorf("profile %s: progression must not be empty", mode)
	}
	for i, hours := range p.Progression {
		if hours <= 0 {
			return fmt.Errorf("profile %s: progression[%d] must be positive", mode, i)
		}
	}
	again := p.Initial[learning.DifficultyAgain]
	for _, d := range learning.Difficulties {
		if p.Initial[d] < again {
			return fmt.Errorf("profile %s: initial interval for again must not exceed %s", mode, d)
		}
	}
	for i, hours := range p.Progression {
		if hours*progressionMultipliers[learning.DifficultyHard] < again {
			return fmt.Errorf("profile %s: initial interval for again must not exceed a hard review at progression[%d]", mode, i)
		}
	}
	if p.MaintenanceCapDays <= 0 {
		return fmt.Errorf("profile %s: maintenance cap must be positive", mode)
	}
	return nil
}

func initial(again, hard, good, easy float64) map[learning.Difficulty]float64 {
	return map[learning.Difficulty]float64{
		learning.DifficultyAgain: again,
		learning.DifficultyHard:  hard,
		learning.DifficultyGood:  good,
		learning.DifficultyEasy:  easy,
	}
}

// DefaultProfiles returns a fresh copy of the built-in mode tables.
func DefaultProfiles() map[learning.Mode]Profile {
	return map[learning.Mode]Profile{
		learning.ModeUltracram: {
			Initial:            initial(1, 4, 12, 24),
			Progression:        []float64{12, 24, 48, 72, 120, 168},
			MaintenanceCapDays: 60,
			Timing:             timing.Window{PerfectHours: 1, BeforeHours: 2, AfterHours: 4},
		},
		learning.ModeCram: {
			Initial:            initial(4, 12, 24, 48),
			Progression:        []float64{24, 48, 96, 168, 336, 504},
			MaintenanceCapDays: 90,
			Timing:             timing.Window{PerfectHours: 2, BeforeHours: 6, AfterHours: 12},
		},
		learning.ModeSteady: {
			Initial:            initial(24, 24, 72, 96),
			Progression:        []float64{72, 168, 336, 720, 1440, 2160},
			MaintenanceCapDays: 365,
			Timing:             timing.Window{PerfectHours: 6, BeforeHours: 12, AfterHours: 48},
		},
		learning.ModeExtended: {
			Initial:            initial(24, 48, 120, 168),
			Progression:        []float64{168, 336, 720, 1440, 2880, 4320},
			MaintenanceCapDays: 180,
			Timing:             timing.Window{PerfectHours: 12, BeforeHours: 24, AfterHours: 96},
		},
	}
}

// LoadProfiles reads a YAML file keyed by mode name and overlays it on the defaults.
// Fields left out of a mode keep their default values.
func LoadProfiles(path string) (map[learning.Mode]Profile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	var overrides map[learning.Mode]Profile
	if err := yaml.Unmarshal(content, &overrides); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}

	profiles := DefaultProfiles()
	for mode, override := range overrides {
		if !mode.Valid() {
			return nil, fmt.Errorf("unknown learning mode %q in %s", mode, path)
		}
		profile := profiles[mode]
		for d, hours := range override.Initial {
			if !d.Valid() {
				return nil, fmt.Errorf("unknown difficulty %q in %s", d, path)
			}
			profile.Initial[d] = hours
		}
		if len(override.Progression) > 0 {
			profile.Progression = override.Progression
		}
		if override.MaintenanceCapDays != 0 {
			profile.MaintenanceCapDays = override.MaintenanceCapDays
		}
		if override.Timing != (timing.Window{}) {
			profile.Timing = override.Timing
		}
		if err := profile.validate(mode); err != nil {
			return nil, err
		}
		profiles[mode] = profile
	}
	return profiles, nil
}
