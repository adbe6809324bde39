package game

import (
	"fmt"
	"time"
)

// PatternCadence schedules a spaceship pattern every Every generations.
type PatternCadence struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Every   int    `yaml:"every" json:"every"`
}

// Config holds the constants that distinguish one game variant from another.
type Config struct {
	Name string `yaml:"name" json:"name"`

	GridSize      int `yaml:"grid_size" json:"grid_size"`
	SeedCells     int `yaml:"seed_cells" json:"seed_cells"`
	SeedExclusion int `yaml:"seed_exclusion" json:"seed_exclusion"` // Chebyshev radius kept clear around the player start

	GhostCount        int     `yaml:"ghost_count" json:"ghost_count"`
	GhostMinDistance  float64 `yaml:"ghost_min_distance" json:"ghost_min_distance"`
	GhostRandomChance float64 `yaml:"ghost_random_chance" json:"ghost_random_chance"`

	Collectibles       int `yaml:"collectibles" json:"collectibles"`
	CollectibleScore   int `yaml:"collectible_score" json:"collectible_score"`
	ReplenishThreshold int `yaml:"replenish_threshold" json:"replenish_threshold"`
	ReplenishBatch     int `yaml:"replenish_batch" json:"replenish_batch"`

	TickInterval     time.Duration `yaml:"tick_interval" json:"tick_interval"`
	FastTickInterval time.Duration `yaml:"fast_tick_interval" json:"fast_tick_interval"`
	SpeedUpScore     int           `yaml:"speed_up_score" json:"speed_up_score"`
	MoveCooldown     time.Duration `yaml:"move_cooldown" json:"move_cooldown"`
	RepeatInterval   time.Duration `yaml:"repeat_interval" json:"repeat_interval"`

	Patterns []PatternCadence `yaml:"patterns" json:"patterns"`

	// SeedAttemptFactor bounds random placement to count*factor tries before
	// falling back to enumerating free cells.
	SeedAttemptFactor int `yaml:"seed_attempt_factor" json:"seed_attempt_factor"`
}

// DefaultConfig is the classic tuning.
var DefaultConfig = Config{
	Name:               "classic",
	GridSize:           40,
	SeedCells:          300,
	SeedExclusion:      2,
	GhostCount:         6,
	GhostMinDistance:   8,
	GhostRandomChance:  0.4,
	Collectibles:       500,
	CollectibleScore:   5,
	ReplenishThreshold: 10,
	ReplenishBatch:     200,
	TickInterval:       300 * time.Millisecond,
	FastTickInterval:   190 * time.Millisecond,
	SpeedUpScore:       500,
	MoveCooldown:       150 * time.Millisecond,
	RepeatInterval:     50 * time.Millisecond,
	Patterns: []PatternCadence{
		{Pattern: "glider", Every: 100},
		{Pattern: "mwss", Every: 125},
		{Pattern: "lwss", Every: 175},
	},
	SeedAttemptFactor: 50,
}

// Validate rejects configurations the rules cannot run with.
func (c Config) Validate() error {
	if c.GridSize < 5 {
		return fmt.Errorf("grid_size must be at least 5, got %d", c.GridSize)
	}
	if c.SeedCells < 0 || c.GhostCount < 0 || c.Collectibles < 0 {
		return fmt.Errorf("counts must be non-negative")
	}
	if c.GhostRandomChance < 0 || c.GhostRandomChance > 1 {
		return fmt.Errorf("ghost_random_chance must be in [0,1], got %v", c.GhostRandomChance)
	}
	if c.ReplenishBatch > 0 && c.ReplenishBatch <= c.ReplenishThreshold {
		return fmt.Errorf("replenish_batch (%d) must exceed replenish_threshold (%d)", c.ReplenishBatch, c.ReplenishThreshold)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	for _, p := range c.Patterns {
		if p.Every <= 0 {
			return fmt.Errorf("pattern %q: every must be positive", p.Pattern)
		}
	}
	return nil
}

// Center is the player start cell.
func (c Config) Center() Point {
	return Point{X: c.GridSize / 2, Y: c.GridSize / 2}
}
