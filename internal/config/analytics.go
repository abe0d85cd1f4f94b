// Package config loads the analytics configuration shared by the API
// server and the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/pitch.report/internal/pitch"
	"github.com/banshee-data/pitch.report/internal/units"
)

// DefaultConfigPath is the path to the canonical analytics defaults file.
const DefaultConfigPath = "config/analytics.defaults.json"

// AnalyticsConfig is the root configuration. Every field is optional;
// the Get* accessors supply the compiled-in default for unset fields.
type AnalyticsConfig struct {
	// Heatmap grid
	CellSize      *float64 `json:"cell_size,omitempty"`
	LateralShift  *float64 `json:"lateral_shift,omitempty"`
	VerticalShift *float64 `json:"vertical_shift,omitempty"`

	// Flight model sampling
	TrajectoryIntervals *int `json:"trajectory_intervals,omitempty"`

	// API
	CacheEntries *int    `json:"cache_entries,omitempty"`
	SpeedUnits   *string `json:"speed_units,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyAnalyticsConfig returns an AnalyticsConfig with all fields set to nil.
func EmptyAnalyticsConfig() *AnalyticsConfig {
	return &AnalyticsConfig{}
}

// DefaultAnalyticsConfig returns a config with every field populated
// from the compiled-in defaults.
func DefaultAnalyticsConfig() *AnalyticsConfig {
	return &AnalyticsConfig{
		CellSize:            ptrFloat64(pitch.DefaultCellSize),
		LateralShift:        ptrFloat64(pitch.DefaultLateralShift),
		VerticalShift:       ptrFloat64(pitch.DefaultVerticalShift),
		TrajectoryIntervals: ptrInt(pitch.DefaultIntervals),
		CacheEntries:        ptrInt(128),
		SpeedUnits:          ptrString(units.MPH),
	}
}

// LoadAnalyticsConfig loads an AnalyticsConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadAnalyticsConfig(path string) (*AnalyticsConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalyticsConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *AnalyticsConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalyticsConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *AnalyticsConfig) Validate() error {
	if c.CellSize != nil {
		if v := *c.CellSize; math.IsNaN(v) || v <= 0 || v > 5 {
			return fmt.Errorf("cell_size must be in (0, 5] feet, got %f", v)
		}
	}
	if c.LateralShift != nil && math.IsInf(*c.LateralShift, 0) {
		return fmt.Errorf("lateral_shift must be finite")
	}
	if c.VerticalShift != nil && math.IsInf(*c.VerticalShift, 0) {
		return fmt.Errorf("vertical_shift must be finite")
	}
	if c.TrajectoryIntervals != nil {
		if *c.TrajectoryIntervals < 1 || *c.TrajectoryIntervals > 10000 {
			return fmt.Errorf("trajectory_intervals must be between 1 and 10000, got %d", *c.TrajectoryIntervals)
		}
	}
	if c.CacheEntries != nil && *c.CacheEntries < 0 {
		return fmt.Errorf("cache_entries must be non-negative, got %d", *c.CacheEntries)
	}
	if c.SpeedUnits != nil && !units.IsValid(*c.SpeedUnits) {
		return fmt.Errorf("speed_units must be one of %s, got %q", units.GetValidUnitsString(), *c.SpeedUnits)
	}
	return nil
}

// GetCellSize returns the cell_size value or the default.
func (c *AnalyticsConfig) GetCellSize() float64 {
	if c.CellSize == nil {
		return pitch.DefaultCellSize
	}
	return *c.CellSize
}

// GetLateralShift returns the lateral_shift value or the default.
func (c *AnalyticsConfig) GetLateralShift() float64 {
	if c.LateralShift == nil {
		return pitch.DefaultLateralShift
	}
	return *c.LateralShift
}

// GetVerticalShift returns the vertical_shift value or the default.
func (c *AnalyticsConfig) GetVerticalShift() float64 {
	if c.VerticalShift == nil {
		return pitch.DefaultVerticalShift
	}
	return *c.VerticalShift
}

// GetTrajectoryIntervals returns the trajectory_intervals value or the default.
func (c *AnalyticsConfig) GetTrajectoryIntervals() int {
	if c.TrajectoryIntervals == nil {
		return pitch.DefaultIntervals
	}
	return *c.TrajectoryIntervals
}

// GetCacheEntries returns the cache_entries value or the default.
// Zero disables memoization.
func (c *AnalyticsConfig) GetCacheEntries() int {
	if c.CacheEntries == nil {
		return 128
	}
	return *c.CacheEntries
}

// GetSpeedUnits returns the speed_units value or the default.
func (c *AnalyticsConfig) GetSpeedUnits() string {
	if c.SpeedUnits == nil {
		return units.MPH
	}
	return *c.SpeedUnits
}

// GridSpec returns the heatmap quantisation described by the config.
func (c *AnalyticsConfig) GridSpec() pitch.GridSpec {
	return pitch.GridSpec{
		CellSize:      c.GetCellSize(),
		LateralShift:  c.GetLateralShift(),
		VerticalShift: c.GetVerticalShift(),
	}
}
