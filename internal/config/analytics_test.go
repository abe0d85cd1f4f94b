package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/pitch.report/internal/pitch"
)

func TestDefaultAnalyticsConfig(t *testing.T) {
	cfg := DefaultAnalyticsConfig()

	if cfg.CellSize == nil || *cfg.CellSize != 0.25 {
		t.Errorf("Expected CellSize 0.25, got %v", cfg.CellSize)
	}
	if cfg.TrajectoryIntervals == nil || *cfg.TrajectoryIntervals != 40 {
		t.Errorf("Expected TrajectoryIntervals 40, got %v", cfg.TrajectoryIntervals)
	}
	if cfg.SpeedUnits == nil || *cfg.SpeedUnits != "mph" {
		t.Errorf("Expected SpeedUnits mph, got %v", cfg.SpeedUnits)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEmptyConfigGetters(t *testing.T) {
	cfg := EmptyAnalyticsConfig()

	if got := cfg.GetCellSize(); got != pitch.DefaultCellSize {
		t.Errorf("GetCellSize() = %f, want %f", got, pitch.DefaultCellSize)
	}
	if got := cfg.GetLateralShift(); got != 1.75 {
		t.Errorf("GetLateralShift() = %f, want 1.75", got)
	}
	if got := cfg.GetVerticalShift(); got != 1.0 {
		t.Errorf("GetVerticalShift() = %f, want 1.0", got)
	}
	if got := cfg.GetTrajectoryIntervals(); got != 40 {
		t.Errorf("GetTrajectoryIntervals() = %d, want 40", got)
	}
	if got := cfg.GetCacheEntries(); got != 128 {
		t.Errorf("GetCacheEntries() = %d, want 128", got)
	}
	if got := cfg.GetSpeedUnits(); got != "mph" {
		t.Errorf("GetSpeedUnits() = %s, want mph", got)
	}
	if got := cfg.GridSpec(); got != pitch.DefaultGridSpec() {
		t.Errorf("GridSpec() = %+v, want %+v", got, pitch.DefaultGridSpec())
	}
}

func TestLoadAnalyticsConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "cell_size": 0.5,
  "trajectory_intervals": 80,
  "speed_units": "kph"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadAnalyticsConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetCellSize() != 0.5 {
		t.Errorf("GetCellSize() = %f, want 0.5", cfg.GetCellSize())
	}
	if cfg.GetTrajectoryIntervals() != 80 {
		t.Errorf("GetTrajectoryIntervals() = %d, want 80", cfg.GetTrajectoryIntervals())
	}
	if cfg.GetSpeedUnits() != "kph" {
		t.Errorf("GetSpeedUnits() = %s, want kph", cfg.GetSpeedUnits())
	}
	// Omitted fields fall back to defaults
	if cfg.GetLateralShift() != 1.75 {
		t.Errorf("GetLateralShift() = %f, want 1.75", cfg.GetLateralShift())
	}
}

func TestLoadAnalyticsConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"wrong extension", write("cfg.yaml", "{}"), ".json extension"},
		{"missing file", filepath.Join(tmpDir, "nope.json"), "failed to stat"},
		{"bad json", write("bad.json", "{"), "failed to parse"},
		{"zero cell", write("zero.json", `{"cell_size": 0}`), "cell_size"},
		{"no intervals", write("iv.json", `{"trajectory_intervals": 0}`), "trajectory_intervals"},
		{"negative cache", write("cache.json", `{"cache_entries": -1}`), "cache_entries"},
		{"bad units", write("units.json", `{"speed_units": "knots"}`), "speed_units"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAnalyticsConfig(tt.path)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	want := DefaultAnalyticsConfig()
	if cfg.GetCellSize() != want.GetCellSize() ||
		cfg.GetTrajectoryIntervals() != want.GetTrajectoryIntervals() ||
		cfg.GetCacheEntries() != want.GetCacheEntries() ||
		cfg.GetSpeedUnits() != want.GetSpeedUnits() {
		t.Errorf("defaults file diverges from compiled defaults: %+v", cfg)
	}
}
