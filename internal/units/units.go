// Package units provides shared constants and validation for speed and
// length units used by pitch measurements.
package units

import (
	"slices"
	"strings"
)

// Speed units accepted by the arsenal view and the speed_units setting.
// Measurements are always stored in mph.
const (
	MPH  = "mph"
	FPS  = "fps"
	KMPH = "kmph"
	KPH  = "kph"
	MPS  = "mps"
)

// ValidUnits lists every accepted speed unit.
var ValidUnits = []string{MPH, FPS, KMPH, KPH, MPS}

// IsValid reports whether unit is one of ValidUnits. Matching is
// case-sensitive.
func IsValid(unit string) bool {
	return slices.Contains(ValidUnits, unit)
}

// GetValidUnitsString returns the valid units for error messages.
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}
