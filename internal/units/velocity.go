package units

// Pitch speeds are measured and stored in miles per hour.
const (
	// MPHToFPS is the mph to feet/second factor used by the flight model.
	MPHToFPS = 1.467
	// InchesPerFoot converts movement measurements to feet.
	InchesPerFoot = 12.0

	mphToKPH = 1.609344
	mphToMPS = 0.44704
)

// ConvertSpeed converts a speed from miles per hour to the target units.
// Unknown units return the input unchanged.
func ConvertSpeed(speedMPH float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPH
	case FPS:
		return speedMPH * MPHToFPS
	case KMPH, KPH:
		return speedMPH * mphToKPH
	case MPS:
		return speedMPH * mphToMPS
	default:
		return speedMPH
	}
}

// ConvertToMPH converts a speed in the given units back to miles per hour.
func ConvertToMPH(speed float64, fromUnits string) float64 {
	switch fromUnits {
	case MPH:
		return speed
	case FPS:
		return speed / MPHToFPS
	case KMPH, KPH:
		return speed / mphToKPH
	case MPS:
		return speed / mphToMPS
	default:
		return speed
	}
}

// InchesToFeet converts a movement in inches to feet.
func InchesToFeet(inches float64) float64 {
	return inches / InchesPerFoot
}
