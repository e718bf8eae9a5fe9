package processing

// OutOfRangeReason names why a MagnitudeProcessor rejected or clamped an
// input, spec.md §4.6.
type OutOfRangeReason int

const (
	InRange OutOfRangeReason = iota
	DistanceOutOfRange
	DepthOutOfRange
	UnitNotConvertible
)

// MagnitudeInput bundles the pure-function arguments spec.md §4.6 lists:
// "(amplitude, unit, period, snr, epicentralDistance, depth, hypocenter,
// station)".
type MagnitudeInput struct {
	Amplitude          float64
	Unit               string
	Period             float64
	SNR                float64
	EpicentralDistance float64 // degrees
	Depth              float64 // km
	Hypocenter         string  // opaque region/profile key, seismology-owned
	Station            string
}

// MagnitudeResult is a computed station magnitude with clamp bookkeeping,
// spec.md §3's Magnitude entity.
type MagnitudeResult struct {
	Value  float64
	Reason OutOfRangeReason
}

// MagnitudeProcessor is the pure-function interface of spec.md §4.6:
// "Magnitude processors are pure functions of (amplitude, unit, period,
// snr, epicentralDistance, depth, hypocenter, station)". Concrete
// calibrations (Ms_20, mb, MwP, parametric and non-parametric tables) live in the
// seismology package.
type MagnitudeProcessor interface {
	// Compute evaluates the magnitude for one station amplitude. ok is
	// false if the input was rejected outright (e.g. an inconvertible
	// unit); clamped inputs still return ok=true with Reason set.
	Compute(in MagnitudeInput) (MagnitudeResult, bool)
}
