package seismology

import "fmt"

// ErrUnknownUnit is returned by Convert/Revert for an unregistered unit
// string, spec.md §6: "Unknown units cause the amplitude/magnitude
// processor to refuse the input."
type ErrUnknownUnit struct{ Unit string }

func (e ErrUnknownUnit) Error() string { return fmt.Sprintf("seismology: unknown unit %q", e.Unit) }

// Units is a table-driven, SI-scale-factor unit converter, spec.md §6:
// "a built-in table maps source-side unit strings (SI and legacy alike)
// to target units with a scale factor." Every entry is a multiplicative
// factor to the package's internal base unit for its quantity (meters for
// displacement, meters/second for velocity, etc.), which makes Convert
// trivially bijective (spec.md §8 invariant 5): round-tripping through
// the same base cancels exactly, to floating-point rounding.
type Units struct {
	scale map[string]float64
}

// DefaultUnits returns the table covering the amplitude units named
// throughout original_source's magnitude processors (Ms20.cpp's "nm",
// Mwp.cpp's "nm*s", mb.cpp's implicit micrometer conversion) plus the
// raw velocity/acceleration units spec.md §4.6 lists as expected
// amplitude-processor inputs.
func DefaultUnits() *Units {
	return &Units{scale: map[string]float64{
		"m":     1,
		"cm":    1e-2,
		"mm":    1e-3,
		"um":    1e-6,
		"nm":    1e-9,
		"m/s":   1,
		"mm/s":  1e-3,
		"nm/s":  1e-9,
		"m/s2":  1,
		"m/s**2": 1,
		"nm/s2": 1e-9,
		"m*s":   1,
		"nm*s":  1e-9,
		"counts": 1,
	}}
}

// Register adds or overrides a unit's scale factor relative to the base
// unit for its quantity.
func (u *Units) Register(unit string, scale float64) { u.scale[unit] = scale }

// Convert rescales value from one unit string to another. Units for
// different physical quantities (e.g. "m" to "m/s") are not rejected here
// — that domain check belongs to the caller, matching
// MagnitudeProcessor::convertAmplitude's plain scale-factor semantics.
func (u *Units) Convert(value float64, from, to string) (float64, error) {
	sFrom, ok := u.scale[from]
	if !ok {
		return 0, ErrUnknownUnit{from}
	}
	sTo, ok := u.scale[to]
	if !ok {
		return 0, ErrUnknownUnit{to}
	}
	return value * sFrom / sTo, nil
}

// Revert is the inverse of Convert, satisfying spec.md §8 invariant 5:
// Revert(Convert(x, a, b), a, b) == x to floating-point rounding.
func (u *Units) Revert(value float64, from, to string) (float64, error) {
	return u.Convert(value, to, from)
}
