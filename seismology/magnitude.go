package seismology

import (
	"math"

	"github.com/gempa-oss/scstream/processing"
)

// earthRadiusKm is the mean Earth radius used to convert epicentral
// distance in degrees to meters for the Mwp seismic-moment formula.
const earthRadiusKm = 6371.0

func degreesToMeters(deg float64) float64 {
	return deg * math.Pi / 180 * earthRadiusKm * 1000
}

// Ms20 implements the surface-wave magnitude of original_source's
// Ms20.cpp, verbatim: M = log10(A/T) + 1.66*log10(Δ) + 0.3, valid for
// period in [18,22]s, epicentral distance in [20,160] degrees, depth in
// [0,100]km, amplitude expected in nanometers.
type Ms20 struct {
	Units *Units
}

// NewMs20 returns an Ms20 processor using DefaultUnits for amplitude
// conversion.
func NewMs20() Ms20 { return Ms20{Units: DefaultUnits()} }

// Compute implements processing.MagnitudeProcessor.
func (m Ms20) Compute(in processing.MagnitudeInput) (processing.MagnitudeResult, bool) {
	if in.Amplitude <= 0 || in.Period <= 0 {
		return processing.MagnitudeResult{}, false
	}
	if in.Period < 18 || in.Period > 22 {
		return processing.MagnitudeResult{Reason: processing.DistanceOutOfRange}, true
	}
	if in.EpicentralDistance < 20 || in.EpicentralDistance > 160 {
		return processing.MagnitudeResult{Reason: processing.DistanceOutOfRange}, true
	}
	if in.Depth < 0 || in.Depth > 100 {
		return processing.MagnitudeResult{Reason: processing.DepthOutOfRange}, true
	}

	amp := in.Amplitude
	units := m.Units
	if units == nil {
		units = DefaultUnits()
	}
	if in.Unit != "" && in.Unit != "nm" {
		converted, err := units.Convert(in.Amplitude, in.Unit, "nm")
		if err != nil {
			return processing.MagnitudeResult{Reason: processing.UnitNotConvertible}, true
		}
		amp = converted
	}

	value := math.Log10(amp/in.Period) + 1.66*math.Log10(in.EpicentralDistance) + 0.3
	return processing.MagnitudeResult{Value: value, Reason: processing.InRange}, true
}

// Mb implements the body-wave magnitude of original_source's mb.cpp,
// valid for depth in [0,700]km, epicentral distance in [5,105] degrees,
// period in [0.4,3.0]s, amplitude expected in nanometers. mb.cpp
// delegates the actual value to an undocumented Magnitudes::compute_mb
// whose body was not part of the retrieved source; Q below is a coarse
// analytic stand-in for the tabulated Gutenberg-Richter Q(Δ,h)
// calibration surface that function implements, not a transcription of
// it.
type Mb struct {
	Units *Units
}

// NewMb returns an Mb processor using DefaultUnits for amplitude
// conversion.
func NewMb() Mb { return Mb{Units: DefaultUnits()} }

func qDistanceDepth(deltaDeg, depthKm float64) float64 {
	return 5.85 + 0.45*math.Log10(deltaDeg) + depthKm/300
}

// Compute implements processing.MagnitudeProcessor.
func (m Mb) Compute(in processing.MagnitudeInput) (processing.MagnitudeResult, bool) {
	if in.Amplitude <= 0 || in.Period <= 0 {
		return processing.MagnitudeResult{}, false
	}
	if in.Depth < 0 || in.Depth > 700 {
		return processing.MagnitudeResult{Reason: processing.DepthOutOfRange}, true
	}
	if in.EpicentralDistance < 5 || in.EpicentralDistance > 105 {
		return processing.MagnitudeResult{Reason: processing.DistanceOutOfRange}, true
	}
	if in.Period < 0.4 || in.Period > 3.0 {
		return processing.MagnitudeResult{Reason: processing.DistanceOutOfRange}, true
	}

	units := m.Units
	if units == nil {
		units = DefaultUnits()
	}
	amp := in.Amplitude
	if in.Unit != "" && in.Unit != "nm" {
		converted, err := units.Convert(in.Amplitude, in.Unit, "nm")
		if err != nil {
			return processing.MagnitudeResult{Reason: processing.UnitNotConvertible}, true
		}
		amp = converted
	}
	// compute_mb works in micrometers.
	amplitudeUm := amp * 1e-3

	value := math.Log10(amplitudeUm/in.Period) + qDistanceDepth(in.EpicentralDistance, in.Depth)
	return processing.MagnitudeResult{Value: value, Reason: processing.InRange}, true
}

// MwpParameters are the Tsuboi (1999) constants Mwp.cpp's compute_Mwp
// doc comment names as its defaults.
type MwpParameters struct {
	Offset float64 // linear correction: Mwp = Mw*Slope + Offset
	Slope  float64
	Alpha  float64 // P-wave velocity, m/s
	Rho    float64 // density, kg/m^3
	Fp     float64 // free-surface amplification factor
}

// DefaultMwpParameters reproduces the defaults named in Mwp.cpp:
// offset=0, slope=1, alpha=7900 m/s, rho=3400 kg/m^3, fp=0.52.
func DefaultMwpParameters() MwpParameters {
	return MwpParameters{Offset: 0, Slope: 1, Alpha: 7900, Rho: 3400, Fp: 0.52}
}

// MwP implements the P-wave moment magnitude of original_source's
// Mwp.cpp, valid for epicentral distance in [5,105] degrees, amplitude
// expected in nm*s (a displacement integral). Mwp.cpp delegates to an
// undocumented Magnitudes::compute_Mwp; its doc comment identifies the
// method as Tsuboi et al. (1999) and names the parameters reproduced
// here, so Compute below reconstructs the textbook seismic-moment
// formula M0 = 4*pi*rho*alpha^3*Δ*A/Fp, Mw = (log10(M0)-9.1)/1.5
// (Kanamori 1977), then Mwp = Mw*Slope + Offset, rather than
// transcribing compute_Mwp's body.
type MwP struct {
	Params MwpParameters
	Units  *Units
}

// NewMwP returns an MwP processor with DefaultMwpParameters and
// DefaultUnits.
func NewMwP() MwP { return MwP{Params: DefaultMwpParameters(), Units: DefaultUnits()} }

// Compute implements processing.MagnitudeProcessor.
func (m MwP) Compute(in processing.MagnitudeInput) (processing.MagnitudeResult, bool) {
	if in.Amplitude <= 0 {
		return processing.MagnitudeResult{}, false
	}
	if in.EpicentralDistance < 5 || in.EpicentralDistance > 105 {
		return processing.MagnitudeResult{Reason: processing.DistanceOutOfRange}, true
	}

	units := m.Units
	if units == nil {
		units = DefaultUnits()
	}
	amp := in.Amplitude
	if in.Unit != "" && in.Unit != "nm*s" {
		converted, err := units.Convert(in.Amplitude, in.Unit, "nm*s")
		if err != nil {
			return processing.MagnitudeResult{Reason: processing.UnitNotConvertible}, true
		}
		amp = converted
	}
	amplitudeMeters := amp * 1e-9

	p := m.Params
	deltaM := degreesToMeters(in.EpicentralDistance)
	m0 := 4 * math.Pi * p.Rho * math.Pow(p.Alpha, 3) * deltaM * amplitudeMeters / p.Fp
	if m0 <= 0 {
		return processing.MagnitudeResult{}, false
	}
	mw := (math.Log10(m0) - 9.1) / 1.5
	value := mw*p.Slope + p.Offset
	return processing.MagnitudeResult{Value: value, Reason: processing.InRange}, true
}

// EstimateMw reproduces Whitmore et al. (2002)'s Mw estimate from an
// Mwp value, named Magnitudes::estimateMw in original_source (marked
// "Fixme" there): Mw_estimate = 1.186*Mwp - 1.222, stdError 0.4.
func EstimateMw(mwp float64) (value, stdError float64) {
	return 1.186*mwp - 1.222, 0.4
}
