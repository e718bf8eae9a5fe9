package seismology

import (
	"math"
	"sort"

	"github.com/gempa-oss/scstream/processing"
)

// ExtrapolationPolicy selects how NonParametricCalibration behaves for a
// distance outside its table, spec.md §4.6.
type ExtrapolationPolicy int

const (
	ExtrapolateReject ExtrapolationPolicy = iota
	ExtrapolateNearest
	ExtrapolateLinear
)

// validRange reports whether v falls within [lo, hi], returning reason on
// failure so callers can distinguish distance from depth violations
// (processing.DistanceOutOfRange vs processing.DepthOutOfRange).
func validRange(v, lo, hi float64, reason processing.OutOfRangeReason) (processing.OutOfRangeReason, bool) {
	if v < lo || v > hi {
		return reason, false
	}
	return processing.InRange, true
}

// ParametricCalibration evaluates spec.md §6's parametric formula
// `M = log10(A) + c1*log10(Δ) + c2*Δ + c3 + (c0 * station term)` with a
// caller-supplied distance/depth validity range and per-station
// correction terms, grounded on the coefficient-table shape every
// original_source Magnitudes::compute_* function hard-codes as named
// constants (Ms20.cpp's 1.66/0.3, mb's Q(Δ,h)) generalized into data.
type ParametricCalibration struct {
	Unit                               string
	C0, C1, C2, C3                     float64
	MinDistanceDeg, MaxDistanceDeg     float64
	MinDepthKm, MaxDepthKm             float64
	StationTerms                       map[string]float64
	Units                              *Units
}

// Compute implements processing.MagnitudeProcessor.
func (c ParametricCalibration) Compute(in processing.MagnitudeInput) (processing.MagnitudeResult, bool) {
	if in.Amplitude <= 0 {
		return processing.MagnitudeResult{}, false
	}
	amp := in.Amplitude
	if c.Units != nil && in.Unit != "" && in.Unit != c.Unit {
		converted, err := c.Units.Convert(in.Amplitude, in.Unit, c.Unit)
		if err != nil {
			return processing.MagnitudeResult{}, false
		}
		amp = converted
	}

	reason, ok := validRange(in.EpicentralDistance, c.MinDistanceDeg, c.MaxDistanceDeg, processing.DistanceOutOfRange)
	if !ok {
		return processing.MagnitudeResult{Reason: reason}, true
	}
	if dReason, ok := validRange(in.Depth, c.MinDepthKm, c.MaxDepthKm, processing.DepthOutOfRange); !ok {
		return processing.MagnitudeResult{Reason: dReason}, true
	}

	stationTerm := c.StationTerms[in.Station]
	value := math.Log10(amp) + c.C1*math.Log10(in.EpicentralDistance) + c.C2*in.EpicentralDistance + c.C3 + c.C0*stationTerm
	return processing.MagnitudeResult{Value: value, Reason: processing.InRange}, true
}

// logA0Point is one (distance, log10(A0)) sample of a non-parametric
// calibration table.
type logA0Point struct {
	Distance float64
	LogA0    float64
}

// NonParametricCalibration implements spec.md §4.6's "non-parametric
// distance-amplitude correction table (piecewise-linear with
// extrapolation policy: nearest, linear, or reject)", the classical
// Richter ML -log(A0) calibration curve shape.
type NonParametricCalibration struct {
	Unit         string
	Table        []logA0Point // must be sorted by Distance ascending
	Extrapolate  ExtrapolationPolicy
	MinDepthKm   float64
	MaxDepthKm   float64
}

// NewNonParametricCalibration sorts a copy of table by distance so the
// caller may supply it in any order.
func NewNonParametricCalibration(unit string, table map[float64]float64, policy ExtrapolationPolicy, minDepth, maxDepth float64) *NonParametricCalibration {
	pts := make([]logA0Point, 0, len(table))
	for d, v := range table {
		pts = append(pts, logA0Point{Distance: d, LogA0: v})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Distance < pts[j].Distance })
	return &NonParametricCalibration{Unit: unit, Table: pts, Extrapolate: policy, MinDepthKm: minDepth, MaxDepthKm: maxDepth}
}

func (c *NonParametricCalibration) logA0(distance float64) (float64, bool) {
	n := len(c.Table)
	if n == 0 {
		return 0, false
	}
	if distance <= c.Table[0].Distance {
		if distance == c.Table[0].Distance {
			return c.Table[0].LogA0, true
		}
		switch c.Extrapolate {
		case ExtrapolateNearest:
			return c.Table[0].LogA0, true
		case ExtrapolateLinear:
			if n < 2 {
				return c.Table[0].LogA0, true
			}
			return interp(distance, c.Table[0], c.Table[1]), true
		default:
			return 0, false
		}
	}
	if distance >= c.Table[n-1].Distance {
		if distance == c.Table[n-1].Distance {
			return c.Table[n-1].LogA0, true
		}
		switch c.Extrapolate {
		case ExtrapolateNearest:
			return c.Table[n-1].LogA0, true
		case ExtrapolateLinear:
			if n < 2 {
				return c.Table[n-1].LogA0, true
			}
			return interp(distance, c.Table[n-2], c.Table[n-1]), true
		default:
			return 0, false
		}
	}
	i := sort.Search(n, func(i int) bool { return c.Table[i].Distance >= distance })
	if c.Table[i].Distance == distance {
		return c.Table[i].LogA0, true
	}
	return interp(distance, c.Table[i-1], c.Table[i]), true
}

func interp(x float64, a, b logA0Point) float64 {
	t := (x - a.Distance) / (b.Distance - a.Distance)
	return a.LogA0 + t*(b.LogA0-a.LogA0)
}

// Compute implements processing.MagnitudeProcessor: M = log10(A) - logA0(Δ).
func (c *NonParametricCalibration) Compute(in processing.MagnitudeInput) (processing.MagnitudeResult, bool) {
	if in.Amplitude <= 0 {
		return processing.MagnitudeResult{}, false
	}
	if dReason, ok := validRange(in.Depth, c.MinDepthKm, c.MaxDepthKm, processing.DepthOutOfRange); !ok {
		return processing.MagnitudeResult{Reason: dReason}, true
	}
	logA0, ok := c.logA0(in.EpicentralDistance)
	if !ok {
		return processing.MagnitudeResult{Reason: processing.DistanceOutOfRange}, true
	}
	return processing.MagnitudeResult{Value: math.Log10(in.Amplitude) - logA0, Reason: processing.InRange}, true
}
