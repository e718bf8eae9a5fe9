package processing

import (
	"errors"
	"math"
	"time"

	"github.com/gempa-oss/scstream/filter"
	"github.com/gempa-oss/scstream/record"
)

// AmplitudeValue is a measured scalar with uncertainty bounds, spec.md §3.
type AmplitudeValue struct {
	Value            float64
	LowerUncertainty float64
	UpperUncertainty float64
}

// AmplitudeResult is the outcome of one AmplitudeProcessor run, spec.md §3.
type AmplitudeResult struct {
	StreamID  record.StreamID
	Time      time.Time
	Amplitude AmplitudeValue
	Period    float64 // 0 if not measured
	SNR       float64
	Unit      string
}

// MeasurementRule selects how an AmplitudeProcessor reduces a response-
// corrected, band-limited waveform segment to a scalar amplitude, spec.md
// §4.6.
type MeasurementRule int

const (
	HalfPeakToPeak MeasurementRule = iota
	AbsoluteMaximum
	IntegratedEnvelope
)

// AmplitudeProcessor is the interface spec.md §4.6 describes: a
// response-simulation-aware, filtered, period-tagging peak measurer.
// SingleComponentAmplitude is the implementation this module provides; it
// bundles no MLh or mb_Lg processor, and the seismology package holds only
// magnitude calibrations. Measurement
// always runs on a floating-point, gain-corrected segment (mirroring
// filter.Sample's float-only domain), regardless of the raw record's
// sample type.
type AmplitudeProcessor interface {
	Unit() string
	Measure(data []float64, rate float64, start time.Time) (AmplitudeResult, error)
}

// ErrNoPeak is returned when a measurement window contains no usable peak
// (e.g. it is entirely silent or flat).
var ErrNoPeak = errors.New("processing: no peak found in amplitude window")

// SingleComponentAmplitude is the shared measurement engine for one
// component: it applies a filter expression, a measurement rule, and
// reports the peak with its period, grounded on MLh.h's single-component
// half of the ML proxy.
type SingleComponentAmplitude struct {
	unit string
	rule MeasurementRule
	pre  filter.Filter[float64]
}

// NewSingleComponentAmplitude builds a measurer for the given unit (m,
// m/s, m/s^2) and rule, with an optional pre-filter (response simulation
// or band-limiting) already configured with its sampling rate.
func NewSingleComponentAmplitude(unit string, rule MeasurementRule, pre filter.Filter[float64]) *SingleComponentAmplitude {
	return &SingleComponentAmplitude{unit: unit, rule: rule, pre: pre}
}

func (a *SingleComponentAmplitude) Unit() string { return a.unit }

// Measure implements the measurement rules of spec.md §4.6 over an
// already-extracted data segment.
func (a *SingleComponentAmplitude) Measure(data []float64, rate float64, start time.Time) (AmplitudeResult, error) {
	work := make([]float64, len(data))
	copy(work, data)
	if a.pre != nil {
		a.pre.Apply(work)
	}

	switch a.rule {
	case HalfPeakToPeak:
		return a.measureHalfPeakToPeak(work, rate, start)
	case AbsoluteMaximum:
		return a.measureAbsoluteMax(work, rate, start)
	case IntegratedEnvelope:
		return a.measureIntegratedEnvelope(work, rate, start)
	default:
		return AmplitudeResult{}, errors.New("processing: unknown measurement rule")
	}
}

func (a *SingleComponentAmplitude) measureAbsoluteMax(work []float64, rate float64, start time.Time) (AmplitudeResult, error) {
	maxIdx, maxVal := -1, 0.0
	for i, v := range work {
		f := math.Abs(v)
		if f > maxVal {
			maxVal = f
			maxIdx = i
		}
	}
	if maxIdx < 0 {
		return AmplitudeResult{}, ErrNoPeak
	}
	t := start.Add(durationOf(maxIdx, rate))
	return AmplitudeResult{Time: t, Amplitude: AmplitudeValue{Value: maxVal}, Unit: a.unit}, nil
}

func (a *SingleComponentAmplitude) measureHalfPeakToPeak(work []float64, rate float64, start time.Time) (AmplitudeResult, error) {
	maxIdx, minIdx := -1, -1
	maxVal, minVal := -math.MaxFloat64, math.MaxFloat64
	for i, v := range work {
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
		if v < minVal {
			minVal = v
			minIdx = i
		}
	}
	if maxIdx < 0 || minIdx < 0 {
		return AmplitudeResult{}, ErrNoPeak
	}
	amp := (maxVal - minVal) / 2
	peakIdx := maxIdx
	if minIdx > maxIdx {
		peakIdx = minIdx
	}
	period := 2 * math.Abs(float64(maxIdx-minIdx)) / rate
	t := start.Add(durationOf(peakIdx, rate))
	return AmplitudeResult{Time: t, Amplitude: AmplitudeValue{Value: amp}, Period: period, Unit: a.unit}, nil
}

func (a *SingleComponentAmplitude) measureIntegratedEnvelope(work []float64, rate float64, start time.Time) (AmplitudeResult, error) {
	var sum float64
	peakIdx := -1
	peakVal := 0.0
	for i, v := range work {
		f := math.Abs(v)
		sum += f / rate
		if f > peakVal {
			peakVal = f
			peakIdx = i
		}
	}
	if peakIdx < 0 {
		return AmplitudeResult{}, ErrNoPeak
	}
	t := start.Add(durationOf(peakIdx, rate))
	return AmplitudeResult{Time: t, Amplitude: AmplitudeValue{Value: sum}, Unit: a.unit}, nil
}

// Combiner is the reduction an two-horizontal amplitude proxy applies once
// both component sub-processors have completed, grounded on
// amplitudes/MLh.h's AmplitudeProcessor_ML2h::CombinerProc enum.
type Combiner int

const (
	CombineMin Combiner = iota
	CombineMax
	CombineAverage
	CombineGeometricMean
)

// TwoHorizontal combines two completed AmplitudeResults from orthogonal
// horizontal components by the configured Combiner, spec.md §4.6 ("ML-2h,
// MLc-2h, MLh, mb_Lg-2h ... combine their results").
type TwoHorizontal struct {
	Combiner Combiner
}

// Combine reduces a and b per c.Combiner. For min and max the returned
// result's Time is taken from whichever input contributed the selected
// value; for average and geometric mean, which select neither, it is the
// later of the two inputs' times.
func (c TwoHorizontal) Combine(a, b AmplitudeResult) (AmplitudeResult, error) {
	switch c.Combiner {
	case CombineMin:
		if a.Amplitude.Value <= b.Amplitude.Value {
			return a, nil
		}
		return b, nil
	case CombineMax:
		if a.Amplitude.Value >= b.Amplitude.Value {
			return a, nil
		}
		return b, nil
	case CombineAverage:
		out := a
		out.Amplitude.Value = (a.Amplitude.Value + b.Amplitude.Value) / 2
		if b.Time.After(a.Time) {
			out.Time = b.Time
		}
		return out, nil
	case CombineGeometricMean:
		if a.Amplitude.Value < 0 || b.Amplitude.Value < 0 {
			return AmplitudeResult{}, errors.New("processing: geometric mean requires non-negative amplitudes")
		}
		out := a
		out.Amplitude.Value = math.Sqrt(a.Amplitude.Value * b.Amplitude.Value)
		if b.Time.After(a.Time) {
			out.Time = b.Time
		}
		return out, nil
	default:
		return AmplitudeResult{}, errors.New("processing: unknown combiner")
	}
}
