package seismology

import (
	"math"
	"testing"

	"github.com/gempa-oss/scstream/processing"
)

func TestParametricCalibrationAppliesStationTerm(t *testing.T) {
	c := ParametricCalibration{
		Unit:           "nm",
		C0:             1,
		C1:             1.66,
		C2:             0,
		C3:             0.3,
		MinDistanceDeg: 20,
		MaxDistanceDeg: 160,
		MinDepthKm:     0,
		MaxDepthKm:     100,
		StationTerms:   map[string]float64{"STA": 0.1},
		Units:          DefaultUnits(),
	}
	result, ok := c.Compute(processing.MagnitudeInput{
		Amplitude:          5000,
		Unit:               "nm",
		EpicentralDistance: 40,
		Depth:              10,
		Station:            "STA",
	})
	if !ok {
		t.Fatal("expected a result")
	}
	want := math.Log10(5000) + 1.66*math.Log10(40) + 0.3 + 0.1
	if math.Abs(result.Value-want) > 1e-9 {
		t.Fatalf("value = %v, want %v", result.Value, want)
	}
}

func TestParametricCalibrationRejectsDistanceOutOfRange(t *testing.T) {
	c := ParametricCalibration{Unit: "nm", MinDistanceDeg: 20, MaxDistanceDeg: 160, MaxDepthKm: 100, Units: DefaultUnits()}
	result, ok := c.Compute(processing.MagnitudeInput{Amplitude: 1000, Unit: "nm", EpicentralDistance: 5, Depth: 10})
	if !ok {
		t.Fatal("expected a determinate result")
	}
	if result.Reason != processing.DistanceOutOfRange {
		t.Fatalf("reason = %v, want DistanceOutOfRange", result.Reason)
	}
}

func TestParametricCalibrationRejectsDepthOutOfRange(t *testing.T) {
	c := ParametricCalibration{Unit: "nm", MinDistanceDeg: 20, MaxDistanceDeg: 160, MinDepthKm: 0, MaxDepthKm: 100, Units: DefaultUnits()}
	result, ok := c.Compute(processing.MagnitudeInput{Amplitude: 1000, Unit: "nm", EpicentralDistance: 40, Depth: 500})
	if !ok {
		t.Fatal("expected a determinate result")
	}
	if result.Reason != processing.DepthOutOfRange {
		t.Fatalf("reason = %v, want DepthOutOfRange", result.Reason)
	}
}

func TestNonParametricCalibrationRejectsDepthOutOfRange(t *testing.T) {
	c := NewNonParametricCalibration("mm", map[float64]float64{0: -1.0, 100: -2.0}, ExtrapolateLinear, 0, 100)
	result, ok := c.Compute(processing.MagnitudeInput{Amplitude: 1, Unit: "mm", EpicentralDistance: 50, Depth: 200})
	if !ok {
		t.Fatal("expected a determinate result")
	}
	if result.Reason != processing.DepthOutOfRange {
		t.Fatalf("reason = %v, want DepthOutOfRange", result.Reason)
	}
}

func TestNonParametricCalibrationInterpolatesLinearly(t *testing.T) {
	c := NewNonParametricCalibration("mm", map[float64]float64{
		0:   -1.0,
		100: -2.0,
	}, ExtrapolateLinear, 0, 700)
	logA0, ok := c.logA0(50)
	if !ok {
		t.Fatal("expected interpolation to succeed")
	}
	if math.Abs(logA0-(-1.5)) > 1e-9 {
		t.Fatalf("logA0(50) = %v, want -1.5", logA0)
	}
}

func TestNonParametricCalibrationRejectsOutsideTable(t *testing.T) {
	c := NewNonParametricCalibration("mm", map[float64]float64{0: -1.0, 100: -2.0}, ExtrapolateReject, 0, 700)
	result, ok := c.Compute(processing.MagnitudeInput{Amplitude: 1, Unit: "mm", EpicentralDistance: 500, Depth: 10})
	if !ok {
		t.Fatal("expected a determinate result")
	}
	if result.Reason != processing.DistanceOutOfRange {
		t.Fatalf("reason = %v, want DistanceOutOfRange", result.Reason)
	}
}

func TestNonParametricCalibrationNearestExtrapolation(t *testing.T) {
	c := NewNonParametricCalibration("mm", map[float64]float64{0: -1.0, 100: -2.0}, ExtrapolateNearest, 0, 700)
	logA0, ok := c.logA0(500)
	if !ok {
		t.Fatal("expected nearest extrapolation to succeed")
	}
	if logA0 != -2.0 {
		t.Fatalf("logA0(500) = %v, want -2.0 (nearest)", logA0)
	}
}
