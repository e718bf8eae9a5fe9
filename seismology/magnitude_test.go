package seismology

import (
	"math"
	"testing"

	"github.com/gempa-oss/scstream/processing"
)

func TestMs20WorkedExample(t *testing.T) {
	m := NewMs20()
	result, ok := m.Compute(processing.MagnitudeInput{
		Amplitude:          100000,
		Unit:               "nm",
		Period:             20,
		EpicentralDistance: 40,
		Depth:              10,
	})
	if !ok {
		t.Fatal("expected a result")
	}
	if result.Reason != processing.InRange {
		t.Fatalf("reason = %v, want InRange", result.Reason)
	}
	// log10(100000/20) + 1.66*log10(40) + 0.3
	want := math.Log10(100000.0/20) + 1.66*math.Log10(40) + 0.3
	if math.Abs(result.Value-want) > 1e-9 {
		t.Fatalf("Ms_20 = %v, want %v", result.Value, want)
	}
}

func TestMs20RejectsOutOfRangeDistance(t *testing.T) {
	m := NewMs20()
	result, ok := m.Compute(processing.MagnitudeInput{
		Amplitude:          100000,
		Unit:               "nm",
		Period:             20,
		EpicentralDistance: 5,
		Depth:              10,
	})
	if !ok {
		t.Fatal("expected a determinate out-of-range result")
	}
	if result.Reason == processing.InRange {
		t.Fatal("expected out-of-range reason for distance below validity window")
	}
}

func TestMbRejectsOutOfRangeDepth(t *testing.T) {
	m := NewMb()
	result, ok := m.Compute(processing.MagnitudeInput{
		Amplitude:          50000,
		Unit:               "nm",
		Period:             1,
		EpicentralDistance: 40,
		Depth:              900,
	})
	if !ok {
		t.Fatal("expected a determinate out-of-range result")
	}
	if result.Reason != processing.DepthOutOfRange {
		t.Fatalf("reason = %v, want DepthOutOfRange", result.Reason)
	}
}

func TestMwPProducesPositiveMagnitudeForTeleseismicInput(t *testing.T) {
	m := NewMwP()
	result, ok := m.Compute(processing.MagnitudeInput{
		Amplitude:          2000,
		Unit:               "nm*s",
		EpicentralDistance: 50,
	})
	if !ok {
		t.Fatal("expected a result")
	}
	if result.Reason != processing.InRange || result.Value <= 0 {
		t.Fatalf("Mwp = %+v, want a positive in-range value", result)
	}
}

func TestEstimateMwFromWhitmoreFormula(t *testing.T) {
	value, stdErr := EstimateMw(8.0)
	want := 1.186*8.0 - 1.222
	if math.Abs(value-want) > 1e-9 {
		t.Fatalf("EstimateMw value = %v, want %v", value, want)
	}
	if stdErr != 0.4 {
		t.Fatalf("EstimateMw stdError = %v, want 0.4", stdErr)
	}
}

func TestUnitsConvertRevertRoundTrip(t *testing.T) {
	u := DefaultUnits()
	converted, err := u.Convert(1000, "nm", "um")
	if err != nil {
		t.Fatal(err)
	}
	reverted, err := u.Revert(converted, "nm", "um")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(reverted-1000) > 1e-9 {
		t.Fatalf("round-trip = %v, want 1000", reverted)
	}
}

func TestUnitsConvertUnknownUnit(t *testing.T) {
	u := DefaultUnits()
	if _, err := u.Convert(1, "nm", "furlong"); err == nil {
		t.Fatal("expected ErrUnknownUnit")
	}
}
