package processing

import (
	"testing"
	"time"
)

// TestTwoHorizontalMaxCombiner grounds spec.md §8 invariant 3.
func TestTwoHorizontalMaxCombiner(t *testing.T) {
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(2 * time.Second)

	vE := AmplitudeResult{Time: t0, Amplitude: AmplitudeValue{Value: 12}}
	vN := AmplitudeResult{Time: t1, Amplitude: AmplitudeValue{Value: 18}}

	combiner := TwoHorizontal{Combiner: CombineMax}
	got, err := combiner.Combine(vE, vN)
	if err != nil {
		t.Fatal(err)
	}
	if got.Amplitude.Value != 18 {
		t.Fatalf("combined amplitude = %v, want max(12,18)=18", got.Amplitude.Value)
	}
	if !got.Time.Equal(t1) {
		t.Fatalf("combined time = %v, want time of the larger component %v", got.Time, t1)
	}
}

func TestSingleComponentAmplitudeAbsoluteMax(t *testing.T) {
	a := NewSingleComponentAmplitude("m/s", AbsoluteMaximum, nil)
	data := []float64{1, -2, 5, -9, 3}
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	res, err := a.Measure(data, 10, start)
	if err != nil {
		t.Fatal(err)
	}
	if res.Amplitude.Value != 9 {
		t.Fatalf("amplitude = %v, want 9", res.Amplitude.Value)
	}
	wantTime := start.Add(300 * time.Millisecond)
	if !res.Time.Equal(wantTime) {
		t.Fatalf("time = %v, want %v", res.Time, wantTime)
	}
}
