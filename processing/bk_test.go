package processing

import (
	"testing"
	"time"

	"github.com/gempa-oss/scstream/record"
)

func TestBKPickerDetectsOnsetAndPolarity(t *testing.T) {
	id := record.StreamID{Network: "XX", Station: "STA", Channel: "HHZ"}
	trigger := time.Date(2020, 1, 1, 0, 0, 5, 0, time.UTC)
	meta := StaticMeta{id: {Gain: 1}}

	bk := NewBKPicker[float64](id, trigger, 5*time.Second, 5*time.Second, 4*time.Second, 4, 1, 10, meta)

	samples := make([]float64, 100)
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			samples[i] = 1
		} else {
			samples[i] = -1
		}
	}
	for i := 40; i < 100; i++ {
		samples[i] = 50 + float64(i-40)*5
	}

	idx, lower, upper, snr, polarity, ok := bk.calculatePick(samples, 40, 100)
	if !ok {
		t.Fatal("expected a pick to be found")
	}
	if idx != 40 {
		t.Fatalf("pick index = %d, want 40", idx)
	}
	if lower < 0 || upper < 0 {
		t.Fatalf("uncertainties must be >= 0, got lower=%d upper=%d", lower, upper)
	}
	if snr <= bk.Threshold1 {
		t.Fatalf("snr = %v, want > threshold1 %v", snr, bk.Threshold1)
	}
	if polarity != Positive {
		t.Fatalf("polarity = %v, want Positive", polarity)
	}
}

func TestBKPickerUndecidableOnFlatSegment(t *testing.T) {
	flat := make([]float64, 10)
	got := polarityAt(flat, 0)
	if got != Undecidable {
		t.Fatalf("polarity on flat segment = %v, want Undecidable", got)
	}
}

func TestBKPickerNoTriggerReturnsNotOK(t *testing.T) {
	id := record.StreamID{Network: "XX", Station: "STA", Channel: "HHZ"}
	trigger := time.Now()
	meta := StaticMeta{id: {Gain: 1}}
	bk := NewBKPicker[float64](id, trigger, time.Second, time.Second, 500*time.Millisecond, 4, 1, 10, meta)

	samples := make([]float64, 20)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 0.1
		} else {
			samples[i] = -0.1
		}
	}
	_, _, _, _, _, ok := bk.calculatePick(samples, 10, 20)
	if ok {
		t.Fatal("expected no pick on pure noise")
	}
}
