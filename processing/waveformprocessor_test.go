package processing

import (
	"context"
	"testing"
	"time"

	"github.com/gempa-oss/scstream/record"
)

func TestWaveformProcessorCompletesOnFullWindow(t *testing.T) {
	id := record.StreamID{Network: "XX", Station: "STA", Channel: "HHZ"}
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	window := TimeWindow{Start: start, End: start.Add(2 * time.Second)}
	meta := StaticMeta{id: {Gain: 2}}

	var gotStart int
	var gotLen int
	handler := func(p *WaveformProcessor[float64], data []float64, startIndex int) {
		gotStart = startIndex
		gotLen = len(data)
	}

	p := NewWaveformProcessor[float64](id, window.Start, window.End, meta, handler)
	p.SetMargin(0)

	data := make([]float64, 20) // 2s @ 10Hz
	for i := range data {
		data[i] = 4
	}
	rec, err := record.New(id, start, 10, data)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := p.Feed(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if p.State() != Finished {
		t.Fatalf("state = %v, want Finished", p.State())
	}
	if gotStart != 0 {
		t.Fatalf("startIndex = %d, want 0 (margin disabled)", gotStart)
	}
	if gotLen != 20 {
		t.Fatalf("len(data) = %d, want 20", gotLen)
	}
}

func TestWaveformProcessorTerminatesOnMissingGain(t *testing.T) {
	id := record.StreamID{Network: "XX", Station: "STA", Channel: "HHZ"}
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	p := NewWaveformProcessor[float64](id, start, start.Add(time.Second), StaticMeta{}, nil)

	rec, _ := record.New(id, start, 10, []float64{1, 2, 3})
	if err := p.Feed(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	if p.State() != Terminated || p.TerminationCause() != MissingGain {
		t.Fatalf("state=%v cause=%v, want Terminated/MissingGain", p.State(), p.TerminationCause())
	}
}

func TestWaveformProcessorTerminatesOnSaturation(t *testing.T) {
	id := record.StreamID{Network: "XX", Station: "STA", Channel: "HHZ"}
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	meta := StaticMeta{id: {Gain: 1}}
	p := NewWaveformProcessor[float64](id, start, start.Add(time.Second), meta, nil)
	p.SetGate(Gate{SaturationThreshold: 100})

	rec, _ := record.New(id, start, 10, []float64{1, 2, 500})
	if err := p.Feed(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	if p.State() != Terminated || p.TerminationCause() != DataClipped {
		t.Fatalf("state=%v cause=%v, want Terminated/DataClipped", p.State(), p.TerminationCause())
	}
}

func TestWaveformProcessorIgnoresFeedAfterFinished(t *testing.T) {
	id := record.StreamID{Network: "XX", Station: "STA", Channel: "HHZ"}
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	meta := StaticMeta{id: {Gain: 1}}
	calls := 0
	handler := func(p *WaveformProcessor[float64], data []float64, startIndex int) { calls++ }
	p := NewWaveformProcessor[float64](id, start, start.Add(time.Second), meta, handler)
	p.SetMargin(0)

	rec, _ := record.New(id, start, 10, make([]float64, 10))
	ctx := context.Background()
	_ = p.Feed(ctx, rec)
	if p.State() != Finished {
		t.Fatalf("expected Finished after first feed, got %v", p.State())
	}

	rec2, _ := record.New(id, start.Add(time.Second), 10, make([]float64, 10))
	_ = p.Feed(ctx, rec2)
	if calls != 1 {
		t.Fatalf("handler called %d times, want exactly 1", calls)
	}
}
