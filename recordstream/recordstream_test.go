package recordstream

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/gempa-oss/scstream/filter"
	"github.com/gempa-oss/scstream/record"
)

func mkRecord(t *testing.T, id record.StreamID, start time.Time, rate float64, n int) *record.Record[int32] {
	t.Helper()
	data := make([]int32, n)
	for i := range data {
		data[i] = int32(i)
	}
	rec, err := record.New(id, start, rate, data)
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestMemorySourceFiltersByStreamAndWindow(t *testing.T) {
	id := record.StreamID{Network: "GE", Station: "MORC", Channel: "BHE"}
	other := record.StreamID{Network: "GE", Station: "MORC", Channel: "BHZ"}
	start := time.Date(2019, 5, 1, 23, 59, 10, 0, time.UTC)

	src := NewMemorySource([]*record.Record[int32]{
		mkRecord(t, id, start, 20, 40),
		mkRecord(t, other, start, 20, 40),
		mkRecord(t, id, start.Add(2*time.Second), 20, 40),
	})
	if err := src.AddStream(id, time.Time{}, time.Time{}); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	var got []*record.Record[int32]
	for {
		rec, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, rec)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records for stream %v, got %d", id, len(got))
	}
}

func TestDemuxClonesPerStream(t *testing.T) {
	template := filter.NewAverage[float64](1)
	d := NewDemux[float64](template)

	idA := record.StreamID{Network: "XX", Station: "A", Channel: "BHZ"}
	idB := record.StreamID{Network: "XX", Station: "B", Channel: "BHZ"}
	start := time.Now()
	recA, _ := record.New(idA, start, 10, []float64{1, 2, 3})
	recB, _ := record.New(idB, start, 10, []float64{10, 20, 30})

	outA := d.Feed(recA)
	outB := d.Feed(recB)

	if outA == nil || outB == nil {
		t.Fatal("expected filtered output for both streams")
	}
	if len(d.streams) != 2 {
		t.Fatalf("expected 2 per-stream filter instances, got %d", len(d.streams))
	}
}

func TestResampleProducesTargetRate(t *testing.T) {
	id := record.StreamID{Network: "XX", Station: "STA", Channel: "HHZ"}
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	data := make([]float64, 400)
	for i := range data {
		data[i] = float64(i)
	}
	rec, err := record.New(id, start, 100, data)
	if err != nil {
		t.Fatal(err)
	}

	r := NewResample[float64](20)
	out := r.Feed(rec)
	if out == nil {
		t.Fatal("expected at least one resampled record")
	}
	if out.SamplingRate() != 20 {
		t.Fatalf("sampling rate = %v, want 20", out.SamplingRate())
	}
	if out.SampleCount() == 0 {
		t.Fatal("expected a non-empty resampled record")
	}
}
