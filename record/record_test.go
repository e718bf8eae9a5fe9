package record

import (
	"testing"
	"time"
)

func TestRecordEndTime(t *testing.T) {
	id := StreamID{Network: "XX", Station: "STA", Location: "", Channel: "BHZ"}
	start := time.Date(2019, 1, 1, 0, 0, 0, 8543000, time.UTC)
	data := make([]int32, 100)
	for i := range data {
		data[i] = int32(i)
	}
	rec, err := New(id, start, 20, data)
	if err != nil {
		t.Fatal(err)
	}
	want := start.Add(time.Duration(float64(len(data)) / 20 * float64(time.Second)))
	if got := rec.EndTime(); got.Sub(want).Abs() > time.Microsecond {
		t.Fatalf("end time = %v, want %v", got, want)
	}
}

func TestSequenceContiguousRecord(t *testing.T) {
	id := StreamID{Network: "GE", Station: "MORC", Location: "", Channel: "BHE"}
	seq := NewSequence[int32](id, EvictByDuration)
	seq.MaxDuration = time.Hour

	start := time.Date(2019, 5, 1, 23, 59, 10, 0, time.UTC)
	rateHz := 20.0
	for i := 0; i < 3; i++ {
		data := make([]int32, 40)
		rec, err := New(id, start, rateHz, data)
		if err != nil {
			t.Fatal(err)
		}
		if err := seq.Push(rec); err != nil {
			t.Fatal(err)
		}
		start = rec.EndTime()
	}

	cr := seq.ContiguousRecord()
	if cr == nil {
		t.Fatal("expected a contiguous record")
	}
	if cr.SampleCount() != 120 {
		t.Fatalf("sample count = %d, want 120", cr.SampleCount())
	}
}

func TestSequenceRejectsOverlap(t *testing.T) {
	id := StreamID{Network: "XX", Station: "STA", Location: "", Channel: "BHZ"}
	seq := NewSequence[int32](id, EvictByCount)
	start := time.Now()
	rec1, _ := New(id, start, 20, make([]int32, 40))
	if err := seq.Push(rec1); err != nil {
		t.Fatal(err)
	}
	rec2, _ := New(id, start.Add(time.Second), 20, make([]int32, 40))
	if err := seq.Push(rec2); err != ErrOverlap {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}
}
