package processing

import (
	"testing"
	"time"

	"github.com/gempa-oss/scstream/record"
)

func constantRecord(t *testing.T, id record.StreamID, start time.Time, rate float64, n int, value float64) *record.Record[float64] {
	t.Helper()
	data := make([]float64, n)
	for i := range data {
		data[i] = value
	}
	rec, err := record.New(id, start, rate, data)
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

// TestL2NormOperator grounds spec.md §8 invariant 6 and scenario (c): a 3/4
// constant pair at 20 Hz reduces to a constant 5, and a subsequent
// gap-separated pair produces a second synthesized record.
func TestL2NormOperator(t *testing.T) {
	idE := record.StreamID{Network: "XX", Station: "STA", Channel: "BHE"}
	idN := record.StreamID{Network: "XX", Station: "STA", Channel: "BHN"}
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	op, err := NewNComponentOperator[float64]([]record.StreamID{idE, idN}, "BHL", L2Norm[float64]())
	if err != nil {
		t.Fatal(err)
	}

	recE := constantRecord(t, idE, start, 20, 40, 3)
	recN := constantRecord(t, idN, start, 20, 40, 4)

	if out, err := op.Feed(recE); err != nil || out != nil {
		t.Fatalf("unexpected first-channel output: %v %v", out, err)
	}
	out, err := op.Feed(recN)
	if err != nil {
		t.Fatal(err)
	}
	if out == nil {
		t.Fatal("expected a synthesized record once both channels align")
	}
	if out.SampleCount() != 40 {
		t.Fatalf("sample count = %d, want 40", out.SampleCount())
	}
	if !out.StartTime().Equal(start) {
		t.Fatalf("start time = %v, want %v", out.StartTime(), start)
	}
	for i, v := range out.Data() {
		if v != 5 {
			t.Fatalf("sample %d = %v, want 5", i, v)
		}
	}

	// second pair, after a 10s gap.
	second := start.Add(12 * time.Second)
	recE2 := constantRecord(t, idE, second, 20, 40, 3)
	recN2 := constantRecord(t, idN, second, 20, 40, 4)
	if out, err := op.Feed(recE2); err != nil || out != nil {
		t.Fatalf("unexpected first-channel output: %v %v", out, err)
	}
	out2, err := op.Feed(recN2)
	if err != nil {
		t.Fatal(err)
	}
	if out2 == nil {
		t.Fatal("expected a second synthesized record after the gap")
	}
	if !out2.StartTime().Equal(second) {
		t.Fatalf("second start time = %v, want %v", out2.StartTime(), second)
	}
}

func TestNComponentOperatorRejectsWrongChannelCount(t *testing.T) {
	idZ := record.StreamID{Network: "XX", Station: "STA", Channel: "BHZ"}
	if _, err := NewNComponentOperator[float64]([]record.StreamID{idZ}, "OUT", L2Norm[float64]()); err == nil {
		t.Fatal("expected an error for a single-channel operator")
	}
}
