package mseed

import (
	"testing"
	"time"

	"github.com/gempa-oss/scstream/record"
)

// TestRoundTrip implements spec.md §8 scenario (a): a GenericRecord with
// network XX, station STA, channel BHZ, 20 Hz, 100 int32 samples, timing
// quality 30, encoded then decoded, must reproduce every field.
func TestRoundTrip(t *testing.T) {
	id := record.StreamID{Network: "XX", Station: "STA", Location: "", Channel: "BHZ"}
	start := time.Date(2019, 1, 1, 0, 0, 0, 8543000, time.UTC)
	data := make([]int32, 100)
	for i := range data {
		data[i] = int32(i)
	}
	rec, err := record.New(id, start, 20, data)
	if err != nil {
		t.Fatal(err)
	}
	rec.SetTimingQuality(30)

	buf := EncodeInt32(rec)
	decoded, err := DecodeInt32(buf)
	if err != nil {
		t.Fatal(err)
	}

	if decoded.StreamID() != id {
		t.Fatalf("stream id = %v, want %v", decoded.StreamID(), id)
	}
	if !decoded.StartTime().Equal(start) {
		t.Fatalf("start time = %v, want %v", decoded.StartTime(), start)
	}
	if decoded.SamplingRate() != 20 {
		t.Fatalf("sampling rate = %v, want 20", decoded.SamplingRate())
	}
	if decoded.TimingQuality() != 30 {
		t.Fatalf("timing quality = %v, want 30", decoded.TimingQuality())
	}
	if decoded.SampleCount() != 100 {
		t.Fatalf("sample count = %v, want 100", decoded.SampleCount())
	}
	for i, v := range decoded.Data() {
		if v != data[i] {
			t.Fatalf("sample %d = %v, want %v", i, v, data[i])
		}
	}
}

func TestDecodeSRORejectsOutOfRangeExponent(t *testing.T) {
	// gainrange=15 => exponent = -1*(15+0)+10 = -5, out of [0,10].
	input := []uint16{0xF000}
	if _, err := DecodeSRO(input, 1); err != ErrGainRange {
		t.Fatalf("expected ErrGainRange, got %v", err)
	}
}

func TestDecodeCDSNDoesNotConstrainRange(t *testing.T) {
	// Same bit pattern shape as the SRO out-of-range case must not error
	// for CDSN: the asymmetry from spec.md §9 is deliberate.
	input := []uint16{0xF000}
	out := DecodeCDSN(input, 1)
	if len(out) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(out))
	}
}
