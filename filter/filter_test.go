package filter

import "testing"

// TestCloneAppliesIdentically grounds spec.md §8 invariant 1: a filter
// cloned after configuration but before data produces identical output
// to the original on the same input.
func TestCloneAppliesIdentically(t *testing.T) {
	orig := NewBiquadCascade[float64](designLowpass(4, 5, 100))
	if err := orig.SetSamplingRate(100); err != nil {
		t.Fatal(err)
	}
	clone := orig.Clone()

	in := make([]float64, 64)
	for i := range in {
		in[i] = float64(i%7) - 3
	}
	a := append([]float64(nil), in...)
	b := append([]float64(nil), in...)

	orig.Apply(a)
	clone.Apply(b)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d diverged: %v != %v", i, a[i], b[i])
		}
	}
}

// TestParseChain grounds spec.md §8 scenario (f): parsing
// "BW(4,0.5,5)>>STALTA(1,60)" yields a ChainFilter of the expected kinds
// and parameters.
func TestParseChain(t *testing.T) {
	r := DefaultRegistry[float64]()
	f, err := r.Parse("BW(4,0.5,5)>>STALTA(1,60)")
	if err != nil {
		t.Fatal(err)
	}
	chain, ok := f.(*ChainFilter[float64])
	if !ok {
		t.Fatalf("expected *ChainFilter, got %T", f)
	}
	if chain.FilterCount() != 2 {
		t.Fatalf("expected 2 stages, got %d", chain.FilterCount())
	}
	bw, ok := chain.filters[0].(*ButterworthBandpass[float64])
	if !ok {
		t.Fatalf("stage 0: expected *ButterworthBandpass, got %T", chain.filters[0])
	}
	if bw.order != 4 || bw.fmin != 0.5 || bw.fmax != 5 {
		t.Fatalf("unexpected bandpass params: %+v", bw)
	}
	st, ok := chain.filters[1].(*STALTA[float64])
	if !ok {
		t.Fatalf("stage 1: expected *STALTA, got %T", chain.filters[1])
	}
	if st.lenSTA != 1 || st.lenLTA != 60 {
		t.Fatalf("unexpected STALTA params: %+v", st)
	}
}

// TestParseUnknownFilter grounds spec.md §8 scenario (f)'s second half:
// an unrecognized name yields an error pointing at its first character.
func TestParseUnknownFilter(t *testing.T) {
	r := DefaultRegistry[float64]()
	_, err := r.Parse("UNKNOWN(1)")
	uerr, ok := err.(*UnknownFilterError)
	if !ok {
		t.Fatalf("expected *UnknownFilterError, got %T (%v)", err, err)
	}
	if uerr.Offset != 0 {
		t.Fatalf("offset = %d, want 0", uerr.Offset)
	}
	if uerr.Name != "UNKNOWN" {
		t.Fatalf("name = %q, want UNKNOWN", uerr.Name)
	}
}
