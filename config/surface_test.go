package config

import "testing"

func TestParseRecognizedKeys(t *testing.T) {
	s, err := Parse(map[string]string{
		"filter":     "BW(4,1,10)",
		"noiseBegin": "-10",
		"signalEnd":  "30",
		"minSNR":     "3",
		"combiner":   "max",
		"c1":         "1.66",
		"c3":         "0.3",
		"logA0.20":   "-1.5",
		"logA0.100":  "-2.0",
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.Filter != "BW(4,1,10)" {
		t.Fatalf("Filter = %q", s.Filter)
	}
	if s.NoiseBegin != -10 || s.SignalEnd != 30 || s.MinSNR != 3 {
		t.Fatalf("numeric fields = %+v", s)
	}
	if s.Combiner != "max" {
		t.Fatalf("Combiner = %q", s.Combiner)
	}
	if s.C1 != 1.66 || s.C3 != 0.3 {
		t.Fatalf("coefficients = %+v", s)
	}
	if len(s.LogA0Table) != 2 || s.LogA0Table[20] != -1.5 || s.LogA0Table[100] != -2.0 {
		t.Fatalf("LogA0Table = %+v", s.LogA0Table)
	}
}

func TestParseRejectsUnknownKey(t *testing.T) {
	_, err := Parse(map[string]string{"bogusKey": "1"})
	if err == nil {
		t.Fatal("expected an error for an unrecognized key")
	}
	var unknown ErrUnknownKey
	if !errorsAs(err, &unknown) {
		t.Fatalf("error = %v, want ErrUnknownKey", err)
	}
}

func TestParseRejectsInvalidValue(t *testing.T) {
	_, err := Parse(map[string]string{"minSNR": "not-a-number"})
	if err == nil {
		t.Fatal("expected an error for an invalid numeric value")
	}
	var invalid ErrInvalidValue
	if !errorsAs(err, &invalid) {
		t.Fatalf("error = %v, want ErrInvalidValue", err)
	}
}

func errorsAs(err error, target any) bool {
	switch t := target.(type) {
	case *ErrUnknownKey:
		if e, ok := err.(ErrUnknownKey); ok {
			*t = e
			return true
		}
	case *ErrInvalidValue:
		if e, ok := err.(ErrInvalidValue); ok {
			*t = e
			return true
		}
	}
	return false
}
