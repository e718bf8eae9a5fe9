// Package filter implements the time-domain digital filter library and
// expression language of spec.md §4.2/§6: biquads, Butterworth cascades,
// STA/LTA, envelope, min/max, random, restitution, and custom pipelines,
// behind one generic, uniform Filter interface.
package filter

import (
	"errors"

	"golang.org/x/exp/constraints"
)

// Sample is the set of floating-point types a Filter operates on. Unlike
// record.Sample it excludes the raw integer encodings, so integer data is
// converted to floating point before filtering; WaveformProcessor's
// pre-filter runs before gain correction and sees raw counts in that form.
type Sample interface {
	constraints.Float
}

var (
	// ErrRateNotSet is the value Apply panics with when called before
	// SetSamplingRate.
	ErrRateNotSet = errors.New("filter: sampling rate not set")
	// ErrRateAlreadySet is returned by SetSamplingRate on a second call.
	ErrRateAlreadySet = errors.New("filter: sampling rate already set")
)

// Filter is the uniform contract every primitive and composite filter
// implements, matching spec.md §4.2's "uniform contract".
type Filter[T Sample] interface {
	// Apply filters samples in place.
	Apply(samples []T)
	// SetSamplingRate may be called exactly once before Apply; a second
	// call returns ErrRateAlreadySet.
	SetSamplingRate(hz float64) error
	// SetParameters sets the filter's numeric parameters. The return
	// value is the number of parameters accepted (== len(params) on
	// success), a positive count of how many parameters are expected
	// (error: wrong count), or a negative value for any other error.
	SetParameters(params []float64) int
	// Reset clears all running state without forgetting configuration.
	Reset()
	// Clone returns a new Filter sharing configuration but with reset
	// state.
	Clone() Filter[T]
}

// base provides the common SetSamplingRate "set exactly once" bookkeeping
// shared by every primitive filter, grounded on the "locked after first
// sample" invariant of spec.md §3.
type base struct {
	rate    float64
	rateSet bool
}

func (b *base) setRate(hz float64) error {
	if b.rateSet {
		return ErrRateAlreadySet
	}
	b.rate = hz
	b.rateSet = true
	return nil
}

func (b *base) samplingRate() (float64, error) {
	if !b.rateSet {
		return 0, ErrRateNotSet
	}
	return b.rate, nil
}

// mustRate returns the configured sampling rate or panics with
// ErrRateNotSet. Every Apply implementation calls this first: spec.md
// §4.2 requires that applying a filter before its sampling rate is set
// fails loudly rather than silently doing nothing, matching
// original_source's apply() throwing "Samplerate not initialized".
func (b *base) mustRate() float64 {
	if !b.rateSet {
		panic(ErrRateNotSet)
	}
	return b.rate
}
