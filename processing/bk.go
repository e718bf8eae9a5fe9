package processing

import (
	"math"
	"time"

	"github.com/gempa-oss/scstream/filter"
	"github.com/gempa-oss/scstream/record"
)

// BKPicker is the Baer-Kraedolfer style picker of spec.md §4.5, grounded
// on original_source's processing/picker/bk.h (which declares the filter
// settings, thrshl1/thrshl2 thresholds, and the calculatePick signature
// but carries no .cpp body; the characteristic-function recursion below
// is a standard Baer & Kraedolfer (1987) reconstruction, not a verbatim
// port).
type BKPicker[T filter.Sample] struct {
	*Picker[T]
	Threshold1 float64 // trigger threshold, default 10
	Threshold2 float64 // decay threshold, default 20
}

// NewBKPicker builds a BKPicker with a bandpass pre-filter [f1, f2] of the
// given pole count, matching bk.h's filterType/filterPoles/f1/f2 fields.
func NewBKPicker[T filter.Sample](id record.StreamID, trigger time.Time, pre, post, noiseSplit time.Duration, poles int, f1, f2 float64, meta StreamMetaProvider) *BKPicker[T] {
	bk := &BKPicker[T]{Threshold1: 10, Threshold2: 20}
	bk.Picker = NewPicker[T](id, trigger, pre, post, noiseSplit, "BK", "", meta, bk.calculatePick)
	bw, err := newBandpass[T](poles, f1, f2)
	if err == nil {
		bk.SetPreFilter(bw)
		bk.filterID = bw.label
	}
	return bk
}

// calculatePick implements the bk_wrapper/calculatePick pair of bk.h: a
// running characteristic function combining amplitude and slope energy,
// normalized against the noise segment, triggers on Threshold1 and is
// refined backward to the first sample where the function departs from
// noise level, bounded forward by decay below Threshold2.
func (bk *BKPicker[T]) calculatePick(samples []T, signalStart, signalEnd int) (int, int, int, float64, Polarity, bool) {
	n := len(samples)
	if signalStart <= 1 || signalStart >= n || signalEnd > n {
		return 0, 0, 0, 0, PolarityUnset, false
	}

	cf := characteristicFunction(samples)

	var noiseSum, noiseSumSq float64
	for i := 1; i < signalStart; i++ {
		noiseSum += cf[i]
		noiseSumSq += cf[i] * cf[i]
	}
	noiseN := float64(signalStart - 1)
	if noiseN < 1 {
		return 0, 0, 0, 0, PolarityUnset, false
	}
	noiseMean := noiseSum / noiseN
	noiseVar := noiseSumSq/noiseN - noiseMean*noiseMean
	if noiseVar < 0 {
		noiseVar = 0
	}
	noiseStd := math.Sqrt(noiseVar)
	if noiseStd == 0 {
		noiseStd = 1e-12
	}

	trigger := -1
	for i := signalStart; i < signalEnd; i++ {
		if (cf[i]-noiseMean)/noiseStd > bk.Threshold1 {
			trigger = i
			break
		}
	}
	if trigger < 0 {
		return 0, 0, 0, 0, PolarityUnset, false
	}

	// refine backward to where the function first rose above the decay
	// threshold, declaring that as the onset (spec.md §4.5 "refines it on
	// decay below threshold2").
	onset := trigger
	for onset > signalStart && (cf[onset]-noiseMean)/noiseStd > bk.Threshold2 {
		onset--
	}

	// forward decay bound, for the upper uncertainty.
	decayEnd := trigger
	for decayEnd < signalEnd-1 && (cf[decayEnd]-noiseMean)/noiseStd > bk.Threshold2 {
		decayEnd++
	}

	lowerUncertainty := trigger - onset
	upperUncertainty := decayEnd - trigger
	snr := (cf[trigger] - noiseMean) / noiseStd

	polarity := polarityAt(samples, onset)

	return onset, lowerUncertainty, upperUncertainty, snr, polarity, true
}

// characteristicFunction combines instantaneous amplitude energy with
// slope energy, the two terms Baer & Kraedolfer's CF sums so that both
// impulsive and emergent onsets raise it above the noise floor.
func characteristicFunction(samples []T) []float64 {
	cf := make([]float64, len(samples))
	for i := 1; i < len(samples); i++ {
		a := float64(samples[i])
		d := a - float64(samples[i-1])
		cf[i] = a*a + d*d
	}
	return cf
}

// polarityAt derives first-motion polarity from the signed slope in a
// short window after index (spec.md §4.5), returning Undecidable for a
// segment with no discernible slope rather than the unset zero value.
func polarityAt[T filter.Sample](samples []T, index int) Polarity {
	const window = 3
	end := index + window
	if end >= len(samples) {
		end = len(samples) - 1
	}
	if end <= index {
		return Undecidable
	}
	slope := float64(samples[end]) - float64(samples[index])
	const eps = 1e-9
	switch {
	case slope > eps:
		return Positive
	case slope < -eps:
		return Negative
	default:
		return Undecidable
	}
}

type labeledFilter[T filter.Sample] struct {
	filter.Filter[T]
	label string
}

func newBandpass[T filter.Sample](poles int, f1, f2 float64) (*labeledFilter[T], error) {
	bp := filter.NewButterworthBandpass[T](poles, f1, f2)
	return &labeledFilter[T]{Filter: bp, label: "BW"}, nil
}
