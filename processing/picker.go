package processing

import (
	"time"

	"github.com/gempa-oss/scstream/filter"
	"github.com/gempa-oss/scstream/record"
)

// Polarity is the sign of first motion a Picker may report, spec.md §3.
// The zero value is reserved for "no polarity computed" (an unimplemented
// variant, per DESIGN.md's open-question decision); Undecidable is the
// explicit value a picker returns for a genuinely flat onset.
type Polarity int

const (
	PolarityUnset Polarity = iota
	Positive
	Negative
	Undecidable
)

func (p Polarity) String() string {
	switch p {
	case Positive:
		return "Positive"
	case Negative:
		return "Negative"
	case Undecidable:
		return "Undecidable"
	default:
		return "Unset"
	}
}

// PickResult is the emitted outcome of one Picker run, spec.md §3.
type PickResult struct {
	StreamID         record.StreamID
	Time             time.Time
	LowerUncertainty time.Duration
	UpperUncertainty time.Duration
	SNR              float64
	Polarity         Polarity
	FilterID         string
	MethodID         string
}

// CalculatePick is the algorithm hook of spec.md §4.5: given the buffered
// samples and the [signalStart, signalEnd) index range inside them, it
// reports the pick sample index (absolute, within samples), its
// time-uncertainty bounds in samples, an SNR estimate, and an optional
// polarity. ok is false if no pick was found.
type CalculatePick[T filter.Sample] func(samples []T, signalStart, signalEnd int) (index, lowerUncertaintySamples, upperUncertaintySamples int, snr float64, polarity Polarity, ok bool)

// Picker extends TimeWindowProcessor with the pre/post-trigger analysis
// window and noise/signal split of spec.md §4.5, invoking CalculatePick
// once the window is complete and translating its sample-indexed result
// into a PickResult.
type Picker[T filter.Sample] struct {
	*TimeWindowProcessor[T]
	methodID    string
	filterID    string
	noiseSplit  time.Duration // signal window starts noiseSplit after the analysis-window start
	calc        CalculatePick[T]
	result      *PickResult
	resultErr   bool
}

// NewPicker builds a Picker with analysis window [trigger-pre,
// trigger+post]. noiseSplit marks where, within that window, the noise
// estimation segment ends and the signal segment begins.
func NewPicker[T filter.Sample](id record.StreamID, trigger time.Time, pre, post, noiseSplit time.Duration, methodID, filterID string, meta StreamMetaProvider, calc CalculatePick[T]) *Picker[T] {
	p := &Picker[T]{
		methodID:   methodID,
		filterID:   filterID,
		noiseSplit: noiseSplit,
		calc:       calc,
	}
	window := TimeWindow{Start: trigger.Add(-pre), End: trigger.Add(post)}
	p.TimeWindowProcessor = NewTimeWindowProcessor[T](id, window, meta, p.onComplete)
	return p
}

// Result returns the pick emitted once the processor reaches Finished, or
// nil if it has not finished, terminated, or found no pick.
func (p *Picker[T]) Result() *PickResult { return p.result }

func (p *Picker[T]) onComplete(proc *WaveformProcessor[T], data []T, startIndex int) {
	signalStart := startIndex + int(p.noiseSplit.Seconds()*proc.rate)
	if signalStart > len(data) {
		signalStart = len(data)
	}
	idx, lowerS, upperS, snr, polarity, ok := p.calc(data, signalStart, len(data))
	if !ok {
		p.resultErr = true
		return
	}
	rate := proc.rate
	pickTime := p.window.Start.Add(durationOf(idx-startIndex, rate))
	p.result = &PickResult{
		StreamID:         proc.streamID,
		Time:             pickTime,
		LowerUncertainty: durationOf(lowerS, rate),
		UpperUncertainty: durationOf(upperS, rate),
		SNR:              snr,
		Polarity:         polarity,
		FilterID:         p.filterID,
		MethodID:         p.methodID,
	}
}
