package processing

import (
	"context"
	"math"
	"time"

	"github.com/gempa-oss/scstream/filter"
	"github.com/gempa-oss/scstream/record"
)

// StreamMeta carries the per-channel calibration the processor needs to
// turn raw counts into physical units, the "stream meta" of spec.md §3/§4.3
// (ground truth for gain/orientation is original_source's
// processing/stream.h: code(), sensor(), applyGain/removeGain, and the
// public gain/gainFrequency/gainUnit/azimuth/dip fields).
type StreamMeta struct {
	Gain          float64
	GainFrequency float64
	GainUnit      string
	Azimuth       float64
	Dip           float64
}

// StreamMetaProvider is the inventory/DB boundary a WaveformProcessor
// consults for gain and orientation, grounded on stream.h's init-from-
// DataModel::Stream pattern generalized to an interface so the caller owns
// how metadata is sourced (test fixture, cached inventory, live DB).
type StreamMetaProvider interface {
	StreamMeta(id record.StreamID) (StreamMeta, bool)
}

// StaticMeta is a trivial StreamMetaProvider backed by a fixed map, useful
// for tests and single-station tools.
type StaticMeta map[record.StreamID]StreamMeta

func (m StaticMeta) StreamMeta(id record.StreamID) (StreamMeta, bool) {
	v, ok := m[id]
	return v, ok
}

// Handler is invoked exactly once, when a WaveformProcessor's analysis
// window is fully covered. data is the accumulated, filtered,
// gain-corrected buffer; startIndex is the offset of the analysis window's
// first sample within data (samples before it belong to the safety
// margin, spec.md §4.3 step 7).
type Handler[T filter.Sample] func(p *WaveformProcessor[T], data []T, startIndex int)

// Gate bundles the usable-data gates of spec.md §4.3: the maximum
// tolerated gap before filter state is flushed (or the processor is
// terminated, depending on TerminateOnGap), and the saturation threshold
// above which a sample is considered clipped.
type Gate struct {
	MaximumGapLength    time.Duration
	TerminateOnGap      bool
	SaturationThreshold float64 // <= 0 disables clip detection
}

// WaveformProcessor is the state machine of spec.md §4.3: it consumes
// Records for one stream, runs them through an optional pre-filter,
// applies gain correction, detects gaps and saturation, and invokes a
// Handler once its analysis window is fully buffered.
type WaveformProcessor[T filter.Sample] struct {
	streamID record.StreamID
	state    State
	cause    TerminationCause

	preFilter        filter.Filter[T]
	preFilterRateSet bool
	meta             StreamMetaProvider
	gate             Gate
	margin           time.Duration

	windowStart time.Time
	windowEnd   time.Time

	rate        float64
	rateSet     bool
	buffer      []T
	bufferStart time.Time
	haveBuffer  bool

	lastEnd      time.Time
	haveLast     bool
	lastFeed     time.Time
	haveLastFeed bool

	inactivityTimeout time.Duration
	handler           Handler[T]
}

// NewWaveformProcessor constructs a processor bound to one stream id and
// required analysis window. The default safety margin is 60s and the
// default inactivity timeout is 60s, matching spec.md §4.3 steps 7 and 9.
func NewWaveformProcessor[T filter.Sample](id record.StreamID, windowStart, windowEnd time.Time, meta StreamMetaProvider, handler Handler[T]) *WaveformProcessor[T] {
	return &WaveformProcessor[T]{
		streamID:          id,
		state:             WaitingForData,
		meta:              meta,
		margin:            60 * time.Second,
		windowStart:       windowStart,
		windowEnd:         windowEnd,
		inactivityTimeout: 60 * time.Second,
		handler:           handler,
	}
}

func (p *WaveformProcessor[T]) State() State                   { return p.state }
func (p *WaveformProcessor[T]) TerminationCause() TerminationCause { return p.cause }
func (p *WaveformProcessor[T]) StreamID() record.StreamID       { return p.streamID }
func (p *WaveformProcessor[T]) SamplingRate() float64           { return p.rate }

// SetPreFilter installs the pre-filter chain samples are run through
// before gain correction (spec.md §4.3 steps 4-5: "the filter sees raw
// counts").
func (p *WaveformProcessor[T]) SetPreFilter(f filter.Filter[T]) { p.preFilter = f }

// SetGate installs the usable-data gates.
func (p *WaveformProcessor[T]) SetGate(g Gate) { p.gate = g }

// SetMargin overrides the default 60s safety margin.
func (p *WaveformProcessor[T]) SetMargin(d time.Duration) { p.margin = d }

// SetInactivityTimeout overrides the default 60s incomplete-data timeout.
func (p *WaveformProcessor[T]) SetInactivityTimeout(d time.Duration) { p.inactivityTimeout = d }

func (p *WaveformProcessor[T]) terminate(cause TerminationCause) {
	p.state = Terminated
	p.cause = cause
}

func (p *WaveformProcessor[T]) safetyStart() time.Time { return p.windowStart.Add(-p.margin) }
func (p *WaveformProcessor[T]) safetyEnd() time.Time   { return p.windowEnd.Add(p.margin) }

// Feed runs one Record through the state machine. It is a no-op once the
// processor has reached Finished or Terminated (spec.md §3 invariant).
func (p *WaveformProcessor[T]) Feed(ctx context.Context, rec *record.Record[T]) error {
	if p.state == Finished || p.state == Terminated {
		return nil
	}
	select {
	case <-ctx.Done():
		p.terminate(ProcessorError)
		return ctx.Err()
	default:
	}

	// step 1: drop mismatched stream-id.
	if rec.StreamID() != p.streamID {
		return nil
	}

	p.lastFeed = time.Now()
	p.haveLastFeed = true

	if !p.rateSet {
		p.rate = rec.SamplingRate()
		p.rateSet = true
	} else if math.Abs(rec.SamplingRate()-p.rate) > 1e-6 {
		p.terminate(BadTimeReference)
		return nil
	}

	samples, start, ok := p.resolveOverlap(rec)
	if !ok {
		p.terminate(BadTimeReference)
		return nil
	}
	if len(samples) == 0 {
		return nil
	}

	// step 3: gap detection.
	if p.haveLast {
		gap := start.Sub(p.lastEnd)
		if gap > p.gate.MaximumGapLength && p.gate.MaximumGapLength > 0 {
			if p.gate.TerminateOnGap {
				p.terminate(IncompleteData)
				return nil
			}
			if p.preFilter != nil {
				p.preFilter.Reset()
			}
			p.buffer = nil
			p.haveBuffer = false
		}
	}

	// step 6: clip detection, against the raw counts spec.md §6's
	// saturationThreshold is expressed in, before filtering or gain
	// correction can shrink them below any realistic threshold.
	if p.gate.SaturationThreshold > 0 {
		for _, v := range samples {
			if math.Abs(float64(v)) > p.gate.SaturationThreshold {
				p.terminate(DataClipped)
				return nil
			}
		}
	}

	// step 4: pre-filter (sees raw counts).
	work := make([]T, len(samples))
	copy(work, samples)
	if p.preFilter != nil {
		p.applyPreFilter(work)
	}

	// step 5: gain correction, after filtering.
	meta, found := StreamMeta{}, false
	if p.meta != nil {
		meta, found = p.meta.StreamMeta(p.streamID)
	}
	if !found || meta.Gain == 0 {
		p.terminate(MissingGain)
		return nil
	}
	for i := range work {
		work[i] = T(float64(work[i]) / meta.Gain)
	}

	p.state = InProgress
	p.accumulate(start, work)

	p.lastEnd = start.Add(durationOf(len(samples), p.rate))
	p.haveLast = true

	p.tryComplete()
	return nil
}

func (p *WaveformProcessor[T]) applyPreFilter(work []T) {
	// SetSamplingRate is callable exactly once; subsequent Feed calls must
	// not attempt to set it again.
	if !p.preFilterRateSet {
		_ = p.preFilter.SetSamplingRate(p.rate)
		p.preFilterRateSet = true
	}
	p.preFilter.Apply(work)
}

func durationOf(n int, rate float64) time.Duration {
	return time.Duration(float64(n) / rate * float64(time.Second))
}

// resolveOverlap trims samples already covered by a prior Feed and
// rejects genuinely out-of-order data (spec.md §4.3 step 2).
func (p *WaveformProcessor[T]) resolveOverlap(rec *record.Record[T]) ([]T, time.Time, bool) {
	data := rec.Data()
	start := rec.StartTime()
	if !p.haveLast {
		return data, start, true
	}
	if !start.Before(p.lastEnd) {
		return data, start, true
	}
	// overlap: drop the portion before lastEnd.
	overlap := p.lastEnd.Sub(start)
	skip := int(overlap.Seconds() * p.rate)
	if skip >= len(data) {
		return nil, p.lastEnd, true // fully duplicate, nothing new
	}
	if skip < 0 {
		return nil, start, false
	}
	return data[skip:], p.lastEnd, true
}

// accumulate appends samples into the safety-window buffer, allocating
// lazily on first contribution and discarding anything before the safety
// window's start.
func (p *WaveformProcessor[T]) accumulate(start time.Time, samples []T) {
	if !p.haveBuffer {
		if start.Before(p.safetyStart()) {
			skip := int(p.safetyStart().Sub(start).Seconds() * p.rate)
			if skip >= len(samples) {
				return
			}
			samples = samples[skip:]
			start = p.safetyStart()
		}
		p.bufferStart = start
		p.haveBuffer = true
	}
	p.buffer = append(p.buffer, samples...)
}

// tryComplete checks whether the buffer now covers [windowStart,
// windowEnd] and, if so, invokes the handler and moves to Finished (spec.md
// §4.3 step 8).
func (p *WaveformProcessor[T]) tryComplete() {
	if !p.haveBuffer {
		return
	}
	bufEnd := p.bufferStart.Add(durationOf(len(p.buffer), p.rate))
	if bufEnd.Before(p.windowEnd) {
		return
	}
	startIndex := int(p.windowStart.Sub(p.bufferStart).Seconds() * p.rate)
	if startIndex < 0 {
		startIndex = 0
	}
	if p.handler != nil {
		p.handler(p, p.buffer, startIndex)
	}
	p.state = Finished
}

// CheckTimeout moves the processor to Terminated(IncompleteData) if it has
// been fed data but has not completed within the
// configured inactivity timeout (spec.md §4.3 step 9). The caller is
// responsible for invoking this periodically; WaveformProcessor runs no
// internal timer (spec.md §5's single-threaded cooperative model).
func (p *WaveformProcessor[T]) CheckTimeout(now time.Time) {
	if p.state == Finished || p.state == Terminated {
		return
	}
	if !p.haveLastFeed {
		return
	}
	if now.Sub(p.lastFeed) > p.inactivityTimeout {
		p.terminate(IncompleteData)
	}
}

// Close is idempotent and releases filter state (spec.md §5 cancellation).
func (p *WaveformProcessor[T]) Close() {
	if p.preFilter != nil {
		p.preFilter.Reset()
	}
	p.buffer = nil
	p.haveBuffer = false
}
