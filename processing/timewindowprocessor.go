package processing

import (
	"time"

	"github.com/gempa-oss/scstream/filter"
	"github.com/gempa-oss/scstream/record"
)

// TimeWindow is a half-open [Start, End) span, the unit spec.md §4.3's
// TimeWindowProcessor buffers and triggers on.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// TimeWindowProcessor is the specialization of spec.md §3 item 5: it owns
// a requested analysis window, exposes the margin-expanded safety window
// the underlying WaveformProcessor actually buffers, and lets derived
// processors (pickers, amplitude measurers) recompute the window before
// data starts arriving, grounded on original_source's
// processing/timewindowprocessor.h (reset/setTimeWindow/safetyTimeWindow/
// setMargin/computeTimeWindow/continuousData).
type TimeWindowProcessor[T filter.Sample] struct {
	*WaveformProcessor[T]
	window TimeWindow
}

// NewTimeWindowProcessor builds a WaveformProcessor over
// [window.Start, window.End) and wraps it with the named window accessors.
func NewTimeWindowProcessor[T filter.Sample](id record.StreamID, window TimeWindow, meta StreamMetaProvider, handler Handler[T]) *TimeWindowProcessor[T] {
	return &TimeWindowProcessor[T]{
		WaveformProcessor: NewWaveformProcessor[T](id, window.Start, window.End, meta, handler),
		window:            window,
	}
}

// Reset clears accumulated state and returns the processor to
// WaitingForData, matching timewindowprocessor.h's reset().
func (p *TimeWindowProcessor[T]) Reset() {
	p.Close()
	p.state = WaitingForData
	p.cause = NoTermination
	p.haveLast = false
	p.haveLastFeed = false
}

// SetTimeWindow replaces the requested analysis window.
func (p *TimeWindowProcessor[T]) SetTimeWindow(w TimeWindow) {
	p.window = w
	p.windowStart = w.Start
	p.windowEnd = w.End
}

// TimeWindow returns the requested (margin-free) analysis window.
func (p *TimeWindowProcessor[T]) TimeWindow() TimeWindow { return p.window }

// SafetyTimeWindow returns the window expanded by the configured margin on
// both ends, i.e. the span the processor actually accumulates before
// invoking its Handler (spec.md §4.3 step 7).
func (p *TimeWindowProcessor[T]) SafetyTimeWindow() TimeWindow {
	return TimeWindow{Start: p.safetyStart(), End: p.safetyEnd()}
}

// ComputeTimeWindow lets a derived processor (e.g. a Picker, which does
// not know its analysis window until a trigger time is known) recompute
// and install a new window from a reference time and pre/post spans.
func (p *TimeWindowProcessor[T]) ComputeTimeWindow(reference time.Time, before, after time.Duration) {
	p.SetTimeWindow(TimeWindow{Start: reference.Add(-before), End: reference.Add(after)})
}

// ContinuousData returns the accumulated safety-window buffer as it
// stands, whether or not the window has completed, mirroring
// timewindowprocessor.h's continuousData() escape hatch for callers that
// want a partial look.
func (p *TimeWindowProcessor[T]) ContinuousData() []T {
	return p.buffer
}
