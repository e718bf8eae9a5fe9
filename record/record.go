package record

import (
	"errors"
	"sync/atomic"
	"time"
)

var (
	// ErrSamplingRate is returned when a Record is constructed with a
	// non-positive sampling rate.
	ErrSamplingRate = errors.New("record: sampling rate must be > 0")
	// ErrEmptyData is returned when a Record is constructed with no samples.
	ErrEmptyData = errors.New("record: no samples")
)

// Sample is the set of waveform sample types a Record may carry. Int32
// covers the native Mini-SEED integer encodings (int16 data is carried as
// int32, there is no int16 member); Float32/Float64 cover
// the simulated/derived waveform path (filters operate on floating types,
// see the filter package).
type Sample interface {
	~int32 | ~float32 | ~float64
}

// NoTimingQuality is the sentinel used when a Record carries no timing
// quality indicator (the "⊥" of spec.md §3).
const NoTimingQuality = -1

// Record is an immutable, reference-counted carrier of contiguous samples
// for one StreamID, generic over the sample type it was decoded or
// synthesized as.
type Record[T Sample] struct {
	id             StreamID
	startTime      time.Time
	samplingRate   float64
	data           []T
	timingQuality  int // 0..100, or NoTimingQuality
	gap            bool
	refs           int32
}

// New builds a Record, validating the invariants in spec.md §3.
func New[T Sample](id StreamID, start time.Time, rate float64, data []T) (*Record[T], error) {
	if rate <= 0 {
		return nil, ErrSamplingRate
	}
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	cp := make([]T, len(data))
	copy(cp, data)
	return &Record[T]{
		id:            id,
		startTime:     start,
		samplingRate:  rate,
		data:          cp,
		timingQuality: NoTimingQuality,
		refs:          1,
	}, nil
}

// StreamID returns the channel identity.
func (r *Record[T]) StreamID() StreamID { return r.id }

// StartTime returns the timestamp of the first sample.
func (r *Record[T]) StartTime() time.Time { return r.startTime }

// SamplingRate returns the nominal sampling rate in Hz.
func (r *Record[T]) SamplingRate() float64 { return r.samplingRate }

// SampleCount returns the number of samples carried.
func (r *Record[T]) SampleCount() int { return len(r.data) }

// Data returns the underlying typed sample slice. Callers must not mutate
// it; Records are immutable once constructed.
func (r *Record[T]) Data() []T { return r.data }

// EndTime returns startTime + sampleCount/samplingRate, the invariant
// tested by spec.md §8 invariant 2.
func (r *Record[T]) EndTime() time.Time {
	secs := float64(len(r.data)) / r.samplingRate
	return r.startTime.Add(time.Duration(secs * float64(time.Second)))
}

// TimingQuality returns the timing quality percentage, or NoTimingQuality.
func (r *Record[T]) TimingQuality() int { return r.timingQuality }

// SetTimingQuality sets the timing quality, clamped to [0,100] unless the
// sentinel is passed through.
func (r *Record[T]) SetTimingQuality(q int) {
	if q != NoTimingQuality {
		if q < 0 {
			q = 0
		}
		if q > 100 {
			q = 100
		}
	}
	r.timingQuality = q
}

// Gap marks whether this Record was synthesized as a placeholder spanning
// a detected data gap. Nothing in this module sets it except
// recordstream.Demux, which copies it from input to output.
func (r *Record[T]) Gap() bool      { return r.gap }
func (r *Record[T]) SetGap(g bool) { r.gap = g }

// Retain increments the reference count and returns the receiver, allowing
// call sites to write `seq.push(rec.Retain())`.
func (r *Record[T]) Retain() *Record[T] {
	atomic.AddInt32(&r.refs, 1)
	return r
}

// Release decrements the reference count. Records carry no finalizer;
// Release exists so RecordSequence buffers and processors can express
// ownership symmetrically with Retain, matching the shared-pointer
// semantics spec.md §3 describes for Records.
func (r *Record[T]) Release() {
	atomic.AddInt32(&r.refs, -1)
}

// RefCount reports the current strong reference count, for tests.
func (r *Record[T]) RefCount() int32 { return atomic.LoadInt32(&r.refs) }

// Overlaps reports whether r's time span intersects [start, end).
func (r *Record[T]) Overlaps(start, end time.Time) bool {
	return r.startTime.Before(end) && r.EndTime().After(start)
}
