package processing

import (
	"errors"
	"math"
	"time"

	"github.com/gempa-oss/scstream/filter"
	"github.com/gempa-oss/scstream/record"
)

// ErrAlignmentMismatch is returned when the configured channels' buffered
// data cannot be aligned to within the per-sample tolerance of spec.md
// §4.4 step 1.
var ErrAlignmentMismatch = errors.New("processing: component alignment mismatch")

// VectorOp reduces one aligned sample across channels (in the order the
// NComponentOperator's ids were given) to a single synthesized value.
// The catalogue operators below each
// produce one output component per invocation (matching spec.md §4.4's
// "emits a synthesized Record" singular); a full rotation to all three of
// Z/R/T is expressed as three operators run over the same input streams.
type VectorOp[T filter.Sample] func(values []T) T

// L2Norm implements sqrt(sum(xi^2)), e.g. for total-motion magnitude from
// 2 or 3 orthogonal components.
func L2Norm[T filter.Sample]() VectorOp[T] {
	return func(values []T) T {
		var sum float64
		for _, v := range values {
			f := float64(v)
			sum += f * f
		}
		return T(math.Sqrt(sum))
	}
}

// ProjectOnto returns the dot product of values with weights, the shared
// primitive both scalar projection and rotation reduce to.
func ProjectOnto[T filter.Sample](weights []float64) VectorOp[T] {
	return func(values []T) T {
		var sum float64
		n := len(values)
		if len(weights) < n {
			n = len(weights)
		}
		for i := 0; i < n; i++ {
			sum += weights[i] * float64(values[i])
		}
		return T(sum)
	}
}

// Rotate3D projects a (Z, N, E)-ordered triple onto the ray direction
// given by azimuth and incidence (both degrees, measured as in spec.md
// §4.4), the standard ZNE-to-ray rotation.
func Rotate3D[T filter.Sample](azimuthDeg, incidenceDeg float64) VectorOp[T] {
	az := azimuthDeg * math.Pi / 180
	inc := incidenceDeg * math.Pi / 180
	weights := []float64{math.Cos(inc), math.Sin(inc) * math.Cos(az), math.Sin(inc) * math.Sin(az)}
	return ProjectOnto[T](weights)
}

// NComponentOperator aligns 2 or 3 streams of the same sensor and applies
// a per-sample VectorOp, republishing a synthesized Record, grounded on
// original_source's test/processing/ncomps.cpp fixture shape.
type NComponentOperator[T filter.Sample] struct {
	ids        []record.StreamID
	outChannel string
	op         VectorOp[T]

	backPressureTimeout time.Duration

	rate    float64
	rateSet bool

	buffers     [][]T
	bufferStart []time.Time
	haveBuffer  []bool
	lastFeed    []time.Time
}

// NewNComponentOperator requires 2 or 3 stream ids differing only in
// channel code (spec.md §4.4).
func NewNComponentOperator[T filter.Sample](ids []record.StreamID, outChannel string, op VectorOp[T]) (*NComponentOperator[T], error) {
	if len(ids) != 2 && len(ids) != 3 {
		return nil, errors.New("processing: n-component operator requires 2 or 3 channels")
	}
	for i := 1; i < len(ids); i++ {
		if !ids[0].SameSensor(ids[i]) {
			return nil, errors.New("processing: channels are not the same sensor")
		}
	}
	n := len(ids)
	return &NComponentOperator[T]{
		ids:                 ids,
		outChannel:          outChannel,
		op:                  op,
		backPressureTimeout: 60 * time.Second,
		buffers:             make([][]T, n),
		bufferStart:         make([]time.Time, n),
		haveBuffer:          make([]bool, n),
		lastFeed:            make([]time.Time, n),
	}, nil
}

// SetBackPressureTimeout overrides the default 60s alignment timeout.
func (op *NComponentOperator[T]) SetBackPressureTimeout(d time.Duration) { op.backPressureTimeout = d }

func (op *NComponentOperator[T]) indexOf(id record.StreamID) int {
	for i, want := range op.ids {
		if want == id {
			return i
		}
	}
	return -1
}

// Feed accepts one Record for one of the operator's channels and returns a
// synthesized Record whenever a new contiguous, aligned interval across
// all channels becomes available.
func (op *NComponentOperator[T]) Feed(rec *record.Record[T]) (*record.Record[T], error) {
	i := op.indexOf(rec.StreamID())
	if i < 0 {
		return nil, nil
	}
	if !op.rateSet {
		op.rate = rec.SamplingRate()
		op.rateSet = true
	} else if math.Abs(rec.SamplingRate()-op.rate) > 1e-6 {
		return nil, ErrAlignmentMismatch
	}
	op.lastFeed[i] = time.Now()

	if !op.haveBuffer[i] || len(op.buffers[i]) == 0 {
		op.bufferStart[i] = rec.StartTime()
		op.haveBuffer[i] = true
	}
	op.buffers[i] = append(op.buffers[i], rec.Data()...)

	return op.tryEmit()
}

func (op *NComponentOperator[T]) allReady() bool {
	for _, ok := range op.haveBuffer {
		if !ok {
			return false
		}
	}
	return true
}

// tryEmit implements spec.md §4.4 steps 1-3: confirm alignment, apply the
// operator over the common covered interval, and trim consumed samples.
func (op *NComponentOperator[T]) tryEmit() (*record.Record[T], error) {
	if !op.allReady() {
		return nil, nil
	}

	tolerance := time.Duration(0.5 / op.rate * float64(time.Second))

	latestStart := op.bufferStart[0]
	for _, t := range op.bufferStart[1:] {
		if t.After(latestStart) {
			latestStart = t
		}
	}
	earliestEnd := op.channelEnd(0)
	for ch := 1; ch < len(op.ids); ch++ {
		if e := op.channelEnd(ch); e.Before(earliestEnd) {
			earliestEnd = e
		}
	}

	n := int(earliestEnd.Sub(latestStart).Seconds() * op.rate)
	if n <= 0 {
		op.handleBackPressure(latestStart)
		return nil, nil
	}

	offsets := make([]int, len(op.ids))
	for ch := range op.ids {
		diff := latestStart.Sub(op.bufferStart[ch])
		offsets[ch] = int(math.Round(diff.Seconds() * op.rate))
		residual := diff - time.Duration(float64(offsets[ch])/op.rate*float64(time.Second))
		if residual < 0 {
			residual = -residual
		}
		if residual > tolerance {
			return nil, ErrAlignmentMismatch
		}
	}

	out := make([]T, n)
	values := make([]T, len(op.ids))
	for s := 0; s < n; s++ {
		for ch := range op.ids {
			values[ch] = op.buffers[ch][offsets[ch]+s]
		}
		out[s] = op.op(values)
	}

	for ch := range op.ids {
		consumed := offsets[ch] + n
		op.buffers[ch] = op.buffers[ch][consumed:]
		op.bufferStart[ch] = latestStart.Add(durationOf(n, op.rate))
	}

	id := op.ids[0].WithChannel(op.outChannel)
	return record.New(id, latestStart, op.rate, out)
}

func (op *NComponentOperator[T]) channelEnd(ch int) time.Time {
	return op.bufferStart[ch].Add(durationOf(len(op.buffers[ch]), op.rate))
}

// handleBackPressure implements spec.md §4.4's back-pressure policy: if the
// channels have not all produced overlapping data within the configured
// timeout, the earliest unmatched stretch is dropped and the lagging
// channels effectively catch up on the next Feed.
func (op *NComponentOperator[T]) handleBackPressure(latestStart time.Time) {
	for ch := range op.ids {
		if op.lastFeed[ch].IsZero() {
			continue
		}
		if time.Since(op.lastFeed[ch]) > op.backPressureTimeout && op.bufferStart[ch].Before(latestStart) {
			op.buffers[ch] = nil
			op.bufferStart[ch] = latestStart
		}
	}
}
