package recordstream

import (
	"github.com/gempa-oss/scstream/filter"
	"github.com/gempa-oss/scstream/record"
)

// Demux applies a per-stream-id filter, instantiated on first sight of
// each stream id by cloning a template, ported from
// io/recordfilter/demux.{h,cpp}'s RecordDemuxFilter. Unlike a RecordStream,
// Demux is a synchronous transform: Feed pushes one record through its
// stream's filter and returns the (possibly nil, if the filter buffers)
// filtered record.
type Demux[T filter.Sample] struct {
	template filter.Filter[T]
	rate     float64
	rateSet  bool
	streams  map[record.StreamID]filter.Filter[T]
}

func NewDemux[T filter.Sample](template filter.Filter[T]) *Demux[T] {
	return &Demux[T]{template: template, streams: make(map[record.StreamID]filter.Filter[T])}
}

// SetFilter replaces the template filter and forgets all per-stream clones.
func (d *Demux[T]) SetFilter(template filter.Filter[T]) {
	d.template = template
	d.streams = make(map[record.StreamID]filter.Filter[T])
}

func (d *Demux[T]) perStream(id record.StreamID) filter.Filter[T] {
	f, ok := d.streams[id]
	if ok {
		return f
	}
	f = d.template.Clone()
	if d.rateSet {
		_ = f.SetSamplingRate(d.rate)
	}
	d.streams[id] = f
	return f
}

// Feed filters a copy of rec's samples through its stream's cloned filter
// instance and returns them as a new Record; rec itself is not modified.
func (d *Demux[T]) Feed(rec *record.Record[T]) *record.Record[T] {
	if d.template == nil {
		return rec
	}
	f := d.perStream(rec.StreamID())
	if !d.rateSet && rec.SamplingRate() > 0 {
		_ = f.SetSamplingRate(rec.SamplingRate())
	}
	data := append([]T(nil), rec.Data()...)
	f.Apply(data)
	out, err := record.New(rec.StreamID(), rec.StartTime(), rec.SamplingRate(), data)
	if err != nil {
		return nil
	}
	out.SetTimingQuality(rec.TimingQuality())
	out.SetGap(rec.Gap())
	return out
}

func (d *Demux[T]) Reset() {
	d.streams = make(map[record.StreamID]filter.Filter[T])
}
