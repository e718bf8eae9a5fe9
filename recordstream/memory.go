package recordstream

import (
	"context"
	"io"
	"time"

	"github.com/gempa-oss/scstream/record"
)

// streamFilter narrows a MemorySource to a single stream-id and optional
// time window, mirroring memory.h's addStream overloads.
type streamFilter struct {
	id         record.StreamID
	start, end time.Time
	bounded    bool
}

// MemorySource replays a fixed, pre-loaded slice of records, ported from
// recordstream/memory.h's in-memory RecordStream — useful for tests and
// for feeding the pipeline from an already-decoded buffer.
type MemorySource[T record.Sample] struct {
	records []*record.Record[T]
	filters []streamFilter
	pos     int
	closed  bool
}

func NewMemorySource[T record.Sample](records []*record.Record[T]) *MemorySource[T] {
	return &MemorySource[T]{records: records}
}

func (m *MemorySource[T]) AddStream(id record.StreamID, start, end time.Time) error {
	f := streamFilter{id: id}
	if !start.IsZero() || !end.IsZero() {
		f.start, f.end, f.bounded = start, end, true
	}
	m.filters = append(m.filters, f)
	return nil
}

func (m *MemorySource[T]) matches(rec *record.Record[T]) bool {
	if len(m.filters) == 0 {
		return true
	}
	for _, f := range m.filters {
		if f.id != rec.StreamID() {
			continue
		}
		if !f.bounded {
			return true
		}
		if !rec.EndTime().Before(f.start) && !rec.StartTime().After(f.end) {
			return true
		}
	}
	return false
}

func (m *MemorySource[T]) Next(ctx context.Context) (*record.Record[T], error) {
	if m.closed {
		return nil, ErrClosed
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	for m.pos < len(m.records) {
		rec := m.records[m.pos]
		m.pos++
		if m.matches(rec) {
			return rec, nil
		}
	}
	return nil, io.EOF
}

func (m *MemorySource[T]) Close() error {
	m.closed = true
	return nil
}
