package recordstream

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gempa-oss/scstream/record"
	"github.com/gempa-oss/scstream/record/mseed"
)

// sdsRequest is one addStream call's stream-id and time window, mirroring
// recordstream/memory.h's addStream overloads (spec.md §6 scenario b).
type sdsRequest struct {
	id         record.StreamID
	start, end time.Time
}

// SDSSource reads Mini-SEED day files laid out in the standard SeisComP
// Data Structure: <root>/<YEAR>/<NET>/<STA>/<CHAN>.D/<NET>.<STA>.<LOC>.<CHAN>.D.<YEAR>.<DOY>,
// ported from io/recordstream's SDS archive reader (only its unit test,
// sdsarchive.cpp, was retrieved — the path layout below is the published
// SDS convention it exercises).
type SDSSource[T record.Sample] struct {
	root   string
	decode func([]byte) (*record.Record[T], error)

	requests []sdsRequest
	queue    []*record.Record[T]
	loaded   bool
	closed   bool
}

func NewSDSSource[T record.Sample](root string, decode func([]byte) (*record.Record[T], error)) *SDSSource[T] {
	return &SDSSource[T]{root: root, decode: decode}
}

func (s *SDSSource[T]) AddStream(id record.StreamID, start, end time.Time) error {
	s.requests = append(s.requests, sdsRequest{id: id, start: start, end: end})
	return nil
}

func sdsPath(root string, id record.StreamID, day time.Time) string {
	year := day.Year()
	doy := day.YearDay()
	dir := filepath.Join(root, fmt.Sprintf("%04d", year), id.Network, id.Station, id.Channel+".D")
	name := fmt.Sprintf("%s.%s.%s.%s.D.%04d.%03d", id.Network, id.Station, id.Location, id.Channel, year, doy)
	return filepath.Join(dir, name)
}

func (s *SDSSource[T]) load() error {
	for _, req := range s.requests {
		for day := req.start.Truncate(24 * time.Hour); !day.After(req.end); day = day.Add(24 * time.Hour) {
			path := sdsPath(s.root, req.id, day)
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			for off := 0; off < len(data); {
				size, err := mseed.RecordSize(data[off:])
				if err != nil || size <= 0 {
					break
				}
				rec, err := s.decode(data[off : off+size])
				if err == nil && !rec.EndTime().Before(req.start) && !rec.StartTime().After(req.end) {
					s.queue = append(s.queue, rec)
				}
				off += size
			}
		}
	}
	s.loaded = true
	return nil
}

func (s *SDSSource[T]) Next(ctx context.Context) (*record.Record[T], error) {
	if s.closed {
		return nil, ErrClosed
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if !s.loaded {
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	if len(s.queue) == 0 {
		return nil, io.EOF
	}
	rec := s.queue[0]
	s.queue = s.queue[1:]
	return rec, nil
}

func (s *SDSSource[T]) Close() error {
	s.closed = true
	return nil
}
