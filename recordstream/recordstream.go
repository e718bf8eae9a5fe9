// Package recordstream provides pull sources of record.Record values
// addressable by stream-id and time window, and record-level filters
// (Demux, Resample) composable over those sources, per spec.md's
// "RecordStream" module.
package recordstream

import (
	"context"
	"errors"
	"time"

	"github.com/gempa-oss/scstream/record"
)

// ErrClosed is returned by Next once a stream has been closed.
var ErrClosed = errors.New("recordstream: closed")

// RecordStream is a pull source of records, one at a time, in arrival
// order. Implementations are not required to be safe for concurrent use.
type RecordStream[T record.Sample] interface {
	// AddStream restricts (or, if called before any records are read,
	// declares interest in) a stream-id and optional time window.
	AddStream(id record.StreamID, start, end time.Time) error
	// Next blocks until a record is available, the context is canceled,
	// or the stream is exhausted (io.EOF) or closed (ErrClosed).
	Next(ctx context.Context) (*record.Record[T], error)
	// Close releases any resources held by the stream.
	Close() error
}
