package archive

import (
	"errors"

	tiledb "github.com/TileDB-Inc/TileDB-Go"

	"github.com/gempa-oss/scstream/processing"
)

var ErrWriteResult = errors.New("archive: error writing result array")

// resultColumns is the sparse, event-indexed layout shared by picks,
// amplitudes and magnitudes: one row per processing result, dimensioned
// by arrival time in nanoseconds since epoch, grounded on
// writeBeamData's sparse/unordered pattern generalized from two
// geographic dimensions to a single time dimension.
type resultColumns struct {
	EventTime []int64   `tiledb:"dtype=int64,ftype=dim" filters:"zstd(level=16)"`
	StreamID  []string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=9)"`
	Kind      []string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=9)"`
	Value     []float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
}

func createResultArray(ctx *tiledb.Context, uri string) error {
	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return err
	}
	defer domain.Free()

	// a permissive all-time domain; results accumulate sparsely within it.
	dim, err := tiledb.NewDimension(ctx, "EventTime", tiledb.TILEDB_INT64, []int64{0, 1 << 62}, int64(3600_000_000_000))
	if err != nil {
		return err
	}
	defer dim.Free()
	if err := domain.AddDimensions(dim); err != nil {
		return err
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_SPARSE)
	if err != nil {
		return err
	}
	defer schema.Free()
	if err := schema.SetDomain(domain); err != nil {
		return err
	}
	if err := schema.SetCellOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return err
	}
	if err := schema.SetTileOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return err
	}
	if err := schemaAttrs(&resultColumns{}, schema, ctx); err != nil {
		return err
	}

	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return err
	}
	defer array.Free()
	return array.Create(schema)
}

func writeResultRow(store *Store, arrayFile string, eventTime int64, streamID, kind string, value float64) error {
	uri := store.ArrayURI(arrayFile)
	if err := createIfMissing(store.ctx, uri); err != nil {
		return errors.Join(ErrWriteResult, err)
	}

	array, err := ArrayOpen(store.ctx, uri, tiledb.TILEDB_WRITE)
	if err != nil {
		return errors.Join(ErrWriteResult, err)
	}
	defer array.Free()
	defer array.Close()

	query, err := tiledb.NewQuery(store.ctx, array)
	if err != nil {
		return errors.Join(ErrWriteResult, err)
	}
	defer query.Free()
	if err := query.SetLayout(tiledb.TILEDB_UNORDERED); err != nil {
		return errors.Join(ErrWriteResult, err)
	}

	if _, err := query.SetDataBuffer("EventTime", []int64{eventTime}); err != nil {
		return errors.Join(ErrWriteResult, err)
	}
	if _, err := query.SetDataBuffer("StreamID", []string{streamID}); err != nil {
		return errors.Join(ErrWriteResult, err)
	}
	if _, err := query.SetDataBuffer("Kind", []string{kind}); err != nil {
		return errors.Join(ErrWriteResult, err)
	}
	if _, err := query.SetDataBuffer("Value", []float64{value}); err != nil {
		return errors.Join(ErrWriteResult, err)
	}

	if err := query.Submit(); err != nil {
		return errors.Join(ErrWriteResult, err)
	}
	return query.Finalize()
}

func createIfMissing(ctx *tiledb.Context, uri string) error {
	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return err
	}
	defer array.Free()
	if err := array.Open(tiledb.TILEDB_READ); err == nil {
		array.Close()
		return nil
	}
	return createResultArray(ctx, uri)
}

// WritePick archives a processing.PickResult into the "picks.tiledb"
// event array.
func WritePick(store *Store, p processing.PickResult) error {
	return writeResultRow(store, "picks.tiledb", p.Time.UnixNano(), p.StreamID.String(), p.MethodID, p.SNR)
}

// WriteAmplitude archives a processing.AmplitudeResult into the
// "amplitudes.tiledb" event array.
func WriteAmplitude(store *Store, a processing.AmplitudeResult) error {
	return writeResultRow(store, "amplitudes.tiledb", a.Time.UnixNano(), a.StreamID.String(), a.Unit, a.Amplitude.Value)
}

// WriteMagnitude archives a computed magnitude value into the
// "magnitudes.tiledb" event array, keyed by the station that produced
// it.
func WriteMagnitude(store *Store, eventTime int64, station, methodID string, result processing.MagnitudeResult) error {
	return writeResultRow(store, "magnitudes.tiledb", eventTime, station, methodID, result.Value)
}
