package archive

import (
	"errors"
	"fmt"

	tiledb "github.com/TileDB-Inc/TileDB-Go"

	"github.com/gempa-oss/scstream/record"
)

var ErrWriteWaveform = errors.New("archive: error writing waveform array")

// waveformColumns is the tagged column layout written for one finished
// record.Record: a dense array indexed by sample position, grounded on
// Attitude's "__tiledb_rows (dim), timestamp (attr), ... (attr)" shape.
type waveformColumns struct {
	Timestamp []int64   `tiledb:"dtype=datetime_ns,ftype=attr" filters:"zstd(level=16)"`
	Value     []float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
}

func arrayName(id record.StreamID, startUnixNano int64) string {
	return fmt.Sprintf("%s-%d.tiledb", id.String(), startUnixNano)
}

// WriteRecord archives one finished, gain-corrected record.Record[float64]
// as a dense TileDB array of (timestamp, value) columns under store.
func WriteRecord(store *Store, rec *record.Record[float64]) error {
	data := rec.Data()
	nrows := uint64(len(data))
	if nrows == 0 {
		return nil
	}

	uri := store.ArrayURI(arrayName(rec.StreamID(), rec.StartTime().UnixNano()))
	if err := createWaveformArray(store.ctx, uri, nrows); err != nil {
		return errors.Join(ErrWriteWaveform, err)
	}

	array, err := ArrayOpen(store.ctx, uri, tiledb.TILEDB_WRITE)
	if err != nil {
		return errors.Join(ErrWriteWaveform, err)
	}
	defer array.Free()
	defer array.Close()

	query, err := tiledb.NewQuery(store.ctx, array)
	if err != nil {
		return errors.Join(ErrWriteWaveform, err)
	}
	defer query.Free()

	if err := query.SetLayout(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrWriteWaveform, err)
	}

	interval := rec.SamplingRate()
	timestamps := make([]int64, nrows)
	start := rec.StartTime().UnixNano()
	stepNanos := 1e9 / interval
	for i := range timestamps {
		timestamps[i] = start + int64(float64(i)*stepNanos)
	}

	if _, err := query.SetDataBuffer("Timestamp", timestamps); err != nil {
		return errors.Join(ErrWriteWaveform, err)
	}
	if _, err := query.SetDataBuffer("Value", data); err != nil {
		return errors.Join(ErrWriteWaveform, err)
	}

	subarr, err := array.NewSubarray()
	if err != nil {
		return errors.Join(ErrWriteWaveform, err)
	}
	defer subarr.Free()
	if err := subarr.AddRangeByName("__tiledb_rows", tiledb.MakeRange(uint64(0), nrows-1)); err != nil {
		return errors.Join(ErrWriteWaveform, err)
	}
	if err := query.SetSubarray(subarr); err != nil {
		return errors.Join(ErrWriteWaveform, err)
	}

	if err := query.Submit(); err != nil {
		return errors.Join(ErrWriteWaveform, err)
	}
	return query.Finalize()
}

func createWaveformArray(ctx *tiledb.Context, uri string, nrows uint64) error {
	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return err
	}
	defer domain.Free()

	tileSize := nrows
	if tileSize > 50000 {
		tileSize = 50000
	}

	dim, err := tiledb.NewDimension(ctx, "__tiledb_rows", tiledb.TILEDB_UINT64, []uint64{0, nrows - 1}, tileSize)
	if err != nil {
		return err
	}
	defer dim.Free()

	dimFilters, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return err
	}
	defer dimFilters.Free()

	posDelta, err := PositiveDeltaFilter(ctx)
	if err != nil {
		return err
	}
	defer posDelta.Free()
	zstd, err := ZstdFilter(ctx, 16)
	if err != nil {
		return err
	}
	defer zstd.Free()
	if err := AddFilters(dimFilters, posDelta, zstd); err != nil {
		return err
	}
	if err := dim.SetFilterList(dimFilters); err != nil {
		return err
	}
	if err := domain.AddDimensions(dim); err != nil {
		return err
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_DENSE)
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

	if err := schemaAttrs(&waveformColumns{}, schema, ctx); err != nil {
		return err
	}

	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return err
	}
	defer array.Free()
	return array.Create(schema)
}
