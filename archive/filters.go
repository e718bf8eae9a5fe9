// Package archive implements the columnar archive of spec.md's
// finished record sequences and processing results: a TileDB-backed
// store keyed by stream and time, with struct-tag-driven schema
// generation, grounded on tiledb.go/schema.go.
package archive

import (
	"errors"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

var ErrAddFilters = errors.New("archive: error adding filter to filter list")

// AddFilters sequentially appends compression filters to a filter
// pipeline list.
func AddFilters(filterList *tiledb.FilterList, filters ...*tiledb.Filter) error {
	for _, filt := range filters {
		if err := filterList.AddFilter(filt); err != nil {
			return errors.Join(ErrAddFilters, err)
		}
	}
	return nil
}

// ZstdFilter initialises the Zstandard compression filter at the given
// level.
func ZstdFilter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
	if err != nil {
		return nil, err
	}
	if err := filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level); err != nil {
		filt.Free()
		return nil, err
	}
	return filt, nil
}

// PositiveDeltaFilter initialises the positive-delta filter used on
// strictly-ascending dimensions such as sample index or epoch time.
func PositiveDeltaFilter(ctx *tiledb.Context) (*tiledb.Filter, error) {
	return tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_POSITIVE_DELTA)
}

// ArrayOpen opens an existing TileDB array in the given mode.
func ArrayOpen(ctx *tiledb.Context, uri string, mode tiledb.QueryType) (*tiledb.Array, error) {
	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := array.Open(mode); err != nil {
		array.Free()
		return nil, err
	}
	return array, nil
}
