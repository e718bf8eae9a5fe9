package archive

import (
	"errors"
	"reflect"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

var (
	ErrCreateAttribute = errors.New("archive: error creating tiledb attribute")
	ErrUnknownDtype     = errors.New("archive: unknown tiledb dtype tag")
)

var dtypeNames = map[string]tiledb.Datatype{
	"int8":         tiledb.TILEDB_INT8,
	"uint8":        tiledb.TILEDB_UINT8,
	"int16":        tiledb.TILEDB_INT16,
	"uint16":       tiledb.TILEDB_UINT16,
	"int32":        tiledb.TILEDB_INT32,
	"uint32":       tiledb.TILEDB_UINT32,
	"int64":        tiledb.TILEDB_INT64,
	"uint64":       tiledb.TILEDB_UINT64,
	"float32":      tiledb.TILEDB_FLOAT32,
	"float64":      tiledb.TILEDB_FLOAT64,
	"datetime_ns":  tiledb.TILEDB_DATETIME_NS,
	"string":       tiledb.TILEDB_STRING_UTF8,
}

// CreateAttr builds a single TileDB attribute from a field's "tiledb"
// and "filters" struct-tag definitions and adds it to schema, grounded
// on go-gsf's CreateAttr: a dtype tag selects the TileDB datatype, and
// named filters (currently "zstd(level=N)") are chained onto the
// attribute's filter pipeline.
func CreateAttr(fieldName string, filterDefs []stgpsr.Definition, tiledbDefs map[string]stgpsr.Definition, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	def, ok := tiledbDefs["dtype"]
	if !ok {
		return errors.Join(ErrCreateAttribute, errors.New("dtype tag not found for "+fieldName))
	}
	dtypeAttr, _ := def.Attribute("dtype")
	dtypeName, _ := dtypeAttr.(string)
	dtype, ok := dtypeNames[dtypeName]
	if !ok {
		return errors.Join(ErrUnknownDtype, errors.New(dtypeName))
	}

	attrFilters, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return errors.Join(ErrCreateAttribute, err)
	}
	defer attrFilters.Free()

	for _, filter := range filterDefs {
		if filter.Name() != "zstd" {
			continue
		}
		levelAttr, ok := filter.Attribute("level")
		if !ok {
			return errors.Join(ErrCreateAttribute, errors.New("zstd level not defined for "+fieldName))
		}
		level, _ := levelAttr.(int64)
		filt, err := ZstdFilter(ctx, int32(level))
		if err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
		defer filt.Free()
		if err := attrFilters.AddFilter(filt); err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
	}

	attr, err := tiledb.NewAttribute(ctx, fieldName, dtype)
	if err != nil {
		return errors.Join(ErrCreateAttribute, err)
	}
	defer attr.Free()
	if err := attr.SetFilterList(attrFilters); err != nil {
		return errors.Join(ErrCreateAttribute, err)
	}
	return schema.AddAttributes(attr)
}

// schemaAttrs walks every exported field of t, tagged with `tiledb:"dtype=...,ftype=attr"`
// and an optional `filters:"..."` tag, and registers each as a TileDB
// attribute on schema. Fields tagged ftype=dim are skipped — those are
// handled by the array's domain setup instead.
func schemaAttrs(t any, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	values := reflect.ValueOf(t).Elem()
	types := values.Type()
	filtDefs, _ := stgpsr.ParseStruct(t, "filters")
	tdbDefs, _ := stgpsr.ParseStruct(t, "tiledb")

	for i := 0; i < values.NumField(); i++ {
		name := types.Field(i).Name

		fieldTdbDefs := make(map[string]stgpsr.Definition)
		for _, v := range tdbDefs[name] {
			fieldTdbDefs[v.Name()] = v
		}

		def, ok := fieldTdbDefs["ftype"]
		if !ok {
			return errors.Join(ErrCreateAttribute, errors.New("ftype tag not found for "+name))
		}
		ftype, _ := def.Attribute("ftype")
		if ftype == "dim" {
			continue
		}

		if err := CreateAttr(name, filtDefs[name], fieldTdbDefs, schema, ctx); err != nil {
			return err
		}
	}
	return nil
}
