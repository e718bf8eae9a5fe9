// Package config implements the processor configuration surface of
// spec.md §6: a fixed, enumerated set of recognized keys, decoded from
// a flat string map and rejecting anything unrecognized at setup time
// (spec.md §7's configuration-error policy), grounded on schema.go's
// struct-tag reflection pattern.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	stgpsr "github.com/yuin/stagparser"
)

// ErrUnknownKey is returned by Parse for any key not named by a
// `config` struct tag on Surface.
type ErrUnknownKey struct{ Key string }

func (e ErrUnknownKey) Error() string { return fmt.Sprintf("config: unknown key %q", e.Key) }

// ErrInvalidValue is returned by Parse when a recognized key's value
// cannot be decoded into its declared type.
type ErrInvalidValue struct {
	Key   string
	Value string
	Err   error
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("config: invalid value %q for key %q: %v", e.Value, e.Key, e.Err)
}

func (e ErrInvalidValue) Unwrap() error { return e.Err }

// Surface is the flat set of keys spec.md §6 enumerates, one field per
// key. LogA0Table is a variable-length table, not a scalar; Parse fills
// it from the logA0.<distance> keys.
type Surface struct {
	Filter      string  `config:"key=filter"`
	NoiseBegin  float64 `config:"key=noiseBegin"`
	NoiseEnd    float64 `config:"key=noiseEnd"`
	SignalBegin float64 `config:"key=signalBegin"`
	SignalEnd   float64 `config:"key=signalEnd"`
	MinSNR      float64 `config:"key=minSNR"`

	MaximumGap          float64 `config:"key=maximumGap"`
	SaturationThreshold float64 `config:"key=saturationThreshold"`

	PreFilter string `config:"key=preFilter"`
	Combiner  string `config:"key=combiner"`

	DistanceMode string  `config:"key=distanceMode"`
	MinDistance  float64 `config:"key=minDistance"`
	MaxDistance  float64 `config:"key=maxDistance"`
	MinDepth     float64 `config:"key=minDepth"`
	MaxDepth     float64 `config:"key=maxDepth"`

	CalibrationType string `config:"key=calibrationType"`
	C0              float64 `config:"key=c0"`
	C1              float64 `config:"key=c1"`
	C2              float64 `config:"key=c2"`
	C3              float64 `config:"key=c3"`
	C4              float64 `config:"key=c4"`
	C5              float64 `config:"key=c5"`

	LogA0Table map[float64]float64
}

func fieldKeys(s *Surface) (map[string]string, error) {
	defs, err := stgpsr.ParseStruct(s, "config")
	if err != nil {
		return nil, err
	}
	keyToField := make(map[string]string)
	types := reflect.TypeOf(s).Elem()
	for i := 0; i < types.NumField(); i++ {
		name := types.Field(i).Name
		for _, def := range defs[name] {
			if def.Name() != "key" {
				continue
			}
			keyAttr, _ := def.Attribute("key")
			key, _ := keyAttr.(string)
			keyToField[key] = name
		}
	}
	return keyToField, nil
}

// Parse decodes raw into a Surface, rejecting any key not enumerated
// by spec.md §6 (`logA0.<distance>` entries are the one exception,
// routed to LogA0Table).
func Parse(raw map[string]string) (*Surface, error) {
	s := &Surface{LogA0Table: make(map[float64]float64)}
	keyToField, err := fieldKeys(s)
	if err != nil {
		return nil, err
	}

	values := reflect.ValueOf(s).Elem()
	var unknown []string
	for key, value := range raw {
		if strings.HasPrefix(key, "logA0.") {
			distance, err := strconv.ParseFloat(strings.TrimPrefix(key, "logA0."), 64)
			if err != nil {
				return nil, ErrInvalidValue{Key: key, Value: value, Err: err}
			}
			logA0, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, ErrInvalidValue{Key: key, Value: value, Err: err}
			}
			s.LogA0Table[distance] = logA0
			continue
		}

		fieldName, ok := keyToField[key]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		field := values.FieldByName(fieldName)
		if err := setField(field, value); err != nil {
			return nil, ErrInvalidValue{Key: key, Value: value, Err: err}
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, ErrUnknownKey{Key: strings.Join(unknown, ", ")}
	}
	return s, nil
}

func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
		return nil
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
		return nil
	default:
		return errors.New("unsupported field kind")
	}
}
