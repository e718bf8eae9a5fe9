package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gempa-oss/scstream/archive"
	"github.com/gempa-oss/scstream/config"
	"github.com/gempa-oss/scstream/filter"
	"github.com/gempa-oss/scstream/processing"
	"github.com/gempa-oss/scstream/record"
	"github.com/gempa-oss/scstream/record/mseed"
	"github.com/gempa-oss/scstream/recordstream"
	"github.com/gempa-oss/scstream/seismology"
)

// pickRequest bundles one stream's worth of CLI input: its identity, the
// SDS day-range to scan, the station's instrument gain, and the
// hypocentral geometry needed to evaluate a station magnitude.
type pickRequest struct {
	id                 record.StreamID
	windowStart        time.Time
	windowEnd          time.Time
	gain               float64
	epicentralDistance float64
	depthKm            float64
}

// decodeWaveform turns one Mini-SEED record's raw integer counts into a
// float64 record.Record, the floating-point representation every
// downstream filter.Filter and processing.WaveformProcessor requires.
func decodeWaveform(buf []byte) (*record.Record[float64], error) {
	raw, err := mseed.DecodeInt32(buf)
	if err != nil {
		return nil, err
	}
	data := make([]float64, raw.SampleCount())
	for i, v := range raw.Data() {
		data[i] = float64(v)
	}
	return record.New(raw.StreamID(), raw.StartTime(), raw.SamplingRate(), data)
}

// buildMagnitudeProcessor constructs the MagnitudeProcessor a Surface
// describes: either a coefficient-driven ParametricCalibration or a
// table-driven NonParametricCalibration, spec.md §6's two calibration
// kinds.
func buildMagnitudeProcessor(s *config.Surface) (processing.MagnitudeProcessor, error) {
	switch strings.ToLower(s.CalibrationType) {
	case "", "parametric":
		return seismology.ParametricCalibration{
			Unit:           "nm",
			C0:             s.C0,
			C1:             s.C1,
			C2:             s.C2,
			C3:             s.C3,
			MinDistanceDeg: s.MinDistance,
			MaxDistanceDeg: s.MaxDistance,
			MinDepthKm:     s.MinDepth,
			MaxDepthKm:     s.MaxDepth,
			Units:          seismology.DefaultUnits(),
		}, nil
	case "nonparametric", "non-parametric":
		if len(s.LogA0Table) == 0 {
			return nil, errors.New("scstreamd: nonparametric calibration requires a logA0.* table")
		}
		return seismology.NewNonParametricCalibration("nm", s.LogA0Table, seismology.ExtrapolateNearest, s.MinDepth, s.MaxDepth), nil
	default:
		return nil, fmt.Errorf("scstreamd: unknown calibrationType %q", s.CalibrationType)
	}
}

// runPick drives one station's pipeline end to end: read its SDS archive
// window, pick an onset with a Baer-Kraedolfer picker, measure the
// amplitude in the window that follows, calibrate a station magnitude,
// and archive all three results into the TileDB store.
func runPick(ctx context.Context, req pickRequest, sdsRoot string, surface *config.Surface, store *archive.Store) error {
	meta := processing.StaticMeta{
		req.id: {Gain: req.gain, GainUnit: "m/s", Azimuth: 0, Dip: -90},
	}

	var preFilter filter.Filter[float64]
	if surface.Filter != "" {
		registry := filter.DefaultRegistry[float64]()
		parsed, err := registry.Parse(surface.Filter)
		if err != nil {
			return fmt.Errorf("scstreamd: parsing filter %q: %w", surface.Filter, err)
		}
		preFilter = parsed
	}

	trigger := req.windowStart.Add(req.windowEnd.Sub(req.windowStart) / 2)
	pre := trigger.Sub(req.windowStart)
	post := req.windowEnd.Sub(trigger)
	noiseSplit := pre / 2

	picker := processing.NewBKPicker[float64](req.id, trigger, pre, post, noiseSplit, 4, 1.0, 10.0, meta)
	picker.SetGate(processing.Gate{
		MaximumGapLength:    time.Duration(surface.MaximumGap * float64(time.Second)),
		SaturationThreshold: surface.SaturationThreshold,
	})

	source := recordstream.NewSDSSource[float64](sdsRoot, decodeWaveform)
	if err := source.AddStream(req.id, req.windowStart, req.windowEnd); err != nil {
		return err
	}
	defer source.Close()

	if err := feedAll(ctx, source, picker.Feed); err != nil {
		return err
	}

	pick := picker.Result()
	if pick == nil {
		return fmt.Errorf("scstreamd: %s: no pick found in [%s, %s]", req.id, req.windowStart, req.windowEnd)
	}
	if err := archive.WritePick(store, *pick); err != nil {
		return fmt.Errorf("scstreamd: archiving pick: %w", err)
	}

	amp := processing.NewSingleComponentAmplitude("nm", processing.AbsoluteMaximum, preFilter)
	ampWindow := processing.TimeWindow{Start: pick.Time, End: pick.Time.Add(30 * time.Second)}
	var ampResult processing.AmplitudeResult
	var ampErr error
	ampProc := processing.NewTimeWindowProcessor[float64](req.id, ampWindow, meta, func(p *processing.WaveformProcessor[float64], data []float64, startIndex int) {
		ampResult, ampErr = amp.Measure(data[startIndex:], p.SamplingRate(), ampWindow.Start)
	})

	ampSource := recordstream.NewSDSSource[float64](sdsRoot, decodeWaveform)
	if err := ampSource.AddStream(req.id, ampWindow.Start, ampWindow.End); err != nil {
		return err
	}
	defer ampSource.Close()
	if err := feedAll(ctx, ampSource, ampProc.Feed); err != nil {
		return err
	}
	if ampProc.State() != processing.Finished {
		return fmt.Errorf("scstreamd: %s: amplitude window never completed", req.id)
	}
	if ampErr != nil {
		return fmt.Errorf("scstreamd: measuring amplitude: %w", ampErr)
	}
	if err := archive.WriteAmplitude(store, ampResult); err != nil {
		return fmt.Errorf("scstreamd: archiving amplitude: %w", err)
	}

	magProc, err := buildMagnitudeProcessor(surface)
	if err != nil {
		return err
	}
	magInput := processing.MagnitudeInput{
		Amplitude:          ampResult.Amplitude.Value,
		Unit:               ampResult.Unit,
		Period:             ampResult.Period,
		SNR:                pick.SNR,
		EpicentralDistance: req.epicentralDistance,
		Depth:              req.depthKm,
		Station:            req.id.Station,
	}
	magResult, ok := magProc.Compute(magInput)
	if !ok {
		return fmt.Errorf("scstreamd: %s: magnitude input rejected", req.id)
	}
	if err := archive.WriteMagnitude(store, pick.Time.UnixNano(), req.id.Station, "scstreamd", magResult); err != nil {
		return fmt.Errorf("scstreamd: archiving magnitude: %w", err)
	}

	return nil
}

// feedAll drains a record source into feed until it reports io.EOF.
func feedAll(ctx context.Context, source recordstream.RecordStream[float64], feed func(context.Context, *record.Record[float64]) error) error {
	for {
		rec, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := feed(ctx, rec); err != nil {
			return err
		}
	}
}
