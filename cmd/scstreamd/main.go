// Command scstreamd runs the real-time streaming signal-processing core
// end to end over an SDS waveform archive: pick an onset, measure its
// amplitude, calibrate a station magnitude, and archive all three into a
// TileDB store.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/alitto/pond"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/gempa-oss/scstream/archive"
	"github.com/gempa-oss/scstream/record"
)

func parseStreamID(s string) (record.StreamID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return record.StreamID{}, fmt.Errorf("scstreamd: %q is not NET.STA.LOC.CHA", s)
	}
	return record.StreamID{Network: parts[0], Station: parts[1], Location: parts[2], Channel: parts[3]}, nil
}

func pickOne(cCtx *cli.Context) error {
	id, err := parseStreamID(cCtx.String("stream"))
	if err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339, cCtx.String("start"))
	if err != nil {
		return fmt.Errorf("scstreamd: parsing --start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, cCtx.String("end"))
	if err != nil {
		return fmt.Errorf("scstreamd: parsing --end: %w", err)
	}

	surface, err := loadSurface(cCtx.String("surface"))
	if err != nil {
		return fmt.Errorf("scstreamd: loading surface: %w", err)
	}

	store, err := archive.NewStore(cCtx.String("tiledb-config"), cCtx.String("archive-uri"))
	if err != nil {
		return fmt.Errorf("scstreamd: opening archive: %w", err)
	}
	defer store.Close()

	req := pickRequest{
		id:                 id,
		windowStart:        start,
		windowEnd:          end,
		gain:               cCtx.Float64("gain"),
		epicentralDistance: cCtx.Float64("distance"),
		depthKm:            cCtx.Float64("depth"),
	}

	log.Println("picking", id)
	if err := runPick(cCtx.Context, req, cCtx.String("sds-root"), surface, store); err != nil {
		return err
	}
	log.Println("finished", id)
	return nil
}

// parseStationLine decodes one line of a station list file:
// "NET.STA.LOC.CHA start end gain distance depth", start/end RFC3339.
func parseStationLine(line string) (pickRequest, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 {
		return pickRequest{}, fmt.Errorf("scstreamd: expected 6 fields, got %d", len(fields))
	}
	id, err := parseStreamID(fields[0])
	if err != nil {
		return pickRequest{}, err
	}
	start, err := time.Parse(time.RFC3339, fields[1])
	if err != nil {
		return pickRequest{}, err
	}
	end, err := time.Parse(time.RFC3339, fields[2])
	if err != nil {
		return pickRequest{}, err
	}
	gain, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return pickRequest{}, err
	}
	distance, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return pickRequest{}, err
	}
	depth, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return pickRequest{}, err
	}
	return pickRequest{id: id, windowStart: start, windowEnd: end, gain: gain, epicentralDistance: distance, depthKm: depth}, nil
}

// loadStationList reads a station list file into one pickRequest per
// valid, non-comment, non-blank line, discarding malformed lines rather
// than failing the whole batch (matching convert_gsf_list's "submit
// everything, log failures per item" tolerance).
func loadStationList(path string) ([]pickRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := lo.Filter(strings.Split(string(data), "\n"), func(line string, _ int) bool {
		trimmed := strings.TrimSpace(line)
		return trimmed != "" && !strings.HasPrefix(trimmed, "#")
	})
	requests := make([]pickRequest, 0, len(lines))
	for _, line := range lines {
		req, err := parseStationLine(line)
		if err != nil {
			log.Println("skipping malformed station line:", err)
			continue
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// pickList runs runPick for every request in a station list across a
// fixed worker pool, mirroring convert_gsf_list's pond.New/Submit/
// StopAndWait fan-out and signal.NotifyContext-driven graceful shutdown.
func pickList(cCtx *cli.Context) error {
	requests, err := loadStationList(cCtx.String("stations"))
	if err != nil {
		return fmt.Errorf("scstreamd: reading station list: %w", err)
	}
	log.Println("stations to process:", len(requests))

	surface, err := loadSurface(cCtx.String("surface"))
	if err != nil {
		return fmt.Errorf("scstreamd: loading surface: %w", err)
	}

	store, err := archive.NewStore(cCtx.String("tiledb-config"), cCtx.String("archive-uri"))
	if err != nil {
		return fmt.Errorf("scstreamd: opening archive: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	defer pool.StopAndWait()

	sdsRoot := cCtx.String("sds-root")
	for _, req := range requests {
		req := req
		pool.Submit(func() {
			if err := runPick(ctx, req, sdsRoot, surface, store); err != nil {
				log.Println("error:", err)
			}
		})
	}

	return nil
}

func main() {
	app := &cli.App{
		Name:  "scstreamd",
		Usage: "streaming waveform pick/amplitude/magnitude pipeline",
		Commands: []*cli.Command{
			{
				Name:  "pick",
				Usage: "pick, measure and calibrate one station's channel over a fixed window",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "stream", Required: true, Usage: "NET.STA.LOC.CHA"},
					&cli.StringFlag{Name: "start", Required: true, Usage: "RFC3339 window start"},
					&cli.StringFlag{Name: "end", Required: true, Usage: "RFC3339 window end"},
					&cli.StringFlag{Name: "sds-root", Required: true, Usage: "SDS archive root directory"},
					&cli.StringFlag{Name: "surface", Required: true, Usage: "path to a processor configuration file"},
					&cli.StringFlag{Name: "archive-uri", Required: true, Usage: "TileDB group URI to archive results into"},
					&cli.StringFlag{Name: "tiledb-config", Usage: "URI or pathname to a TileDB config file"},
					&cli.Float64Flag{Name: "gain", Value: 1, Usage: "instrument gain in counts per physical unit"},
					&cli.Float64Flag{Name: "distance", Usage: "epicentral distance in degrees"},
					&cli.Float64Flag{Name: "depth", Usage: "hypocenter depth in km"},
				},
				Action: pickOne,
			},
			{
				Name:  "pick-list",
				Usage: "fan the pick pipeline out over a station list file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "stations", Required: true, Usage: "station list file"},
					&cli.StringFlag{Name: "sds-root", Required: true, Usage: "SDS archive root directory"},
					&cli.StringFlag{Name: "surface", Required: true, Usage: "path to a processor configuration file"},
					&cli.StringFlag{Name: "archive-uri", Required: true, Usage: "TileDB group URI to archive results into"},
					&cli.StringFlag{Name: "tiledb-config", Usage: "URI or pathname to a TileDB config file"},
				},
				Action: pickList,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
