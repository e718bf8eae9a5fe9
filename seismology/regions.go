// Package seismology implements the region/unit/magnitude-calibration
// services of spec.md §4.6/§6: Flinn-Engdahl region names, a bijective
// physical-unit conversion table, and the parametric/non-parametric
// magnitude processors that implement processing.MagnitudeProcessor.
package seismology

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Polygon is one named FEP region boundary: an ordered list of (lon, lat)
// vertices plus the classification fields the FEP terminator/name lines
// carry (spec.md §6's grammar). Rank is the single-character code from
// the "99 99 <rank>" terminator line; Level is the leading code on the
// name line. Neither's exact semantics survived into spec.md (flagged as
// format ambiguity), so they are preserved verbatim rather than
// interpreted.
type Polygon struct {
	Name   string
	Rank   string
	Level  string
	Closed bool
	Points []Point
}

// Point is a (longitude, latitude) pair in degrees.
type Point struct {
	Lon, Lat float64
}

// ParseFEP parses the Flinn-Engdahl polygon format of spec.md §6:
// whitespace-separated "lon lat" vertex lines terminated by "99 99 <rank>",
// followed by a "<level> <name...>" line; leading `#` comments and blank
// lines are ignored; a polygon needs at least 3 vertices (4 if closed,
// i.e. first and last vertex coincide).
func ParseFEP(r io.Reader) ([]Polygon, error) {
	scanner := bufio.NewScanner(r)
	var polygons []Polygon
	var points []Point
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		if len(fields) >= 3 && fields[0] == "99" && fields[1] == "99" {
			if !scanner.Scan() {
				return nil, fmt.Errorf("seismology: FEP truncated after terminator at line %d", lineNo)
			}
			lineNo++
			nameLine := strings.TrimSpace(scanner.Text())
			nameFields := strings.SplitN(nameLine, " ", 2)
			level, name := "", nameLine
			if len(nameFields) == 2 {
				level, name = nameFields[0], strings.TrimSpace(nameFields[1])
			}
			minVerts := 3
			closed := len(points) > 1 && points[0] == points[len(points)-1]
			if closed {
				minVerts = 4
			}
			if len(points) < minVerts {
				return nil, fmt.Errorf("seismology: FEP polygon %q has %d vertices, need >= %d", name, len(points), minVerts)
			}
			polygons = append(polygons, Polygon{
				Name:   name,
				Rank:   fields[2],
				Level:  level,
				Closed: closed,
				Points: points,
			})
			points = nil
			continue
		}

		if len(fields) < 2 {
			return nil, fmt.Errorf("seismology: FEP malformed vertex line %d: %q", lineNo, line)
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("seismology: FEP bad longitude at line %d: %w", lineNo, err)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("seismology: FEP bad latitude at line %d: %w", lineNo, err)
		}
		points = append(points, Point{Lon: lon, Lat: lat})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return polygons, nil
}

// Contains reports whether (lat, lon) falls inside p using the standard
// ray-casting point-in-polygon test, applied regardless of the polygon's
// open/closed flag (an open polyline is treated as implicitly closed for
// containment, matching Geo::PolyRegions' region-membership use case).
func (p Polygon) Contains(lat, lon float64) bool {
	inside := false
	n := len(p.Points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := p.Points[i], p.Points[j]
		if (pi.Lat > lat) != (pj.Lat > lat) {
			lonAtLat := (pj.Lon-pi.Lon)*(lat-pi.Lat)/(pj.Lat-pi.Lat) + pi.Lon
			if lon < lonAtLat {
				inside = !inside
			}
		}
	}
	return inside
}

// FlinnEngdahlGrid is the injectable fixed 1-degree Flinn-Engdahl table:
// Regions[iLat+90][iLon+180] gives a 1-based index into Names. The full
// ~40000-cell table (feGeoRegionsArray/feGeoRegionsNames in
// original_source's regions/ferdata.h-generated data) was not part of the
// retrieved source, so callers supply their own copy of the published
// table; RegionService works against any grid satisfying this shape.
type FlinnEngdahlGrid struct {
	Regions [][]int
	Names   []string
}

// RegionAt reproduces regions.cpp's getFlinnEngdahlRegion indexing
// exactly: integer truncation then a +1 bump for non-negative
// coordinates, offset into the [-90,90]x[-180,180] grid.
func (g FlinnEngdahlGrid) RegionAt(lat, lon float64) (string, int, bool) {
	lat = normalizeLat(lat)
	lon = normalizeLon(lon)

	iLat := int(lat)
	iLon := int(lon)
	if lat >= 0 {
		iLat++
	}
	if lon >= 0 {
		iLon++
	}

	row := iLat + 90
	col := iLon + 180
	if row < 0 || row >= len(g.Regions) || col < 0 || col >= len(g.Regions[row]) {
		return "", 0, false
	}
	id := g.Regions[row][col]
	if id < 1 || id > len(g.Names) {
		return "", 0, false
	}
	return g.Names[id-1], id, true
}

func normalizeLat(lat float64) float64 {
	for lat > 90 {
		lat -= 180
	}
	for lat < -90 {
		lat += 180
	}
	return lat
}

func normalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon <= -180 {
		lon += 360
	}
	return lon
}

// Regions is the two-tier lookup of spec.md §4.6: polygonal (caller-loaded
// FEP files) first, then Flinn-Engdahl fallback, grounded on
// regions.cpp's Regions::getRegionName.
type Regions struct {
	Polygons []Polygon
	Grid     FlinnEngdahlGrid
}

// Name returns the first FEP polygon containing (lat, lon), falling back
// to the Flinn-Engdahl grid cell name.
func (r Regions) Name(lat, lon float64) string {
	for _, p := range r.Polygons {
		if p.Contains(lat, lon) {
			return p.Name
		}
	}
	if name, _, ok := r.Grid.RegionAt(lat, lon); ok {
		return name
	}
	return ""
}
