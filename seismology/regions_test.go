package seismology

import (
	"strings"
	"testing"
)

func TestParseFEPAndContains(t *testing.T) {
	fep := `# sample FEP fragment
0 0
10 0
10 10
0 10
0 0
99 99 1
2 Sample Region
`
	polys, err := ParseFEP(strings.NewReader(fep))
	if err != nil {
		t.Fatal(err)
	}
	if len(polys) != 1 {
		t.Fatalf("got %d polygons, want 1", len(polys))
	}
	p := polys[0]
	if p.Name != "Sample Region" || p.Rank != "1" || p.Level != "2" {
		t.Fatalf("parsed polygon = %+v", p)
	}
	if !p.Contains(5, 5) {
		t.Fatal("expected (5,5) to fall inside the square")
	}
	if p.Contains(50, 50) {
		t.Fatal("expected (50,50) to fall outside the square")
	}
}

func TestFlinnEngdahlGridRegionAt(t *testing.T) {
	grid := FlinnEngdahlGrid{
		Regions: [][]int{
			{1, 1},
			{1, 2},
		},
		Names: []string{"WEST", "EAST"},
	}
	name, id, ok := grid.RegionAt(-89.5, -179.5)
	if !ok {
		t.Fatal("expected a region match")
	}
	if name != "EAST" || id != 2 {
		t.Fatalf("got name=%q id=%d, want EAST/2", name, id)
	}
}

func TestRegionsPolygonTakesPriorityOverGrid(t *testing.T) {
	fep := `0 0
10 0
10 10
0 10
0 0
99 99 1
1 Polygon Wins
`
	polys, err := ParseFEP(strings.NewReader(fep))
	if err != nil {
		t.Fatal(err)
	}
	grid := FlinnEngdahlGrid{
		Regions: [][]int{{1, 1}, {1, 1}},
		Names:   []string{"GRID FALLBACK"},
	}
	r := Regions{Polygons: polys, Grid: grid}
	if got := r.Name(5, 5); got != "Polygon Wins" {
		t.Fatalf("Name = %q, want Polygon Wins", got)
	}
}
