package tools

import (
	"strings"
	"testing"
)

func TestGetBbox(t *testing.T) {
	bbox, err := GetBbox("43.52,1.32^43.70,1.69")
	if err != nil {
		t.Fatalf("GetBbox: %v", err)
	}
	if bbox.LatSW != 43.52 || bbox.LonSW != 1.32 || bbox.LatNE != 43.70 || bbox.LonNE != 1.69 {
		t.Errorf("bbox = %+v", bbox)
	}
}

func TestGetBboxMalformed(t *testing.T) {
	tests := []string{
		"43.52,1.32",          //no SW/NE separator
		"43.52^43.70,1.69",    //missing lon
		"abc,1.32^43.70,1.69", //unparsable latitude
	}
	for _, in := range tests {
		if _, err := GetBbox(in); err == nil {
			t.Errorf("GetBbox(%q) expected error", in)
		}
	}
}

func TestBboxToWKT(t *testing.T) {
	bbox := Bbox{LatSW: 43.52, LonSW: 1.32, LatNE: 43.70, LonNE: 1.69}
	wkt := BboxToWKT(bbox)

	if !strings.HasPrefix(wkt, "POLYGON((") {
		t.Errorf("wkt = %q", wkt)
	}
	// Polygon must be closed: first and last coordinate identical.
	inner := strings.TrimSuffix(strings.TrimPrefix(wkt, "POLYGON(("), "))")
	coords := strings.Split(inner, ", ")
	if len(coords) != 5 {
		t.Fatalf("expected 5 coordinates, got %d", len(coords))
	}
	if coords[0] != coords[4] {
		t.Errorf("polygon not closed: %q vs %q", coords[0], coords[4])
	}
}
