package segment

import (
	"math"
	"testing"

	"github.com/tidwall/geojson/geometry"
)

func TestFeatureCollectionJSON(t *testing.T) {
	line := NewLine(L(0, 0, 10, 0.5), `{"name":"a"}`)
	seg := NewPolygon(L(5, -5, 5, 5, 6, 5, 6, -5, 5, -5))
	fc := Segment(NewLine(L(0, 0, 10, 0), line.Properties), []Feature{seg}, nil)
	exp := `{"type":"FeatureCollection","features":[` +
		`{"type":"Feature","properties":{"name":"a"},"geometry":{"type":"LineString","coordinates":[[0,0],[5,0]]}},` +
		`{"type":"Feature","properties":{"name":"a"},"geometry":{"type":"LineString","coordinates":[[5,0],[6,0]]}},` +
		`{"type":"Feature","properties":{"name":"a"},"geometry":{"type":"LineString","coordinates":[[6,0],[10,0]]}}]}`
	if got := fc.JSON(); got != exp {
		t.Fatalf("expected\n%s\ngot\n%s", exp, got)
	}
	if got := (FeatureCollection{}).JSON(); got != `{"type":"FeatureCollection","features":[]}` {
		t.Fatalf("got %s", got)
	}
	if got := line.JSON(); got != `{"type":"Feature","properties":{"name":"a"},`+
		`"geometry":{"type":"LineString","coordinates":[[0,0],[10,0.5]]}}` {
		t.Fatalf("got %s", got)
	}
}

func TestGeometryJSONRoundTrip(t *testing.T) {
	geoms := []string{
		`{"type":"Point","coordinates":[1.5,-2]}`,
		`{"type":"MultiPoint","coordinates":[[1,2],[3,4]]}`,
		`{"type":"MultiLineString","coordinates":[[[1,2],[3,4]],[[5,6],[7,8]]]}`,
		`{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,4],[0,0]]]}`,
		`{"type":"MultiPolygon","coordinates":[[[[0,0],[4,0],[4,4],[0,0]]],[[[5,5],[6,5],[6,6],[5,5]]]]}`,
		`{"type":"GeometryCollection","geometries":[{"type":"Point","coordinates":[0.125,3]}]}`,
	}
	for _, js := range geoms {
		f, err := ParseFeature(js)
		if err != nil {
			t.Fatal(err)
		}
		if got := string(f.Geometry.AppendJSON(nil)); got != js {
			t.Fatalf("expected %s, got %s", js, got)
		}
	}
	if got := string((Geometry{}).AppendJSON(nil)); got != "null" {
		t.Fatalf("got %s", got)
	}
}

func TestEmptyPropertiesJSON(t *testing.T) {
	f := Feature{Geometry: Geometry{Kind: LineString, Line: []geometry.Point{}}}
	exp := `{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[]}}`
	if got := f.JSON(); got != exp {
		t.Fatalf("expected %s, got %s", exp, got)
	}
}

func TestAppendFloat(t *testing.T) {
	tests := []struct {
		f   float64
		exp string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-112.25, "-112.25"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{-2.5e-10, "-2.5e-10"},
		{1e-300, "1e-300"},
		{123456789012345680000, "123456789012345680000"},
		{1e21, "1e+21"},
		{1.5e300, "1.5e+300"},
	}
	for _, tt := range tests {
		if got := string(AppendFloat(nil, tt.f)); got != tt.exp {
			t.Fatalf("%v: expected %s, got %s", tt.f, tt.exp, got)
		}
	}
	got := string(appendPoint(nil, geometry.Point{X: 1e-300, Y: math.Copysign(0, -1)}))
	if got != "[1e-300,0]" {
		t.Fatalf("got %s", got)
	}
}
