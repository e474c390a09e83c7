package segment

import (
	"errors"
	"testing"

	"github.com/tidwall/assert"
)

func TestParseFeature(t *testing.T) {
	t.Run("Feature", func(t *testing.T) {
		f, err := ParseFeature(`{"type":"Feature","properties":{ "a" : 1 },
			"geometry":{"type":"LineString","coordinates":[[0,0],[10,0,5]]}}`)
		assert.Assert(err == nil)
		assert.Assert(f.Geometry.Kind == LineString)
		assert.Assert(len(f.Geometry.Line) == 2)
		assert.Assert(f.Geometry.Line[1] == P(10, 0))
		assert.Assert(f.Properties == `{"a":1}`)
	})
	t.Run("NullProperties", func(t *testing.T) {
		f, err := ParseFeature(`{"type":"Feature","properties":null,
			"geometry":{"type":"Point","coordinates":[1,2]}}`)
		assert.Assert(err == nil)
		assert.Assert(f.Geometry.Kind == Point)
		assert.Assert(f.Geometry.Point == P(1, 2))
		assert.Assert(f.Properties == "{}")
	})
	t.Run("BareGeometry", func(t *testing.T) {
		f, err := ParseFeature(`{"type":"Polygon","coordinates":[
			[[0,0],[4,0],[4,4],[0,4],[0,0]],[[1,1],[2,1],[2,2],[1,1]]]}`)
		assert.Assert(err == nil)
		assert.Assert(f.Geometry.Kind == Polygon)
		assert.Assert(len(f.Geometry.Lines) == 2)
		assert.Assert(len(f.Geometry.Lines[1]) == 4)
		assert.Assert(f.Properties == "{}")
	})
	t.Run("MultiPolygon", func(t *testing.T) {
		f, err := ParseFeature(`{"type":"MultiPolygon","coordinates":[
			[[[0,0],[1,0],[1,1],[0,0]]],
			[[[5,5],[6,5],[6,6],[5,5]],[[5.1,5.1],[5.2,5.1],[5.2,5.2],[5.1,5.1]]]]}`)
		assert.Assert(err == nil)
		assert.Assert(len(f.Geometry.Polys) == 2)
		assert.Assert(len(f.Geometry.Polys[1]) == 2)
	})
	t.Run("GeometryCollection", func(t *testing.T) {
		f, err := ParseFeature(`{"type":"GeometryCollection","geometries":[
			{"type":"Point","coordinates":[1,2]},
			{"type":"MultiLineString","coordinates":[[[0,0],[1,1]]]}]}`)
		assert.Assert(err == nil)
		assert.Assert(len(f.Geometry.Children) == 2)
		assert.Assert(f.Geometry.Children[1].Kind == MultiLineString)
	})
	t.Run("UnknownType", func(t *testing.T) {
		f, err := ParseFeature(`{"type":"Circle","radius":5}`)
		assert.Assert(err == nil)
		assert.Assert(f.Geometry.Kind == Unknown)
	})
}

func TestParseErrors(t *testing.T) {
	type tcase struct {
		name string
		json string
		err  error
	}
	tests := []tcase{
		{"NotJSON", `{"type":`, ErrInvalidJSON},
		{"NotObject", `[1,2]`, ErrInvalidJSON},
		{"NoType", `{"coordinates":[1,2]}`, ErrMissingType},
		{"NoGeometry", `{"type":"Feature","properties":{}}`, ErrMissingGeometry},
		{"NullGeometry", `{"type":"Feature","geometry":null}`, ErrMissingGeometry},
		{"ShortPosition", `{"type":"Point","coordinates":[1]}`, ErrInvalidCoordinates},
		{"StringPosition", `{"type":"Point","coordinates":["1","2"]}`, ErrInvalidCoordinates},
		{"WrongDepth", `{"type":"LineString","coordinates":[1,2]}`, ErrInvalidCoordinates},
		{"MissingCoordinates", `{"type":"Polygon"}`, ErrInvalidCoordinates},
		{"ChildNoType", `{"type":"GeometryCollection","geometries":[{}]}`, ErrMissingType},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFeature(tc.json)
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestParseLine(t *testing.T) {
	f, err := ParseLine(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`)
	assert.Assert(err == nil)
	assert.Assert(len(f.Geometry.Line) == 2)

	_, err = ParseLine(`{"type":"Point","coordinates":[0,0]}`)
	assert.Assert(errors.Is(err, ErrNotLineString))
	assert.Assert(err.Error() == "not a LineString: Point")
}

func TestParseSegmenter(t *testing.T) {
	segs, err := ParseSegmenter(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"n":1},"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}},
		{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`)
	assert.Assert(err == nil)
	assert.Assert(len(segs) == 2)
	assert.Assert(segs[0].Properties == `{"n":1}`)
	assert.Assert(segs[1].Geometry.Kind == Polygon)

	segs, err = ParseSegmenter(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`)
	assert.Assert(err == nil)
	assert.Assert(len(segs) == 1)

	_, err = ParseSegmenter(`{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[0,0]}},
		{"type":"Feature"}]}`)
	assert.Assert(errors.Is(err, ErrMissingGeometry))
	assert.Assert(err.Error() == "features[1]: missing geometry")
}

func TestParseFeatureCollection(t *testing.T) {
	fc, err := ParseFeatureCollection(`{"type":"FeatureCollection","features":[]}`)
	assert.Assert(err == nil)
	assert.Assert(len(fc.Features) == 0)

	_, err = ParseFeatureCollection(`{"type":"Feature","geometry":null}`)
	assert.Assert(errors.Is(err, ErrNotFeatureCollection))
}

func TestParsePair(t *testing.T) {
	line, segs, err := ParsePair(`[
		{"type":"Feature","properties":{"id":7},"geometry":{"type":"LineString","coordinates":[[0,0],[10,0]]}},
		{"type":"Polygon","coordinates":[[[5,-5],[5,5],[6,5],[6,-5],[5,-5]]]}]`)
	assert.Assert(err == nil)
	fc := Segment(line, segs, nil)
	assert.Assert(len(fc.Features) == 3)
	assert.Assert(fc.Features[2].Properties == `{"id":7}`)

	_, _, err = ParsePair(`[{"type":"LineString","coordinates":[[0,0],[1,1]]}]`)
	assert.Assert(errors.Is(err, ErrInvalidJSON))
	_, _, err = ParsePair(`[{"type":"Point","coordinates":[0,0]},{"type":"Point","coordinates":[0,0]}]`)
	assert.Assert(errors.Is(err, ErrNotLineString))
	_, _, err = ParsePair(`[{"type":"LineString","coordinates":[[0,0],[1,1]]},{}]`)
	assert.Assert(errors.Is(err, ErrMissingType))
}
