package segment

import (
	"errors"
	"fmt"

	"github.com/tidwall/geojson/geometry"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

var (
	// ErrInvalidJSON is returned for input that is not a JSON object.
	ErrInvalidJSON = errors.New("invalid json")
	// ErrMissingType is returned when an object has no type member.
	ErrMissingType = errors.New("missing type")
	// ErrMissingGeometry is returned for a Feature without a geometry.
	ErrMissingGeometry = errors.New("missing geometry")
	// ErrInvalidCoordinates is returned when coordinates do not match the
	// nesting of their geometry type.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrNotLineString is returned when a line is not a LineString.
	ErrNotLineString = errors.New("not a LineString")
	// ErrNotFeatureCollection is returned when a FeatureCollection was
	// expected.
	ErrNotFeatureCollection = errors.New("not a FeatureCollection")
)

// ParseFeature parses a Feature or a bare geometry object. A bare geometry
// gets empty properties. Unsupported geometry types parse as Unknown.
func ParseFeature(json string) (Feature, error) {
	res, err := parseObject(json)
	if err != nil {
		return Feature{}, err
	}
	return parseFeature(res)
}

// ParseLine parses a LineString, or a Feature holding one.
func ParseLine(json string) (Feature, error) {
	f, err := ParseFeature(json)
	if err != nil {
		return Feature{}, err
	}
	if f.Geometry.Kind != LineString {
		return Feature{}, fmt.Errorf("%w: %s", ErrNotLineString, f.Geometry.Kind)
	}
	return f, nil
}

// ParseSegmenter parses the segmenting shapes. A FeatureCollection yields
// its features in order. Anything else yields a single feature.
func ParseSegmenter(json string) ([]Feature, error) {
	res, err := parseObject(json)
	if err != nil {
		return nil, err
	}
	if res.Get("type").String() == "FeatureCollection" {
		fc, err := parseFeatureCollection(res)
		if err != nil {
			return nil, err
		}
		return fc.Features, nil
	}
	f, err := parseFeature(res)
	if err != nil {
		return nil, err
	}
	return []Feature{f}, nil
}

// ParseFeatureCollection parses a FeatureCollection.
func ParseFeatureCollection(json string) (FeatureCollection, error) {
	res, err := parseObject(json)
	if err != nil {
		return FeatureCollection{}, err
	}
	return parseFeatureCollection(res)
}

// ParsePair parses a JSON array holding a line and its segmenter.
func ParsePair(json string) (line Feature, segmenters []Feature, err error) {
	if !gjson.Valid(json) {
		return line, nil, ErrInvalidJSON
	}
	arr := gjson.Parse(json)
	if !arr.IsArray() {
		return line, nil, fmt.Errorf("%w: expected [line, segmenter]", ErrInvalidJSON)
	}
	elems := arr.Array()
	if len(elems) != 2 {
		return line, nil, fmt.Errorf("%w: expected 2 elements, got %d",
			ErrInvalidJSON, len(elems))
	}
	line, err = ParseLine(elems[0].Raw)
	if err != nil {
		return line, nil, fmt.Errorf("line: %w", err)
	}
	segmenters, err = ParseSegmenter(elems[1].Raw)
	if err != nil {
		return line, nil, fmt.Errorf("segmenter: %w", err)
	}
	return line, segmenters, nil
}

func parseObject(json string) (gjson.Result, error) {
	if !gjson.Valid(json) {
		return gjson.Result{}, ErrInvalidJSON
	}
	res := gjson.Parse(json)
	if !res.IsObject() {
		return gjson.Result{}, ErrInvalidJSON
	}
	return res, nil
}

func parseFeatureCollection(res gjson.Result) (FeatureCollection, error) {
	typ := res.Get("type")
	if !typ.Exists() {
		return FeatureCollection{}, ErrMissingType
	}
	if typ.String() != "FeatureCollection" {
		return FeatureCollection{}, fmt.Errorf("%w: %s",
			ErrNotFeatureCollection, typ.String())
	}
	var fc FeatureCollection
	var err error
	res.Get("features").ForEach(func(_, value gjson.Result) bool {
		var f Feature
		if !value.IsObject() {
			err = ErrInvalidJSON
		} else {
			f, err = parseFeature(value)
		}
		if err != nil {
			err = fmt.Errorf("features[%d]: %w", len(fc.Features), err)
			return false
		}
		fc.Features = append(fc.Features, f)
		return true
	})
	if err != nil {
		return FeatureCollection{}, err
	}
	return fc, nil
}

func parseFeature(res gjson.Result) (Feature, error) {
	typ := res.Get("type")
	if !typ.Exists() {
		return Feature{}, ErrMissingType
	}
	if typ.String() != "Feature" {
		g, err := parseGeometry(res)
		if err != nil {
			return Feature{}, err
		}
		return Feature{Geometry: g, Properties: "{}"}, nil
	}
	geom := res.Get("geometry")
	if !geom.Exists() || geom.Type == gjson.Null {
		return Feature{}, ErrMissingGeometry
	}
	if !geom.IsObject() {
		return Feature{}, fmt.Errorf("%w: geometry", ErrInvalidJSON)
	}
	g, err := parseGeometry(geom)
	if err != nil {
		return Feature{}, err
	}
	props := "{}"
	if p := res.Get("properties"); p.Exists() && p.Type != gjson.Null {
		props = string(pretty.Ugly([]byte(p.Raw)))
	}
	return Feature{Geometry: g, Properties: props}, nil
}

func parseGeometry(res gjson.Result) (Geometry, error) {
	typ := res.Get("type")
	if !typ.Exists() {
		return Geometry{}, ErrMissingType
	}
	g := Geometry{Kind: parseKind(typ.String())}
	if g.Kind == GeometryCollection {
		var err error
		res.Get("geometries").ForEach(func(_, value gjson.Result) bool {
			var child Geometry
			child, err = parseGeometry(value)
			g.Children = append(g.Children, child)
			return err == nil
		})
		return g, err
	}
	if g.Kind == Unknown {
		return g, nil
	}
	coords := res.Get("coordinates")
	var err error
	switch g.Kind {
	case Point:
		g.Point, err = parsePoint(coords)
	case MultiPoint, LineString:
		g.Line, err = parsePoints(coords)
	case MultiLineString, Polygon:
		g.Lines, err = parseLines(coords)
	case MultiPolygon:
		if !coords.IsArray() {
			return g, ErrInvalidCoordinates
		}
		coords.ForEach(func(_, value gjson.Result) bool {
			var poly [][]geometry.Point
			poly, err = parseLines(value)
			g.Polys = append(g.Polys, poly)
			return err == nil
		})
	}
	if err != nil {
		return g, fmt.Errorf("%s: %w", g.Kind, err)
	}
	return g, nil
}

// parsePoint reads a position. Positions beyond x and y are ignored.
func parsePoint(res gjson.Result) (geometry.Point, error) {
	if !res.IsArray() {
		return geometry.Point{}, ErrInvalidCoordinates
	}
	var p geometry.Point
	var n int
	var ok = true
	res.ForEach(func(_, value gjson.Result) bool {
		if value.Type != gjson.Number {
			ok = false
			return false
		}
		switch n {
		case 0:
			p.X = value.Num
		case 1:
			p.Y = value.Num
		}
		n++
		return true
	})
	if !ok || n < 2 {
		return geometry.Point{}, ErrInvalidCoordinates
	}
	return p, nil
}

func parsePoints(res gjson.Result) ([]geometry.Point, error) {
	if !res.IsArray() {
		return nil, ErrInvalidCoordinates
	}
	var pts []geometry.Point
	var err error
	res.ForEach(func(_, value gjson.Result) bool {
		var p geometry.Point
		p, err = parsePoint(value)
		pts = append(pts, p)
		return err == nil
	})
	return pts, err
}

func parseLines(res gjson.Result) ([][]geometry.Point, error) {
	if !res.IsArray() {
		return nil, ErrInvalidCoordinates
	}
	var lines [][]geometry.Point
	var err error
	res.ForEach(func(_, value gjson.Result) bool {
		var pts []geometry.Point
		pts, err = parsePoints(value)
		lines = append(lines, pts)
		return err == nil
	})
	return lines, err
}
