package segment

import (
	"github.com/tidwall/geojson"
	"github.com/tidwall/geojson/geometry"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// FromObject converts a geojson object into features. A FeatureCollection
// yields one feature per child. A Rect becomes a single ring polygon.
func FromObject(obj geojson.Object) []Feature {
	switch v := obj.(type) {
	case *geojson.FeatureCollection:
		var features []Feature
		for _, child := range v.Children() {
			features = append(features, FromObject(child)...)
		}
		return features
	case *geojson.Feature:
		props := "{}"
		if p := gjson.Get(v.Members(), "properties"); p.Exists() &&
			p.Type != gjson.Null {
			props = string(pretty.Ugly([]byte(p.Raw)))
		}
		return []Feature{{Geometry: fromObject(v.Base()), Properties: props}}
	}
	return []Feature{{Geometry: fromObject(obj), Properties: "{}"}}
}

func fromObject(obj geojson.Object) Geometry {
	switch v := obj.(type) {
	case *geojson.Point, *geojson.SimplePoint:
		return Geometry{Kind: Point, Point: obj.Center()}
	case *geojson.LineString:
		return Geometry{Kind: LineString, Line: seriesPoints(v.Base())}
	case *geojson.Polygon:
		return Geometry{Kind: Polygon, Lines: polyRings(v.Base())}
	case *geojson.Rect:
		base := v.Base()
		return Geometry{Kind: Polygon, Lines: [][]geometry.Point{seriesPoints(base)}}
	case *geojson.MultiPoint:
		g := Geometry{Kind: MultiPoint}
		for _, child := range v.Children() {
			g.Line = append(g.Line, child.Center())
		}
		return g
	case *geojson.MultiLineString:
		g := Geometry{Kind: MultiLineString}
		for _, child := range v.Children() {
			if ls, ok := child.(*geojson.LineString); ok {
				g.Lines = append(g.Lines, seriesPoints(ls.Base()))
			}
		}
		return g
	case *geojson.MultiPolygon:
		g := Geometry{Kind: MultiPolygon}
		for _, child := range v.Children() {
			if poly, ok := child.(*geojson.Polygon); ok {
				g.Polys = append(g.Polys, polyRings(poly.Base()))
			}
		}
		return g
	case *geojson.Feature:
		return fromObject(v.Base())
	case geojson.Collection:
		g := Geometry{Kind: GeometryCollection}
		for _, child := range v.Children() {
			g.Children = append(g.Children, fromObject(child))
		}
		return g
	}
	return Geometry{}
}

type pointSeries interface {
	NumPoints() int
	PointAt(index int) geometry.Point
}

func seriesPoints(s pointSeries) []geometry.Point {
	points := make([]geometry.Point, s.NumPoints())
	for i := 0; i < len(points); i++ {
		points[i] = s.PointAt(i)
	}
	return points
}

func polyRings(poly *geometry.Poly) [][]geometry.Point {
	rings := [][]geometry.Point{seriesPoints(poly.Exterior)}
	for _, hole := range poly.Holes {
		rings = append(rings, seriesPoints(hole))
	}
	return rings
}

// Object returns the collection as a geojson FeatureCollection.
func (fc FeatureCollection) Object() geojson.Object {
	objs := make([]geojson.Object, len(fc.Features))
	for i, f := range fc.Features {
		objs[i] = f.Object()
	}
	return geojson.NewFeatureCollection(objs)
}

// Object returns the feature as a geojson Feature.
func (f Feature) Object() geojson.Object {
	return geojson.NewFeature(f.Geometry.Object(),
		`{"properties":`+f.properties()+`}`)
}

// Object returns the geometry as a geojson object. Unknown geometries
// become an empty GeometryCollection.
func (g Geometry) Object() geojson.Object {
	switch g.Kind {
	case Point:
		return geojson.NewPoint(g.Point)
	case MultiPoint:
		return geojson.NewMultiPoint(g.Line)
	case LineString:
		return geojson.NewLineString(geometry.NewLine(g.Line, nil))
	case MultiLineString:
		lines := make([]*geometry.Line, len(g.Lines))
		for i, line := range g.Lines {
			lines[i] = geometry.NewLine(line, nil)
		}
		return geojson.NewMultiLineString(lines)
	case Polygon:
		return geojson.NewPolygon(newPoly(g.Lines))
	case MultiPolygon:
		polys := make([]*geometry.Poly, len(g.Polys))
		for i, rings := range g.Polys {
			polys[i] = newPoly(rings)
		}
		return geojson.NewMultiPolygon(polys)
	case GeometryCollection:
		objs := make([]geojson.Object, len(g.Children))
		for i, child := range g.Children {
			objs[i] = child.Object()
		}
		return geojson.NewGeometryCollection(objs)
	}
	return geojson.NewGeometryCollection(nil)
}

func newPoly(rings [][]geometry.Point) *geometry.Poly {
	var exterior []geometry.Point
	var holes [][]geometry.Point
	if len(rings) > 0 {
		exterior = rings[0]
		holes = rings[1:]
	}
	return geometry.NewPoly(exterior, holes, nil)
}
