package buffer

import (
	"math"
	"testing"

	"github.com/tidwall/assert"
	"github.com/tidwall/geojson"
	"github.com/tidwall/geojson/geo"
	"github.com/tidwall/geojson/geometry"
)

func TestCircle(t *testing.T) {
	center := geometry.Point{X: -112.1, Y: 33.4}
	poly := Circle(center, 1000)
	ext := poly.Base().Exterior
	assert.Assert(ext.NumPoints() == Steps+1)
	assert.Assert(ext.PointAt(0) == ext.PointAt(Steps))
	assert.Assert(poly.Contains(geojson.NewPoint(center)))
	for i := 0; i < Steps; i++ {
		p := ext.PointAt(i)
		m := geo.DistanceTo(center.Y, center.X, p.Y, p.X)
		assert.Assert(math.Abs(m-1000) < 10)
	}
}

func TestPoints(t *testing.T) {
	parse := func(s string) geojson.Object {
		t.Helper()
		obj, err := geojson.Parse(s, nil)
		assert.Assert(err == nil)
		return obj
	}

	obj, err := Points(parse(`{"type":"Point","coordinates":[1,2]}`), 100)
	assert.Assert(err == nil)
	_, ok := obj.(*geojson.Polygon)
	assert.Assert(ok)

	obj, err = Points(parse(`{"type":"MultiPoint","coordinates":[[1,2],[3,4]]}`), 100)
	assert.Assert(err == nil)
	gc, ok := obj.(*geojson.GeometryCollection)
	assert.Assert(ok && len(gc.Children()) == 2)

	obj, err = Points(parse(`{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"name":"a"}}`), 100)
	assert.Assert(err == nil)
	f, ok := obj.(*geojson.Feature)
	assert.Assert(ok)
	_, ok = f.Base().(*geojson.Polygon)
	assert.Assert(ok)

	obj, err = Points(parse(`{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}
	]}`), 100)
	assert.Assert(err == nil)
	_, ok = obj.(*geojson.FeatureCollection)
	assert.Assert(ok)

	_, err = Points(parse(`{"type":"LineString","coordinates":[[1,2],[3,4]]}`), 100)
	assert.Assert(err != nil && err.Error() == "cannot buffer LineString type")
	_, err = Points(parse(`{"type":"Point","coordinates":[1,2]}`), 0)
	assert.Assert(err == errInvalidMeters)
	_, err = Points(parse(`{"type":"Point","coordinates":[1,2]}`), math.NaN())
	assert.Assert(err == errInvalidMeters)
	_, err = Points(nil, 10)
	assert.Assert(err != nil)
}
