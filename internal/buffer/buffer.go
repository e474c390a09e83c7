// Package buffer turns point shapes into circular areas that can segment a
// line.
package buffer

import (
	"errors"
	"math"

	"github.com/tidwall/geojson"
	"github.com/tidwall/geojson/geo"
	"github.com/tidwall/geojson/geometry"
	"github.com/tidwall/gjson"
)

// TODO: detect pole and antimeridian crossing and split the circle into a
// valid multipolygon

// Steps is the number of edges of a circle ring.
const Steps = 64

var errInvalidMeters = errors.New("invalid meters")

// Circle returns a polygon approximating the circle of the given radius
// around center. The ring has Steps edges and is closed.
func Circle(center geometry.Point, meters float64) *geojson.Polygon {
	meters = geo.NormalizeDistance(meters)
	points := make([]geometry.Point, 0, Steps+1)

	// calc the four corners
	maxY, _ := geo.DestinationPoint(center.Y, center.X, meters, 0)
	_, maxX := geo.DestinationPoint(center.Y, center.X, meters, 90)
	minY, _ := geo.DestinationPoint(center.Y, center.X, meters, 180)
	_, minX := geo.DestinationPoint(center.Y, center.X, meters, 270)

	// use the half width of the lat and lon
	lons := (maxX - minX) / 2
	lats := (maxY - minY) / 2

	for i := 0; i < Steps; i++ {
		radians := 2 * math.Pi * float64(i) / float64(Steps)
		points = append(points, geometry.Point{
			X: center.X + lons*math.Cos(radians),
			Y: center.Y + lats*math.Sin(radians),
		})
	}
	points = append(points, points[0])
	return geojson.NewPolygon(
		geometry.NewPoly(points, nil, &geometry.IndexOptions{
			Kind: geometry.None,
		}),
	)
}

// Points replaces every point in the object with a circle of the given
// radius. Lines and polygons are rejected because the union of their
// buffered parts would cut a line inside the area.
func Points(g geojson.Object, meters float64) (geojson.Object, error) {
	if math.IsInf(meters, 0) || math.IsNaN(meters) || meters <= 0 {
		return nil, errInvalidMeters
	}
	switch g := g.(type) {
	case *geojson.Point:
		return Circle(g.Base(), meters), nil
	case *geojson.SimplePoint:
		return Circle(g.Base(), meters), nil
	case *geojson.MultiPoint:
		return pointsCollection(g.Children(), meters, false)
	case *geojson.GeometryCollection:
		return pointsCollection(g.Children(), meters, false)
	case *geojson.FeatureCollection:
		return pointsCollection(g.Children(), meters, true)
	case *geojson.Feature:
		bg, err := Points(g.Base(), meters)
		if err != nil {
			return nil, err
		}
		return geojson.NewFeature(bg, g.Members()), nil
	case nil:
		return nil, errors.New("cannot buffer nil object")
	default:
		typ := gjson.Get(g.JSON(), "type").String()
		return nil, errors.New("cannot buffer " + typ + " type")
	}
}

func pointsCollection(objs []geojson.Object, meters float64, features bool,
) (geojson.Object, error) {
	geoms := make([]geojson.Object, len(objs))
	for i := 0; i < len(objs); i++ {
		g, err := Points(objs[i], meters)
		if err != nil {
			return nil, err
		}
		geoms[i] = g
	}
	if features {
		return geojson.NewFeatureCollection(geoms), nil
	}
	return geojson.NewGeometryCollection(geoms), nil
}
