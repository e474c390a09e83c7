package segment

import "github.com/tidwall/geojson/geometry"

// Piece is a contiguous run of line coordinates produced by segmentation.
type Piece []geometry.Point

// Ring is a boundary walked as consecutive coordinate pairs. A ring may be
// open, like the coordinates of a LineString, or closed, like a polygon
// ring. Closure is not special-cased.
type Ring []geometry.Point

// Kind is the geometry type tag.
type Kind byte

const (
	Unknown Kind = iota
	Point
	MultiPoint
	LineString
	MultiLineString
	Polygon
	MultiPolygon
	GeometryCollection
)

var kindNames = [...]string{
	Unknown:            "Unknown",
	Point:              "Point",
	MultiPoint:         "MultiPoint",
	LineString:         "LineString",
	MultiLineString:    "MultiLineString",
	Polygon:            "Polygon",
	MultiPolygon:       "MultiPolygon",
	GeometryCollection: "GeometryCollection",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[Unknown]
}

func parseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s && Kind(k) != Unknown {
			return Kind(k)
		}
	}
	return Unknown
}

// Geometry is a GeoJSON geometry. The coordinates live in the field that
// matches the nesting depth of the kind:
//
//	Point                        -> Point
//	MultiPoint, LineString       -> Line
//	MultiLineString, Polygon     -> Lines
//	MultiPolygon                 -> Polys
//	GeometryCollection           -> Children
type Geometry struct {
	Kind     Kind
	Point    geometry.Point
	Line     []geometry.Point
	Lines    [][]geometry.Point
	Polys    [][][]geometry.Point
	Children []Geometry
}

// Feature is a geometry with its properties. Properties holds the raw JSON
// text of the properties member. An empty string encodes as {}.
type Feature struct {
	Geometry   Geometry
	Properties string
}

// FeatureCollection is an ordered list of features.
type FeatureCollection struct {
	Features []Feature
}

// NewLine returns a LineString feature with the provided properties.
func NewLine(points []geometry.Point, properties string) Feature {
	return Feature{
		Geometry:   Geometry{Kind: LineString, Line: points},
		Properties: properties,
	}
}

// NewPolygon returns a Polygon feature without properties.
func NewPolygon(rings ...[]geometry.Point) Feature {
	return Feature{Geometry: Geometry{Kind: Polygon, Lines: rings}}
}
