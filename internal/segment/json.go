package segment

import (
	"math"
	"strconv"

	"github.com/tidwall/geojson/geometry"
)

// AppendJSON appends the GeoJSON representation of the collection.
func (fc FeatureCollection) AppendJSON(dst []byte) []byte {
	dst = append(dst, `{"type":"FeatureCollection","features":[`...)
	for i, f := range fc.Features {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = f.AppendJSON(dst)
	}
	return append(dst, `]}`...)
}

// JSON returns the GeoJSON representation of the collection.
func (fc FeatureCollection) JSON() string {
	return string(fc.AppendJSON(nil))
}

// AppendJSON appends the GeoJSON representation of the feature.
func (f Feature) AppendJSON(dst []byte) []byte {
	dst = append(dst, `{"type":"Feature","properties":`...)
	dst = append(dst, f.properties()...)
	dst = append(dst, `,"geometry":`...)
	dst = f.Geometry.AppendJSON(dst)
	return append(dst, '}')
}

// JSON returns the GeoJSON representation of the feature.
func (f Feature) JSON() string {
	return string(f.AppendJSON(nil))
}

func (f Feature) properties() string {
	if f.Properties == "" {
		return "{}"
	}
	return f.Properties
}

// AppendJSON appends the GeoJSON representation of the geometry. Unknown
// geometries encode as null.
func (g Geometry) AppendJSON(dst []byte) []byte {
	if g.Kind == Unknown {
		return append(dst, "null"...)
	}
	dst = append(dst, `{"type":"`...)
	dst = append(dst, g.Kind.String()...)
	if g.Kind == GeometryCollection {
		dst = append(dst, `","geometries":[`...)
		for i, child := range g.Children {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = child.AppendJSON(dst)
		}
		return append(dst, `]}`...)
	}
	dst = append(dst, `","coordinates":`...)
	switch g.Kind {
	case Point:
		dst = appendPoint(dst, g.Point)
	case MultiPoint, LineString:
		dst = appendPoints(dst, g.Line)
	case MultiLineString, Polygon:
		dst = appendLines(dst, g.Lines)
	case MultiPolygon:
		dst = append(dst, '[')
		for i, poly := range g.Polys {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendLines(dst, poly)
		}
		dst = append(dst, ']')
	}
	return append(dst, '}')
}

func appendPoint(dst []byte, p geometry.Point) []byte {
	dst = append(dst, '[')
	dst = AppendFloat(dst, p.X)
	dst = append(dst, ',')
	dst = AppendFloat(dst, p.Y)
	return append(dst, ']')
}

// AppendFloat appends the shortest JSON number for f. Magnitudes below 1e-6
// or from 1e21 up use exponent form, and negative zero is written as 0.
func AppendFloat(dst []byte, f float64) []byte {
	if f == 0 {
		return append(dst, '0')
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.AppendFloat(dst, f, 'f', -1, 64)
	}
	mark := len(dst)
	dst = strconv.AppendFloat(dst, f, 'e', -1, 64)
	// e-07 -> e-7
	for i := mark; i < len(dst)-3; i++ {
		if dst[i] == 'e' && dst[i+2] == '0' {
			dst = append(dst[:i+2], dst[i+3:]...)
			break
		}
	}
	return dst
}

func appendPoints(dst []byte, pts []geometry.Point) []byte {
	dst = append(dst, '[')
	for i, p := range pts {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendPoint(dst, p)
	}
	return append(dst, ']')
}

func appendLines(dst []byte, lines [][]geometry.Point) []byte {
	dst = append(dst, '[')
	for i, line := range lines {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendPoints(dst, line)
	}
	return append(dst, ']')
}
