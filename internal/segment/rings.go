package segment

// Rings returns the boundary rings of a segmenting shape in document order.
//
//	LineString          one ring, its coordinates
//	MultiLineString     one ring per line
//	Polygon             one ring per coordinate ring, holes included
//	MultiPolygon        every ring of every part, part by part
//	GeometryCollection  the rings of each child, in order
//
// Any other kind has no rings. The returned rings share coordinates with g.
func Rings(g Geometry) []Ring {
	return appendRings(nil, g)
}

func appendRings(dst []Ring, g Geometry) []Ring {
	switch g.Kind {
	case LineString:
		dst = append(dst, Ring(g.Line))
	case MultiLineString, Polygon:
		for _, line := range g.Lines {
			dst = append(dst, Ring(line))
		}
	case MultiPolygon:
		for _, poly := range g.Polys {
			for _, ring := range poly {
				dst = append(dst, Ring(ring))
			}
		}
	case GeometryCollection:
		for _, child := range g.Children {
			dst = appendRings(dst, child)
		}
	}
	return dst
}
