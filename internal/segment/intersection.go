package segment

import "github.com/tidwall/geojson/geometry"

// Intersection returns the point where segment a1-a2 crosses segment b1-b2.
// Only crossings strictly inside both segments are reported. Parallel and
// collinear segments, and segments that meet at an endpoint, do not
// intersect.
func Intersection(a1, a2, b1, b2 geometry.Point) (geometry.Point, bool) {
	pt, _, ok := intersect(a1, a2, b1, b2)
	return pt, ok
}

// intersect also returns the parametric position of the crossing along
// a1-a2. The float64 conversions keep every product rounded on its own so
// results do not depend on fused multiply-add.
func intersect(a1, a2, b1, b2 geometry.Point) (geometry.Point, float64, bool) {
	uaT := float64((b2.X-b1.X)*(a1.Y-b1.Y)) - float64((b2.Y-b1.Y)*(a1.X-b1.X))
	ubT := float64((a2.X-a1.X)*(a1.Y-b1.Y)) - float64((a2.Y-a1.Y)*(a1.X-b1.X))
	uB := float64((b2.Y-b1.Y)*(a2.X-a1.X)) - float64((b2.X-b1.X)*(a2.Y-a1.Y))
	if uB == 0 {
		return geometry.Point{}, 0, false
	}
	ua := uaT / uB
	ub := ubT / uB
	// NaN fails every comparison
	if !(ua > 0 && ua < 1 && ub > 0 && ub < 1) {
		return geometry.Point{}, 0, false
	}
	return geometry.Point{
		X: a1.X + float64(ua*(a2.X-a1.X)),
		Y: a1.Y + float64(ua*(a2.Y-a1.Y)),
	}, ua, true
}
