package segment

import (
	"math"
	"testing"

	"github.com/tidwall/geojson/geometry"
)

func P(x, y float64) geometry.Point {
	return geometry.Point{X: x, Y: y}
}

func expect(t testing.TB, expect bool) {
	t.Helper()
	if !expect {
		t.Fatal("not what you expected")
	}
}

func TestIntersection(t *testing.T) {
	type tcase struct {
		name           string
		a1, a2, b1, b2 geometry.Point
		pt             geometry.Point
		ok             bool
	}
	tests := []tcase{
		{"Cross", P(0, 0), P(10, 0), P(5, -5), P(5, 5), P(5, 0), true},
		{"CrossReversed", P(0, 0), P(10, 0), P(6, 5), P(6, -5), P(6, 0), true},
		{"Diagonal", P(0, 0), P(4, 4), P(0, 4), P(4, 0), P(2, 2), true},
		{"Parallel", P(0, 0), P(10, 0), P(0, 1), P(10, 1), P(0, 0), false},
		{"Collinear", P(0, 0), P(10, 0), P(2, 0), P(8, 0), P(0, 0), false},
		{"Disjoint", P(0, 0), P(10, 0), P(20, -5), P(20, 5), P(0, 0), false},
		{"TouchAtStart", P(0, 0), P(10, 0), P(0, -5), P(0, 5), P(0, 0), false},
		{"TouchAtEnd", P(0, 0), P(10, 0), P(10, -5), P(10, 5), P(0, 0), false},
		{"OtherEndsOnLine", P(0, 0), P(10, 0), P(5, 0), P(5, 5), P(0, 0), false},
		{"OtherStartsOnLine", P(0, 0), P(10, 0), P(5, 5), P(5, 0), P(0, 0), false},
		{"Degenerate", P(0, 0), P(0, 0), P(5, -5), P(5, 5), P(0, 0), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pt, ok := Intersection(tc.a1, tc.a2, tc.b1, tc.b2)
			if ok != tc.ok {
				t.Fatalf("expected %v, got %v", tc.ok, ok)
			}
			if ok && pt != tc.pt {
				t.Fatalf("expected %v, got %v", tc.pt, pt)
			}
		})
	}
}

func TestIntersectionSymmetric(t *testing.T) {
	// a crossing is reported for both argument orders
	_, ok1 := Intersection(P(0, 0), P(10, 0), P(5, -5), P(5, 5))
	_, ok2 := Intersection(P(5, -5), P(5, 5), P(0, 0), P(10, 0))
	expect(t, ok1 && ok2)
}

func TestIntersectionNaN(t *testing.T) {
	nan := math.NaN()
	_, ok := Intersection(P(nan, 0), P(10, 0), P(5, -5), P(5, 5))
	expect(t, !ok)
	_, ok = Intersection(P(0, 0), P(10, 0), P(5, nan), P(5, 5))
	expect(t, !ok)
}

func TestIntersectionParam(t *testing.T) {
	pt, ua, ok := intersect(P(0, 0), P(10, 0), P(6, -5), P(6, 5))
	expect(t, ok)
	expect(t, pt == P(6, 0))
	expect(t, ua == 0.6)
}
