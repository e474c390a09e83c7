package segment

import (
	"sort"

	"github.com/tidwall/geojson/geometry"
	"github.com/tidwall/rtree"
)

// ringIndex is an rtree of ring edge boxes keyed by edge number.
type ringIndex struct {
	tr rtree.RTreeGN[float64, int]
}

func newRingIndex(ring Ring) *ringIndex {
	idx := new(ringIndex)
	for j := 0; j < len(ring)-1; j++ {
		min, max := edgeRect(ring[j], ring[j+1])
		idx.tr.Insert(min, max, j)
	}
	return idx
}

func edgeRect(a, b geometry.Point) (min, max [2]float64) {
	min = [2]float64{a.X, a.Y}
	max = min
	if b.X < min[0] {
		min[0] = b.X
	} else if b.X > max[0] {
		max[0] = b.X
	}
	if b.Y < min[1] {
		min[1] = b.Y
	} else if b.Y > max[1] {
		max[1] = b.Y
	}
	return min, max
}

// candidates appends to dst the numbers of every edge whose box touches the
// box of a1-a2, in ascending order. A ring vertex equal to a1 and any strict
// crossing of a1-a2 both lie inside that box, so the candidates include
// every edge the linear walk could act on.
func (idx *ringIndex) candidates(a1, a2 geometry.Point, dst []int) []int {
	min, max := edgeRect(a1, a2)
	idx.tr.Search(min, max, func(_, _ [2]float64, j int) bool {
		dst = append(dst, j)
		return true
	})
	sort.Ints(dst)
	return dst
}
