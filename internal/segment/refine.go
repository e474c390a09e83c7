package segment

import (
	"sort"

	"github.com/tidwall/geojson/geometry"
)

// Refine cuts every piece wherever it crosses ring and returns the new
// pieces in order.
//
// Each piece is walked edge by edge and each edge is tested against the
// ring edges in ring order. A piece vertex exactly equal to the start of a
// ring edge ends the current piece at that vertex. Otherwise a strict
// crossing is appended to the current piece, which then ends, and the next
// piece starts at the crossing. The last vertex of the ring is never tested
// for coincidence.
//
// An empty piece is returned unchanged and a one-point piece yields a
// one-point piece. The input is not modified and no output piece shares
// memory with another.
func Refine(pieces []Piece, ring Ring) []Piece {
	var rf refiner
	return rf.refine(pieces, &compiledRing{pts: ring})
}

// compiledRing is a ring with an optional edge index.
type compiledRing struct {
	pts   Ring
	index *ringIndex
}

func compileRing(ring Ring, indexEdges int) compiledRing {
	cr := compiledRing{pts: ring}
	if indexEdges > 0 && len(ring)-1 >= indexEdges {
		cr.index = newRingIndex(ring)
	}
	return cr
}

func (cr *compiledRing) edges() int {
	if len(cr.pts) < 2 {
		return 0
	}
	return len(cr.pts) - 1
}

// event is a cut found on one piece edge.
type event struct {
	coincident bool
	t          float64
	pt         geometry.Point
}

// refiner holds scratch buffers for one refinement run. It is not safe for
// concurrent use.
type refiner struct {
	ordered bool
	events  []event
	cands   []int
}

func (rf *refiner) refine(pieces []Piece, ring *compiledRing) []Piece {
	out := make([]Piece, 0, len(pieces))
	for _, p := range pieces {
		if len(p) == 0 {
			out = append(out, p)
			continue
		}
		var curr Piece
		for i := 0; i < len(p)-1; i++ {
			curr = append(curr, p[i])
			for _, e := range rf.cuts(ring, p[i], p[i+1]) {
				if e.coincident {
					out = append(out, curr)
					curr = Piece{p[i]}
				} else {
					curr = append(curr, e.pt)
					out = append(out, curr)
					curr = Piece{e.pt}
				}
			}
		}
		curr = append(curr, p[len(p)-1])
		out = append(out, curr)
	}
	return out
}

// cuts returns the events for the piece edge a1-a2 in the order they are
// applied. The slice is reused by the next call.
func (rf *refiner) cuts(ring *compiledRing, a1, a2 geometry.Point) []event {
	rf.events = rf.events[:0]
	if ring.index != nil {
		rf.cands = ring.index.candidates(a1, a2, rf.cands[:0])
		for _, j := range rf.cands {
			rf.test(ring.pts[j], ring.pts[j+1], a1, a2)
		}
	} else {
		for j := 0; j < len(ring.pts)-1; j++ {
			rf.test(ring.pts[j], ring.pts[j+1], a1, a2)
		}
	}
	if rf.ordered && len(rf.events) > 1 {
		sort.SliceStable(rf.events, func(i, j int) bool {
			return rf.events[i].t < rf.events[j].t
		})
	}
	return rf.events
}

func (rf *refiner) test(b1, b2, a1, a2 geometry.Point) {
	if a1 == b1 {
		rf.events = append(rf.events, event{coincident: true, pt: a1})
		return
	}
	if pt, t, ok := intersect(a1, a2, b1, b2); ok {
		rf.events = append(rf.events, event{t: t, pt: pt})
	}
}
