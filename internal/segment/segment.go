// Package segment cuts a line into pieces at every crossing with another
// shape.
package segment

import "github.com/tidwall/geojson/geometry"

// Options for segmentation.
type Options struct {
	// IndexEdges is the number of edges a ring needs before its edges are
	// put into an rtree. Indexing does not change the output. Zero disables
	// indexing.
	IndexEdges int
	// Ordered applies the cuts found on one line edge in order of distance
	// along the edge instead of ring edge order.
	Ordered bool
	// DropDegenerate removes output pieces with fewer than two points.
	DropDegenerate bool
}

// DefaultOptions are the options used when nil is provided.
var DefaultOptions = &Options{
	IndexEdges: 64,
}

// Segmenter is a compiled set of segmenting shapes. It is immutable and
// safe for concurrent use.
type Segmenter struct {
	rings []compiledRing
	opts  Options
}

// Compile extracts the rings of every segmenter, in order, so that the
// same shapes can cut many lines.
func Compile(segmenters []Feature, opts *Options) *Segmenter {
	if opts == nil {
		opts = DefaultOptions
	}
	s := &Segmenter{opts: *opts}
	for _, f := range segmenters {
		for _, ring := range Rings(f.Geometry) {
			s.rings = append(s.rings, compileRing(ring, s.opts.IndexEdges))
		}
	}
	return s
}

// NumRings returns the number of compiled rings.
func (s *Segmenter) NumRings() int {
	return len(s.rings)
}

// NumIndexed returns the number of rings that use an edge index.
func (s *Segmenter) NumIndexed() int {
	var n int
	for i := range s.rings {
		if s.rings[i].index != nil {
			n++
		}
	}
	return n
}

// NumEdges returns the total number of ring edges.
func (s *Segmenter) NumEdges() int {
	var n int
	for i := range s.rings {
		n += s.rings[i].edges()
	}
	return n
}

// Split cuts the line by every ring in order.
func (s *Segmenter) Split(line []geometry.Point) []Piece {
	pieces := []Piece{append(Piece(nil), line...)}
	rf := refiner{ordered: s.opts.Ordered}
	for i := range s.rings {
		pieces = rf.refine(pieces, &s.rings[i])
	}
	if s.opts.DropDegenerate {
		pieces = dropDegenerate(pieces)
	}
	return pieces
}

// Segment cuts a LineString feature and returns the pieces as LineString
// features that carry the properties of the line. A feature of any other
// kind yields an empty collection.
func (s *Segmenter) Segment(line Feature) FeatureCollection {
	if line.Geometry.Kind != LineString {
		return FeatureCollection{}
	}
	pieces := s.Split(line.Geometry.Line)
	fc := FeatureCollection{Features: make([]Feature, len(pieces))}
	for i, p := range pieces {
		fc.Features[i] = NewLine(p, line.Properties)
	}
	return fc
}

// Segment cuts line at every crossing with the segmenters.
func Segment(line Feature, segmenters []Feature, opts *Options) FeatureCollection {
	return Compile(segmenters, opts).Segment(line)
}

// Split cuts line by every ring in order.
func Split(line []geometry.Point, rings []Ring, opts *Options) []Piece {
	if opts == nil {
		opts = DefaultOptions
	}
	s := &Segmenter{opts: *opts}
	s.rings = make([]compiledRing, len(rings))
	for i, ring := range rings {
		s.rings[i] = compileRing(ring, opts.IndexEdges)
	}
	return s.Split(line)
}

func dropDegenerate(pieces []Piece) []Piece {
	out := pieces[:0]
	for _, p := range pieces {
		if len(p) >= 2 {
			out = append(out, p)
		}
	}
	return out
}
