package server

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mmcloughlin/geohash"
	"github.com/tidwall/geojson"
	"github.com/tidwall/geojson/geometry"
	"github.com/tidwall/resp"
	"github.com/ygmpkk/lineslice/core"
	"github.com/ygmpkk/lineslice/internal/buffer"
	"github.com/ygmpkk/lineslice/internal/log"
	"github.com/ygmpkk/lineslice/internal/segment"
)

// segmentRequest is a parsed SEGMENT command
type segmentRequest struct {
	line     segment.Feature
	areaType string // object, bounds, hash, or circle
	area     string // raw area, used as the cache key for objects
	rect     geometry.Rect
	center   geometry.Point
	meters   float64 // circle radius, or the point buffer of an object
	opts     segment.Options
}

func (s *Server) parseSegmentArgs(vs []string) (req segmentRequest, err error) {
	var ok bool
	var line string
	if vs, line, ok = tokenval(vs); !ok || line == "" {
		return req, errInvalidNumberOfArguments
	}
	req.line, err = segment.ParseLine(line)
	if err != nil {
		return req, fmt.Errorf("invalid line: %w", err)
	}
	if max := s.config.maxPoints(); max > 0 && len(req.line.Geometry.Line) > max {
		return req, errTooManyPoints
	}
	err = s.parseAreaArgs(vs, &req)
	return req, err
}

// parseAreaArgs reads the area and the trailing options into req.
func (s *Server) parseAreaArgs(vs []string, req *segmentRequest) (err error) {
	var ok bool
	var typ string
	if vs, typ, ok = tokenval(vs); !ok || typ == "" {
		return errInvalidNumberOfArguments
	}
	req.areaType = strings.ToLower(typ)
	switch req.areaType {
	default:
		return errInvalidArgument(typ)
	case "object":
		if vs, req.area, ok = tokenval(vs); !ok || req.area == "" {
			return errInvalidNumberOfArguments
		}
	case "bounds":
		var minLat, minLon, maxLat, maxLon float64
		if vs, minLat, err = tokenfloat(vs); err != nil {
			return err
		}
		if vs, minLon, err = tokenfloat(vs); err != nil {
			return err
		}
		if vs, maxLat, err = tokenfloat(vs); err != nil {
			return err
		}
		if vs, maxLon, err = tokenfloat(vs); err != nil {
			return err
		}
		req.rect = geometry.Rect{
			Min: geometry.Point{X: minLon, Y: minLat},
			Max: geometry.Point{X: maxLon, Y: maxLat},
		}
	case "hash":
		var hash string
		if vs, hash, ok = tokenval(vs); !ok || hash == "" {
			return errInvalidNumberOfArguments
		}
		if len(hash) > 12 || geohash.Validate(hash) != nil {
			return errInvalidArgument(hash)
		}
		box := geohash.BoundingBox(hash)
		req.rect = geometry.Rect{
			Min: geometry.Point{X: box.MinLng, Y: box.MinLat},
			Max: geometry.Point{X: box.MaxLng, Y: box.MaxLat},
		}
	case "circle":
		var lat, lon float64
		if vs, lat, err = tokenfloat(vs); err != nil {
			return err
		}
		if vs, lon, err = tokenfloat(vs); err != nil {
			return err
		}
		var smeters string
		if vs, smeters, ok = tokenval(vs); !ok || smeters == "" {
			return errInvalidNumberOfArguments
		}
		if req.meters, err = parseMeters(smeters); err != nil {
			return err
		}
		req.center = geometry.Point{X: lon, Y: lat}
	}

	req.opts = s.segOpts
	var ordered, nodegen, buffered bool
	for len(vs) > 0 {
		var opt string
		vs, opt, _ = tokenval(vs)
		switch {
		default:
			return errInvalidArgument(opt)
		case lc(opt, "buffer"):
			if req.areaType != "object" {
				return errInvalidArgument(opt)
			}
			if buffered {
				return errDuplicateArgument(strings.ToUpper(opt))
			}
			buffered = true
			var smeters string
			if vs, smeters, ok = tokenval(vs); !ok || smeters == "" {
				return errInvalidNumberOfArguments
			}
			if req.meters, err = parseMeters(smeters); err != nil {
				return err
			}
		case lc(opt, "ordered"):
			if ordered {
				return errDuplicateArgument(strings.ToUpper(opt))
			}
			ordered = true
			req.opts.Ordered = true
		case lc(opt, "nodegenerate"):
			if nodegen {
				return errDuplicateArgument(strings.ToUpper(opt))
			}
			nodegen = true
			req.opts.DropDegenerate = true
		}
	}
	return nil
}

func parseMeters(s string) (float64, error) {
	meters, err := strconv.ParseFloat(s, 64)
	if err != nil || meters <= 0 || math.IsInf(meters, 0) || math.IsNaN(meters) {
		return 0, errInvalidArgument(s)
	}
	return meters, nil
}

// segmenter returns the compiled segmenter for the request, consulting the
// cache for object areas.
func (s *Server) segmenter(req *segmentRequest) (*segment.Segmenter, error) {
	switch req.areaType {
	case "object":
		key := cacheKey(req)
		if seg, ok := s.cache.get(key); ok {
			s.statsCacheHits.Inc()
			return seg, nil
		}
		s.statsCacheMisses.Inc()
		segs, err := objectSegmenters(req)
		if err != nil {
			return nil, err
		}
		seg := s.compile(segs, &req.opts)
		s.cache.set(key, seg)
		return seg, nil
	case "circle":
		segs := segment.FromObject(buffer.Circle(req.center, req.meters))
		return s.compile(segs, &req.opts), nil
	default:
		segs := segment.FromObject(geojson.NewRect(req.rect))
		return s.compile(segs, &req.opts), nil
	}
}

func (s *Server) compile(segs []segment.Feature, opts *segment.Options,
) *segment.Segmenter {
	seg := segment.Compile(segs, opts)
	s.statsRingsCompiled.Add(int64(seg.NumRings()))
	s.statsRingsIndexed.Add(int64(seg.NumIndexed()))
	s.statsEdgesCompiled.Add(int64(seg.NumEdges()))
	if core.ShowDebugMessages {
		log.Debugf("segment: compiled %d rings, %d edges, %d indexed",
			seg.NumRings(), seg.NumEdges(), seg.NumIndexed())
	}
	return seg
}

// objectSegmenters parses an OBJECT area. A buffered area goes through
// geojson so that its points can be turned into circles.
func objectSegmenters(req *segmentRequest) ([]segment.Feature, error) {
	if req.meters == 0 {
		segs, err := segment.ParseSegmenter(req.area)
		if err != nil {
			return nil, fmt.Errorf("invalid object: %w", err)
		}
		return segs, nil
	}
	obj, err := geojson.Parse(req.area, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid object: %w", err)
	}
	if obj, err = buffer.Points(obj, req.meters); err != nil {
		return nil, fmt.Errorf("invalid object: %w", err)
	}
	return segment.FromObject(obj), nil
}

func cacheKey(req *segmentRequest) string {
	var b []byte
	b = strconv.AppendInt(b, int64(req.opts.IndexEdges), 10)
	if req.opts.Ordered {
		b = append(b, 'o')
	}
	if req.opts.DropDegenerate {
		b = append(b, 'd')
	}
	if req.meters > 0 {
		b = append(b, 'b')
		b = strconv.AppendFloat(b, req.meters, 'f', -1, 64)
	}
	b = append(b, ':')
	b = append(b, req.area...)
	return string(b)
}

// runSegment cuts the request line, holding a concurrency slot while doing
// so.
func (s *Server) runSegment(req *segmentRequest) (segment.FeatureCollection, error) {
	seg, err := s.segmenter(req)
	if err != nil {
		return segment.FeatureCollection{}, err
	}
	lim := s.limiter()
	lim.Begin()
	fc := seg.Segment(req.line)
	lim.End()
	s.statsSegments.Inc()
	s.statsPieces.Add(int64(len(fc.Features)))
	return fc, nil
}

// SEGMENT line (OBJECT geojson [BUFFER meters]|BOUNDS minlat minlon maxlat maxlon
// |HASH geohash|CIRCLE lat lon meters) [ORDERED] [NODEGENERATE]
func (s *Server) cmdSegment(msg *Message) (res resp.Value, err error) {
	start := time.Now()
	req, err := s.parseSegmentArgs(msg.Args[1:])
	if err != nil {
		return NOMessage, err
	}
	fc, err := s.runSegment(&req)
	if err != nil {
		return NOMessage, err
	}
	switch msg.OutputType {
	case JSON:
		return resp.StringValue(string(appendSegmentJSON(nil, fc, start))), nil
	case RESP:
		return resp.StringValue(fc.JSON()), nil
	}
	return NOMessage, errors.New("unknown output type")
}

func appendSegmentJSON(dst []byte, fc segment.FeatureCollection,
	start time.Time,
) []byte {
	dst = append(dst, `{"ok":true,"segments":`...)
	dst = fc.AppendJSON(dst)
	dst = append(dst, `,"count":`...)
	dst = strconv.AppendInt(dst, int64(len(fc.Features)), 10)
	if len(fc.Features) > 0 {
		dst = append(dst, `,"bbox":`...)
		dst = appendJSONBBox(dst, fc.Object().Rect())
	}
	dst = append(dst, `,"elapsed":"`...)
	dst = append(dst, time.Since(start).String()...)
	dst = append(dst, `"}`...)
	return dst
}

// SEGMENTINFO (OBJECT geojson [BUFFER meters]|BOUNDS ...|HASH ...|CIRCLE ...)
// reports the compiled form of an area. Available in dev mode only.
func (s *Server) cmdSegmentInfo(msg *Message) (res resp.Value, err error) {
	start := time.Now()
	var req segmentRequest
	if err := s.parseAreaArgs(msg.Args[1:], &req); err != nil {
		return NOMessage, err
	}
	seg, err := s.segmenter(&req)
	if err != nil {
		return NOMessage, err
	}
	switch msg.OutputType {
	case JSON:
		var b []byte
		b = append(b, `{"ok":true,"rings":`...)
		b = strconv.AppendInt(b, int64(seg.NumRings()), 10)
		b = append(b, `,"edges":`...)
		b = strconv.AppendInt(b, int64(seg.NumEdges()), 10)
		b = append(b, `,"indexed":`...)
		b = strconv.AppendInt(b, int64(seg.NumIndexed()), 10)
		b = append(b, `,"elapsed":"`...)
		b = append(b, time.Since(start).String()...)
		b = append(b, `"}`...)
		return resp.StringValue(string(b)), nil
	case RESP:
		return resp.ArrayValue([]resp.Value{
			resp.StringValue("rings"), resp.IntegerValue(seg.NumRings()),
			resp.StringValue("edges"), resp.IntegerValue(seg.NumEdges()),
			resp.StringValue("indexed"), resp.IntegerValue(seg.NumIndexed()),
		}), nil
	}
	return NOMessage, errors.New("unknown output type")
}
