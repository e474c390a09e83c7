package server

import (
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ygmpkk/lineslice/internal/log"
	"github.com/ygmpkk/lineslice/internal/segment"
)

const maxRequestBody = 64 << 20

func (s *Server) serveHTTP(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.MetricsIndexHandler)
	mux.HandleFunc("/metrics", s.MetricsHandler)
	mux.HandleFunc("/segment", s.SegmentHandler)
	s.hsrv = &http.Server{
		Handler:     mux,
		ReadTimeout: time.Minute,
	}
	log.Infof("Listening for http at: %s", ln.Addr())
	go func() {
		if err := s.hsrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Errorf("http: %v", err)
		}
	}()
	return nil
}

// SegmentHandler handles POST /segment. The body is a [line, segmenter]
// array and the response is the FeatureCollection. The ordered and
// nodegenerate query parameters set the matching options.
func (s *Server) SegmentHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		httpError(w, http.StatusMethodNotAllowed, "method not allowed", start)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error(), start)
		return
	}
	line, segs, err := segment.ParsePair(string(body))
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error(), start)
		return
	}
	if max := s.config.maxPoints(); max > 0 && len(line.Geometry.Line) > max {
		httpError(w, http.StatusBadRequest, errTooManyPoints.Error(), start)
		return
	}
	opts := s.segOpts
	opts.Ordered = queryBool(r, "ordered")
	opts.DropDegenerate = queryBool(r, "nodegenerate")

	lim := s.limiter()
	lim.Begin()
	fc := segment.Segment(line, segs, &opts)
	lim.End()
	s.statsSegments.Inc()
	s.statsPieces.Add(int64(len(fc.Features)))

	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(append(fc.AppendJSON(nil), '\n'))
	log.HTTPf("POST /segment %d pieces in %s", len(fc.Features), time.Since(start))
}

func queryBool(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		_, ok := r.URL.Query()[name]
		return ok
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func httpError(w http.ResponseWriter, code int, msg string, start time.Time) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"ok":false,"err":` + jsonString(msg) +
		`,"elapsed":"` + time.Since(start).String() + "\"}\n"))
}
