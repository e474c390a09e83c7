package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmcloughlin/geohash"
	"github.com/tidwall/geojson"
	"github.com/tidwall/geojson/geo"
	"github.com/tidwall/geojson/geometry"
	"github.com/tidwall/redbench"
	"github.com/tidwall/resp"
	"github.com/ygmpkk/lineslice/core"
	"github.com/ygmpkk/lineslice/internal/buffer"
)

// workload is one benchmark. args returns the SEGMENT arguments that follow
// the line.
type workload struct {
	name string
	args func(a *area) []string
}

var workloads = []workload{
	{"PING", nil},
	{"SEGMENT", func(a *area) []string {
		return []string{"OBJECT", a.circle}
	}},
	{"SEGMENT-LARGE", func(a *area) []string {
		return []string{"OBJECT", a.large}
	}},
	{"SEGMENT-BOUNDS", func(a *area) []string {
		r := a.rect
		return []string{"BOUNDS", ftoa(r.Min.Y), ftoa(r.Min.X),
			ftoa(r.Max.Y), ftoa(r.Max.X)}
	}},
	{"SEGMENT-HASH", func(a *area) []string {
		return []string{"HASH", geohash.EncodeWithPrecision(a.center.Y, a.center.X, 6)}
	}},
	{"SEGMENT-CIRCLE", func(a *area) []string {
		return []string{"CIRCLE", ftoa(a.center.Y), ftoa(a.center.X),
			ftoa(a.meters)}
	}},
	{"SEGMENT-BUFFER", func(a *area) []string {
		return []string{"OBJECT", geojson.NewPoint(a.center).JSON(),
			"BUFFER", ftoa(a.meters)}
	}},
}

// area is the fixed region every request cuts against, so the server can
// reuse its compiled segmenter.
type area struct {
	center geometry.Point
	meters float64
	circle string
	large  string
	rect   geometry.Rect
}

func newArea(center geometry.Point, meters float64) *area {
	a := &area{center: center, meters: meters}
	poly := buffer.Circle(center, meters)
	a.circle = poly.JSON()
	a.rect = poly.Rect()
	a.large = ring(center, meters, 1024)
	return a
}

// ring returns a Polygon with n edges on the circle around center.
func ring(center geometry.Point, meters float64, n int) string {
	points := make([]geometry.Point, n+1)
	for i := 0; i < n; i++ {
		points[i] = destination(center, meters, float64(i)*360/float64(n))
	}
	points[n] = points[0]
	return geojson.NewPolygon(geometry.NewPoly(points, nil, nil)).JSON()
}

// line returns a LineString of n points scattered within meters of center.
func line(center geometry.Point, meters float64, n int) string {
	points := make([]geometry.Point, n)
	for i := range points {
		points[i] = destination(center, rand.Float64()*meters, rand.Float64()*360)
	}
	return geojson.NewLineString(geometry.NewLine(points, nil)).JSON()
}

func destination(p geometry.Point, meters, bearing float64) geometry.Point {
	lat, lon := geo.DestinationPoint(p.Y, p.X, meters, bearing)
	return geometry.Point{X: lon, Y: lat}
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// selectWorkloads picks workloads from a comma separated list. Names
// prefixed with '-' are removed from the full set instead.
func selectWorkloads(list string) ([]workload, error) {
	byName := make(map[string]workload)
	for _, w := range workloads {
		byName[w.name] = w
	}
	var names []string
	var include, exclude bool
	for _, name := range strings.Split(list, ",") {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if strings.HasPrefix(name, "-") {
			exclude = true
			name = name[1:]
		} else {
			include = true
		}
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("unknown test '%s'", name)
		}
		names = append(names, name)
	}
	if include && exclude {
		return nil, errors.New("test list cannot mix add and subtract")
	}
	if !exclude {
		out := make([]workload, len(names))
		for i, name := range names {
			out[i] = byName[name]
		}
		return out, nil
	}
	skip := make(map[string]bool)
	for _, name := range names {
		skip[name] = true
	}
	var out []workload
	for _, w := range workloads {
		if !skip[w.name] {
			out = append(out, w)
		}
	}
	return out, nil
}

// prepare authenticates a benchmark connection and sets its output type.
func prepare(auth string, jsonOut bool) func(conn net.Conn) bool {
	return func(conn net.Conn) bool {
		rd := resp.NewReader(conn)
		wr := resp.NewWriter(conn)
		do := func(command string, args ...interface{}) resp.Value {
			if err := wr.WriteMultiBulk(command, args...); err != nil {
				log.Fatal(err)
			}
			v, _, err := rd.ReadValue()
			if err != nil {
				log.Fatal(err)
			}
			return v
		}
		if auth != "" {
			if v := do("AUTH", auth); v.Error() != nil {
				log.Fatalf("auth: %v", v.Error())
			}
		}
		if v := do("PING"); v.Error() != nil {
			log.Fatal(v.Error())
		}
		if jsonOut {
			do("OUTPUT", "json")
		}
		return true
	}
}

func main() {
	opts := *redbench.DefaultOptions
	var (
		host, auth, tests string
		port, points      int
		jsonOut           bool
	)
	fs := flag.NewFlagSet("lineslice-benchmark", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "lineslice-benchmark %s\n\n", core.Version)
		fmt.Fprintf(fs.Output(), "Usage: lineslice-benchmark [-h host] [-p port] [-c clients] [-n requests]\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&host, "h", "127.0.0.1", "server hostname")
	fs.IntVar(&port, "p", 9861, "server port")
	fs.StringVar(&auth, "a", "", "password for AUTH")
	fs.IntVar(&opts.Clients, "c", 50, "number of parallel connections")
	fs.IntVar(&opts.Requests, "n", 100000, "total number of requests")
	fs.IntVar(&opts.Pipeline, "P", 1, "pipeline this many requests")
	fs.IntVar(&points, "l", 16, "number of points per line")
	fs.BoolVar(&opts.Quiet, "q", false, "just show query/sec values")
	fs.BoolVar(&opts.CSV, "csv", false, "output in CSV format")
	fs.BoolVar(&jsonOut, "json", false, "request JSON replies")
	fs.StringVar(&tests, "t", "", "comma separated tests to run, or -name to skip")
	fs.Parse(os.Args[1:])

	if opts.Clients < 1 {
		opts.Clients = 1
	}
	if opts.Pipeline < 1 {
		opts.Pipeline = 1
	}
	if points < 2 {
		points = 2
	}
	opts.Stdout, opts.Stderr = os.Stdout, os.Stderr

	selected := workloads
	if tests != "" {
		var err error
		if selected, err = selectWorkloads(tests); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	rand.Seed(time.Now().UnixNano())
	center := geometry.Point{X: rand.Float64()*340 - 170, Y: rand.Float64()*160 - 80}
	a := newArea(center, 1000)
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	prep := prepare(auth, jsonOut)

	for _, w := range selected {
		w := w
		name := w.name
		if w.args != nil {
			name = fmt.Sprintf("%s (%d points)", w.name, points)
		}
		redbench.Bench(name, addr, &opts, prep, func(buf []byte) []byte {
			if w.args == nil {
				return redbench.AppendCommand(buf, w.name)
			}
			args := []string{"SEGMENT", line(center, 2000, points)}
			return redbench.AppendCommand(buf, append(args, w.args(a)...)...)
		})
	}
}
