package main

import (
	"math"
	"strings"
	"testing"

	"github.com/tidwall/assert"
	"github.com/tidwall/geojson"
	"github.com/tidwall/geojson/geometry"
	"github.com/tidwall/gjson"
)

func names(ws []workload) string {
	var out []string
	for _, w := range ws {
		out = append(out, w.name)
	}
	return strings.Join(out, ",")
}

func TestSelectWorkloads(t *testing.T) {
	ws, err := selectWorkloads("segment-hash, ping")
	assert.Assert(err == nil)
	assert.Assert(names(ws) == "SEGMENT-HASH,PING")

	ws, err = selectWorkloads("-PING,-SEGMENT-LARGE")
	assert.Assert(err == nil)
	assert.Assert(names(ws) == "SEGMENT,SEGMENT-BOUNDS,SEGMENT-HASH,SEGMENT-CIRCLE,SEGMENT-BUFFER")

	_, err = selectWorkloads("PING,-SEGMENT")
	assert.Assert(err != nil)
	_, err = selectWorkloads("SEGMENT-NOPE")
	assert.Assert(err != nil && err.Error() == "unknown test 'SEGMENT-NOPE'")
}

func TestArea(t *testing.T) {
	center := geometry.Point{X: -112.1, Y: 33.4}
	a := newArea(center, 1000)
	assert.Assert(a.rect.ContainsPoint(center))
	assert.Assert(len(gjson.Get(a.large, "coordinates.0").Array()) == 1025)

	for _, w := range workloads {
		if w.args == nil {
			continue
		}
		args := w.args(a)
		assert.Assert(len(args) >= 2)
	}

	obj, err := geojson.Parse(line(center, 2000, 16), nil)
	assert.Assert(err == nil)
	ls, ok := obj.(*geojson.LineString)
	assert.Assert(ok && ls.Base().NumPoints() == 16)
	for i := 0; i < 16; i++ {
		p := ls.Base().PointAt(i)
		assert.Assert(math.Abs(p.X-center.X) < 0.1 && math.Abs(p.Y-center.Y) < 0.1)
	}
}
