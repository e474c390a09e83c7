package main

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/resp"
)

// formatter renders server replies for the terminal.
type formatter struct {
	json   bool // replies are JSON documents
	raw    bool // print replies as received
	color  bool
	pieces bool // summarize SEGMENT replies
}

// format returns the text to print for a reply and whether the reply was an
// error.
func (f *formatter) format(command string, v resp.Value) (string, bool) {
	if v.Type() == resp.Error {
		return "(error) " + v.String(), true
	}
	if f.json {
		return f.formatJSON(command, v.String())
	}
	if f.raw {
		return rawValue(v), false
	}
	if command == "segment" && v.Type() == resp.BulkString && !v.IsNull() {
		return f.formatSegments(v.String()), false
	}
	return termValue(v, 0), false
}

func (f *formatter) formatJSON(command, js string) (string, bool) {
	res := gjson.Parse(js)
	if !res.Get("ok").Bool() {
		if msg := res.Get("err"); msg.Exists() {
			return "(error) " + msg.String(), true
		}
	}
	if f.raw {
		return js, false
	}
	out := f.prettyJSON(js)
	if command == "segment" && f.pieces {
		out += "\n" + summary(res.Get("segments"))
	}
	return out, false
}

func (f *formatter) formatSegments(fc string) string {
	res := gjson.Parse(fc)
	if !f.pieces {
		return f.prettyJSON(fc)
	}
	var b strings.Builder
	for i, feature := range res.Get("features").Array() {
		coords := feature.Get("geometry.coordinates").Array()
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(") ")
		switch len(coords) {
		case 0:
			b.WriteString("(empty)")
		case 1:
			b.WriteString(coords[0].Raw)
		default:
			b.WriteString(coords[0].Raw)
			b.WriteString(" -> ")
			b.WriteString(coords[len(coords)-1].Raw)
		}
		b.WriteString(" (")
		b.WriteString(plural(len(coords), "point"))
		b.WriteString(")\n")
	}
	b.WriteString(summary(res))
	return b.String()
}

func (f *formatter) prettyJSON(js string) string {
	out := pretty.Pretty([]byte(js))
	if f.color {
		out = pretty.Color(out, nil)
	}
	return strings.TrimSpace(string(out))
}

// summary describes a FeatureCollection of pieces.
func summary(fc gjson.Result) string {
	features := fc.Get("features").Array()
	var points int
	for _, feature := range features {
		points += len(feature.Get("geometry.coordinates").Array())
	}
	return "(" + plural(len(features), "piece") + ", " +
		plural(points, "point") + ")"
}

func plural(n int, word string) string {
	s := strconv.Itoa(n) + " " + word
	if n != 1 {
		s += "s"
	}
	return s
}

func rawValue(v resp.Value) string {
	if v.Type() != resp.Array {
		return v.String()
	}
	var lines []string
	for _, item := range v.Array() {
		lines = append(lines, rawValue(item))
	}
	return strings.Join(lines, "\n")
}

// termValue renders a RESP value the way redis-cli does.
func termValue(v resp.Value, indent int) string {
	switch v.Type() {
	case resp.Integer:
		return "(integer) " + v.String()
	case resp.BulkString:
		if v.IsNull() {
			return "(nil)"
		}
		return strconv.Quote(v.String())
	case resp.Array:
		items := v.Array()
		if len(items) == 0 {
			return "(empty array)"
		}
		width := len(strconv.Itoa(len(items)))
		var b strings.Builder
		for i, item := range items {
			if i > 0 {
				b.WriteString("\n")
				b.WriteString(strings.Repeat(" ", indent))
			}
			num := strconv.Itoa(i + 1)
			b.WriteString(strings.Repeat(" ", width-len(num)))
			b.WriteString(num)
			b.WriteString(") ")
			b.WriteString(termValue(item, indent+width+2))
		}
		return b.String()
	}
	return v.String()
}
