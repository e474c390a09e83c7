package server

import (
	"encoding/json"

	"github.com/tidwall/geojson/geometry"
	"github.com/ygmpkk/lineslice/internal/segment"
)

func jsonString(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] < ' ' || s[i] == '\\' || s[i] == '"' || s[i] > 126 {
			d, _ := json.Marshal(s)
			return string(d)
		}
	}
	b := make([]byte, len(s)+2)
	b[0] = '"'
	copy(b[1:], s)
	b[len(b)-1] = '"'
	return string(b)
}

// appendJSONBBox appends the rect as a GeoJSON bbox array.
func appendJSONBBox(dst []byte, rect geometry.Rect) []byte {
	dst = append(dst, '[')
	dst = segment.AppendFloat(dst, rect.Min.X)
	dst = append(dst, ',')
	dst = segment.AppendFloat(dst, rect.Min.Y)
	dst = append(dst, ',')
	dst = segment.AppendFloat(dst, rect.Max.X)
	dst = append(dst, ',')
	dst = segment.AppendFloat(dst, rect.Max.Y)
	dst = append(dst, ']')
	return dst
}
