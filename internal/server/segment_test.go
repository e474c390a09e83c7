package server

import (
	"testing"

	"github.com/tidwall/assert"
	"github.com/ygmpkk/lineslice/core"
)

func TestSegmentInfoDevOnly(t *testing.T) {
	dev := core.DevMode
	core.DevMode = false
	defer func() { core.DevMode = dev }()

	s := &Server{}
	msg := &Message{Args: []string{"SEGMENTINFO", "OBJECT", testSquare}}
	_, err := s.command(msg, nil)
	assert.Assert(err != nil && err.Error() == "unknown command 'SEGMENTINFO'")
}

func TestParseMeters(t *testing.T) {
	for _, tt := range []struct {
		in string
		ok bool
	}{
		{"1", true}, {"0.5", true}, {"1e3", true},
		{"0", false}, {"-1", false}, {"NaN", false}, {"+Inf", false}, {"x", false},
	} {
		m, err := parseMeters(tt.in)
		assert.Assert((err == nil) == tt.ok)
		assert.Assert(tt.ok == (m > 0))
	}
}
