package fixture

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/assert"
	"github.com/ygmpkk/lineslice/internal/segment"
)

const testdata = "../segment/testdata"

func TestFixtures(t *testing.T) {
	fixtures, err := Load(testdata, "*")
	if err != nil {
		t.Fatal(err)
	}
	if len(fixtures) == 0 {
		t.Fatal("no fixtures")
	}
	regen := os.Getenv("REGEN") != ""
	for _, f := range fixtures {
		f := f
		t.Run(f.Name, func(t *testing.T) {
			if regen {
				if err := f.Regen(nil); err != nil {
					t.Fatal(err)
				}
			}
			if err := f.Check(nil); err != nil {
				out, _ := f.Run(nil)
				t.Fatalf("%v\n%s", err, out)
			}
		})
	}
}

func TestLoadMatch(t *testing.T) {
	fixtures, err := Load(testdata, "s*")
	if err != nil {
		t.Fatal(err)
	}
	assert.Assert(len(fixtures) == 3)
	assert.Assert(fixtures[0].Name == "shared-start")
	assert.Assert(fixtures[1].Name == "shared-vertex")
	assert.Assert(fixtures[2].Name == "square")

	_, err = Load(filepath.Join(t.TempDir(), "missing"), "*")
	assert.Assert(err != nil)
}

func TestOrderedFixture(t *testing.T) {
	fixtures, err := Load(testdata, "ring-order")
	if err != nil {
		t.Fatal(err)
	}
	assert.Assert(len(fixtures) == 1)
	err = fixtures[0].Check(&segment.Options{Ordered: true})
	assert.Assert(errors.Is(err, ErrMismatch))

	sq, err := Load(testdata, "square")
	if err != nil {
		t.Fatal(err)
	}
	ordered, err := fixtures[0].Run(&segment.Options{Ordered: true})
	assert.Assert(err == nil)
	plain, err := sq[0].Run(nil)
	assert.Assert(err == nil)
	// same pieces, different properties
	lineOrdered, _ := segment.ParseFeatureCollection(string(ordered))
	lineSquare, _ := segment.ParseFeatureCollection(string(plain))
	assert.Assert(len(lineOrdered.Features) == len(lineSquare.Features))
	for i := range lineOrdered.Features {
		a := lineOrdered.Features[i].Geometry.Line
		b := lineSquare.Features[i].Geometry.Line
		assert.Assert(len(a) == len(b) && a[0] == b[0] && a[1] == b[1])
	}
}

func TestRegen(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	if err := os.MkdirAll(in, 0755); err != nil {
		t.Fatal(err)
	}
	err := os.WriteFile(filepath.Join(in, "cross.json"), []byte(`[
		{"type":"LineString","coordinates":[[0,0],[10,0]]},
		{"type":"LineString","coordinates":[[5,-5],[5,5]]}]`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	fixtures, err := Load(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	assert.Assert(len(fixtures) == 1)
	f := fixtures[0]
	assert.Assert(errors.Is(f.Check(nil), ErrNoExpected))
	if err := f.Regen(nil); err != nil {
		t.Fatal(err)
	}
	assert.Assert(f.Check(nil) == nil)
	data, err := os.ReadFile(filepath.Join(dir, "out", "cross.json"))
	if err != nil {
		t.Fatal(err)
	}
	exp := `{"type":"FeatureCollection","features":[` +
		`{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[0,0],[5,0]]}},` +
		`{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[5,0],[10,0]]}}]}` + "\n"
	assert.Assert(string(data) == exp)

	// a changed expectation is reported
	if err := os.WriteFile(f.OutPath, []byte(`{"type":"FeatureCollection","features":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	fixtures, _ = Load(dir, "cross")
	assert.Assert(errors.Is(fixtures[0].Check(nil), ErrMismatch))
}

func TestRunBadInput(t *testing.T) {
	f := Fixture{Name: "bad", Input: []byte(`{"type":"LineString"}`)}
	_, err := f.Run(nil)
	assert.Assert(errors.Is(err, segment.ErrInvalidJSON))
}
