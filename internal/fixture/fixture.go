// Package fixture runs segmentation over a directory of input and expected
// output files.
//
// A fixture directory has two subdirectories. The in directory holds JSON
// arrays of the form [line, segmenter] and the out directory holds the
// expected FeatureCollection for the file with the same name.
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/match"
	"github.com/tidwall/pretty"
	"github.com/ygmpkk/lineslice/internal/log"
	"github.com/ygmpkk/lineslice/internal/segment"
)

var (
	// ErrMismatch is returned by Check when the output differs from the
	// expected output.
	ErrMismatch = errors.New("output mismatch")
	// ErrNoExpected is returned by Check when there is no expected output.
	ErrNoExpected = errors.New("no expected output")
)

// Fixture is a single input file and its expected output.
type Fixture struct {
	Name     string
	InPath   string
	OutPath  string
	Input    []byte
	Expected []byte // nil when the out file does not exist
}

// Load reads every fixture in dir whose name matches pattern. An empty
// pattern matches all. Fixtures are returned in name order.
func Load(dir, pattern string) ([]Fixture, error) {
	if pattern == "" {
		pattern = "*"
	}
	entries, err := os.ReadDir(filepath.Join(dir, "in"))
	if err != nil {
		return nil, err
	}
	var fixtures []Fixture
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		if !match.Match(name, pattern) {
			continue
		}
		f := Fixture{
			Name:    name,
			InPath:  filepath.Join(dir, "in", entry.Name()),
			OutPath: filepath.Join(dir, "out", entry.Name()),
		}
		f.Input, err = os.ReadFile(f.InPath)
		if err != nil {
			return nil, err
		}
		f.Expected, err = os.ReadFile(f.OutPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			f.Expected = nil
		}
		fixtures = append(fixtures, f)
	}
	sort.Slice(fixtures, func(i, j int) bool {
		return fixtures[i].Name < fixtures[j].Name
	})
	log.Debugf("fixture: loaded %d from %s", len(fixtures), dir)
	return fixtures, nil
}

// Run segments the fixture input and returns the output JSON.
func (f Fixture) Run(opts *segment.Options) ([]byte, error) {
	line, segs, err := segment.ParsePair(string(f.Input))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	fc := segment.Segment(line, segs, opts)
	if len(fc.Features) > 1 && fc.Features[0].Properties != line.Properties {
		return nil, fmt.Errorf("%s: properties were not carried", f.Name)
	}
	return fc.AppendJSON(nil), nil
}

// Check runs the fixture and compares the output with the expected output.
func (f Fixture) Check(opts *segment.Options) error {
	if f.Expected == nil {
		return fmt.Errorf("%s: %w", f.Name, ErrNoExpected)
	}
	out, err := f.Run(opts)
	if err != nil {
		return err
	}
	if !bytes.Equal(pretty.Ugly(out), pretty.Ugly(f.Expected)) {
		return fmt.Errorf("%s: %w", f.Name, ErrMismatch)
	}
	return nil
}

// Regen runs the fixture and writes the output to its out file.
func (f *Fixture) Regen(opts *segment.Options) error {
	out, err := f.Run(opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.OutPath), 0755); err != nil {
		return err
	}
	out = append(out, '\n')
	if err := os.WriteFile(f.OutPath, out, 0644); err != nil {
		return err
	}
	f.Expected = out
	log.Infof("fixture: wrote %s", f.OutPath)
	return nil
}
