package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/pretty"
	"github.com/ygmpkk/lineslice/core"
	"github.com/ygmpkk/lineslice/internal/fixture"
	"github.com/ygmpkk/lineslice/internal/log"
	"github.com/ygmpkk/lineslice/internal/segment"
)

var (
	linePath     string
	segPath      string
	fixturesDir  string
	fixtureMatch string
	regen        bool
	ordered      bool
	noDegenerate bool
	indexEdges   int
	prettyOut    bool
	outPath      string
	verbose      bool
	quiet        bool
)

func main() {
	gitsha := " (" + core.GitSHA + ")"
	if gitsha == " (0000000)" {
		gitsha = ""
	}
	versionLine := `lineslice version: ` + core.Version + gitsha

	output := os.Stderr
	flag.Usage = func() {
		fmt.Fprintf(output,
			versionLine+`

Usage: lineslice [options] file
       lineslice [options] --line file --segmenter file
       lineslice [options] --fixtures dir [--match pattern] [--regen]

The file holds a JSON array [line, segmenter]. Use - for stdin.

Options:
  --ordered           : apply cuts along each edge in distance order
  --no-degenerate     : drop pieces with fewer than two points
  --index-edges num   : min ring edges before indexing (default: 64)
  --pretty            : pretty print the output
  -o path             : write the output to path (default: stdout)
  -v                  : enable verbose logging
  -q                  : no logging

`,
		)
	}
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--help", "-help":
			output = os.Stdout
			flag.Usage()
			return
		case "--version", "-version":
			fmt.Fprintf(os.Stdout, "%s\n", versionLine)
			return
		}
	}

	flag.StringVar(&linePath, "line", "", "File with the line.")
	flag.StringVar(&segPath, "segmenter", "", "File with the segmenter.")
	flag.StringVar(&fixturesDir, "fixtures", "", "Fixture directory.")
	flag.StringVar(&fixtureMatch, "match", "", "Fixture name pattern.")
	flag.BoolVar(&regen, "regen", false, "Rewrite fixture outputs.")
	flag.BoolVar(&ordered, "ordered", false, "Apply cuts in distance order.")
	flag.BoolVar(&noDegenerate, "no-degenerate", false, "Drop degenerate pieces.")
	flag.IntVar(&indexEdges, "index-edges", segment.DefaultOptions.IndexEdges,
		"Min ring edges before indexing.")
	flag.BoolVar(&prettyOut, "pretty", false, "Pretty print the output.")
	flag.StringVar(&outPath, "o", "", "Output file.")
	flag.BoolVar(&verbose, "v", false, "Enable verbose logging.")
	flag.BoolVar(&quiet, "q", false, "Quiet logging.")
	flag.Parse()

	log.SetOutput(os.Stderr)
	switch {
	case quiet:
		log.SetOutput(io.Discard)
		log.Level = 0
	case verbose:
		log.Level = 2
	default:
		log.Level = 1
	}

	opts := &segment.Options{
		IndexEdges:     indexEdges,
		Ordered:        ordered,
		DropDegenerate: noDegenerate,
	}

	if fixturesDir != "" {
		if !runFixtures(fixturesDir, fixtureMatch, opts) {
			os.Exit(1)
		}
		return
	}

	line, segs, err := readInput(flag.Args())
	if err != nil {
		log.Errorf("%v", err)
		if errors.Is(err, errUsage) {
			flag.Usage()
		}
		os.Exit(1)
	}
	out := segment.Segment(line, segs, opts).AppendJSON(nil)
	if prettyOut {
		out = pretty.Pretty(out)
	} else {
		out = append(out, '\n')
	}
	if outPath == "" {
		os.Stdout.Write(out)
		return
	}
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		log.Fatal(err)
	}
}

var errUsage = errors.New("expected a file, or --line and --segmenter")

func readInput(args []string) (segment.Feature, []segment.Feature, error) {
	switch {
	case linePath != "" || segPath != "":
		if linePath == "" || segPath == "" || len(args) > 0 {
			return segment.Feature{}, nil, errUsage
		}
		ldata, err := readFile(linePath)
		if err != nil {
			return segment.Feature{}, nil, err
		}
		sdata, err := readFile(segPath)
		if err != nil {
			return segment.Feature{}, nil, err
		}
		line, err := segment.ParseLine(string(ldata))
		if err != nil {
			return segment.Feature{}, nil, fmt.Errorf("%s: %w", linePath, err)
		}
		segs, err := segment.ParseSegmenter(string(sdata))
		if err != nil {
			return segment.Feature{}, nil, fmt.Errorf("%s: %w", segPath, err)
		}
		return line, segs, nil
	case len(args) == 1:
		data, err := readFile(args[0])
		if err != nil {
			return segment.Feature{}, nil, err
		}
		line, segs, err := segment.ParsePair(string(data))
		if err != nil {
			return segment.Feature{}, nil, fmt.Errorf("%s: %w", args[0], err)
		}
		return line, segs, nil
	}
	return segment.Feature{}, nil, errUsage
}

func readFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// runFixtures checks or regenerates every matching fixture and reports
// whether all of them passed.
func runFixtures(dir, pattern string, opts *segment.Options) bool {
	fixtures, err := fixture.Load(dir, pattern)
	if err != nil {
		log.Errorf("%v", err)
		return false
	}
	if len(fixtures) == 0 {
		log.Warnf("no fixtures in %s", dir)
		return true
	}
	var failed int
	for i := range fixtures {
		f := &fixtures[i]
		if regen {
			err = f.Regen(opts)
		} else {
			err = f.Check(opts)
		}
		if err != nil {
			log.Errorf("%v", err)
			failed++
			continue
		}
		log.Debugf("ok %s", f.Name)
	}
	if failed > 0 {
		log.Errorf("%d of %d fixtures failed", failed, len(fixtures))
		return false
	}
	log.Infof("%d fixtures passed", len(fixtures))
	return true
}
