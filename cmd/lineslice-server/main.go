package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/ygmpkk/lineslice/core"
	"github.com/ygmpkk/lineslice/internal/log"
	"github.com/ygmpkk/lineslice/internal/server"
)

type flags struct {
	host          string
	port          int
	httpPort      int
	dir           string
	pidfile       string
	protectedMode string
	indexEdges    int
	dev           bool
	verbose       bool
	veryVerbose   bool
	quiet         bool
	logJSON       bool
	version       bool
}

func versionLine() string {
	v := "lineslice-server version: " + core.Version
	if core.GitSHA != "" && core.GitSHA != "0000000" {
		v += " (" + core.GitSHA + ")"
	}
	return v
}

func parseFlags(args []string) (*flags, error) {
	var f flags
	fs := flag.NewFlagSet("lineslice-server", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "%s\n\nUsage: lineslice-server [-p port]\n\n",
			versionLine())
		fs.PrintDefaults()
	}
	fs.StringVar(&f.host, "h", "", "listening host")
	fs.IntVar(&f.port, "p", 9861, "listening port")
	fs.IntVar(&f.httpPort, "http-port", 0, "port for /segment and /metrics, 0 disables")
	fs.StringVar(&f.dir, "d", "data", "data directory")
	fs.StringVar(&f.pidfile, "pidfile", "", "file that contains the pid")
	fs.StringVar(&f.protectedMode, "protected-mode", "no", "protected mode, yes or no")
	fs.IntVar(&f.indexEdges, "index-edges", 0, "min ring edges before indexing, 0 uses the default")
	fs.BoolVar(&f.dev, "dev", false, "enable dev commands")
	fs.BoolVar(&f.verbose, "v", false, "enable verbose logging")
	fs.BoolVar(&f.veryVerbose, "vv", false, "enable very verbose logging")
	fs.BoolVar(&f.quiet, "q", false, "no logging, totally silent output")
	fs.BoolVar(&f.logJSON, "log-json", false, "log in JSON format")
	fs.BoolVar(&f.version, "version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.protectedMode = strings.ToLower(f.protectedMode)
	if f.protectedMode != "yes" && f.protectedMode != "no" {
		return nil, errors.New("protected-mode must be 'yes' or 'no'")
	}
	if f.indexEdges < 0 {
		return nil, errors.New("index-edges must not be negative")
	}
	return &f, nil
}

// apply copies the flags into the process wide settings.
func (f *flags) apply() io.Writer {
	core.DevMode = f.dev
	core.ProtectedMode = f.protectedMode
	core.IndexEdges = f.indexEdges
	core.ShowDebugMessages = f.veryVerbose

	var logw io.Writer = os.Stderr
	switch {
	case f.quiet:
		logw = io.Discard
		log.SetLevel(0)
	case f.veryVerbose:
		log.SetLevel(3)
	case f.verbose:
		log.SetLevel(2)
	default:
		log.SetLevel(1)
	}
	log.SetOutput(logw)
	return logw
}

func (f *flags) options() server.Options {
	opts := server.Options{Host: f.host, Port: f.port, Dir: f.dir}
	if f.httpPort != 0 {
		opts.HTTPAddr = net.JoinHostPort(f.host, strconv.Itoa(f.httpPort))
	}
	return opts
}

// exitCode maps the signal that stopped the server to the process status.
func exitCode(sig os.Signal) int {
	switch sig {
	case nil:
		return 0
	case syscall.SIGHUP:
		return 1
	case syscall.SIGINT:
		return 2
	case syscall.SIGQUIT:
		return 3
	case syscall.SIGTERM:
		return 0xf
	}
	return 1
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if f.version {
		fmt.Println(versionLine())
		return
	}
	logw := f.apply()
	if f.logJSON {
		if err := log.Build(""); err != nil {
			log.Fatal(err)
		}
		log.LogJSON = true
	} else {
		fmt.Fprintf(logw, "\n  lineslice %s %d bit (%s/%s)\n  port: %d, pid: %d\n\n",
			core.Version, strconv.IntSize, runtime.GOARCH, runtime.GOOS,
			f.port, os.Getpid())
	}
	os.Exit(run(f))
}

func run(f *flags) int {
	if f.pidfile != "" {
		pid := []byte(strconv.Itoa(os.Getpid()) + "\n")
		if err := os.WriteFile(f.pidfile, pid, 0666); err != nil {
			log.Warnf("pidfile: %v", err)
		} else {
			defer os.Remove(f.pidfile)
		}
	}

	opts := f.options()
	opts.Shutdown = make(chan bool, 1)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM,
		syscall.SIGQUIT)
	caught := make(chan os.Signal, 1)
	go func() {
		sig := <-sigs
		log.Warnf("signal: %v", sig)
		caught <- sig
		opts.Shutdown <- true
	}()

	if err := server.Serve(opts); err != nil {
		log.Error(err)
		return 1
	}
	select {
	case sig := <-caught:
		return exitCode(sig)
	default:
		return 0
	}
}
