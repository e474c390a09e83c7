package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"
)

var mu sync.Mutex
var wr io.Writer
var tty bool
var logger *zap.SugaredLogger

// LogJSON routes every message through the zap logger instead of the plain
// text writer.
var LogJSON = false

// Level is the log level
// 0: silent  - do not log
// 1: normal  - show everything except debug and warn
// 2: verbose - show everything except debug
// 3: very verbose - show everything
var Level = 1

type tag struct {
	name  string
	color string
	level int
}

var (
	tagInfo  = &tag{name: "INFO", color: "\x1b[36m", level: 1}
	tagHTTP  = &tag{name: "HTTP", color: "\x1b[1m\x1b[30m", level: 1}
	tagError = &tag{name: "ERRO", color: "\x1b[1m\x1b[31m", level: 1}
	tagWarn  = &tag{name: "WARN", color: "\x1b[33m", level: 2}
	tagDebug = &tag{name: "DEBU", color: "\x1b[35m", level: 3}
	tagFatal = &tag{name: "FATA", color: "\x1b[31m", level: 1}
)

func init() {
	SetOutput(os.Stderr)
}

// SetOutput sets the output of the logger
func SetOutput(w io.Writer) {
	f, ok := w.(*os.File)
	mu.Lock()
	tty = ok && term.IsTerminal(int(f.Fd()))
	wr = w
	mu.Unlock()
}

// Output returns the output writer
func Output() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return wr
}

// SetLevel sets the log level.
func SetLevel(level int) {
	Level = level
}

// Build a zap logger from the default production config, or from a zap JSON
// config when c is not empty.
func Build(c string) error {
	var zcfg zap.Config
	if c == "" {
		zcfg = zap.NewProductionConfig()
	} else if err := json.Unmarshal([]byte(c), &zcfg); err != nil {
		return err
	}
	// filtering is done with our own levels
	zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	// the caller would always be this file
	zcfg.DisableCaller = true
	core, err := zcfg.Build()
	if err != nil {
		return err
	}
	defer core.Sync()
	Set(core.Sugar())
	return nil
}

// Set a zap logger
func Set(sl *zap.SugaredLogger) {
	mu.Lock()
	logger = sl
	mu.Unlock()
}

// Get a zap logger
func Get() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func (t *tag) zapFunc(sl *zap.SugaredLogger) func(args ...interface{}) {
	switch t {
	case tagError:
		return sl.Error
	case tagFatal:
		return sl.Fatal
	case tagWarn:
		return sl.Warn
	case tagDebug:
		return sl.Debug
	}
	return sl.Info
}

func write(t *tag, formatted bool, format string, args ...interface{}) {
	if Level < t.level {
		return
	}
	var msg string
	if formatted {
		// format is forwarded through a local so vet does not treat write,
		// which is also called with an empty format by the Print-style
		// helpers, as a printf wrapper.
		f := format
		msg = fmt.Sprintf(f, args...)
	} else {
		msg = fmt.Sprint(args...)
	}
	if LogJSON {
		if sl := Get(); sl != nil {
			t.zapFunc(sl)(msg)
			return
		}
	}
	mu.Lock()
	defer mu.Unlock()
	s := []byte(time.Now().Format("2006/01/02 15:04:05"))
	s = append(s, ' ')
	if tty {
		s = append(s, t.color...)
	}
	s = append(s, '[')
	s = append(s, t.name...)
	s = append(s, ']')
	if tty {
		s = append(s, "\x1b[0m"...)
	}
	s = append(s, ' ')
	s = append(s, msg...)
	if s[len(s)-1] != '\n' {
		s = append(s, '\n')
	}
	wr.Write(s)
}

// Infof ...
func Infof(format string, args ...interface{}) { write(tagInfo, true, format, args...) }

// Info ...
func Info(args ...interface{}) { write(tagInfo, false, "", args...) }

// HTTPf ...
func HTTPf(format string, args ...interface{}) { write(tagHTTP, true, format, args...) }

// HTTP ...
func HTTP(args ...interface{}) { write(tagHTTP, false, "", args...) }

// Errorf ...
func Errorf(format string, args ...interface{}) { write(tagError, true, format, args...) }

// Error ...
func Error(args ...interface{}) { write(tagError, false, "", args...) }

// Warnf ...
func Warnf(format string, args ...interface{}) { write(tagWarn, true, format, args...) }

// Warn ...
func Warn(args ...interface{}) { write(tagWarn, false, "", args...) }

// Debugf ...
func Debugf(format string, args ...interface{}) { write(tagDebug, true, format, args...) }

// Debug ...
func Debug(args ...interface{}) { write(tagDebug, false, "", args...) }

// Printf ...
func Printf(format string, args ...interface{}) { Infof(format, args...) }

// Print ...
func Print(args ...interface{}) { Info(args...) }

// Fatalf ...
func Fatalf(format string, args ...interface{}) {
	write(tagFatal, true, format, args...)
	os.Exit(1)
}

// Fatal ...
func Fatal(args ...interface{}) {
	write(tagFatal, false, "", args...)
	os.Exit(1)
}
