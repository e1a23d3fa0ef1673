// Package log is a leveled logger for the mercview command.
//
// The level of a message is the first [tag] in the line:
//
//	log.Printf("[warn] latitude %v clamped", lat)
//
// Lines without a tag are always written.
package log

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
)

type Logger interface {
	Println(v ...interface{})
	Printf(format string, v ...interface{})
}

var DefaultLogger *log.Logger
var defaultFilter *logFilter

type Level string

const (
	LDebug = Level("debug")
	LStep  = Level("step")
	LInfo  = Level("info")
	LWarn  = Level("warn")
	LError = Level("error")
	LFatal = Level("fatal")
)

var levels = []Level{LDebug, LStep, LInfo, LWarn, LError, LFatal}

// dumpConfig prints matrices and vectors without pointer addresses.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func init() {
	defaultFilter = newLogFilter(os.Stderr, LInfo)
	DefaultLogger = log.New(defaultFilter, "", 0)
}

type logFilter struct {
	mu        sync.Mutex
	start     time.Time
	writer    io.Writer
	badLevels map[Level]struct{}
	minLevel  Level
}

func newLogFilter(w io.Writer, minLevel Level) *logFilter {
	f := &logFilter{
		start:    time.Now(),
		writer:   w,
		minLevel: minLevel,
	}
	f.init()
	return f
}

func (f *logFilter) SetMinLevel(lvl Level) {
	f.mu.Lock()
	f.minLevel = lvl
	f.init()
	f.mu.Unlock()
}

func (f *logFilter) SetOutput(w io.Writer) {
	f.mu.Lock()
	f.writer = w
	f.mu.Unlock()
}

func (f *logFilter) init() {
	badLevels := make(map[Level]struct{})
	for _, level := range levels {
		if level == f.minLevel {
			break
		}
		badLevels[level] = struct{}{}
	}
	f.badLevels = badLevels
}

// level returns the level tag of the line, or an empty Level.
func level(line []byte) Level {
	x := bytes.IndexByte(line, '[')
	if x < 0 {
		return ""
	}
	y := bytes.IndexByte(line[x:], ']')
	if y < 0 {
		return ""
	}
	return Level(line[x+1 : x+y])
}

func (f *logFilter) Write(p []byte) (n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.badLevels[level(p)]; ok {
		// report the full write, log.Logger treats short writes as errors
		return len(p), nil
	}

	// log.Logger calls Write once for each message
	b := bytes.Buffer{}
	now := time.Now()

	d := now.Sub(f.start)
	fmt.Fprintf(&b, "[%s] %d:%02d:%02d ",
		now.Format(time.RFC3339),
		int(d.Hours()),
		int(math.Mod(d.Minutes(), 60)),
		int(math.Mod(d.Seconds(), 60)),
	)
	b.Write(p)

	if _, err := f.writer.Write(b.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}

func SetMinLevel(lvl Level) {
	defaultFilter.SetMinLevel(lvl)
}

// SetOutput changes the destination of the default logger.
func SetOutput(w io.Writer) {
	defaultFilter.SetOutput(w)
}

func Println(v ...interface{}) {
	DefaultLogger.Println(v...)
}

func Printf(format string, v ...interface{}) {
	DefaultLogger.Printf(format, v...)
}

func Fatal(v ...interface{}) {
	DefaultLogger.Fatal(append([]interface{}{"[fatal]"}, v...)...)
}

func Fatalf(format string, v ...interface{}) {
	DefaultLogger.Fatalf("[fatal] "+format, v...)
}

// Dump writes a debug message with a deep print of all values.
func Dump(label string, v ...interface{}) {
	if _, ok := defaultFilter.badLevelsSnapshot()[LDebug]; ok {
		return
	}
	DefaultLogger.Printf("[debug] %s:\n%s", label, dumpConfig.Sdump(v...))
}

func (f *logFilter) badLevelsSnapshot() map[Level]struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.badLevels
}

func Step(name string) func() {
	start := time.Now()
	Println("[step] Starting:", name)
	return func() {
		Printf("[step] Finished: %s in %s", name, time.Since(start))
	}
}
