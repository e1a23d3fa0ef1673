package log

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestLevel(t *testing.T) {
	for _, tc := range []struct {
		line string
		lvl  Level
	}{
		{"[debug] foo", LDebug},
		{"[warn] foo [info]", LWarn},
		{"no level", ""},
		{"[broken", ""},
	} {
		if l := level([]byte(tc.line)); l != tc.lvl {
			t.Errorf("%q: %q != %q", tc.line, l, tc.lvl)
		}
	}
}

func TestFilter(t *testing.T) {
	buf := bytes.Buffer{}
	f := newLogFilter(&buf, LInfo)
	l := log.New(f, "", 0)

	l.Println("[debug] hidden")
	l.Println("[step] hidden")
	l.Println("[info] shown")
	l.Println("[error] shown too")
	l.Println("untagged")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("filtered line in output:", out)
	}
	if n := strings.Count(out, "\n"); n != 3 {
		t.Errorf("expected 3 lines, got %d: %s", n, out)
	}

	buf.Reset()
	f.SetMinLevel(LDebug)
	l.Println("[debug] now shown")
	if !strings.Contains(buf.String(), "] 0:00:00 [debug] now shown") {
		t.Error(buf.String())
	}
}

func TestDump(t *testing.T) {
	buf := bytes.Buffer{}
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetMinLevel(LInfo)

	SetMinLevel(LInfo)
	Dump("hidden", 1)
	if buf.Len() != 0 {
		t.Error("debug dump written with info level:", buf.String())
	}

	SetMinLevel(LDebug)
	Dump("params", struct{ Zoom float64 }{Zoom: 11})
	out := buf.String()
	if !strings.Contains(out, "[debug] params:") || !strings.Contains(out, "Zoom: (float64) 11") {
		t.Error(out)
	}
}
