package trust

import (
	"bytes"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prevOut := SetOutput(buf)
	prevLevel := SetLevel(ErrorMask | WarnMask | InfoMask)
	t.Cleanup(func() {
		SetOutput(prevOut)
		SetLevel(prevLevel)
	})
	return buf
}

func TestMasking(t *testing.T) {
	buf := capture(t)
	Infof("clock at %d Hz", 24)
	Debugf("not shown")
	if buf.String() != " INFO:clock at 24 Hz\n" {
		t.Errorf("unexpected log output %q", buf.String())
	}

	buf.Reset()
	SetLevel(DebugMask)
	Errorf("hidden")
	Debugf("shown\n")
	if buf.String() != "DEBUG:shown\n" {
		t.Errorf("unexpected log output %q", buf.String())
	}
}

func TestSetVerbosity(t *testing.T) {
	capture(t)
	SetVerbosity(0)
	if LevelToString() != "error warn" {
		t.Errorf("verbosity 0 gave %q", LevelToString())
	}
	SetVerbosity(2)
	if LevelToString() != "error warn info debug" {
		t.Errorf("verbosity 2 gave %q", LevelToString())
	}
	SetVerbosity(-1)
	if Level() != Nothing {
		t.Errorf("expected nothing, got %x", Level())
	}
}

func TestFatalfNotMaskable(t *testing.T) {
	buf := capture(t)
	SetLevel(Nothing)
	code := -1
	prevExit := exit
	exit = func(c int) { code = c }
	defer func() { exit = prevExit }()

	Fatalf(3, "no console: %s", "gone")
	if code != 3 {
		t.Errorf("expected exit code 3 but got %d", code)
	}
	if buf.String() != "FATAL:no console: gone\n" {
		t.Errorf("unexpected fatal output %q", buf.String())
	}
}
