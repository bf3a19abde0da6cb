package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"metronome/src/hardware/am335x"
	"metronome/src/lib/lcg"
	"metronome/src/lib/trust"
)

func TestCRLFWriter(t *testing.T) {
	out := &bytes.Buffer{}
	w := &crlfWriter{w: out}
	n, err := w.Write([]byte("Tick\n42\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 8 {
		t.Errorf("expected to report 8 bytes written, got %d", n)
	}
	if out.String() != "Tick\r\n42\r\n" {
		t.Errorf("expected CRLF line endings but got %q", out.String())
	}
}

func TestPumpStopsAtCtrlC(t *testing.T) {
	c := &console{in: strings.NewReader("ab\x03cd")}
	rx := &bytes.Buffer{}
	quit := 0
	c.pump(context.Background(), rx, func() { quit++ }, nil)
	if rx.String() != "ab" {
		t.Errorf("expected only the bytes before ctrl-c, got %q", rx.String())
	}
	if quit != 1 {
		t.Errorf("expected quit once, got %d", quit)
	}
}

func TestPumpEOFWithoutDrainKeepsRunning(t *testing.T) {
	c := &console{in: strings.NewReader("hello\n")}
	rx := &bytes.Buffer{}
	quit := 0
	c.pump(context.Background(), rx, func() { quit++ }, nil)
	if rx.String() != "hello\n" {
		t.Errorf("expected the whole input, got %q", rx.String())
	}
	if quit != 0 {
		t.Errorf("end of input should not quit the number loop, quit called %d times", quit)
	}
}

func TestPumpEOFWaitsForDrain(t *testing.T) {
	c := &console{in: strings.NewReader("hello\n")}
	rx := &bytes.Buffer{}
	quit := 0
	polls := 0
	c.pump(context.Background(), rx, func() { quit++ }, func() bool {
		polls++
		return polls > 3
	})
	if polls != 4 {
		t.Errorf("expected pump to wait until drained, polled %d times", polls)
	}
	if quit != 1 {
		t.Errorf("expected quit once after draining, got %d", quit)
	}
}

func TestPumpEOFDrainCancelled(t *testing.T) {
	c := &console{in: strings.NewReader("")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		//never drains, only ctx can end the wait
		c.pump(ctx, &bytes.Buffer{}, func() {}, func() bool { return false })
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("pump kept waiting after ctx was done")
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

func TestRunEchoesPipedInput(t *testing.T) {
	out := &lockedBuffer{}
	c := &console{in: strings.NewReader("hello\nworld\n"), out: out}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	code := run(ctx, c, options{
		mode:    "echo",
		seed:    lcg.DefaultSeed,
		delay:   1,
		period:  time.Minute, //no Tick lines during the test
		clockHz: am335x.TimerClockHz,
		speed:   1,
	})
	if ctx.Err() != nil {
		t.Fatalf("run did not stop at end of input, output so far %q", out.String())
	}
	if code != 0 {
		t.Errorf("expected exit code 0 but got %d", code)
	}
	got := out.String()
	boot := "Starting...\nTimer initialized\nEnabling interrupts...\nIRQs enabled\n"
	if !strings.HasPrefix(got, boot) {
		t.Errorf("expected the boot transcript first, got %q", got)
	}
	want := boot + "> hello\nhello\n> world\nworld\n> "
	if got != want {
		t.Errorf("expected %q but got %q", want, got)
	}
	//the board is off, nothing else may arrive
	time.Sleep(20 * time.Millisecond)
	if out.String() != got {
		t.Errorf("output after run returned: %q", strings.TrimPrefix(out.String(), got))
	}
}

func TestRunRandomStopsOnCtrlC(t *testing.T) {
	out := &lockedBuffer{}
	c := &console{in: &slowReader{data: []byte{ctrlC}, wait: 50 * time.Millisecond}, out: out}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	run(ctx, c, options{
		mode:    "random",
		seed:    lcg.DefaultSeed,
		delay:   1,
		period:  time.Minute,
		clockHz: am335x.TimerClockHz,
		speed:   1,
	})
	if ctx.Err() != nil {
		t.Fatalf("run did not stop on ctrl-c")
	}
	got := out.String()
	if !strings.HasPrefix(got, "Starting...\n") {
		t.Errorf("expected the boot transcript first, got %q", got)
	}
	if !strings.Contains(got, "IRQs enabled\n") {
		t.Errorf("expected the whole boot transcript, got %q", got)
	}
}

func TestRunWarnsOnClampedPeriod(t *testing.T) {
	logged := &lockedBuffer{}
	prevOut := trust.SetOutput(logged)
	prevLevel := trust.SetLevel(trust.ErrorMask | trust.WarnMask)
	defer func() {
		trust.SetOutput(prevOut)
		trust.SetLevel(prevLevel)
	}()

	c := &console{in: strings.NewReader("\x03"), out: &lockedBuffer{}}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	run(ctx, c, options{
		mode:    "random",
		seed:    lcg.DefaultSeed,
		delay:   1,
		period:  time.Hour,
		clockHz: am335x.TimerClockHz,
		speed:   1,
	})
	if !strings.Contains(logged.String(), "longer than the timer can count") {
		t.Errorf("expected a warning about the clamped period, got %q", logged.String())
	}
}

func TestMaxPeriod(t *testing.T) {
	if p := maxPeriod(1 << 32); p != time.Second {
		t.Errorf("expected one second at 2^32 Hz but got %v", p)
	}
	if p := maxPeriod(am335x.TimerClockHz); p < 178*time.Second || p > 179*time.Second {
		t.Errorf("expected about 179s at 24MHz but got %v", p)
	}
}

// slowReader hands out data after wait, then reports end of input.
type slowReader struct {
	data []byte
	wait time.Duration
}

func (s *slowReader) Read(p []byte) (int, error) {
	if len(s.data) == 0 {
		return 0, io.EOF
	}
	time.Sleep(s.wait)
	n := copy(p, s.data)
	s.data = s.data[n:]
	return n, nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device gone") }

func TestPumpReadError(t *testing.T) {
	c := &console{in: failingReader{}}
	quit := 0
	c.pump(context.Background(), &bytes.Buffer{}, func() { quit++ }, nil)
	if quit != 1 {
		t.Errorf("expected a read error to quit, got %d", quit)
	}
}

func TestPipeConsoleClose(t *testing.T) {
	c := &console{}
	if err := c.Close(); err != nil {
		t.Errorf("pipe console close: %v", err)
	}
}
