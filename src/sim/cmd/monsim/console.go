package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"metronome/src/lib/trust"

	tty "github.com/mattn/go-tty"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

const ctrlC = 3

// console is where the simulated UART0 is wired to: the user's terminal in
// raw mode, or plain stdin/stdout when either is redirected.
type console struct {
	io      *tty.TTY //nil in pipe mode
	restore func() error
	in      io.Reader
	out     io.Writer
}

func openConsole() (*console, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		trust.Infof("not a terminal, using pipe mode")
		return &console{in: os.Stdin, out: os.Stdout}, nil
	}
	t, err := tty.Open()
	if err != nil {
		return nil, errors.Wrap(err, "unable to open terminal")
	}
	restore, err := t.Raw()
	if err != nil {
		t.Close()
		return nil, errors.Wrap(err, "unable to put terminal in raw mode")
	}
	return &console{
		io:      t,
		restore: restore,
		in:      t.Input(),
		out:     &crlfWriter{w: t.Output()},
	}, nil
}

// Write is the far end of the UART's transmit line.
func (c *console) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func (c *console) Close() error {
	if c.io == nil {
		return nil
	}
	if err := c.restore(); err != nil {
		c.io.Close()
		return errors.Wrap(err, "failed to restore terminal")
	}
	return errors.Wrap(c.io.Close(), "closing terminal")
}

// pump copies keystrokes into the UART receive FIFO until ctx ends. A ctrl-c
// byte (raw mode delivers it as data) calls quit. At end of input, if drained
// is not nil, pump waits until drained reports the monitor has consumed
// everything and then calls quit. With a nil drained, end of input just stops
// the pump, since the number loop never reads.
func (c *console) pump(ctx context.Context, rx io.Writer, quit func(), drained func() bool) {
	buf := make([]byte, 64)
	for ctx.Err() == nil {
		n, err := c.in.Read(buf)
		if n > 0 {
			data := buf[:n]
			if i := bytes.IndexByte(data, ctrlC); i >= 0 {
				rx.Write(data[:i])
				quit()
				return
			}
			rx.Write(data)
		}
		if err == nil {
			continue
		}
		if err != io.EOF {
			trust.Errorf("console read: %v", err)
			quit()
			return
		}
		if drained != nil {
			waitFor(ctx, drained)
			quit()
		}
		return
	}
}

func waitFor(ctx context.Context, done func() bool) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for !done() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// crlfWriter turns \n into \r\n, which a raw terminal needs.
type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	out := bytes.ReplaceAll(p, []byte{'\n'}, []byte{'\r', '\n'})
	if _, err := c.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
