package trust

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type MaskLevel int

const (
	Nothing   MaskLevel = 0x0
	ErrorMask MaskLevel = 0x1
	WarnMask  MaskLevel = 0x2
	InfoMask  MaskLevel = 0x4
	DebugMask MaskLevel = 0x8
	fatalMask MaskLevel = 0x80
)

var mu sync.Mutex
var level = fatalMask | ErrorMask | WarnMask | InfoMask
var output io.Writer = os.Stderr
var exit = os.Exit

// SetLevel lets you set the mask directly. You can pass in something like
// ErrorMask | DebugMask to control exactly what gets printed. It returns the
// previous mask. Fatal messages cannot be masked.
func SetLevel(mask MaskLevel) MaskLevel {
	mu.Lock()
	defer mu.Unlock()
	r := level &^ fatalMask
	level = (mask & (ErrorMask | WarnMask | InfoMask | DebugMask)) | fatalMask
	return r
}

// SetVerbosity maps a -v style count onto a mask: 0 is errors and warnings,
// 1 adds info, 2 or more adds debug. Negative turns everything off.
func SetVerbosity(v int) MaskLevel {
	switch {
	case v < 0:
		return SetLevel(Nothing)
	case v == 0:
		return SetLevel(ErrorMask | WarnMask)
	case v == 1:
		return SetLevel(ErrorMask | WarnMask | InfoMask)
	}
	return SetLevel(ErrorMask | WarnMask | InfoMask | DebugMask)
}

func Level() MaskLevel {
	mu.Lock()
	defer mu.Unlock()
	return level &^ fatalMask
}

// SetOutput sends log lines to w and returns the old destination.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := output
	output = w
	return prev
}

func LevelToString() string {
	l := Level()
	result := ""
	if l&ErrorMask > 0 {
		result += "error "
	}
	if l&WarnMask > 0 {
		result += "warn "
	}
	if l&InfoMask > 0 {
		result += "info "
	}
	if l&DebugMask > 0 {
		result += "debug "
	}
	if len(result) > 0 {
		result = result[:len(result)-1]
	}
	return result
}

func logf(l MaskLevel, format string, params ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if level&l == 0 {
		return
	}
	prefix := ""
	switch {
	case l&fatalMask > 0:
		prefix = "FATAL:"
	case l&ErrorMask > 0:
		prefix = "ERROR:"
	case l&WarnMask > 0:
		prefix = " WARN:"
	case l&InfoMask > 0:
		prefix = " INFO:"
	case l&DebugMask > 0:
		prefix = "DEBUG:"
	}
	if len(format) == 0 {
		format = "\n"
	} else if format[len(format)-1] != '\n' {
		format += "\n"
	}
	fmt.Fprintf(output, prefix+format, params...)
}

//Fatalf prints the given log message (format + params) and then exits with
//the exitCode provided.  Fatalf is not maskable.
func Fatalf(exitCode int, format string, params ...interface{}) {
	logf(fatalMask, format, params...)
	exit(exitCode)
}

//Errorf prints the given log message (format + params) using the ErrorMask level.
func Errorf(format string, params ...interface{}) {
	logf(ErrorMask, format, params...)
}

//Warnf prints the given log message (format + params) using the WarnMask level.
func Warnf(format string, params ...interface{}) {
	logf(WarnMask, format, params...)
}

//Infof prints the given log message (format + params) using the InfoMask level.
func Infof(format string, params ...interface{}) {
	logf(InfoMask, format, params...)
}

//Debugf prints the given log message (format + params) using the DebugMask level.
func Debugf(format string, params ...interface{}) {
	logf(DebugMask, format, params...)
}
