package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"metronome/src/hardware/am335x"
	"metronome/src/lib/lcg"
	"metronome/src/lib/serial"
	"metronome/src/lib/tick"
	"metronome/src/lib/trap"
	"metronome/src/lib/trust"
	"metronome/src/monitor"
	"metronome/src/sim"
)

var helpFlag = flag.Bool("h", false, "get usage info")
var modeFlag = flag.String("mode", "random", "foreground task: random (numbers) or echo (line echo)")
var seedFlag = flag.Uint("seed", lcg.DefaultSeed, "initial generator seed")
var delayFlag = flag.Int("delay", 20_000_000, "busy-wait iterations between numbers")
var periodFlag = flag.Duration("period", time.Second, "timer period")
var clockFlag = flag.Uint64("clock", am335x.TimerClockHz, "timer input clock in Hz")
var speedFlag = flag.Float64("speed", 1.0, "simulated seconds per real second")
var verbose = flag.Int("v", 0, "verbosity level: 0 terse (default), 1 info, 2 debug")

type options struct {
	mode    string
	seed    uint32
	delay   int
	period  time.Duration
	clockHz uint64
	speed   float64
}

func main() {
	flag.Parse()
	if *helpFlag || flag.NArg() != 0 {
		usage()
	}
	if *modeFlag != "random" && *modeFlag != "echo" {
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *modeFlag)
		usage()
	}
	if *speedFlag <= 0 || *clockFlag == 0 {
		fmt.Fprintf(os.Stderr, "speed and clock must be positive\n")
		usage()
	}
	trust.SetVerbosity(*verbose)

	con, err := openConsole()
	if err != nil {
		trust.Fatalf(1, "%v", err)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, con, options{
		mode:    *modeFlag,
		seed:    uint32(*seedFlag),
		delay:   *delayFlag,
		period:  *periodFlag,
		clockHz: *clockFlag,
		speed:   *speedFlag,
	})
	cancel()
	if err := con.Close(); err != nil {
		trust.Errorf("%v", err)
		code = 1
	}
	os.Exit(code)
}

// run wires the monitor to a simulated board whose UART is con, and returns
// once ctx ends or the console asks to quit. By then the board is powered
// off, so nothing else will be written to con.
func run(ctx context.Context, con *console, opts options) int {
	board := sim.NewBoard(con)
	regs := am335x.NewBoard(board)
	uart := serial.NewUART(regs.UART0)
	table := trap.NewTable(tick.Unexpected(regs.INTC, uart))

	if limit := maxPeriod(opts.clockHz); opts.period > limit {
		trust.Warnf("period %v is longer than the timer can count at %d Hz, using %v",
			opts.period, opts.clockHz, limit)
	}
	tconf := tick.DefaultConfig()
	tconf.Reload = tick.ReloadFor(opts.period, opts.clockHz)
	timer := tick.New(regs, uart, table, tconf)

	mconf := monitor.DefaultConfig()
	mconf.DelayIterations = opts.delay
	m := monitor.New(uart, timer, board, lcg.New(opts.seed), mconf)

	trust.Infof("mode %s, seed %d, reload %08x (%v at %d Hz), speed %.2f",
		opts.mode, opts.seed, tconf.Reload, opts.period, opts.clockHz, opts.speed)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	clock := sim.NewClock(board, func(int) {
		//what the IRQ vector does on the board
		table.Dispatch(tick.ActiveLine(regs.INTC))
	})
	clock.ClockHz = opts.clockHz
	clock.Speed = opts.speed
	clockDone := make(chan struct{})
	go func() {
		clock.Run(ctx)
		close(clockDone)
	}()

	var drained func() bool
	if opts.mode == "echo" {
		drained = board.RxIdle
	}
	go con.pump(ctx, board.Input(), cancel, drained)

	switch opts.mode {
	case "echo":
		go m.Echo()
	default:
		go m.Run()
	}

	<-ctx.Done()
	<-clockDone
	board.PowerOff()
	trust.Debugf("stopping after %d timer overflows", board.Overflows())
	return 0
}

// maxPeriod is the longest period a 32 bit counter covers at clockHz.
func maxPeriod(clockHz uint64) time.Duration {
	return time.Duration(float64(1<<32) / float64(clockHz) * float64(time.Second))
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: monsim [flags]\n")
	fmt.Fprintf(os.Stderr, "runs the monitor against a simulated BeagleBone Black; ctrl-c quits\n")
	flag.PrintDefaults()
	os.Exit(1)
}
