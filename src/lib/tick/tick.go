package tick

import (
	"math/bits"
	"time"

	"metronome/src/hardware/am335x"
	"metronome/src/lib/serial"
	"metronome/src/lib/trap"
)

// DefaultReload gives one overflow every 24,000,000 ticks of the 24MHz
// oscillator.
const DefaultReload = 0xFE91CA00

// TickMessage is what the interrupt handler prints.
const TickMessage = "Tick\n"

type Config struct {
	Reload uint32 //TLDR and initial TCRR; the timer counts up from here to wrap
}

func DefaultConfig() Config {
	return Config{Reload: DefaultReload}
}

// ReloadFor returns the load value that makes a timer clocked at clockHz
// overflow once per period. Periods too long for 32 bits are clamped.
func ReloadFor(period time.Duration, clockHz uint64) uint32 {
	if period < 0 {
		period = 0
	}
	ticks := uint64(1 << 32)
	hi, lo := bits.Mul64(clockHz, uint64(period))
	if hi < uint64(time.Second) {
		//the quotient fits in 64 bits
		q, _ := bits.Div64(hi, lo, uint64(time.Second))
		if q < ticks {
			ticks = q
		}
	}
	if ticks == 0 {
		ticks = 1
	}
	return uint32(uint64(1<<32) - ticks)
}

// Timer is DMTIMER2 configured as a free running periodic interrupt on
// INTC line 68.
type Timer struct {
	board *am335x.Board
	uart  *serial.UART
	table *trap.Table
	conf  Config
}

func New(board *am335x.Board, uart *serial.UART, table *trap.Table, conf Config) *Timer {
	return &Timer{board: board, uart: uart, table: table, conf: conf}
}

// Init binds OnInterrupt to the timer's line and then programs the hardware.
// The order of the writes matters: the clock gate must be on before the
// timer registers respond, and the timer must be stopped and its status
// cleared before it is reloaded and started.
func (t *Timer) Init() {
	t.table.Register(am335x.Timer2IRQ, t.OnInterrupt)

	timer := t.board.Timer2
	intc := t.board.INTC

	// MODULEMODE only, IDLEST and the rest of CLKCTRL keep their values
	t.board.ClockPer.Timer2ClockControl.ReplaceBits(am335x.ModuleEnable, am335x.ModuleModeMask, 0)
	// line 68 is bank 2 (64..95), bit 4; other lines are not touched
	intc.MaskClear2.Set(am335x.MaskBit(am335x.Timer2IRQ))
	intc.LinePriority(am335x.Timer2IRQ).Set(am335x.LinePriorityHighest)

	timer.Control.Set(0)
	timer.InterruptStatus.Set(am335x.TimerAllEvents)
	timer.Load.Set(t.conf.Reload)
	timer.Counter.Set(t.conf.Reload) //first overflow one full period from now
	timer.InterruptEnable.Set(am335x.TimerOverflow)
	timer.Control.Set(am335x.TimerStart | am335x.TimerAutoReload)
}

// OnInterrupt runs in IRQ context on every overflow.
//
// SendString busy-waits on the UART from inside the interrupt and shares the
// UART with the foreground loop without a lock. Both are known hazards: the
// handler can stall while the FIFO drains, and its output can land in the
// middle of a number the foreground is printing.
func (t *Timer) OnInterrupt(_ int) {
	t.board.Timer2.InterruptStatus.Set(am335x.TimerOverflow)
	t.board.INTC.Control.Set(am335x.NewIRQAgreement)
	t.uart.SendString(TickMessage)
}

// ActiveLine is the line the INTC is currently delivering, or -1 if it was
// spurious.
func ActiveLine(intc *am335x.INTCRegisterMap) int {
	sir := intc.ActiveIRQ.Get()
	if sir&am335x.SpuriousIRQFlag != 0 {
		return -1
	}
	return int(sir & am335x.ActiveIRQMask)
}

// Unexpected reports an interrupt nobody registered for and acknowledges it
// so the controller keeps delivering.
func Unexpected(intc *am335x.INTCRegisterMap, uart *serial.UART) trap.Handler {
	return func(line int) {
		uart.SendString("Unexpected IRQ 0x")
		uart.SendHex32(uint32(line))
		uart.SendByte('\n')
		intc.Control.Set(am335x.NewIRQAgreement)
	}
}
