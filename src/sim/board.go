package sim

import (
	"io"
	"runtime"
	"sync"

	"metronome/src/hardware/am335x"
)

// Board is a register level model of the parts of an AM335x the monitor
// touches: UART0, DMTIMER2, the INTC and the timer's clock gate. It is an
// mmio.Bus and also provides the CPU's global IRQ enable.
//
// Each register access is atomic, as on the real bus. Nothing larger is.
type Board struct {
	mu sync.Mutex

	regs map[uintptr]uint32 //everything without special behavior

	tx          io.Writer
	rx          []byte
	txBusyPolls int
	txBusy      int
	emptyPolls  int //line status reads with RX empty since the last byte in or out

	tisr, tier, tclr, tcrr, tldr uint32
	overflows                    uint64

	mir2       uint32
	activeIRQ  uint32
	inService  bool
	irqEnabled bool

	tracing bool
	trace   []Access

	off bool
}

// Access is one recorded register write.
type Access struct {
	Addr  uintptr
	Value uint32
}

// NewBoard returns a board in its reset state whose console output goes to tx.
func NewBoard(tx io.Writer) *Board {
	return &Board{
		regs:      make(map[uintptr]uint32),
		tx:        tx,
		mir2:      0xffff_ffff,
		activeIRQ: am335x.SpuriousIRQFlag,
	}
}

const (
	uartData       = am335x.UART0Base + am335x.UARTData
	uartLineStatus = am335x.UART0Base + am335x.UARTLineStatus

	timerStatus  = am335x.DMTimer2Base + am335x.DMTimerInterruptStatus
	timerEnable  = am335x.DMTimer2Base + am335x.DMTimerInterruptEnable
	timerControl = am335x.DMTimer2Base + am335x.DMTimerControl
	timerCounter = am335x.DMTimer2Base + am335x.DMTimerCounter
	timerLoad    = am335x.DMTimer2Base + am335x.DMTimerLoad

	intcActive    = am335x.INTCBase + am335x.INTCActiveIRQ
	intcControl   = am335x.INTCBase + am335x.INTCControl
	intcMask2     = am335x.INTCBase + am335x.INTCMask2
	intcMaskClear = am335x.INTCBase + am335x.INTCMaskClear2
	intcMaskSet   = am335x.INTCBase + am335x.INTCMaskSet2

	timer2ClockControl = am335x.CMPerBase + am335x.CMPerTimer2ClockControl
)

func (b *Board) Read32(addr uintptr) uint32 {
	b.mu.Lock()
	b.haltIfOff()
	var v uint32
	idle := false
	switch addr {
	case uartData:
		if len(b.rx) > 0 {
			v = uint32(b.rx[0])
			b.rx = b.rx[1:]
		}
	case uartLineStatus:
		if b.txBusy > 0 {
			b.txBusy--
		} else {
			v |= am335x.LineStatusTxHoldingEmpty
		}
		if len(b.rx) == 0 {
			v |= am335x.LineStatusRxFIFOEmpty
			b.emptyPolls++
			idle = true
		} else {
			v |= am335x.LineStatusRxDataReady
		}
	case timerStatus:
		v = b.tisr
	case timerEnable:
		v = b.tier
	case timerControl:
		v = b.tclr
	case timerCounter:
		v = b.tcrr
	case timerLoad:
		v = b.tldr
	case intcActive:
		v = b.activeIRQ
	case intcMask2:
		v = b.mir2
	default:
		v = b.regs[addr]
	}
	b.mu.Unlock()
	if idle {
		//somebody is polling an empty receiver, let the feeder run
		runtime.Gosched()
	}
	return v
}

func (b *Board) Write32(addr uintptr, value uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.haltIfOff()
	if b.tracing {
		b.trace = append(b.trace, Access{Addr: addr, Value: value})
	}
	switch addr {
	case uartData:
		if b.tx != nil {
			b.tx.Write([]byte{byte(value)})
		}
		b.txBusy = b.txBusyPolls
		b.emptyPolls = 0
	case uartLineStatus:
		//readonly
	case timerStatus:
		b.tisr &^= value
	case timerEnable:
		b.tier |= value & am335x.TimerAllEvents
	case timerControl:
		b.tclr = value
	case timerCounter:
		b.tcrr = value
	case timerLoad:
		b.tldr = value
	case intcControl:
		if value&am335x.NewIRQAgreement != 0 {
			b.inService = false
			b.activeIRQ = am335x.SpuriousIRQFlag
		}
	case intcMaskClear:
		b.mir2 &^= value
	case intcMaskSet:
		b.mir2 |= value
	case intcActive, intcMask2:
		//readonly, MIR is changed through the set/clear registers
	default:
		b.regs[addr] = value
	}
}

// EnableIRQ is the CPU's global interrupt unmask.
func (b *Board) EnableIRQ() {
	b.mu.Lock()
	b.irqEnabled = true
	b.mu.Unlock()
}

func (b *Board) IRQEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.irqEnabled
}

// Feed puts bytes in the UART receive FIFO.
func (b *Board) Feed(p []byte) {
	b.mu.Lock()
	b.rx = append(b.rx, p...)
	b.emptyPolls = 0
	b.mu.Unlock()
}

// IdlePolls is how many line status reads with nothing received and nothing
// sent make the console count as idle.
const IdlePolls = 64

// RxIdle reports if the receive FIFO is empty and the CPU has been polling
// it for a while without transmitting, i.e. it is waiting for input.
func (b *Board) RxIdle() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rx) == 0 && b.emptyPolls >= IdlePolls
}

// PowerOff stops the board. Any register access after this, from any
// goroutine, never returns, so nothing more reaches the console.
func (b *Board) PowerOff() {
	b.mu.Lock()
	b.off = true
	b.mu.Unlock()
}

// haltIfOff must be called with mu held.
func (b *Board) haltIfOff() {
	if b.off {
		b.mu.Unlock()
		select {}
	}
}

// Input returns a writer whose bytes arrive on the UART receive side.
func (b *Board) Input() io.Writer {
	return rxPort{b}
}

type rxPort struct {
	b *Board
}

func (r rxPort) Write(p []byte) (int, error) {
	r.b.Feed(p)
	return len(p), nil
}

// SetTxBusy makes the transmitter report full for n line status reads after
// every byte written.
func (b *Board) SetTxBusy(n int) {
	b.mu.Lock()
	b.txBusyPolls = n
	b.mu.Unlock()
}

// StartTrace begins recording every register write.
func (b *Board) StartTrace() {
	b.mu.Lock()
	b.tracing = true
	b.trace = nil
	b.mu.Unlock()
}

// Trace returns the writes recorded since StartTrace.
func (b *Board) Trace() []Access {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]Access, len(b.trace))
	copy(result, b.trace)
	return result
}

// Overflows is the number of times the timer has wrapped.
func (b *Board) Overflows() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflows
}

func (b *Board) timerClocked() bool {
	return b.regs[timer2ClockControl]&am335x.ModuleModeMask == am335x.ModuleEnable
}

// Advance runs DMTIMER2 for ticks input clock cycles. The timer only counts
// when its clock gate is on and it is started. Each wrap past 0xFFFFFFFF
// latches the overflow status if that interrupt is enabled and, in
// auto-reload mode, reloads the counter from TLDR.
func (b *Board) Advance(ticks uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.timerClocked() || b.tclr&am335x.TimerStart == 0 {
		return
	}
	remaining := uint64(1<<32) - uint64(b.tcrr)
	if ticks < remaining {
		b.tcrr += uint32(ticks)
		return
	}
	ticks -= remaining
	b.overflow()
	if b.tclr&am335x.TimerAutoReload == 0 {
		b.tclr &^= am335x.TimerStart
		b.tcrr = 0
		return
	}
	period := uint64(1<<32) - uint64(b.tldr)
	extra := ticks / period
	b.overflows += extra
	b.tcrr = b.tldr + uint32(ticks%period)
}

// Overflow advances the timer exactly to its next wrap.
func (b *Board) Overflow() {
	b.mu.Lock()
	remaining := uint64(1<<32) - uint64(b.tcrr)
	b.mu.Unlock()
	b.Advance(remaining)
}

func (b *Board) overflow() {
	b.overflows++
	if b.tier&am335x.TimerOverflow != 0 {
		b.tisr |= am335x.TimerOverflow
	}
}

func (b *Board) linePending() bool {
	asserted := b.tisr&b.tier != 0
	masked := b.mir2&am335x.MaskBit(am335x.Timer2IRQ) != 0
	return asserted && !masked
}

// Pending reports if the INTC would raise IRQ to the CPU right now, ignoring
// the CPU's own mask.
func (b *Board) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.inService && b.linePending()
}

// Service delivers one interrupt if the timer line is asserted, unmasked at
// the INTC, not already being serviced and IRQs are enabled on the CPU. The
// INTC will not deliver again until the handler writes NEWIRQAGR.
func (b *Board) Service(deliver func(line int)) bool {
	b.mu.Lock()
	if !b.irqEnabled || b.inService || !b.linePending() {
		b.mu.Unlock()
		return false
	}
	b.inService = true
	b.activeIRQ = am335x.Timer2IRQ
	b.mu.Unlock()
	deliver(am335x.Timer2IRQ)
	return true
}
