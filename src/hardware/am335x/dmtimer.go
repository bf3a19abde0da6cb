package am335x

import "metronome/src/lib/mmio"

type DMTimerRegisterMap struct {
	InterruptStatus mmio.Register //0x28, TISR (IRQSTATUS), write 1 to clear
	InterruptEnable mmio.Register //0x2C, TIER (IRQENABLE_SET)
	Control         mmio.Register //0x38, TCLR
	Counter         mmio.Register //0x3C, TCRR
	Load            mmio.Register //0x40, TLDR
}

const (
	DMTimerInterruptStatus = 0x28
	DMTimerInterruptEnable = 0x2C
	DMTimerControl         = 0x38
	DMTimerCounter         = 0x3C
	DMTimerLoad            = 0x40
)

func NewDMTimer(b mmio.Bus, base uintptr) *DMTimerRegisterMap {
	return &DMTimerRegisterMap{
		InterruptStatus: mmio.NewRegister(b, base+DMTimerInterruptStatus),
		InterruptEnable: mmio.NewRegister(b, base+DMTimerInterruptEnable),
		Control:         mmio.NewRegister(b, base+DMTimerControl),
		Counter:         mmio.NewRegister(b, base+DMTimerCounter),
		Load:            mmio.NewRegister(b, base+DMTimerLoad),
	}
}

// control register bitfields
const TimerStart = 1 << 0
const TimerAutoReload = 1 << 1

// interrupt status and enable bitfields (same layout in both)
const TimerMatch = 1 << 0
const TimerOverflow = 1 << 1
const TimerCapture = 1 << 2
const TimerAllEvents = TimerMatch | TimerOverflow | TimerCapture

// DMTIMER2 runs from CLK_M_OSC out of reset.
const TimerClockHz = 24_000_000
