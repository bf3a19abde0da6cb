package am335x

import "metronome/src/lib/mmio"

// Physical base addresses, AM335x TRM chapter 2 (memory map).
const (
	CMPerBase    = uintptr(0x44E0_0000)
	UART0Base    = uintptr(0x44E0_9000)
	DMTimer2Base = uintptr(0x4804_0000)
	INTCBase     = uintptr(0x4820_0000)
)

// Timer2IRQ is the INTC line DMTIMER2 raises.
const Timer2IRQ = 68

// Board is every peripheral the monitor uses, mapped onto one bus.
type Board struct {
	UART0    *UARTRegisterMap
	Timer2   *DMTimerRegisterMap
	INTC     *INTCRegisterMap
	ClockPer *CMPerRegisterMap
}

func NewBoard(b mmio.Bus) *Board {
	return &Board{
		UART0:    NewUART(b, UART0Base),
		Timer2:   NewDMTimer(b, DMTimer2Base),
		INTC:     NewINTC(b, INTCBase),
		ClockPer: NewCMPer(b, CMPerBase),
	}
}
