//go:build tinygo && am335x

package main

import (
	"metronome/src/hardware/am335x"
	"metronome/src/lib/lcg"
	"metronome/src/lib/mmio"
	"metronome/src/lib/serial"
	"metronome/src/lib/tick"
	"metronome/src/lib/trap"
	"metronome/src/monitor"
)

// set up before IRQs are unmasked, read by irqHandler
var table *trap.Table
var intc *am335x.INTCRegisterMap

func main() {
	board := am335x.NewBoard(mmio.Physical)
	uart := serial.NewUART(board.UART0)
	intc = board.INTC
	table = trap.NewTable(tick.Unexpected(board.INTC, uart))

	timer := tick.New(board, uart, table, tick.DefaultConfig())
	m := monitor.New(uart, timer, am335x.CPU{}, lcg.New(lcg.DefaultSeed), monitor.DefaultConfig())
	m.Run()
}

// irq_handler is called by the IRQ vector in the startup code, with IRQs
// masked and the interrupted context saved.
//
//export irq_handler
func irqHandler() {
	table.Dispatch(tick.ActiveLine(intc))
}
