package am335x

import "metronome/src/lib/mmio"

// Only the registers the polled console needs. Baud and framing are left as
// the boot ROM configured them.
type UARTRegisterMap struct {
	Data       mmio.Register //0x00, THR on write, RHR on read
	LineStatus mmio.Register //0x14, readonly
}

const (
	UARTData       = 0x00
	UARTLineStatus = 0x14
)

func NewUART(b mmio.Bus, base uintptr) *UARTRegisterMap {
	return &UARTRegisterMap{
		Data:       mmio.NewRegister(b, base+UARTData),
		LineStatus: mmio.NewRegister(b, base+UARTLineStatus),
	}
}

// line status register bitfields
const LineStatusRxDataReady = 1 << 0    //at least one byte in RX FIFO
const LineStatusRxFIFOEmpty = 1 << 4    //set while nothing is waiting
const LineStatusTxHoldingEmpty = 1 << 5 //set when THR can take a byte
