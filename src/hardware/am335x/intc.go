package am335x

import "metronome/src/lib/mmio"

type INTCRegisterMap struct {
	ActiveIRQ  mmio.Register //0x40, SIR_IRQ, readonly
	Control    mmio.Register //0x48
	Mask2      mmio.Register //0xC4, MIR2, lines 64..95
	MaskClear2 mmio.Register //0xC8, MIR_CLEAR2, write 1 to unmask
	MaskSet2   mmio.Register //0xCC, MIR_SET2, write 1 to mask

	bus  mmio.Bus
	base uintptr
}

const (
	INTCActiveIRQ     = 0x40
	INTCControl       = 0x48
	INTCMask2         = 0xC4
	INTCMaskClear2    = 0xC8
	INTCMaskSet2      = 0xCC
	INTCLinePriority0 = 0x100
)

func NewINTC(b mmio.Bus, base uintptr) *INTCRegisterMap {
	return &INTCRegisterMap{
		ActiveIRQ:  mmio.NewRegister(b, base+INTCActiveIRQ),
		Control:    mmio.NewRegister(b, base+INTCControl),
		Mask2:      mmio.NewRegister(b, base+INTCMask2),
		MaskClear2: mmio.NewRegister(b, base+INTCMaskClear2),
		MaskSet2:   mmio.NewRegister(b, base+INTCMaskSet2),
		bus:        b,
		base:       base,
	}
}

// LinePriority is ILR(m). There are 128 of them, so they are not fields.
func (i *INTCRegisterMap) LinePriority(line int) mmio.Register {
	return mmio.NewRegister(i.bus, i.base+LinePriorityOffset(line))
}

func LinePriorityOffset(line int) uintptr {
	return INTCLinePriority0 + uintptr(line)*4
}

// MaskBit is the bit for line inside its 32 line bank.
func MaskBit(line int) uint32 {
	return 1 << (uint(line) % 32)
}

// control register bitfields
const NewIRQAgreement = 1 << 0
const NewFIQAgreement = 1 << 1

// SIR_IRQ
const ActiveIRQMask = 0x7F
const SpuriousIRQFlag = 0x7FFF_FF80

// ILR bitfields: priority 0 is the highest, bit 0 clear routes to IRQ
const LineRouteFIQ = 1 << 0
const LinePriorityHighest = 0 << 2
