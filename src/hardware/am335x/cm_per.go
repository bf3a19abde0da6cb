package am335x

import "metronome/src/lib/mmio"

type CMPerRegisterMap struct {
	Timer2ClockControl mmio.Register //0x80
}

const CMPerTimer2ClockControl = 0x80

func NewCMPer(b mmio.Bus, base uintptr) *CMPerRegisterMap {
	return &CMPerRegisterMap{
		Timer2ClockControl: mmio.NewRegister(b, base+CMPerTimer2ClockControl),
	}
}

// MODULEMODE field of any CM_PER_*_CLKCTRL
const ModuleModeMask = 0x3
const ModuleDisabled = 0x0
const ModuleEnable = 0x2
