//go:build tinygo && am335x

package am335x

import "device/arm"

// CPU is the Cortex-A8 core itself.
type CPU struct{}

// EnableIRQ clears the I bit in CPSR.
func (CPU) EnableIRQ() {
	arm.Asm("cpsie i")
}

