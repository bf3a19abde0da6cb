//go:build tinygo

package mmio

import (
	"runtime/volatile"
	"unsafe"
)

// Physical is the real address space. Only TinyGo builds have it.
var Physical Bus = physicalBus{}

type physicalBus struct{}

func (physicalBus) Read32(addr uintptr) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(addr)))
}

func (physicalBus) Write32(addr uintptr, value uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(addr)), value)
}
