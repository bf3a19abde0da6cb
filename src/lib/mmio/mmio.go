package mmio

// Bus is the only way the monitor touches hardware. On the board it is the
// physical address space; on the host it is a simulated register bank.
// Nothing written through a Bus is cached: reads always go to the device.
type Bus interface {
	Read32(addr uintptr) uint32
	Write32(addr uintptr, value uint32)
}

// Register is a single 32 bit memory mapped location on a Bus. Its methods
// are named after volatile.Register32's so register maps read the same way
// on either side of the build.
type Register struct {
	bus  Bus
	addr uintptr
}

func NewRegister(b Bus, addr uintptr) Register {
	return Register{bus: b, addr: addr}
}

func (r Register) Get() uint32 {
	return r.bus.Read32(r.addr)
}

func (r Register) Set(value uint32) {
	r.bus.Write32(r.addr, value)
}

// HasBits reports if any of the bits in mask are set right now.
func (r Register) HasBits(mask uint32) bool {
	return r.Get()&mask != 0
}

// ReplaceBits clears mask<<shift and then puts value<<shift there. It is a
// read-modify-write, do not use it on write-1-to-clear registers.
func (r Register) ReplaceBits(value uint32, mask uint32, shift uint8) {
	r.Set(r.Get()&^(mask<<shift) | (value&mask)<<shift)
}
