package serial

import "metronome/src/hardware/am335x"

// UART is the polled console. Every method blocks until the hardware says
// it is done and there is no timeout: a UART that never becomes ready hangs
// the caller forever.
//
// UART has no lock. The foreground loop and the timer interrupt both write
// to it, so their output can interleave mid line.
type UART struct {
	regs *am335x.UARTRegisterMap
}

func NewUART(regs *am335x.UARTRegisterMap) *UART {
	return &UART{regs: regs}
}

// SendByte waits for room in the transmit holding register, then writes c.
func (u *UART) SendByte(c byte) {
	for !u.regs.LineStatus.HasBits(am335x.LineStatusTxHoldingEmpty) {
	}
	u.regs.Data.Set(uint32(c))
}

// RecvByte waits until the receive FIFO is not empty and returns the next byte.
func (u *UART) RecvByte() byte {
	for u.regs.LineStatus.HasBits(am335x.LineStatusRxFIFOEmpty) {
	}
	return byte(u.regs.Data.Get() & 0xFF)
}

func (u *UART) SendString(s string) {
	for i := 0; i < len(s); i++ {
		u.SendByte(s[i])
	}
}

// ReadLine reads bytes into buf, echoing each one, until it sees \r or \n or
// until len(buf)-1 bytes are stored. The byte after the data is set to zero
// and the number of data bytes is returned. A terminator is echoed as \n and
// never stored.
func (u *UART) ReadLine(buf []byte) int {
	if len(buf) == 0 {
		return 0
	}
	i := 0
	for i < len(buf)-1 {
		c := u.RecvByte()
		if c == '\n' || c == '\r' {
			u.SendByte('\n')
			break
		}
		u.SendByte(c)
		buf[i] = c
		i++
	}
	buf[i] = 0
	return i
}

// SendUnsigned prints n in decimal followed by a newline.
func (u *UART) SendUnsigned(n uint32) {
	var digits [10]byte
	if n == 0 {
		u.SendByte('0')
		u.SendByte('\n')
		return
	}
	i := 0
	for n > 0 && i < len(digits) {
		digits[i] = byte(n%10) + '0'
		n /= 10
		i++
	}
	for i > 0 {
		i--
		u.SendByte(digits[i])
	}
	u.SendByte('\n')
}

// SendHex32 prints all eight hex digits of d, upper case, no prefix.
func (u *UART) SendHex32(d uint32) {
	shift := uint32(32)
	for shift > 0 {
		shift -= 4
		rc := (d >> shift) & 0xF
		if rc > 9 {
			rc += 0x37
		} else {
			rc += 0x30
		}
		u.SendByte(byte(rc))
	}
}
