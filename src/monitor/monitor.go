package monitor

import (
	"sync/atomic"

	"metronome/src/lib/lcg"
	"metronome/src/lib/serial"
	"metronome/src/lib/tick"
)

// IRQEnabler is the CPU's global interrupt unmask.
type IRQEnabler interface {
	EnableIRQ()
}

type Config struct {
	Modulus         uint32 //numbers printed are in [0, Modulus)
	DelayIterations int
	Delay           func(iterations int)
	LineLength      int //echo mode buffer, including the terminator slot
	Prompt          string
}

func DefaultConfig() Config {
	return Config{
		Modulus:         1000,
		DelayIterations: 1_000_000,
		Delay:           ApproxDelay,
		LineLength:      80,
		Prompt:          "> ",
	}
}

// Monitor is the foreground task. It owns the generator; the timer's
// interrupt handler shares the UART with it.
type Monitor struct {
	uart  *serial.UART
	timer *tick.Timer
	cpu   IRQEnabler
	rng   *lcg.Generator
	conf  Config
}

func New(uart *serial.UART, timer *tick.Timer, cpu IRQEnabler, rng *lcg.Generator, conf Config) *Monitor {
	if conf.Modulus == 0 {
		conf.Modulus = 1
	}
	if conf.Delay == nil {
		conf.Delay = ApproxDelay
	}
	if conf.LineLength < 2 {
		conf.LineLength = 2
	}
	return &Monitor{uart: uart, timer: timer, cpu: cpu, rng: rng, conf: conf}
}

// Boot prints the startup transcript, starts the timer and unmasks IRQs.
// After this returns "Tick" lines can appear at any time.
func (m *Monitor) Boot() {
	m.uart.SendString("Starting...\n")
	m.timer.Init()
	m.uart.SendString("Timer initialized\n")
	m.uart.SendString("Enabling interrupts...\n")
	m.cpu.EnableIRQ()
	m.uart.SendString("IRQs enabled\n")
}

// Step prints one number and then waits. It returns the number printed.
func (m *Monitor) Step() uint32 {
	v := m.rng.Next() % m.conf.Modulus
	m.uart.SendUnsigned(v)
	m.conf.Delay(m.conf.DelayIterations)
	return v
}

// Run never returns.
func (m *Monitor) Run() {
	m.Boot()
	for {
		m.Step()
	}
}

// EchoStep prompts, reads one line into buf and sends it back. It returns the
// line read.
func (m *Monitor) EchoStep(buf []byte) string {
	m.uart.SendString(m.conf.Prompt)
	n := m.uart.ReadLine(buf)
	if len(buf) > 0 && n == len(buf)-1 {
		//full buffer, ReadLine stopped before any terminator was echoed
		m.uart.SendByte('\n')
	}
	line := string(buf[:n])
	m.uart.SendString(line)
	m.uart.SendByte('\n')
	return line
}

// Echo is Run with a line echo in place of the numbers. It never returns.
func (m *Monitor) Echo() {
	m.Boot()
	buf := make([]byte, m.conf.LineLength)
	for {
		m.EchoStep(buf)
	}
}

var spun uint32

// ApproxDelay spins for n loop iterations. It is not a clock: how long that
// takes depends on the core, the caches and the compiler.
func ApproxDelay(n int) {
	var count uint32
	for i := 0; i < n; i++ {
		count++
	}
	atomic.AddUint32(&spun, count)
}
