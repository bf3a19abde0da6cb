package sim

import (
	"context"
	"time"

	"metronome/src/hardware/am335x"
)

// Clock drives a Board's timer from wall time and delivers its interrupts on
// its own goroutine, which plays the part of the CPU's IRQ context.
type Clock struct {
	Board   *Board
	Deliver func(line int)

	ClockHz  uint64        //timer input clock
	Speed    float64       //simulated seconds per real second
	Interval time.Duration //how often the model is stepped
}

func NewClock(b *Board, deliver func(line int)) *Clock {
	return &Clock{
		Board:    b,
		Deliver:  deliver,
		ClockHz:  am335x.TimerClockHz,
		Speed:    1.0,
		Interval: time.Millisecond,
	}
}

// Run steps the board until ctx is done. If the handler never clears the
// timer status, the line stays asserted and Run keeps delivering, exactly
// like the hardware would.
func (c *Clock) Run(ctx context.Context) {
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()
	last := time.Now()
	carry := 0.0
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			ticks := now.Sub(last).Seconds()*float64(c.ClockHz)*c.Speed + carry
			last = now
			whole := uint64(ticks)
			carry = ticks - float64(whole)
			c.Board.Advance(whole)
			for c.Board.Service(c.Deliver) {
				if ctx.Err() != nil {
					return
				}
			}
		}
	}
}
