package rig

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Indicators drives one output pin per power state plus an activity led.
// The state pins are meant for visualization, either with plain LEDs or
// as digital channels of a measurement device like the Nordic PPK2.
type Indicators struct {
	StatePins [NumStates]Pin
	Led       Pin
	BlinkTime time.Duration
}

// setState clears the previous state pin and raises the next one.
// Exactly one state pin is high at any time.
func (in *Indicators) setState(prev, next PowerState) {
	if in == nil {
		return
	}
	if p := in.pin(prev); p != nil {
		p.Out(gpio.Low)
	}
	if p := in.pin(next); p != nil {
		p.Out(gpio.High)
	}
}

// Blink pulses the activity led once, blocking for BlinkTime.
func (in *Indicators) Blink() {
	if in == nil || in.Led == nil {
		return
	}
	in.Led.Out(gpio.High)
	time.Sleep(in.BlinkTime)
	in.Led.Out(gpio.Low)
}

func (in *Indicators) pin(s PowerState) Pin {
	if s < 0 || int(s) >= len(in.StatePins) {
		return nil
	}
	return in.StatePins[s]
}
