package rig

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Button is a debounced, edge-triggered push button on a pull-up,
// active-low input pin.
type Button struct {
	pin      Pin
	debounce time.Duration
	level    gpio.Level
	since    time.Time
}

func NewButton(pin Pin, debounce time.Duration) (*Button, error) {
	err := pin.In(gpio.PullUp, gpio.NoEdge)
	if err != nil {
		return nil, err
	}
	return &Button{
		pin:      pin,
		debounce: debounce,
		level:    gpio.High,
	}, nil
}

// Pressed reports a falling edge on the pin. It returns true exactly once
// per physical press: holding the button does not repeat, and level changes
// inside the debounce window are ignored as contact bounce.
func (b *Button) Pressed() bool {
	l := b.pin.Read()
	if l == b.level {
		return false
	}
	if time.Since(b.since) < b.debounce {
		return false
	}
	b.level = l
	b.since = time.Now()
	return l == gpio.Low
}
