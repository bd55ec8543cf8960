package rig

import (
	"time"

	"github.com/rkjdid/util"
	"periph.io/x/conn/v3/gpio"
)

// Config names the gpio pins of the rig and the loop timings. Pin names
// default to the reference wiring (reset on GPIO2, buttons on GPIO27/26,
// state pins on GPIO5..9).
type Config struct {
	ButtonA   string // deep-sleep toggle
	ButtonB   string // send-cycle button
	Reset     string // esp-01 reset line
	Led       string // activity led, empty disables blinking
	StatePins []string

	Debounce  util.Duration
	Tick      util.Duration // polling loop period
	BlinkTime util.Duration
}

var DefaultConfig = Config{
	ButtonA:   "GPIO27",
	ButtonB:   "GPIO26",
	Reset:     "GPIO2",
	Led:       "GPIO25",
	StatePins: []string{"GPIO5", "GPIO6", "GPIO7", "GPIO8", "GPIO9"},

	Debounce:  util.Duration(time.Millisecond * 50),
	Tick:      util.Duration(time.Millisecond * 10),
	BlinkTime: util.Duration(time.Millisecond * 200),
}

// Setup opens every configured pin and builds the rig peripherals.
// The reset line is returned separately, it belongs to the esp-01 handle.
func Setup(cfg *Config) (a, b *Button, ind *Indicators, reset Pin, err error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}

	pa, err := OpenPin(cfg.ButtonA)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	pb, err := OpenPin(cfg.ButtonB)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	a, err = NewButton(pa, time.Duration(cfg.Debounce))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	b, err = NewButton(pb, time.Duration(cfg.Debounce))
	if err != nil {
		return nil, nil, nil, nil, err
	}

	reset, err = OpenPin(cfg.Reset)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	ind = &Indicators{BlinkTime: time.Duration(cfg.BlinkTime)}
	if cfg.Led != "" {
		ind.Led, err = OpenPin(cfg.Led)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}
	for i, name := range cfg.StatePins {
		if i >= NumStates {
			break
		}
		p, err := OpenPin(name)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		p.Out(gpio.Low)
		ind.StatePins[i] = p
	}

	return a, b, ind, reset, nil
}
