package rig

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
)

func TestButtonEdgeTrigger(t *testing.T) {
	p := NewMemPin(gpio.High)
	b, err := NewButton(p, 0)
	if err != nil {
		t.Fatal(err)
	}

	if b.Pressed() {
		t.Error("released button reported pressed")
	}
	p.Set(gpio.Low)
	if !b.Pressed() {
		t.Error("falling edge not reported")
	}
	for i := 0; i < 3; i++ {
		if b.Pressed() {
			t.Error("held button repeated")
		}
	}
	p.Set(gpio.High)
	if b.Pressed() {
		t.Error("rising edge reported as press")
	}
	p.Set(gpio.Low)
	if !b.Pressed() {
		t.Error("second press not reported")
	}
}

func TestButtonDebounce(t *testing.T) {
	p := NewMemPin(gpio.High)
	b, err := NewButton(p, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	p.Set(gpio.Low)
	if !b.Pressed() {
		t.Fatal("press not reported")
	}

	// contact bounce right after the press is ignored
	p.Set(gpio.High)
	if b.Pressed() {
		t.Error("bounce produced an event")
	}
	p.Set(gpio.Low)
	if b.Pressed() {
		t.Error("bounce produced a repeat press")
	}
}
