package rig

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pin is an interface wrapper for gpio.PinIO to allow for mocking in tests.
type Pin interface {
	Out(l gpio.Level) error
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
}

// Init loads the periph host drivers, call it once before OpenPin.
func Init() error {
	_, err := host.Init()
	return err
}

// OpenPin resolves a pin by name ("GPIO26", "26", ...).
func OpenPin(name string) (Pin, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no such gpio pin: %q", name)
	}
	return p, nil
}

// MemPin is an in-memory Pin for hardware-free tests. Set simulates
// an external level change, Writes logs everything driven on it.
type MemPin struct {
	mu     sync.Mutex
	level  gpio.Level
	writes []gpio.Level
}

func NewMemPin(l gpio.Level) *MemPin {
	return &MemPin{level: l}
}

func (p *MemPin) Out(l gpio.Level) error {
	p.mu.Lock()
	p.level = l
	p.writes = append(p.writes, l)
	p.mu.Unlock()
	return nil
}

func (p *MemPin) In(pull gpio.Pull, edge gpio.Edge) error {
	return nil
}

func (p *MemPin) Read() gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *MemPin) Set(l gpio.Level) {
	p.mu.Lock()
	p.level = l
	p.mu.Unlock()
}

func (p *MemPin) Writes() []gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]gpio.Level, len(p.writes))
	copy(out, p.writes)
	return out
}
