package rig

import (
	"fmt"
	"sync"
	"time"

	"github.com/esplab/esprig/esp01"
)

//go:generate stringer -type=PowerState
type PowerState int

const (
	Idle       PowerState = PowerState(iota)
	Sleeping   PowerState = PowerState(iota)
	Connected  PowerState = PowerState(iota)
	SocketOpen PowerState = PowerState(iota)
	Sending    PowerState = PowerState(iota)
)

const NumStates = 5

// Coprocessor is the slice of the esp-01 handle the sequencer drives.
// *esp01.Esp implements it, tests provide a scripted fake.
type Coprocessor interface {
	JoinAP() error
	SoftReset() error
	OpenUDP() error
	CloseUDP() error
	SendUDP(payload []byte) error
	DeepSleep(d time.Duration) error
	HardReset() error
	State() esp01.LinkState
}

// Snapshot is the rig state at a given time, as published by the
// sequencer for the tracer and the web frontend.
type Snapshot struct {
	Time       time.Time
	PowerState PowerState
	LinkState  esp01.LinkState
}

// Sequencer owns the current power state and the coprocessor handle.
// It maps button events to state transitions and issues one command
// at a time; no transition ever fires from a timer or a data event.
type Sequencer struct {
	mu   sync.Mutex // guards state & link for concurrent Snapshot readers
	esp  Coprocessor
	a, b *Button
	ind  *Indicators

	payload    func() []byte
	state      PowerState
	link       esp01.LinkState
	descending bool
}

func NewSequencer(esp Coprocessor, a, b *Button, ind *Indicators, payload func() []byte) *Sequencer {
	if payload == nil {
		payload = DefaultPayload()
	}
	s := &Sequencer{
		esp:     esp,
		a:       a,
		b:       b,
		ind:     ind,
		payload: payload,
		state:   Idle,
		link:    esp.State(),
	}
	s.ind.setState(Idle, Idle)
	return s
}

// DefaultPayload reproduces the reference rig payload: milliseconds
// since startup, newline terminated.
func DefaultPayload() func() []byte {
	t0 := time.Now()
	return func() []byte {
		ms := float64(time.Since(t0)) / float64(time.Millisecond)
		return []byte(fmt.Sprintf("%6.4f\n", ms))
	}
}

func (s *Sequencer) State() PowerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the published rig state. It never touches the
// coprocessor handle, so it is safe to call from other goroutines.
func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Time:       time.Now(),
		PowerState: s.state,
		LinkState:  s.link,
	}
}

// OnButtonA toggles deep sleep: Idle -> Sleeping issues a zero-duration
// deep-sleep command (sleep until external reset), Sleeping -> Idle
// pulses the reset line. Any other state ignores the press.
func (s *Sequencer) OnButtonA() error {
	s.ind.Blink()
	switch s.state {
	case Idle:
		if err := s.esp.DeepSleep(0); err != nil {
			return err
		}
		s.setState(Sleeping)
	case Sleeping:
		if err := s.esp.HardReset(); err != nil {
			return err
		}
		s.setState(Idle)
	default:
		return nil
	}
	s.ind.Blink()
	return nil
}

// OnButtonB advances the send-and-return cycle
//
//	Idle -> Connected -> SocketOpen -> Sending -> SocketOpen -> Connected -> Idle
//
// joining the access point on the way up, sending exactly one datagram at
// the top, and tearing down on the way back. While Sleeping the press is
// ignored, the coprocessor only listens to the reset line then.
func (s *Sequencer) OnButtonB() error {
	if s.state == Sleeping {
		return nil
	}
	s.ind.Blink()
	switch {
	case s.state == Idle:
		if err := s.esp.JoinAP(); err != nil {
			return err
		}
		s.setState(Connected)
	case s.state == Connected && !s.descending:
		if err := s.esp.OpenUDP(); err != nil {
			return err
		}
		s.setState(SocketOpen)
	case s.state == SocketOpen && !s.descending:
		if err := s.esp.SendUDP(s.payload()); err != nil {
			return err
		}
		s.descending = true
		s.setState(Sending)
	case s.state == Sending:
		s.setState(SocketOpen)
	case s.state == SocketOpen && s.descending:
		if err := s.esp.CloseUDP(); err != nil {
			return err
		}
		s.setState(Connected)
	case s.state == Connected && s.descending:
		if err := s.esp.SoftReset(); err != nil {
			return err
		}
		s.descending = false
		s.setState(Idle)
	}
	s.ind.Blink()
	return nil
}

// Poll checks both buttons and dispatches at most one event. Polling is
// strictly sequential: a press during a transition is not seen until the
// transition finished.
func (s *Sequencer) Poll() error {
	var err error
	switch {
	case s.a.Pressed():
		err = s.OnButtonA()
	case s.b.Pressed():
		err = s.OnButtonB()
	default:
		return nil
	}
	s.publishLink()
	return err
}

// Run drives the polling loop until stop is closed or a transition fails.
// Failures are not retried or recovered, the loop halts with the error
// (fail-stop, this is a measurement rig).
func (s *Sequencer) Run(stop <-chan struct{}, tick time.Duration) error {
	for {
		select {
		case <-stop:
			return nil
		case <-time.After(tick):
		}
		if err := s.Poll(); err != nil {
			return err
		}
	}
}

func (s *Sequencer) setState(next PowerState) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()
	s.ind.setState(prev, next)
}

func (s *Sequencer) publishLink() {
	link := s.esp.State()
	s.mu.Lock()
	s.link = link
	s.mu.Unlock()
}
