package rig

import (
	"errors"
	"testing"
	"time"

	"github.com/esplab/esprig/esp01"
	"periph.io/x/conn/v3/gpio"
)

// fakeEsp logs every command issued by the sequencer and can be scripted
// to fail a given command.
type fakeEsp struct {
	log      []string
	failCmd  string
	failWith error
	payloads [][]byte
}

func (f *fakeEsp) do(name string) error {
	if name == f.failCmd {
		return f.failWith
	}
	f.log = append(f.log, name)
	return nil
}

func (f *fakeEsp) JoinAP() error    { return f.do("join") }
func (f *fakeEsp) SoftReset() error { return f.do("soft-reset") }
func (f *fakeEsp) OpenUDP() error   { return f.do("open") }
func (f *fakeEsp) CloseUDP() error  { return f.do("close") }
func (f *fakeEsp) SendUDP(p []byte) error {
	if err := f.do("send"); err != nil {
		return err
	}
	f.payloads = append(f.payloads, p)
	return nil
}
func (f *fakeEsp) DeepSleep(d time.Duration) error { return f.do("deep-sleep") }
func (f *fakeEsp) HardReset() error                { return f.do("hard-reset") }
func (f *fakeEsp) State() esp01.LinkState          { return esp01.Connected }

func testButtons(t *testing.T, debounce time.Duration) (*Button, *MemPin, *Button, *MemPin) {
	t.Helper()
	pa, pb := NewMemPin(gpio.High), NewMemPin(gpio.High)
	a, err := NewButton(pa, debounce)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewButton(pb, debounce)
	if err != nil {
		t.Fatal(err)
	}
	return a, pa, b, pb
}

func testSequencer(t *testing.T, esp Coprocessor) *Sequencer {
	t.Helper()
	a, _, b, _ := testButtons(t, 0)
	return NewSequencer(esp, a, b, nil, nil)
}

func expectCommands(t *testing.T, f *fakeEsp, want ...string) {
	t.Helper()
	if len(f.log) != len(want) {
		t.Fatalf("commands: got %v, want %v", f.log, want)
	}
	for i := range want {
		if f.log[i] != want[i] {
			t.Errorf("command #%d: got %q, want %q", i, f.log[i], want[i])
		}
	}
}

func TestButtonASleepToggle(t *testing.T) {
	f := &fakeEsp{}
	s := testSequencer(t, f)

	if err := s.OnButtonA(); err != nil {
		t.Fatal(err)
	}
	expect(t, "state after first press", s.State().String(), Sleeping.String())
	expectCommands(t, f, "deep-sleep")

	if err := s.OnButtonA(); err != nil {
		t.Fatal(err)
	}
	expect(t, "state after second press", s.State().String(), Idle.String())
	expectCommands(t, f, "deep-sleep", "hard-reset")
}

func TestButtonANoOpOutsideIdleSleeping(t *testing.T) {
	f := &fakeEsp{}
	s := testSequencer(t, f)

	if err := s.OnButtonB(); err != nil { // Idle -> Connected
		t.Fatal(err)
	}
	if err := s.OnButtonA(); err != nil {
		t.Fatal(err)
	}
	expect(t, "state", s.State().String(), Connected.String())
	expectCommands(t, f, "join")
}

func TestButtonBSendCycle(t *testing.T) {
	f := &fakeEsp{}
	s := testSequencer(t, f)

	wantStates := []PowerState{Connected, SocketOpen, Sending, SocketOpen, Connected, Idle}
	for i, want := range wantStates {
		if err := s.OnButtonB(); err != nil {
			t.Fatalf("press #%d: %s", i+1, err)
		}
		if s.State() != want {
			t.Fatalf("press #%d: got %s, want %s", i+1, s.State(), want)
		}
	}
	expectCommands(t, f, "join", "open", "send", "close", "soft-reset")
	if len(f.payloads) != 1 {
		t.Errorf("datagrams sent: got %d, want 1", len(f.payloads))
	}
}

func TestButtonBIgnoredWhileSleeping(t *testing.T) {
	f := &fakeEsp{}
	s := testSequencer(t, f)

	if err := s.OnButtonA(); err != nil {
		t.Fatal(err)
	}
	if err := s.OnButtonB(); err != nil {
		t.Fatal(err)
	}
	expect(t, "state", s.State().String(), Sleeping.String())
	expectCommands(t, f, "deep-sleep")
}

func TestJoinFailureHaltsInIdle(t *testing.T) {
	f := &fakeEsp{failCmd: "join", failWith: esp01.ErrJoinFailed}
	s := testSequencer(t, f)

	err := s.OnButtonB()
	if !errors.Is(err, esp01.ErrJoinFailed) {
		t.Fatalf("got %v, want ErrJoinFailed", err)
	}
	expect(t, "state after failure", s.State().String(), Idle.String())
}

func TestPollOneEventPerTick(t *testing.T) {
	f := &fakeEsp{}
	a, pa, b, pb := testButtons(t, 0)
	s := NewSequencer(f, a, b, nil, nil)

	// both buttons down, only one event may fire
	pa.Set(gpio.Low)
	pb.Set(gpio.Low)
	if err := s.Poll(); err != nil {
		t.Fatal(err)
	}
	expect(t, "state", s.State().String(), Sleeping.String())
	expectCommands(t, f, "deep-sleep")
}

func TestHeldButtonSingleTransition(t *testing.T) {
	f := &fakeEsp{}
	a, pa, b, _ := testButtons(t, 0)
	s := NewSequencer(f, a, b, nil, nil)

	pa.Set(gpio.Low)
	for i := 0; i < 5; i++ {
		if err := s.Poll(); err != nil {
			t.Fatal(err)
		}
	}
	expect(t, "state while held", s.State().String(), Sleeping.String())
	expectCommands(t, f, "deep-sleep")

	// release, press again
	pa.Set(gpio.High)
	if err := s.Poll(); err != nil {
		t.Fatal(err)
	}
	pa.Set(gpio.Low)
	if err := s.Poll(); err != nil {
		t.Fatal(err)
	}
	expect(t, "state after second press", s.State().String(), Idle.String())
	expectCommands(t, f, "deep-sleep", "hard-reset")
}

func TestRunFailStop(t *testing.T) {
	f := &fakeEsp{failCmd: "join", failWith: esp01.ErrJoinFailed}
	a, _, b, pb := testButtons(t, 0)
	s := NewSequencer(f, a, b, nil, nil)

	pb.Set(gpio.Low)
	stop := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Run(stop, time.Millisecond)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, esp01.ErrJoinFailed) {
			t.Fatalf("got %v, want ErrJoinFailed", err)
		}
	case <-time.After(time.Second):
		close(stop)
		t.Fatal("Run did not halt on a join failure")
	}
}

func TestRunStops(t *testing.T) {
	f := &fakeEsp{}
	a, _, b, _ := testButtons(t, 0)
	s := NewSequencer(f, a, b, nil, nil)

	stop := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Run(stop, time.Millisecond)
	}()
	close(stop)

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after stop")
	}
}

func TestIndicatorsSingleStatePin(t *testing.T) {
	f := &fakeEsp{}
	a, _, b, _ := testButtons(t, 0)

	ind := &Indicators{}
	var pins [NumStates]*MemPin
	for i := range pins {
		pins[i] = NewMemPin(gpio.Low)
		ind.StatePins[i] = pins[i]
	}
	s := NewSequencer(f, a, b, ind, nil)

	check := func(stage string) {
		t.Helper()
		var high int
		for _, p := range pins {
			if p.Read() == gpio.High {
				high++
			}
		}
		if high != 1 {
			t.Errorf("%s: %d state pins high, want exactly 1", stage, high)
		}
		if pins[s.State()].Read() != gpio.High {
			t.Errorf("%s: pin for %s is not high", stage, s.State())
		}
	}

	check("initial")
	for i := 0; i < 6; i++ {
		if err := s.OnButtonB(); err != nil {
			t.Fatal(err)
		}
		check(s.State().String())
	}
}

func TestDefaultPayloadFormat(t *testing.T) {
	p := DefaultPayload()
	b := p()
	if len(b) == 0 || b[len(b)-1] != '\n' {
		t.Errorf("payload %q should be newline terminated", b)
	}
}
