package esp01

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

var ErrEmptyRead = errors.New("message was empty")
var ErrCommandFailed = errors.New("esp-01 rejected command")
var ErrJoinFailed = errors.New("could not join access point")
var ErrTransport = errors.New("udp transport error")

//go:generate stringer -type=LinkState
type LinkState int

const (
	Disconnected    LinkState = LinkState(iota)
	Connected       LinkState = LinkState(iota)
	WriteError      LinkState = LinkState(iota)
	ReadError       LinkState = LinkState(iota)
	UnexpectedError LinkState = LinkState(iota)
	NilEsp          LinkState = LinkState(iota)
)

// ResetLine is the gpio line wired to the esp-01 reset pin. Only Out is
// needed: the line is driven, never read back. gpio.PinIO satisfies it.
type ResetLine interface {
	Out(l gpio.Level) error
}

type Config struct {
	SSID           string // access point to join on the Connected transition
	Password       string
	RemoteIP       string // udp destination for the Sending transition
	RemotePort     int
	CommandTimeout time.Duration // answer deadline for short commands
	JoinTimeout    time.Duration // CWJAP can take a while
	ResetDelay     time.Duration // how long the reset line is held low
}

var DefaultConfig = Config{
	RemoteIP:       "192.168.41.20",
	RemotePort:     6600,
	CommandTimeout: 2 * time.Second,
	JoinTimeout:    20 * time.Second,
	ResetDelay:     100 * time.Millisecond,
}

// Esp is the handle on the esp-01 coprocessor. It is the sole owner of the
// serial link and the reset line, and issues one command at a time.
type Esp struct {
	sync.Mutex
	Conn   Link
	config *Config
	reset  ResetLine
	state  LinkState
}

func New(conn Link, reset ResetLine, cfg *Config) (esp *Esp, err error) {
	if conn == nil {
		conn, err = FindSerial(nil)
		if err != nil {
			return nil, err
		}
	}
	if cfg == nil {
		c := DefaultConfig
		cfg = &c
	}

	esp = &Esp{
		Conn:   conn,
		config: cfg,
		state:  Connected,
	}
	if reset != nil {
		esp.reset = reset
		// run level, esp-01 reset is active-low
		err = reset.Out(gpio.High)
		if err != nil {
			return nil, err
		}
	}

	_, err = esp.TestConnection()
	return esp, err
}

const (
	pingRetries  = 16
	testConnPoll = time.Millisecond * 250
)

// TestConnection sends an AT ping every testConnPoll,
// and returns on success or after pingRetries tries.
func (e *Esp) TestConnection() (_ time.Duration, err error) {
	t0 := time.Now()
	for i := 0; i < pingRetries; i++ {
		time.Sleep(testConnPoll)
		err = e.Ping()
		if err == nil {
			break
		}
	}
	return time.Since(t0), err
}

// Ping checks the esp-01 still answers AT.
func (e *Esp) Ping() error {
	e.Lock()
	defer e.Unlock()
	_, err := e.command(CmdPing, e.config.CommandTimeout, TokenOK)
	return err
}

// JoinAP puts the esp-01 in station mode and joins the configured
// access point. Failures map to ErrJoinFailed, without retry.
func (e *Esp) JoinAP() error {
	e.Lock()
	defer e.Unlock()
	_, err := e.command(CmdStationMode, e.config.CommandTimeout, TokenOK)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrJoinFailed, err)
	}
	cmd := fmt.Sprintf("%s=%q,%q", CmdJoinAP, e.config.SSID, e.config.Password)
	_, err = e.command(cmd, e.config.JoinTimeout, TokenOK)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrJoinFailed, err)
	}
	return nil
}

// OpenUDP opens the single udp endpoint towards the configured destination.
func (e *Esp) OpenUDP() error {
	e.Lock()
	defer e.Unlock()
	cmd := fmt.Sprintf("%s=\"UDP\",%q,%d", CmdOpenConn, e.config.RemoteIP, e.config.RemotePort)
	_, err := e.command(cmd, e.config.CommandTimeout, TokenOK)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTransport, err)
	}
	return nil
}

// SendUDP transmits one best-effort datagram on the open endpoint.
// No acknowledgment is awaited beyond the esp-01's own SEND OK.
func (e *Esp) SendUDP(payload []byte) error {
	e.Lock()
	defer e.Unlock()
	cmd := fmt.Sprintf("%s=%d", CmdSend, len(payload))
	_, err := e.command(cmd, e.config.CommandTimeout, TokenPrompt)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTransport, err)
	}
	err = e.Conn.Write(payload)
	if err != nil {
		e.state = WriteError
		return fmt.Errorf("%w: %s", ErrTransport, err)
	}
	_, err = e.expect(e.config.CommandTimeout, TokenSendOK)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTransport, err)
	}
	return nil
}

// CloseUDP tears the udp endpoint down.
func (e *Esp) CloseUDP() error {
	e.Lock()
	defer e.Unlock()
	_, err := e.command(CmdCloseConn, e.config.CommandTimeout, TokenOK)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTransport, err)
	}
	return nil
}

// SoftReset restarts the esp-01 firmware, dropping any access point
// association, and waits for the ready banner.
func (e *Esp) SoftReset() error {
	e.Lock()
	defer e.Unlock()
	_, err := e.command(CmdSoftReset, e.config.JoinTimeout, TokenReady)
	return err
}

// HardReset pulses the reset line low. This is the only way out of a
// zero-duration deep sleep.
func (e *Esp) HardReset() error {
	e.Lock()
	defer e.Unlock()
	if e.reset == nil {
		return errors.New("no reset line wired")
	}
	if err := e.reset.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(e.config.ResetDelay)
	if err := e.reset.Out(gpio.High); err != nil {
		return err
	}
	_, err := e.expect(e.config.JoinTimeout, TokenReady)
	return err
}

// DeepSleep sends the esp-01 to deep sleep. A zero duration means sleep
// until the reset line wakes it; the call itself returns once the esp-01
// acknowledged the command.
func (e *Esp) DeepSleep(d time.Duration) error {
	e.Lock()
	defer e.Unlock()
	cmd := fmt.Sprintf("%s=%d", CmdDeepSleep, d.Milliseconds())
	_, err := e.command(cmd, e.config.CommandTimeout, TokenOK)
	return err
}

func (e *Esp) Config() Config {
	return *e.config
}

func (e *Esp) State() LinkState {
	if e == nil {
		return NilEsp
	}
	e.Lock()
	defer e.Unlock()
	return e.state
}

// command writes cmd CRLF-terminated, then waits for want.
// All higher level functions should use command as a wrapper.
func (e *Esp) command(cmd string, timeout time.Duration, want string) (string, error) {
	err := e.Conn.Write([]byte(cmd + crlfStr))
	if err != nil {
		e.state = WriteError
		return "", err
	}
	return e.expect(timeout, want)
}

// expect accumulates answer chunks from the link until want, ERROR or
// FAIL shows up, or timeout passes. ERROR/FAIL map to ErrCommandFailed.
func (e *Esp) expect(timeout time.Duration, want string) (string, error) {
	var buf bytes.Buffer
	deadline := time.Now().Add(timeout)
	for {
		b, err := e.Conn.Read()
		if err != nil {
			e.state = ReadError
			return buf.String(), err
		}
		buf.Write(b)
		s := buf.String()
		if strings.Contains(s, want) {
			e.state = Connected
			return s, nil
		}
		if want != TokenError && (strings.Contains(s, TokenError) || strings.Contains(s, TokenFail)) {
			e.state = Connected
			return s, fmt.Errorf("%w: %s", ErrCommandFailed, lastLine(s))
		}
		if time.Now().After(deadline) {
			e.state = UnexpectedError
			if buf.Len() == 0 {
				return s, ErrEmptyRead
			}
			return s, fmt.Errorf("timeout waiting for %q", want)
		}
	}
}
