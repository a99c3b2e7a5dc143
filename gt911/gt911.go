// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gt911

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// I²C addresses. The controller latches one of them from the level of INT
// when RST is released.
const (
	AddrLow  uint16 = 0x5D
	AddrHigh uint16 = 0x14
)

// Registers are 16 bits wide, sent MSB first.
const (
	regXResolution uint16 = 0x8048
	regProductID   uint16 = 0x8140
	regFirmware    uint16 = 0x8144
	regStatus      uint16 = 0x814E
	regPoint1      uint16 = 0x814F
)

const (
	statusBufferReady byte = 1 << 7
	statusPointsMask  byte = 0x0F
	maxPoints              = 5
	// Track id, X, Y, size (16 bits LE each but the id) and a reserved byte.
	pointSize = 8
)

// Clock is the time source used to honor the reset hold times.
//
// clock.Clock from github.com/benbjohnson/clock satisfies it.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Opts holds the configuration options for the device.
type Opts struct {
	// Addr is the I²C address, AddrLow or AddrHigh. When the INT line is
	// handed to NewWithInt the driver selects it during Reset, otherwise it
	// must match the board strapping.
	Addr uint16
	// ResetHold is how long RST is kept low. The datasheet minimum is 100µs.
	ResetHold time.Duration
	// AddrHold is how long INT is kept at the address level after RST is
	// released. The datasheet minimum is 5ms.
	AddrHold time.Duration
	// BootDelay is the wait before the first command after reset. The
	// datasheet minimum is 50ms.
	BootDelay time.Duration
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Addr:      AddrLow,
	ResetHold: 10 * time.Millisecond,
	AddrHold:  5 * time.Millisecond,
	BootDelay: 50 * time.Millisecond,
}

// Sample is the result of one poll. The zero value is Idle.
type Sample struct {
	// Contact is true when a finger is on the panel.
	Contact bool
	// X and Y are in panel pixels.
	X, Y uint16
}

// Idle means no contact.
var Idle = Sample{}

// Point returns the contact location.
func (s Sample) Point() image.Point {
	return image.Point{X: int(s.X), Y: int(s.Y)}
}

func (s Sample) String() string {
	if !s.Contact {
		return "Idle"
	}
	return fmt.Sprintf("Contact(%d,%d)", s.X, s.Y)
}

// Dev is a handle to a GT911.
//
// Reset must be called before the first ReadTouch.
type Dev struct {
	mu   sync.Mutex
	d    i2c.Dev
	rst  gpio.PinOut
	irq  gpio.PinIO
	clk  Clock
	opts Opts
	buf  [pointSize]byte
}

// New returns a handle to a GT911 whose INT line is not under software
// control. It does not access the hardware.
//
// clk can be nil to use the wall clock. opts can be nil for DefaultOpts.
func New(bus i2c.Bus, rst gpio.PinOut, clk Clock, opts *Opts) (*Dev, error) {
	return newDev(bus, rst, nil, clk, opts)
}

// NewWithInt is like New but also drives irq during Reset to select the I²C
// address in opts.Addr. irq is left as a floating input afterward.
func NewWithInt(bus i2c.Bus, rst gpio.PinOut, irq gpio.PinIO, clk Clock, opts *Opts) (*Dev, error) {
	if irq == nil {
		return nil, errors.New("gt911: use New when INT is not connected")
	}
	return newDev(bus, rst, irq, clk, opts)
}

func newDev(bus i2c.Bus, rst gpio.PinOut, irq gpio.PinIO, clk Clock, opts *Opts) (*Dev, error) {
	if bus == nil {
		return nil, errors.New("gt911: nil bus")
	}
	if rst == nil || rst == gpio.INVALID {
		return nil, errors.New("gt911: a reset line is required")
	}
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.Addr == 0 {
		o.Addr = DefaultOpts.Addr
	}
	if o.Addr != AddrLow && o.Addr != AddrHigh {
		return nil, fmt.Errorf("gt911: invalid address 0x%02X", o.Addr)
	}
	if o.ResetHold <= 0 {
		o.ResetHold = DefaultOpts.ResetHold
	}
	if o.AddrHold <= 0 {
		o.AddrHold = DefaultOpts.AddrHold
	}
	if o.BootDelay <= 0 {
		o.BootDelay = DefaultOpts.BootDelay
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Dev{
		d:    i2c.Dev{Bus: bus, Addr: o.Addr},
		rst:  rst,
		irq:  irq,
		clk:  clk,
		opts: o,
	}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("gt911.Dev{%s, %s}", d.d.String(), d.rst)
}

// Halt implements conn.Resource.
//
// The controller only talks when polled so there is nothing to stop.
func (d *Dev) Halt() error {
	return nil
}

// Reset pulses RST and waits for the controller to boot, then drops any
// pending report. The controller is back to its power-on register state
// afterward, so calling Reset again is harmless.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.rst.Out(gpio.Low); err != nil {
		return &BusError{Op: "reset low", Err: err}
	}
	if d.irq != nil {
		// INT low selects 0x5D, high selects 0x14.
		l := gpio.Low
		if d.opts.Addr == AddrHigh {
			l = gpio.High
		}
		if err := d.irq.Out(l); err != nil {
			return &BusError{Op: "select address", Err: err}
		}
	}
	if err := d.hold("reset low", d.opts.ResetHold); err != nil {
		return err
	}
	if err := d.rst.Out(gpio.High); err != nil {
		return &BusError{Op: "reset high", Err: err}
	}
	if err := d.hold("address latch", d.opts.AddrHold); err != nil {
		return err
	}
	if d.irq != nil {
		if err := d.irq.In(gpio.Float, gpio.NoEdge); err != nil {
			return &BusError{Op: "release int", Err: err}
		}
	}
	if err := d.hold("boot", d.opts.BootDelay); err != nil {
		return err
	}
	return d.ack()
}

// ReadTouch polls the controller.
//
// It costs a single transaction when no report is pending. Otherwise the
// first contact is read and the report is acknowledged, even when reading
// the contact failed. Errors are not retried.
func (d *Dev) ReadTouch() (Sample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := d.buf[:1]
	if err := d.readReg(regStatus, status); err != nil {
		return Idle, &BusError{Op: "read status", Err: err}
	}
	if status[0]&statusBufferReady == 0 {
		return Idle, nil
	}

	s := Idle
	var err error
	if n := status[0] & statusPointsMask; n > 0 && n <= maxPoints {
		p := d.buf[:pointSize]
		if err = d.readReg(regPoint1, p); err != nil {
			err = &BusError{Op: "read point", Err: err}
		} else {
			s = Sample{
				Contact: true,
				X:       binary.LittleEndian.Uint16(p[1:]),
				Y:       binary.LittleEndian.Uint16(p[3:]),
			}
		}
	}
	if ackErr := d.ack(); err == nil {
		err = ackErr
	}
	if err != nil {
		return Idle, err
	}
	return s, nil
}

// ProductID returns the product identifier, "911" for a GT911.
func (d *Dev) ProductID() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var b [4]byte
	if err := d.readReg(regProductID, b[:]); err != nil {
		return "", &BusError{Op: "read product id", Err: err}
	}
	return strings.TrimRight(string(b[:]), "\x00"), nil
}

// FirmwareVersion returns the firmware version.
func (d *Dev) FirmwareVersion() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var b [2]byte
	if err := d.readReg(regFirmware, b[:]); err != nil {
		return 0, &BusError{Op: "read firmware version", Err: err}
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

// Resolution returns the coordinate range configured in the controller.
func (d *Dev) Resolution() (image.Point, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var b [4]byte
	if err := d.readReg(regXResolution, b[:]); err != nil {
		return image.Point{}, &BusError{Op: "read resolution", Err: err}
	}
	return image.Point{
		X: int(binary.LittleEndian.Uint16(b[0:])),
		Y: int(binary.LittleEndian.Uint16(b[2:])),
	}, nil
}

// ack clears the buffer status so the controller reports the next event.
func (d *Dev) ack() error {
	if err := d.d.Tx([]byte{byte(regStatus >> 8), byte(regStatus & 0xFF), 0}, nil); err != nil {
		return &BusError{Op: "ack", Err: err}
	}
	return nil
}

func (d *Dev) readReg(reg uint16, r []byte) error {
	return d.d.Tx([]byte{byte(reg >> 8), byte(reg)}, r)
}

func (d *Dev) hold(op string, want time.Duration) error {
	start := d.clk.Now()
	d.clk.Sleep(want)
	if got := d.clk.Now().Sub(start); got < want {
		return &TimingError{Op: op, Want: want, Got: got}
	}
	return nil
}

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = Sample{}
