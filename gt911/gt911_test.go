// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gt911

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

// fakeClock advances by the requested duration minus short on every Sleep.
type fakeClock struct {
	now   time.Time
	short time.Duration
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d - c.short)
}

// recordPin logs every level driven and every switch to input.
type recordPin struct {
	gpiotest.Pin
	levels []gpio.Level
	inputs int
	err    error
}

func (p *recordPin) Out(l gpio.Level) error {
	if p.err != nil {
		return p.err
	}
	p.levels = append(p.levels, l)
	return p.Pin.Out(l)
}

func (p *recordPin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.inputs++
	return p.Pin.In(pull, edge)
}

// failBus fails the n-th transaction without forwarding it.
type failBus struct {
	i2c.Bus
	fail  int
	count int
}

func (b *failBus) Tx(addr uint16, w, r []byte) error {
	n := b.count
	b.count++
	if n == b.fail {
		return errors.New("nack")
	}
	return b.Bus.Tx(addr, w, r)
}

func (b *failBus) SetSpeed(f physic.Frequency) error {
	return nil
}

var (
	opStatusIdle  = i2ctest.IO{Addr: AddrLow, W: []byte{0x81, 0x4E}, R: []byte{0x00}}
	opAck         = i2ctest.IO{Addr: AddrLow, W: []byte{0x81, 0x4E, 0x00}}
	opStatusOne   = i2ctest.IO{Addr: AddrLow, W: []byte{0x81, 0x4E}, R: []byte{0x81}}
	opPoint100200 = i2ctest.IO{Addr: AddrLow, W: []byte{0x81, 0x4F}, R: []byte{0x00, 100, 0, 200, 0, 0x20, 0, 0}}
)

func newTestDev(t *testing.T, bus i2c.Bus, rst *recordPin, clk *fakeClock) *Dev {
	d, err := New(bus, rst, clk, nil)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestNew(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	rst := &recordPin{Pin: gpiotest.Pin{N: "RST"}}
	for _, tc := range []struct {
		name    string
		bus     i2c.Bus
		rst     gpio.PinOut
		opts    *Opts
		wantErr bool
	}{
		{name: "default", bus: bus, rst: rst},
		{name: "high address", bus: bus, rst: rst, opts: &Opts{Addr: AddrHigh}},
		{name: "no bus", rst: rst, wantErr: true},
		{name: "no reset", bus: bus, wantErr: true},
		{name: "invalid reset", bus: bus, rst: gpio.INVALID, wantErr: true},
		{name: "bad address", bus: bus, rst: rst, opts: &Opts{Addr: 0x38}, wantErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, err := New(tc.bus, tc.rst, nil, tc.opts)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if d.opts.ResetHold != DefaultOpts.ResetHold || d.opts.BootDelay != DefaultOpts.BootDelay {
				t.Errorf("defaults not applied: %+v", d.opts)
			}
			if len(d.String()) == 0 {
				t.Error("String()")
			}
		})
	}
	if len(rst.levels) != 0 {
		t.Errorf("New touched the reset line: %v", rst.levels)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReset(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{opAck}, DontPanic: true}
	rst := &recordPin{Pin: gpiotest.Pin{N: "RST"}}
	clk := &fakeClock{}
	d := newTestDev(t, bus, rst, clk)

	if err := d.Reset(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rst.levels, []gpio.Level{gpio.Low, gpio.High}); diff != "" {
		t.Errorf("reset levels (-got +want):\n%s", diff)
	}
	want := []time.Duration{10 * time.Millisecond, 5 * time.Millisecond, 50 * time.Millisecond}
	if diff := cmp.Diff(clk.slept, want); diff != "" {
		t.Errorf("hold times (-got +want):\n%s", diff)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestResetWithInt(t *testing.T) {
	for _, tc := range []struct {
		name string
		addr uint16
		want gpio.Level
	}{
		{name: "0x5D", addr: AddrLow, want: gpio.Low},
		{name: "0x14", addr: AddrHigh, want: gpio.High},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bus := &i2ctest.Playback{Ops: []i2ctest.IO{{Addr: tc.addr, W: []byte{0x81, 0x4E, 0x00}}}, DontPanic: true}
			rst := &recordPin{Pin: gpiotest.Pin{N: "RST"}}
			irq := &recordPin{Pin: gpiotest.Pin{N: "INT"}}
			d, err := NewWithInt(bus, rst, irq, &fakeClock{}, &Opts{Addr: tc.addr})
			if err != nil {
				t.Fatal(err)
			}
			if err := d.Reset(); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(irq.levels, []gpio.Level{tc.want}); diff != "" {
				t.Errorf("INT levels (-got +want):\n%s", diff)
			}
			if irq.inputs != 1 {
				t.Errorf("INT not released: %d", irq.inputs)
			}
			if err := bus.Close(); err != nil {
				t.Fatal(err)
			}
		})
	}
	if _, err := NewWithInt(&i2ctest.Playback{}, &recordPin{}, nil, nil, nil); err == nil {
		t.Error("expected error for nil INT")
	}
}

func TestResetIdempotent(t *testing.T) {
	const n = 3
	var ops []i2ctest.IO
	for i := 0; i < n; i++ {
		ops = append(ops, opAck)
	}
	ops = append(ops, opStatusOne, opPoint100200, opAck)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	rst := &recordPin{Pin: gpiotest.Pin{N: "RST"}}
	clk := &fakeClock{}
	d := newTestDev(t, bus, rst, clk)

	for i := 0; i < n; i++ {
		if err := d.Reset(); err != nil {
			t.Fatal(err)
		}
	}
	if len(rst.levels) != 2*n || len(clk.slept) != 3*n {
		t.Errorf("each reset should pulse once: levels %v, holds %v", rst.levels, clk.slept)
	}
	s, err := d.ReadTouch()
	if err != nil {
		t.Fatal(err)
	}
	if want := (Sample{Contact: true, X: 100, Y: 200}); s != want {
		t.Errorf("ReadTouch() = %s, want %s", s, want)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestResetTiming(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	rst := &recordPin{Pin: gpiotest.Pin{N: "RST"}}
	d := newTestDev(t, bus, rst, &fakeClock{short: time.Millisecond})

	err := d.Reset()
	var te *TimingError
	if !errors.As(err, &te) {
		t.Fatalf("expected TimingError, got %v", err)
	}
	if te.Want != 10*time.Millisecond || te.Got != 9*time.Millisecond {
		t.Errorf("unexpected %v", te)
	}
	if diff := cmp.Diff(rst.levels, []gpio.Level{gpio.Low}); diff != "" {
		t.Errorf("reset levels (-got +want):\n%s", diff)
	}
	// No I²C transaction happened.
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestResetErrors(t *testing.T) {
	rst := &recordPin{Pin: gpiotest.Pin{N: "RST"}, err: errors.New("gpio")}
	d := newTestDev(t, &i2ctest.Playback{DontPanic: true}, rst, &fakeClock{})
	var be *BusError
	if err := d.Reset(); !errors.As(err, &be) || be.Op != "reset low" {
		t.Errorf("expected reset BusError, got %v", err)
	}

	d = newTestDev(t, &i2ctest.Playback{DontPanic: true}, &recordPin{}, &fakeClock{})
	if err := d.Reset(); !errors.As(err, &be) || be.Op != "ack" {
		t.Errorf("expected ack BusError, got %v", err)
	}
}

func TestReadTouch(t *testing.T) {
	for _, tc := range []struct {
		name string
		ops  []i2ctest.IO
		want []Sample
	}{
		{
			name: "idle twice",
			ops:  []i2ctest.IO{opStatusIdle, opStatusIdle},
			want: []Sample{Idle, Idle},
		},
		{
			name: "contact",
			ops:  []i2ctest.IO{opStatusOne, opPoint100200, opAck},
			want: []Sample{{Contact: true, X: 100, Y: 200}},
		},
		{
			name: "contact then release",
			ops: []i2ctest.IO{
				opStatusOne,
				{Addr: AddrLow, W: []byte{0x81, 0x4F}, R: []byte{0x01, 0x1F, 0x03, 0xDF, 0x01, 0, 0, 0}},
				opAck,
				{Addr: AddrLow, W: []byte{0x81, 0x4E}, R: []byte{0x80}},
				opAck,
				opStatusIdle,
			},
			want: []Sample{{Contact: true, X: 799, Y: 479}, Idle, Idle},
		},
		{
			name: "multiple contacts",
			ops: []i2ctest.IO{
				{Addr: AddrLow, W: []byte{0x81, 0x4E}, R: []byte{0x82}},
				{Addr: AddrLow, W: []byte{0x81, 0x4F}, R: []byte{0x00, 10, 0, 20, 0, 0, 0, 0}},
				opAck,
			},
			want: []Sample{{Contact: true, X: 10, Y: 20}},
		},
		{
			name: "bogus count",
			ops: []i2ctest.IO{
				{Addr: AddrLow, W: []byte{0x81, 0x4E}, R: []byte{0x8F}},
				opAck,
			},
			want: []Sample{Idle},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bus := &i2ctest.Playback{Ops: tc.ops, DontPanic: true}
			d := newTestDev(t, bus, &recordPin{}, &fakeClock{})
			var got []Sample
			for range tc.want {
				s, err := d.ReadTouch()
				if err != nil {
					t.Fatal(err)
				}
				got = append(got, s)
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("ReadTouch() (-got +want):\n%s", diff)
			}
			if err := bus.Close(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestReadTouchErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		bus := &i2ctest.Playback{DontPanic: true}
		d := newTestDev(t, bus, &recordPin{}, &fakeClock{})
		s, err := d.ReadTouch()
		var be *BusError
		if !errors.As(err, &be) || be.Op != "read status" {
			t.Fatalf("expected BusError, got %v", err)
		}
		if s != Idle {
			t.Errorf("got %s on error", s)
		}
	})
	t.Run("point still acknowledged", func(t *testing.T) {
		pb := &i2ctest.Playback{Ops: []i2ctest.IO{opStatusOne, opAck}, DontPanic: true}
		d := newTestDev(t, &failBus{Bus: pb, fail: 1}, &recordPin{}, &fakeClock{})
		_, err := d.ReadTouch()
		var be *BusError
		if !errors.As(err, &be) || be.Op != "read point" {
			t.Fatalf("expected BusError, got %v", err)
		}
		if err := pb.Close(); err != nil {
			t.Fatal(err)
		}
	})
	t.Run("ack", func(t *testing.T) {
		pb := &i2ctest.Playback{Ops: []i2ctest.IO{opStatusOne, opPoint100200}, DontPanic: true}
		d := newTestDev(t, &failBus{Bus: pb, fail: 2}, &recordPin{}, &fakeClock{})
		_, err := d.ReadTouch()
		var be *BusError
		if !errors.As(err, &be) || be.Op != "ack" {
			t.Fatalf("expected BusError, got %v", err)
		}
	})
}

func TestInfo(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: AddrLow, W: []byte{0x81, 0x40}, R: []byte{'9', '1', '1', 0}},
			{Addr: AddrLow, W: []byte{0x81, 0x44}, R: []byte{0x60, 0x10}},
			{Addr: AddrLow, W: []byte{0x80, 0x48}, R: []byte{0x20, 0x03, 0xE0, 0x01}},
		},
		DontPanic: true,
	}
	d := newTestDev(t, bus, &recordPin{}, &fakeClock{})
	id, err := d.ProductID()
	if err != nil {
		t.Fatal(err)
	}
	if id != "911" {
		t.Errorf("ProductID() = %q", id)
	}
	fw, err := d.FirmwareVersion()
	if err != nil {
		t.Fatal(err)
	}
	if fw != 0x1060 {
		t.Errorf("FirmwareVersion() = 0x%04X", fw)
	}
	res, err := d.Resolution()
	if err != nil {
		t.Fatal(err)
	}
	if res != image.Pt(800, 480) {
		t.Errorf("Resolution() = %v", res)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSample(t *testing.T) {
	if Idle.String() != "Idle" {
		t.Errorf("Idle.String() = %q", Idle)
	}
	s := Sample{Contact: true, X: 3, Y: 4}
	if s.String() != "Contact(3,4)" || s.Point() != image.Pt(3, 4) {
		t.Errorf("unexpected %s %v", s, s.Point())
	}
}
