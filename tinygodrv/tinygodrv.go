// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tinygodrv

import (
	"errors"
	"fmt"
	"sync"

	"github.com/GermanBionicSystems/rgbtouch/gt911"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/touch"
)

// baudRater is implemented by machine.I2C.
type baudRater interface {
	SetBaudRate(br uint32) error
}

// Bus is a periph i2c.Bus on top of a drivers.I2C.
type Bus struct {
	mu   sync.Mutex
	bus  drivers.I2C
	name string
}

// NewBus wraps b. name is returned by String.
func NewBus(b drivers.I2C, name string) (*Bus, error) {
	if b == nil {
		return nil, errors.New("tinygodrv: nil bus")
	}
	return &Bus{bus: b, name: name}, nil
}

func (b *Bus) String() string {
	return b.name
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.bus.Tx(addr, w, r); err != nil {
		return fmt.Errorf("tinygodrv: %s: %w", b.name, err)
	}
	return nil
}

// SetSpeed implements i2c.Bus.
//
// It only works when the wrapped bus can change its baud rate after
// configuration, like machine.I2C.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	br, ok := b.bus.(baudRater)
	if !ok {
		return fmt.Errorf("tinygodrv: %s: speed is fixed at configuration", b.name)
	}
	if f < physic.Hertz || f > 10*physic.MegaHertz {
		return fmt.Errorf("tinygodrv: invalid speed %s", f)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return br.SetBaudRate(uint32(f / physic.Hertz))
}

// TouchSource is usually a *gt911.Dev.
type TouchSource interface {
	ReadTouch() (gt911.Sample, error)
}

// Pressure is the Point.Z reported for any contact.
const Pressure = 0xFFFF

// Pointer implements touch.Pointer.
type Pointer struct {
	t   TouchSource
	err error
}

// NewPointer returns a touch.Pointer reading from t.
func NewPointer(t TouchSource) *Pointer {
	return &Pointer{t: t}
}

// ReadTouchPoint implements touch.Pointer.
//
// Z is 0 when there is no contact or when the read failed; see Err.
func (p *Pointer) ReadTouchPoint() touch.Point {
	s, err := p.t.ReadTouch()
	p.err = err
	if err != nil || !s.Contact {
		return touch.Point{}
	}
	return touch.Point{X: int(s.X), Y: int(s.Y), Z: Pressure}
}

// Err returns the error of the last ReadTouchPoint call, if any.
func (p *Pointer) Err() error {
	return p.err
}

var _ i2c.Bus = &Bus{}
var _ touch.Pointer = &Pointer{}
