// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen2d implements an rgbpanel.Engine that scans frame memory out
// to the terminal (stdout) using ANSI color codes.
//
// Useful to run the UI on the workstation while the board is not around.
package screen2d

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/GermanBionicSystems/rgbtouch/rgb565"
	"github.com/GermanBionicSystems/rgbtouch/rgbpanel"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
)

// Opts represents the options available for this engine.
type Opts struct {
	// Width and Height of the frame memory in pixels.
	Width  int
	Height int
	// Buffers is the number of frame buffers, 1 or 2. 0 means 1.
	Buffers int
	// Scale shows one terminal cell per Scale x Scale pixels. 0 means 1.
	Scale   int
	Palette *ansi256.Palette
	// Out is where frames are printed. Defaults to stdout.
	Out io.Writer

	_ struct{}
}

// Dev is a panel emulator that outputs to the console.
type Dev struct {
	mu      sync.Mutex
	w       io.Writer
	palette ansi256.Palette
	width   int
	height  int
	scale   int

	frames [][]byte
	front  int
	ctrl   byte
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) (*Dev, error) {
	if opts == nil {
		return nil, errors.New("screen2d: opts are required for the frame size")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("screen2d: invalid size %dx%d", opts.Width, opts.Height)
	}
	n := opts.Buffers
	if n == 0 {
		n = 1
	}
	if n != 1 && n != 2 {
		return nil, fmt.Errorf("screen2d: invalid buffer count %d", n)
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	d := &Dev{
		w:       w,
		palette: *p,
		width:   opts.Width,
		height:  opts.Height,
		scale:   scale,
		frames:  make([][]byte, n),
	}
	for i := range d.frames {
		d.frames[i] = make([]byte, 2*opts.Width*opts.Height)
	}
	return d, nil
}

func (d *Dev) String() string {
	return "Screen2D"
}

// Duplex implements conn.Conn.
func (d *Dev) Duplex() conn.Duplex {
	return conn.Half
}

// Tx implements conn.Conn. It is the register port of the emulated timing
// generator; reads are not supported.
func (d *Dev) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("screen2d: register read not supported")
	}
	if len(w) < 2 {
		return errors.New("screen2d: register write too short")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	switch w[0] {
	case rgbpanel.RegControl:
		d.ctrl = w[1]
		if d.ctrl&(rgbpanel.CtrlScan|rgbpanel.CtrlRefresh) != 0 {
			return d.refresh()
		}
		if d.ctrl == 0 {
			_, err := d.w.Write([]byte("\033[0m\n"))
			return err
		}
	case rgbpanel.RegFBSelect:
		if int(w[1]) >= len(d.frames) {
			return fmt.Errorf("screen2d: no frame buffer %d", w[1])
		}
		d.front = int(w[1])
		if d.ctrl&rgbpanel.CtrlScan != 0 {
			return d.refresh()
		}
	case rgbpanel.RegTiming:
		// Address, PCLK, then HRes as the first timing value and VRes as the
		// fifth.
		if len(w) != 23 {
			return fmt.Errorf("screen2d: timing block of %d bytes", len(w))
		}
		hres := int(binary.LittleEndian.Uint16(w[5:]))
		vres := int(binary.LittleEndian.Uint16(w[13:]))
		if hres != d.width || vres != d.height {
			return fmt.Errorf("screen2d: timings for %dx%d on a %dx%d frame", hres, vres, d.width, d.height)
		}
	default:
		return fmt.Errorf("screen2d: unknown register 0x%02X", w[0])
	}
	return nil
}

// WriteFrame implements rgbpanel.Engine.
//
// A write to the buffer being scanned out is shown right away when the scan
// is free running.
func (d *Dev) WriteFrame(fb, off int, p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(fb, off, len(p)); err != nil {
		return err
	}
	copy(d.frames[fb][off:], p)
	if fb == d.front && d.ctrl&rgbpanel.CtrlScan != 0 {
		return d.refresh()
	}
	return nil
}

// CopyFrame implements rgbpanel.Engine.
func (d *Dev) CopyFrame(dst, src, off, n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(dst, off, n); err != nil {
		return err
	}
	if err := d.check(src, off, n); err != nil {
		return err
	}
	copy(d.frames[dst][off:off+n], d.frames[src][off:off+n])
	return nil
}

// WaitVBlank implements rgbpanel.Engine. The terminal is always in blanking.
func (d *Dev) WaitVBlank() error {
	return nil
}

// Frame returns a copy of frame buffer fb.
func (d *Dev) Frame(fb int) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.frames[fb]...)
}

func (d *Dev) check(fb, off, n int) error {
	if fb < 0 || fb >= len(d.frames) {
		return fmt.Errorf("screen2d: no frame buffer %d", fb)
	}
	if off < 0 || n < 0 || off+n > len(d.frames[fb]) {
		return fmt.Errorf("screen2d: %d bytes at %d outside of frame memory", n, off)
	}
	return nil
}

// refresh prints the front buffer, top left pixel of each cell.
func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\033[H\033[0m")
	f := d.frames[d.front]
	for y := 0; y < d.height; y += d.scale {
		for x := 0; x < d.width; x += d.scale {
			o := 2 * (y*d.width + x)
			r, g, b := (rgb565.Color(f[o]) | rgb565.Color(f[o+1])<<8).RGB()
			_, _ = io.WriteString(&d.buf, d.palette.Block(color.NRGBA{r, g, b, 255}))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ rgbpanel.Engine = &Dev{}
