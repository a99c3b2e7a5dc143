// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgbpanel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"iter"

	"github.com/GermanBionicSystems/rgbtouch/rgb565"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// Engine is the RGB interface controller.
//
// Its conn.Conn is the register port of the timing generator: the first byte
// of every write is the register address, following bytes are written to
// consecutive registers.
type Engine interface {
	conn.Conn
	// WriteFrame copies p into frame buffer fb at byte offset off. It
	// blocks until the transfer completed and does not retain p.
	WriteFrame(fb, off int, p []byte) error
	// CopyFrame copies n bytes at byte offset off from frame buffer src to
	// frame buffer dst.
	CopyFrame(dst, src, off, n int) error
	// WaitVBlank blocks until the scan reaches the vertical blanking
	// interval.
	WaitVBlank() error
}

// Past this many pending rectangles Present syncs their union instead.
const maxDirty = 16

// Dev is an open handle to the panel.
//
// It is not safe for concurrent use.
type Dev struct {
	e      Engine
	opts   Opts
	rect   image.Rectangle
	stride int
	// buf batches lines before a transfer; its capacity is
	// TransferLines*stride.
	buf []byte

	// front is the frame buffer being scanned out.
	front int
	// dirty is what was drawn to the back buffer since the last Present.
	dirty []image.Rectangle
	// stale is what the back buffer still has to copy from the front
	// buffer after a swap. It is synced before the back buffer is written
	// or swapped again.
	stale []image.Rectangle
}

// New validates opts, programs the timing generator and starts the scan.
// opts can be nil for Sunton8048S043.
//
// On a ConfigError nothing was written to the controller.
func New(e Engine, opts *Opts) (*Dev, error) {
	if e == nil {
		return nil, errors.New("rgbpanel: nil engine")
	}
	if opts == nil {
		opts = &Sunton8048S043
	}
	o := *opts
	if o.Limits == (Limits{}) {
		o.Limits = DefaultLimits
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if o.Config.TransferLines == 0 {
		o.Config.TransferLines = 1
	}
	stride := 2 * o.Config.Width
	d := &Dev{
		e:      e,
		opts:   o,
		rect:   image.Rect(0, 0, o.Config.Width, o.Config.Height),
		stride: stride,
		buf:    make([]byte, 0, o.Config.TransferLines*stride),
	}
	// The whole timing block is one burst so the generator is never left
	// half programmed.
	if err := e.Tx(o.timingBlock(), nil); err != nil {
		return nil, &TransferError{Op: "program timings", Err: err}
	}
	ctrl := CtrlScan
	if o.Flags.RefreshOnDemand {
		ctrl = CtrlOneShot
	}
	if err := d.writeReg(RegControl, ctrl); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("rgbpanel.Dev{%s, %dx%d}", d.e, d.rect.Dx(), d.rect.Dy())
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return rgb565.Model
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Halt implements conn.Resource. It stops the scan.
func (d *Dev) Halt() error {
	return d.writeReg(RegControl, 0)
}

// SetPixels copies exactly r.Dx()*r.Dy() colors, row by row starting at
// r.Min, into frame memory.
//
// r must be non empty and inside Bounds, otherwise a RegionError is returned
// before anything is read from colors. rgb565.Color values are copied as is,
// others are converted. If colors ends early an UnderflowError is returned;
// the lines already transferred stay in frame memory.
//
// With Flags.DoubleFB the pixels go to the back buffer and show up on the
// next Present.
func (d *Dev) SetPixels(r image.Rectangle, colors iter.Seq[color.Color]) error {
	if err := d.checkRegion(r); err != nil {
		return err
	}
	if err := d.syncStale(); err != nil {
		return err
	}
	fb := d.back()
	total := r.Dx() * r.Dy()
	rowBytes := 2 * r.Dx()
	// Full lines are contiguous in frame memory.
	batch := 1
	if r.Dx() == d.rect.Dx() {
		batch = d.opts.Config.TransferLines
	}

	buf := d.buf[:0]
	y, rows, n := r.Min.Y, 0, 0
	for c := range colors {
		p, ok := c.(rgb565.Color)
		if !ok {
			p = rgb565.Model.Convert(c).(rgb565.Color)
		}
		buf = append(buf, byte(p), byte(p>>8))
		n++
		if len(buf) == (rows+1)*rowBytes {
			rows++
			if rows == batch || n == total {
				if err := d.transfer(fb, r.Min.X, y, buf); err != nil {
					return err
				}
				y += rows
				rows = 0
				buf = buf[:0]
			}
		}
		if n == total {
			break
		}
	}
	if n < total {
		return &UnderflowError{Want: total, Got: n}
	}
	d.damage(r)
	return nil
}

// Present makes the pixels written since the previous call visible.
//
// With Flags.DoubleFB it waits for the vertical blank, swaps the buffers and
// copies the changed rectangles into the new back buffer. If that copy
// fails, calling Present again finishes it. With Flags.RefreshOnDemand it
// sends one frame. Otherwise the scan is free running and there is nothing to
// do.
func (d *Dev) Present() error {
	if err := d.syncStale(); err != nil {
		return err
	}
	if d.opts.Flags.DoubleFB && len(d.dirty) != 0 {
		if err := d.e.WaitVBlank(); err != nil {
			return &TransferError{Op: "wait vblank", Err: err}
		}
		back := d.back()
		if err := d.writeReg(RegFBSelect, byte(back)); err != nil {
			return err
		}
		d.front = back
		d.stale = append(d.stale[:0], d.dirty...)
		d.dirty = d.dirty[:0]
		if err := d.syncStale(); err != nil {
			return err
		}
	}
	if d.opts.Flags.RefreshOnDemand {
		return d.writeReg(RegControl, CtrlOneShot|CtrlRefresh)
	}
	return nil
}

// Draw implements display.Drawer.
//
// r is clipped to the panel and to src. An *rgb565.Image is copied straight
// from its Pix, other images are converted pixel by pixel. The result is
// presented before returning.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	delta := sp.Sub(r.Min)
	r = r.Intersect(d.rect).Intersect(src.Bounds().Sub(delta))
	if r.Empty() {
		return nil
	}
	if img, ok := src.(*rgb565.Image); ok {
		if err := d.syncStale(); err != nil {
			return err
		}
		fb := d.back()
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := img.Row(y+delta.Y, r.Min.X+delta.X, r.Max.X+delta.X)
			if err := d.transfer(fb, r.Min.X, y, row); err != nil {
				return err
			}
		}
		d.damage(r)
	} else if err := d.SetPixels(r, ImagePixels(src, r.Add(delta))); err != nil {
		return err
	}
	return d.Present()
}

// Write writes a full frame of little endian RGB565 pixels and presents it.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != d.stride*d.rect.Dy() {
		return 0, fmt.Errorf("rgbpanel: invalid pixel stream length; expected %d bytes, got %d bytes", d.stride*d.rect.Dy(), len(pixels))
	}
	if err := d.syncStale(); err != nil {
		return 0, err
	}
	if err := d.transfer(d.back(), 0, 0, pixels); err != nil {
		return 0, err
	}
	d.damage(d.rect)
	if err := d.Present(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// ImagePixels returns the colors of src inside r in row-major order.
func ImagePixels(src image.Image, r image.Rectangle) iter.Seq[color.Color] {
	return func(yield func(color.Color) bool) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if !yield(src.At(x, y)) {
					return
				}
			}
		}
	}
}

func (d *Dev) checkRegion(r image.Rectangle) error {
	if r.Empty() || !r.In(d.rect) {
		return &RegionError{Region: r, Bounds: d.rect}
	}
	return nil
}

// back is the frame buffer drawn to.
func (d *Dev) back() int {
	if d.opts.Flags.DoubleFB {
		return 1 - d.front
	}
	return d.front
}

func (d *Dev) damage(r image.Rectangle) {
	if !d.opts.Flags.DoubleFB {
		return
	}
	for _, p := range d.dirty {
		if r.In(p) {
			return
		}
	}
	d.dirty = append(d.dirty, r)
	if len(d.dirty) > maxDirty {
		u := image.Rectangle{}
		for _, p := range d.dirty {
			u = u.Union(p)
		}
		d.dirty = append(d.dirty[:0], u)
	}
}

// syncStale copies the stale rectangles into the back buffer. A rectangle is
// dropped only once copied.
func (d *Dev) syncStale() error {
	for len(d.stale) != 0 {
		if err := d.sync(d.stale[0]); err != nil {
			return err
		}
		d.stale = d.stale[1:]
	}
	return nil
}

// sync copies r from the front buffer to the back buffer.
func (d *Dev) sync(r image.Rectangle) error {
	if r.Dx() == d.rect.Dx() {
		return d.copy(d.offset(0, r.Min.Y), r.Dy()*d.stride)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if err := d.copy(d.offset(r.Min.X, y), 2*r.Dx()); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dev) copy(off, n int) error {
	if err := d.e.CopyFrame(d.back(), d.front, off, n); err != nil {
		return &TransferError{Op: "sync back buffer", Err: err}
	}
	return nil
}

func (d *Dev) transfer(fb, x, y int, p []byte) error {
	if err := d.e.WriteFrame(fb, d.offset(x, y), p); err != nil {
		return &TransferError{Op: "write frame", Err: err}
	}
	return nil
}

func (d *Dev) offset(x, y int) int {
	return y*d.stride + 2*x
}

func (d *Dev) writeReg(reg, v byte) error {
	if err := d.e.Tx([]byte{reg, v}, nil); err != nil {
		return &TransferError{Op: fmt.Sprintf("write register 0x%02X", reg), Err: err}
	}
	return nil
}

var _ display.Drawer = &Dev{}
