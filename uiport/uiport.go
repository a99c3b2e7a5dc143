// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package uiport

import (
	"fmt"
	"image"
	"image/color"
	"iter"

	"github.com/GermanBionicSystems/rgbtouch/gt911"
)

// Panel is the pixel sink, usually a *rgbpanel.Dev.
type Panel interface {
	SetPixels(r image.Rectangle, colors iter.Seq[color.Color]) error
	Present() error
}

// TouchSource is the touch sensor, usually a *gt911.Dev.
type TouchSource interface {
	ReadTouch() (gt911.Sample, error)
}

// Area is a damage rectangle with inclusive corners, as graphics libraries
// report them.
type Area struct {
	X1, Y1, X2, Y2 int16
}

// Rect returns the equivalent exclusive rectangle. The corners are not
// reordered, an inverted Area gives an empty rectangle.
func (a Area) Rect() image.Rectangle {
	return image.Rectangle{
		Min: image.Point{X: int(a.X1), Y: int(a.Y1)},
		Max: image.Point{X: int(a.X2) + 1, Y: int(a.Y2) + 1},
	}
}

func (a Area) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", a.X1, a.Y1, a.X2, a.Y2)
}

// Flusher copies rendered areas to a Panel.
type Flusher struct {
	p Panel
}

// NewFlusher returns a Flusher writing to p.
func NewFlusher(p Panel) *Flusher {
	return &Flusher{p: p}
}

// Flush writes colors to a and, when last is set, presents the frame.
//
// It returns once colors was fully consumed so the caller can reuse its draw
// buffer. Errors from the panel are returned as is.
func (f *Flusher) Flush(a Area, colors iter.Seq[color.Color], last bool) error {
	if err := f.p.SetPixels(a.Rect(), colors); err != nil {
		return err
	}
	if last {
		return f.p.Present()
	}
	return nil
}

// State is the pointer button state.
type State int

// Pointer states.
const (
	Released State = iota
	Pressed
)

func (s State) String() string {
	switch s {
	case Released:
		return "Released"
	case Pressed:
		return "Pressed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PointerEvent is a single report, not a held state.
type PointerEvent struct {
	State State
	Point image.Point
}

func (e PointerEvent) String() string {
	return fmt.Sprintf("%s%v", e.State, e.Point)
}

// Pointer turns touch samples into pointer events.
//
// It is not safe for concurrent use.
type Pointer struct {
	t    TouchSource
	last image.Point
}

// NewPointer returns a Pointer polling t.
func NewPointer(t TouchSource) *Pointer {
	return &Pointer{t: t}
}

// Read polls the touch source once.
//
// A contact is reported Pressed at its position. Otherwise Released is
// reported at the last contact position, the origin if there was none. On
// error the state is unchanged and nothing is retried.
func (p *Pointer) Read() (PointerEvent, error) {
	s, err := p.t.ReadTouch()
	if err != nil {
		return PointerEvent{}, err
	}
	if !s.Contact {
		return PointerEvent{State: Released, Point: p.last}, nil
	}
	p.last = s.Point()
	return PointerEvent{State: Pressed, Point: p.last}, nil
}
