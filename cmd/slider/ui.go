// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/GermanBionicSystems/rgbtouch/rgbpanel"
	"github.com/GermanBionicSystems/rgbtouch/uiport"
)

// Slider geometry, in pixels from the screen center.
const (
	trackWidth  = 300
	trackHeight = 10
	knobRadius  = 14
	labelOffset = 40
	fontSize    = 20
)

// ui is a screen with a slider between two labels: the value above it and
// "Speaker Volume" below it.
type ui struct {
	bounds   image.Rectangle
	dc       *gg.Context
	value    int
	dragging bool
}

func loadFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

func newUI(bounds image.Rectangle, face font.Face) *ui {
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.SetFontFace(face)
	return &ui{bounds: bounds, dc: dc}
}

func (u *ui) center() image.Point {
	return image.Pt(u.bounds.Dx()/2, u.bounds.Dy()/2)
}

func (u *ui) track() image.Rectangle {
	c := u.center()
	return image.Rect(c.X-trackWidth/2, c.Y-trackHeight/2, c.X+trackWidth/2, c.Y+trackHeight/2)
}

// damage covers everything that changes with the value.
func (u *ui) damage() image.Rectangle {
	c := u.center()
	t := u.track()
	r := image.Rect(t.Min.X-knobRadius-2, c.Y-labelOffset-fontSize, t.Max.X+knobRadius+2, c.Y+knobRadius+2)
	return r.Intersect(u.bounds)
}

// setValue clamps v to [0, 100] and reports whether the value changed.
func (u *ui) setValue(v int) bool {
	v = min(max(v, 0), 100)
	if v == u.value {
		return false
	}
	u.value = v
	return true
}

// handle updates the slider from a pointer event and reports whether it has
// to be redrawn. A press starts a drag only on the knob or the track.
func (u *ui) handle(ev uiport.PointerEvent) bool {
	if ev.State == uiport.Released {
		u.dragging = false
		return false
	}
	t := u.track()
	if !u.dragging {
		if !ev.Point.In(t.Inset(-knobRadius)) {
			return false
		}
		u.dragging = true
	}
	return u.setValue((ev.Point.X - t.Min.X) * 100 / t.Dx())
}

func (u *ui) render() image.Image {
	dc := u.dc
	c := u.center()
	t := u.track()
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	dc.SetRGB255(60, 60, 60)
	dc.DrawRoundedRectangle(float64(t.Min.X), float64(t.Min.Y), float64(t.Dx()), float64(t.Dy()), trackHeight/2)
	dc.Fill()
	kx := float64(t.Min.X + t.Dx()*u.value/100)
	if w := kx - float64(t.Min.X); w >= trackHeight {
		dc.SetRGB255(33, 150, 243)
		dc.DrawRoundedRectangle(float64(t.Min.X), float64(t.Min.Y), w, float64(t.Dy()), trackHeight/2)
		dc.Fill()
	}
	dc.SetRGB(1, 1, 1)
	dc.DrawCircle(kx, float64(c.Y), knobRadius)
	dc.Fill()

	dc.DrawStringAnchored(fmt.Sprintf("%%%d", u.value), float64(c.X), float64(c.Y-labelOffset), 0.5, 0.5)
	dc.DrawStringAnchored("Speaker Volume", float64(c.X), float64(c.Y+labelOffset), 0.5, 0.5)
	return dc.Image()
}

// flush sends r of img to f the way a draw buffer of lines lines would: one
// band at a time, presenting after the last one.
func flush(f *uiport.Flusher, img image.Image, r image.Rectangle, lines int) error {
	for y := r.Min.Y; y < r.Max.Y; y += lines {
		y2 := min(y+lines, r.Max.Y)
		a := uiport.Area{X1: int16(r.Min.X), Y1: int16(y), X2: int16(r.Max.X - 1), Y2: int16(y2 - 1)}
		if err := f.Flush(a, rgbpanel.ImagePixels(img, a.Rect()), y2 == r.Max.Y); err != nil {
			return fmt.Errorf("flush %s: %w", a, err)
		}
	}
	return nil
}
