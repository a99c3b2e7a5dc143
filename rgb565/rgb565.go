// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgb565

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Color is a RGB565 encoded pixel: rrrrrggggggbbbbb.
type Color uint16

// New packs 8 bits per channel into a Color, dropping the low bits.
func New(r, g, b uint8) Color {
	return Color(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// RGB returns the color expanded to 8 bits per channel.
//
// The low bits are filled with the high bits so that full intensity maps to
// 0xFF.
func (c Color) RGB() (r, g, b uint8) {
	r5 := uint8(c>>11) & 0x1F
	g6 := uint8(c>>5) & 0x3F
	b5 := uint8(c) & 0x1F
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// RGBA implements color.Color. The color is always opaque.
func (c Color) RGBA() (uint32, uint32, uint32, uint32) {
	r, g, b := c.RGB()
	return uint32(r) * 0x101, uint32(g) * 0x101, uint32(b) * 0x101, 0xFFFF
}

func (c Color) String() string {
	return fmt.Sprintf("RGB565(0x%04X)", uint16(c))
}

// Model is the color model for RGB565 pixels.
var Model = color.ModelFunc(convert)

// Image is an in-memory image whose At method returns Color values.
//
// Each pixel uses two bytes, low byte first.
type Image struct {
	// Pix holds the image's pixels. The pixel at (x, y) starts at
	// Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*2].
	Pix []byte
	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

// NewImage returns an Image with the given bounds.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	return &Image{Pix: make([]byte, 2*w*h), Stride: 2 * w, Rect: r}
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return Model
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	return i.RGB565At(x, y)
}

// RGB565At returns the Color at (x, y). Points outside the image return 0.
func (i *Image) RGB565At(x, y int) Color {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return 0
	}
	o := i.PixOffset(x, y)
	return Color(i.Pix[o]) | Color(i.Pix[o+1])<<8
}

// Set implements draw.Image.
func (i *Image) Set(x, y int, c color.Color) {
	i.SetRGB565(x, y, convertColor(c))
}

// SetRGB565 sets the pixel at (x, y). Points outside the image are ignored.
func (i *Image) SetRGB565(x, y int, c Color) {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return
	}
	o := i.PixOffset(x, y)
	i.Pix[o] = byte(c)
	i.Pix[o+1] = byte(c >> 8)
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (i *Image) PixOffset(x, y int) int {
	return (y-i.Rect.Min.Y)*i.Stride + (x-i.Rect.Min.X)*2
}

// Row returns the bytes of row y between x0 and x1, sharing Pix.
func (i *Image) Row(y, x0, x1 int) []byte {
	return i.Pix[i.PixOffset(x0, y):i.PixOffset(x1, y)]
}

// SubImage returns an image representing the portion of the image visible
// through r. The returned value shares pixels with the original image.
func (i *Image) SubImage(r image.Rectangle) image.Image {
	r = r.Intersect(i.Rect)
	if r.Empty() {
		return &Image{}
	}
	return &Image{Pix: i.Pix[i.PixOffset(r.Min.X, r.Min.Y):], Stride: i.Stride, Rect: r}
}

// Opaque reports true, RGB565 has no alpha channel.
func (i *Image) Opaque() bool {
	return true
}

func convert(c color.Color) color.Color {
	return convertColor(c)
}

func convertColor(c color.Color) Color {
	if p, ok := c.(Color); ok {
		return p
	}
	r, g, b, _ := c.RGBA()
	return New(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

var _ draw.Image = &Image{}
var _ color.Color = Color(0)
