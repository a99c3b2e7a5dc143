// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgb565

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestColor(t *testing.T) {
	for _, tc := range []struct {
		name    string
		in      color.Color
		want    Color
		r, g, b uint8
	}{
		{name: "black", in: color.Black, want: 0x0000, r: 0, g: 0, b: 0},
		{name: "white", in: color.White, want: 0xFFFF, r: 0xFF, g: 0xFF, b: 0xFF},
		{name: "red", in: color.NRGBA{R: 0xFF, A: 0xFF}, want: 0xF800, r: 0xFF},
		{name: "green", in: color.NRGBA{G: 0xFF, A: 0xFF}, want: 0x07E0, g: 0xFF},
		{name: "blue", in: color.NRGBA{B: 0xFF, A: 0xFF}, want: 0x001F, b: 0xFF},
		{name: "passthrough", in: Color(0x1234), want: 0x1234, r: 0x10, g: 0x45, b: 0xA5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Model.Convert(tc.in).(Color)
			if got != tc.want {
				t.Fatalf("Convert(%v) = %s, want %s", tc.in, got, tc.want)
			}
			r, g, b := got.RGB()
			if r != tc.r || g != tc.g || b != tc.b {
				t.Errorf("%s.RGB() = %d,%d,%d, want %d,%d,%d", got, r, g, b, tc.r, tc.g, tc.b)
			}
			if _, _, _, a := got.RGBA(); a != 0xFFFF {
				t.Errorf("%s is not opaque: alpha %d", got, a)
			}
		})
	}
}

func TestImage(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 4, 2))
	img.Set(1, 0, color.White)
	img.SetRGB565(3, 1, 0xF800)
	// Out of bounds writes are dropped.
	img.SetRGB565(4, 1, 0xFFFF)

	want := []byte{
		0, 0, 0xFF, 0xFF, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0x00, 0xF8,
	}
	if diff := cmp.Diff(img.Pix, want); diff != "" {
		t.Fatalf("Pix difference (-got +want):\n%s", diff)
	}
	if got := img.RGB565At(3, 1); got != 0xF800 {
		t.Errorf("RGB565At(3, 1) = %s", got)
	}
	if got := img.RGB565At(-1, 0); got != 0 {
		t.Errorf("RGB565At(-1, 0) = %s", got)
	}
	if got := img.Row(1, 2, 4); !cmp.Equal(got, []byte{0, 0, 0x00, 0xF8}) {
		t.Errorf("Row(1, 2, 4) = %v", got)
	}

	sub := img.SubImage(image.Rect(1, 0, 3, 2)).(*Image)
	if got := sub.RGB565At(1, 0); got != 0xFFFF {
		t.Errorf("SubImage At(1, 0) = %s", got)
	}
	sub.SetRGB565(2, 1, 0x07E0)
	if got := img.RGB565At(2, 1); got != 0x07E0 {
		t.Errorf("SubImage does not share pixels: %s", got)
	}
}

func TestDraw(t *testing.T) {
	src := image.NewUniform(color.NRGBA{B: 0xFF, A: 0xFF})
	img := NewImage(image.Rect(0, 0, 3, 3))
	draw.Draw(img, image.Rect(1, 1, 3, 3), src, image.Point{}, draw.Src)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			want := Color(0)
			if x >= 1 && y >= 1 {
				want = 0x001F
			}
			if got := img.RGB565At(x, y); got != want {
				t.Errorf("(%d,%d) = %s, want %s", x, y, got, want)
			}
		}
	}
}
