// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rgbpanel drives a timing controlled parallel RGB LCD panel.
//
// Such panels have no frame memory of their own: the host keeps the frame in
// RAM and an RGB interface controller (the Engine) continuously scans it out
// with the HSYNC, VSYNC, DE and PCLK signals described by Timings and
// TimingFlags. The driver programs the controller once, then copies pixel
// rectangles into frame memory.
//
// Pixels are RGB565, see package rgb565.
//
// With Flags.DoubleFB the driver writes to the buffer that is not being
// scanned out and Present swaps buffers during the next vertical blank, so
// the panel never shows a partial update. With a single buffer, tearing
// while a rectangle is copied is accepted.
package rgbpanel
