// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rgb565 implements the 16 bits per pixel color format used natively
// by parallel RGB panels: 5 bits red, 6 bits green, 5 bits blue.
//
// Pixels are stored little endian in memory, the layout expected by the frame
// memory of the RGB interface controllers supported by rgbpanel.
package rgb565
