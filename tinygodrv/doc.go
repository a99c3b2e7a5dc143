// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tinygodrv bridges the drivers of this module and TinyGo.
//
// Bus lets the periph based drivers run on a microcontroller I²C peripheral
// that only implements drivers.I2C. Pointer exposes a touch sensor as a
// touch.Pointer for TinyGo UI code.
package tinygodrv
