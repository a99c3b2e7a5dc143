// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gt911 controls a Goodix GT911 capacitive touch controller over I²C.
//
// The controller reports up to five contacts; this driver only decodes the
// first one. Coordinates are returned as reported by the controller, which is
// expected to be configured with the resolution of the panel it is glued to.
//
// The driver is polled: call Dev.ReadTouch once per UI tick. Every poll that
// finds a ready buffer acknowledges it so the controller can queue the next
// report.
//
// Datasheet: https://github.com/goodix/gt9xx_driver_android/blob/master/GT911%20Programming%20Guide_20140804_Rev00.pdf
package gt911
