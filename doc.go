// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rgbtouch is a container for the drivers of touch enabled parallel
// RGB LCD boards.
//
// gt911 reads the capacitive touch controller, rgbpanel drives the panel
// through an RGB interface controller and uiport connects both to a graphics
// library. screen2d emulates the panel in a terminal.
package rgbtouch
