// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package uiport connects the panel and touch drivers to a retained mode
// graphics library.
//
// Flusher is called by the library with each rendered damage area. Pointer is
// polled by the library once per UI tick.
package uiport
