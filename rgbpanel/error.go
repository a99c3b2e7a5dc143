// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgbpanel

import (
	"fmt"
	"image"
)

// ConfigError is returned by New when Opts cannot drive the panel. Nothing
// was written to the controller.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rgbpanel: invalid %s: %s", e.Field, e.Reason)
}

// RegionError is returned when a rectangle is empty or not fully inside the
// panel. Nothing was transferred.
type RegionError struct {
	Region image.Rectangle
	Bounds image.Rectangle
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("rgbpanel: region %v outside of %v", e.Region, e.Bounds)
}

// UnderflowError is returned when the color sequence ended before the
// rectangle was filled. The content of the rectangle is undefined.
type UnderflowError struct {
	Want int
	Got  int
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("rgbpanel: got %d colors, need %d", e.Got, e.Want)
}

// TransferError is returned when the Engine failed.
type TransferError struct {
	Op  string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("rgbpanel: %s: %v", e.Op, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
