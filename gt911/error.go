// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gt911

import (
	"fmt"
	"time"
)

// BusError is returned when an I²C transaction or a control line access
// failed.
type BusError struct {
	Op  string
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("gt911: %s: %v", e.Op, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// TimingError is returned when the time source returned before a mandatory
// hold time elapsed.
type TimingError struct {
	Op   string
	Want time.Duration
	Got  time.Duration
}

func (e *TimingError) Error() string {
	return fmt.Sprintf("gt911: %s: held %s, need at least %s", e.Op, e.Got, e.Want)
}
