// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rgbpaneltest is meant to be used to test drivers using an
// rgbpanel.Engine.
package rgbpaneltest

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/conntest"
)

// Transfer is one recorded WriteFrame call.
type Transfer struct {
	FB   int
	Off  int
	Data []byte
}

// Copy is one recorded CopyFrame call.
type Copy struct {
	Dst, Src int
	Off, N   int
}

// Record implements rgbpanel.Engine and records everything written to it.
//
// Register writes are recorded in the embedded conntest.Record. Frame memory
// is kept in RAM in Frames.
type Record struct {
	conntest.Record

	mu        sync.Mutex
	Frames    [][]byte
	Transfers []Transfer
	Copies    []Copy
	VBlanks   int
	// Err, when set, is returned by WriteFrame, CopyFrame and WaitVBlank.
	Err error
}

// New returns a Record with buffers frame buffers of frameSize bytes each.
func New(frameSize, buffers int) *Record {
	r := &Record{Frames: make([][]byte, buffers)}
	for i := range r.Frames {
		r.Frames[i] = make([]byte, frameSize)
	}
	return r
}

func (r *Record) String() string {
	return "rgbpaneltest"
}

// WriteFrame implements rgbpanel.Engine.
func (r *Record) WriteFrame(fb, off int, p []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if err := r.check(fb, off, len(p)); err != nil {
		return err
	}
	copy(r.Frames[fb][off:], p)
	r.Transfers = append(r.Transfers, Transfer{FB: fb, Off: off, Data: append([]byte(nil), p...)})
	return nil
}

// CopyFrame implements rgbpanel.Engine.
func (r *Record) CopyFrame(dst, src, off, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if err := r.check(dst, off, n); err != nil {
		return err
	}
	if err := r.check(src, off, n); err != nil {
		return err
	}
	copy(r.Frames[dst][off:off+n], r.Frames[src][off:off+n])
	r.Copies = append(r.Copies, Copy{Dst: dst, Src: src, Off: off, N: n})
	return nil
}

// WaitVBlank implements rgbpanel.Engine.
func (r *Record) WaitVBlank() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.VBlanks++
	return nil
}

func (r *Record) check(fb, off, n int) error {
	if fb < 0 || fb >= len(r.Frames) {
		return fmt.Errorf("rgbpaneltest: frame buffer %d out of range", fb)
	}
	if off < 0 || n < 0 || off+n > len(r.Frames[fb]) {
		return errors.New("rgbpaneltest: transfer out of frame memory")
	}
	return nil
}
