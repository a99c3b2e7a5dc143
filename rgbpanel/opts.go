// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgbpanel

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Format is the pixel encoding on the data lines.
type Format int

// Supported Format.
const (
	// RGB565 uses 16 data lines.
	RGB565 Format = iota
)

func (f Format) String() string {
	switch f {
	case RGB565:
		return "RGB565"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Pins is the bus pin assignment, as gpioreg names. It is handed to the
// Engine, which owns the pins.
type Pins struct {
	HSync string
	VSync string
	DE    string
	PCLK  string
	// Data lines, least significant first: B0-B4, G0-G5, R0-R4.
	Data [16]string
	// Disp is the optional display enable line.
	Disp string
}

// Config is the panel geometry and wiring.
type Config struct {
	// Width and Height are the active pixels.
	Width  int
	Height int
	// PixelClock is the PCLK frequency.
	PixelClock physic.Frequency
	Pins       Pins
	Format     Format
	// TransferLines is the number of full lines batched per frame memory
	// transfer. 0 means 1.
	TransferLines int
}

// Flags selects the frame buffer organisation.
type Flags struct {
	// DoubleFB allocates two frame buffers; drawing never touches the one
	// being scanned out. Changes are shown by Present.
	DoubleFB bool
	// RefreshOnDemand stops the free running scan. A single frame is sent
	// on every Present.
	RefreshOnDemand bool
	// FBInPSRAM places frame memory in external RAM.
	FBInPSRAM bool
	// DisableDE is for panels in sync mode, without data enable line.
	DisableDE bool
}

// Timings are in PCLK cycles for the horizontal values and in lines for the
// vertical ones.
type Timings struct {
	HRes            int
	VRes            int
	HSyncPulseWidth int
	HSyncBackPorch  int
	HSyncFrontPorch int
	VSyncPulseWidth int
	VSyncBackPorch  int
	VSyncFrontPorch int
}

// TimingFlags are the signal polarities.
type TimingFlags struct {
	HSyncIdleLow  bool
	VSyncIdleLow  bool
	DEIdleHigh    bool
	PCLKActiveNeg bool
	PCLKIdleHigh  bool
}

// Limits are the datasheet bounds of the panel and controller.
type Limits struct {
	MinPulse      int
	MaxPulse      int
	MinPorch      int
	MaxPorch      int
	MaxHTotal     int
	MaxVTotal     int
	MaxPixelClock physic.Frequency
}

// DefaultLimits fits most 800x480 class panels.
var DefaultLimits = Limits{
	MinPulse:      1,
	MaxPulse:      128,
	MinPorch:      1,
	MaxPorch:      255,
	MaxHTotal:     4096,
	MaxVTotal:     1024,
	MaxPixelClock: 40 * physic.MegaHertz,
}

// Opts is the full description of a panel.
type Opts struct {
	Config      Config
	Flags       Flags
	Timings     Timings
	TimingFlags TimingFlags
	// Limits is DefaultLimits when left empty.
	Limits Limits
}

// Sunton8048S043 is the ESP32-S3 4.3" board with a 800x480 panel.
var Sunton8048S043 = Opts{
	Config: Config{
		Width:      800,
		Height:     480,
		PixelClock: 16 * physic.MegaHertz,
		Pins: Pins{
			HSync: "GPIO39",
			VSync: "GPIO41",
			DE:    "GPIO40",
			PCLK:  "GPIO42",
			Data: [16]string{
				"GPIO8", "GPIO3", "GPIO46", "GPIO9", "GPIO1",
				"GPIO5", "GPIO6", "GPIO7", "GPIO15", "GPIO16", "GPIO4",
				"GPIO45", "GPIO48", "GPIO47", "GPIO21", "GPIO14",
			},
		},
		Format:        RGB565,
		TransferLines: 12,
	},
	Flags: Flags{FBInPSRAM: true},
	Timings: Timings{
		HRes:            800,
		VRes:            480,
		HSyncPulseWidth: 4,
		HSyncBackPorch:  8,
		HSyncFrontPorch: 8,
		VSyncPulseWidth: 4,
		VSyncBackPorch:  8,
		VSyncFrontPorch: 8,
	},
	TimingFlags: TimingFlags{PCLKActiveNeg: true},
}

// validate checks o without side effect. o.Limits must be set.
func (o *Opts) validate() error {
	c, t, l := &o.Config, &o.Timings, &o.Limits
	if c.Width <= 0 || c.Height <= 0 {
		return &ConfigError{Field: "resolution", Reason: fmt.Sprintf("%dx%d", c.Width, c.Height)}
	}
	if t.HRes != c.Width {
		return &ConfigError{Field: "HRes", Reason: fmt.Sprintf("%d active pixels per line for a %d pixels wide panel", t.HRes, c.Width)}
	}
	if t.VRes != c.Height {
		return &ConfigError{Field: "VRes", Reason: fmt.Sprintf("%d active lines for a %d lines high panel", t.VRes, c.Height)}
	}
	if c.PixelClock <= 0 || c.PixelClock > l.MaxPixelClock {
		return &ConfigError{Field: "PixelClock", Reason: fmt.Sprintf("%s not in (0, %s]", c.PixelClock, l.MaxPixelClock)}
	}
	if c.Format != RGB565 {
		return &ConfigError{Field: "Format", Reason: c.Format.String() + " is not supported"}
	}
	if c.TransferLines < 0 || c.TransferLines > c.Height {
		return &ConfigError{Field: "TransferLines", Reason: fmt.Sprintf("%d not in [0, %d]", c.TransferLines, c.Height)}
	}
	for _, v := range []struct {
		name     string
		val      int
		min, max int
	}{
		{"HSyncPulseWidth", t.HSyncPulseWidth, l.MinPulse, l.MaxPulse},
		{"VSyncPulseWidth", t.VSyncPulseWidth, l.MinPulse, l.MaxPulse},
		{"HSyncBackPorch", t.HSyncBackPorch, l.MinPorch, l.MaxPorch},
		{"HSyncFrontPorch", t.HSyncFrontPorch, l.MinPorch, l.MaxPorch},
		{"VSyncBackPorch", t.VSyncBackPorch, l.MinPorch, l.MaxPorch},
		{"VSyncFrontPorch", t.VSyncFrontPorch, l.MinPorch, l.MaxPorch},
	} {
		// A zero pulse never produces a sync edge, whatever the limits say.
		if v.val <= 0 || v.val < v.min || v.val > v.max {
			return &ConfigError{Field: v.name, Reason: fmt.Sprintf("%d not in [%d, %d]", v.val, max(v.min, 1), v.max)}
		}
	}
	if h := t.HRes + t.HSyncPulseWidth + t.HSyncBackPorch + t.HSyncFrontPorch; h > l.MaxHTotal {
		return &ConfigError{Field: "horizontal total", Reason: fmt.Sprintf("%d > %d", h, l.MaxHTotal)}
	}
	if v := t.VRes + t.VSyncPulseWidth + t.VSyncBackPorch + t.VSyncFrontPorch; v > l.MaxVTotal {
		return &ConfigError{Field: "vertical total", Reason: fmt.Sprintf("%d > %d", v, l.MaxVTotal)}
	}
	return o.Config.Pins.validate(o.Flags.DisableDE)
}

func (p *Pins) validate(noDE bool) error {
	seen := map[string]string{}
	use := func(field, name string) error {
		if name == "" {
			return &ConfigError{Field: field, Reason: "pin not assigned"}
		}
		if prev, ok := seen[name]; ok {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("%s already used by %s", name, prev)}
		}
		seen[name] = field
		return nil
	}
	if err := use("HSync pin", p.HSync); err != nil {
		return err
	}
	if err := use("VSync pin", p.VSync); err != nil {
		return err
	}
	if err := use("PCLK pin", p.PCLK); err != nil {
		return err
	}
	if !noDE {
		if err := use("DE pin", p.DE); err != nil {
			return err
		}
	}
	for i, n := range p.Data {
		if err := use(fmt.Sprintf("data pin %d", i), n); err != nil {
			return err
		}
	}
	if p.Disp != "" {
		return use("Disp pin", p.Disp)
	}
	return nil
}

// Registers of the timing generator, as seen on the Engine register port.
const (
	RegControl  byte = 0x00
	RegFBSelect byte = 0x01
	RegTiming   byte = 0x10
)

// RegControl bits. RegFBSelect holds the index of the frame buffer scanned
// out.
const (
	CtrlScan    byte = 1 << 0
	CtrlRefresh byte = 1 << 1
	CtrlOneShot byte = 1 << 2
)

// Polarity byte of the timing block.
const (
	polHSyncIdleLow byte = 1 << iota
	polVSyncIdleLow
	polDEIdleHigh
	polPCLKActiveNeg
	polPCLKIdleHigh
)

// Mode byte of the timing block.
const (
	modeDoubleFB byte = 1 << iota
	modeFBInPSRAM
	modeDisableDE
	modeRefreshOnDemand
)

// timingBlock returns the burst write programming the timing generator:
// register address, PCLK in Hz (32 bits), the eight timing values (16 bits)
// in Timings order, then the polarity and mode bytes. Little endian.
func (o *Opts) timingBlock() []byte {
	t := &o.Timings
	b := make([]byte, 0, 1+4+8*2+2)
	b = append(b, RegTiming)
	b = binary.LittleEndian.AppendUint32(b, uint32(o.Config.PixelClock/physic.Hertz))
	for _, v := range []int{
		t.HRes, t.HSyncPulseWidth, t.HSyncBackPorch, t.HSyncFrontPorch,
		t.VRes, t.VSyncPulseWidth, t.VSyncBackPorch, t.VSyncFrontPorch,
	} {
		b = binary.LittleEndian.AppendUint16(b, uint16(v))
	}
	var pol byte
	tf := &o.TimingFlags
	if tf.HSyncIdleLow {
		pol |= polHSyncIdleLow
	}
	if tf.VSyncIdleLow {
		pol |= polVSyncIdleLow
	}
	if tf.DEIdleHigh {
		pol |= polDEIdleHigh
	}
	if tf.PCLKActiveNeg {
		pol |= polPCLKActiveNeg
	}
	if tf.PCLKIdleHigh {
		pol |= polPCLKIdleHigh
	}
	var mode byte
	f := &o.Flags
	if f.DoubleFB {
		mode |= modeDoubleFB
	}
	if f.FBInPSRAM {
		mode |= modeFBInPSRAM
	}
	if f.DisableDE {
		mode |= modeDisableDE
	}
	if f.RefreshOnDemand {
		mode |= modeRefreshOnDemand
	}
	return append(b, pol, mode)
}
