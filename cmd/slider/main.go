// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// slider shows a volume slider on the 800x480 panel and moves it with the
// touch screen.
//
// The panel is emulated in the terminal. Without -rst there is no touch
// controller; use -demo to sweep the slider instead.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/rgbtouch/gt911"
	"github.com/GermanBionicSystems/rgbtouch/rgbpanel"
	"github.com/GermanBionicSystems/rgbtouch/screen2d"
	"github.com/GermanBionicSystems/rgbtouch/uiport"
)

// tick is the UI loop period.
const tick = 20 * time.Millisecond

func mainImpl() (err error) {
	i2cName := flag.String("i2c", "", "I²C bus of the touch controller")
	rstName := flag.String("rst", "", "GT911 reset pin; no touch input when empty")
	intName := flag.String("int", "", "GT911 INT pin, drives the address selection during reset")
	addr := flag.Uint("addr", uint(gt911.AddrLow), "GT911 I²C address, 0x5D or 0x14")
	blName := flag.String("bl", "", "backlight pin, driven at 50% with a 25kHz PWM")
	scale := flag.Int("scale", 16, "panel pixels per terminal cell, per axis")
	double := flag.Bool("double", true, "double buffered frame memory")
	demo := flag.Bool("demo", false, "sweep the slider when there is no touch input")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	if _, err := host.Init(); err != nil {
		return err
	}

	// Everything opened is released in reverse order on return.
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	opts := rgbpanel.Sunton8048S043
	opts.Flags.DoubleFB = *double
	buffers := 1
	if *double {
		buffers = 2
	}
	e, err := screen2d.New(&screen2d.Opts{
		Width:   opts.Config.Width,
		Height:  opts.Config.Height,
		Buffers: buffers,
		Scale:   *scale,
	})
	if err != nil {
		return err
	}
	panel, err := rgbpanel.New(e, &opts)
	if err != nil {
		return err
	}
	closers = append(closers, panel.Halt)

	if *blName != "" {
		bl := gpioreg.ByName(*blName)
		if bl == nil {
			return fmt.Errorf("no backlight pin %q", *blName)
		}
		if err := bl.PWM(gpio.DutyHalf, 25*physic.KiloHertz); err != nil {
			log.Printf("backlight: %v", err)
		} else {
			closers = append(closers, bl.Halt)
		}
	}

	var ptr *uiport.Pointer
	if *rstName != "" {
		b, err := i2creg.Open(*i2cName)
		if err != nil {
			return err
		}
		closers = append(closers, b.Close)
		if err := b.SetSpeed(100 * physic.KiloHertz); err != nil {
			log.Printf("%s: %v", b, err)
		}
		rst := gpioreg.ByName(*rstName)
		if rst == nil {
			return fmt.Errorf("no reset pin %q", *rstName)
		}
		o := gt911.DefaultOpts
		o.Addr = uint16(*addr)
		var t *gt911.Dev
		if *intName != "" {
			irq := gpioreg.ByName(*intName)
			if irq == nil {
				return fmt.Errorf("no INT pin %q", *intName)
			}
			t, err = gt911.NewWithInt(b, rst, irq, nil, &o)
		} else {
			t, err = gt911.New(b, rst, nil, &o)
		}
		if err != nil {
			return err
		}
		if err := t.Reset(); err != nil {
			return err
		}
		closers = append(closers, t.Halt)
		id, err := t.ProductID()
		if err != nil {
			return err
		}
		fw, err := t.FirmwareVersion()
		if err != nil {
			return err
		}
		log.Printf("touch: GT%s firmware 0x%04X", id, fw)
		ptr = uiport.NewPointer(t)
	}

	face, err := loadFace(fontSize)
	if err != nil {
		return err
	}
	u := newUI(panel.Bounds(), face)
	f := uiport.NewFlusher(panel)
	lines := opts.Config.TransferLines
	if err := flush(f, u.render(), panel.Bounds(), lines); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-sig:
			return nil
		case <-t.C:
		}
		changed := false
		switch {
		case ptr != nil:
			ev, err := ptr.Read()
			if err != nil {
				// Try again on the next tick.
				log.Printf("touch: %v", err)
				continue
			}
			changed = u.handle(ev)
		case *demo:
			changed = u.setValue((u.value + 1) % 101)
		}
		if changed {
			if err := flush(f, u.render(), u.damage(), lines); err != nil {
				return err
			}
		}
	}
}

func main() {
	if err := mainImpl(); err != nil {
		log.Fatalf("slider: %v", err)
	}
}
