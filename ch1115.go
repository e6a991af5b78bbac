package ch1115

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// debug traces every command and data burst with the log package.
var debug = os.Getenv("CH1115_DEBUG") != ""

var errHalted = errors.New("ch1115: halted")

// Opts is the configuration for the CH1115 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 128, must be ≤128)
	H int // Height (default: 64, must be a multiple of 8 and ≤64)

	// Contrast applied during initialization (0-255). Unlike Speed, zero is
	// not replaced by a default: it is the lowest brightness. Start from
	// DefaultOpts to get the recommended value.
	Contrast byte

	// SPI clock frequency (default: 8MHz)
	Speed physic.Frequency

	// Optional pins, nil if not connected
	RST  gpio.PinOut // Reset pin
	CS   gpio.PinOut // Chip select driven by the driver, nil if the SPI port handles it
	CLK  gpio.PinOut // SPI clock, only driven low by PowerDown
	MOSI gpio.PinOut // SPI data, only driven low by PowerDown

	// Sleep waits for the given duration (default: time.Sleep)
	Sleep func(time.Duration)
}

// DefaultOpts is the recommended default options for a 128x64 module.
var DefaultOpts = Opts{
	W:        128,
	H:        64,
	Contrast: 0x80,
	Speed:    8 * physic.MegaHertz,
}

// Dev is the device handle for the CH1115 display.
//
// Dev is not safe for concurrent use. A command or data burst interrupted by
// another goroutine leaves the controller in an undefined state.
type Dev struct {
	// Communication
	c    conn.Conn   // SPI connection
	dc   gpio.PinOut // Data/Command pin
	rst  gpio.PinOut
	cs   gpio.PinOut
	clk  gpio.PinOut
	mosi gpio.PinOut

	sleep    func(time.Duration)
	contrast byte

	// Display geometry
	rect image.Rectangle

	// Frame buffer, one byte per column per page
	buffer *image1bit.VerticalLSB

	// State
	scrollReady bool
	sleeping    bool
	halted      bool
}

// NewSPI creates a new CH1115 device connected via SPI and runs the power on
// sequence.
//
// The SPI port is configured for Mode0 (CPOL=0, CPHA=0), 8-bit transfers, at
// opts.Speed. The dc (Data/Command) GPIO pin must be provided.
//
// opts can be nil to use DefaultOpts.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if dc == nil || dc == gpio.INVALID {
		return nil, errors.New("ch1115: a data/command pin is required")
	}
	if opts.W <= 0 || opts.W > 128 {
		return nil, errors.New("ch1115: width must be between 1 and 128")
	}
	if opts.H < 8 || opts.H > 64 || opts.H%8 != 0 {
		return nil, errors.New("ch1115: height must be a multiple of 8 between 8 and 64")
	}

	speed := opts.Speed
	if speed == 0 {
		speed = DefaultOpts.Speed
	}
	c, err := p.Connect(speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ch1115: %w", err)
	}
	if err := dc.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("ch1115: failed to drive DC high: %w", err)
	}

	d := &Dev{
		c:        c,
		dc:       dc,
		rst:      opts.RST,
		cs:       opts.CS,
		clk:      opts.CLK,
		mosi:     opts.MOSI,
		sleep:    opts.Sleep,
		contrast: opts.Contrast,
		rect:     image.Rect(0, 0, opts.W, opts.H),
		buffer:   image1bit.NewVerticalLSB(image.Rect(0, 0, opts.W, opts.H)),
	}
	if d.sleep == nil {
		d.sleep = time.Sleep
	}
	if err := out(d.cs, gpio.High); err != nil {
		return nil, fmt.Errorf("ch1115: failed to release CS: %w", err)
	}

	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Init runs the power on sequence: hardware reset followed by the register
// initialization. It can be called again to return the controller to its
// default state, and is the only way to resume after PowerDown.
//
// The frame buffer is left untouched.
func (d *Dev) Init() error {
	halted := d.halted
	d.halted = false
	d.scrollReady = false
	err := d.burst(func() error {
		if err := d.reset(); err != nil {
			return err
		}
		return d.sendCommands(d.initSequence()...)
	})
	if err != nil {
		d.halted = halted
		return err
	}
	d.sleeping = false
	d.sleep(initSettle)
	return nil
}

// reset pulses the RST pin. All delays complete before the caller can send
// the first command.
func (d *Dev) reset() error {
	if d.rst == nil {
		return nil
	}
	steps := []struct {
		level gpio.Level
		wait  time.Duration
	}{
		{gpio.High, resetPulse},
		{gpio.Low, resetPulse},
		{gpio.High, resetSettle},
	}
	for _, s := range steps {
		if err := d.rst.Out(s.level); err != nil {
			return fmt.Errorf("ch1115: failed to drive RST %s: %w", s.level, err)
		}
		d.sleep(s.wait)
	}
	return nil
}

// initSequence returns the register initialization commands. The order is
// mandated by the controller datasheet.
func (d *Dev) initSequence() []byte {
	return []byte{
		setDisplayOff,
		setColumnLow, setColumnHigh, // Column 0
		setPageAddr,                 // Page 0
		setStartLine,                // Display start line 0
		setContrast, d.contrast,
		setIref, irefInternal,
		setSegmentRemap,
		setSegmentPads,
		setEntireOff,
		setNormal,
		setMultiplex, byte(d.rect.Dy() - 1),
		setComScan,
		setOffset, offsetNone,
		setOscillator, oscillatorFreq,
		setPrecharge, prechargePeriod,
		setComLevel, comLevel,
		setPumpVoltage | pumpVoltage,
		setDCDCOnOff, dcdcOff,
		setDisplayOn,
	}
}

// burst frames f with chip select. CS is held low for the whole burst.
func (d *Dev) burst(f func() error) error {
	if d.halted {
		return errHalted
	}
	if err := out(d.cs, gpio.Low); err != nil {
		return err
	}
	err := f()
	if csErr := out(d.cs, gpio.High); err == nil {
		err = csErr
	}
	return err
}

// command sends commands in their own burst.
func (d *Dev) command(cmds ...byte) error {
	return d.burst(func() error {
		return d.sendCommands(cmds...)
	})
}

// sendCommand sends code|arg as a single command byte. The caller must keep
// the opcode and argument bits disjoint.
func (d *Dev) sendCommand(code, arg byte) error {
	return d.sendCommands(code | arg)
}

// sendCommands sends command bytes with DC low, then returns DC high.
func (d *Dev) sendCommands(cmds ...byte) error {
	if debug {
		log.Printf("ch1115: command % X", cmds)
	}
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.c.Tx(cmds, nil); err != nil {
		return err
	}
	return d.dc.Out(gpio.High)
}

// sendData sends data bytes. DC must already be high and CS asserted.
func (d *Dev) sendData(data ...byte) error {
	if len(data) == 0 {
		return nil
	}
	if debug {
		log.Printf("ch1115: data %d bytes", len(data))
	}
	return d.c.Tx(data, nil)
}

// out drives p when it is connected.
func out(p gpio.PinOut, l gpio.Level) error {
	if p == nil {
		return nil
	}
	return p.Out(l)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ch1115.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

// Pages returns the number of 8 pixel high pages of the display.
func (d *Dev) Pages() int {
	return d.rect.Dy() / 8
}

// Enable turns the display output on or off. Off puts the controller in
// sleep mode; the display RAM is retained.
func (d *Dev) Enable(on bool) error {
	cmd := byte(setDisplayOff)
	if on {
		cmd = setDisplayOn
	}
	if err := d.burst(func() error { return d.sendCommand(cmd, 0) }); err != nil {
		return err
	}
	d.sleeping = !on
	return nil
}

// IsSleeping reports whether the display output is off.
func (d *Dev) IsSleeping() bool {
	return d.sleeping
}

// SetContrast sets the display contrast (0-255).
func (d *Dev) SetContrast(level byte) error {
	return d.command(setContrast, level)
}

// Invert inverts the display colors (lit pixels become dark and vice versa).
func (d *Dev) Invert(invert bool) error {
	mode := byte(setNormal)
	if invert {
		mode = setInverted
	}
	return d.command(mode)
}

// Flip rotates the display by 180°.
//
// It reverses both the common scan direction and the segment order. Use
// MirrorVertical or MirrorHorizontal to change only one of them, which
// mirrors the image instead of rotating it.
func (d *Dev) Flip(flip bool) error {
	scan, remap := byte(setComScan), byte(setSegmentRemap)
	if flip {
		scan |= comScanReversed
		remap |= segmentReversed
	}
	return d.command(scan, remap)
}

// MirrorVertical reverses the common scan direction only.
func (d *Dev) MirrorVertical(mirror bool) error {
	var arg byte
	if mirror {
		arg = comScanReversed
	}
	return d.burst(func() error { return d.sendCommand(setComScan, arg) })
}

// MirrorHorizontal reverses the segment order only.
func (d *Dev) MirrorHorizontal(mirror bool) error {
	var arg byte
	if mirror {
		arg = segmentReversed
	}
	return d.burst(func() error { return d.sendCommand(setSegmentRemap, arg) })
}

// FadeEffect configures the breathing effect.
//
// Bit 7 enables the effect, bits 4-3 set the maximum brightness and bits 2-0
// the time interval. Use FadeBits to build a value, or DefaultFade. 0 stops
// the effect.
func (d *Dev) FadeEffect(bits byte) error {
	return d.command(setBreathEffect, bits)
}

// SetupScroll programs a full width horizontal scroll over every page.
//
// The scroll starts only once Scroll(true) is called.
func (d *Dev) SetupScroll(interval ScrollInterval, dir ScrollDirection, mode ScrollMode) error {
	if interval > Interval2Frames {
		return fmt.Errorf("ch1115: invalid scroll interval %d", interval)
	}
	if dir != ScrollRight && dir != ScrollLeft {
		return fmt.Errorf("ch1115: invalid scroll direction 0x%02X", byte(dir))
	}
	if mode < ScrollContinuous || mode > ScrollOneScreen {
		return fmt.Errorf("ch1115: invalid scroll mode 0x%02X", byte(mode))
	}
	err := d.command(
		setScrollWindow, scrollStartCol, byte(d.rect.Dx()-1),
		byte(dir), scrollStartPage, byte(interval), byte(d.Pages()-1),
		byte(mode),
	)
	if err != nil {
		return err
	}
	d.scrollReady = true
	return nil
}

// Scroll activates or deactivates the scroll set up by SetupScroll.
func (d *Dev) Scroll(on bool) error {
	if !on {
		return d.command(deactivateScroll)
	}
	if !d.scrollReady {
		return errors.New("ch1115: SetupScroll must be called before activating the scroll")
	}
	return d.command(activateScroll)
}

// PowerDown turns the display off and drives every connected control line
// low. The device stays halted until Init is called.
func (d *Dev) PowerDown() error {
	if d.halted {
		return nil
	}
	if err := d.Enable(false); err != nil {
		return err
	}
	for _, p := range []gpio.PinOut{d.dc, d.rst, d.cs, d.clk, d.mosi} {
		if err := out(p, gpio.Low); err != nil {
			return fmt.Errorf("ch1115: failed to power down: %w", err)
		}
	}
	d.sleeping = true
	d.halted = true
	return nil
}

// Halt implements conn.Resource. It is the same as PowerDown.
func (d *Dev) Halt() error {
	return d.PowerDown()
}

// FillPage writes pattern to every column of a page, bypassing the frame
// buffer. The next Update overwrites it.
//
// perByte is an optional delay after each byte, normally zero.
func (d *Dev) FillPage(page int, pattern byte, perByte time.Duration) error {
	if page < 0 || page >= d.Pages() {
		return fmt.Errorf("ch1115: page %d out of range [0, %d)", page, d.Pages())
	}
	err := d.burst(func() error {
		return d.sendCommands(setColumnLow, setColumnHigh, setPageAddr|byte(page))
	})
	if err != nil {
		return err
	}
	d.sleep(pageBurstSpacing)
	return d.burst(func() error {
		if perByte == 0 {
			return d.sendData(bytes.Repeat([]byte{pattern}, d.rect.Dx())...)
		}
		for range d.rect.Dx() {
			if err := d.sendData(pattern); err != nil {
				return err
			}
			d.sleep(perByte)
		}
		return nil
	})
}

// FillScreen writes pattern to every page, bypassing the frame buffer. Use 0
// to blank the screen.
func (d *Dev) FillScreen(pattern byte, perByte time.Duration) error {
	for page := range d.Pages() {
		if err := d.FillPage(page, pattern, perByte); err != nil {
			return err
		}
	}
	return nil
}
