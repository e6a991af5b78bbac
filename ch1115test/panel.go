// Package ch1115test emulates a CH1115 controller behind an SPI port.
//
// Panel decodes the command stream sent by ch1115.Dev into register state and
// an emulated display RAM, so drawing code can be tested without hardware:
//
//	p := &ch1115test.Panel{}
//	dev, err := ch1115.NewSPI(p, &p.DC, &ch1115.Opts{W: 128, H: 64, CS: &p.CS})
//	...
//	dev.SetPixel(5, 10, ch1115.Foreground)
//	dev.Update()
//	p.BitAt(5, 10) // true
package ch1115test

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Controller RAM geometry.
const (
	Width = 128
	Pages = 8
)

// Scroll is the horizontal scroll configuration last programmed.
type Scroll struct {
	StartCol, EndCol byte
	Direction        byte // 0x26 right, 0x27 left
	StartPage        byte
	Interval         byte
	EndPage          byte
	Mode             byte // 0x28-0x2B

	WindowSet, DirectionSet bool
}

// Panel implements spi.PortCloser and spi.Conn.
//
// Pass &p.DC as the data/command pin and &p.CS as the chip select pin. Bytes
// written while CS is high are not decoded and are counted in Deselected.
// When CS is not wired it stays low and every byte is decoded.
type Panel struct {
	sync.Mutex

	DC gpiotest.Pin
	CS gpiotest.Pin

	// Connection parameters recorded by Connect.
	Freq physic.Frequency
	Mode spi.Mode
	Bits int

	// Display RAM, one byte per column per page, LSB on top.
	RAM    [Pages][Width]byte
	Column int
	Page   int

	// Register state.
	On           bool
	Inverted     bool
	AllOn        bool
	ComReversed  bool
	SegmentRemap bool
	StartLine    byte
	Contrast     byte
	Multiplex    byte
	Offset       byte
	Oscillator   byte
	Precharge    byte
	ComLevel     byte
	Iref         byte
	PumpVoltage  byte
	DCDC         byte
	SegmentPads  byte
	Fade         byte
	ScrollActive bool
	Scroll       Scroll

	// Commands logs every command byte received, arguments included.
	Commands []byte
	// Deselected counts the bytes written while CS was high.
	Deselected int

	pending []byte
}

// argCount is the number of argument bytes following each multi-byte
// command.
var argCount = map[byte]int{
	0x23: 1, // Breathing effect
	0x24: 2, // Scroll window
	0x26: 3, // Scroll right
	0x27: 3, // Scroll left
	0x81: 1, // Contrast
	0x8B: 1, // DC-DC
	0xA8: 1, // Multiplex ratio
	0xAD: 1, // Iref
	0xD3: 1, // Display offset
	0xD5: 1, // Oscillator
	0xD9: 1, // Precharge
	0xDB: 1, // Common pad level
}

func (p *Panel) String() string {
	return "ch1115test.Panel"
}

// Connect implements spi.Port.
func (p *Panel) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	p.Lock()
	defer p.Unlock()
	if bits != 8 {
		return nil, fmt.Errorf("ch1115test: %d bits per word is not supported", bits)
	}
	p.Freq = f
	p.Mode = mode
	p.Bits = bits
	return p, nil
}

// LimitSpeed implements spi.PortCloser. It has no effect.
func (p *Panel) LimitSpeed(f physic.Frequency) error {
	return nil
}

// Close implements spi.PortCloser.
func (p *Panel) Close() error {
	return nil
}

// Duplex implements conn.Conn.
func (p *Panel) Duplex() conn.Duplex {
	return conn.Half
}

// Tx implements conn.Conn. The controller is write only.
func (p *Panel) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("ch1115test: read unsupported")
	}
	p.Lock()
	defer p.Unlock()
	if p.CS.Read() == gpio.High {
		p.Deselected += len(w)
		return nil
	}
	if p.DC.Read() == gpio.Low {
		for _, b := range w {
			p.command(b)
		}
		return nil
	}
	for _, b := range w {
		p.data(b)
	}
	return nil
}

// TxPackets implements spi.Conn.
func (p *Panel) TxPackets(pkts []spi.Packet) error {
	for _, pkt := range pkts {
		if err := p.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

func (p *Panel) command(b byte) {
	p.Commands = append(p.Commands, b)
	if len(p.pending) != 0 {
		p.pending = append(p.pending, b)
		if len(p.pending)-1 == argCount[p.pending[0]] {
			p.apply(p.pending[0], p.pending[1:])
			p.pending = p.pending[:0]
		}
		return
	}
	if argCount[b] != 0 {
		p.pending = append(p.pending, b)
		return
	}
	switch {
	case b <= 0x0F:
		p.Column = p.Column&0x70 | int(b&0x0F)
	case b >= 0x10 && b <= 0x17:
		p.Column = int(b&0x07)<<4 | p.Column&0x0F
	case b >= 0x28 && b <= 0x2B:
		p.Scroll.Mode = b
	case b == 0x2E:
		p.ScrollActive = false
	case b == 0x2F:
		p.ScrollActive = true
	case b >= 0x30 && b <= 0x33:
		p.PumpVoltage = b & 0x03
	case b >= 0x40 && b <= 0x7F:
		p.StartLine = b & 0x3F
	case b == 0xA0 || b == 0xA1:
		p.SegmentRemap = b == 0xA1
	case b == 0xA2 || b == 0xA3:
		p.SegmentPads = b & 0x01
	case b == 0xA4 || b == 0xA5:
		p.AllOn = b == 0xA5
	case b == 0xA6 || b == 0xA7:
		p.Inverted = b == 0xA7
	case b == 0xAE || b == 0xAF:
		p.On = b == 0xAF
	case b >= 0xB0 && b <= 0xB7:
		p.Page = int(b & 0x07)
	case b >= 0xC0 && b <= 0xCF:
		p.ComReversed = b&0x08 != 0
	}
}

func (p *Panel) apply(cmd byte, args []byte) {
	switch cmd {
	case 0x23:
		p.Fade = args[0]
	case 0x24:
		p.Scroll.StartCol, p.Scroll.EndCol = args[0], args[1]
		p.Scroll.WindowSet = true
	case 0x26, 0x27:
		p.Scroll.Direction = cmd
		p.Scroll.StartPage, p.Scroll.Interval, p.Scroll.EndPage = args[0], args[1], args[2]
		p.Scroll.DirectionSet = true
	case 0x81:
		p.Contrast = args[0]
	case 0x8B:
		p.DCDC = args[0]
	case 0xA8:
		p.Multiplex = args[0]
	case 0xAD:
		p.Iref = args[0]
	case 0xD3:
		p.Offset = args[0]
	case 0xD5:
		p.Oscillator = args[0]
	case 0xD9:
		p.Precharge = args[0]
	case 0xDB:
		p.ComLevel = args[0]
	}
}

// data stores b at the cursor. The column address increments and stops at
// the end of the page.
func (p *Panel) data(b byte) {
	if p.Column >= Width {
		return
	}
	p.RAM[p.Page][p.Column] = b
	p.Column++
}

// Bytes returns the W×H region of the display RAM in frame buffer layout.
func (p *Panel) Bytes(w, h int) []byte {
	p.Lock()
	defer p.Unlock()
	out := make([]byte, 0, w*((h+7)/8))
	for page := 0; page < (h+7)/8 && page < Pages; page++ {
		out = append(out, p.RAM[page][:min(w, Width)]...)
	}
	return out
}

// Image returns a copy of the whole display RAM.
func (p *Panel) Image() *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Pages*8))
	copy(img.Pix, p.Bytes(Width, Pages*8))
	return img
}

// BitAt reports whether the pixel at (x, y) is set in the display RAM.
func (p *Panel) BitAt(x, y int) bool {
	p.Lock()
	defer p.Unlock()
	if x < 0 || x >= Width || y < 0 || y >= Pages*8 {
		return false
	}
	return p.RAM[y/8][x]&(1<<uint(y&7)) != 0
}

var _ spi.PortCloser = &Panel{}
var _ spi.Conn = &Panel{}
