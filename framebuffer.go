package ch1115

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Color is the operation SetPixel applies to a pixel.
type Color uint8

const (
	Background Color = iota // Clear the pixel
	Foreground              // Set the pixel
	Inverse                 // Toggle the pixel
)

func (c Color) String() string {
	switch c {
	case Background:
		return "Background"
	case Foreground:
		return "Foreground"
	case Inverse:
		return "Inverse"
	default:
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
}

// SetPixel changes the pixel at (x, y) in the frame buffer. Coordinates
// outside the display are ignored.
//
// Nothing is sent to the display until Update.
func (d *Dev) SetPixel(x, y int, c Color) {
	switch c {
	case Foreground:
		d.buffer.SetBit(x, y, image1bit.On)
	case Background:
		d.buffer.SetBit(x, y, image1bit.Off)
	case Inverse:
		d.buffer.SetBit(x, y, !d.buffer.BitAt(x, y))
	}
}

// Pixel reports whether the pixel at (x, y) is set in the frame buffer.
func (d *Dev) Pixel(x, y int) bool {
	return bool(d.buffer.BitAt(x, y))
}

// ClearBuffer clears the frame buffer. The display is not touched.
func (d *Dev) ClearBuffer() {
	clear(d.buffer.Pix)
}

// Image returns the frame buffer. Graphics packages can draw into it; call
// Update to show the result.
func (d *Dev) Image() *image1bit.VerticalLSB {
	return d.buffer
}

// Update sends the whole frame buffer to the display.
func (d *Dev) Update() error {
	return d.syncRegion(0, 0, d.rect.Dx(), d.rect.Dy(), d.buffer.Pix)
}

// DrawBitmap sends a w×h bitmap to the display at (x, y), bypassing the frame
// buffer.
//
// bitmap uses the frame buffer layout: bands of 8 rows, w bytes per band, the
// least significant bit of each byte on top. It must hold at least
// w*ceil(h/8) bytes.
//
// Clipping works on whole bands vertically: a band whose first row is above
// or below the display is skipped entirely, and bands are written at page
// boundaries, so y is effectively rounded down to a multiple of 8. Columns
// outside the display are skipped individually.
func (d *Dev) DrawBitmap(x, y, w, h int, bitmap []byte) error {
	return d.syncRegion(x, y, w, h, bitmap)
}

// syncRegion writes a w×h region of src, in frame buffer layout, to the
// display at (x, y). Every band is sent in one chip select burst.
func (d *Dev) syncRegion(x, y, w, h int, src []byte) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	bands := (h + 7) / 8
	if w > math.MaxInt/bands {
		return fmt.Errorf("ch1115: %dx%d bitmap is too large", w, h)
	}
	if need := w * bands; len(src) < need {
		return fmt.Errorf("ch1115: %dx%d bitmap needs %d bytes, got %d", w, h, need, len(src))
	}
	// Visible columns of each band are src[lo:hi].
	lo, hi := 0, w
	if x < 0 {
		lo = w
		if x > -w {
			lo = -x
		}
	}
	if dw := d.rect.Dx(); x >= dw {
		hi = 0
	} else if x > dw-w {
		hi = dw - x
	}
	hi = max(hi, lo)
	column := max(x, 0)
	page := max(y, 0) / 8
	return d.burst(func() error {
		for ty := 0; ty < h; ty += 8 {
			if row := y + ty; row < 0 || row >= d.rect.Dy() {
				continue
			}
			if err := d.setCursor(column, page); err != nil {
				return err
			}
			page++
			base := w * (ty / 8)
			if err := d.sendData(src[base+lo : base+hi]...); err != nil {
				return err
			}
		}
		return nil
	})
}

// setCursor programs the column and page of the next data byte.
func (d *Dev) setCursor(column, page int) error {
	return d.sendCommands(
		setColumnLow|byte(column&0x0F),
		setColumnHigh|byte((column&0xF0)>>4),
		setPageAddr|byte(page&0x07),
	)
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer.
//
// It renders src into the frame buffer, then sends the whole buffer to the
// display.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errHalted
	}
	draw.Draw(d.buffer, r, src, sp, draw.Src)
	return d.Update()
}

// Write replaces the frame buffer with raw pixel data and sends it to the
// display.
//
// The data must be in image1bit.VerticalLSB layout and exactly
// W*H/8 bytes long.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errHalted
	}
	if len(pixels) != len(d.buffer.Pix) {
		return 0, errors.New("ch1115: invalid buffer size")
	}
	copy(d.buffer.Pix, pixels)
	if err := d.Update(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

var _ display.Drawer = &Dev{}
