package ch1115

import (
	"image/color"

	"periph.io/x/devices/v3/ssd1306/image1bit"
	"tinygo.org/x/drivers"
)

// Displayer returns a view of the device for TinyGo graphics packages such
// as tinyfont and tinydraw.
//
// SetPixel on the view only changes the frame buffer; Display sends it.
func (d *Dev) Displayer() drivers.Displayer {
	return displayer{d}
}

type displayer struct {
	d *Dev
}

func (v displayer) Size() (x, y int16) {
	return int16(v.d.rect.Dx()), int16(v.d.rect.Dy())
}

func (v displayer) SetPixel(x, y int16, c color.RGBA) {
	col := Background
	if image1bit.BitModel.Convert(c).(image1bit.Bit) {
		col = Foreground
	}
	v.d.SetPixel(int(x), int(y), col)
}

func (v displayer) Display() error {
	return v.d.Update()
}
