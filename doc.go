// Package ch1115 controls a monochrome OLED display driven by a CH1115
// controller via 4-wire SPI.
//
// The CH1115 drives panels of up to 128×64 pixels, such as the ER-OLEDM1
// module. This driver implements the display.Drawer interface from periph.io.
//
// # Display Characteristics
//
// - 1-bit monochrome, 128×64 pixels (smaller panels down to 8 rows work too)
// - Display RAM organised in 8 pages of 8 rows, one byte per column per page
// - Hardware horizontal scrolling
// - Breathing (fade) effect
// - Adjustable contrast (0-255), inversion, 180° rotation
//
// # Hardware Connection
//
// Connect the module to your system via SPI:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCL/CLK     → SPI Clock (SCLK)
//	SDA/MOSI    → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → SPI Chip Select, a GPIO, or GND if always selected
//	RES         → Optional: GPIO for hardware reset
//
// # Basic Usage
//
//	// Initialize periph.io
//	host.Init()
//
//	// Open SPI bus
//	spiBus, _ := spireg.Open("")
//
//	// Create device
//	opts := ch1115.DefaultOpts
//	opts.RST = gpioreg.ByName("GPIO25")
//	dev, _ := ch1115.NewSPI(spiBus, gpioreg.ByName("GPIO24"), &opts)
//	defer dev.Halt()
//
//	// Draw in the frame buffer
//	dev.SetPixel(10, 20, ch1115.Foreground)
//
//	// Send it to the display
//	dev.Update()
//
// The driver performs a hardware reset (RST high 10ms, low 10ms, high, then
// 100ms settle) when RST is provided, then programs the controller registers.
// Without RST the driver relies on the module's power-on reset.
//
// # Drawing
//
// Drawing happens in a frame buffer that is only sent to the display by
// Update. SetPixel sets, clears or toggles a single pixel; Image returns the
// buffer as a draw.Image so any Go graphics package can render into it:
//
//	drawer := font.Drawer{
//		Dst:  dev.Image(),
//		Src:  image.NewUniform(image1bit.On),
//		Face: basicfont.Face7x13,
//		Dot:  fixed.P(0, 13),
//	}
//	drawer.DrawString("Hello")
//	dev.Update()
//
// Draw renders any image into the buffer and sends it. Standard Go colors are
// converted with image1bit.BitModel: a pixel is lit when any of its red, green
// or blue channels is at least half of the full scale.
//
// TinyGo graphics packages such as tinyfont work through Displayer.
//
// DrawBitmap and FillScreen write to the display directly and leave the frame
// buffer untouched; the next Update overwrites what they drew.
//
// # Hardware Scrolling
//
//	dev.SetupScroll(ch1115.Interval6Frames, ch1115.ScrollLeft, ch1115.ScrollContinuous)
//	dev.Scroll(true)
//	time.Sleep(5 * time.Second)
//	dev.Scroll(false)
//
// # Power
//
// Enable(false) puts the controller to sleep and keeps its RAM. PowerDown
// turns the display off and drives every connected control line low; the
// device then refuses all operations until Init runs the power-on sequence
// again.
//
// # Concurrency
//
// Dev is not safe for concurrent use. Command and data bursts are framed by
// chip select and must not interleave.
//
// # Debugging
//
// Set the CH1115_DEBUG environment variable to log every command and data
// burst.
package ch1115
