package ch1115

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/devices/v3/ch1115/ch1115test"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func TestColorString(t *testing.T) {
	tests := []struct {
		c    Color
		want string
	}{
		{Background, "Background"},
		{Foreground, "Foreground"},
		{Inverse, "Inverse"},
		{Color(7), "Color(7)"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSetPixel(t *testing.T) {
	dev, r, _ := newTestDev(t, DefaultOpts)

	dev.SetPixel(5, 10, Foreground)
	buf := dev.Image().Pix
	if buf[133] != 0x04 {
		t.Errorf("buffer[133] = 0x%02X, want 0x04", buf[133])
	}
	if !dev.Pixel(5, 10) {
		t.Error("Pixel(5, 10) = false after Foreground")
	}

	dev.SetPixel(5, 10, Inverse)
	if dev.Pixel(5, 10) {
		t.Error("Pixel(5, 10) = true after Inverse")
	}
	dev.SetPixel(5, 10, Inverse)
	if !dev.Pixel(5, 10) {
		t.Error("Pixel(5, 10) = false after second Inverse")
	}
	dev.SetPixel(5, 10, Background)
	if dev.Pixel(5, 10) {
		t.Error("Pixel(5, 10) = true after Background")
	}

	if len(r.Ops) != 0 {
		t.Errorf("SetPixel sent %d ops, want none", len(r.Ops))
	}
}

func TestSetPixelReadBack(t *testing.T) {
	dev, _, _ := newTestDev(t, DefaultOpts)
	points := []image.Point{
		{0, 0}, {127, 0}, {0, 63}, {127, 63},
		{3, 7}, {3, 8}, {64, 15}, {64, 16}, {100, 55}, {100, 56},
	}
	for _, p := range points {
		dev.SetPixel(p.X, p.Y, Foreground)
		for _, q := range points {
			if got, want := dev.Pixel(q.X, q.Y), q == p; got != want {
				t.Errorf("after SetPixel(%d, %d): Pixel(%d, %d) = %t, want %t", p.X, p.Y, q.X, q.Y, got, want)
			}
		}
		dev.SetPixel(p.X, p.Y, Inverse)
		if dev.Pixel(p.X, p.Y) {
			t.Errorf("Pixel(%d, %d) = true after Inverse", p.X, p.Y)
		}
	}
	for x := 0; x < 128; x++ {
		for y := 0; y < 64; y++ {
			dev.SetPixel(x, y, Foreground)
		}
	}
	for i, b := range dev.Image().Pix {
		if b != 0xFF {
			t.Fatalf("buffer[%d] = 0x%02X with every pixel set, want 0xFF", i, b)
		}
	}
}

func TestSetPixelOutOfRange(t *testing.T) {
	dev, _, _ := newTestDev(t, DefaultOpts)
	for _, p := range []image.Point{{-1, 0}, {0, -1}, {128, 0}, {0, 64}, {500, 500}} {
		for _, c := range []Color{Foreground, Inverse} {
			dev.SetPixel(p.X, p.Y, c)
		}
		if dev.Pixel(p.X, p.Y) {
			t.Errorf("Pixel(%d, %d) = true, want false", p.X, p.Y)
		}
	}
	for i, b := range dev.Image().Pix {
		if b != 0 {
			t.Fatalf("buffer[%d] = 0x%02X, want 0", i, b)
		}
	}
}

func TestClearBuffer(t *testing.T) {
	dev, r, _ := newTestDev(t, DefaultOpts)
	for x := 0; x < 128; x++ {
		dev.SetPixel(x, x/2, Foreground)
	}
	dev.ClearBuffer()
	for i, b := range dev.Image().Pix {
		if b != 0 {
			t.Fatalf("buffer[%d] = 0x%02X after ClearBuffer, want 0", i, b)
		}
	}
	if len(r.Ops) != 0 {
		t.Errorf("ClearBuffer sent %d ops, want none", len(r.Ops))
	}
}

func TestUpdate(t *testing.T) {
	dev, r, _ := newTestDev(t, DefaultOpts)
	dev.SetPixel(5, 10, Foreground)
	dev.SetPixel(127, 63, Foreground)

	if err := dev.Update(); err != nil {
		t.Fatal(err)
	}
	if len(r.Ops) != 16 {
		t.Fatalf("got %d ops, want 16", len(r.Ops))
	}
	for page := 0; page < 8; page++ {
		if got, want := r.Ops[2*page].W, []byte{0x00, 0x10, 0xB0 | byte(page)}; !bytes.Equal(got, want) {
			t.Errorf("page %d cursor = % X, want % X", page, got, want)
		}
		if got := len(r.Ops[2*page+1].W); got != 128 {
			t.Errorf("page %d data has %d bytes, want 128", page, got)
		}
	}
	if got := r.Ops[3].W[5]; got != 0x04 {
		t.Errorf("page 1 column 5 = 0x%02X, want 0x04", got)
	}
	if got := r.Ops[15].W[127]; got != 0x80 {
		t.Errorf("page 7 column 127 = 0x%02X, want 0x80", got)
	}
}

func TestDrawBitmap(t *testing.T) {
	bitmap := []byte{
		0x11, 0x12, 0x13, 0x14, // band 0
		0x21, 0x22, 0x23, 0x24, // band 1
	}
	tests := []struct {
		name       string
		x, y, w, h int
		want       [][]byte
	}{
		{
			name: "origin",
			x:    0, y: 0, w: 4, h: 16,
			want: [][]byte{
				{0x00, 0x10, 0xB0}, {0x11, 0x12, 0x13, 0x14},
				{0x00, 0x10, 0xB1}, {0x21, 0x22, 0x23, 0x24},
			},
		},
		{
			name: "column above 15",
			x:    20, y: 16, w: 4, h: 8,
			want: [][]byte{
				{0x04, 0x11, 0xB2}, {0x11, 0x12, 0x13, 0x14},
			},
		},
		{
			name: "unaligned y is written at page boundary",
			x:    0, y: 13, w: 4, h: 8,
			want: [][]byte{
				{0x00, 0x10, 0xB1}, {0x11, 0x12, 0x13, 0x14},
			},
		},
		{
			name: "band above the display is skipped",
			x:    0, y: -3, w: 4, h: 8,
			want: [][]byte{},
		},
		{
			name: "second band lands on page 0",
			x:    0, y: -3, w: 4, h: 16,
			want: [][]byte{
				{0x00, 0x10, 0xB0}, {0x21, 0x22, 0x23, 0x24},
			},
		},
		{
			name: "band below the display is skipped",
			x:    0, y: 60, w: 4, h: 16,
			want: [][]byte{
				{0x00, 0x10, 0xB7}, {0x11, 0x12, 0x13, 0x14},
			},
		},
		{
			name: "negative x clips columns",
			x:    -2, y: 0, w: 4, h: 8,
			want: [][]byte{
				{0x00, 0x10, 0xB0}, {0x13, 0x14},
			},
		},
		{
			name: "right edge clips columns",
			x:    126, y: 8, w: 4, h: 8,
			want: [][]byte{
				{0x0E, 0x17, 0xB1}, {0x11, 0x12},
			},
		},
		{
			name: "entirely off screen",
			x:    200, y: 0, w: 4, h: 8,
			want: [][]byte{
				{0x08, 0x1C, 0xB0},
			},
		},
		{
			name: "partial band height",
			x:    0, y: 8, w: 4, h: 12,
			want: [][]byte{
				{0x00, 0x10, 0xB1}, {0x11, 0x12, 0x13, 0x14},
				{0x00, 0x10, 0xB2}, {0x21, 0x22, 0x23, 0x24},
			},
		},
		{
			name: "empty",
			x:    0, y: 0, w: 0, h: 8,
			want: [][]byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, r, _ := newTestDev(t, DefaultOpts)
			if err := dev.DrawBitmap(tt.x, tt.y, tt.w, tt.h, bitmap); err != nil {
				t.Fatalf("DrawBitmap() error = %v", err)
			}
			if diff := cmp.Diff(ops(tt.want...), r.Ops); diff != "" {
				t.Errorf("ops mismatch (-want +got):\n%s", diff)
			}
			for i, b := range dev.Image().Pix {
				if b != 0 {
					t.Fatalf("buffer[%d] = 0x%02X, DrawBitmap must not touch it", i, b)
				}
			}
		})
	}
}

func TestDrawBitmapShort(t *testing.T) {
	dev, r, _ := newTestDev(t, DefaultOpts)
	if err := dev.DrawBitmap(0, 0, 4, 9, make([]byte, 7)); err == nil {
		t.Error("DrawBitmap() with a short bitmap should fail")
	}
	if len(r.Ops) != 0 {
		t.Errorf("got %d ops, want none", len(r.Ops))
	}
}

func TestDrawBitmapWide(t *testing.T) {
	dev, r, _ := newTestDev(t, DefaultOpts)
	bitmap := make([]byte, 300)
	for i := range bitmap {
		bitmap[i] = byte(i)
	}
	if err := dev.DrawBitmap(-1, 0, 300, 8, bitmap); err != nil {
		t.Fatal(err)
	}
	want := ops([]byte{0x00, 0x10, 0xB0}, bitmap[1:129])
	if diff := cmp.Diff(want, r.Ops); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}

func TestDrawBitmapTooLarge(t *testing.T) {
	dev, r, _ := newTestDev(t, DefaultOpts)
	if err := dev.DrawBitmap(0, 0, math.MaxInt/2+1, 16, make([]byte, 8)); err == nil {
		t.Error("DrawBitmap() with an overflowing size should fail")
	}
	if len(r.Ops) != 0 {
		t.Errorf("got %d ops, want none", len(r.Ops))
	}
}

func TestDraw(t *testing.T) {
	dev, r, _ := newTestDev(t, DefaultOpts)

	if err := dev.Draw(image.Rect(8, 8, 16, 16), image.NewUniform(color.White), image.Point{}); err != nil {
		t.Fatal(err)
	}
	buf := dev.Image().Pix
	for x := 0; x < 128; x++ {
		want := byte(0)
		if x >= 8 && x < 16 {
			want = 0xFF
		}
		if buf[128+x] != want {
			t.Errorf("buffer[%d] = 0x%02X, want 0x%02X", 128+x, buf[128+x], want)
		}
	}
	if len(r.Ops) != 16 {
		t.Errorf("got %d ops, want 16", len(r.Ops))
	}
}

func TestDrawImage(t *testing.T) {
	dev, _, _ := newTestDev(t, Opts{W: 16, H: 8})
	src := image.NewGray(image.Rect(0, 0, 16, 8))
	src.SetGray(3, 2, color.Gray{Y: 0xFF})
	src.SetGray(4, 2, color.Gray{Y: 0x10})

	if err := dev.Draw(dev.Bounds(), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if !dev.Pixel(3, 2) {
		t.Error("Pixel(3, 2) = false, want true")
	}
	if dev.Pixel(4, 2) {
		t.Error("Pixel(4, 2) = true, want false")
	}
}

func TestWrite(t *testing.T) {
	dev, r, _ := newTestDev(t, Opts{W: 16, H: 16})
	pixels := make([]byte, 32)
	for i := range pixels {
		pixels[i] = byte(i)
	}

	n, err := dev.Write(pixels)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(pixels) {
		t.Errorf("Write() = %d, want %d", n, len(pixels))
	}
	if diff := cmp.Diff(pixels, dev.Image().Pix); diff != "" {
		t.Errorf("buffer mismatch (-want +got):\n%s", diff)
	}
	want := ops(
		[]byte{0x00, 0x10, 0xB0}, pixels[:16],
		[]byte{0x00, 0x10, 0xB1}, pixels[16:],
	)
	if diff := cmp.Diff(want, r.Ops); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteInvalidBufferSize(t *testing.T) {
	dev, _, _ := newTestDev(t, DefaultOpts)
	for _, size := range []int{0, 1023, 1025} {
		if _, err := dev.Write(make([]byte, size)); err == nil {
			t.Errorf("Write(%d bytes) should fail", size)
		}
	}
}

func TestDevBoundsColorModel(t *testing.T) {
	dev, _, _ := newTestDev(t, Opts{W: 96, H: 16})
	if want := image.Rect(0, 0, 96, 16); dev.Bounds() != want {
		t.Errorf("Bounds() = %v, want %v", dev.Bounds(), want)
	}
	if dev.ColorModel() != image1bit.BitModel {
		t.Error("ColorModel() did not return BitModel")
	}
}

func TestDisplayer(t *testing.T) {
	dev, r, _ := newTestDev(t, DefaultOpts)
	v := dev.Displayer()

	if x, y := v.Size(); x != 128 || y != 64 {
		t.Errorf("Size() = (%d, %d), want (128, 64)", x, y)
	}
	v.SetPixel(1, 2, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF})
	v.SetPixel(2, 2, color.RGBA{0x10, 0x10, 0x10, 0xFF})
	if !dev.Pixel(1, 2) {
		t.Error("Pixel(1, 2) = false after white SetPixel")
	}
	if dev.Pixel(2, 2) {
		t.Error("Pixel(2, 2) = true after dark SetPixel")
	}
	v.SetPixel(1, 2, color.RGBA{})
	if dev.Pixel(1, 2) {
		t.Error("Pixel(1, 2) = true after transparent SetPixel")
	}
	if len(r.Ops) != 0 {
		t.Errorf("SetPixel sent %d ops, want none", len(r.Ops))
	}
	if err := v.Display(); err != nil {
		t.Fatal(err)
	}
	if len(r.Ops) != 16 {
		t.Errorf("Display sent %d ops, want 16", len(r.Ops))
	}
}

func TestPanelRoundTrip(t *testing.T) {
	p := &ch1115test.Panel{}
	dev, err := NewSPI(p, &p.DC, &Opts{W: 128, H: 64, CS: &p.CS, Sleep: func(time.Duration) {}})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 64; i++ {
		dev.SetPixel(i*2, i, Foreground)
		dev.SetPixel(127-i, i, Foreground)
	}
	if err := dev.Update(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(dev.Image().Pix, p.Bytes(128, 64)); diff != "" {
		t.Errorf("display RAM mismatch (-want +got):\n%s", diff)
	}
	if p.Deselected != 0 {
		t.Errorf("Deselected = %d, want 0", p.Deselected)
	}

	sprite := []byte{0xFF, 0x81, 0x81, 0xFF}
	if err := dev.DrawBitmap(60, 24, 4, 8, sprite); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sprite, p.RAM[3][60:64]); diff != "" {
		t.Errorf("sprite mismatch (-want +got):\n%s", diff)
	}
}
