package ch1115

import "time"

// CH1115 command set. Single byte commands that carry an argument in their
// low bits are OR'ed with it by sendCommand.
const (
	setColumnLow     = 0x00 // 0x00-0x0F: column address bits 3-0
	setColumnHigh    = 0x10 // 0x10-0x17: column address bits 6-4
	setBreathEffect  = 0x23 // followed by the effect configuration
	setScrollWindow  = 0x24 // followed by start and end column
	setScrollMode    = 0x28 // 0x28-0x2B
	deactivateScroll = 0x2E
	activateScroll   = 0x2F
	setPumpVoltage   = 0x30 // 0x30-0x33
	setStartLine     = 0x40 // 0x40-0x7F
	setContrast      = 0x81 // followed by the contrast level
	setDCDCOnOff     = 0x8B // followed by the DC-DC on/off mode
	setSegmentRemap  = 0xA0 // 0xA0 normal, 0xA1 reversed
	setSegmentPads   = 0xA2 // 0xA2-0xA3
	setEntireOff     = 0xA4 // 0xA4 RAM content, 0xA5 all pixels on
	setNormal        = 0xA6
	setInverted      = 0xA7
	setMultiplex     = 0xA8 // followed by the multiplex ratio
	setIref          = 0xAD // followed by the reference current setting
	setDisplayOff    = 0xAE
	setDisplayOn     = 0xAF
	setPageAddr      = 0xB0 // 0xB0-0xB7
	setComScan       = 0xC0 // 0xC0 normal, 0xC8 reversed
	setOffset        = 0xD3 // followed by the display offset
	setOscillator    = 0xD5 // followed by the oscillator frequency
	setPrecharge     = 0xD9 // followed by the precharge period
	setComLevel      = 0xDB // followed by the common pad output voltage
)

// Register values written during initialization.
const (
	irefInternal     = 0x50
	offsetNone       = 0x00
	oscillatorFreq   = 0xA0
	prechargePeriod  = 0x22
	comLevel         = 0x35
	pumpVoltage      = 0x01
	dcdcOff          = 0x00
	comScanReversed  = 0x08
	segmentReversed  = 0x01
	scrollStartPage  = 0x00
	scrollStartCol   = 0x00
	pageBurstSpacing = 2 * time.Microsecond
)

// Power on timings.
const (
	resetPulse  = 10 * time.Millisecond
	resetSettle = 100 * time.Millisecond
	initSettle  = 100 * time.Millisecond
)

// ScrollInterval is the number of frames between scroll steps.
type ScrollInterval byte

// Scroll intervals as encoded by the controller.
const (
	Interval6Frames   ScrollInterval = 0x00
	Interval32Frames  ScrollInterval = 0x01
	Interval64Frames  ScrollInterval = 0x02
	Interval128Frames ScrollInterval = 0x03
	Interval3Frames   ScrollInterval = 0x04
	Interval4Frames   ScrollInterval = 0x05
	Interval5Frames   ScrollInterval = 0x06
	Interval2Frames   ScrollInterval = 0x07
)

// ScrollDirection is the horizontal scroll direction.
type ScrollDirection byte

const (
	ScrollRight ScrollDirection = 0x26
	ScrollLeft  ScrollDirection = 0x27
)

// ScrollMode selects how the scroll proceeds once activated.
type ScrollMode byte

const (
	// ScrollContinuous keeps scrolling until deactivated.
	ScrollContinuous ScrollMode = setScrollMode
	// ScrollOneColumn moves the window by a single column.
	ScrollOneColumn ScrollMode = setScrollMode + 1
	// ScrollOnePage moves the window across once.
	ScrollOnePage ScrollMode = setScrollMode + 2
	// ScrollOneScreen scrolls the full screen once.
	ScrollOneScreen ScrollMode = setScrollMode + 3
)

// DefaultFade is the breathing effect enabled with the default brightness
// and interval.
const DefaultFade byte = 0x81

// FadeBits builds an enabled breathing effect configuration.
//
// brightness selects the maximum brightness (0-3) and interval the time
// between brightness steps (0-7). Use 0 with FadeEffect to disable it.
func FadeBits(brightness, interval byte) byte {
	return 0x80 | (brightness&0x03)<<3 | interval&0x07
}
