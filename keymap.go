package main

import (
	"github.com/bendahl/uinput"
	evdev "github.com/holoplot/go-evdev"
)

// Button is one of the eight abstract buttons.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonL
	ButtonR
	ButtonSelect
	ButtonStart
)

// Buttons lists every abstract button in evaluation order.
var Buttons = []Button{ButtonA, ButtonB, ButtonX, ButtonY, ButtonL, ButtonR, ButtonSelect, ButtonStart}

// Axis is one of the two abstract axes. Positive is right and up.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Axes lists every abstract axis in evaluation order.
var Axes = []Axis{AxisX, AxisY}

// AxisMax is the sink's full-scale integer axis value.
const AxisMax = uinput.MaximumAxisValue

// ButtonGlyph is the feedback glyph for each button.
var ButtonGlyph = map[Button]string{
	ButtonA:      "A",
	ButtonB:      "B",
	ButtonX:      "X",
	ButtonY:      "Y",
	ButtonL:      "L",
	ButtonR:      "R",
	ButtonSelect: "e",
	ButtonStart:  "t",
}

// AxisGlyphs holds the negative and positive direction glyphs of an axis.
type AxisGlyphs struct {
	Neg, Pos string
}

// AxisGlyph is the feedback glyph pair for each axis.
var AxisGlyph = map[Axis]AxisGlyphs{
	AxisX: {Neg: "<", Pos: ">"},
	AxisY: {Neg: "v", Pos: "^"},
}

// Glyphs is every feedback glyph in display order.
var Glyphs = []string{"<", ">", "^", "v", "A", "B", "X", "Y", "L", "R", "t", "e"}

// ButtonCodes maps each abstract button to the evdev key codes that may carry
// it, in preference order. Gamepad-class codes come first; the BTN_TRIGGER
// block covers generic USB joystick adapters.
var ButtonCodes = map[Button][]evdev.EvCode{
	ButtonA:      {evdev.BTN_EAST, evdev.BTN_THUMB},
	ButtonB:      {evdev.BTN_SOUTH, evdev.BTN_THUMB2},
	ButtonX:      {evdev.BTN_NORTH, evdev.BTN_TRIGGER},
	ButtonY:      {evdev.BTN_WEST, evdev.BTN_TOP},
	ButtonL:      {evdev.BTN_TL, evdev.BTN_TOP2},
	ButtonR:      {evdev.BTN_TR, evdev.BTN_PINKIE},
	ButtonSelect: {evdev.BTN_SELECT, evdev.BTN_BASE3},
	ButtonStart:  {evdev.BTN_START, evdev.BTN_BASE4},
}

// AxisCodes maps each abstract axis to the evdev absolute codes that may carry
// it, in preference order: a hat if the device has one, else the main stick.
var AxisCodes = map[Axis][]evdev.EvCode{
	AxisX: {evdev.ABS_HAT0X, evdev.ABS_X},
	AxisY: {evdev.ABS_HAT0Y, evdev.ABS_Y},
}

// AxisSign converts a raw reading direction into the abstract convention.
// Raw Y grows downward.
var AxisSign = map[Axis]float64{
	AxisX: 1,
	AxisY: -1,
}

// sinkAxisCode is the virtual gamepad axis carrying each abstract axis.
var sinkAxisCode = map[Axis]evdev.EvCode{
	AxisX: evdev.ABS_X,
	AxisY: evdev.ABS_Y,
}

// uinputButton maps each abstract button onto the virtual gamepad, using the
// standard gamepad layout.
var uinputButton = map[Button]evdev.EvCode{
	ButtonX:      uinput.ButtonNorth,
	ButtonA:      uinput.ButtonEast,
	ButtonB:      uinput.ButtonSouth,
	ButtonY:      uinput.ButtonWest,
	ButtonL:      uinput.ButtonBumperLeft,
	ButtonR:      uinput.ButtonBumperRight,
	ButtonStart:  uinput.ButtonStart,
	ButtonSelect: uinput.ButtonSelect,
}
