package main

import (
	"errors"
	"fmt"
	"strconv"

	evdev "github.com/holoplot/go-evdev"
)

const (
	uinputPath = "/dev/uinput"

	sinkVendor  = 0x1209
	sinkProduct = 0x7e4a
)

// Sink is a virtual controller. Writes are buffered until Commit, which
// delivers them as a single frame.
type Sink interface {
	SetAxis(axis Axis, value int32) error
	SetButton(b Button, pressed bool) error
	Commit() error
	Close() error
}

// SinkName expands the configured name template for a team.
func SinkName(template string, t Team) string {
	return expandRefs(template, map[string]string{
		"index": strconv.FormatUint(uint64(t.OutIndex), 10),
		"team":  t.Name,
	})
}

// eventWriter is the part of a uinput device a sink writes frames to.
type eventWriter interface {
	WriteOne(ev *evdev.InputEvent) error
	Close() error
}

// virtualPad is a uinput device created through go-evdev. Closing it removes
// the device from the system.
type virtualPad struct {
	*evdev.InputDevice
}

func (p virtualPad) Close() error {
	return errors.Join(evdev.DestroyDevice(p.InputDevice), p.InputDevice.Close())
}

func sinkCapabilities() map[evdev.EvType][]evdev.EvCode {
	keys := make([]evdev.EvCode, 0, len(Buttons))
	for _, b := range Buttons {
		keys = append(keys, uinputButton[b])
	}
	axes := make([]evdev.EvCode, 0, len(Axes))
	for _, a := range Axes {
		axes = append(axes, sinkAxisCode[a])
	}
	return map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: keys,
		evdev.EV_ABS: axes,
	}
}

// gamepadSink is a Sink backed by a uinput gamepad. Commit emits the channels
// whose value changed since the last delivered frame, followed by one
// SYN_REPORT.
type gamepadSink struct {
	pad eventWriter

	axes    [2]int32
	buttons [8]bool

	sentAxes    [2]int32
	sentButtons [8]bool
	sent        bool
}

// NewGamepadSink creates a virtual gamepad named name.
func NewGamepadSink(name string) (Sink, error) {
	id := evdev.InputID{
		BusType: evdev.BUS_USB,
		Vendor:  sinkVendor,
		Product: sinkProduct,
		Version: 1,
	}
	dev, err := evdev.CreateDevice(name, id, sinkCapabilities())
	if err != nil {
		return nil, fmt.Errorf("create virtual gamepad %q: %w", name, err)
	}
	return newGamepadSink(virtualPad{dev}), nil
}

func newGamepadSink(pad eventWriter) *gamepadSink {
	return &gamepadSink{pad: pad}
}

func (s *gamepadSink) SetAxis(axis Axis, value int32) error {
	if axis < 0 || int(axis) >= len(s.axes) {
		return fmt.Errorf("unknown axis %d", axis)
	}
	if value > AxisMax {
		value = AxisMax
	} else if value < -AxisMax {
		value = -AxisMax
	}
	s.axes[axis] = value
	return nil
}

func (s *gamepadSink) SetButton(b Button, pressed bool) error {
	if b < 0 || int(b) >= len(s.buttons) {
		return fmt.Errorf("unknown button %d", b)
	}
	s.buttons[b] = pressed
	return nil
}

// frame returns the pending changes as input events, without the trailing
// sync.
func (s *gamepadSink) frame() []evdev.InputEvent {
	var evs []evdev.InputEvent
	for _, a := range Axes {
		v := s.axes[a]
		if s.sent && v == s.sentAxes[a] {
			continue
		}
		if a == AxisY {
			// Linux joysticks report up as negative.
			v = -v
		}
		evs = append(evs, evdev.InputEvent{Type: evdev.EV_ABS, Code: sinkAxisCode[a], Value: v})
	}
	for _, b := range Buttons {
		down := s.buttons[b]
		if s.sent && down == s.sentButtons[b] {
			continue
		}
		var v int32
		if down {
			v = 1
		}
		evs = append(evs, evdev.InputEvent{Type: evdev.EV_KEY, Code: uinputButton[b], Value: v})
	}
	return evs
}

// Commit writes the pending changes and one SYN_REPORT. Nothing is written
// when nothing changed. After a failed write the whole difference is sent
// again on the next commit.
func (s *gamepadSink) Commit() error {
	evs := s.frame()
	if len(evs) == 0 {
		return nil
	}
	evs = append(evs, evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT})
	for i := range evs {
		if err := s.pad.WriteOne(&evs[i]); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}
	s.sentAxes = s.axes
	s.sentButtons = s.buttons
	s.sent = true
	return nil
}

func (s *gamepadSink) Close() error {
	return s.pad.Close()
}

// openSinks creates one sink per team, indexed like r.Teams.
func openSinks(r *Roster, template string) ([]Sink, error) {
	sinks := make([]Sink, 0, len(r.Teams))
	for _, t := range r.Teams {
		s, err := NewGamepadSink(SinkName(template, t))
		if err != nil {
			closeSinks(sinks)
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}

func closeSinks(sinks []Sink) {
	for _, s := range sinks {
		s.Close()
	}
}
