package main

import (
	"fmt"
	"sort"

	evdev "github.com/holoplot/go-evdev"
)

// InputState is the live raw state of every open controller.
type InputState interface {
	// EventPaths lists the kernel event paths of all live devices.
	EventPaths() []string
	// ButtonValue returns the analog value in [0,1] of the physical button
	// carrying b. ok is false when the device has no such button.
	ButtonValue(eventPath string, b Button) (v float64, ok bool)
	// AxisValue returns the position of the physical control carrying a,
	// normalised to [0,1] with 0.5 at rest. ok is false when the device has
	// no such control.
	AxisValue(eventPath string, a Axis) (v float64, ok bool)
}

// DeviceEvent carries one raw input event, or a read error, from a device
// reader goroutine.
type DeviceEvent struct {
	dev *joystick
	ev  *evdev.InputEvent
	err error
}

// inputDevice is the part of an evdev node a joystick reads from.
type inputDevice interface {
	ReadOne() (*evdev.InputEvent, error)
	State(t evdev.EvType) (evdev.StateMap, error)
	AbsInfos() (map[evdev.EvCode]evdev.AbsInfo, error)
	Close() error
}

// joystick is an open controller and its last known state. Only the loop
// goroutine touches keys and abs.
type joystick struct {
	path    string
	dev     inputDevice
	keyCaps map[evdev.EvCode]bool
	keys    map[evdev.EvCode]bool
	abs     map[evdev.EvCode]evdev.AbsInfo
}

func openJoystick(path string) (*joystick, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	j := &joystick{path: path, dev: dev, keyCaps: make(map[evdev.EvCode]bool)}
	for _, c := range dev.CapableEvents(evdev.EV_KEY) {
		j.keyCaps[c] = true
	}
	if err := j.sync(); err != nil {
		dev.Close()
		return nil, err
	}
	return j, nil
}

// sync re-reads the full key and axis state from the kernel.
func (j *joystick) sync() error {
	keys, err := j.dev.State(evdev.EV_KEY)
	if err != nil {
		return fmt.Errorf("read key state %s: %w", j.path, err)
	}
	abs, err := j.dev.AbsInfos()
	if err != nil {
		return fmt.Errorf("read axis state %s: %w", j.path, err)
	}
	j.keys = keys
	j.abs = abs
	return nil
}

func (j *joystick) apply(ev *evdev.InputEvent) {
	switch ev.Type {
	case evdev.EV_KEY:
		j.keys[ev.Code] = ev.Value != 0
	case evdev.EV_ABS:
		info := j.abs[ev.Code]
		info.Value = ev.Value
		j.abs[ev.Code] = info
	case evdev.EV_SYN:
		if ev.Code == evdev.SYN_DROPPED {
			if err := j.sync(); err != nil {
				logger.Warn("resync after dropped events failed", "device", j.path, "err", err)
			}
		}
	}
}

// DeviceSet owns the open controllers. Each device has a reader goroutine
// feeding Events; the loop applies them with Handle.
//
// Readers are never waited for. go-evdev leaves the fd in blocking mode, so
// closing a device does not wake a reader stuck in ReadOne; it exits on its
// next read instead, and anything it sends by then is dropped as stale.
type DeviceSet struct {
	devices map[string]*joystick
	events  chan DeviceEvent
	done    chan struct{}
}

// NewDeviceSet creates an empty set.
func NewDeviceSet() *DeviceSet {
	return &DeviceSet{
		devices: make(map[string]*joystick),
		events:  make(chan DeviceEvent, 256),
		done:    make(chan struct{}),
	}
}

// Events delivers raw events from every open device.
func (s *DeviceSet) Events() <-chan DeviceEvent {
	return s.events
}

// Sync opens every device in lookup that is not yet open and closes every
// open device that is no longer in lookup. A device that cannot be opened is
// logged and left out; it reads as absent until the next hotplug event.
func (s *DeviceSet) Sync(lookup IdentityByEventPath) {
	for path, j := range s.devices {
		if _, ok := lookup[path]; !ok {
			dbg("closing %s", path)
			j.dev.Close()
			delete(s.devices, path)
		}
	}
	for path, id := range lookup {
		if _, ok := s.devices[path]; ok {
			continue
		}
		j, err := openJoystick(path)
		if err != nil {
			logger.Warn("cannot open controller", "player", id.Name, "err", err)
			continue
		}
		dbg("opened %s for %s", path, id.Name)
		s.add(j)
	}
}

// add registers an open joystick and starts its reader.
func (s *DeviceSet) add(j *joystick) {
	s.devices[j.path] = j
	go s.monitor(j)
}

// monitor reads events from a single device until it is closed or errors.
func (s *DeviceSet) monitor(j *joystick) {
	for {
		ev, err := j.dev.ReadOne()
		if err == nil && ev.Type != evdev.EV_KEY && ev.Type != evdev.EV_ABS && ev.Type != evdev.EV_SYN {
			continue
		}
		select {
		case s.events <- DeviceEvent{dev: j, ev: ev, err: err}:
		case <-s.done:
			return
		}
		if err != nil {
			return
		}
	}
}

// Handle applies one event from Events to the device state.
func (s *DeviceSet) Handle(de DeviceEvent) {
	cur, ok := s.devices[de.dev.path]
	if !ok || cur != de.dev {
		return
	}
	if de.err != nil {
		dbg("read %s: %v", cur.path, de.err)
		cur.dev.Close()
		delete(s.devices, cur.path)
		return
	}
	cur.apply(de.ev)
}

// Close closes every device. It does not wait for the readers.
func (s *DeviceSet) Close() {
	close(s.done)
	for path, j := range s.devices {
		j.dev.Close()
		delete(s.devices, path)
	}
}

func (s *DeviceSet) EventPaths() []string {
	paths := make([]string, 0, len(s.devices))
	for p := range s.devices {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (s *DeviceSet) ButtonValue(eventPath string, b Button) (float64, bool) {
	j, ok := s.devices[eventPath]
	if !ok {
		return 0, false
	}
	for _, code := range ButtonCodes[b] {
		if !j.keyCaps[code] {
			continue
		}
		if j.keys[code] {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (s *DeviceSet) AxisValue(eventPath string, a Axis) (float64, bool) {
	j, ok := s.devices[eventPath]
	if !ok {
		return 0, false
	}
	for _, code := range AxisCodes[a] {
		info, ok := j.abs[code]
		if !ok || info.Maximum <= info.Minimum {
			continue
		}
		return normalizeAbs(info), true
	}
	return 0, false
}

// normalizeAbs maps an absolute axis reading onto [0,1].
func normalizeAbs(info evdev.AbsInfo) float64 {
	v := float64(info.Value-info.Minimum) / float64(info.Maximum-info.Minimum)
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
