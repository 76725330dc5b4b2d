package main

import (
	"sort"
	"testing"
)

// fakeInputs is an in-memory InputState. Missing entries read as absent.
type fakeInputs struct {
	buttons map[string]map[Button]float64
	axes    map[string]map[Axis]float64
}

func newFakeInputs() *fakeInputs {
	return &fakeInputs{
		buttons: make(map[string]map[Button]float64),
		axes:    make(map[string]map[Axis]float64),
	}
}

// add registers a live device with all axes centred and all buttons released.
func (f *fakeInputs) add(path string) {
	f.buttons[path] = map[Button]float64{}
	for _, b := range Buttons {
		f.buttons[path][b] = 0
	}
	f.axes[path] = map[Axis]float64{AxisX: 0.5, AxisY: 0.5}
}

func (f *fakeInputs) remove(path string) {
	delete(f.buttons, path)
	delete(f.axes, path)
}

func (f *fakeInputs) EventPaths() []string {
	var paths []string
	for p := range f.buttons {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (f *fakeInputs) ButtonValue(path string, b Button) (float64, bool) {
	v, ok := f.buttons[path][b]
	return v, ok
}

func (f *fakeInputs) AxisValue(path string, a Axis) (float64, bool) {
	v, ok := f.axes[path][a]
	return v, ok
}

// fakeSink records the last committed frame.
type fakeSink struct {
	axes    [2]int32
	buttons [8]bool

	committedAxes    [2]int32
	committedButtons [8]bool
	commits          int
	closed           bool
}

func (s *fakeSink) SetAxis(a Axis, v int32) error {
	s.axes[a] = v
	return nil
}

func (s *fakeSink) SetButton(b Button, pressed bool) error {
	s.buttons[b] = pressed
	return nil
}

func (s *fakeSink) Commit() error {
	s.committedAxes = s.axes
	s.committedButtons = s.buttons
	s.commits++
	return nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

func testWords() Words {
	return Words{
		Adjectives: []string{"Brave", "Calm", "Icy", "Mighty", "Sly", "Extraordinary"},
		Nouns:      []string{"Fox", "Otter", "Owl", "Rhinoceros", "Yak"},
		Teams:      []string{"Comets", "Rockets", "Titans"},
	}
}

func testWordhash(t *testing.T) *Wordhash {
	t.Helper()
	wh, err := NewWordhash(testWords(), 7, 11)
	if err != nil {
		t.Fatalf("NewWordhash() error = %v", err)
	}
	return wh
}

// testIdentities returns n identities with distinct ports and event paths.
func testIdentities(t *testing.T, n int) []Identity {
	t.Helper()
	wh := testWordhash(t)
	var ids []Identity
	seen := map[string]bool{}
	for i := 0; len(ids) < n; i++ {
		port := "1." + string(rune('0'+i%10)) + ":1." + string(rune('0'+i/10))
		name := wh.ObjectName([]byte(port), 12)
		if seen[name] {
			continue
		}
		seen[name] = true
		ids = append(ids, Identity{
			PortPath:  port,
			EventPath: "/dev/input/event" + string(rune('a'+i)),
			Name:      name,
		})
	}
	return ids
}
