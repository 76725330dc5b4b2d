package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// HotplugKind classifies a device notification.
type HotplugKind int

const (
	HotplugOther HotplugKind = iota
	HotplugConnected
	HotplugDisconnected
)

func (k HotplugKind) String() string {
	switch k {
	case HotplugConnected:
		return "connected"
	case HotplugDisconnected:
		return "disconnected"
	}
	return "other"
}

// HotplugEvent is a change in the by-path directory.
type HotplugEvent struct {
	Kind HotplugKind
	Path string
}

// ReconcileState is the observable state of a Reconciler.
type ReconcileState int

const (
	Stable ReconcileState = iota
	Reconciling
)

// IdentitySource produces a fresh identity set.
type IdentitySource interface {
	Resolve() ([]Identity, error)
}

// Reconciler owns the current identity maps and replaces them wholesale
// whenever a controller connects or disconnects.
type Reconciler struct {
	source  IdentitySource
	state   ReconcileState
	byPort  IdentityByPort
	byEvent IdentityByEventPath

	// OnChange is called with the new event path map after every
	// reconciliation, before the state returns to Stable.
	OnChange func(IdentityByEventPath)
}

// NewReconciler starts from an already resolved identity set.
func NewReconciler(source IdentitySource, ids []Identity) *Reconciler {
	r := &Reconciler{source: source}
	r.byPort, r.byEvent = NewLookups(ids)
	return r
}

func (r *Reconciler) State() ReconcileState { return r.state }

// ByPort is the current identity map keyed by port path.
func (r *Reconciler) ByPort() IdentityByPort { return r.byPort }

// ByEventPath is the current identity map keyed by kernel event path.
func (r *Reconciler) ByEventPath() IdentityByEventPath { return r.byEvent }

// Handle reacts to ev. It reports whether a reconciliation ran, in which
// case the caller skips aggregation for this iteration. A resolution error
// leaves the previous maps in place and is returned for the caller to treat
// as fatal.
func (r *Reconciler) Handle(ev HotplugEvent) (bool, error) {
	if ev.Kind != HotplugConnected && ev.Kind != HotplugDisconnected {
		return false, nil
	}

	r.state = Reconciling
	defer func() { r.state = Stable }()

	ids, err := r.source.Resolve()
	if err != nil {
		return true, fmt.Errorf("re-resolve after %s %s: %w", ev.Kind, ev.Path, err)
	}
	r.byPort, r.byEvent = NewLookups(ids)
	logger.Info("controllers changed", "event", ev.Kind.String(), "path", ev.Path, "count", len(ids))
	if r.OnChange != nil {
		r.OnChange(r.byEvent)
	}
	return true, nil
}

// Watcher turns fsnotify activity in the by-path directory into hotplug
// events for joystick nodes.
type Watcher struct {
	fw     *fsnotify.Watcher
	events chan HotplugEvent
	errs   chan error
	done   chan struct{}
}

// WatchDevices starts watching dir.
func WatchDevices(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w := &Watcher{
		fw:     fw,
		events: make(chan HotplugEvent, 16),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go w.run(dir)
	return w, nil
}

func (w *Watcher) run(dir string) {
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			hp, ok := classifyFSEvent(dir, ev)
			if !ok {
				continue
			}
			select {
			case w.events <- hp:
			case <-w.done:
				return
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		case <-w.done:
			return
		}
	}
}

// classifyFSEvent maps a filesystem event onto a hotplug event. Removal of
// the watched directory itself counts as a disconnect.
func classifyFSEvent(dir string, ev fsnotify.Event) (HotplugEvent, bool) {
	if filepath.Clean(ev.Name) != filepath.Clean(dir) && !strings.Contains(filepath.Base(ev.Name), joystickMarker) {
		return HotplugEvent{}, false
	}
	switch {
	case ev.Has(fsnotify.Create):
		return HotplugEvent{Kind: HotplugConnected, Path: ev.Name}, true
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return HotplugEvent{Kind: HotplugDisconnected, Path: ev.Name}, true
	}
	return HotplugEvent{Kind: HotplugOther, Path: ev.Name}, true
}

// Events delivers hotplug events.
func (w *Watcher) Events() <-chan HotplugEvent { return w.events }

// Errors delivers watcher errors. Errors are dropped while one is pending.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
