package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	defaultByPathDir = "/dev/input/by-path"
	eventDevDir      = "/dev/input"

	// joystickMarker identifies event-producing joystick nodes in the
	// by-path directory.
	joystickMarker = "event-joystick"
)

var (
	// pci-0000:00:14.0-usb-0:2.3:1.0-event-joystick
	//                        ^^^^^ ^ sub port
	//                        port fragment ending in :1
	portPathPattern = regexp.MustCompile(`^pci.*usb.*:(.*:1)\.([0-9])-event-joystick$`)
	eventPattern    = regexp.MustCompile(`(?:^|/)event([0-9]+)$`)
)

// Identity is one physical controller as seen during a single resolution pass.
type Identity struct {
	FullPath  string // by-path symlink
	PortPath  string // stable across replugs into the same port
	EventPath string // live kernel node, e.g. /dev/input/event7
	Name      string
}

// IdentityByPort indexes identities by PortPath.
type IdentityByPort map[string]Identity

// IdentityByEventPath indexes identities by EventPath.
type IdentityByEventPath map[string]Identity

// MalformedEntryError reports a by-path entry that looks like a joystick but
// does not decompose into a port path and sub port. It means the host lays
// out device paths in a way this program does not understand.
type MalformedEntryError struct {
	Entry string
	What  string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed joystick entry %q: %s", e.Entry, e.What)
}

// ParsePortPath splits a by-path entry name into its stable port fragment and
// sub port index.
func ParsePortPath(name string) (port string, sub int, ok bool) {
	m := portPathPattern.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	sub, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], sub, true
}

// EventPathFromLink converts a by-path symlink target such as ../event7
// into the absolute kernel event path.
func EventPathFromLink(target string) (string, bool) {
	m := eventPattern.FindStringSubmatch(target)
	if m == nil {
		return "", false
	}
	return filepath.Join(eventDevDir, "event"+m[1]), true
}

// Resolver scans the by-path directory for joystick identities.
type Resolver struct {
	Dir        string
	PortsToUse int
	MaxNameLen int
	Words      *Wordhash
}

// NewResolver builds a Resolver from the application config.
func NewResolver(cfg *AppConfig, words *Wordhash) *Resolver {
	return &Resolver{
		Dir:        cfg.ByPathDir,
		PortsToUse: cfg.PortsToUse,
		MaxNameLen: cfg.NameMaxLength,
		Words:      words,
	}
}

// Resolve enumerates the joystick identities currently present, ordered by
// PortPath descending.
func (r *Resolver) Resolve() ([]Identity, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.Dir, err)
	}

	var ids []Identity
	for _, e := range entries {
		name := e.Name()
		if !strings.Contains(name, joystickMarker) {
			continue
		}

		port, sub, ok := ParsePortPath(name)
		if !ok {
			return nil, &MalformedEntryError{Entry: name, What: "no usb port fragment"}
		}
		if sub >= r.PortsToUse {
			dbg("skipping %s: sub port %d not below %d", name, sub, r.PortsToUse)
			continue
		}

		full := filepath.Join(r.Dir, name)
		target, err := os.Readlink(full)
		if err != nil {
			return nil, fmt.Errorf("read link %s: %w", full, err)
		}
		eventPath, ok := EventPathFromLink(target)
		if !ok {
			return nil, &MalformedEntryError{Entry: name, What: "link target " + target + " is not an event node"}
		}

		portPath := port + "." + strconv.Itoa(sub)
		ids = append(ids, Identity{
			FullPath:  full,
			PortPath:  portPath,
			EventPath: eventPath,
			Name:      r.Words.ObjectName([]byte(portPath), r.MaxNameLen),
		})
	}

	SortByPortDesc(ids)
	return ids, nil
}

// SortByPortDesc orders identities by PortPath, highest first.
func SortByPortDesc(ids []Identity) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].PortPath > ids[j].PortPath
	})
}

// NewLookups indexes ids both ways.
func NewLookups(ids []Identity) (IdentityByPort, IdentityByEventPath) {
	byPort := make(IdentityByPort, len(ids))
	byEvent := make(IdentityByEventPath, len(ids))
	for _, id := range ids {
		byPort[id.PortPath] = id
		byEvent[id.EventPath] = id
	}
	return byPort, byEvent
}

// Identities returns the indexed identities ordered by PortPath descending.
func (l IdentityByPort) Identities() []Identity {
	ids := make([]Identity, 0, len(l))
	for _, id := range l {
		ids = append(ids, id)
	}
	SortByPortDesc(ids)
	return ids
}
