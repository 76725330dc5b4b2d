package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Team is one virtual controller and the players feeding it.
type Team struct {
	Name     string   `yaml:"name"`
	Players  []string `yaml:"players"`
	OutIndex uint     `yaml:"out_index"`
}

// Roster is the persisted team lock. Once written it is only ever read and
// validated; delete the file to derive a new one.
type Roster struct {
	Teams []Team `yaml:"teams"`
}

// TeamNamer names a team from its members' display names.
type TeamNamer interface {
	TeamName(members []string) string
}

// SizeMismatchError is returned when the number of connected controllers does
// not match the team allocation at roster creation.
type SizeMismatchError struct {
	Expected int
	Actual   int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("incorrect number of joysticks connected: expected %d, found %d", e.Expected, e.Actual)
}

// MissingPlayersError lists every rostered player that is not connected.
type MissingPlayersError struct {
	Names []string
}

func (e *MissingPlayersError) Error() string {
	return fmt.Sprintf("missing players: %s", strings.Join(e.Names, ", "))
}

// CountMismatchError is returned when every rostered player is present but
// extra controllers are connected too.
type CountMismatchError struct {
	Expected int
	Actual   int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("incorrect number of joysticks connected: roster has %d, found %d", e.Expected, e.Actual)
}

// BuildRoster slices ids, ordered by PortPath descending, into consecutive
// teams of the given sizes.
func BuildRoster(ids []Identity, sizes []int, namer TeamNamer) (*Roster, error) {
	total := 0
	for _, s := range sizes {
		total += s
	}
	if total != len(ids) {
		return nil, &SizeMismatchError{Expected: total, Actual: len(ids)}
	}

	ordered := append([]Identity(nil), ids...)
	SortByPortDesc(ordered)

	r := &Roster{}
	next := 0
	for i, size := range sizes {
		players := make([]string, 0, size)
		for _, id := range ordered[next : next+size] {
			players = append(players, id.Name)
		}
		next += size
		r.Teams = append(r.Teams, Team{
			Name:     namer.TeamName(players),
			Players:  players,
			OutIndex: uint(i),
		})
	}
	return r, nil
}

// Validate checks that every rostered player is among ids and that no
// controller is left over.
func (r *Roster) Validate(ids []Identity) error {
	present := make(map[string]bool, len(ids))
	for _, id := range ids {
		present[id.Name] = true
	}

	var missing []string
	total := 0
	for _, t := range r.Teams {
		for _, p := range t.Players {
			if !present[p] {
				missing = append(missing, p)
			}
			total++
		}
	}

	if len(missing) > 0 {
		return &MissingPlayersError{Names: missing}
	}
	if total != len(ids) {
		return &CountMismatchError{Expected: total, Actual: len(ids)}
	}
	return nil
}

// TeamOf returns the team containing the named player.
func (r *Roster) TeamOf(player string) (Team, bool) {
	for _, t := range r.Teams {
		for _, p := range t.Players {
			if p == player {
				return t, true
			}
		}
	}
	return Team{}, false
}

// LoadRoster reads a persisted roster. The returned error wraps
// os.ErrNotExist when there is none.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(r.Teams) == 0 {
		return nil, fmt.Errorf("parse %s: no teams", path)
	}
	return &r, nil
}

// SaveRoster writes r to path atomically.
func SaveRoster(path string, r *Roster) error {
	out, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp roster: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp roster: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp roster: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp roster: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename roster: %w", err)
	}
	return nil
}

// EnsureRoster loads the roster at path, or builds one from ids when none
// exists, and validates it against ids. A newly built roster is written only
// after it validates.
func EnsureRoster(path string, ids []Identity, sizes []int, namer TeamNamer) (*Roster, bool, error) {
	r, err := LoadRoster(path)
	created := false
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		r, err = BuildRoster(ids, sizes, namer)
		if err != nil {
			return nil, false, err
		}
		created = true
	default:
		return nil, false, err
	}

	if err := r.Validate(ids); err != nil {
		return nil, false, err
	}

	if created {
		if err := SaveRoster(path, r); err != nil {
			return nil, false, err
		}
	}
	return r, created, nil
}
