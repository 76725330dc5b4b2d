package main

import (
	"fmt"
	"math"
	"slices"
)

// Dead zone cut points on a normalised [0,1] reading.
const (
	deadZoneLow  = 0.1
	deadZoneHigh = 0.9
)

// TickContext is everything one aggregation tick reads or writes besides the
// aggregator's own state. The loop owns it and passes it in by reference.
type TickContext struct {
	Lookup    IdentityByEventPath
	Inputs    InputState
	Threshold float64
	Feedback  *Feedback
}

// TeamState is the last computed output of one team.
type TeamState struct {
	Axes    [2]float64 // after the response curve, in [-1,1]
	Buttons [8]bool
	Members int // live members this tick
}

// Aggregator combines each team's controllers into its virtual controller.
type Aggregator struct {
	roster    *Roster
	sinks     []Sink
	stickOnly map[string]bool
	state     []TeamState
	empty     []bool
}

// NewAggregator creates an Aggregator writing team i of r to sinks[i].
func NewAggregator(r *Roster, sinks []Sink, stickOnly []string) (*Aggregator, error) {
	if len(sinks) != len(r.Teams) {
		return nil, fmt.Errorf("have %d sinks for %d teams", len(sinks), len(r.Teams))
	}
	so := make(map[string]bool, len(stickOnly))
	for _, n := range stickOnly {
		so[n] = true
	}
	return &Aggregator{
		roster:    r,
		sinks:     sinks,
		stickOnly: so,
		state:     make([]TeamState, len(r.Teams)),
		empty:     make([]bool, len(r.Teams)),
	}, nil
}

// State returns the last computed output of team i.
func (a *Aggregator) State(i int) TeamState {
	return a.state[i]
}

// Tick computes and commits every team's output once.
func (a *Aggregator) Tick(tc *TickContext) {
	for i := range a.roster.Teams {
		a.tickTeam(i, tc)
	}
}

type member struct {
	path string
	name string
	slot int // index into Team.Players
}

// liveMembers returns the live devices that belong to team, in event path
// order.
func liveMembers(team Team, tc *TickContext) []member {
	var ms []member
	for _, path := range tc.Inputs.EventPaths() {
		id, ok := tc.Lookup[path]
		if !ok {
			continue
		}
		if slot := slices.Index(team.Players, id.Name); slot >= 0 {
			ms = append(ms, member{path: path, name: id.Name, slot: slot})
		}
	}
	return ms
}

func (a *Aggregator) tickTeam(i int, tc *TickContext) {
	team := a.roster.Teams[i]
	sink := a.sinks[i]
	st := &a.state[i]
	fbTeam := tc.Feedback.TeamAt(i)

	members := liveMembers(team, tc)
	st.Members = len(members)
	a.noteEmpty(i, len(members) == 0)

	for _, axis := range Axes {
		sum := 0.0
		for _, m := range members {
			v, ok := tc.Inputs.AxisValue(m.path, axis)
			q := quantizeAxis(v, ok) * AxisSign[axis]
			sum += q
			if p := fbTeam.PlayerAt(m.slot); p != nil {
				p.Presses.setAxis(axis, q)
			}
		}

		curved := responseCurve(average(sum, len(members)))
		st.Axes[axis] = curved
		if err := sink.SetAxis(axis, int32(curved*AxisMax)); err != nil {
			logger.Warn("set axis failed", "team", team.Name, "err", err)
		}
		if fbTeam != nil {
			fbTeam.Presses.setAxis(axis, curved)
		}
	}

	for _, b := range Buttons {
		glyph := ButtonGlyph[b]
		sum := 0.0
		count := 0
		for _, m := range members {
			if a.stickOnly[m.name] {
				continue
			}
			v, ok := tc.Inputs.ButtonValue(m.path, b)
			q := quantizeButton(v, ok)
			sum += q
			count++
			if p := fbTeam.PlayerAt(m.slot); p != nil {
				p.Presses.Set(glyph, q > tc.Threshold)
			}
		}

		pressed := average(sum, count) > tc.Threshold
		st.Buttons[b] = pressed
		if err := sink.SetButton(b, pressed); err != nil {
			logger.Warn("set button failed", "team", team.Name, "err", err)
		}
		if fbTeam != nil {
			fbTeam.Presses.Set(glyph, pressed)
		}
	}

	if err := sink.Commit(); err != nil {
		logger.Warn("commit failed", "team", team.Name, "err", err)
	}
}

// noteEmpty logs when a team loses or regains all of its live controllers.
func (a *Aggregator) noteEmpty(i int, empty bool) {
	if empty == a.empty[i] {
		return
	}
	a.empty[i] = empty
	name := a.roster.Teams[i].Name
	if empty {
		logger.Warn("no players found for team, holding neutral", "team", name)
	} else {
		logger.Info("team has live players again", "team", name)
	}
}

// quantizeAxis folds a normalised axis reading into -1, 0 or +1. An absent
// reading is neutral.
func quantizeAxis(v float64, ok bool) float64 {
	switch {
	case !ok:
		return 0
	case v < deadZoneLow:
		return -1
	case v >= deadZoneHigh:
		return 1
	}
	return 0
}

// quantizeButton folds an analog button reading into 0 or 1. An absent
// reading is released.
func quantizeButton(v float64, ok bool) float64 {
	if ok && v >= deadZoneHigh {
		return 1
	}
	return 0
}

// average is sum/n, or 0 when n is 0.
func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// responseCurve clamps v to [-1,1] and squares it, keeping the sign.
func responseCurve(v float64) float64 {
	v = math.Max(-1, math.Min(1, v))
	return math.Copysign(v*v, v)
}
