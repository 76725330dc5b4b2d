package main

// StartGate opens once every live rostered player holds Y while pushing
// left at the same time. It only affects what the feedback side shows; the
// virtual controllers are driven regardless.
type StartGate struct {
	started bool
}

// Started reports whether the gate has opened.
func (g *StartGate) Started() bool {
	return g.started
}

// Check evaluates the gate against the current inputs. Once open it stays
// open.
func (g *StartGate) Check(r *Roster, tc *TickContext) bool {
	if g.started {
		return true
	}

	live := 0
	for _, path := range tc.Inputs.EventPaths() {
		id, ok := tc.Lookup[path]
		if !ok {
			continue
		}
		if _, ok := r.TeamOf(id.Name); !ok {
			continue
		}
		live++
		if quantizeButton(tc.Inputs.ButtonValue(path, ButtonY)) != 1 {
			return false
		}
		if quantizeAxis(tc.Inputs.AxisValue(path, AxisX))*AxisSign[AxisX] != -1 {
			return false
		}
	}
	if live == 0 {
		return false
	}

	g.started = true
	logger.Info("all players ready, session started", "players", live)
	return true
}
