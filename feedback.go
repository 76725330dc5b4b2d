package main

// Press is the displayed state of one glyph.
type Press struct {
	Glyph   string `json:"glyph"`
	Pressed bool   `json:"pressed"`
}

// Presses is a full set of glyph states in display order.
type Presses []Press

func newPresses() Presses {
	p := make(Presses, len(Glyphs))
	for i, g := range Glyphs {
		p[i] = Press{Glyph: g}
	}
	return p
}

// Set marks glyph pressed or released.
func (p Presses) Set(glyph string, pressed bool) {
	for i := range p {
		if p[i].Glyph == glyph {
			p[i].Pressed = pressed
		}
	}
}

// Pressed reports whether glyph is currently pressed.
func (p Presses) Pressed(glyph string) bool {
	for _, g := range p {
		if g.Glyph == glyph {
			return g.Pressed
		}
	}
	return false
}

// setAxis clears both glyphs of axis and then sets the one matching v.
func (p Presses) setAxis(axis Axis, v float64) {
	g := AxisGlyph[axis]
	p.Set(g.Neg, false)
	p.Set(g.Pos, false)
	switch {
	case v > 0.1:
		p.Set(g.Pos, true)
	case v < -0.1:
		p.Set(g.Neg, true)
	}
}

// PlayerFeedback is one member's glyph states.
type PlayerFeedback struct {
	Name    string  `json:"player_name"`
	Presses Presses `json:"presses"`
}

// TeamFeedback is one team's aggregate glyph states plus its members'.
type TeamFeedback struct {
	Name    string           `json:"team_name"`
	Presses Presses          `json:"presses"`
	Players []PlayerFeedback `json:"players"`
}

// Feedback is the tree handed to the rendering side every frame.
type Feedback struct {
	Started bool           `json:"started"`
	Teams   []TeamFeedback `json:"teams"`
}

// NewFeedback creates an all-released feedback tree shaped like r.
func NewFeedback(r *Roster) *Feedback {
	fb := &Feedback{}
	for _, t := range r.Teams {
		tf := TeamFeedback{Name: t.Name, Presses: newPresses()}
		for _, p := range t.Players {
			tf.Players = append(tf.Players, PlayerFeedback{Name: p, Presses: newPresses()})
		}
		fb.Teams = append(fb.Teams, tf)
	}
	return fb
}

// TeamAt returns the feedback for the team at roster position i, or nil.
// Team names are not unique, so lookups go by position.
func (f *Feedback) TeamAt(i int) *TeamFeedback {
	if f == nil || i < 0 || i >= len(f.Teams) {
		return nil
	}
	return &f.Teams[i]
}

// PlayerAt returns the feedback for the member at position i of the team's
// player list, or nil.
func (t *TeamFeedback) PlayerAt(i int) *PlayerFeedback {
	if t == nil || i < 0 || i >= len(t.Players) {
		return nil
	}
	return &t.Players[i]
}

// FeedbackPublisher receives the feedback tree once per render frame.
type FeedbackPublisher interface {
	Publish(fb *Feedback) error
	Close() error
}

// logPublisher traces the pressed glyphs at debug level.
type logPublisher struct{}

func (logPublisher) Publish(fb *Feedback) error {
	for _, t := range fb.Teams {
		dbg("team %q started=%v pressed=%s", t.Name, fb.Started, pressedGlyphs(t.Presses))
		for _, p := range t.Players {
			dbg("  player %q pressed=%s", p.Name, pressedGlyphs(p.Presses))
		}
	}
	return nil
}

func (logPublisher) Close() error { return nil }

func pressedGlyphs(p Presses) string {
	s := ""
	for _, g := range p {
		if g.Pressed {
			s += g.Glyph
		}
	}
	if s == "" {
		return "-"
	}
	return s
}
