package main

import (
	"os"
	"time"
)

// Session owns all mutable state of a running merge: identity maps (through
// the reconciler), device state, aggregation state, feedback and jitter.
// Everything runs on the goroutine that calls Run.
type Session struct {
	roster     *Roster
	reconciler *Reconciler
	inputs     InputState
	agg        *Aggregator
	jitter     *Jitter
	gate       StartGate
	feedback   *Feedback
	publishers []FeedbackPublisher

	renderInterval time.Duration
	nextRender     time.Time
}

// NewSession wires the components together.
func NewSession(r *Roster, rec *Reconciler, inputs InputState, agg *Aggregator,
	jitter *Jitter, publishers []FeedbackPublisher, renderInterval time.Duration) *Session {
	return &Session{
		roster:         r,
		reconciler:     rec,
		inputs:         inputs,
		agg:            agg,
		jitter:         jitter,
		feedback:       NewFeedback(r),
		publishers:     publishers,
		renderInterval: renderInterval,
	}
}

// Feedback is the live feedback tree.
func (s *Session) Feedback() *Feedback {
	return s.feedback
}

// Step handles one hotplug event. It reports whether an aggregation tick
// may follow in the same iteration, which is the case only when no
// reconciliation ran.
func (s *Session) Step(ev HotplugEvent) (bool, error) {
	reconciled, err := s.reconciler.Handle(ev)
	if err != nil {
		return false, err
	}
	return !reconciled, nil
}

// Tick runs one aggregation pass and, when the render interval has
// elapsed, publishes the feedback tree.
func (s *Session) Tick(now time.Time) {
	s.jitter.Update(now)

	tc := &TickContext{
		Lookup:    s.reconciler.ByEventPath(),
		Inputs:    s.inputs,
		Threshold: s.jitter.Threshold(),
		Feedback:  s.feedback,
	}
	s.agg.Tick(tc)

	if now.Before(s.nextRender) {
		return
	}
	s.nextRender = now.Add(s.renderInterval)
	s.feedback.Started = s.gate.Check(s.roster, tc)
	for _, p := range s.publishers {
		if err := p.Publish(s.feedback); err != nil {
			logger.Warn("publish feedback failed", "err", err)
		}
	}
}

// Run drives the session until a signal arrives. Each wakeup performs at
// most one of reconciliation or aggregation.
func (s *Session) Run(sigCh <-chan os.Signal, watcher *Watcher, devices *DeviceSet, poll time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigCh:
			dbg("received %v", sig)
			return nil

		case ev := <-watcher.Events():
			tick, err := s.Step(ev)
			if err != nil {
				return err
			}
			if tick {
				s.Tick(time.Now())
			}

		case err := <-watcher.Errors():
			logger.Warn("device watcher error", "err", err)

		case de := <-devices.Events():
			devices.Handle(de)
			s.Tick(time.Now())

		case <-ticker.C:
			s.Tick(time.Now())
		}
	}
}

// Close releases the publishers.
func (s *Session) Close() {
	for _, p := range s.publishers {
		if err := p.Close(); err != nil {
			logger.Warn("close feedback publisher", "err", err)
		}
	}
}
