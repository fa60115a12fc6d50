package snp

import (
	"fmt"
	"io"
)

// Reporter receives the advisory per-round trace of a simulation.
// Output is for humans and diagnostics; callers should not parse it.
type Reporter interface {
	// RoundStarted is called before the decision phase with every neuron's
	// state in processing order.
	RoundStarted(round int, states []State)

	// RulesApplied is called after the decision phase with the rule IDs
	// selected this round.
	RulesApplied(round int, ruleIDs []string)

	// Halted is called once when a round selects no rules.
	Halted(round int)
}

// TextReporter writes the trace as plain text lines.
type TextReporter struct {
	w io.Writer
}

// NewTextReporter creates a TextReporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

func (r *TextReporter) RoundStarted(round int, states []State) {
	fmt.Fprintf(r.w, "Step %d:\n", round)
	for _, s := range states {
		fmt.Fprintf(r.w, "  Neuron %d: spikes=%d, delay=%d\n", s.ID, s.Spikes, s.Delay)
	}
}

func (r *TextReporter) RulesApplied(round int, ruleIDs []string) {
	fmt.Fprintf(r.w, "  Rules applied: %v\n\n", ruleIDs)
}

func (r *TextReporter) Halted(round int) {
	fmt.Fprintln(r.w, "No more rules can be applied. Stopping simulation.")
}

// MultiReporter fans every event out to each non-nil reporter in order.
type MultiReporter []Reporter

func (m MultiReporter) RoundStarted(round int, states []State) {
	for _, r := range m {
		if r != nil {
			r.RoundStarted(round, states)
		}
	}
}

func (m MultiReporter) RulesApplied(round int, ruleIDs []string) {
	for _, r := range m {
		if r != nil {
			r.RulesApplied(round, ruleIDs)
		}
	}
}

func (m MultiReporter) Halted(round int) {
	for _, r := range m {
		if r != nil {
			r.Halted(round)
		}
	}
}
