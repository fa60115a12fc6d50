// Package snp implements a Spiking Neural P system simulator. Neurons hold
// spike counts and fire guarded rules; produced spikes travel along directed
// synapses. Each round is split into a decision phase (Step), which sees only
// the state frozen at the start of the round, and a propagation phase
// (ApplyRules), which delivers spikes for use in the next round.
package snp

import (
	"fmt"
	"log/slog"
)

// Synapse is a directed edge between two neurons. Duplicates and self-loops
// are allowed and are not merged.
type Synapse struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// pending pairs a neuron with the rule it selected, or nil for none.
type pending struct {
	neuron *Neuron
	rule   *Rule
}

// Result summarizes a call to Simulate.
type Result struct {
	Rounds   int        `json:"rounds"`   // Step calls performed
	Halted   bool       `json:"halted"`   // true if a round selected no rules
	Fired    [][]string `json:"fired"`    // rule IDs selected per round
	Dropped  int        `json:"dropped"`  // spikes sent to closed targets
	Final    []State    `json:"final"`    // neuron states after the last round
	Leftover int        `json:"leftover"` // queue entries still awaiting delivery
}

// System owns the neurons, synapses and pending-application queue.
// It is not safe for concurrent use.
type System struct {
	order    []*Neuron
	neurons  map[int]*Neuron
	synapses []Synapse
	queue    []pending
	rng      RandomSource
	dropped  int

	logger   *slog.Logger
	reporter Reporter
}

// New creates an empty system that breaks rule ties with rng. A nil rng
// selects an entropy-seeded source.
func New(rng RandomSource) *System {
	if rng == nil {
		rng = NewRandomSource()
	}
	return &System{
		neurons: make(map[int]*Neuron),
		rng:     rng,
	}
}

// SetLogger sets the structured logger used for debug output.
func (s *System) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// SetReporter sets the per-round trace sink. A nil reporter disables it.
func (s *System) SetReporter(r Reporter) {
	s.reporter = r
}

// AddNeuron registers a neuron. Neurons are processed in the order they are
// added. A duplicate ID or a negative spike count is rejected.
func (s *System) AddNeuron(n *Neuron) error {
	if _, exists := s.neurons[n.id]; exists {
		s.debug("neuron rejected", "neuron", n.id, "reason", "duplicate")
		return fmt.Errorf("neuron %d: %w", n.id, ErrInvalidNeuron)
	}
	if n.spikes < 0 || n.delay < 0 {
		s.debug("neuron rejected", "neuron", n.id, "reason", "negative state")
		return fmt.Errorf("neuron %d: spikes=%d delay=%d must be non-negative: %w", n.id, n.spikes, n.delay, ErrInvalidNeuron)
	}
	s.neurons[n.id] = n
	s.order = append(s.order, n)
	return nil
}

// Connect adds a synapse from source to target. Both neurons must already be
// registered; no other topology checks are made.
func (s *System) Connect(source, target int) error {
	for _, id := range []int{source, target} {
		if _, ok := s.neurons[id]; !ok {
			s.debug("synapse rejected", "source", source, "target", target, "missing", id)
			return fmt.Errorf("synapse %d->%d: neuron %d: %w", source, target, id, ErrUnknownSynapseEndpoint)
		}
	}
	s.synapses = append(s.synapses, Synapse{Source: source, Target: target})
	return nil
}

// Neuron returns the neuron with the given ID, or nil.
func (s *System) Neuron(id int) *Neuron {
	return s.neurons[id]
}

// Synapses returns a copy of the registered synapses.
func (s *System) Synapses() []Synapse {
	out := make([]Synapse, len(s.synapses))
	copy(out, s.synapses)
	return out
}

// States returns every neuron's state in processing order.
func (s *System) States() []State {
	states := make([]State, len(s.order))
	for i, n := range s.order {
		states[i] = n.state()
	}
	return states
}

// Pending returns the number of queue entries awaiting ApplyRules.
func (s *System) Pending() int {
	return len(s.queue)
}

// Dropped returns the total spikes discarded because their target was closed.
func (s *System) Dropped() int {
	return s.dropped
}

// Step runs the decision phase. Every neuron is asked for its rule exactly
// once, in insertion order. A firing neuron has the rule's delay added to its
// counter and its consumed spikes removed immediately; produced spikes wait
// for ApplyRules. Step returns the IDs of the rules selected during this
// call, in order. An empty result means no rule is applicable anywhere.
func (s *System) Step() []string {
	fired := make([]string, 0, len(s.order))
	for _, n := range s.order {
		r := n.CanFire(s.rng)
		if r == nil {
			s.queue = append(s.queue, pending{neuron: n})
			continue
		}
		n.delay += r.Delay
		n.consume(r)
		s.queue = append(s.queue, pending{neuron: n, rule: r})
		fired = append(fired, r.ID)
	}
	return fired
}

// ApplyRules runs the propagation phase over the queue entries present when
// it is called. An entry whose neuron is still closed goes back to the end of
// the queue for a later round. Otherwise a selected rule sends its produced
// spikes along every outgoing synapse to targets that are open right now;
// closed targets lose them.
func (s *System) ApplyRules() {
	n := len(s.queue)
	for i := 0; i < n; i++ {
		p := s.queue[0]
		s.queue = s.queue[1:]

		if !p.neuron.Open() {
			s.queue = append(s.queue, p)
			continue
		}
		if p.rule != nil {
			s.propagate(p.neuron, p.rule)
		}
	}
}

func (s *System) propagate(src *Neuron, r *Rule) {
	for _, syn := range s.synapses {
		if syn.Source != src.id {
			continue
		}
		target := s.neurons[syn.Target]
		if !target.Open() {
			s.dropped += r.Produced
			continue
		}
		target.receive(r.Produced)
	}
}

// Simulate runs up to maxSteps rounds. Each round reports the neuron states,
// runs Step, reports the selected rules, and then either stops (nothing
// fired, no propagation for that round) or runs ApplyRules once.
func (s *System) Simulate(maxSteps int) Result {
	res := Result{Fired: [][]string{}}
	for t := 0; t < maxSteps; t++ {
		if s.reporter != nil {
			s.reporter.RoundStarted(t, s.States())
		}

		fired := s.Step()
		res.Rounds++
		res.Fired = append(res.Fired, fired)

		if s.reporter != nil {
			s.reporter.RulesApplied(t, fired)
		}
		s.debug("round decided", "round", t, "fired", fired, "queued", len(s.queue))

		if len(fired) == 0 {
			res.Halted = true
			if s.reporter != nil {
				s.reporter.Halted(t)
			}
			break
		}

		s.ApplyRules()
	}
	res.Dropped = s.dropped
	res.Final = s.States()
	res.Leftover = len(s.queue)
	return res
}

func (s *System) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
