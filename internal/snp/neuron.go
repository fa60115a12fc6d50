package snp

import "fmt"

// Neuron holds a spike count, a refractory counter, and an ordered rule set.
// A neuron whose counter is above zero is closed: it cannot fire and spikes
// sent to it are lost.
type Neuron struct {
	id     int
	spikes int
	delay  int
	rules  []Rule
	ruleID map[string]struct{}
}

// NewNeuron creates an open neuron with the given initial spike count.
func NewNeuron(id, spikes int) *Neuron {
	return &Neuron{
		id:     id,
		spikes: spikes,
		ruleID: make(map[string]struct{}),
	}
}

// ID returns the neuron's identifier.
func (n *Neuron) ID() int { return n.id }

// Spikes returns the current spike count.
func (n *Neuron) Spikes() int { return n.spikes }

// Delay returns the remaining refractory rounds.
func (n *Neuron) Delay() int { return n.delay }

// Open reports whether the neuron can fire and receive spikes.
func (n *Neuron) Open() bool { return n.delay == 0 }

// Rules returns a copy of the neuron's rules in insertion order.
func (n *Neuron) Rules() []Rule {
	out := make([]Rule, len(n.rules))
	copy(out, n.rules)
	return out
}

// AddRule registers a rule. It rejects a duplicate ID within this neuron and
// negative consumed, produced, or delay values; on rejection the neuron is
// unchanged.
func (n *Neuron) AddRule(id string, cond Condition, consumed, produced, delay int) error {
	if id == "" {
		return fmt.Errorf("neuron %d: empty rule id: %w", n.id, ErrInvalidRule)
	}
	if _, dup := n.ruleID[id]; dup {
		return fmt.Errorf("neuron %d: rule %q already defined: %w", n.id, id, ErrInvalidRule)
	}
	if !cond.valid() {
		return fmt.Errorf("neuron %d: rule %q: bad condition %s: %w", n.id, id, cond, ErrInvalidRule)
	}
	if consumed < 0 || produced < 0 || delay < 0 {
		return fmt.Errorf("neuron %d: rule %q: consumed=%d produced=%d delay=%d must be non-negative: %w",
			n.id, id, consumed, produced, delay, ErrInvalidRule)
	}
	// The guard must certify the spikes the rule consumes.
	if consumed > cond.N {
		return fmt.Errorf("neuron %d: rule %q: consumes %d but guard %s only certifies %d: %w",
			n.id, id, consumed, cond, cond.N, ErrInvalidRule)
	}

	n.rules = append(n.rules, Rule{
		ID:        id,
		Condition: cond,
		Consumed:  consumed,
		Produced:  produced,
		Delay:     delay,
	})
	n.ruleID[id] = struct{}{}
	return nil
}

// CanFire returns the rule this neuron fires this round, or nil.
//
// A closed neuron has its counter decremented by one and returns nil; this is
// the only place the counter ticks down, so the engine calls CanFire exactly
// once per neuron per round. An open neuron picks uniformly among the rules
// whose condition holds, using rng to break ties.
func (n *Neuron) CanFire(rng RandomSource) *Rule {
	if n.delay > 0 {
		n.delay--
		return nil
	}

	var candidates []int
	for i := range n.rules {
		if n.rules[i].Condition.Holds(n.spikes) {
			candidates = append(candidates, i)
		}
	}

	switch len(candidates) {
	case 0:
		return nil
	case 1:
		r := n.rules[candidates[0]]
		return &r
	default:
		r := n.rules[candidates[rng.Intn(len(candidates))]]
		return &r
	}
}

// consume removes the rule's spikes. Guards certify enough spikes before a
// rule can be chosen, so underflow means a broken rule set or engine.
func (n *Neuron) consume(r *Rule) {
	if n.spikes < r.Consumed {
		panic(fmt.Sprintf("snp: neuron %d: rule %q consumes %d spikes, only %d held", n.id, r.ID, r.Consumed, n.spikes))
	}
	n.spikes -= r.Consumed
}

// receive adds spikes delivered over a synapse.
func (n *Neuron) receive(spikes int) {
	n.spikes += spikes
}

// State is a point-in-time view of a neuron, used for reporting.
type State struct {
	ID     int `json:"id"`
	Spikes int `json:"spikes"`
	Delay  int `json:"delay"`
}

func (n *Neuron) state() State {
	return State{ID: n.id, Spikes: n.spikes, Delay: n.delay}
}
