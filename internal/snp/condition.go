package snp

import "fmt"

// ConditionKind identifies how a rule's guard is compared against a
// neuron's spike count.
type ConditionKind string

const (
	KindExactMatch ConditionKind = "exact"     // spikes == N
	KindThreshold  ConditionKind = "threshold" // spikes >= N
)

// Condition is the guard of a rule. Build one with ExactMatch or Threshold.
type Condition struct {
	Kind ConditionKind
	N    int
}

// ExactMatch returns a guard that holds only when the spike count equals n.
func ExactMatch(n int) Condition {
	return Condition{Kind: KindExactMatch, N: n}
}

// Threshold returns a guard that holds when the spike count is at least n.
func Threshold(n int) Condition {
	return Condition{Kind: KindThreshold, N: n}
}

// Holds reports whether the guard is satisfied by the given spike count.
func (c Condition) Holds(spikes int) bool {
	switch c.Kind {
	case KindExactMatch:
		return spikes == c.N
	case KindThreshold:
		return spikes >= c.N
	default:
		return false
	}
}

func (c Condition) valid() bool {
	return (c.Kind == KindExactMatch || c.Kind == KindThreshold) && c.N >= 0
}

func (c Condition) String() string {
	switch c.Kind {
	case KindExactMatch:
		return fmt.Sprintf("=%d", c.N)
	case KindThreshold:
		return fmt.Sprintf(">=%d", c.N)
	default:
		return fmt.Sprintf("?%d", c.N)
	}
}

// Rule is a guarded spiking (Produced > 0) or forgetting (Produced == 0) rule.
type Rule struct {
	ID        string
	Condition Condition
	Consumed  int // spikes removed from the owning neuron on firing
	Produced  int // spikes sent along each outgoing synapse
	Delay     int // refractory rounds added to the owner after firing
}
