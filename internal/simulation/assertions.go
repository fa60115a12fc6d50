package simulation

import (
	"reflect"
	"testing"

	"github.com/nvandessel/snpsim/internal/snp"
)

// AssertSpikesNonNegative asserts that no neuron ever holds a negative spike
// count after either phase.
func AssertSpikesNonNegative(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, rr := range result.Rounds {
		for _, phase := range [][]snp.State{rr.AfterStep, rr.AfterApply} {
			for _, st := range phase {
				if st.Spikes < 0 {
					t.Errorf("AssertSpikesNonNegative: round %d: neuron %d has %d spikes", rr.Index, st.ID, st.Spikes)
				}
			}
		}
	}
}

// AssertClosedNeuronsRest asserts that a neuron closed at round start does
// not fire, keeps its spikes through the decision phase, and has its counter
// decremented by exactly one.
func AssertClosedNeuronsRest(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, rr := range result.Rounds {
		for _, before := range rr.Before {
			if before.Delay == 0 {
				continue
			}
			for rule, owner := range rr.FiredBy {
				if owner == before.ID {
					t.Errorf("AssertClosedNeuronsRest: round %d: closed neuron %d fired %s", rr.Index, before.ID, rule)
				}
			}
			after, _ := StateOf(rr.AfterStep, before.ID)
			if after.Delay != before.Delay-1 {
				t.Errorf("AssertClosedNeuronsRest: round %d: neuron %d delay %d -> %d, want %d",
					rr.Index, before.ID, before.Delay, after.Delay, before.Delay-1)
			}
			if after.Spikes != before.Spikes {
				t.Errorf("AssertClosedNeuronsRest: round %d: closed neuron %d spikes %d -> %d in decision phase",
					rr.Index, before.ID, before.Spikes, after.Spikes)
			}
		}
	}
}

// AssertClosedTargetsUnchanged asserts that propagation never changes the
// spike count of a neuron that is closed during the propagation phase.
func AssertClosedTargetsUnchanged(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, rr := range result.Rounds {
		if rr.AfterApply == nil {
			continue
		}
		for _, mid := range rr.AfterStep {
			if mid.Delay == 0 {
				continue
			}
			after, _ := StateOf(rr.AfterApply, mid.ID)
			if after.Spikes != mid.Spikes {
				t.Errorf("AssertClosedTargetsUnchanged: round %d: closed neuron %d spikes %d -> %d",
					rr.Index, mid.ID, mid.Spikes, after.Spikes)
			}
		}
	}
}

// AssertReopensAfterDelay asserts that whenever a neuron's counter is set to
// d > 0 by firing, it reads d-k after the decision phase k rounds later and
// the neuron is open again at the start of round r+d+1.
func AssertReopensAfterDelay(t *testing.T, result SimulationResult) {
	t.Helper()
	for r, rr := range result.Rounds {
		for _, owner := range rr.FiredBy {
			set, _ := StateOf(rr.AfterStep, owner)
			d := set.Delay
			for k := 1; k <= d && r+k < len(result.Rounds); k++ {
				st, _ := StateOf(result.Rounds[r+k].AfterStep, owner)
				if st.Delay != d-k {
					t.Errorf("AssertReopensAfterDelay: neuron %d fired in round %d with delay %d: round %d delay %d, want %d",
						owner, r, d, r+k, st.Delay, d-k)
				}
			}
		}
	}
}

// AssertHaltsAt asserts that the run reached a fixpoint in the given round.
func AssertHaltsAt(t *testing.T, result SimulationResult, round int) {
	t.Helper()
	if !result.Halted {
		t.Errorf("AssertHaltsAt: %s did not halt within %d rounds", result.Name, len(result.Rounds))
		return
	}
	last := result.Rounds[len(result.Rounds)-1]
	if last.Index != round {
		t.Errorf("AssertHaltsAt: %s halted at round %d, want %d", result.Name, last.Index, round)
	}
	if last.AfterApply != nil {
		t.Errorf("AssertHaltsAt: %s ran propagation in the halting round", result.Name)
	}
}

// AssertNeverHalts asserts that every round selected at least one rule.
func AssertNeverHalts(t *testing.T, result SimulationResult) {
	t.Helper()
	if result.Halted {
		t.Errorf("AssertNeverHalts: %s halted at round %d", result.Name, len(result.Rounds)-1)
	}
}

// AssertFired asserts the exact rule IDs selected in a round.
func AssertFired(t *testing.T, result SimulationResult, round int, want ...string) {
	t.Helper()
	if round >= len(result.Rounds) {
		t.Errorf("AssertFired: %s has no round %d", result.Name, round)
		return
	}
	got := result.Rounds[round].Fired
	if len(want) == 0 && len(got) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AssertFired: %s round %d fired %v, want %v", result.Name, round, got, want)
	}
}
