package simulation

import (
	"github.com/nvandessel/snpsim/internal/example"
	"github.com/nvandessel/snpsim/internal/snp"
)

// Scenario defines a complete simulation experiment.
type Scenario struct {
	Name     string
	Spec     example.SystemSpec
	MaxSteps int

	// Seed pins tie-breaks through snp.NewSeededSource. Ignored when
	// Source is set.
	Seed uint64

	// Source, when non-nil, replaces the seeded source. Use it for
	// scenarios that need exact control over every tie-break.
	Source snp.RandomSource

	// BeforeRound, when non-nil, is called before each round's decision
	// phase.
	BeforeRound func(round int, sys *snp.System)
}

// RoundResult captures one round's phases.
type RoundResult struct {
	Index      int
	Before     []snp.State    // at round start
	AfterStep  []snp.State    // after the decision phase
	AfterApply []snp.State    // after propagation; nil for the halting round
	Fired      []string       // rule IDs selected this round, in order
	FiredBy    map[string]int // rule ID -> owning neuron ID
	Dropped    int            // spikes lost to closed targets this round
}

// SimulationResult captures every round and the final system.
type SimulationResult struct {
	Name   string
	Rounds []RoundResult
	Halted bool
	System *snp.System
}

// StateOf returns the state of neuron id within states.
func StateOf(states []snp.State, id int) (snp.State, bool) {
	for _, s := range states {
		if s.ID == id {
			return s, true
		}
	}
	return snp.State{}, false
}

// TotalSpikes sums spike counts across states.
func TotalSpikes(states []snp.State) int {
	total := 0
	for _, s := range states {
		total += s.Spikes
	}
	return total
}
