// Package example builds the reference three-neuron SNP system: neuron 1
// generates, neuron 2 relays with an optional one-round delay, and neuron 3
// collects.
package example

import (
	"fmt"

	"github.com/nvandessel/snpsim/internal/snp"
)

// NeuronSpec describes a neuron to register: its initial spikes and rules.
type NeuronSpec struct {
	ID     int
	Spikes int
	Rules  []snp.Rule
}

// SystemSpec is a complete topology with initial state.
type SystemSpec struct {
	Neurons  []NeuronSpec
	Synapses []snp.Synapse
}

// ReferenceSpec returns the reference topology.
func ReferenceSpec() SystemSpec {
	return SystemSpec{
		Neurons: []NeuronSpec{
			{ID: 1, Spikes: 2, Rules: []snp.Rule{
				{ID: "r11", Condition: snp.Threshold(2), Consumed: 1, Produced: 1},
				{ID: "r12", Condition: snp.ExactMatch(1), Consumed: 1, Produced: 0},
			}},
			{ID: 2, Spikes: 1, Rules: []snp.Rule{
				{ID: "r21", Condition: snp.ExactMatch(1), Consumed: 1, Produced: 1},
				{ID: "r22", Condition: snp.ExactMatch(1), Consumed: 1, Produced: 1, Delay: 1},
			}},
			{ID: 3, Spikes: 3, Rules: []snp.Rule{
				{ID: "r31", Condition: snp.ExactMatch(3), Consumed: 3, Produced: 1},
				{ID: "r32", Condition: snp.ExactMatch(1), Consumed: 1, Produced: 1, Delay: 1},
				{ID: "r33", Condition: snp.ExactMatch(2), Consumed: 2, Produced: 0},
			}},
		},
		Synapses: []snp.Synapse{
			{Source: 1, Target: 2},
			{Source: 2, Target: 1},
			{Source: 1, Target: 3},
			{Source: 2, Target: 3},
		},
	}
}

// Build registers every neuron, rule, and synapse of spec on a new system
// that breaks ties with rng.
func (spec SystemSpec) Build(rng snp.RandomSource) (*snp.System, error) {
	sys := snp.New(rng)
	for _, ns := range spec.Neurons {
		n := snp.NewNeuron(ns.ID, ns.Spikes)
		for _, r := range ns.Rules {
			if err := n.AddRule(r.ID, r.Condition, r.Consumed, r.Produced, r.Delay); err != nil {
				return nil, fmt.Errorf("building neuron %d: %w", ns.ID, err)
			}
		}
		if err := sys.AddNeuron(n); err != nil {
			return nil, fmt.Errorf("building system: %w", err)
		}
	}
	for _, syn := range spec.Synapses {
		if err := sys.Connect(syn.Source, syn.Target); err != nil {
			return nil, fmt.Errorf("building system: %w", err)
		}
	}
	return sys, nil
}

// Reference builds the reference system.
func Reference(rng snp.RandomSource) (*snp.System, error) {
	return ReferenceSpec().Build(rng)
}
