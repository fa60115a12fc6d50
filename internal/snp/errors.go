package snp

import "errors"

// Construction-time errors. Runtime has no error paths: a neuron with no
// applicable rule simply contributes nothing to the round.
var (
	// ErrInvalidRule is returned for a duplicate rule ID within a neuron,
	// a negative consumed/produced/delay value, or a malformed condition.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrUnknownSynapseEndpoint is returned when Connect names a neuron
	// that was never added.
	ErrUnknownSynapseEndpoint = errors.New("unknown synapse endpoint")

	// ErrInvalidNeuron is returned when AddNeuron is given an ID that is
	// already registered or a neuron with negative state.
	ErrInvalidNeuron = errors.New("invalid neuron")
)
