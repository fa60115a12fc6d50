// Package simulation provides a round-by-round test harness for validating
// the dynamics of SNP systems.
//
// The harness drives the real snp.System through its decision and
// propagation phases and snapshots every neuron between them, so that
// property assertions can inspect what each phase changed. Scenarios are
// Go values built from example.SystemSpec; rule IDs must be unique across
// the whole scenario so fired rules can be attributed to their neuron.
//
// Usage:
//
//	func TestClosedNeuronsRest(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:     "reference",
//	        Spec:     example.ReferenceSpec(),
//	        Seed:     7,
//	        MaxSteps: 10,
//	    })
//	    simulation.AssertClosedNeuronsRest(t, result)
//	}
package simulation
