package simulation

import (
	"testing"

	"github.com/nvandessel/snpsim/internal/snp"
)

// Runner orchestrates simulation experiments against a real snp.System.
type Runner struct {
	t *testing.T
}

// NewRunner creates a simulation runner bound to t.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	return &Runner{t: t}
}

// Run builds the scenario's system and executes it round by round with the
// same control flow as snp.System.Simulate, recording state between phases.
func (r *Runner) Run(scenario Scenario) SimulationResult {
	r.t.Helper()

	owners := r.ruleOwners(scenario)

	rng := scenario.Source
	if rng == nil {
		rng = snp.NewSeededSource(scenario.Seed)
	}
	sys, err := scenario.Spec.Build(rng)
	if err != nil {
		r.t.Fatalf("%s: build: %v", scenario.Name, err)
	}

	result := SimulationResult{Name: scenario.Name, System: sys}
	for round := 0; round < scenario.MaxSteps; round++ {
		if scenario.BeforeRound != nil {
			scenario.BeforeRound(round, sys)
		}

		rr := RoundResult{Index: round, Before: sys.States()}
		droppedBefore := sys.Dropped()

		rr.Fired = sys.Step()
		rr.AfterStep = sys.States()
		rr.FiredBy = make(map[string]int, len(rr.Fired))
		for _, id := range rr.Fired {
			rr.FiredBy[id] = owners[id]
		}

		if len(rr.Fired) == 0 {
			result.Rounds = append(result.Rounds, rr)
			result.Halted = true
			break
		}

		sys.ApplyRules()
		rr.AfterApply = sys.States()
		rr.Dropped = sys.Dropped() - droppedBefore
		result.Rounds = append(result.Rounds, rr)
	}

	return result
}

// ruleOwners maps every rule ID in the scenario to its neuron, failing the
// test if an ID is used by more than one neuron.
func (r *Runner) ruleOwners(scenario Scenario) map[string]int {
	r.t.Helper()

	owners := make(map[string]int)
	for _, ns := range scenario.Spec.Neurons {
		for _, rule := range ns.Rules {
			if prev, dup := owners[rule.ID]; dup && prev != ns.ID {
				r.t.Fatalf("%s: rule %q used by neurons %d and %d", scenario.Name, rule.ID, prev, ns.ID)
			}
			owners[rule.ID] = ns.ID
		}
	}
	return owners
}
