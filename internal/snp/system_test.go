package snp

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// recordingReporter captures every trace event.
type recordingReporter struct {
	started []int
	applied [][]string
	halted  []int
}

func (r *recordingReporter) RoundStarted(round int, states []State) {
	r.started = append(r.started, round)
}

func (r *recordingReporter) RulesApplied(round int, ruleIDs []string) {
	r.applied = append(r.applied, ruleIDs)
}

func (r *recordingReporter) Halted(round int) {
	r.halted = append(r.halted, round)
}

func mustAddNeuron(t *testing.T, s *System, n *Neuron) {
	t.Helper()
	if err := s.AddNeuron(n); err != nil {
		t.Fatalf("AddNeuron(%d): %v", n.ID(), err)
	}
}

func mustConnect(t *testing.T, s *System, src, dst int) {
	t.Helper()
	if err := s.Connect(src, dst); err != nil {
		t.Fatalf("Connect(%d->%d): %v", src, dst, err)
	}
}

func totalSpikes(s *System) int {
	total := 0
	for _, st := range s.States() {
		total += st.Spikes
	}
	return total
}

func TestSystem_AddNeuron_RejectsDuplicate(t *testing.T) {
	s := New(&scriptedSource{})
	mustAddNeuron(t, s, NewNeuron(1, 2))

	err := s.AddNeuron(NewNeuron(1, 7))
	if !errors.Is(err, ErrInvalidNeuron) {
		t.Fatalf("expected ErrInvalidNeuron, got %v", err)
	}
	if got := s.Neuron(1).Spikes(); got != 2 {
		t.Errorf("original neuron replaced: spikes=%d", got)
	}
	if got := len(s.States()); got != 1 {
		t.Errorf("expected 1 neuron, got %d", got)
	}
}

func TestSystem_AddNeuron_RejectsNegativeSpikes(t *testing.T) {
	s := New(&scriptedSource{})
	if err := s.AddNeuron(NewNeuron(1, -1)); !errors.Is(err, ErrInvalidNeuron) {
		t.Fatalf("expected ErrInvalidNeuron, got %v", err)
	}
	if s.Neuron(1) != nil {
		t.Error("rejected neuron was registered")
	}
}

func TestSystem_Connect(t *testing.T) {
	s := New(&scriptedSource{})
	mustAddNeuron(t, s, NewNeuron(1, 0))
	mustAddNeuron(t, s, NewNeuron(2, 0))

	// Multi-edges and self-loops are accepted as-is.
	mustConnect(t, s, 1, 2)
	mustConnect(t, s, 1, 2)
	mustConnect(t, s, 2, 2)

	for _, tc := range [][2]int{{1, 3}, {3, 1}} {
		err := s.Connect(tc[0], tc[1])
		if !errors.Is(err, ErrUnknownSynapseEndpoint) {
			t.Errorf("Connect(%d->%d) = %v, want ErrUnknownSynapseEndpoint", tc[0], tc[1], err)
		}
	}

	want := []Synapse{{1, 2}, {1, 2}, {2, 2}}
	if got := s.Synapses(); !reflect.DeepEqual(got, want) {
		t.Errorf("synapses = %v, want %v", got, want)
	}
}

func TestSystem_Step_DecisionPhaseIgnoresSameRoundSpikes(t *testing.T) {
	// 1 fires into 2, but 2's guard is evaluated on the state frozen at
	// round start, so 2 must not fire in the same round.
	s := New(&scriptedSource{})
	n1 := NewNeuron(1, 1)
	mustAddRule(t, n1, "a", ExactMatch(1), 1, 1, 0)
	n2 := NewNeuron(2, 0)
	mustAddRule(t, n2, "b", ExactMatch(1), 1, 0, 0)
	mustAddNeuron(t, s, n1)
	mustAddNeuron(t, s, n2)
	mustConnect(t, s, 1, 2)

	if got := s.Step(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("round 0 fired %v, want [a]", got)
	}
	s.ApplyRules()
	if got := s.Step(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("round 1 fired %v, want [b]", got)
	}
}

func TestSystem_Step_OrderIndependent(t *testing.T) {
	build := func(order []int) *System {
		s := New(&scriptedSource{})
		for _, id := range order {
			n := NewNeuron(id, 1)
			mustAddRule(t, n, "fire", ExactMatch(1), 1, 1, 0)
			mustAddNeuron(t, s, n)
		}
		mustConnect(t, s, 1, 2)
		mustConnect(t, s, 2, 3)
		mustConnect(t, s, 3, 1)
		return s
	}

	a := build([]int{1, 2, 3})
	b := build([]int{3, 1, 2})
	for round := 0; round < 3; round++ {
		a.Step()
		a.ApplyRules()
		b.Step()
		b.ApplyRules()
		for _, id := range []int{1, 2, 3} {
			if a.Neuron(id).Spikes() != b.Neuron(id).Spikes() {
				t.Fatalf("round %d neuron %d: %d vs %d", round, id, a.Neuron(id).Spikes(), b.Neuron(id).Spikes())
			}
		}
	}
}

func TestSystem_DelayReopensAfterExactlyDRounds(t *testing.T) {
	s := New(&scriptedSource{})
	n := NewNeuron(1, 5)
	mustAddRule(t, n, "slow", Threshold(1), 1, 0, 3)
	mustAddNeuron(t, s, n)

	if got := s.Step(); !reflect.DeepEqual(got, []string{"slow"}) {
		t.Fatalf("round 0 fired %v", got)
	}
	if n.Delay() != 3 || n.Spikes() != 4 {
		t.Fatalf("after firing: delay=%d spikes=%d, want 3/4", n.Delay(), n.Spikes())
	}
	s.ApplyRules()

	for round := 1; round <= 3; round++ {
		before := n.Delay()
		fired := s.Step()
		if len(fired) != 0 {
			t.Fatalf("round %d: closed neuron fired %v", round, fired)
		}
		if n.Delay() != before-1 {
			t.Fatalf("round %d: delay %d -> %d, want decrement by 1", round, before, n.Delay())
		}
		s.ApplyRules()
	}

	if !n.Open() {
		t.Fatalf("expected open after 3 rounds, delay=%d", n.Delay())
	}
	if got := s.Step(); !reflect.DeepEqual(got, []string{"slow"}) {
		t.Errorf("round 4 fired %v, want [slow]", got)
	}
}

func TestSystem_ApplyRules_DropsSpikesToClosedTarget(t *testing.T) {
	s := New(&scriptedSource{})
	sender := NewNeuron(1, 1)
	mustAddRule(t, sender, "send", ExactMatch(1), 1, 1, 0)
	sink := NewNeuron(2, 1)
	mustAddRule(t, sink, "rest", ExactMatch(1), 1, 0, 2)
	mustAddNeuron(t, s, sender)
	mustAddNeuron(t, s, sink)
	mustConnect(t, s, 1, 2)

	fired := s.Step()
	if !reflect.DeepEqual(fired, []string{"send", "rest"}) {
		t.Fatalf("fired %v", fired)
	}
	before := totalSpikes(s)
	s.ApplyRules()

	if sink.Spikes() != 0 {
		t.Errorf("closed target received spikes: %d", sink.Spikes())
	}
	if totalSpikes(s) != before {
		t.Errorf("total spikes changed %d -> %d; dropped spikes must vanish", before, totalSpikes(s))
	}
	if s.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", s.Dropped())
	}
	// The closed sink's own entry waits for a later round.
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", s.Pending())
	}
}

func TestSystem_ApplyRules_RequeuedEntryDeliversLater(t *testing.T) {
	s := New(&scriptedSource{})
	src := NewNeuron(1, 1)
	mustAddRule(t, src, "late", ExactMatch(1), 1, 2, 1)
	dst := NewNeuron(2, 0)
	mustAddNeuron(t, s, src)
	mustAddNeuron(t, s, dst)
	mustConnect(t, s, 1, 2)

	s.Step()
	s.ApplyRules()
	if dst.Spikes() != 0 {
		t.Fatalf("delivered while source closed: %d", dst.Spikes())
	}
	if s.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", s.Pending())
	}

	// Next round: the source reopens in the decision phase, then the
	// requeued entry delivers.
	s.Step()
	s.ApplyRules()
	if dst.Spikes() != 2 {
		t.Errorf("dst spikes = %d, want 2", dst.Spikes())
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
}

func TestSystem_ApplyRules_BoundedGeneration(t *testing.T) {
	// A closed neuron's entry is requeued but not reprocessed in the same
	// call, so ApplyRules terminates and leaves it pending.
	s := New(&scriptedSource{})
	n := NewNeuron(1, 1)
	mustAddRule(t, n, "r", ExactMatch(1), 1, 1, 5)
	mustAddNeuron(t, s, n)

	s.Step()
	s.ApplyRules()
	s.ApplyRules()
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", s.Pending())
	}
}

func TestSystem_SelfLoopAndMultiEdge(t *testing.T) {
	s := New(&scriptedSource{})
	n1 := NewNeuron(1, 1)
	mustAddRule(t, n1, "r", ExactMatch(1), 1, 1, 0)
	n2 := NewNeuron(2, 0)
	mustAddNeuron(t, s, n1)
	mustAddNeuron(t, s, n2)
	mustConnect(t, s, 1, 1)
	mustConnect(t, s, 1, 2)
	mustConnect(t, s, 1, 2)

	s.Step()
	s.ApplyRules()
	if n1.Spikes() != 1 {
		t.Errorf("self-loop: spikes = %d, want 1", n1.Spikes())
	}
	if n2.Spikes() != 2 {
		t.Errorf("multi-edge: spikes = %d, want 2", n2.Spikes())
	}
}

func TestSystem_Simulate_ZeroSteps(t *testing.T) {
	s := New(&scriptedSource{})
	n := NewNeuron(1, 3)
	mustAddRule(t, n, "r", Threshold(1), 1, 1, 0)
	mustAddNeuron(t, s, n)
	mustConnect(t, s, 1, 1)

	rec := &recordingReporter{}
	s.SetReporter(rec)

	before := s.States()
	res := s.Simulate(0)

	if res.Rounds != 0 || res.Halted || len(res.Fired) != 0 {
		t.Errorf("unexpected result %+v", res)
	}
	if !reflect.DeepEqual(s.States(), before) {
		t.Errorf("state mutated: %v -> %v", before, s.States())
	}
	if s.Pending() != 0 {
		t.Errorf("queue mutated: %d entries", s.Pending())
	}
	if len(rec.started)+len(rec.applied)+len(rec.halted) != 0 {
		t.Errorf("reporter called: %+v", rec)
	}
}

func TestSystem_Simulate_HaltsWithoutPropagation(t *testing.T) {
	s := New(&scriptedSource{})
	n1 := NewNeuron(1, 1)
	mustAddRule(t, n1, "once", ExactMatch(1), 1, 1, 0)
	n2 := NewNeuron(2, 0)
	mustAddNeuron(t, s, n1)
	mustAddNeuron(t, s, n2)
	mustConnect(t, s, 1, 2)

	rec := &recordingReporter{}
	s.SetReporter(rec)
	res := s.Simulate(10)

	if !res.Halted {
		t.Fatal("expected fixpoint")
	}
	if res.Rounds != 2 {
		t.Errorf("rounds = %d, want 2", res.Rounds)
	}
	want := [][]string{{"once"}, {}}
	if !reflect.DeepEqual(res.Fired, want) {
		t.Errorf("fired = %v, want %v", res.Fired, want)
	}
	if !reflect.DeepEqual(rec.halted, []int{1}) {
		t.Errorf("halted events = %v, want [1]", rec.halted)
	}
	// The halting round's none-entries stay queued: ApplyRules was skipped.
	if res.Leftover != 2 {
		t.Errorf("leftover = %d, want 2", res.Leftover)
	}
}

func TestSystem_Simulate_StopsAtBudget(t *testing.T) {
	s := New(&scriptedSource{})
	n := NewNeuron(1, 1)
	mustAddRule(t, n, "loop", ExactMatch(1), 1, 1, 0)
	mustAddNeuron(t, s, n)
	mustConnect(t, s, 1, 1)

	res := s.Simulate(5)
	if res.Halted {
		t.Error("self-sustaining loop must not reach a fixpoint")
	}
	if res.Rounds != 5 {
		t.Errorf("rounds = %d, want 5", res.Rounds)
	}
}

func TestSystem_Simulate_TextTrace(t *testing.T) {
	s := New(&scriptedSource{})
	n := NewNeuron(1, 1)
	mustAddRule(t, n, "r", ExactMatch(1), 1, 0, 0)
	mustAddNeuron(t, s, n)

	var buf bytes.Buffer
	s.SetReporter(NewTextReporter(&buf))
	s.Simulate(10)

	out := buf.String()
	for _, want := range []string{
		"Step 0:",
		"  Neuron 1: spikes=1, delay=0",
		"  Rules applied: [r]",
		"Step 1:",
		"  Neuron 1: spikes=0, delay=0",
		"  Rules applied: []",
		"No more rules can be applied. Stopping simulation.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("trace missing %q:\n%s", want, out)
		}
	}
}

func TestSystem_NilRandomSourceDefaults(t *testing.T) {
	s := New(nil)
	n := NewNeuron(1, 1)
	mustAddRule(t, n, "a", ExactMatch(1), 1, 0, 0)
	mustAddRule(t, n, "b", Threshold(1), 1, 0, 0)
	mustAddNeuron(t, s, n)

	fired := s.Step()
	if len(fired) != 1 || (fired[0] != "a" && fired[0] != "b") {
		t.Errorf("fired %v, want one of a/b", fired)
	}
}

func TestMultiReporter_SkipsNil(t *testing.T) {
	rec := &recordingReporter{}
	m := MultiReporter{nil, rec}
	m.RoundStarted(0, nil)
	m.RulesApplied(0, []string{"x"})
	m.Halted(1)
	if len(rec.started) != 1 || len(rec.applied) != 1 || len(rec.halted) != 1 {
		t.Errorf("events not forwarded: %+v", rec)
	}
}
