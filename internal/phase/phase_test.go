package phase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskmgr/internal/phase"
)

func stepIDs(steps []*phase.Step) []string {
	ids := make([]string, 0, len(steps))
	for _, s := range steps {
		ids = append(ids, s.Identifier)
	}
	return ids
}

func stepOrders(steps []*phase.Step) []int {
	orders := make([]int, 0, len(steps))
	for _, s := range steps {
		orders = append(orders, s.Order)
	}
	return orders
}

func TestNew(t *testing.T) {
	p := phase.New("Build")

	assert.Equal(t, "Build", p.Description)
	assert.True(t, p.Checked)
	assert.Equal(t, 0, p.Len())
}

func TestPhaseAddStep(t *testing.T) {
	tests := map[string]struct {
		steps     []*phase.Step
		expErr    error
		expIDs    []string
		expOrders []int
	}{
		"Steps without order should get consecutive orders.": {
			steps:     []*phase.Step{{Identifier: "1"}, {Identifier: "2"}, {Identifier: "3"}},
			expIDs:    []string{"1", "2", "3"},
			expOrders: []int{1, 2, 3},
		},
		"A step without order should be placed after the highest order.": {
			steps:     []*phase.Step{{Identifier: "a", Order: 5}, {Identifier: "b", Order: 2}, {Identifier: "c"}},
			expIDs:    []string{"a", "b", "c"},
			expOrders: []int{5, 2, 6},
		},
		"A duplicated step should fail and leave the phase unchanged.": {
			steps:     []*phase.Step{{Identifier: "1"}, {Identifier: "2"}, {Identifier: "1"}},
			expErr:    phase.ErrDuplicateStep,
			expIDs:    []string{"1", "2"},
			expOrders: []int{1, 2},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			p := phase.New("test")
			var err error
			for _, s := range test.steps {
				if err = p.AddStep(s); err != nil {
					break
				}
			}

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else {
				assert.NoError(err)
			}
			assert.Equal(test.expIDs, stepIDs(p.Steps()))
			assert.Equal(test.expOrders, stepOrders(p.Steps()))
		})
	}
}

func TestPhaseAddStepWithoutIdentifier(t *testing.T) {
	p := phase.New("test")

	assert.Error(t, p.AddStep(&phase.Step{}))
	assert.Error(t, p.AddStep(nil))
	assert.Equal(t, 0, p.Len())
}

func TestPhaseGetStep(t *testing.T) {
	p := phase.New("test")
	s := &phase.Step{Identifier: "install", Description: "npm install"}
	require.NoError(t, p.AddStep(s))

	got, ok := p.GetStep("install")
	assert.True(t, ok)
	assert.Same(t, s, got)
	assert.True(t, p.StepExists("install"))

	got, ok = p.GetStep("missing")
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.False(t, p.StepExists("missing"))
}

func TestPhaseSort(t *testing.T) {
	p := phase.New("test")
	require.NoError(t, p.AddStep(&phase.Step{Identifier: "c", Order: 3}))
	require.NoError(t, p.AddStep(&phase.Step{Identifier: "a", Order: 1}))
	require.NoError(t, p.AddStep(&phase.Step{Identifier: "b1", Order: 2}))
	require.NoError(t, p.AddStep(&phase.Step{Identifier: "b2", Order: 2}))

	assert.Equal(t, []string{"a", "b1", "b2", "c"}, stepIDs(p.Sort()))
	// Insertion sequence is not modified.
	assert.Equal(t, []string{"c", "a", "b1", "b2"}, stepIDs(p.Steps()))
}

func TestPhaseMoveAfter(t *testing.T) {
	tests := map[string]struct {
		steps     []*phase.Step
		a, b      string
		expErr    error
		expSorted []string
		expOrders map[string]int
	}{
		"Moving the last step after the first should place it second.": {
			steps:     []*phase.Step{{Identifier: "1"}, {Identifier: "2"}, {Identifier: "3"}},
			a:         "3",
			b:         "1",
			expSorted: []string{"1", "3", "2"},
			expOrders: map[string]int{"1": 1, "2": 3, "3": 2},
		},
		"Moving into a free position should not shift other steps.": {
			steps:     []*phase.Step{{Identifier: "a", Order: 1}, {Identifier: "b", Order: 5}},
			a:         "a",
			b:         "b",
			expSorted: []string{"b", "a"},
			expOrders: map[string]int{"a": 6, "b": 5},
		},
		"Moving a step after a step with a gap should not shift.": {
			steps:     []*phase.Step{{Identifier: "a", Order: 1}, {Identifier: "b", Order: 3}, {Identifier: "c", Order: 10}},
			a:         "c",
			b:         "a",
			expSorted: []string{"a", "c", "b"},
			expOrders: map[string]int{"a": 1, "b": 3, "c": 2},
		},
		"Moving a step after itself should be a no-op.": {
			steps:     []*phase.Step{{Identifier: "1"}, {Identifier: "2"}},
			a:         "2",
			b:         "2",
			expSorted: []string{"1", "2"},
			expOrders: map[string]int{"1": 1, "2": 2},
		},
		"Moving a missing step should fail.": {
			steps:     []*phase.Step{{Identifier: "1"}},
			a:         "missing",
			b:         "1",
			expErr:    phase.ErrStepNotFound,
			expSorted: []string{"1"},
			expOrders: map[string]int{"1": 1},
		},
		"Moving after a missing step should fail.": {
			steps:     []*phase.Step{{Identifier: "1"}},
			a:         "1",
			b:         "missing",
			expErr:    phase.ErrStepNotFound,
			expSorted: []string{"1"},
			expOrders: map[string]int{"1": 1},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			p := phase.New("test")
			for _, s := range test.steps {
				require.NoError(p.AddStep(s))
			}

			err := p.MoveAfter(test.a, test.b)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else {
				assert.NoError(err)
			}

			assert.Equal(test.expSorted, stepIDs(p.Sort()))
			gotOrders := map[string]int{}
			for _, s := range p.Steps() {
				gotOrders[s.Identifier] = s.Order
			}
			assert.Equal(test.expOrders, gotOrders)

			if test.expErr == nil && test.a != test.b {
				sa, _ := p.GetStep(test.a)
				sb, _ := p.GetStep(test.b)
				assert.Equal(sb.Order+1, sa.Order)
			}
		})
	}
}
