package phase

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateStep is returned when adding a step whose identifier is already in the phase.
	ErrDuplicateStep = errors.New("step already exists")
	// ErrStepNotFound is returned when referencing a step that is not in the phase.
	ErrStepNotFound = errors.New("step not found")
)

// Step is a unit of a phase.
type Step struct {
	Identifier  string
	Description string
	// Order is the 1 based execution position, 0 means unset.
	Order int
	// Payload is the work of the step, opaque for the phase.
	Payload any
}

// Phase is an ordered set of steps keyed by identifier.
//
// The insertion sequence and the execution order are different things, the
// execution order is always the one returned by Sort.
//
// Phase is not safe for concurrent use.
type Phase struct {
	Description string
	Checked     bool

	steps []*Step
}

// New returns a new checked phase.
func New(description string) *Phase {
	return &Phase{
		Description: description,
		Checked:     true,
	}
}

// AddStep adds the step to the phase. Steps without order are placed after the
// existing ones.
func (p *Phase) AddStep(s *Step) error {
	if s == nil || s.Identifier == "" {
		return fmt.Errorf("step identifier is required")
	}

	if p.StepExists(s.Identifier) {
		return fmt.Errorf("%q: %w", s.Identifier, ErrDuplicateStep)
	}

	if s.Order == 0 {
		s.Order = p.highestOrder() + 1
	}

	p.steps = append(p.steps, s)
	return nil
}

// StepExists returns true if the phase has a step with the identifier.
func (p *Phase) StepExists(id string) bool {
	_, ok := p.GetStep(id)
	return ok
}

// GetStep returns the step with the identifier.
func (p *Phase) GetStep(id string) (*Step, bool) {
	for _, s := range p.steps {
		if s.Identifier == id {
			return s, true
		}
	}
	return nil, false
}

// Steps returns the steps in insertion order.
func (p *Phase) Steps() []*Step {
	steps := make([]*Step, len(p.steps))
	copy(steps, p.steps)
	return steps
}

// Len returns the number of steps.
func (p *Phase) Len() int { return len(p.steps) }

// Sort returns the steps in execution order. Steps with the same order keep
// their insertion order.
func (p *Phase) Sort() []*Step {
	steps := p.Steps()
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })
	return steps
}

// MoveAfter places step a right after step b. If there is already a step on
// the position after b, every step after b is shifted one position to make room.
func (p *Phase) MoveAfter(a, b string) error {
	sa, ok := p.GetStep(a)
	if !ok {
		return fmt.Errorf("%q: %w", a, ErrStepNotFound)
	}
	sb, ok := p.GetStep(b)
	if !ok {
		return fmt.Errorf("%q: %w", b, ErrStepNotFound)
	}

	if sa == sb {
		return nil
	}

	target := sb.Order + 1
	taken := false
	for _, s := range p.steps {
		if s.Order == target {
			taken = true
			break
		}
	}

	if taken {
		for _, s := range p.steps {
			if s.Order > sb.Order {
				s.Order++
			}
		}
	}

	sa.Order = target
	return nil
}

func (p *Phase) highestOrder() int {
	highest := 0
	for _, s := range p.steps {
		if s.Order > highest {
			highest = s.Order
		}
	}
	return highest
}
