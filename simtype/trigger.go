package simtype

import (
	"fmt"

	"github.com/reoring/typeconv"
)

// Trigger decides on which timesteps an operation runs.
type Trigger interface {
	Compute(step int) bool
}

// Periodic fires every Period steps, starting at Phase. A Period below 1
// fires on Phase only.
type Periodic struct {
	Period int
	Phase  int
}

func (p Periodic) Compute(step int) bool {
	if p.Period < 1 {
		return step == p.Phase
	}
	return step >= p.Phase && (step-p.Phase)%p.Period == 0
}

func (p Periodic) String() string { return fmt.Sprintf("Periodic(period=%d, phase=%d)", p.Period, p.Phase) }

// Before fires on every step strictly before Step.
type Before struct{ Step int }

func (b Before) Compute(step int) bool { return step < b.Step }

// After fires on every step strictly after Step.
type After struct{ Step int }

func (a After) Compute(step int) bool { return step > a.Step }

// On fires on Step only.
type On struct{ Step int }

func (o On) Compute(step int) bool { return step == o.Step }

// TriggerType is the special type of Trigger values. Integers convert to
// Periodic triggers with that period.
var TriggerType = typeconv.NewType("trigger", nil, func(v any) bool {
	_, ok := v.(Trigger)
	return ok
}, nil)

// TriggerRule is the rule registered for TriggerType.
var TriggerRule = typeconv.OnlyTypes([]*typeconv.Type{TriggerType}, typeconv.WithPreprocess(toTrigger))

func toTrigger(v any) (any, error) {
	if t, ok := v.(Trigger); ok {
		return t, nil
	}
	if m, ok := v.(map[string]any); ok {
		t, err := triggerFromMap(m)
		if err != nil {
			return nil, notConvertible(v, err, TriggerType, typeconv.Int)
		}
		return t, nil
	}
	n, err := typeconv.Int.Construct(v)
	if err != nil {
		return nil, notConvertible(v, err, TriggerType, typeconv.Int)
	}
	if n.(int) < 1 {
		return nil, notConvertible(v, fmt.Errorf("period %d is not positive", n), TriggerType, typeconv.Int)
	}
	return Periodic{Period: n.(int)}, nil
}

// notConvertible is the issue returned by the preprocessors.
func notConvertible(v any, cause error, types ...*typeconv.Type) typeconv.Issues {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name()
	}
	return typeconv.Issues{typeconv.IssueAt("/", typeconv.CodeCoercionFailed, cause, "value", v, "types", names)}
}
