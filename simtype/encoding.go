package simtype

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/reoring/typeconv"
)

// Triggers and variants encode to the mapping forms their rules accept, so
// a stored value converts back to an equal one:
//
//	Periodic  {"type": "periodic", "period": 100, "phase": 0}
//	Before    {"type": "before", "timestep": 10} (likewise after, on)
//	Constant  1.5
//	Ramp      {"type": "ramp", "A": 1, "B": 2, "t_start": 0, "t_ramp": 100}
//
//	All       {"type": "all"}
//	Tags      {"type": "tags", "names": ["A", "B"]}
//
// Box encodes through its field tags as {"Lx": .., "xy": .., ...}. Custom
// filters have no encoding.

func (p Periodic) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "periodic", "period": p.Period, "phase": p.Phase})
}

func (b Before) MarshalJSON() ([]byte, error) { return stepJSON("before", b.Step) }

func (a After) MarshalJSON() ([]byte, error) { return stepJSON("after", a.Step) }

func (o On) MarshalJSON() ([]byte, error) { return stepJSON("on", o.Step) }

func stepJSON(kind string, step int) ([]byte, error) {
	return json.Marshal(map[string]any{"type": kind, "timestep": step})
}

func (c Constant) MarshalJSON() ([]byte, error) { return json.Marshal(c.V) }

func (r Ramp) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "ramp", "A": r.A, "B": r.B, "t_start": r.TStart, "t_ramp": r.TRamp})
}

var triggerFields = typeconv.MustBuild(map[string]any{
	"type":     typeconv.OnlyFrom([]any{"periodic", "before", "after", "on"}),
	"period":   typeconv.Int,
	"phase":    typeconv.Int,
	"timestep": typeconv.Int,
})

func triggerFromMap(m map[string]any) (Trigger, error) {
	out, err := triggerFields.Convert(m)
	if err != nil {
		return nil, err
	}
	f := out.(map[string]any)
	kind, _ := f["type"].(string)
	field := func(k string) (int, error) {
		n, ok := f[k].(int)
		if !ok {
			return 0, fmt.Errorf("%s trigger needs %q", kind, k)
		}
		return n, nil
	}
	switch kind {
	case "periodic":
		period, err := field("period")
		if err != nil {
			return nil, err
		}
		phase, _ := f["phase"].(int)
		return Periodic{Period: period, Phase: phase}, nil
	case "before", "after", "on":
		step, err := field("timestep")
		if err != nil {
			return nil, err
		}
		switch kind {
		case "before":
			return Before{Step: step}, nil
		case "after":
			return After{Step: step}, nil
		}
		return On{Step: step}, nil
	}
	return nil, fmt.Errorf("trigger mapping needs a type")
}

var rampFields = typeconv.MustBuild(map[string]any{
	"type":    typeconv.OnlyFrom([]any{"ramp"}),
	"A":       typeconv.Float,
	"B":       typeconv.Float,
	"t_start": typeconv.Int,
	"t_ramp":  typeconv.Int,
})

func rampFromMap(m map[string]any) (Ramp, error) {
	out, err := rampFields.Convert(m)
	if err != nil {
		return Ramp{}, err
	}
	f := out.(map[string]any)
	for _, k := range []string{"type", "A", "B", "t_start", "t_ramp"} {
		if _, ok := f[k]; !ok {
			return Ramp{}, fmt.Errorf("ramp variant needs %q", k)
		}
	}
	return Ramp{A: f["A"].(float64), B: f["B"].(float64), TStart: f["t_start"].(int), TRamp: f["t_ramp"].(int)}, nil
}

func (All) MarshalJSON() ([]byte, error) { return json.Marshal(map[string]any{"type": "all"}) }

func (f Tags) MarshalJSON() ([]byte, error) {
	names := f.Names
	if names == nil {
		names = []string{}
	}
	return json.Marshal(map[string]any{"type": "tags", "names": names})
}

var filterFields = typeconv.MustBuild(map[string]any{
	"type":  typeconv.OnlyFrom([]any{"all", "tags"}),
	"names": []any{typeconv.OnlyTypes([]*typeconv.Type{typeconv.String}, typeconv.Strict())},
})

func filterFromMap(m map[string]any) (Filter, error) {
	out, err := filterFields.Convert(m)
	if err != nil {
		return nil, err
	}
	f := out.(map[string]any)
	switch f["type"] {
	case "all":
		return All{}, nil
	case "tags":
		raw, ok := f["names"].([]any)
		if !ok {
			return nil, fmt.Errorf("tags filter needs %q", "names")
		}
		names := make([]string, len(raw))
		for i, n := range raw {
			names[i] = n.(string)
		}
		return Tags{Names: names}, nil
	}
	return nil, fmt.Errorf("filter mapping needs a type")
}
