package dataprep

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"segkit/pkg/frame"
)

// ErrUnknownBuiltin is returned for an apply name absent from Builtins.
var ErrUnknownBuiltin = errors.New("dataprep: unknown builtin transform")

// Builtins are the named Apply steps a recipe can reference.
var Builtins = map[string]func() Step{
	"to_float":  ToFloat,
	"to_string": ToString,
	"log1p":     Log1p,
}

// Recipe is a declarative list of cleaning steps and derived features.
//
//	steps:
//	  - column: CAMEO_DEU_2015
//	    remap: {XX: null}
//	  - column: CAMEO_INTL_2015
//	    apply: to_float
//	  - column: ALTER_HH
//	    missing: "-1, 0"
//	features:
//	  - name: WEALTH
//	    from: CAMEO_INTL_2015
//	    remap: {11: 1, 12: 1}
//
// Numeric remap keys match int, int64 and float64 cells alike, so a remap
// still applies after a to_float step.
type Recipe struct {
	Steps    []RecipeStep    `yaml:"steps"`
	Features []RecipeFeature `yaml:"features"`
}

// RecipeStep describes exactly one of remap, apply or missing for a column.
type RecipeStep struct {
	Column  string        `yaml:"column"`
	Remap   frame.Mapping `yaml:"remap"`
	Apply   string        `yaml:"apply"`
	Missing any           `yaml:"missing"`
}

// RecipeFeature describes a derived column.
type RecipeFeature struct {
	Name  string        `yaml:"name"`
	From  string        `yaml:"from"`
	Remap frame.Mapping `yaml:"remap"`
	Apply string        `yaml:"apply"`
}

// LoadRecipe reads and parses a recipe file.
func LoadRecipe(path string) (*Recipe, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := ParseRecipe(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ParseRecipe parses and validates a YAML recipe.
func ParseRecipe(raw []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	for i, s := range r.Steps {
		if s.Column == "" {
			return nil, fmt.Errorf("steps[%d]: column is required", i)
		}
		if _, err := s.Step(); err != nil {
			return nil, fmt.Errorf("steps[%d] (%s): %w", i, s.Column, err)
		}
	}
	for i, f := range r.Features {
		if f.Name == "" || f.From == "" {
			return nil, fmt.Errorf("features[%d]: name and from are required", i)
		}
		if _, err := f.Step(); err != nil {
			return nil, fmt.Errorf("features[%d] (%s): %w", i, f.Name, err)
		}
	}
	return &r, nil
}

// Step builds the transformation described by s.
func (s RecipeStep) Step() (Step, error) {
	set := 0
	var step Step
	if s.Remap != nil {
		set++
		step = Remap(numericKeys(s.Remap))
	}
	if s.Apply != "" {
		set++
		b, err := builtin(s.Apply)
		if err != nil {
			return Step{}, err
		}
		step = b
	}
	if s.Missing != nil {
		set++
		codes, err := ParseMissingCodes(s.Missing)
		if err != nil {
			return Step{}, err
		}
		step = MissingCodesStep(codes)
	}
	if set != 1 {
		return Step{}, fmt.Errorf("%w: want exactly one of remap, apply, missing", ErrInvalidStep)
	}
	return step, nil
}

// Step builds the transformation described by f.
func (f RecipeFeature) Step() (Step, error) {
	switch {
	case f.Remap != nil && f.Apply == "":
		return Remap(numericKeys(f.Remap)), nil
	case f.Remap == nil && f.Apply != "":
		return builtin(f.Apply)
	}
	return Step{}, fmt.Errorf("%w: want exactly one of remap, apply", ErrInvalidStep)
}

// numericKeys returns a copy of m in which every integral numeric key is
// also present as int, int64 and float64. Keys written explicitly win, then
// int keys, then int64 keys, then float64 keys.
func numericKeys(m frame.Mapping) frame.Mapping {
	out := make(frame.Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	integral := func(k frame.Value) (int64, int, bool) {
		switch x := k.(type) {
		case int:
			return int64(x), 0, true
		case int64:
			return x, 1, true
		case float64:
			if x == math.Trunc(x) && !math.IsInf(x, 0) {
				return int64(x), 2, true
			}
		}
		return 0, 0, false
	}
	for rank := 0; rank < 3; rank++ {
		for k, v := range m {
			n, r, ok := integral(k)
			if !ok || r != rank {
				continue
			}
			for _, alt := range []frame.Value{int(n), n, float64(n)} {
				if _, taken := out[alt]; !taken {
					out[alt] = v
				}
			}
		}
	}
	return out
}

func builtin(name string) (Step, error) {
	mk, ok := Builtins[name]
	if !ok {
		names := make([]string, 0, len(Builtins))
		for n := range Builtins {
			names = append(names, n)
		}
		sort.Strings(names)
		return Step{}, fmt.Errorf("%w %q (have %v)", ErrUnknownBuiltin, name, names)
	}
	return mk(), nil
}

// FitTo records every step on t, in recipe order, without modifying t's
// frame. Call t.Replay to apply them.
func (r *Recipe) FitTo(t *Tracker) error {
	for _, s := range r.Steps {
		step, err := s.Step()
		if err != nil {
			return err
		}
		if err := t.Fit(s.Column, step); err != nil {
			return err
		}
	}
	return nil
}

// RegisterTo registers every feature on e, in recipe order.
func (r *Recipe) RegisterTo(e *FeatureEngineer) error {
	for _, f := range r.Features {
		step, err := f.Step()
		if err != nil {
			return err
		}
		if err := e.Register(f.Name, f.From, step); err != nil {
			return err
		}
	}
	return nil
}
