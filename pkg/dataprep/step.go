package dataprep

import (
	"errors"
	"fmt"

	"segkit/pkg/frame"
)

var (
	// ErrInvalidStep is returned for a zero Step or a step built from a nil
	// mapping or function.
	ErrInvalidStep = errors.New("dataprep: invalid transformation step")
	// ErrSameColumn is returned when a derived column would overwrite its source.
	ErrSameColumn = errors.New("dataprep: derived column must differ from its source")
	// ErrNoFrame is returned when neither an explicit nor an owned frame exists.
	ErrNoFrame = errors.New("dataprep: no frame to transform")
)

// StepKind tags the two transformation variants.
type StepKind uint8

const (
	KindInvalid StepKind = iota
	KindRemap
	KindApply
)

func (k StepKind) String() string {
	switch k {
	case KindRemap:
		return "remap"
	case KindApply:
		return "apply"
	}
	return "invalid"
}

// Step is one recorded column transformation: either a value remap or an
// elementwise function. Build steps with Remap or Apply.
type Step struct {
	kind    StepKind
	mapping frame.Mapping
	fn      func(frame.Value) frame.Value
	name    string
}

// Remap returns a substitution step. The mapping is copied.
func Remap(m frame.Mapping) Step {
	if m == nil {
		return Step{}
	}
	cp := make(frame.Mapping, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Step{kind: KindRemap, mapping: cp, name: "remap"}
}

// Apply returns an elementwise function step. fn must be deterministic.
func Apply(fn func(frame.Value) frame.Value) Step {
	if fn == nil {
		return Step{}
	}
	return Step{kind: KindApply, fn: fn, name: "apply"}
}

// Named returns a copy of the step labelled for logs.
func (s Step) Named(name string) Step {
	s.name = name
	return s
}

func (s Step) Kind() StepKind { return s.kind }
func (s Step) Name() string   { return s.name }

// Mapping returns the substitution table of a remap step, nil otherwise.
func (s Step) Mapping() frame.Mapping { return s.mapping }

func (s Step) Valid() bool {
	switch s.kind {
	case KindRemap:
		return s.mapping != nil
	case KindApply:
		return s.fn != nil
	}
	return false
}

// Run applies the step to values and returns a new slice.
func (s Step) Run(values []frame.Value) []frame.Value {
	switch s.kind {
	case KindRemap:
		return frame.Remap(values, s.mapping)
	case KindApply:
		return frame.Apply(values, s.fn)
	}
	return append([]frame.Value(nil), values...)
}

func (s Step) String() string {
	if s.kind == KindRemap {
		return fmt.Sprintf("%s(%d keys)", s.name, len(s.mapping))
	}
	return s.name
}
