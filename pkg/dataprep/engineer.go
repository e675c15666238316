package dataprep

import (
	"fmt"
	"log/slog"

	"segkit/pkg/frame"
)

// Derivation is one recorded feature: NewColumn computed from a source
// column through Step.
type Derivation struct {
	NewColumn string
	Step      Step
}

// FeatureEngineer derives new columns from existing ones in a set of target
// frames, and records the derivations for replay against other frames.
// It is not safe for concurrent use.
type FeatureEngineer struct {
	targets []*frame.Frame
	sources []string
	derived map[string][]Derivation
	log     *slog.Logger
}

// NewFeatureEngineer returns an engineer that mutates every target on
// registration. Targets are held by reference; a nil target makes every
// registration fail with ErrNoFrame.
func NewFeatureEngineer(targets []*frame.Frame, opts ...Option) *FeatureEngineer {
	o := buildOptions(opts)
	return &FeatureEngineer{
		targets: targets,
		derived: make(map[string][]Derivation),
		log:     o.logger.With("component", "feature_engineer"),
	}
}

// Apply derives newColumn = fn(sourceColumn) in every target.
func (e *FeatureEngineer) Apply(newColumn, sourceColumn string, fn func(frame.Value) frame.Value) error {
	return e.Register(newColumn, sourceColumn, Apply(fn))
}

// Remap derives newColumn as sourceColumn remapped through m in every target.
func (e *FeatureEngineer) Remap(newColumn, sourceColumn string, m frame.Mapping) error {
	return e.Register(newColumn, sourceColumn, Remap(m))
}

// Register records the derivation and computes it in every target. Every
// target must have sourceColumn; otherwise nothing is recorded or written.
func (e *FeatureEngineer) Register(newColumn, sourceColumn string, step Step) error {
	if !step.Valid() {
		return fmt.Errorf("feature %q: %w", newColumn, ErrInvalidStep)
	}
	if newColumn == "" {
		return frame.ErrEmptyName
	}
	if newColumn == sourceColumn {
		return fmt.Errorf("feature %q: %w", newColumn, ErrSameColumn)
	}
	inputs := make([][]frame.Value, len(e.targets))
	for i, tgt := range e.targets {
		if tgt == nil {
			return fmt.Errorf("feature %q: target %d: %w", newColumn, i, ErrNoFrame)
		}
		vals, err := tgt.Column(sourceColumn)
		if err != nil {
			return fmt.Errorf("feature %q: target %d: %w", newColumn, i, err)
		}
		inputs[i] = vals
	}

	if _, ok := e.derived[sourceColumn]; !ok {
		e.sources = append(e.sources, sourceColumn)
	}
	e.derived[sourceColumn] = append(e.derived[sourceColumn], Derivation{NewColumn: newColumn, Step: step})
	e.log.Debug("feature registered", "feature", newColumn, "source", sourceColumn, "kind", step.Kind().String(), "targets", len(e.targets))

	for i, tgt := range e.targets {
		if err := tgt.Set(newColumn, step.Run(inputs[i])); err != nil {
			return fmt.Errorf("feature %q: target %d: %w", newColumn, i, err)
		}
	}
	return nil
}

// Replay computes every recorded derivation on f, source columns in
// registration order. A missing source column is returned as a lookup
// error and leaves f unchanged: results are staged and written only after
// every derivation succeeded. Derivations may read features produced
// earlier in the same replay.
func (e *FeatureEngineer) Replay(f *frame.Frame) error {
	if f == nil {
		return ErrNoFrame
	}
	staged := make(map[string][]frame.Value)
	var order []string
	lookup := func(name string) ([]frame.Value, error) {
		if vals, ok := staged[name]; ok {
			return vals, nil
		}
		return f.Column(name)
	}
	for _, src := range e.sources {
		for _, d := range e.derived[src] {
			vals, err := lookup(src)
			if err != nil {
				return fmt.Errorf("feature %q: %w", d.NewColumn, err)
			}
			if _, ok := staged[d.NewColumn]; !ok {
				order = append(order, d.NewColumn)
			}
			staged[d.NewColumn] = d.Step.Run(vals)
		}
	}
	for _, name := range order {
		if err := f.Set(name, staged[name]); err != nil {
			return err
		}
	}
	e.log.Debug("feature replay done", "features", len(order))
	return nil
}

// Derivations returns a copy of the derivations recorded for source.
func (e *FeatureEngineer) Derivations(source string) []Derivation {
	return append([]Derivation(nil), e.derived[source]...)
}

// Sources returns the source columns in first-registration order.
func (e *FeatureEngineer) Sources() []string {
	return append([]string(nil), e.sources...)
}

// Targets returns the frames mutated on registration.
func (e *FeatureEngineer) Targets() []*frame.Frame {
	return append([]*frame.Frame(nil), e.targets...)
}
