package dataprep

import (
	"fmt"
	"log/slog"

	"segkit/pkg/frame"
)

// Tracker records the cleaning transformations applied to the columns of an
// owned frame so the same sequence can be replayed against new data.
//
// Steps are kept per column in registration order and the log only grows.
// A Tracker is not safe for concurrent use.
type Tracker struct {
	df      *frame.Frame
	columns []string
	steps   map[string][]Step
	log     *slog.Logger
}

// NewTracker returns a tracker owning df. df is held by reference.
func NewTracker(df *frame.Frame, opts ...Option) *Tracker {
	o := buildOptions(opts)
	return &Tracker{
		df:    df,
		steps: make(map[string][]Step),
		log:   o.logger.With("component", "tracker"),
	}
}

// Frame returns the owned frame.
func (t *Tracker) Frame() *frame.Frame { return t.df }

// Remap records a remap of column and returns the remapped values.
// The owned frame is not modified.
func (t *Tracker) Remap(column string, m frame.Mapping) ([]frame.Value, error) {
	return t.register(column, Remap(m))
}

// Apply records fn for column and returns the transformed values.
// The owned frame is not modified.
func (t *Tracker) Apply(column string, fn func(frame.Value) frame.Value) ([]frame.Value, error) {
	return t.register(column, Apply(fn))
}

// Fit records step for column without touching the owned frame.
func (t *Tracker) Fit(column string, step Step) error {
	_, err := t.register(column, step)
	return err
}

// Commit records step for column and writes the result back into the
// owned frame.
func (t *Tracker) Commit(column string, step Step) error {
	out, err := t.register(column, step)
	if err != nil {
		return err
	}
	return t.df.Set(column, out)
}

func (t *Tracker) register(column string, step Step) ([]frame.Value, error) {
	if !step.Valid() {
		return nil, fmt.Errorf("column %q: %w", column, ErrInvalidStep)
	}
	if t.df == nil {
		return nil, ErrNoFrame
	}
	vals, err := t.df.Column(column)
	if err != nil {
		return nil, err
	}
	if _, ok := t.steps[column]; !ok {
		t.columns = append(t.columns, column)
	}
	t.steps[column] = append(t.steps[column], step)
	t.log.Debug("step registered", "column", column, "kind", step.Kind().String(), "step", step.String(), "count", len(t.steps[column]))
	return step.Run(vals), nil
}

// Replay applies every recorded step, column by column in registration
// order, to target in place. A nil target means the owned frame. Logged
// columns the target lacks are skipped.
func (t *Tracker) Replay(target *frame.Frame) error {
	if target == nil {
		target = t.df
	}
	if target == nil {
		return ErrNoFrame
	}
	skipped := 0
	for _, column := range t.columns {
		vals, err := target.Column(column)
		if err != nil {
			skipped++
			t.log.Debug("replay skipped column", "column", column)
			continue
		}
		for _, step := range t.steps[column] {
			vals = step.Run(vals)
		}
		if err := target.Set(column, vals); err != nil {
			return err
		}
	}
	t.log.Debug("replay done", "columns", len(t.columns)-skipped, "skipped", skipped)
	return nil
}

// Steps returns a copy of the steps recorded for column.
func (t *Tracker) Steps(column string) []Step {
	return append([]Step(nil), t.steps[column]...)
}

// Columns returns the logged columns in first-registration order.
func (t *Tracker) Columns() []string {
	return append([]string(nil), t.columns...)
}
