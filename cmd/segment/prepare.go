package main

import (
	"fmt"
	"log/slog"

	"segkit/pkg/attributes"
	"segkit/pkg/dataprep"
	"segkit/pkg/frame"
)

// preparer turns a raw population frame into a complete numeric frame.
// It is fitted on one population and replayed on others in three stages:
// cleaning, feature derivation, then encoding and imputation.
type preparer struct {
	clean    *dataprep.Tracker
	features *dataprep.FeatureEngineer
	prep     *dataprep.Tracker
	drop     []string
	log      *slog.Logger
}

type prepOptions struct {
	catalog         *attributes.Catalog
	recipe          *dataprep.Recipe
	exclude         []string // identifier and label columns
	columnThreshold float64
	maxMissingRow   int
	dropDuplicates  bool
}

// fitPreparer fits every stage on f, transforming f in place.
func fitPreparer(f *frame.Frame, o prepOptions, log *slog.Logger) (*preparer, error) {
	opt := dataprep.WithLogger(log)
	p := &preparer{clean: dataprep.NewTracker(f, opt), log: log}

	if o.catalog != nil {
		cols, err := o.catalog.FitMissing(p.clean)
		if err != nil {
			return nil, fmt.Errorf("missing codes: %w", err)
		}
		log.Info("missing codes recorded", "columns", len(cols))
	}
	if o.recipe != nil {
		if err := o.recipe.FitTo(p.clean); err != nil {
			return nil, fmt.Errorf("recipe: %w", err)
		}
	}
	if err := p.clean.Replay(nil); err != nil {
		return nil, err
	}

	p.features = dataprep.NewFeatureEngineer([]*frame.Frame{f}, opt)
	if o.recipe != nil {
		if err := o.recipe.RegisterTo(p.features); err != nil {
			return nil, fmt.Errorf("features: %w", err)
		}
	}

	p.drop = append(p.drop, o.exclude...)
	p.drop = append(p.drop, dataprep.MissingColumns(f, o.columnThreshold)...)
	f.Drop(p.drop...)
	log.Info("columns dropped", "count", len(p.drop), "remaining", f.Width())

	if o.maxMissingRow >= 0 {
		log.Info("sparse rows", "max_missing", o.maxMissingRow, "pct", dataprep.MissingRowsPercent(f, o.maxMissingRow))
		n := dataprep.DropSparseRows(f, o.maxMissingRow)
		log.Info("rows dropped", "reason", "sparse", "count", n)
	}
	if o.dropDuplicates {
		n := dataprep.DropDuplicateRows(f)
		log.Info("rows dropped", "reason", "duplicate", "count", n)
	}

	p.prep = dataprep.NewTracker(f, opt)
	for _, name := range f.Names() {
		vals, _ := f.Column(name)
		if frame.MissingCount(vals) == len(vals) || dataprep.IsNumeric(vals) {
			continue
		}
		// categories unseen at fit time become missing, then imputed
		if err := p.prep.Commit(name, dataprep.LabelEncodingStrict(vals)); err != nil {
			return nil, err
		}
	}
	dropped, err := dataprep.AutoImpute(p.prep, o.columnThreshold)
	if err != nil {
		return nil, fmt.Errorf("impute: %w", err)
	}
	p.drop = append(p.drop, dropped...)
	if err := dataprep.FillComplete(p.prep); err != nil {
		return nil, fmt.Errorf("impute: %w", err)
	}
	return p, nil
}

// apply replays the fitted stages on f and aligns its columns with the
// fitted frame. Rows are never dropped.
func (p *preparer) apply(f *frame.Frame) error {
	if err := p.clean.Replay(f); err != nil {
		return err
	}
	if err := p.features.Replay(f); err != nil {
		return err
	}
	f.Drop(p.drop...)
	if err := p.prep.Replay(f); err != nil {
		return err
	}
	for _, name := range p.prep.Frame().Names() {
		if !f.Has(name) {
			return &frame.ColumnError{Name: name, Err: frame.ErrColumnNotFound}
		}
	}
	return nil
}

// columns returns the prepared feature columns.
func (p *preparer) columns() []string { return p.prep.Frame().Names() }
