// Package data moves tabular files in and out of frame.Frame through gota
// dataframes.
package data

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"segkit/pkg/frame"
)

// DefaultNaNValues are the cells read as missing.
var DefaultNaNValues = []string{"", "NA", "NaN", "nan", "<nil>"}

type options struct {
	delimiter rune
	nanValues []string
	types     map[string]series.Type
}

// Option configures ReadCSV.
type Option func(*options)

// WithDelimiter sets the field separator (',' by default).
func WithDelimiter(r rune) Option { return func(o *options) { o.delimiter = r } }

// WithNaNValues replaces DefaultNaNValues.
func WithNaNValues(v ...string) Option { return func(o *options) { o.nanValues = v } }

// WithStringColumns disables type detection for the named columns, keeping
// codes such as "01" intact.
func WithStringColumns(names ...string) Option {
	return func(o *options) {
		for _, n := range names {
			o.types[n] = series.String
		}
	}
}

// ReadCSV loads a CSV with a header row. Column types are detected per
// column: integer columns yield int cells, float columns float64, boolean
// columns bool and anything else string. Missing cells are nil.
func ReadCSV(r io.Reader, opts ...Option) (*frame.Frame, error) {
	o := options{delimiter: ',', nanValues: DefaultNaNValues, types: map[string]series.Type{}}
	for _, fn := range opts {
		fn(&o)
	}
	load := []dataframe.LoadOption{
		dataframe.WithDelimiter(o.delimiter),
		dataframe.NaNValues(o.nanValues),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
	}
	if len(o.types) > 0 {
		load = append(load, dataframe.WithTypes(o.types))
	}
	df := dataframe.ReadCSV(r, load...)
	if df.Err != nil {
		return nil, fmt.Errorf("data: read csv: %w", df.Err)
	}
	return fromDataFrame(df)
}

// ReadCSVFile is ReadCSV on a file path.
func ReadCSVFile(path string, opts ...Option) (*frame.Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	f, err := ReadCSV(fh, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func fromDataFrame(df dataframe.DataFrame) (*frame.Frame, error) {
	cols := make([]frame.Column, 0, df.Ncol())
	for _, name := range df.Names() {
		s := df.Col(name)
		vals := make([]frame.Value, s.Len())
		for i := range vals {
			v, err := cell(s.Elem(i), s.Type())
			if err != nil {
				return nil, fmt.Errorf("data: column %s row %d: %w", name, i, err)
			}
			vals[i] = v
		}
		cols = append(cols, frame.Col(name, vals...))
	}
	return frame.New(cols...)
}

func cell(e series.Element, t series.Type) (frame.Value, error) {
	if e.IsNA() {
		return nil, nil
	}
	switch t {
	case series.Int:
		return e.Int()
	case series.Float:
		return e.Float(), nil
	case series.Bool:
		return e.Bool()
	}
	return e.String(), nil
}

// WriteCSV writes f with a header row. Missing cells are written as NaN.
func WriteCSV(w io.Writer, f *frame.Frame) error {
	ss := make([]series.Series, 0, f.Width())
	for _, name := range f.Names() {
		vals, _ := f.Column(name)
		ss = append(ss, toSeries(name, vals))
	}
	df := dataframe.New(ss...)
	if df.Err != nil {
		return fmt.Errorf("data: write csv: %w", df.Err)
	}
	return df.WriteCSV(w)
}

// toSeries picks the narrowest gota type that holds every present cell.
func toSeries(name string, vals []frame.Value) series.Series {
	t := series.Int
	for _, v := range vals {
		switch v.(type) {
		case nil, int, int64, int32:
		case float64, float32:
			if t == series.Int {
				t = series.Float
			}
		default:
			t = series.String
		}
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		if frame.IsMissing(v) {
			out[i] = "NaN"
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return series.New(out, t, name)
}
