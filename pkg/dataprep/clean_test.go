package dataprep

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segkit/pkg/frame"
)

func TestMissingColumns(t *testing.T) {
	f := frame.MustNew(
		frame.Col("full", 1, 2, 3, 4),
		frame.Col("quarter", 1, nil, 3, 4),
		frame.Col("half", nil, math.NaN(), 3, 4),
		frame.Col("all", nil, nil, nil, nil),
	)
	assert.Equal(t, []string{"half", "all"}, MissingColumns(f, 0.3))
	assert.Equal(t, []string{"quarter", "half", "all"}, MissingColumns(f, 0))
	assert.Empty(t, MissingColumns(f, 1))
	assert.Empty(t, MissingColumns(frame.MustNew(), 0.3))
}

func TestMissingRowsPercentAndDropSparseRows(t *testing.T) {
	f := frame.MustNew(
		frame.Col("a", 1, nil, nil, 4),
		frame.Col("b", 1, nil, 3, 4),
		frame.Col("c", nil, nil, 3, 4),
	)
	assert.InDelta(t, 75.0, MissingRowsPercent(f, 0), 1e-9)
	assert.InDelta(t, 25.0, MissingRowsPercent(f, 1), 1e-9)
	assert.InDelta(t, 0.0, MissingRowsPercent(f, 3), 1e-9)

	assert.Equal(t, 1, DropSparseRows(f, 1))
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []frame.Value{1, nil, 4}, column(t, f, "a"))
}

func TestDropDuplicateRows(t *testing.T) {
	f := frame.MustNew(frame.Col("a", 1, 1, 2, 1), frame.Col("b", "x", "x", "x", "y"))
	assert.Equal(t, 1, DropDuplicateRows(f))
	assert.Equal(t, []frame.Value{1, 2, 1}, column(t, f, "a"))
	assert.Equal(t, 0, DropDuplicateRows(f))
}

func TestDropDuplicateRows_DistinctCellsThatPrintAlike(t *testing.T) {
	cases := map[string]*frame.Frame{
		"split strings": frame.MustNew(frame.Col("a", "x y", "x"), frame.Col("b", "z", "y z")),
		"int vs string": frame.MustNew(frame.Col("a", 1, "1")),
		"nil vs text":   frame.MustNew(frame.Col("a", nil, "<nil>")),
		"int vs float":  frame.MustNew(frame.Col("a", 1, 1.0)),
		"quote inside":  frame.MustNew(frame.Col("a", `x";string:"y`, "x"), frame.Col("b", "", `y";string:"`)),
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 0, DropDuplicateRows(f))
			assert.Equal(t, 2, f.Len())
		})
	}

	// nil and NaN are both missing
	f := frame.MustNew(frame.Col("a", nil, math.NaN()), frame.Col("b", "x", "x"))
	assert.Equal(t, 1, DropDuplicateRows(f))
}

func TestAutoImpute(t *testing.T) {
	rows := 40
	low := make([]frame.Value, rows)   // 1 missing -> mean
	mid := make([]frame.Value, rows)   // 4 missing, symmetric -> median
	cat := make([]frame.Value, rows)   // 2 missing -> mode
	catHi := make([]frame.Value, rows) // 8 missing -> "Unknown"
	sparse := make([]frame.Value, rows)
	for i := 0; i < rows; i++ {
		low[i] = float64(i % 4)
		mid[i] = i % 3
		cat[i] = "A"
		if i%4 == 0 {
			cat[i] = "B"
		}
		catHi[i] = "C"
	}
	low[0] = nil
	for i := 0; i < 4; i++ {
		mid[i*10] = nil
	}
	cat[1], cat[2] = nil, nil
	for i := 0; i < 8; i++ {
		catHi[i] = nil
	}
	for i := 0; i < 30; i++ {
		sparse[i] = nil
	}
	df := frame.MustNew(
		frame.Column{Name: "low", Values: low},
		frame.Column{Name: "mid", Values: mid},
		frame.Column{Name: "cat", Values: cat},
		frame.Column{Name: "cat_hi", Values: catHi},
		frame.Column{Name: "sparse", Values: sparse},
	)
	tr := NewTracker(df, quiet())

	dropped, err := AutoImpute(tr, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []string{"sparse"}, dropped)
	assert.False(t, df.Has("sparse"))

	for _, name := range []string{"low", "mid", "cat", "cat_hi"} {
		assert.Zero(t, frame.MissingCount(column(t, df, name)), name)
		require.Len(t, tr.Steps(name), 1, name)
	}
	assert.Equal(t, "impute_mean", tr.Steps("low")[0].Name())
	assert.Equal(t, "impute_median", tr.Steps("mid")[0].Name())
	assert.Equal(t, "impute_mode", tr.Steps("cat")[0].Name())
	assert.Equal(t, "impute_unknown", tr.Steps("cat_hi")[0].Name())
	assert.Equal(t, "A", column(t, df, "cat")[1])
	assert.Equal(t, "Unknown", column(t, df, "cat_hi")[0])

	// The fitted fills replay on a new population.
	other := frame.MustNew(frame.Col("low", nil, 3.0), frame.Col("cat", nil, "B"))
	require.NoError(t, tr.Replay(other))
	assert.Equal(t, []frame.Value{"A", "B"}, column(t, other, "cat"))
	fill, ok := column(t, other, "low")[0].(float64)
	require.True(t, ok)
	assert.InDelta(t, 60.0/39.0, fill, 1e-9)
}

func TestFillComplete(t *testing.T) {
	df := frame.MustNew(
		frame.Col("n", 1, 5, 3),
		frame.Col("s", "a", "b", "b"),
		frame.Col("gap", 1, nil, 2),
	)
	tr := NewTracker(df, quiet())
	require.NoError(t, FillComplete(tr))
	assert.Equal(t, []string{"n", "s"}, tr.Columns())
	assert.Equal(t, []frame.Value{1, 5, 3}, column(t, df, "n"))

	other := frame.MustNew(
		frame.Col("n", nil, 2),
		frame.Col("s", nil, "a"),
		frame.Col("gap", nil, 1),
	)
	require.NoError(t, tr.Replay(other))
	assert.Equal(t, []frame.Value{3.0, 2}, column(t, other, "n"))
	assert.Equal(t, []frame.Value{"b", "a"}, column(t, other, "s"))
	assert.Equal(t, []frame.Value{nil, 1}, column(t, other, "gap"))

	assert.ErrorIs(t, FillComplete(NewTracker(nil, quiet())), ErrNoFrame)
}
