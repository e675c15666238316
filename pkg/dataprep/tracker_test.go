package dataprep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segkit/internal/logging"
	"segkit/pkg/frame"
)

func quiet() Option { return WithLogger(logging.Discard()) }

func column(t *testing.T, f *frame.Frame, name string) []frame.Value {
	t.Helper()
	vals, err := f.Column(name)
	require.NoError(t, err)
	return vals
}

func TestTracker_RemapThenReplayOwned(t *testing.T) {
	df := frame.MustNew(frame.Col("age", 1, 2, 3))
	tr := NewTracker(df, quiet())

	out, err := tr.Remap("age", frame.Mapping{1: "young"})
	require.NoError(t, err)
	assert.Equal(t, []frame.Value{"young", 2, 3}, out)
	assert.Equal(t, []frame.Value{1, 2, 3}, column(t, df, "age"), "Remap must not mutate the owned frame")

	require.NoError(t, tr.Replay(nil))
	assert.Equal(t, []frame.Value{"young", 2, 3}, column(t, df, "age"))
}

func TestTracker_ApplyDoesNotMutate(t *testing.T) {
	df := frame.MustNew(frame.Col("n", 1, 2))
	tr := NewTracker(df, quiet())
	out, err := tr.Apply("n", func(v frame.Value) frame.Value { return v.(int) + 1 })
	require.NoError(t, err)
	assert.Equal(t, []frame.Value{2, 3}, out)
	assert.Equal(t, []frame.Value{1, 2}, column(t, df, "n"))
}

func TestTracker_LogIsAppendOnlyInCallOrder(t *testing.T) {
	df := frame.MustNew(frame.Col("x", 1, 2))
	tr := NewTracker(df, quiet())

	double := func(v frame.Value) frame.Value { return v.(int) * 2 }
	_, err := tr.Remap("x", frame.Mapping{1: 10})
	require.NoError(t, err)
	_, err = tr.Apply("x", double)
	require.NoError(t, err)
	require.NoError(t, tr.Fit("x", Remap(frame.Mapping{4: 40})))

	steps := tr.Steps("x")
	require.Len(t, steps, 3)
	assert.Equal(t, KindRemap, steps[0].Kind())
	assert.Equal(t, KindApply, steps[1].Kind())
	assert.Equal(t, KindRemap, steps[2].Kind())

	// Steps replay in order: 1->10->20, 2->2->4->40.
	require.NoError(t, tr.Replay(nil))
	assert.Equal(t, []frame.Value{20, 40}, column(t, df, "x"))

	steps[0] = Step{}
	assert.True(t, tr.Steps("x")[0].Valid(), "Steps must return a copy")
}

func TestTracker_CommitMutatesOwnedFrame(t *testing.T) {
	df := frame.MustNew(frame.Col("kz", "W", "O", nil))
	tr := NewTracker(df, quiet())

	require.NoError(t, tr.Commit("kz", Remap(frame.Mapping{"W": 0, "O": 1})))
	assert.Equal(t, []frame.Value{0, 1, nil}, column(t, df, "kz"))
	assert.Len(t, tr.Steps("kz"), 1)
}

func TestTracker_FitRecordsOnly(t *testing.T) {
	df := frame.MustNew(frame.Col("a", 1))
	tr := NewTracker(df, quiet())
	require.NoError(t, tr.Fit("a", Apply(func(frame.Value) frame.Value { return 0 })))
	assert.Equal(t, []frame.Value{1}, column(t, df, "a"))
	assert.Equal(t, []string{"a"}, tr.Columns())
}

func TestTracker_InvalidStepRecordsNothing(t *testing.T) {
	df := frame.MustNew(frame.Col("a", 1))
	tr := NewTracker(df, quiet())

	for name, step := range map[string]Step{
		"zero":     {},
		"nil map":  Remap(nil),
		"nil func": Apply(nil),
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, tr.Fit("a", step), ErrInvalidStep)
			assert.ErrorIs(t, tr.Commit("a", step), ErrInvalidStep)
		})
	}
	assert.Empty(t, tr.Steps("a"))
	assert.Empty(t, tr.Columns())
}

func TestTracker_UnknownColumnIsLookupError(t *testing.T) {
	tr := NewTracker(frame.MustNew(frame.Col("a", 1)), quiet())
	_, err := tr.Remap("b", frame.Mapping{1: 2})
	assert.ErrorIs(t, err, frame.ErrColumnNotFound)
	assert.Empty(t, tr.Columns())
}

func TestTracker_ReplaySkipsMissingColumns(t *testing.T) {
	df := frame.MustNew(frame.Col("X", 1, 2), frame.Col("Y", 1, 2))
	tr := NewTracker(df, quiet())
	_, err := tr.Remap("X", frame.Mapping{1: 100})
	require.NoError(t, err)
	_, err = tr.Remap("Y", frame.Mapping{2: 200})
	require.NoError(t, err)

	other := frame.MustNew(frame.Col("Y", 2, 3), frame.Col("Z", "z", "z"))
	require.NoError(t, tr.Replay(other))
	assert.Equal(t, []string{"Y", "Z"}, other.Names())
	assert.Equal(t, []frame.Value{200, 3}, column(t, other, "Y"))
	assert.Equal(t, []frame.Value{"z", "z"}, column(t, other, "Z"))

	untouched := frame.MustNew(frame.Col("W", 1))
	require.NoError(t, tr.Replay(untouched))
	assert.Equal(t, []frame.Value{1}, column(t, untouched, "W"))

	// The owned frame is untouched by replays on other frames.
	assert.Equal(t, []frame.Value{1, 2}, column(t, df, "X"))
}

func TestTracker_RemapReplayIdempotent(t *testing.T) {
	df := frame.MustNew(frame.Col("c", 1, 2, 3, 4, nil))
	tr := NewTracker(df, quiet())
	_, err := tr.Remap("c", frame.Mapping{1: "a", 2: "b", -1: nil})
	require.NoError(t, err)

	other := df.Clone()
	require.NoError(t, tr.Replay(other))
	once := other.Clone()
	require.NoError(t, tr.Replay(other))
	assert.Equal(t, column(t, once, "c"), column(t, other, "c"))
}

func TestTracker_NoFrame(t *testing.T) {
	tr := NewTracker(nil, quiet())
	assert.ErrorIs(t, tr.Replay(nil), ErrNoFrame)
	assert.ErrorIs(t, tr.Fit("a", ToFloat()), ErrNoFrame)
}

func TestStep_RemapCopiesMapping(t *testing.T) {
	m := frame.Mapping{1: 2}
	s := Remap(m)
	m[1] = 3
	assert.Equal(t, []frame.Value{2}, s.Run([]frame.Value{1}))
	assert.Equal(t, "remap(1 keys)", s.String())
	assert.Equal(t, "to_float", ToFloat().String())
	assert.Equal(t, "invalid", Step{}.Kind().String())
}
