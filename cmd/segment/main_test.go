package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segkit/internal/logging"
	"segkit/pkg/frame"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// population writes n rows of LNR,A,B,C,D starting at id offset. Every
// fifth D is missing and C cycles through cats.
func population(offset, n int, cats ...string) string {
	var b strings.Builder
	b.WriteString("LNR,A,B,C,D\n")
	for i := range n {
		d := fmt.Sprint((i * 7) % 11)
		if i%5 == 0 {
			d = ""
		}
		fmt.Fprintf(&b, "%d,%d,%.1f,%s,%s\n", offset+i, i%4+1, float64(i)*0.5, cats[i%len(cats)], d)
	}
	return b.String()
}

const clusterConfig = `
input:
  delimiter: ","
cluster:
  max_components: 3
  k_min: 2
  k_max: 4
  k: 3
  max_iter: 50
`

func TestRun_Cluster(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", clusterConfig)
	general := writeFile(t, dir, "general.csv", population(1000, 40, "x", "y", "z"))
	customers := writeFile(t, dir, "customers.csv", population(5000, 12, "x", "w"))
	out := filepath.Join(dir, "assign.csv")

	var buf bytes.Buffer
	err := run(context.Background(), []string{
		"-config", cfg, "-general", general, "-customers", customers, "-out", out, "cluster",
	}, &buf)
	require.NoError(t, err)

	report := buf.String()
	assert.Contains(t, report, "Principal components")
	assert.Contains(t, report, "Elbow sweep")
	assert.Contains(t, report, "Cluster proportions")

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 13)
	assert.Equal(t, "id,cluster", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "5000,"))
}

func TestRun_Classify(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("LNR,A,B,RESPONSE\n")
	for i := range 40 {
		label := 0
		if i%2 == 0 {
			label = 1
		}
		fmt.Fprintf(&b, "%d,%d,%d,%d\n", i, label*10+i%3, i%7, label)
	}
	train := writeFile(t, dir, "train.csv", b.String())
	cfg := writeFile(t, dir, "config.yaml", `
input:
  delimiter: ","
classify:
  model: knn
  folds: 2
  holdout: 0.25
  grid:
    k: [1, 3]
`)

	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-config", cfg, "-train", train, "classify"}, &buf))
	assert.Contains(t, buf.String(), "Grid search")
	assert.Contains(t, buf.String(), "best:")
	assert.Contains(t, buf.String(), "holdout ROC AUC")
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", clusterConfig)

	var buf bytes.Buffer
	err := run(context.Background(), []string{"-config", cfg, "bogus"}, &buf)
	assert.ErrorContains(t, err, "unknown command")

	err = run(context.Background(), []string{"-config", cfg, "cluster"}, &buf)
	assert.ErrorContains(t, err, "no general population CSV")

	err = run(context.Background(), []string{"-config", filepath.Join(dir, "missing.yaml")}, &buf)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPreparer_ReplaysOnUnseenCategories(t *testing.T) {
	general := frame.MustNew(
		frame.Col("LNR", 1, 2, 3, 4),
		frame.Col("A", 1, nil, 3, 3),
		frame.Col("C", "x", "y", "x", "y"),
		frame.Col("D", "1", "2", "X", "1"),
	)
	customers := frame.MustNew(
		frame.Col("LNR", 9, 10),
		frame.Col("A", nil, 2),
		frame.Col("C", "w", "y"),
		frame.Col("D", "10", "X"),
	)

	p, err := fitPreparer(general, prepOptions{
		exclude:         []string{"LNR"},
		columnThreshold: 0.5,
		maxMissingRow:   -1,
	}, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "D"}, p.columns())

	require.NoError(t, p.apply(customers))
	assert.False(t, customers.Has("LNR"))
	X, err := customers.Floats(p.columns()...)
	require.NoError(t, err)
	require.Len(t, X, 2)
	for _, row := range X {
		for _, v := range row {
			assert.False(t, v != v, "NaN left after prepare")
		}
	}

	// an unseen numeric-looking code is imputed, not read as a number
	d, err := customers.Column("D")
	require.NoError(t, err)
	assert.Equal(t, 2, d[1])
	x, ok := frame.AsFloat(d[0])
	require.True(t, ok)
	assert.True(t, x >= 0 && x <= 2, "got %v", x)
}
