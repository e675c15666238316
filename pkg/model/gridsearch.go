package model

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"segkit/internal/logging"
	"segkit/pkg/loader"
)

// Params is one hyperparameter assignment.
type Params map[string]float64

// ParamGrid lists candidate values per hyperparameter.
type ParamGrid map[string][]float64

// Expand returns the cartesian product of g. Names are iterated in sorted
// order with the last name varying fastest, so the order is stable.
func (g ParamGrid) Expand() []Params {
	names := make([]string, 0, len(g))
	for n := range g {
		names = append(names, n)
	}
	sort.Strings(names)

	out := []Params{{}}
	for _, n := range names {
		var next []Params
		for _, p := range out {
			for _, v := range g[n] {
				q := make(Params, len(p)+1)
				for k, x := range p {
					q[k] = x
				}
				q[n] = v
				next = append(next, q)
			}
		}
		out = next
	}
	return out
}

// Factory builds an untrained classifier for one parameter assignment.
type Factory func(Params) (Classifier, error)

// CVOptions configure GridSearchCV.
type CVOptions struct {
	Folds       int // defaults to 5
	Seed        int64
	Concurrency int // <= 0 means one goroutine per candidate
	Logger      *slog.Logger
}

// CandidateScore is the cross-validated ROC AUC of one candidate.
type CandidateScore struct {
	Params     Params
	MeanScore  float64
	FoldScores []float64
}

// SearchResult holds every candidate in grid order and the best one.
type SearchResult struct {
	Best       Params
	BestScore  float64
	Candidates []CandidateScore
}

// GridSearchCV scores every candidate of grid by mean ROC AUC over
// stratified k folds and returns the best. All candidates share the same
// folds. Ties go to the candidate that comes first in grid order.
func GridSearchCV(ctx context.Context, factory Factory, X [][]float64, y []float64, grid ParamGrid, cv CVOptions) (*SearchResult, error) {
	if _, err := checkLabels(X, y); err != nil {
		return nil, err
	}
	if cv.Folds == 0 {
		cv.Folds = 5
	}
	log := cv.Logger
	if log == nil {
		log = logging.L()
	}
	folds, err := loader.StratifiedKFoldSplit(y, cv.Folds, rand.New(rand.NewSource(cv.Seed)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParam, err)
	}

	candidates := grid.Expand()
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: empty parameter grid", ErrParam)
	}
	scores := make([]CandidateScore, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	if cv.Concurrency > 0 {
		g.SetLimit(cv.Concurrency)
	}
	for i, params := range candidates {
		g.Go(func() error {
			fs, err := crossValidate(ctx, factory, params, X, y, folds)
			if err != nil {
				return fmt.Errorf("candidate %v: %w", params, err)
			}
			mean := 0.0
			for _, s := range fs {
				mean += s
			}
			mean /= float64(len(fs))
			log.Debug("grid candidate", "params", params, "roc_auc", mean)
			scores[i] = CandidateScore{Params: params, MeanScore: mean, FoldScores: fs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &SearchResult{Candidates: scores, BestScore: -1}
	for _, c := range scores {
		if c.MeanScore > res.BestScore {
			res.Best, res.BestScore = c.Params, c.MeanScore
		}
	}
	log.Info("grid search done", "candidates", len(scores), "best", res.Best, "roc_auc", res.BestScore)
	return res, nil
}

func crossValidate(ctx context.Context, factory Factory, params Params, X [][]float64, y []float64, folds [][]int) ([]float64, error) {
	out := make([]float64, len(folds))
	for i := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		clf, err := factory(params)
		if err != nil {
			return nil, err
		}
		train, test := loader.TrainTest(folds, i)
		xtr, ytr := loader.Rows(X, y, train)
		xte, yte := loader.Rows(X, y, test)
		if err := clf.Fit(xtr, ytr); err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
		proba, err := clf.PredictProba(xte)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
		if out[i], err = ROCAUC(yte, proba); err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
	}
	return out, nil
}

// LogisticFactory builds LogisticRegression candidates from the params
// "lr", "epochs", "batch_size" and "l2". Absent params take the value from
// base.
func LogisticFactory(base LogisticRegression) Factory {
	return func(p Params) (Classifier, error) {
		m := base
		m.W, m.B = nil, 0
		for k, v := range p {
			switch k {
			case "lr":
				m.Lr = v
			case "epochs":
				m.Epochs = int(v)
			case "batch_size":
				m.BatchSize = int(v)
			case "l2":
				m.L2 = v
			default:
				return nil, fmt.Errorf("%w: logistic regression has no param %q", ErrParam, k)
			}
		}
		return &m, nil
	}
}

// KNNFactory builds KNN candidates from the param "k".
func KNNFactory(p Params) (Classifier, error) {
	k, ok := p["k"]
	if !ok || len(p) != 1 {
		return nil, fmt.Errorf("%w: knn takes exactly the param \"k\", got %v", ErrParam, p)
	}
	return NewKNN(int(k)), nil
}
