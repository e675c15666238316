// Command segment fits the cleaning, PCA and KMeans pipeline on a general
// population, replays it on a customer population and reports how the
// customers spread over the population's clusters. The classify command
// grid-searches a response classifier on a labelled mail-out sample.
//
// Usage:
//
//	segment [flags] cluster
//	segment [flags] classify
//
// Settings come from -config, SEGKIT_* environment variables and flags,
// in increasing precedence.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"

	"segkit/internal/config"
	"segkit/internal/logging"
	"segkit/pkg/attributes"
	"segkit/pkg/data"
	"segkit/pkg/dataprep"
	"segkit/pkg/frame"
	"segkit/pkg/loader"
	"segkit/pkg/model"
	"segkit/pkg/pipeline"
	"segkit/pkg/stats"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		logging.L().Error("segment failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("segment", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	general := fs.String("general", "", "general population CSV")
	customers := fs.String("customers", "", "customer CSV")
	attrs := fs.String("attributes", "", "attribute metadata CSV")
	recipe := fs.String("recipe", "", "cleaning recipe YAML")
	train := fs.String("train", "", "labelled training CSV for classify")
	k := fs.Int("k", 0, "number of clusters (overrides cluster.k)")
	out := fs.String("out", "", "write customer cluster assignments to this CSV")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	override(&cfg.Input.General, *general)
	override(&cfg.Input.Customers, *customers)
	override(&cfg.Input.Attributes, *attrs)
	override(&cfg.Input.Recipe, *recipe)
	override(&cfg.Classify.Train, *train)
	if *k > 0 {
		cfg.Cluster.K = *k
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logging.Configure(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})

	switch cmd := fs.Arg(0); cmd {
	case "", "cluster":
		return runCluster(ctx, cfg, log, stdout, *out)
	case "classify":
		return runClassify(ctx, cfg, log, stdout)
	default:
		return fmt.Errorf("unknown command %q (want cluster or classify)", cmd)
	}
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func readCSV(cfg *config.Config, path, what string) (*frame.Frame, error) {
	if path == "" {
		return nil, fmt.Errorf("no %s CSV configured", what)
	}
	return data.ReadCSVFile(path, data.WithDelimiter(cfg.Delimiter()))
}

func loadMeta(cfg *config.Config) (*attributes.Catalog, *dataprep.Recipe, error) {
	var (
		cat *attributes.Catalog
		rec *dataprep.Recipe
		err error
	)
	if cfg.Input.Attributes != "" {
		if cat, err = attributes.LoadCatalog(cfg.Input.Attributes, data.WithDelimiter(cfg.Delimiter())); err != nil {
			return nil, nil, err
		}
	}
	if cfg.Input.Recipe != "" {
		if rec, err = dataprep.LoadRecipe(cfg.Input.Recipe); err != nil {
			return nil, nil, err
		}
	}
	return cat, rec, nil
}

func runCluster(ctx context.Context, cfg *config.Config, log *slog.Logger, w io.Writer, outPath string) error {
	general, err := readCSV(cfg, cfg.Input.General, "general population")
	if err != nil {
		return err
	}
	customers, err := readCSV(cfg, cfg.Input.Customers, "customer")
	if err != nil {
		return err
	}
	log.Info("loaded", "general_rows", general.Len(), "customer_rows", customers.Len(), "columns", general.Width())
	cat, rec, err := loadMeta(cfg)
	if err != nil {
		return err
	}

	ids := rowIDs(customers, cfg.Input.IDColumn)
	prep, err := fitPreparer(general, prepOptions{
		catalog:         cat,
		recipe:          rec,
		exclude:         []string{cfg.Input.IDColumn},
		columnThreshold: cfg.Clean.ColumnThreshold,
		maxMissingRow:   cfg.Clean.MaxMissingPerRow,
		dropDuplicates:  cfg.Clean.DropDuplicates,
	}, log)
	if err != nil {
		return fmt.Errorf("prepare general population: %w", err)
	}
	if err := prep.apply(customers); err != nil {
		return fmt.Errorf("prepare customers: %w", err)
	}
	names := prep.columns()
	if len(names) == 0 {
		return errors.New("no feature columns left after cleaning")
	}

	pca := model.NewPCA(min(cfg.Cluster.MaxPCA, len(names)), cfg.Cluster.PCAIters, cfg.Cluster.Seed)
	pipe := pipeline.NewPipeline(
		pipeline.Step{Name: "clip", Transformer: stats.NewClipper(cfg.Clean.ClipLower, cfg.Clean.ClipUpper)},
		pipeline.Step{Name: "scale", Transformer: newScaler(cfg.Clean.Scaler)},
		pipeline.Step{Name: "pca", Transformer: pca},
	)
	xg, err := pipe.FitFrame(general, names...)
	if err != nil {
		return err
	}
	xc, err := pipe.TransformFrame(customers)
	if err != nil {
		return err
	}
	kept := pca.ComponentsFor(cfg.Cluster.Variance)
	xg, xc = firstColumns(xg, kept), firstColumns(xc, kept)
	writeVariance(w, pca.ExplainedVarianceRatio(), pca.CumulativeVarianceRatio(), kept)
	if weights, err := model.FeatureWeights(pca, names, 0); err == nil {
		writeWeights(w, 0, weights, 3)
	}

	points, err := model.Elbow(ctx, xg, kRange(cfg, len(xg)), model.ElbowOptions{
		MaxIter:     cfg.Cluster.MaxIter,
		Seed:        cfg.Cluster.Seed,
		Concurrency: cfg.Cluster.Concurrency,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("elbow: %w", err)
	}
	writeElbow(w, points)

	km := model.NewKMeans(cfg.Cluster.K, cfg.Cluster.MaxIter, cfg.Cluster.Seed)
	if err := km.Fit(xg); err != nil {
		return fmt.Errorf("kmeans: %w", err)
	}
	lg, err := km.Predict(xg)
	if err != nil {
		return err
	}
	lc, err := km.Predict(xc)
	if err != nil {
		return err
	}
	log.Info("clustered", "k", km.K, "inertia", km.Inertia, "iterations", km.Iterations)
	writeShares(w, model.ClusterProportions(lg, lc))

	if outPath == "" {
		return nil
	}
	clusters := make([]frame.Value, len(lc))
	for i, c := range lc {
		clusters[i] = c
	}
	assign, err := frame.New(frame.Col("id", ids...), frame.Col("cluster", clusters...))
	if err != nil {
		return err
	}
	fh, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := data.WriteCSV(fh, assign); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

func runClassify(ctx context.Context, cfg *config.Config, log *slog.Logger, w io.Writer) error {
	train, err := readCSV(cfg, cfg.Classify.Train, "training")
	if err != nil {
		return err
	}
	labels, err := train.Column(cfg.Classify.Label)
	if err != nil {
		return err
	}
	y := make([]float64, len(labels))
	for i, v := range labels {
		x, ok := frame.AsFloat(v)
		if !ok {
			return fmt.Errorf("label %s row %d: %w: %v", cfg.Classify.Label, i, frame.ErrNotNumeric, v)
		}
		y[i] = x
	}
	cat, rec, err := loadMeta(cfg)
	if err != nil {
		return err
	}

	// rows must stay aligned with y
	prep, err := fitPreparer(train, prepOptions{
		catalog:         cat,
		recipe:          rec,
		exclude:         []string{cfg.Input.IDColumn, cfg.Classify.Label},
		columnThreshold: cfg.Clean.ColumnThreshold,
		maxMissingRow:   -1,
	}, log)
	if err != nil {
		return fmt.Errorf("prepare training data: %w", err)
	}
	X, err := train.Floats(prep.columns()...)
	if err != nil {
		return err
	}
	xTrain, yTrain := X, y
	var xTest [][]float64
	var yTest []float64
	if cfg.Classify.Holdout > 0 {
		rng := rand.New(rand.NewSource(cfg.Cluster.Seed))
		xTrain, xTest, yTrain, yTest = loader.TrainTestSplit(X, y, cfg.Classify.Holdout, rng)
	}
	scaler := newScaler(cfg.Clean.Scaler)
	if err := scaler.Fit(xTrain); err != nil {
		return err
	}
	if xTrain, err = scaler.Transform(xTrain); err != nil {
		return err
	}

	var factory model.Factory
	switch cfg.Classify.Model {
	case "knn":
		factory = model.KNNFactory
	default:
		factory = model.LogisticFactory(model.LogisticRegression{
			Lr:        0.01,
			Epochs:    cfg.Classify.Epochs,
			BatchSize: 256,
			Seed:      cfg.Cluster.Seed,
		})
	}
	res, err := model.GridSearchCV(ctx, factory, xTrain, yTrain, model.ParamGrid(cfg.Classify.Grid), model.CVOptions{
		Folds:       cfg.Classify.Folds,
		Seed:        cfg.Cluster.Seed,
		Concurrency: cfg.Cluster.Concurrency,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("grid search: %w", err)
	}
	writeSearch(w, res)
	if len(xTest) == 0 {
		return nil
	}

	best, err := factory(res.Best)
	if err != nil {
		return err
	}
	if err := best.Fit(xTrain, yTrain); err != nil {
		return fmt.Errorf("refit best: %w", err)
	}
	if xTest, err = scaler.Transform(xTest); err != nil {
		return err
	}
	proba, err := best.PredictProba(xTest)
	if err != nil {
		return err
	}
	auc, err := model.ROCAUC(yTest, proba)
	if err != nil {
		return fmt.Errorf("holdout: %w", err)
	}
	log.Info("holdout scored", "rows", len(xTest), "roc_auc", auc)
	fmt.Fprintf(w, "holdout ROC AUC: %s (%d rows)\n", num(auc), len(xTest))
	return nil
}

func newScaler(name string) model.Transformer {
	switch name {
	case "minmax":
		return stats.NewMinMaxScaler()
	case "robust":
		return stats.NewRobustScaler()
	default:
		return stats.NewStandardScaler()
	}
}

// rowIDs copies the id column, or numbers the rows when it is absent.
func rowIDs(f *frame.Frame, column string) []frame.Value {
	if vals, err := f.Column(column); err == nil {
		return append([]frame.Value(nil), vals...)
	}
	ids := make([]frame.Value, f.Len())
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func firstColumns(X [][]float64, n int) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = row[:min(n, len(row))]
	}
	return out
}

// kRange is the configured elbow range capped at the number of rows.
func kRange(cfg *config.Config, rows int) []int {
	var ks []int
	for _, k := range cfg.KRange() {
		if k <= rows {
			ks = append(ks, k)
		}
	}
	return ks
}
