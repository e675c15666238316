// Package config loads segkit settings. Values come from Default, then an
// optional YAML file, then SEGKIT_* environment variables, each layer
// overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. SEGKIT_CLUSTER_K.
const EnvPrefix = "SEGKIT"

type Config struct {
	Log      LogConfig      `yaml:"log" envconfig:"LOG"`
	Input    InputConfig    `yaml:"input" envconfig:"INPUT"`
	Clean    CleanConfig    `yaml:"clean" envconfig:"CLEAN"`
	Cluster  ClusterConfig  `yaml:"cluster" envconfig:"CLUSTER"`
	Classify ClassifyConfig `yaml:"classify" envconfig:"CLASSIFY"`
}

type LogConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL"`
	JSON  bool   `yaml:"json" envconfig:"JSON"`
}

type InputConfig struct {
	General    string `yaml:"general" envconfig:"GENERAL"`
	Customers  string `yaml:"customers" envconfig:"CUSTOMERS"`
	Attributes string `yaml:"attributes" envconfig:"ATTRIBUTES"`
	Recipe     string `yaml:"recipe" envconfig:"RECIPE"`
	Delimiter  string `yaml:"delimiter" envconfig:"DELIMITER"`
	// IDColumn is excluded from modelling.
	IDColumn string `yaml:"id_column" envconfig:"ID_COLUMN"`
}

type CleanConfig struct {
	// ColumnThreshold drops columns whose missing fraction is above it.
	ColumnThreshold float64 `yaml:"column_threshold" envconfig:"COLUMN_THRESHOLD"`
	// MaxMissingPerRow drops rows with more missing cells than this; < 0 keeps all rows.
	MaxMissingPerRow int     `yaml:"max_missing_per_row" envconfig:"MAX_MISSING_PER_ROW"`
	DropDuplicates   bool    `yaml:"drop_duplicates" envconfig:"DROP_DUPLICATES"`
	ClipLower        float64 `yaml:"clip_lower" envconfig:"CLIP_LOWER"`
	ClipUpper        float64 `yaml:"clip_upper" envconfig:"CLIP_UPPER"`
	Scaler           string  `yaml:"scaler" envconfig:"SCALER"` // standard, minmax or robust
}

type ClusterConfig struct {
	// Variance is the cumulative explained variance the kept components reach.
	Variance    float64 `yaml:"variance" envconfig:"VARIANCE"`
	MaxPCA      int     `yaml:"max_components" envconfig:"MAX_COMPONENTS"`
	PCAIters    int     `yaml:"pca_iters" envconfig:"PCA_ITERS"`
	KMin        int     `yaml:"k_min" envconfig:"K_MIN"`
	KMax        int     `yaml:"k_max" envconfig:"K_MAX"`
	K           int     `yaml:"k" envconfig:"K"`
	MaxIter     int     `yaml:"max_iter" envconfig:"MAX_ITER"`
	Seed        int64   `yaml:"seed" envconfig:"SEED"`
	Concurrency int     `yaml:"concurrency" envconfig:"CONCURRENCY"`
}

type ClassifyConfig struct {
	Train  string `yaml:"train" envconfig:"TRAIN"`
	Label  string `yaml:"label" envconfig:"LABEL"`
	Model  string `yaml:"model" envconfig:"MODEL"` // logistic or knn
	Folds  int    `yaml:"folds" envconfig:"FOLDS"`
	Epochs int    `yaml:"epochs" envconfig:"EPOCHS"`
	// Holdout is the fraction of rows kept out of the grid search to score
	// the refitted best candidate. Zero disables it.
	Holdout float64 `yaml:"holdout" envconfig:"HOLDOUT"`
	// Grid maps parameter names to candidate values. It replaces the
	// default grid as a whole and is only read from the file.
	Grid map[string][]float64 `yaml:"grid" ignored:"true"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log:   LogConfig{Level: "info"},
		Input: InputConfig{Delimiter: ";", IDColumn: "LNR"},
		Clean: CleanConfig{
			ColumnThreshold:  0.3,
			MaxMissingPerRow: 10,
			DropDuplicates:   true,
			ClipLower:        0,
			ClipUpper:        100,
			Scaler:           "standard",
		},
		Cluster: ClusterConfig{
			Variance: 0.9,
			MaxPCA:   100,
			PCAIters: 100,
			KMin:     2,
			KMax:     15,
			K:        8,
			MaxIter:  300,
			Seed:     42,
		},
		Classify: ClassifyConfig{
			Label:  "RESPONSE",
			Model:  "logistic",
			Folds:  5,
			Epochs: 100,
			Grid:   defaultGrid(),
		},
	}
}

func defaultGrid() map[string][]float64 {
	return map[string][]float64{"lr": {0.001, 0.01, 0.1}}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	// yaml.v3 merges into existing maps
	cfg.Classify.Grid = nil
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if cfg.Classify.Grid == nil {
		cfg.Classify.Grid = defaultGrid()
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Delimiter returns the input field separator as a rune.
func (c *Config) Delimiter() rune {
	r := []rune(c.Input.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	cl, k, cf := c.Clean, c.Cluster, c.Classify

	check(len([]rune(c.Input.Delimiter)) <= 1, "input.delimiter must be a single character, got %q", c.Input.Delimiter)
	check(cl.ColumnThreshold >= 0 && cl.ColumnThreshold <= 1, "clean.column_threshold must be in [0,1], got %g", cl.ColumnThreshold)
	check(cl.ClipLower >= 0 && cl.ClipLower < cl.ClipUpper && cl.ClipUpper <= 100,
		"clean.clip_lower/clip_upper must satisfy 0 <= lower < upper <= 100, got %g/%g", cl.ClipLower, cl.ClipUpper)
	check(cl.Scaler == "standard" || cl.Scaler == "minmax" || cl.Scaler == "robust", "clean.scaler must be standard, minmax or robust, got %q", cl.Scaler)
	check(k.Variance > 0 && k.Variance <= 1, "cluster.variance must be in (0,1], got %g", k.Variance)
	check(k.MaxPCA >= 1, "cluster.max_components must be positive, got %d", k.MaxPCA)
	check(k.PCAIters >= 1, "cluster.pca_iters must be positive, got %d", k.PCAIters)
	check(k.KMin >= 1 && k.KMin <= k.KMax, "cluster.k_min/k_max must satisfy 1 <= min <= max, got %d/%d", k.KMin, k.KMax)
	check(k.K >= 1, "cluster.k must be positive, got %d", k.K)
	check(k.MaxIter >= 1, "cluster.max_iter must be positive, got %d", k.MaxIter)
	check(cf.Folds >= 2, "classify.folds must be at least 2, got %d", cf.Folds)
	check(cf.Epochs >= 1, "classify.epochs must be positive, got %d", cf.Epochs)
	check(cf.Holdout >= 0 && cf.Holdout < 1, "classify.holdout must be in [0,1), got %g", cf.Holdout)
	check(cf.Model == "logistic" || cf.Model == "knn", "classify.model must be logistic or knn, got %q", cf.Model)
	check(len(cf.Grid) > 0, "classify.grid must not be empty")

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// KRange returns the cluster counts swept by the elbow run.
func (c *Config) KRange() []int {
	ks := make([]int, 0, c.Cluster.KMax-c.Cluster.KMin+1)
	for k := c.Cluster.KMin; k <= c.Cluster.KMax; k++ {
		ks = append(ks, k)
	}
	return ks
}
