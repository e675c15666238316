package dataprep

import (
	"fmt"

	"segkit/pkg/frame"
)

// LabelEncoding fits a remap from each present category to an integer code
// in first-seen order. Missing cells stay missing; categories unseen at fit
// time pass through unchanged.
func LabelEncoding(values []frame.Value) Step {
	return Remap(labelCodes(values)).Named("label_encode")
}

// LabelEncodingStrict is LabelEncoding except that every present value
// absent from the fitted categories becomes missing.
func LabelEncodingStrict(values []frame.Value) Step {
	m := labelCodes(values)
	return Apply(func(v frame.Value) frame.Value {
		if frame.IsMissing(v) || !scalar(v) {
			return nil
		}
		if code, ok := m[v]; ok {
			return code
		}
		return nil
	}).Named("label_encode_strict")
}

func labelCodes(values []frame.Value) frame.Mapping {
	m := frame.Mapping{}
	for _, v := range values {
		if frame.IsMissing(v) || !scalar(v) {
			continue
		}
		if _, ok := m[v]; !ok {
			m[v] = len(m)
		}
	}
	return m
}

// FrequencyEncoding fits a remap from each present category to its share
// of the non-missing cells.
func FrequencyEncoding(values []frame.Value) Step {
	counts := frame.ValueCounts(values)
	total := 0
	for _, c := range counts {
		if c.Value != nil {
			total += c.N
		}
	}
	m := frame.Mapping{}
	for _, c := range counts {
		if c.Value == nil || total == 0 {
			continue
		}
		m[c.Value] = float64(c.N) / float64(total)
	}
	return Remap(m).Named("frequency_encode")
}

// OneHot registers one indicator feature per category of source on e,
// named "<source>_<category>". Categories are taken from the first target
// in first-seen order; missing cells produce 0 in every indicator.
func OneHot(e *FeatureEngineer, source string) ([]string, error) {
	if len(e.targets) == 0 || e.targets[0] == nil {
		return nil, ErrNoFrame
	}
	cats, err := e.targets[0].Unique(source)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, cat := range cats {
		if cat == nil {
			continue
		}
		name := fmt.Sprintf("%s_%v", source, cat)
		if err := e.Register(name, source, indicator(cat).Named("onehot")); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

func indicator(cat frame.Value) Step {
	return Apply(func(v frame.Value) frame.Value {
		if scalar(v) && v == cat {
			return 1
		}
		return 0
	})
}

func scalar(v frame.Value) bool {
	switch v.(type) {
	case nil, string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}
