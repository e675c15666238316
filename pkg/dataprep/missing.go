package dataprep

import (
	"fmt"
	"strconv"
	"strings"

	"segkit/pkg/frame"
)

// ParseMissingCodes turns a missing-value code description into integers.
// An integer yields itself; a string such as "-1, 9" is split on commas.
func ParseMissingCodes(v frame.Value) ([]int, error) {
	switch x := v.(type) {
	case int:
		return []int{x}, nil
	case int64:
		return []int{int(x)}, nil
	case float64:
		if x != float64(int(x)) {
			return nil, fmt.Errorf("dataprep: missing code %v is not an integer", x)
		}
		return []int{int(x)}, nil
	case string:
		parts := strings.Split(x, ",")
		out := make([]int, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("dataprep: missing code %q: %w", x, err)
			}
			out = append(out, n)
		}
		return out, nil
	case []int:
		return append([]int(nil), x...), nil
	case []any:
		var out []int
		for _, e := range x {
			codes, err := ParseMissingCodes(e)
			if err != nil {
				return nil, err
			}
			out = append(out, codes...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("dataprep: unsupported missing code %T", v)
}

// MissingCodesStep returns a remap turning each code into a missing cell.
// Codes match both integer and float cells.
func MissingCodesStep(codes []int) Step {
	m := make(frame.Mapping, 2*len(codes))
	for _, c := range codes {
		m[c] = nil
		m[float64(c)] = nil
		m[int64(c)] = nil
	}
	return Remap(m).Named(fmt.Sprintf("missing_codes%v", codes))
}
