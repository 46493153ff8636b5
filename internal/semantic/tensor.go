package semantic

import (
	"fmt"
	"math"

	"github.com/xxxsen/promptdeck/internal/inference"
)

// pool collapses a raw runtime result into a single feature vector. Flat
// buffers are split by their trailing dimension and mean-pooled across token
// rows; nested arrays are walked up to three levels with non-numeric leaves
// coerced to 0. A result that is already one-dimensional passes through.
func pool(res *inference.Result) ([]float32, error) {
	if res == nil {
		return nil, fmt.Errorf("nil inference result")
	}
	var rows [][]float32
	if len(res.Data) > 0 {
		var err error
		rows, err = flatRows(res.Data, res.Dims)
		if err != nil {
			return nil, err
		}
	} else {
		rows = nestedRows(res.Nested)
	}
	vec := meanPool(rows)
	if len(vec) == 0 {
		return nil, fmt.Errorf("inference result carries no values")
	}
	return vec, nil
}

func flatRows(data []float32, dims []int64) ([][]float32, error) {
	hidden := len(data)
	if len(dims) > 0 {
		last := int(dims[len(dims)-1])
		if last <= 0 || len(data)%last != 0 {
			return nil, fmt.Errorf("flat buffer of %d values does not match dims %v", len(data), dims)
		}
		hidden = last
	}
	tokens := len(data) / hidden
	rows := make([][]float32, 0, tokens)
	for i := 0; i < tokens; i++ {
		rows = append(rows, data[i*hidden:(i+1)*hidden])
	}
	return rows, nil
}

// nestedRows reduces nested arrays to a tokens x hidden matrix. A batch axis
// (third level) is unwrapped by taking its first element.
func nestedRows(v interface{}) [][]float32 {
	switch t := v.(type) {
	case nil:
		return nil
	case []float32:
		if len(t) == 0 {
			return nil
		}
		return [][]float32{t}
	case [][]float32:
		return t
	case []interface{}:
		if len(t) == 0 {
			return nil
		}
		if first, ok := t[0].([]interface{}); ok {
			if len(first) > 0 {
				if _, deeper := first[0].([]interface{}); deeper {
					return nestedRows(t[0])
				}
			}
			rows := make([][]float32, 0, len(t))
			for _, raw := range t {
				inner, ok := raw.([]interface{})
				if !ok {
					continue
				}
				rows = append(rows, coerceVector(inner))
			}
			return rows
		}
		return [][]float32{coerceVector(t)}
	}
	return nil
}

func coerceVector(values []interface{}) []float32 {
	out := make([]float32, len(values))
	for i, raw := range values {
		switch n := raw.(type) {
		case float64:
			out[i] = float32(n)
		case float32:
			out[i] = n
		case int:
			out[i] = float32(n)
		case int64:
			out[i] = float32(n)
		default:
			out[i] = 0
		}
	}
	return out
}

// meanPool averages per-token rows into one vector. A single row is copied
// through unchanged. Short rows contribute zeros for their missing features.
func meanPool(rows [][]float32) []float32 {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	width := len(rows[0])
	if len(rows) == 1 {
		out := make([]float32, width)
		copy(out, rows[0])
		return out
	}
	sum := make([]float64, width)
	for _, row := range rows {
		for j := 0; j < width && j < len(row); j++ {
			sum[j] += float64(row[j])
		}
	}
	out := make([]float32, width)
	for j := range sum {
		out[j] = float32(sum[j] / float64(len(rows)))
	}
	return out
}

// normalize scales v to unit L2 norm. A vector of exactly zero magnitude is
// returned untouched rather than divided by zero.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
