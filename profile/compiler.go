package profile

import (
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// VehicleProfile is one compiled model: ordered category labels and one
// normalized CDF row per passenger count from 0 upward. Row i of CDF is
// non-decreasing and ends exactly at 1.0; counts above len(CDF)-1 are
// clamped down at sampling time.
type VehicleProfile struct {
	Categories []string
	CDF        [][]float64
}

// ParseError reports a model whose CSV table could not be compiled. The
// model is skipped; other models in the same collection are unaffected.
type ParseError struct {
	Model string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("profile table for model %q: %v", e.Model, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Compile parses one model's CSV probability table.
//
// The header's first column is ignored (nominally "passenger_count") and the
// remaining columns are category labels. Each data row holds the probability
// mass per category for passenger count 0, 1, 2, ... in row order. Each row
// is cumulatively summed with compensated summation and normalized by its
// final value so it ends exactly at 1.0.
func Compile(model, csvText string) (*VehicleProfile, error) {
	r := csv.NewReader(strings.NewReader(csvText))
	records, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Model: model, Err: err}
	}
	if len(records) < 2 {
		return nil, &ParseError{Model: model, Err: fmt.Errorf("need a header and at least one data row, got %d rows", len(records))}
	}
	header := records[0]
	if len(header) < 2 {
		return nil, &ParseError{Model: model, Err: fmt.Errorf("need at least one category column, got %d columns", len(header))}
	}
	categories := make([]string, len(header)-1)
	copy(categories, header[1:])

	cdf := make([][]float64, 0, len(records)-1)
	for rowIdx, record := range records[1:] {
		masses := make([]float64, len(record)-1)
		for i, cell := range record[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, &ParseError{Model: model, Err: fmt.Errorf("row %d column %d: %w", rowIdx+1, i+1, err)}
			}
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, &ParseError{Model: model, Err: fmt.Errorf("row %d column %d: probability mass %v out of range", rowIdx+1, i+1, v)}
			}
			masses[i] = v
		}
		row := cumulativeSumKBN2(masses)
		last := row[len(row)-1]
		if last <= 0 {
			return nil, &ParseError{Model: model, Err: fmt.Errorf("row %d has zero total probability mass", rowIdx+1)}
		}
		for i := range row {
			row[i] /= last
		}
		cdf = append(cdf, row)
	}
	return &VehicleProfile{Categories: categories, CDF: cdf}, nil
}

// cumulativeSumKBN2 returns the running sums of xs using second-order
// iterative Kahan-Babuska compensation, so the final edge does not drift
// across many categories.
func cumulativeSumKBN2(xs []float64) []float64 {
	out := make([]float64, len(xs))
	var sum, cs, ccs float64
	for i, x := range xs {
		t := sum + x
		var c float64
		if math.Abs(sum) >= math.Abs(x) {
			c = (sum - t) + x
		} else {
			c = (x - t) + sum
		}
		sum = t
		t = cs + c
		var cc float64
		if math.Abs(cs) >= math.Abs(c) {
			cc = (cs - t) + c
		} else {
			cc = (c - t) + cs
		}
		cs = t
		ccs += cc
		out[i] = sum + cs + ccs
	}
	return out
}
