package profile

import (
	"errors"
	"math"
	"testing"
)

func TestCompile_SimpleTable(t *testing.T) {
	csvText := "passenger_count,EMPTY,MANY_SEATS_AVAILABLE,FULL\n" +
		"0,0.8,0.2,0\n" +
		"1,0.2,0.6,0.2\n" +
		"2,0,0.2,0.8\n"
	p, err := Compile("40-35", csvText)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	wantCategories := []string{"EMPTY", "MANY_SEATS_AVAILABLE", "FULL"}
	if len(p.Categories) != len(wantCategories) {
		t.Fatalf("expected %d categories, got %d", len(wantCategories), len(p.Categories))
	}
	for i, c := range wantCategories {
		if p.Categories[i] != c {
			t.Errorf("category %d: expected %s, got %s", i, c, p.Categories[i])
		}
	}
	if len(p.CDF) != 3 {
		t.Fatalf("expected 3 CDF rows, got %d", len(p.CDF))
	}
	wantRow0 := []float64{0.8, 1.0, 1.0}
	for i, want := range wantRow0 {
		if math.Abs(p.CDF[0][i]-want) > 1e-12 {
			t.Errorf("cdf[0][%d]: expected %v, got %v", i, want, p.CDF[0][i])
		}
	}
}

func TestCompile_RowsEndAtOne(t *testing.T) {
	// Masses that do not sum to 1 must be normalized so each row ends at
	// exactly 1.0.
	csvText := "passenger_count,a,b,c\n" +
		"0,1,2,3\n" +
		"1,0.1,0.1,0.1\n"
	p, err := Compile("m", csvText)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	for i, row := range p.CDF {
		if row[len(row)-1] != 1.0 {
			t.Errorf("row %d does not end at exactly 1.0: %v", i, row[len(row)-1])
		}
		for j := 1; j < len(row); j++ {
			if row[j] < row[j-1] {
				t.Errorf("row %d is not non-decreasing at %d: %v", i, j, row)
			}
		}
	}
}

func TestCompile_ManyCategoriesEndAtOne(t *testing.T) {
	// 0.1 is not exactly representable; a naive running sum drifts. The
	// compensated sum plus normalization must still land on exactly 1.0.
	header := "passenger_count"
	row := "0"
	for i := 0; i < 100; i++ {
		header += ",c" + string(rune('A'+i%26)) + "x"
		row += ",0.1"
	}
	p, err := Compile("wide", header+"\n"+row+"\n")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	got := p.CDF[0][len(p.CDF[0])-1]
	if got != 1.0 {
		t.Errorf("final edge should be exactly 1.0, got %v", got)
	}
}

func TestCompile_Failures(t *testing.T) {
	tests := []struct {
		name    string
		csvText string
	}{
		{name: "non-numeric cell", csvText: "passenger_count,a,b\n0,x,0.5\n"},
		{name: "header only", csvText: "passenger_count,a,b\n"},
		{name: "single column", csvText: "passenger_count\n0\n"},
		{name: "negative mass", csvText: "passenger_count,a,b\n0,-0.5,1.5\n"},
		{name: "zero mass row", csvText: "passenger_count,a,b\n0,0,0\n"},
		{name: "ragged row", csvText: "passenger_count,a,b\n0,0.5,0.5,0.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile("m", tt.csvText)
			if err == nil {
				t.Fatal("expected a compile error")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("expected *ParseError, got %T", err)
			}
		})
	}
}

func TestCumulativeSumKBN2(t *testing.T) {
	got := cumulativeSumKBN2([]float64{1, 2, 3, 4})
	want := []float64{1, 3, 6, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}
