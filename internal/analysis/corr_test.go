package analysis

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestCorrelateSymmetricUnitDiagonal(t *testing.T) {
	ds := mustParse(t, "a,b,c,label\n1,2,9,x\n2,4,7,y\n3,7,8,x\n4,8,1,y\n5,11,NA,z\n")
	for _, method := range []string{"pearson", "spearman"} {
		t.Run(method, func(t *testing.T) {
			m, err := Correlate(ds, method)
			if err != nil {
				t.Fatalf("Correlate: %v", err)
			}
			if !reflect.DeepEqual(m.Columns, []string{"a", "b", "c"}) {
				t.Fatalf("columns = %v", m.Columns)
			}
			for i := 0; i < m.Len(); i++ {
				if m.At(i, i) != 1 {
					t.Errorf("diagonal %d = %v", i, m.At(i, i))
				}
				for j := 0; j < m.Len(); j++ {
					if !almostEqual(m.At(i, j), m.At(j, i), 0) {
						t.Errorf("asymmetric at %d,%d", i, j)
					}
					if r := m.At(i, j); r < -1 || r > 1 {
						t.Errorf("out of range r=%v", r)
					}
				}
			}
		})
	}
}

func TestCorrelateKnownValues(t *testing.T) {
	// y = x^3 is monotone but not linear.
	ds := mustParse(t, "x,y,z\n1,1,5\n2,8,4\n3,27,3\n4,64,2\n")
	p, err := Correlate(ds, "pearson")
	if err != nil {
		t.Fatal(err)
	}
	if r := p.At(0, 1); !(r > 0.9 && r < 1) {
		t.Errorf("pearson x~y = %v", r)
	}
	if r := p.At(0, 2); !almostEqual(r, -1, 1e-12) {
		t.Errorf("pearson x~z = %v, want -1", r)
	}
	s, err := Correlate(ds, "Spearman")
	if err != nil {
		t.Fatal(err)
	}
	if r := s.At(0, 1); !almostEqual(r, 1, 1e-12) {
		t.Errorf("spearman x~y = %v, want 1", r)
	}
}

func TestCorrelateUndefinedPairs(t *testing.T) {
	ds := mustParse(t, "a,b,k\n1,NA,3\n2,NA,3\n3,5,3\n")
	m, err := Correlate(ds, "pearson")
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(m.At(0, 1)) {
		t.Errorf("one paired observation should be NaN, got %v", m.At(0, 1))
	}
	if !math.IsNaN(m.At(0, 2)) {
		t.Errorf("constant column should be NaN, got %v", m.At(0, 2))
	}
	if m.At(1, 1) != 1 {
		t.Errorf("diagonal stays 1")
	}
	if pairs := m.TopPairs(10); len(pairs) != 0 {
		t.Errorf("NaN pairs should be skipped: %v", pairs)
	}
}

func TestCorrelateNoNumeric(t *testing.T) {
	ds := mustParse(t, "a,b\nx,y\n")
	m, err := Correlate(ds, "")
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 0 || len(m.Values()) != 0 || m.Method != Pearson {
		t.Fatalf("unexpected matrix %#v", m)
	}
}

func TestCorrelateUnknownMethod(t *testing.T) {
	ds := mustParse(t, sampleCSV)
	if _, err := Correlate(ds, "kendall"); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("err = %v, want ErrUnknownMethod", err)
	}
}

func TestRanks(t *testing.T) {
	got := ranks([]float64{20, 10, 30, 20})
	want := []float64{2.5, 1, 4, 2.5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranks = %v, want %v", got, want)
	}
}

func TestTopPairs(t *testing.T) {
	ds := mustParse(t, "x,y,z\n1,1,5\n2,8,4\n3,27,3\n4,64,2\n")
	m, err := Correlate(ds, "pearson")
	if err != nil {
		t.Fatal(err)
	}
	pairs := m.TopPairs(1)
	if len(pairs) != 1 || pairs[0].A != "x" || pairs[0].B != "z" {
		t.Fatalf("top pair = %#v", pairs)
	}
}
