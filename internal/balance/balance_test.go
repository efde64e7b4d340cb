package balance

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/wildstyl3r/cowan/internal/utils"
)

func TestAluminium(t *testing.T) {
	al, err := ForElement(13)
	if err != nil {
		t.Fatal(err)
	}
	a, ok, err := al.Abundance(25, 1e20)
	if err != nil || !ok {
		t.Fatalf("have ok=%v err=%v", ok, err)
	}
	if len(a) != 13 {
		t.Fatalf("have %d charge states, want 13", len(a))
	}
	if sum := floats.Sum(a); math.Abs(sum-1) > 1e-10 {
		t.Errorf("have sum %v, want 1", sum)
	}
	if q := utils.Argmax(a); q < 3 || q > 6 {
		t.Errorf("have dominant charge state %d, want 3..6", q)
	}
}

func TestClosure(t *testing.T) {
	for _, z := range []int{1, 2, 6, 13, 18, 26, 30} {
		e, err := ForElement(z)
		if err != nil {
			t.Fatal(err)
		}
		for _, T := range []float64{1, 10, 100, 1000} {
			for _, ne := range []float64{1e14, 1e19, 1e23} {
				a, ok, err := e.Abundance(T, ne)
				if err != nil || !ok {
					t.Fatalf("Z=%d: have ok=%v err=%v", z, ok, err)
				}
				for q := range a {
					if a[q] < 0 || math.IsNaN(a[q]) {
						t.Fatalf("Z=%d T=%v ne=%v: have a[%d] = %v", z, T, ne, q, a[q])
					}
				}
				if sum := floats.Sum(a); math.Abs(sum-1) > 1e-10 {
					t.Errorf("Z=%d T=%v ne=%v: have sum %v", z, T, ne, sum)
				}
			}
		}
	}
}

func TestHotterPlasmaIsMoreIonized(t *testing.T) {
	al, err := ForElement(13)
	if err != nil {
		t.Fatal(err)
	}
	cold, _, _ := al.Abundance(5, 1e20)
	hot, _, _ := al.Abundance(200, 1e20)
	if utils.Argmax(hot) <= utils.Argmax(cold) {
		t.Errorf("have dominant states %d (5 eV) and %d (200 eV)", utils.Argmax(cold), utils.Argmax(hot))
	}
}

// With two charge states only the neutral ratio S/(ne*A3r) enters, which is
// unchanged when chi and T scale by eps and ne by eps^1.5.
func TestRescaling(t *testing.T) {
	e := Element{Z: 2, Chi: []float64{20, 50}, Eta: []int{2, 1}}
	base, ok, err := e.Abundance(15, 1e18)
	if err != nil || !ok {
		t.Fatal(ok, err)
	}
	for _, eps := range []float64{0.5, 2, 7} {
		scaled := Element{Z: 2, Chi: []float64{20 * eps, 50 * eps}, Eta: []int{2, 1}}
		a, _, err := scaled.Abundance(15*eps, 1e18*math.Pow(eps, 1.5))
		if err != nil {
			t.Fatal(err)
		}
		if !floats.EqualApprox(a, base, 1e-10) {
			t.Errorf("eps=%v: have %v, want %v", eps, a, base)
		}
	}
}

func TestSkippedElement(t *testing.T) {
	e := Element{Z: 3, Chi: []float64{5, 0, 100}, Eta: []int{1, 2, 1}}
	if _, ok, err := e.Abundance(10, 1e18); ok || err != nil {
		t.Errorf("have ok=%v err=%v, want skipped", ok, err)
	}
	zr, err := ForElement(40)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := zr.Abundance(10, 1e18); ok {
		t.Error("element without ionization energies was not skipped")
	}
	if zr.WithNeutralIonization(6.6).Complete() {
		t.Error("a single override completed a missing table")
	}
}

func TestInvalidState(t *testing.T) {
	e, _ := ForElement(6)
	if _, _, err := e.Abundance(0, 1e18); !errors.Is(err, ErrInvalidState) {
		t.Errorf("have %v, want ErrInvalidState", err)
	}
}

func TestNeutralOverride(t *testing.T) {
	e, _ := ForElement(6)
	o := e.WithNeutralIonization(12)
	if o.Chi[0] != 12 || e.Chi[0] == 12 {
		t.Errorf("have %v and %v", o.Chi[0], e.Chi[0])
	}
}
