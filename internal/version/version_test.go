package version

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{2.18, "v2.18.0"},
		{1.0, "v1.0.0"},
		{100, "v100.0.0"},
		{0.6, "v0.6.0"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCompare(t *testing.T) {
	if !LessThan(2.9, 2.18) {
		t.Error("expected 2.9 < 2.18 (minor 9 < minor 18)")
	}
	if Compare(2.18, 2.18) != 0 {
		t.Error("expected 2.18 == 2.18")
	}
	if !LessThan(1.0, 2.0) {
		t.Error("expected 1.0 < 2.0")
	}
}

func TestSatisfies(t *testing.T) {
	if !Satisfies(2.18, 2.10) {
		t.Error("declared 2.18 should satisfy required 2.10")
	}
	if Satisfies(2.10, 2.18) {
		t.Error("declared 2.10 should not satisfy required 2.18")
	}
}
