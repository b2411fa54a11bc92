package numeric

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(5.0, 1.0, 3.0); got != 3.0 {
		t.Errorf("Clamp above range = %v, want 3", got)
	}
	if got := Clamp(-1, 0, 10); got != 0 {
		t.Errorf("Clamp below range = %v, want 0", got)
	}
	if got := Clamp(2.5, 1.0, 3.0); got != 2.5 {
		t.Errorf("Clamp inside range = %v, want 2.5", got)
	}
}

func TestAlignUp(t *testing.T) {
	cases := []struct{ n, align, want int }{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{5, 0, 5},
	}
	for _, c := range cases {
		if got := AlignUp(c.n, c.align); got != c.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", c.n, c.align, got, c.want)
		}
	}
}

func TestMaxAbsDiff(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{1, 2.5, 1}
	if got := MaxAbsDiff(a, b); got != 2 {
		t.Errorf("MaxAbsDiff = %v, want 2", got)
	}
	if got := MaxAbsDiff(a, b[:1]); got != 0 {
		t.Errorf("MaxAbsDiff on common prefix = %v, want 0", got)
	}
}
