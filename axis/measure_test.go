package axis

import "testing"

func TestBasicMeasurer(t *testing.T) {
	var m BasicMeasurer
	w, h := m.Measure("100", 13)
	if w != 21 || h != 13 {
		t.Errorf("Measure at native size = %v x %v, want 21 x 13", w, h)
	}
	w, h = m.Measure("100", 26)
	if w != 42 || h != 26 {
		t.Errorf("Measure at double size = %v x %v, want 42 x 26", w, h)
	}
	if w, _ := m.Measure("", 12); w != 0 {
		t.Errorf("empty label width = %v", w)
	}
}

func TestShapedMeasurer(t *testing.T) {
	m, err := NewGoRegularMeasurer()
	if err != nil {
		t.Fatalf("NewGoRegularMeasurer: %v", err)
	}

	w1, h1 := m.Measure("1", 12)
	w4, h4 := m.Measure("1,000", 12)
	if !(w1 > 0) || !(w4 > w1) {
		t.Errorf("widths: %q=%v %q=%v", "1", w1, "1,000", w4)
	}
	if !(h1 > 0) || h1 != h4 {
		t.Errorf("line heights differ: %v vs %v", h1, h4)
	}

	w24, _ := m.Measure("1", 24)
	if d := w24 - 2*w1; d < -1 || d > 1 {
		t.Errorf("width does not scale with size: %v at 12, %v at 24", w1, w24)
	}
}

func TestNewShapedMeasurer_BadFont(t *testing.T) {
	if _, err := NewShapedMeasurer([]byte("not a font")); err == nil {
		t.Error("expected parse error")
	}
}
