package models

import "testing"

func TestStrokeDegenerate(t *testing.T) {
	cases := []struct {
		name   string
		points int
		want   bool
	}{
		{"empty", 0, true},
		{"single point", 1, true},
		{"two points", 2, false},
		{"many points", 10, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := Stroke{Points: make([]Point, c.points)}
			if got := s.Degenerate(); got != c.want {
				t.Fatalf("Degenerate() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestStrokeCloneIsIndependent(t *testing.T) {
	orig := Stroke{
		ToolID: 3,
		Color:  0xff0000,
		Points: []Point{{X: 1, Y: 1, Pressure: 100}, {X: 2, Y: 2, Pressure: 120}},
	}

	clone := orig.Clone()
	clone.Points[0].X = 99
	clone.Points[0].Pressure = 0

	if orig.Points[0].X != 1 {
		t.Fatalf("mutating clone affected original: X = %v", orig.Points[0].X)
	}
	if orig.Points[0].Pressure != 100 {
		t.Fatalf("mutating clone affected original: Pressure = %v", orig.Points[0].Pressure)
	}
	if clone.ToolID != orig.ToolID || clone.Color != orig.Color {
		t.Fatalf("clone dropped non-point fields: %+v", clone)
	}
}

func TestStrokeCloneEmpty(t *testing.T) {
	orig := Stroke{ToolID: 1}
	clone := orig.Clone()
	if len(clone.Points) != 0 {
		t.Fatalf("expected empty clone, got %d points", len(clone.Points))
	}
}
