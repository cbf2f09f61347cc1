package systems

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestFindContact(t *testing.T) {
	tests := []struct {
		name      string
		prey      []r3.Vec
		predators []r3.Vec
		wantPrey  int
		wantPred  int
		wantOK    bool
	}{
		{"empty", nil, nil, 0, 0, false},
		{"no predators", []r3.Vec{{}}, nil, 0, 0, false},
		{"no prey", nil, []r3.Vec{{}}, 0, 0, false},
		{"out of range", []r3.Vec{{}}, []r3.Vec{{X: 1.01}}, 0, 0, false},
		{"exactly at radius", []r3.Vec{{}}, []r3.Vec{{X: 1}}, 0, 0, true},
		{"close pair", []r3.Vec{{Y: 0.5}}, []r3.Vec{{X: 0.5, Y: 0.5}}, 0, 0, true},
		{
			"last prey wins",
			[]r3.Vec{{}, {X: 10}, {X: 20}},
			[]r3.Vec{{X: 0.5}, {X: 20.5}},
			2, 1, true,
		},
		{
			"last predator wins",
			[]r3.Vec{{}},
			[]r3.Vec{{X: 0.5}, {X: 5}, {Z: -0.5}},
			0, 2, true,
		},
		{"vertical distance counts", []r3.Vec{{}}, []r3.Vec{{Y: 2}}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, j, ok := FindContact(tt.prey, tt.predators, 1)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (i != tt.wantPrey || j != tt.wantPred) {
				t.Errorf("contact = (%d,%d), want (%d,%d)", i, j, tt.wantPrey, tt.wantPred)
			}
		})
	}
}
