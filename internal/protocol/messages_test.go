package protocol

import "testing"

func TestBoundingBox_Contains(t *testing.T) {
	box := BoundingBox{X: 0, Y: 0, Width: 10, Height: 10}
	cases := []struct {
		x, y float64
		want bool
	}{
		{0, 0, true},   // min corner is inside
		{5, 5, true},
		{9.999, 9.999, true},
		{10, 5, false}, // max edge is outside
		{5, 10, false},
		{10, 10, false},
		{-0.001, 5, false},
		{5, -0.001, false},
	}
	for _, tc := range cases {
		if got := box.Contains(tc.x, tc.y); got != tc.want {
			t.Fatalf("Contains(%v,%v) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestIsDirection(t *testing.T) {
	for _, d := range []string{DirFront, DirBack, DirLeft, DirRight} {
		if !IsDirection(d) {
			t.Fatalf("expected %q accepted", d)
		}
	}
	for _, d := range []string{"", "up", "FRONT"} {
		if IsDirection(d) {
			t.Fatalf("expected %q rejected", d)
		}
	}
}

func TestIsCommand(t *testing.T) {
	for _, typ := range []string{TypeMove, TypeAreaCreate, TypeAreaUpdate, TypeAreaDestroy, TypeLeave} {
		if !IsCommand(typ) {
			t.Fatalf("expected %q to be a command", typ)
		}
	}
	for _, typ := range []string{TypeJoin, TypeWelcome, TypeAck, TypeEvent, "PING"} {
		if IsCommand(typ) {
			t.Fatalf("expected %q rejected", typ)
		}
	}
}
