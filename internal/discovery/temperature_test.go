// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package discovery

import "testing"

func TestClampWildness(t *testing.T) {
	tests := []struct {
		in          int
		want        int
		wantClamped bool
	}{
		{-5, 0, true},
		{0, 0, false},
		{50, 50, false},
		{100, 100, false},
		{150, 100, true},
	}
	for _, tt := range tests {
		got, clamped := ClampWildness(tt.in)
		if got != tt.want || clamped != tt.wantClamped {
			t.Errorf("ClampWildness(%d) = (%d, %v), want (%d, %v)",
				tt.in, got, clamped, tt.want, tt.wantClamped)
		}
	}
}

func TestLinearCurveEndpoints(t *testing.T) {
	if LinearCurve(0) != 0 || LinearCurve(1) != 1 {
		t.Error("linear curve must be identity at endpoints")
	}
	if LinearCurve(0.5) != 0.5 {
		t.Error("linear curve must be identity at midpoint")
	}
}

func TestSmoothstepCurve(t *testing.T) {
	if SmoothstepCurve(-1) != 0 || SmoothstepCurve(2) != 1 {
		t.Error("smoothstep must clamp outside [0,1]")
	}
	if SmoothstepCurve(0) != 0 || SmoothstepCurve(1) != 1 {
		t.Error("smoothstep endpoints must be 0 and 1")
	}
	if got := SmoothstepCurve(0.5); !almostEqual(got, 0.5) {
		t.Errorf("smoothstep midpoint = %f, want 0.5", got)
	}
	// Steeper than linear in the middle.
	if SmoothstepCurve(0.6) <= 0.6 {
		t.Error("smoothstep should exceed linear past the midpoint")
	}
}

func TestCurveByName(t *testing.T) {
	if _, err := CurveByName("linear"); err != nil {
		t.Errorf("linear: unexpected error %v", err)
	}
	if _, err := CurveByName(""); err != nil {
		t.Errorf("empty name should default to linear, got %v", err)
	}
	if _, err := CurveByName("smoothstep"); err != nil {
		t.Errorf("smoothstep: unexpected error %v", err)
	}
	if _, err := CurveByName("bogus"); err == nil {
		t.Error("expected error for unknown curve name")
	}
}

func TestControllerTemperatureMapping(t *testing.T) {
	c := NewController(20.0, LinearCurve)

	if got := c.Temperature(0); got != 0 {
		t.Errorf("temperature at wildness 0 = %f, want 0", got)
	}
	if got := c.Temperature(100); !almostEqual(got, 20.0) {
		t.Errorf("temperature at wildness 100 = %f, want 20", got)
	}
	if got := c.Temperature(50); !almostEqual(got, 10.0) {
		t.Errorf("temperature at wildness 50 = %f, want 10", got)
	}
	// Out-of-range wildness is clamped, not extrapolated.
	if got := c.Temperature(1000); !almostEqual(got, 20.0) {
		t.Errorf("temperature at wildness 1000 = %f, want 20", got)
	}
}
