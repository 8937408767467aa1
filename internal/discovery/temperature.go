// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package discovery

import "fmt"

// WildnessMax is the upper bound of the wildness dial.
const WildnessMax = 100

// TemperatureCurve maps normalized wildness (0-1) onto a temperature
// fraction (0-1). The effective sampling temperature is curve(w/100)*TauMax.
//
// The curve is deliberately an isolated unit: whether mid-range wildness
// should feel linear or more dramatic is an open product question, and the
// shape can be swapped without touching the sampling code.
type TemperatureCurve func(normalized float64) float64

// LinearCurve is the identity mapping.
func LinearCurve(x float64) float64 {
	return x
}

// SmoothstepCurve eases in and out, making mid-range wildness changes feel
// more pronounced than the extremes.
func SmoothstepCurve(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x * x * (3 - 2*x)
}

// CurveByName resolves a configured curve name.
func CurveByName(name string) (TemperatureCurve, error) {
	switch name {
	case "", "linear":
		return LinearCurve, nil
	case "smoothstep":
		return SmoothstepCurve, nil
	default:
		return nil, fmt.Errorf("unknown temperature curve %q", name)
	}
}

// ClampWildness bounds a wildness value to [0, WildnessMax]. The second
// return reports whether clamping occurred, so callers can log the
// out-of-range input.
func ClampWildness(wildness int) (int, bool) {
	if wildness < 0 {
		return 0, true
	}
	if wildness > WildnessMax {
		return WildnessMax, true
	}
	return wildness, false
}
