// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package discovery

// Guard enforces short-window source-domain diversity. It is a soft
// constraint: the engine resamples rejected picks a bounded number of times
// and then accepts the last attempt with the violation recorded.
type Guard struct{}

// NewGuard creates a diversity guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Accept reports whether the pick's domain is absent from the recent-domain
// window.
func (g *Guard) Accept(pick Candidate, window []string) bool {
	for _, d := range window {
		if d == pick.Domain {
			return false
		}
	}
	return true
}
