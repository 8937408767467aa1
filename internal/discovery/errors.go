// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package discovery

import "errors"

var (
	// ErrNoContentAvailable indicates the eligible pool is empty even
	// after every fallback relaxation. It is the only error callers must
	// handle as a distinct outcome ("nothing new right now").
	ErrNoContentAvailable = errors.New("no content available")

	// ErrRetrievalTimeout indicates both the primary fetch and the
	// trending fallback failed within budget. It is absorbed internally
	// and surfaces to callers only as ErrNoContentAvailable.
	ErrRetrievalTimeout = errors.New("candidate retrieval timed out")

	// ErrEmptyPool reports a caller contract violation: the exploration
	// controller was invoked with zero candidates. Emptiness must be
	// signalled via ErrNoContentAvailable before selection.
	ErrEmptyPool = errors.New("empty candidate pool")

	// ErrPreferencesNotFound indicates the preference collaborator has no
	// record for the user. Recovered with cold-start defaults.
	ErrPreferencesNotFound = errors.New("user preferences not found")
)
