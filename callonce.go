// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package callonce provides Gate, a lock-free primitive that many
// goroutines may race to claim but exactly one wins.
//
// It is a thin wrapper around an atomic compare-and-swap with a more
// descriptive API than a bare atomic.Bool: the losing outcome is a
// first-class value rather than an easily inverted boolean, and the
// Do wrapper turns the claim into "run this function exactly once".
//
// Unlike sync.Once, a Gate tells callers whether they won, and Do does
// not block losers while the winner's function runs: losing is
// reported immediately. Callers that instead need to wait for the
// winner's work to finish should use sync.Once.
package callonce

import (
	"errors"
	"sync/atomic"
)

// ErrAlreadyCalled is returned by Do and DoValue when the gate was
// already claimed. It is the expected result for every caller but the
// winner, not an exceptional condition.
var ErrAlreadyCalled = errors.New("callonce: already called")

// Outcome is the result of a TryClaim call.
type Outcome int

const (
	// Lost reports that the gate was already claimed, either before
	// the call began or concurrently by another goroutine.
	Lost Outcome = iota

	// Won reports that this call claimed the gate. The caller is now
	// the one responsible for performing the guarded action.
	Won
)

func (o Outcome) String() string {
	switch o {
	case Lost:
		return "Lost"
	case Won:
		return "Won"
	default:
		return "invalid"
	}
}

// A Gate is claimed successfully exactly once.
//
// The zero value is an unclaimed Gate, ready for use; the canonical
// usage is a package-level var with no constructor. A Gate must not be
// copied after first use.
//
// All methods are safe for concurrent use and never block: each is a
// single atomic operation. Go's atomics are sequentially consistent,
// so any goroutine that observes Lost (or a true Called) also observes
// every write the winner made before its claim; the gate itself is a
// sufficient happens-before edge, no extra lock is needed.
type Gate struct {
	called atomic.Bool
}

// TryClaim attempts to claim g.
//
// Across any number of concurrent calls, exactly one returns Won; all
// others, including later calls by the winner, return Lost.
func (g *Gate) TryClaim() Outcome {
	if g.called.CompareAndSwap(false, true) {
		return Won
	}
	return Lost
}

// Called reports whether g has been claimed.
//
// A false return may be stale by the time the caller acts on it; use
// TryClaim to decide a race.
func (g *Gate) Called() bool {
	return g.called.Load()
}

// Do claims g and, if this call won, runs f and returns nil. If the
// gate was already claimed it returns ErrAlreadyCalled without
// running f.
//
// The claim is committed before f runs: if f panics, g remains
// claimed and no later call runs its function. The gate records
// "claimed", not "succeeded".
func (g *Gate) Do(f func()) error {
	if g.TryClaim() == Lost {
		return ErrAlreadyCalled
	}
	f()
	return nil
}

// DoValue is like Gate.Do but returns f's value to the winner. Losers
// get the zero value of T and ErrAlreadyCalled; the winner's value is
// not cached or propagated.
func DoValue[T any](g *Gate, f func() T) (T, error) {
	if g.TryClaim() == Lost {
		var zero T
		return zero, ErrAlreadyCalled
	}
	return f(), nil
}
