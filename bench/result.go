// Package bench orchestrates the per-algorithm benchmark sweeps
// against a single host.
package bench

import "time"

// Trial records one timed invocation of the external client forced to
// a single candidate algorithm. Elapsed is meaningful only when OK is
// true; a failed trial keeps the algorithm name and nothing else.
type Trial struct {
	Algorithm string
	Elapsed   time.Duration
	OK        bool
}

// Results holds the five ordered trial sequences of a full run. Each
// sequence follows the order the algorithms were reported by the
// client.
type Results struct {
	Kex           []Trial
	MACSend       []Trial
	CipherSend    []Trial
	MACReceive    []Trial
	CipherReceive []Trial
}
