package utils

import "math/rand/v2"

// Rand is the random source used for synthetic reviewer data.
// *rand.Rand from math/rand/v2 satisfies it; tests inject scripted sources.
type Rand interface {
	IntN(n int) int
	Int64N(n int64) int64
}

type globalRand struct{}

func (globalRand) IntN(n int) int       { return rand.IntN(n) }
func (globalRand) Int64N(n int64) int64 { return rand.Int64N(n) }

// DefaultRand draws from the process-wide source and is safe for concurrent use
var DefaultRand Rand = globalRand{}
