package dpf

import "math/rand"

// RandSource returns a fixed-seed random source, the same pattern the
// teacher's test_util.go uses so that test failures reproduce instead of
// flaking, for the non-cryptographic randomness tests need (choosing
// random parameter lists, alphas and betas to property-test against).
func RandSource() *rand.Rand {
	return rand.New(rand.NewSource(17))
}
