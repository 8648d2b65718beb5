package dpf

import (
	"testing"

	"gotest.tools/assert"
	"lukechampine.com/uint128"
)

func TestGenerateKeysRejectsIncrementalDPF(t *testing.T) {
	d, err := CreateIncremental([]Parameters{
		{LogDomainSize: 2, ElementBitsize: 8},
		{LogDomainSize: 4, ElementBitsize: 8},
	})
	assert.NilError(t, err)
	_, _, err = d.GenerateKeys(RandSource(), uint128.Zero, uint128.From64(1))
	assert.Assert(t, err != nil)
}

func TestGenerateKeysRejectsOutOfDomainAlpha(t *testing.T) {
	d, err := Create(Parameters{LogDomainSize: 4, ElementBitsize: 8})
	assert.NilError(t, err)
	_, _, err = d.GenerateKeys(RandSource(), uint128.From64(16), uint128.From64(1))
	assert.Assert(t, err != nil)
}

func TestGenerateKeysIncrementalRejectsWrongBetaLength(t *testing.T) {
	d, err := CreateIncremental([]Parameters{
		{LogDomainSize: 2, ElementBitsize: 8},
		{LogDomainSize: 4, ElementBitsize: 8},
	})
	assert.NilError(t, err)
	_, _, err = d.GenerateKeysIncremental(RandSource(), uint128.From64(3), []uint128.Uint128{uint128.From64(1)})
	assert.Assert(t, err != nil)
}

// Scenario 1: single-level DPF, log_domain_size=4, element_bitsize=32,
// alpha=5, beta=42.
func TestScenario1SingleLevel(t *testing.T) {
	d, err := Create(Parameters{LogDomainSize: 4, ElementBitsize: 32})
	assert.NilError(t, err)
	keyA, keyB, err := d.GenerateKeys(RandSource(), uint128.From64(5), uint128.From64(42))
	assert.NilError(t, err)

	for x := uint64(0); x < 16; x++ {
		yA, yB := evalSingleUint32(t, d, keyA, keyB, x)
		want := uint32(0)
		if x == 5 {
			want = 42
		}
		assert.Equal(t, yA+yB, want)
	}
}

// Scenario 2: single-level DPF, log_domain_size=1, element_bitsize=1,
// alpha=0, beta=1.
func TestScenario2SingleBit(t *testing.T) {
	d, err := Create(Parameters{LogDomainSize: 1, ElementBitsize: 1})
	assert.NilError(t, err)
	keyA, keyB, err := d.GenerateKeys(RandSource(), uint128.Zero, uint128.From64(1))
	assert.NilError(t, err)

	for x := uint64(0); x < 2; x++ {
		yA, yB := evalSingleUint8(t, d, keyA, keyB, x)
		want := uint8(0)
		if x == 0 {
			want = 1
		}
		assert.Equal(t, (yA+yB)&1, want)
	}
}

// TestSingleKeyLooksRandom runs a bit-balance chi-squared check over one
// party's key material (its initial seed and every correction word's
// seed): a DPF key's defining security property is that, on its own, it
// is computationally indistinguishable from random, so a lone key's seed
// bytes should show no detectable bias toward 0 or 1 bits.
func TestSingleKeyLooksRandom(t *testing.T) {
	d, err := Create(Parameters{LogDomainSize: 20, ElementBitsize: 8})
	assert.NilError(t, err)
	keyA, _, err := d.GenerateKeysIncremental(RandSource(), uint128.From64(123456), []uint128.Uint128{uint128.From64(7)})
	assert.NilError(t, err)

	var ones, total int
	countBits := func(b Block) {
		bytes := b.Bytes()
		for _, byteVal := range bytes {
			for k := 0; k < 8; k++ {
				total++
				if byteVal&(1<<uint(k)) != 0 {
					ones++
				}
			}
		}
	}
	countBits(keyA.Seed)
	for _, cw := range keyA.CorrectionWords {
		countBits(cw.Seed)
	}

	assert.Assert(t, total > 1000)
	expected := float64(total) / 2
	diff := float64(ones) - expected
	chiSquared := (diff * diff) / expected * 2
	// One degree of freedom, alpha=0.01 critical value is 6.635; a true
	// bias would blow far past it, a fair coin flips under it the vast
	// majority of the time.
	assert.Assert(t, chiSquared < 6.635)
}

func evalSingleUint32(t *testing.T, d *DistributedPointFunction, keyA, keyB DpfKey, x uint64) (uint32, uint32) {
	ctxA, err := d.CreateEvaluationContext(keyA)
	assert.NilError(t, err)
	ctxB, err := d.CreateEvaluationContext(keyB)
	assert.NilError(t, err)
	outA, err := ctxA.EvaluateNextUint32([]uint128.Uint128{uint128.From64(x)})
	assert.NilError(t, err)
	outB, err := ctxB.EvaluateNextUint32([]uint128.Uint128{uint128.From64(x)})
	assert.NilError(t, err)
	return outA[0], outB[0]
}

func evalSingleUint8(t *testing.T, d *DistributedPointFunction, keyA, keyB DpfKey, x uint64) (uint8, uint8) {
	ctxA, err := d.CreateEvaluationContext(keyA)
	assert.NilError(t, err)
	ctxB, err := d.CreateEvaluationContext(keyB)
	assert.NilError(t, err)
	outA, err := ctxA.EvaluateNextUint8([]uint128.Uint128{uint128.From64(x)})
	assert.NilError(t, err)
	outB, err := ctxB.EvaluateNextUint8([]uint128.Uint128{uint128.From64(x)})
	assert.NilError(t, err)
	return outA[0], outB[0]
}
