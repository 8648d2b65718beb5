package dpf

import (
	"testing"

	"gotest.tools/assert"
	"lukechampine.com/uint128"
)

func TestSlotsPerBlock(t *testing.T) {
	assert.Equal(t, slotsPerBlock(1), 128)
	assert.Equal(t, slotsPerBlock(8), 16)
	assert.Equal(t, slotsPerBlock(32), 4)
	assert.Equal(t, slotsPerBlock(128), 1)
}

func TestPackUnpackSlotRoundTrip(t *testing.T) {
	block := ZeroBlock
	for s := 0; s < 16; s++ {
		var err error
		block, err = packSlot(block, 8, s, uint128.From64(uint64(s*7+1)))
		assert.NilError(t, err)
	}
	for s := 0; s < 16; s++ {
		v, err := unpackSlot(block, 8, s)
		assert.NilError(t, err)
		assert.Equal(t, v.Lo, uint64(s*7+1))
	}
}

func TestPackSlotOutOfRange(t *testing.T) {
	_, err := packSlot(ZeroBlock, 8, 16, uint128.Zero)
	assert.ErrorContains(t, err, "out of range")
}

func TestUnsupportedElementBitsize(t *testing.T) {
	_, err := packSlot(ZeroBlock, 3, 0, uint128.Zero)
	assert.ErrorContains(t, err, "not supported")
}

func TestNegateElementIsAdditiveInverse(t *testing.T) {
	for _, b := range []int{1, 8, 32} {
		mask := lowMask(uint(b))
		v := uint128.From64(5).And(mask)
		neg := negateElement(v, b)
		sum := v.Add(neg).And(mask)
		assert.Equal(t, sum, uint128.Zero)
	}
}

func TestPackedAddSubRoundTrip(t *testing.T) {
	a, err := packSlot(ZeroBlock, 8, 0, uint128.From64(200))
	assert.NilError(t, err)
	a, err = packSlot(a, 8, 1, uint128.From64(9))
	assert.NilError(t, err)

	b, err := packSlot(ZeroBlock, 8, 0, uint128.From64(40))
	assert.NilError(t, err)
	b, err = packSlot(b, 8, 1, uint128.From64(250))
	assert.NilError(t, err)

	sum, err := packedAdd(a, b, 8)
	assert.NilError(t, err)
	back, err := packedSub(sum, b, 8)
	assert.NilError(t, err)

	v0, err := unpackSlot(back, 8, 0)
	assert.NilError(t, err)
	v1, err := unpackSlot(back, 8, 1)
	assert.NilError(t, err)
	assert.Equal(t, v0.Lo, uint64(200))
	assert.Equal(t, v1.Lo, uint64(9))
}

func TestPackedNegateTwiceIsIdentity(t *testing.T) {
	a, err := packSlot(ZeroBlock, 16, 2, uint128.From64(1234))
	assert.NilError(t, err)
	once, err := packedNegate(a, 16)
	assert.NilError(t, err)
	twice, err := packedNegate(once, 16)
	assert.NilError(t, err)
	assert.Equal(t, twice, a)
}
