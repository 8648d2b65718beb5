package dpf

import (
	"testing"

	"gotest.tools/assert"
)

func TestBlockXorSelfIsZero(t *testing.T) {
	b := Block{Hi: 0x0123456789abcdef, Lo: 0xfedcba9876543210}
	assert.Equal(t, b.Xor(b), ZeroBlock)
}

func TestBlockLsbAndClearLsb(t *testing.T) {
	b := Block{Hi: 1, Lo: 1}
	assert.Equal(t, b.Lsb(), byte(1))
	assert.Equal(t, b.ClearLsb().Lsb(), byte(0))
	assert.Equal(t, b.ClearLsb().Hi, b.Hi)
}

func TestBlockMod(t *testing.T) {
	b := Block{Hi: 0xffffffffffffffff, Lo: 0xffffffffffffffff}
	assert.Equal(t, b.Mod(0), ZeroBlock)
	assert.Equal(t, b.Mod(1), Block{Lo: 1})
	assert.Equal(t, b.Mod(8), Block{Lo: 0xff})
	assert.Equal(t, b.Mod(128), b)
	assert.Equal(t, b.Mod(65), Block{Hi: 1, Lo: 0xffffffffffffffff})
}

func TestBlockShr(t *testing.T) {
	b := Block{Hi: 0, Lo: 0b1001} // 9
	assert.Equal(t, b.Shr(2), Block{Lo: 0b10})
	assert.Equal(t, b.Shr(0), b)
	assert.Equal(t, b.Shr(128), ZeroBlock)

	wide := Block{Hi: 1, Lo: 0}
	assert.Equal(t, wide.Shr(64), Block{Lo: 1})
}

func TestBlockBit(t *testing.T) {
	b := Block{Hi: 0, Lo: 0b1011}
	assert.Equal(t, b.Bit(0), byte(1))
	assert.Equal(t, b.Bit(1), byte(1))
	assert.Equal(t, b.Bit(2), byte(0))
	assert.Equal(t, b.Bit(3), byte(1))

	hi := Block{Hi: 1, Lo: 0}
	assert.Equal(t, hi.Bit(64), byte(1))
}

func TestBlockBytesRoundTrip(t *testing.T) {
	b := Block{Hi: 0x1122334455667788, Lo: 0x99aabbccddeeff00}
	assert.Equal(t, BlockFromBytes(sliceOf(b.Bytes())), b)
}

func TestXorBlocksBatch(t *testing.T) {
	dst := []Block{{Lo: 1}, {Lo: 2}, {Lo: 3}}
	src := []Block{{Lo: 1}, {Lo: 1}, {Lo: 1}}
	XorBlocks(dst, src)
	assert.Equal(t, dst[0], ZeroBlock)
	assert.Equal(t, dst[1], Block{Lo: 3})
	assert.Equal(t, dst[2], Block{Lo: 2})
}

func sliceOf(b [16]byte) []byte {
	return b[:]
}
