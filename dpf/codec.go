package dpf

import "lukechampine.com/uint128"

// slotsPerBlock returns how many elements of the given bitsize fit in one
// 128-bit block.
func slotsPerBlock(elementBitsize int) int {
	return 128 / elementBitsize
}

// blockToUint128 and uint128ToBlock convert between this package's Block and
// lukechampine.com/uint128's Uint128, which is reused here as the
// authoritative wide-integer type for element values (it is already part of
// this retrieval pack via the privacy-sandbox DPF bindings' dependency
// tree, and saves hand-rolling 128-bit arithmetic for element_bitsize=128).
func blockToUint128(b Block) uint128.Uint128 {
	return uint128.New(b.Lo, b.Hi)
}

func uint128ToBlock(v uint128.Uint128) Block {
	return Block{Hi: v.Hi, Lo: v.Lo}
}

// shiftLeft shifts v left by n bits within a 128-bit value, the way a slot
// offset is applied when packing an element into a block.
func shiftLeft(v uint128.Uint128, n uint) uint128.Uint128 {
	if n == 0 {
		return v
	}
	if n >= 128 {
		return uint128.Zero
	}
	return v.Lsh(n)
}

func shiftRight(v uint128.Uint128, n uint) uint128.Uint128 {
	if n == 0 {
		return v
	}
	if n >= 128 {
		return uint128.Zero
	}
	return v.Rsh(n)
}

func lowMask(n uint) uint128.Uint128 {
	if n >= 128 {
		return uint128.Max
	}
	if n == 0 {
		return uint128.Zero
	}
	return shiftLeft(uint128.From64(1), n).Sub(uint128.From64(1))
}

// packSlot writes the low elementBitsize bits of value into slot `slot` of
// block, leaving every other slot untouched. It places beta into alpha's
// slot of a value correction (spec.md section 4.3's pack()) and assembles
// packedCombine's slot-wise results; unpackSlot is the reading side.
func packSlot(block Block, elementBitsize, slot int, value uint128.Uint128) (Block, error) {
	if !supportedBitsizes[elementBitsize] {
		return Block{}, newError(Unimplemented, "element_bitsize %d is not supported", elementBitsize)
	}
	n := slotsPerBlock(elementBitsize)
	if slot < 0 || slot >= n {
		return Block{}, newError(InvalidArgument, "slot %d out of range [0,%d)", slot, n)
	}
	offset := uint(elementBitsize * slot)
	mask := shiftLeft(lowMask(uint(elementBitsize)), offset)
	cur := blockToUint128(block)
	cur = cur.And(mask.Xor(uint128.Max))
	cur = cur.Or(shiftLeft(value.And(lowMask(uint(elementBitsize))), offset))
	return uint128ToBlock(cur), nil
}

// unpackSlot is the inverse of packSlot: it reads slot `slot` of block as an
// elementBitsize-wide unsigned integer.
func unpackSlot(block Block, elementBitsize, slot int) (uint128.Uint128, error) {
	if !supportedBitsizes[elementBitsize] {
		return uint128.Zero, newError(Unimplemented, "element_bitsize %d is not supported", elementBitsize)
	}
	n := slotsPerBlock(elementBitsize)
	if slot < 0 || slot >= n {
		return uint128.Zero, newError(InvalidArgument, "slot %d out of range [0,%d)", slot, n)
	}
	offset := uint(elementBitsize * slot)
	v := shiftRight(blockToUint128(block), offset)
	return v.And(lowMask(uint(elementBitsize))), nil
}

// negateElement returns the additive inverse of v modulo 2^elementBitsize,
// used for party B's output share per spec.md section 4.4 step 4.
func negateElement(v uint128.Uint128, elementBitsize int) uint128.Uint128 {
	mask := lowMask(uint(elementBitsize))
	v = v.And(mask)
	return mask.Sub(v).AddWrap(uint128.From64(1)).And(mask)
}

// packedCombine applies combine independently to every elementBitsize-wide
// slot of a and b, the way the original DPF's ComputeValueCorrectionFor<T>
// treats a block as a vector of n independent elements rather than as one
// 128-bit integer: the value-correction arithmetic must never let a carry
// cross a slot boundary.
func packedCombine(a, b Block, elementBitsize int, combine func(x, y uint128.Uint128) uint128.Uint128) (Block, error) {
	if !supportedBitsizes[elementBitsize] {
		return Block{}, newError(Unimplemented, "element_bitsize %d is not supported", elementBitsize)
	}
	n := slotsPerBlock(elementBitsize)
	out := ZeroBlock
	for s := 0; s < n; s++ {
		av, err := unpackSlot(a, elementBitsize, s)
		if err != nil {
			return Block{}, err
		}
		bv, err := unpackSlot(b, elementBitsize, s)
		if err != nil {
			return Block{}, err
		}
		out, err = packSlot(out, elementBitsize, s, combine(av, bv))
		if err != nil {
			return Block{}, err
		}
	}
	return out, nil
}

// packedAdd adds a and b slot-wise modulo 2^elementBitsize.
func packedAdd(a, b Block, elementBitsize int) (Block, error) {
	return packedCombine(a, b, elementBitsize, func(x, y uint128.Uint128) uint128.Uint128 {
		return x.AddWrap(y)
	})
}

// packedSub subtracts b from a slot-wise modulo 2^elementBitsize.
func packedSub(a, b Block, elementBitsize int) (Block, error) {
	return packedCombine(a, b, elementBitsize, func(x, y uint128.Uint128) uint128.Uint128 {
		return x.AddWrap(negateElement(y, elementBitsize))
	})
}

// packedNegate negates every slot of a modulo 2^elementBitsize.
func packedNegate(a Block, elementBitsize int) (Block, error) {
	return packedCombine(a, ZeroBlock, elementBitsize, func(x, _ uint128.Uint128) uint128.Uint128 {
		return negateElement(x, elementBitsize)
	})
}
