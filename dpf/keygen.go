package dpf

import (
	"io"

	"lukechampine.com/uint128"
)

// randomBlock reads 16 bytes from rand and interprets them as a Block. It
// is the only place key generation touches the injected randomness source.
func randomBlock(rand io.Reader) (Block, error) {
	var b [16]byte
	if _, err := io.ReadFull(rand, b[:]); err != nil {
		return Block{}, newError(Internal, "reading random seed: %w", err)
	}
	return BlockFromBytes(b[:]), nil
}

func fitsInBits(v uint128.Uint128, bits int) bool {
	if bits >= 128 {
		return true
	}
	return v.Cmp(shiftLeft(uint128.From64(1), uint(bits))) < 0
}

// GenerateKeys produces a pair of keys for a single-level (non-incremental)
// DPF. Returns InvalidArgument if this DPF was built with more than one
// set of parameters.
func (d *DistributedPointFunction) GenerateKeys(rand io.Reader, alpha uint128.Uint128, beta uint128.Uint128) (DpfKey, DpfKey, error) {
	if len(d.params) != 1 {
		return DpfKey{}, DpfKey{}, newError(InvalidArgument, "GenerateKeys requires a single-level DPF; use GenerateKeysIncremental")
	}
	return d.GenerateKeysIncremental(rand, alpha, []uint128.Uint128{beta})
}

// GenerateKeysIncremental produces a pair of keys for an incremental DPF
// that shares beta[i] at the log_domain_size_i-bit prefix of alpha, for
// every hierarchy level i. It consults rand exactly twice, once per party's
// initial seed, per spec.md section 5's randomness-budget requirement.
func (d *DistributedPointFunction) GenerateKeysIncremental(rand io.Reader, alpha uint128.Uint128, beta []uint128.Uint128) (DpfKey, DpfKey, error) {
	if len(beta) != len(d.params) {
		return DpfKey{}, DpfKey{}, newError(InvalidArgument, "beta has %d elements, want %d", len(beta), len(d.params))
	}
	lastDomainBits := d.params[len(d.params)-1].LogDomainSize
	if !fitsInBits(alpha, lastDomainBits) {
		return DpfKey{}, DpfKey{}, newError(InvalidArgument, "alpha does not fit in %d bits", lastDomainBits)
	}
	for i, p := range d.params {
		if !fitsInBits(beta[i], p.ElementBitsize) {
			return DpfKey{}, DpfKey{}, newError(InvalidArgument, "beta[%d] does not fit in %d bits", i, p.ElementBitsize)
		}
	}

	alphaBlock := uint128ToBlock(alpha)

	seedA, err := randomBlock(rand)
	if err != nil {
		return DpfKey{}, DpfKey{}, err
	}
	seedB, err := randomBlock(rand)
	if err != nil {
		return DpfKey{}, DpfKey{}, err
	}
	initialSeedA, initialSeedB := seedA, seedB

	tm := d.tm
	cws := make([]CorrectionWord, tm.treeLevelsNeeded)

	var cbA, cbB byte = 0, 1
	var rootValueCorrection Block
	var hasRootValueCorrection bool
	var lastLevelValueCorrection Block

	for i, p := range d.params {
		// alphaLocal is alpha's top log_domain_size_i bits, right-aligned
		// into a log_domain_size_i-bit value: the same local representation
		// a caller's matching EvaluateNext prefix at this hierarchy would
		// use, so the tree walk and packing slot below read it with the
		// exact bit positions treeMapping computed for that representation.
		alphaLocal := alphaBlock.Shr(lastDomainBits - p.LogDomainSize)

		tStart, tEnd := tm.treeLevelSpan(i)
		for t := tStart; t < tEnd; t++ {
			pos := tm.bitPosition[t]
			alphaBit := alphaLocal.Bit(pos)

			sLA := prgLeft.expand(seedA)
			sRA := prgRight.expand(seedA)
			sLB := prgLeft.expand(seedB)
			sRB := prgRight.expand(seedB)
			cbLA, cbRA := sLA.Lsb(), sRA.Lsb()
			cbLB, cbRB := sLB.Lsb(), sRB.Lsb()

			var cwSeed Block
			if alphaBit == 0 {
				cwSeed = sRA.Xor(sRB)
			} else {
				cwSeed = sLA.Xor(sLB)
			}
			cwL := cbLA ^ cbLB ^ alphaBit ^ 1
			cwR := cbRA ^ cbRB ^ alphaBit

			var childSeedA, childSeedB Block
			var childCbA, childCbB byte
			var sideCw byte
			if alphaBit == 0 {
				childSeedA, childCbA = sLA, cbLA
				childSeedB, childCbB = sLB, cbLB
				sideCw = cwL
			} else {
				childSeedA, childCbA = sRA, cbRA
				childSeedB, childCbB = sRB, cbRB
				sideCw = cwR
			}
			if cbA == 1 {
				childSeedA = childSeedA.Xor(cwSeed)
				childCbA ^= sideCw
			}
			if cbB == 1 {
				childSeedB = childSeedB.Xor(cwSeed)
				childCbB ^= sideCw
			}

			seedA, cbA = childSeedA, childCbA
			seedB, cbB = childSeedB, childCbB

			cws[t] = CorrectionWord{
				Seed:         cwSeed,
				ControlLeft:  cwL == 1,
				ControlRight: cwR == 1,
			}
		}

		valueCorrection, err := computeValueCorrection(p.ElementBitsize, seedA, seedB, cbB == 1, tm.packingSlot(i, alphaLocal), beta[i])
		if err != nil {
			return DpfKey{}, DpfKey{}, err
		}
		switch {
		case i == len(d.params)-1:
			lastLevelValueCorrection = valueCorrection
		case tm.hierarchyIsRootBound(i):
			rootValueCorrection = valueCorrection
			hasRootValueCorrection = true
		default:
			cws[tm.hierarchyToTree[i]].ValueCorrection = valueCorrection
			cws[tm.hierarchyToTree[i]].HasValueCorrection = true
		}
	}

	keyA := DpfKey{
		PartyBit:                 false,
		Seed:                     initialSeedA,
		ControlBit:               false,
		CorrectionWords:          cws,
		RootValueCorrection:      rootValueCorrection,
		HasRootValueCorrection:   hasRootValueCorrection,
		LastLevelValueCorrection: lastLevelValueCorrection,
	}
	keyB := DpfKey{
		PartyBit:                 true,
		Seed:                     initialSeedB,
		ControlBit:               true,
		CorrectionWords:          cws,
		RootValueCorrection:      rootValueCorrection,
		HasRootValueCorrection:   hasRootValueCorrection,
		LastLevelValueCorrection: lastLevelValueCorrection,
	}
	return keyA, keyB, nil
}

// computeValueCorrection builds the value-correction block for one
// hierarchy boundary, following the original DPF's
// ComputeValueCorrectionFor<T>: the two parties' prg_value outputs are
// combined element-wise (never as a raw 128-bit XOR, since that would let
// one slot's correction bleed into its neighbor), beta is added into the
// slot alpha lands in, and the whole vector is negated when party B is the
// one holding the path's "1" control bit so that the later, unconditional
// negation of party B's extracted share at evaluation time stays
// consistent.
func computeValueCorrection(elementBitsize int, seedAOnPath, seedBOnPath Block, partyBHoldsOne bool, slot int, beta uint128.Uint128) (Block, error) {
	uA := prgValue.expand(seedAOnPath)
	uB := prgValue.expand(seedBOnPath)

	base, err := packedSub(uB, uA, elementBitsize)
	if err != nil {
		return Block{}, err
	}
	cur, err := unpackSlot(base, elementBitsize, slot)
	if err != nil {
		return Block{}, err
	}
	base, err = packSlot(base, elementBitsize, slot, cur.AddWrap(beta))
	if err != nil {
		return Block{}, err
	}
	if partyBHoldsOne {
		base, err = packedNegate(base, elementBitsize)
		if err != nil {
			return Block{}, err
		}
	}
	return base, nil
}
