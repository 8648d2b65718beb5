package dpf

import (
	"github.com/elliotchance/orderedmap"
	"lukechampine.com/uint128"
)

// partialEvaluation is the state stored per prefix between EvaluateNext
// calls: the GGM-tree seed and control bit reached by that prefix's path
// at the end of the most recently consumed hierarchy level.
type partialEvaluation struct {
	seed       Block
	controlBit byte
}

// EvaluationContext is a single-owner, mutable cursor over successive
// hierarchy levels of one DpfKey. Concurrent EvaluateNext calls on the
// same context are undefined, matching spec.md section 5: callers must
// serialize access the same way the teacher's EvaluationContext
// equivalents (pir_updatable.go's per-connection state) are never shared
// across goroutines without an external lock.
type EvaluationContext struct {
	dpf            *DistributedPointFunction
	key            DpfKey
	hierarchyLevel int

	// partialEvaluations maps a Block-valued prefix (read from its
	// low-order bits, width implied by hierarchyLevel) to the seed and
	// control bit its path reached. An *orderedmap.OrderedMap is used,
	// as the teacher uses for pir_updatable.go's key/value store, for
	// deterministic iteration order when MarshalBinary serializes the
	// context; lookups here are by direct Get, not by position.
	partialEvaluations *orderedmap.OrderedMap
}

// CreateEvaluationContext validates key against d's parameters and
// prepares it for successive EvaluateNext calls.
func (d *DistributedPointFunction) CreateEvaluationContext(key DpfKey) (*EvaluationContext, error) {
	if len(key.CorrectionWords) != d.tm.treeLevelsNeeded {
		return nil, newError(InvalidArgument, "key has %d correction words, want %d", len(key.CorrectionWords), d.tm.treeLevelsNeeded)
	}
	for t, cw := range key.CorrectionWords {
		i, isBoundary := d.tm.treeToHierarchy[t]
		wantValueCorrection := isBoundary && i != len(d.params)-1
		if cw.HasValueCorrection != wantValueCorrection {
			return nil, newError(InvalidArgument, "key's correction word at tree level %d has an incompatible value-correction layout", t)
		}
	}
	if d.tm.hierarchyIsRootBound(0) && len(d.params) > 1 && !key.HasRootValueCorrection {
		return nil, newError(InvalidArgument, "key is missing its root value correction")
	}

	pe := orderedmap.NewOrderedMap()
	pe.Set(ZeroBlock, partialEvaluation{seed: key.Seed, controlBit: b2byte(key.ControlBit)})
	return &EvaluationContext{
		dpf:                 d,
		key:                 key,
		hierarchyLevel:      -1,
		partialEvaluations: pe,
	}, nil
}

func b2byte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// evaluateNext is the shared, width-agnostic core of EvaluateNext<T>. It
// returns one output value per element of prefixes, in the same order.
//
// On the very first call (hierarchyLevel == -1), prefixes is not required to
// be empty: a caller may already narrow hierarchy 0 down to a pruned subset
// of its domain, exactly as it would at any later hierarchy. Hierarchy 0's
// lookup against partialEvaluations always succeeds regardless of what is
// supplied, because its 0-bit truncation of every candidate prefix collapses
// to the single root entry seeded by CreateEvaluationContext.
//
// Each supplied prefix is an n-bit value (n = this hierarchy's
// LogDomainSize) holding the top n bits alpha would have at full
// resolution; extending a previous call's m-bit prefix (m < n) means
// appending n-m new low-order bits, so recovering the prior, shorter prefix
// from the new one means shifting right by n-m, not masking its low bits.
func (ctx *EvaluationContext) evaluateNext(prefixes []uint128.Uint128, allowedBitsizes ...int) ([]uint128.Uint128, error) {
	d := ctx.dpf
	i := ctx.hierarchyLevel + 1
	if i >= len(d.params) {
		return nil, newError(FailedPrecondition, "EvaluateNext called after the last hierarchy level was consumed")
	}
	p := d.params[i]
	widthOK := false
	for _, w := range allowedBitsizes {
		if p.ElementBitsize == w {
			widthOK = true
			break
		}
	}
	if !widthOK {
		return nil, newError(InvalidArgument, "hierarchy %d has element_bitsize %d, incompatible with the requested output type", i, p.ElementBitsize)
	}

	prevBits := 0
	if i > 0 {
		prevBits = d.params[i-1].LogDomainSize
	}
	curBits := p.LogDomainSize

	prefixBlocks := make([]Block, len(prefixes))
	starts := make([]partialEvaluation, len(prefixes))
	for idx, prefix := range prefixes {
		if !fitsInBits(prefix, curBits) {
			return nil, newError(InvalidArgument, "prefix %d does not fit in %d bits", idx, curBits)
		}
		pb := uint128ToBlock(prefix)
		prefixBlocks[idx] = pb
		truncated := pb.Shr(curBits - prevBits)
		v, ok := ctx.partialEvaluations.Get(truncated)
		if !ok {
			return nil, newError(InvalidArgument, "prefix %d does not extend a previously supplied prefix", idx)
		}
		starts[idx] = v.(partialEvaluation)
	}

	tStart, tEnd := d.tm.treeLevelSpan(i)
	outputs := make([]uint128.Uint128, len(prefixes))
	next := orderedmap.NewOrderedMap()

	evalOne := func(prefix Block, start partialEvaluation) (partialEvaluation, uint128.Uint128, error) {
		seed, cb := start.seed, start.controlBit
		for t := tStart; t < tEnd; t++ {
			cw := d.key0CorrectionWord(ctx.key, t)
			bit := prefix.Bit(d.tm.bitPosition[t])
			var expanded Block
			if bit == 0 {
				expanded = prgLeft.expand(seed)
			} else {
				expanded = prgRight.expand(seed)
			}
			newCb := expanded.Lsb()
			if cb == 1 {
				expanded = expanded.Xor(cw.Seed)
				if bit == 0 {
					newCb ^= b2byte(cw.ControlLeft)
				} else {
					newCb ^= b2byte(cw.ControlRight)
				}
			}
			seed, cb = expanded, newCb
		}

		var valueCorrection Block
		switch {
		case i == len(d.params)-1:
			valueCorrection = ctx.key.LastLevelValueCorrection
		case d.tm.hierarchyIsRootBound(i):
			valueCorrection = ctx.key.RootValueCorrection
		default:
			valueCorrection = ctx.key.CorrectionWords[d.tm.hierarchyToTree[i]].ValueCorrection
		}

		maskBlock := prgValue.expand(seed)
		if cb == 1 {
			combined, err := packedAdd(maskBlock, valueCorrection, p.ElementBitsize)
			if err != nil {
				return partialEvaluation{}, uint128.Zero, err
			}
			maskBlock = combined
		}
		slot := d.tm.packingSlot(i, prefix)
		v, err := unpackSlot(maskBlock, p.ElementBitsize, slot)
		if err != nil {
			return partialEvaluation{}, uint128.Zero, err
		}
		if ctx.key.PartyBit {
			v = negateElement(v, p.ElementBitsize)
		}
		return partialEvaluation{seed: seed, controlBit: cb}, v, nil
	}

	for idx, prefix := range prefixBlocks {
		result, v, err := evalOne(prefix, starts[idx])
		if err != nil {
			return nil, err
		}
		outputs[idx] = v
		if i < len(d.params)-1 {
			next.Set(prefix, result)
		}
	}

	if i < len(d.params)-1 {
		ctx.partialEvaluations = next
	} else {
		ctx.partialEvaluations = orderedmap.NewOrderedMap()
	}
	ctx.hierarchyLevel = i
	return outputs, nil
}

// key0CorrectionWord is a small indirection so evalOne above reads
// correction words the same way regardless of which key produced them;
// kept as a method on *DistributedPointFunction so it can be extended to
// validate tree-level bounds in one place.
func (d *DistributedPointFunction) key0CorrectionWord(key DpfKey, t int) CorrectionWord {
	return key.CorrectionWords[t]
}

// EvaluateNextUint8 evaluates the next hierarchy level, which must have
// element_bitsize 1, 2, 4 or 8.
func (ctx *EvaluationContext) EvaluateNextUint8(prefixes []uint128.Uint128) ([]uint8, error) {
	vals, err := ctx.evaluateNext(prefixes, 1, 2, 4, 8)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, len(vals))
	for i, v := range vals {
		out[i] = uint8(v.Lo)
	}
	return out, nil
}

// EvaluateNextUint16 evaluates the next hierarchy level, which must have
// element_bitsize 16.
func (ctx *EvaluationContext) EvaluateNextUint16(prefixes []uint128.Uint128) ([]uint16, error) {
	vals, err := ctx.evaluateNext(prefixes, 16)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, len(vals))
	for i, v := range vals {
		out[i] = uint16(v.Lo)
	}
	return out, nil
}

// EvaluateNextUint32 evaluates the next hierarchy level, which must have
// element_bitsize 32.
func (ctx *EvaluationContext) EvaluateNextUint32(prefixes []uint128.Uint128) ([]uint32, error) {
	vals, err := ctx.evaluateNext(prefixes, 32)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(vals))
	for i, v := range vals {
		out[i] = uint32(v.Lo)
	}
	return out, nil
}

// EvaluateNextUint64 evaluates the next hierarchy level, which must have
// element_bitsize 64.
func (ctx *EvaluationContext) EvaluateNextUint64(prefixes []uint128.Uint128) ([]uint64, error) {
	vals, err := ctx.evaluateNext(prefixes, 64)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(vals))
	for i, v := range vals {
		out[i] = v.Lo
	}
	return out, nil
}

// EvaluateNextUint128 evaluates the next hierarchy level, which must have
// element_bitsize 128.
func (ctx *EvaluationContext) EvaluateNextUint128(prefixes []uint128.Uint128) ([]uint128.Uint128, error) {
	return ctx.evaluateNext(prefixes, 128)
}
