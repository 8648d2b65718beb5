package dpf

import "math/bits"

// Parameters describes one hierarchy level of an (incremental) DPF: the
// domain size and output element width at that level, per spec.md section 3.
type Parameters struct {
	LogDomainSize  int
	ElementBitsize int
}

var supportedBitsizes = map[int]bool{
	1: true, 2: true, 4: true, 8: true,
	16: true, 32: true, 64: true, 128: true,
}

// packingFactor returns floor(log2(128/b)), the number of low-order domain
// bits at a hierarchy boundary that one packed value-correction block can
// resolve without any further GGM-tree expansion.
func packingFactor(elementBitsize int) int {
	return 7 - bits.Len(uint(elementBitsize)) + 1
}

// treeMapping is the validated, derived shape of an (incremental) DPF's
// evaluation tree: spec.md section 3's "derived invariants after
// validation".
type treeMapping struct {
	params []Parameters

	treeLevelsNeeded int
	hierarchyToTree  []int       // len(params); -1 means "at the root, before any tree level"
	treeToHierarchy  map[int]int // tree level -> hierarchy index (intermediate hierarchies only)

	// levels[i] is the number of tree levels consumed walking from the
	// previous hierarchy boundary to hierarchy i's boundary.
	levels []int
	// packingBits[i] is the number of low-order domain bits at hierarchy i
	// resolved by packing rather than by tree expansion.
	packingBits []int
	// prevLog[i] is log_domain_size_{i-1}, or 0 for i==0: the bit position
	// at which hierarchy i's own span begins.
	prevLog []int

	// bitPosition[t] is the bit index, within the local (hierarchy-i-width,
	// low-aligned) representation of a prefix at hierarchy i, that tree
	// level t resolves, walking MSB-first through the bits of that prefix no
	// earlier tree level has resolved, including the low bits an earlier
	// hierarchy resolved only by packing.
	bitPosition []int
	// treeOwner[t] is the hierarchy index whose span tree level t belongs
	// to.
	treeOwner []int
}

// packingSlot returns the packing-block slot that prefix x occupies at
// hierarchy i. x must already be in hierarchy i's own local, low-aligned
// representation (an log_domain_size_i-bit value, exactly the form both
// EvaluateNext's prefix argument and GenerateKeysIncremental's per-hierarchy
// view of alpha use): the packing bits are the lowest packingBits[i] bits
// of x, the ones no tree level resolves, read low-bit-first as an unsigned
// integer.
func (tm *treeMapping) packingSlot(i int, x Block) int {
	slot := 0
	for k := 0; k < tm.packingBits[i]; k++ {
		if x.Bit(k) != 0 {
			slot |= 1 << uint(k)
		}
	}
	return slot
}

// validateParameters checks spec.md section 4.1's rules.
func validateParameters(params []Parameters) error {
	if len(params) == 0 {
		return newError(InvalidArgument, "parameter list must be non-empty")
	}
	prevLog := -1
	prevBits := 0
	for i, p := range params {
		if p.LogDomainSize < 0 || p.LogDomainSize > 128 {
			return newError(InvalidArgument, "parameters[%d]: log_domain_size %d out of range [0,128]", i, p.LogDomainSize)
		}
		if p.LogDomainSize <= prevLog {
			return newError(InvalidArgument, "parameters[%d]: log_domain_size %d must be strictly increasing (previous %d)", i, p.LogDomainSize, prevLog)
		}
		if !supportedBitsizes[p.ElementBitsize] {
			return newError(InvalidArgument, "parameters[%d]: element_bitsize %d is not one of {1,2,4,8,16,32,64,128}", i, p.ElementBitsize)
		}
		if p.ElementBitsize < prevBits {
			return newError(InvalidArgument, "parameters[%d]: element_bitsize %d must be non-decreasing (previous %d)", i, p.ElementBitsize, prevBits)
		}
		prevLog = p.LogDomainSize
		prevBits = p.ElementBitsize
	}
	return nil
}

// newTreeMapping builds the tree-to-hierarchy mapping described in
// spec.md section 4.1. Packing lets a hierarchy boundary land without
// consuming any new tree level (when its remaining span fits entirely in
// the packing capacity of its element width); to keep every correction
// word bound to at most one hierarchy, every hierarchy after the first is
// guaranteed at least one dedicated tree level. Only the very first
// hierarchy may have its value correction resolved entirely at the root
// (hierarchyToTree[0] == -1), which covers the log_domain_size=0
// single-point-domain boundary case and small domains that fit inside one
// packed block with no tree walk at all. Each hierarchy's tree walk starts
// at the first bit of its prefix that no earlier tree level resolved, so
// bits an earlier hierarchy resolved by packing are walked by the tree at a
// later hierarchy. This resolves one of spec.md's
// open questions about exact tree depth and is recorded in DESIGN.md.
func newTreeMapping(params []Parameters) *treeMapping {
	tm := &treeMapping{
		params:          params,
		hierarchyToTree: make([]int, len(params)),
		treeToHierarchy: make(map[int]int),
		levels:          make([]int, len(params)),
		packingBits:     make([]int, len(params)),
		prevLog:         make([]int, len(params)),
	}

	var bitPosition, treeOwner []int
	cum := 0
	prevLog := 0
	for i, p := range params {
		span := p.LogDomainSize - cum // bits of this prefix no tree level has walked yet
		pf := packingFactor(p.ElementBitsize)
		var levels int
		if i == 0 {
			levels = span - pf
			if levels < 0 {
				levels = 0
			}
		} else {
			levels = span - pf
			if levels < 1 {
				levels = 1
			}
		}
		if levels > span {
			levels = span
		}
		tm.levels[i] = levels
		tm.packingBits[i] = span - levels
		tm.prevLog[i] = prevLog
		for s := 0; s < levels; s++ {
			bitPosition = append(bitPosition, span-1-s)
			treeOwner = append(treeOwner, i)
		}
		cum += levels
		tm.hierarchyToTree[i] = cum - 1
		if i < len(params)-1 && cum-1 >= 0 {
			tm.treeToHierarchy[cum-1] = i
		}
		prevLog = p.LogDomainSize
	}
	tm.treeLevelsNeeded = cum
	tm.bitPosition = bitPosition
	tm.treeOwner = treeOwner
	return tm
}

// treeLevelSpan returns the half-open range [start,end) of tree levels
// walked while producing hierarchy i, given the previous hierarchy's
// final tree level.
func (tm *treeMapping) treeLevelSpan(i int) (start, end int) {
	start = 0
	if i > 0 {
		start = tm.hierarchyToTree[i-1] + 1
	}
	end = tm.hierarchyToTree[i] + 1
	if end < start {
		end = start
	}
	return start, end
}

// hierarchyIsRootBound reports whether hierarchy i's value correction must
// be computed directly from the root seeds (no tree walk at all) rather
// than from a CorrectionWord or LastLevelValueCorrection.
func (tm *treeMapping) hierarchyIsRootBound(i int) bool {
	return tm.hierarchyToTree[i] == -1
}
