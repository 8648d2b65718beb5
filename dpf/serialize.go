package dpf

import (
	"github.com/elliotchance/orderedmap"

	"github.com/distributed-point-functions/dpf-go/dpf/wire"
)

func blockToRecord(b Block) wire.BlockRecord  { return wire.BlockRecord{Hi: b.Hi, Lo: b.Lo} }
func blockFromRecord(r wire.BlockRecord) Block { return Block{Hi: r.Hi, Lo: r.Lo} }

func paramsToRecord(p Parameters) wire.ParametersRecord {
	return wire.ParametersRecord{LogDomainSize: uint32(p.LogDomainSize), ElementBitsize: uint32(p.ElementBitsize)}
}

func paramsFromRecord(r wire.ParametersRecord) Parameters {
	return Parameters{LogDomainSize: int(r.LogDomainSize), ElementBitsize: int(r.ElementBitsize)}
}

func keyToRecord(k DpfKey) wire.KeyRecord {
	cws := make([]wire.CorrectionWordRecord, len(k.CorrectionWords))
	for i, cw := range k.CorrectionWords {
		cws[i] = wire.CorrectionWordRecord{
			Seed:               blockToRecord(cw.Seed),
			ControlLeft:        cw.ControlLeft,
			ControlRight:       cw.ControlRight,
			ValueCorrection:    blockToRecord(cw.ValueCorrection),
			HasValueCorrection: cw.HasValueCorrection,
		}
	}
	return wire.KeyRecord{
		PartyBit:                 k.PartyBit,
		Seed:                     blockToRecord(k.Seed),
		ControlBit:               k.ControlBit,
		CorrectionWords:          cws,
		RootValueCorrection:      blockToRecord(k.RootValueCorrection),
		HasRootValueCorrection:   k.HasRootValueCorrection,
		LastLevelValueCorrection: blockToRecord(k.LastLevelValueCorrection),
	}
}

func keyFromRecord(r wire.KeyRecord) DpfKey {
	cws := make([]CorrectionWord, len(r.CorrectionWords))
	for i, cw := range r.CorrectionWords {
		cws[i] = CorrectionWord{
			Seed:               blockFromRecord(cw.Seed),
			ControlLeft:        cw.ControlLeft,
			ControlRight:       cw.ControlRight,
			ValueCorrection:    blockFromRecord(cw.ValueCorrection),
			HasValueCorrection: cw.HasValueCorrection,
		}
	}
	return DpfKey{
		PartyBit:                 r.PartyBit,
		Seed:                     blockFromRecord(r.Seed),
		ControlBit:               r.ControlBit,
		CorrectionWords:          cws,
		RootValueCorrection:      blockFromRecord(r.RootValueCorrection),
		HasRootValueCorrection:   r.HasRootValueCorrection,
		LastLevelValueCorrection: blockFromRecord(r.LastLevelValueCorrection),
	}
}

// MarshalBinary implements encoding.BinaryMarshaler over the dpf/wire
// record schema.
func (k DpfKey) MarshalBinary() ([]byte, error) {
	data, err := wire.Marshal(keyToRecord(k))
	if err != nil {
		return nil, newError(Internal, "marshaling DpfKey: %w", err)
	}
	return data, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler over the dpf/wire
// record schema.
func (k *DpfKey) UnmarshalBinary(data []byte) error {
	var r wire.KeyRecord
	if err := wire.Unmarshal(data, &r); err != nil {
		return newError(Internal, "unmarshaling DpfKey: %w", err)
	}
	*k = keyFromRecord(r)
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler, capturing everything
// needed to resume evaluation after a round trip: the parameter list
// (so the resumed context doesn't need the original *DistributedPointFunction
// passed back in separately), the key, the current hierarchy level and the
// pruned set of partial evaluations.
func (ctx *EvaluationContext) MarshalBinary() ([]byte, error) {
	params := make([]wire.ParametersRecord, len(ctx.dpf.params))
	for i, p := range ctx.dpf.params {
		params[i] = paramsToRecord(p)
	}
	var pe []wire.PartialEvaluationRecord
	for e := ctx.partialEvaluations.Front(); e != nil; e = e.Next() {
		pe = append(pe, wire.PartialEvaluationRecord{
			Prefix:     blockToRecord(e.Key.(Block)),
			Seed:       blockToRecord(e.Value.(partialEvaluation).seed),
			ControlBit: e.Value.(partialEvaluation).controlBit == 1,
		})
	}
	data, err := wire.Marshal(wire.EvalContextRecord{
		Parameters:         params,
		Key:                keyToRecord(ctx.key),
		HierarchyLevel:     int32(ctx.hierarchyLevel),
		PartialEvaluations: pe,
	})
	if err != nil {
		return nil, newError(Internal, "marshaling EvaluationContext: %w", err)
	}
	return data, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It rebuilds the
// DistributedPointFunction the context ran under from the serialized
// parameter list, so a round-tripped context evaluates identically to the
// original without the caller having to keep the original instance alive.
func (ctx *EvaluationContext) UnmarshalBinary(data []byte) error {
	var r wire.EvalContextRecord
	if err := wire.Unmarshal(data, &r); err != nil {
		return newError(Internal, "unmarshaling EvaluationContext: %w", err)
	}
	params := make([]Parameters, len(r.Parameters))
	for i, p := range r.Parameters {
		params[i] = paramsFromRecord(p)
	}
	d, err := CreateIncremental(params)
	if err != nil {
		return err
	}
	pe := orderedmap.NewOrderedMap()
	for _, e := range r.PartialEvaluations {
		cb := byte(0)
		if e.ControlBit {
			cb = 1
		}
		pe.Set(blockFromRecord(e.Prefix), partialEvaluation{seed: blockFromRecord(e.Seed), controlBit: cb})
	}
	ctx.dpf = d
	ctx.key = keyFromRecord(r.Key)
	ctx.hierarchyLevel = int(r.HierarchyLevel)
	ctx.partialEvaluations = pe
	return nil
}
