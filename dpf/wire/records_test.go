package wire

import (
	"testing"

	"gotest.tools/assert"
)

func TestMarshalUnmarshalKeyRecordRoundTrip(t *testing.T) {
	rec := KeyRecord{
		PartyBit:   true,
		Seed:       BlockRecord{Hi: 1, Lo: 2},
		ControlBit: false,
		CorrectionWords: []CorrectionWordRecord{
			{
				Seed:               BlockRecord{Hi: 3, Lo: 4},
				ControlLeft:        true,
				ControlRight:       false,
				ValueCorrection:    BlockRecord{Hi: 5, Lo: 6},
				HasValueCorrection: true,
			},
		},
		RootValueCorrection:      BlockRecord{Hi: 7, Lo: 8},
		HasRootValueCorrection:   true,
		LastLevelValueCorrection: BlockRecord{Hi: 9, Lo: 10},
	}

	data, err := Marshal(rec)
	assert.NilError(t, err)
	assert.Assert(t, len(data) > 0)

	var got KeyRecord
	assert.NilError(t, Unmarshal(data, &got))
	assert.Equal(t, got.PartyBit, rec.PartyBit)
	assert.Equal(t, got.Seed, rec.Seed)
	assert.Equal(t, len(got.CorrectionWords), 1)
	assert.Equal(t, got.CorrectionWords[0], rec.CorrectionWords[0])
	assert.Equal(t, got.RootValueCorrection, rec.RootValueCorrection)
	assert.Equal(t, got.HasRootValueCorrection, rec.HasRootValueCorrection)
	assert.Equal(t, got.LastLevelValueCorrection, rec.LastLevelValueCorrection)
}

func TestMarshalUnmarshalEvalContextRecordRoundTrip(t *testing.T) {
	rec := EvalContextRecord{
		Parameters: []ParametersRecord{
			{LogDomainSize: 2, ElementBitsize: 8},
			{LogDomainSize: 4, ElementBitsize: 8},
		},
		Key:            KeyRecord{PartyBit: false, Seed: BlockRecord{Lo: 42}},
		HierarchyLevel: 0,
		PartialEvaluations: []PartialEvaluationRecord{
			{Prefix: BlockRecord{Lo: 2}, Seed: BlockRecord{Lo: 99}, ControlBit: true},
		},
	}

	data, err := Marshal(rec)
	assert.NilError(t, err)

	var got EvalContextRecord
	assert.NilError(t, Unmarshal(data, &got))
	assert.Equal(t, len(got.Parameters), 2)
	assert.Equal(t, got.Parameters[1].LogDomainSize, uint32(4))
	assert.Equal(t, got.HierarchyLevel, int32(0))
	assert.Equal(t, len(got.PartialEvaluations), 1)
	assert.Equal(t, got.PartialEvaluations[0].Prefix, rec.PartialEvaluations[0].Prefix)
}
