package dpf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/assert"
	"lukechampine.com/uint128"
)

func TestDpfKeyMarshalBinaryRoundTrip(t *testing.T) {
	d, err := Create(Parameters{LogDomainSize: 4, ElementBitsize: 32})
	assert.NilError(t, err)
	keyA, _, err := d.GenerateKeys(RandSource(), uint128.From64(5), uint128.From64(42))
	assert.NilError(t, err)

	data, err := keyA.MarshalBinary()
	assert.NilError(t, err)

	var got DpfKey
	assert.NilError(t, got.UnmarshalBinary(data))
	if diff := cmp.Diff(keyA, got); diff != "" {
		t.Fatalf("round-tripped key differs from original:\n%s", diff)
	}
}

// TestEvaluationContextMarshalBinaryRoundTrip checks that an evaluation
// context serialized mid-way through an incremental evaluation resumes
// and produces the same outputs a non-serialized context would.
func TestEvaluationContextMarshalBinaryRoundTrip(t *testing.T) {
	params := []Parameters{
		{LogDomainSize: 2, ElementBitsize: 8},
		{LogDomainSize: 4, ElementBitsize: 8},
	}
	d, err := CreateIncremental(params)
	assert.NilError(t, err)
	keyA, _, err := d.GenerateKeysIncremental(RandSource(), uint128.From64(11), []uint128.Uint128{uint128.From64(3), uint128.From64(7)})
	assert.NilError(t, err)

	ctx, err := d.CreateEvaluationContext(keyA)
	assert.NilError(t, err)
	_, err = ctx.EvaluateNextUint8([]uint128.Uint128{uint128.From64(2)})
	assert.NilError(t, err)

	data, err := ctx.MarshalBinary()
	assert.NilError(t, err)

	var resumed EvaluationContext
	assert.NilError(t, resumed.UnmarshalBinary(data))

	wantOut, err := ctx.EvaluateNextUint8([]uint128.Uint128{uint128.From64(11)})
	assert.NilError(t, err)
	gotOut, err := resumed.EvaluateNextUint8([]uint128.Uint128{uint128.From64(11)})
	assert.NilError(t, err)
	assert.Equal(t, gotOut[0], wantOut[0])
}
