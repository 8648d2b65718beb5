// Package dpf implements a distributed point function: a cryptographic
// primitive that splits a point function f_{alpha,beta} into two keys such
// that evaluating either key at any domain point yields an additive share
// of f's output there. The incremental variant additionally exposes shares
// at each of several nested prefix lengths of alpha, one per hierarchy
// level.
package dpf

// DistributedPointFunction holds the validated parameters and derived tree
// mapping for one (possibly incremental) DPF. It is immutable after
// construction and safe for concurrent use: concurrent key generation and
// concurrent EvaluationContext creation from the same instance are safe,
// mirroring the immutable, read-shared DB handle pattern the teacher uses
// for its database connections.
type DistributedPointFunction struct {
	params []Parameters
	tm     *treeMapping
}

// Create builds a DPF evaluable only at its single output layer.
func Create(params Parameters) (*DistributedPointFunction, error) {
	return CreateIncremental([]Parameters{params})
}

// CreateIncremental builds an incremental DPF evaluable at each of the
// given hierarchy levels, in increasing domain-size order.
func CreateIncremental(params []Parameters) (*DistributedPointFunction, error) {
	if err := validateParameters(params); err != nil {
		return nil, err
	}
	cp := make([]Parameters, len(params))
	copy(cp, params)
	return &DistributedPointFunction{
		params: cp,
		tm:     newTreeMapping(cp),
	}, nil
}

// Parameters returns the validated parameter list this DPF was built from.
// The returned slice must not be modified.
func (d *DistributedPointFunction) Parameters() []Parameters {
	return d.params
}
