package wire

import "github.com/ugorji/go/codec"

// Handle returns the codec.Handle every record in this package is
// marshaled with: a Binc handle configured exactly like the teacher's
// rpc.CodecHandle, so DpfKey and EvaluationContext round-trip over the
// same wire convention the teacher's RPC layer uses for its own payloads.
func Handle() codec.Handle {
	h := codec.BincHandle{}
	h.StructToArray = true
	h.OptimumSize = true
	return &h
}

// Marshal encodes v with Handle().
func Marshal(v interface{}) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, Handle())
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf, nil
}

// Unmarshal decodes data into v with Handle().
func Unmarshal(data []byte, v interface{}) error {
	dec := codec.NewDecoderBytes(data, Handle())
	return dec.Decode(v)
}
