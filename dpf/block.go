package dpf

import (
	"encoding/binary"

	"github.com/lukechampine/fastxor"
)

// Block is the 128-bit value carried at every node of the GGM tree: a seed,
// a correction word, or a packed value mask. It is stored as two 64-bit
// machine words rather than a byte slice so that XOR, AND and the control
// bit extraction used by the evaluator's hot loop stay register-sized.
type Block struct {
	Hi, Lo uint64
}

// ZeroBlock is the all-zero block.
var ZeroBlock = Block{}

// Xor returns a ^ b.
func (a Block) Xor(b Block) Block {
	return Block{a.Hi ^ b.Hi, a.Lo ^ b.Lo}
}

// And returns a & b.
func (a Block) And(b Block) Block {
	return Block{a.Hi & b.Hi, a.Lo & b.Lo}
}

// Lsb returns the least-significant control bit of the block.
func (a Block) Lsb() byte {
	return byte(a.Lo & 1)
}

// ClearLsb returns a copy of the block with its control bit zeroed, the way
// a seed is normalized before it is used as a PRG input.
func (a Block) ClearLsb() Block {
	return Block{a.Hi, a.Lo &^ 1}
}

// Mod masks the block to its low k bits, interpreted as an unsigned integer,
// for k in {1,2,4,8,16,32,64,128}. It is used wherever a block is read as an
// element value of a given bit width.
func (a Block) Mod(k int) Block {
	switch {
	case k >= 128:
		return a
	case k >= 64:
		return Block{a.Hi & (uint64(1)<<(uint(k)-64) - 1), a.Lo}
	case k == 0:
		return ZeroBlock
	default:
		return Block{0, a.Lo & (uint64(1)<<uint(k) - 1)}
	}
}

// Shr shifts the block right by n bits, treating it as a 128-bit unsigned
// integer. It is used to drop a prefix's newly-added low-order bits when
// truncating it down to a shorter, earlier hierarchy's width.
func (a Block) Shr(n int) Block {
	switch {
	case n <= 0:
		return a
	case n >= 128:
		return ZeroBlock
	case n >= 64:
		return Block{Hi: 0, Lo: a.Hi >> uint(n-64)}
	default:
		return Block{Hi: a.Hi >> uint(n), Lo: (a.Lo >> uint(n)) | (a.Hi << uint(64-n))}
	}
}

// Bit returns bit i of the block (0 = least significant).
func (a Block) Bit(i int) byte {
	if i >= 64 {
		return byte((a.Hi >> uint(i-64)) & 1)
	}
	return byte((a.Lo >> uint(i)) & 1)
}

// Bytes returns the 16-byte big-endian encoding of the block: bytes[0:8] is
// Hi, bytes[8:16] is Lo. This is the layout handed to the PRG and the wire
// codec.
func (a Block) Bytes() [16]byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], a.Hi)
	binary.BigEndian.PutUint64(b[8:16], a.Lo)
	return b
}

// BlockFromBytes is the inverse of Bytes.
func BlockFromBytes(b []byte) Block {
	return Block{
		Hi: binary.BigEndian.Uint64(b[0:8]),
		Lo: binary.BigEndian.Uint64(b[8:16]),
	}
}

// XorBlocks XORs src into dst in place, over the first min(len(dst),
// len(src)) blocks, batching the underlying byte XOR with
// fastxor the way the teacher batches its row XORs in pir.go/prp.go.
func XorBlocks(dst []Block, src []Block) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	db := make([]byte, 16*n)
	sb := make([]byte, 16*n)
	for i := 0; i < n; i++ {
		bd := dst[i].Bytes()
		bs := src[i].Bytes()
		copy(db[16*i:], bd[:])
		copy(sb[16*i:], bs[:])
	}
	fastxor.Bytes(db, db, sb)
	for i := 0; i < n; i++ {
		dst[i] = BlockFromBytes(db[16*i : 16*i+16])
	}
}
