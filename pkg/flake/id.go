package flake

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"time"
)

const (
	// NodeBits is the width of the node field.
	NodeBits = 48
	// SequenceBits is the width of the sequence field.
	SequenceBits = 16

	// MaxNode is the largest node identifier that fits in an ID.
	MaxNode = 1<<NodeBits - 1
	// MaxSequence is the largest sequence number within one millisecond.
	MaxSequence = 1<<SequenceBits - 1

	// Size is the length of the raw byte representation.
	Size = 16
)

// ID is a 128-bit flake identifier.
// The zero value is Nil. IDs are comparable with == and ordered by Compare.
type ID struct {
	hi uint64 // timestamp
	lo uint64 // node << 16 | sequence
}

// Nil is the zero ID.
var Nil ID

// Pack combines a timestamp, node and sequence number into an ID.
// Only the low 48 bits of node are used.
func Pack(timestamp, node uint64, seq uint16) ID {
	// The fields never overlap, so XOR is the same as OR here.
	return ID{
		hi: timestamp,
		lo: (node&MaxNode)<<SequenceBits ^ uint64(seq),
	}
}

// FromUint64s creates an ID from the upper and lower 64 bits of its value.
func FromUint64s(hi, lo uint64) ID { return ID{hi: hi, lo: lo} }

// FromBig creates an ID from an unsigned integer of at most 128 bits.
func FromBig(v *big.Int) (ID, error) {
	if v.Sign() < 0 || v.BitLen() > 128 {
		return Nil, fmt.Errorf("flake: %s does not fit in 128 bits", v)
	}
	var buf [Size]byte
	v.FillBytes(buf[:])
	return fromBigEndian(buf), nil
}

// Hi returns the upper 64 bits of the ID, which is the timestamp.
func (id ID) Hi() uint64 { return id.hi }

// Lo returns the lower 64 bits of the ID.
func (id ID) Lo() uint64 { return id.lo }

// Big returns the raw value of the ID as a big integer.
func (id ID) Big() *big.Int {
	b := id.bigEndian()
	return new(big.Int).SetBytes(b[:])
}

// Timestamp returns the number of milliseconds since the Unix epoch at which
// the ID was generated.
func (id ID) Timestamp() uint64 { return id.hi }

// Time returns the generation time of the ID.
// Timestamps beyond the range of int64 milliseconds are clamped.
func (id ID) Time() time.Time {
	ms := id.hi
	if ms > 1<<63-1 {
		ms = 1<<63 - 1
	}
	return time.UnixMilli(int64(ms)).UTC()
}

// Node returns the identifier of the node that produced the ID.
func (id ID) Node() uint64 { return id.lo >> SequenceBits }

// Sequence returns the sequence number of the ID.
func (id ID) Sequence() uint16 { return uint16(id.lo) }

// IsNil reports whether id is the zero ID.
func (id ID) IsNil() bool { return id == Nil }

// Compare returns -1, 0 or +1 depending on whether id is less than, equal to or
// greater than other.
func (id ID) Compare(other ID) int {
	switch {
	case id.hi < other.hi:
		return -1
	case id.hi > other.hi:
		return 1
	case id.lo < other.lo:
		return -1
	case id.lo > other.lo:
		return 1
	}
	return 0
}

// Less reports whether id sorts before other.
func (id ID) Less(other ID) bool { return id.Compare(other) < 0 }

// Bytes returns the raw value of the ID in little-endian byte order.
// It is meant for local storage; use String for anything that crosses
// process boundaries.
func (id ID) Bytes() [Size]byte {
	var b [Size]byte
	binary.LittleEndian.PutUint64(b[:8], id.lo)
	binary.LittleEndian.PutUint64(b[8:], id.hi)
	return b
}

// FromBytes creates an ID from a little-endian byte array as returned by Bytes.
func FromBytes(b [Size]byte) ID {
	return ID{
		lo: binary.LittleEndian.Uint64(b[:8]),
		hi: binary.LittleEndian.Uint64(b[8:]),
	}
}

func (id ID) bigEndian() [Size]byte {
	var b [Size]byte
	binary.BigEndian.PutUint64(b[:8], id.hi)
	binary.BigEndian.PutUint64(b[8:], id.lo)
	return b
}

func fromBigEndian(b [Size]byte) ID {
	return ID{
		hi: binary.BigEndian.Uint64(b[:8]),
		lo: binary.BigEndian.Uint64(b[8:]),
	}
}
