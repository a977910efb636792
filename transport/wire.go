package transport

import (
	"encoding/binary"
	"fmt"
)

// LimbWidth is the bit width of one wire limb (spec §6.3).
type LimbWidth int

const (
	LimbWidth8  LimbWidth = 8
	LimbWidth16 LimbWidth = 16
	LimbWidth32 LimbWidth = 32
	LimbWidth64 LimbWidth = 64
)

const endiannessBit = 0x80

// hostIsLittleEndian reports this process's native byte order, which the
// metadata byte's high bit records (1 = little-endian, spec §6.3).
func hostIsLittleEndian() bool {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 1)
	return buf[0] == 1
}

// Metadata packs the host's endianness (high bit) and width's limb bit
// width (low 7 bits) into a single byte.
func Metadata(width LimbWidth) byte {
	b := byte(width) & 0x7f
	if hostIsLittleEndian() {
		b |= endiannessBit
	}
	return b
}

// ParseMetadata splits a metadata byte into its endianness flag and limb
// width.
func ParseMetadata(b byte) (littleEndian bool, width LimbWidth) {
	return b&endiannessBit != 0, LimbWidth(b &^ endiannessBit)
}

func limbBytes(width LimbWidth) (int, error) {
	switch width {
	case LimbWidth8, LimbWidth16, LimbWidth32, LimbWidth64:
		return int(width) / 8, nil
	default:
		return 0, fmt.Errorf("transport: unsupported limb width %d", width)
	}
}

// EncodeLimbs serializes limbs as (metadata, limb-stream), per spec §6.3:
// a single-byte tag followed by each value packed to width bits in the
// host's own native byte order.
func EncodeLimbs(limbs []uint64, width LimbWidth) ([]byte, error) {
	n, err := limbBytes(width)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 1+n*len(limbs))
	out[0] = Metadata(width)
	for i, v := range limbs {
		off := 1 + i*n
		switch width {
		case LimbWidth8:
			out[off] = byte(v)
		case LimbWidth16:
			binary.NativeEndian.PutUint16(out[off:], uint16(v))
		case LimbWidth32:
			binary.NativeEndian.PutUint32(out[off:], uint32(v))
		case LimbWidth64:
			binary.NativeEndian.PutUint64(out[off:], v)
		}
	}
	return out, nil
}

// DecodeLimbs parses data produced by EncodeLimbs, rejecting a mismatched
// endianness or limb width against want — "the receiver rejects mismatched
// endianness or limb width" (spec §6.3).
func DecodeLimbs(data []byte, want LimbWidth) ([]uint64, error) {
	if len(data) < 1 {
		return nil, &Error{Kind: ErrSizeMismatch, Message: "wire payload missing metadata byte"}
	}
	little, width := ParseMetadata(data[0])
	if little != hostIsLittleEndian() {
		return nil, &Error{Kind: ErrVersionMismatch, Message: "wire payload endianness mismatch"}
	}
	if width != want {
		return nil, &Error{Kind: ErrSizeMismatch, Message: fmt.Sprintf("wire payload limb width %d, want %d", width, want)}
	}

	n, err := limbBytes(width)
	if err != nil {
		return nil, &Error{Kind: ErrSizeMismatch, Message: err.Error()}
	}
	body := data[1:]
	if len(body)%n != 0 {
		return nil, &Error{Kind: ErrSizeMismatch, Message: "wire payload length not a multiple of its limb width"}
	}

	out := make([]uint64, len(body)/n)
	for i := range out {
		off := i * n
		switch width {
		case LimbWidth8:
			out[i] = uint64(body[off])
		case LimbWidth16:
			out[i] = uint64(binary.NativeEndian.Uint16(body[off:]))
		case LimbWidth32:
			out[i] = uint64(binary.NativeEndian.Uint32(body[off:]))
		case LimbWidth64:
			out[i] = binary.NativeEndian.Uint64(body[off:])
		}
	}
	return out, nil
}
