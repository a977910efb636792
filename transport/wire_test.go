package transport

import (
	"reflect"
	"testing"
)

func TestEncodeDecodeLimbsRoundTrip(t *testing.T) {
	for _, width := range []LimbWidth{LimbWidth8, LimbWidth16, LimbWidth32, LimbWidth64} {
		limbs := []uint64{0, 1, 42, 255}
		mask := uint64(1)<<uint(width) - 1
		for i := range limbs {
			limbs[i] &= mask
		}

		data, err := EncodeLimbs(limbs, width)
		if err != nil {
			t.Fatalf("EncodeLimbs(width=%d): %v", width, err)
		}
		got, err := DecodeLimbs(data, width)
		if err != nil {
			t.Fatalf("DecodeLimbs(width=%d): %v", width, err)
		}
		if !reflect.DeepEqual(got, limbs) {
			t.Fatalf("round trip width=%d: got %v, want %v", width, got, limbs)
		}
	}
}

func TestDecodeLimbsRejectsWidthMismatch(t *testing.T) {
	data, err := EncodeLimbs([]uint64{1, 2, 3}, LimbWidth32)
	if err != nil {
		t.Fatalf("EncodeLimbs: %v", err)
	}
	if _, err := DecodeLimbs(data, LimbWidth64); err == nil {
		t.Fatal("DecodeLimbs must reject a limb-width mismatch")
	}
}

func TestDecodeLimbsRejectsEndiannessMismatch(t *testing.T) {
	data, err := EncodeLimbs([]uint64{1, 2, 3}, LimbWidth32)
	if err != nil {
		t.Fatalf("EncodeLimbs: %v", err)
	}
	data[0] ^= endiannessBit
	if _, err := DecodeLimbs(data, LimbWidth32); err == nil {
		t.Fatal("DecodeLimbs must reject an endianness mismatch")
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	b := Metadata(LimbWidth32)
	little, width := ParseMetadata(b)
	if little != hostIsLittleEndian() {
		t.Fatalf("ParseMetadata endianness = %v, want %v", little, hostIsLittleEndian())
	}
	if width != LimbWidth32 {
		t.Fatalf("ParseMetadata width = %d, want %d", width, LimbWidth32)
	}
}
