package mpc

import (
	"testing"

	"github.com/latticeforge/ringmpc/ring"
)

func testRing(t *testing.T) *ring.Ring {
	t.Helper()
	r, err := ring.NewRing(16, ring.Qi60[:2])
	if err != nil {
		t.Fatalf("ring.NewRing: %v", err)
	}
	return r
}

func TestSharesCombine(t *testing.T) {
	shares := NewShares(
		NewShare(uint64(3), 0),
		NewShare(uint64(5), 1),
		NewShare(uint64(9), 2),
	)
	if got := shares.Parties(); len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("Parties() = %v, want [0 1 2]", got)
	}

	sum := Combine(shares, uint64(0), func(acc, x uint64) uint64 { return acc + x })
	if sum != 17 {
		t.Fatalf("Combine sum = %d, want 17", sum)
	}
}

func TestSharesMap(t *testing.T) {
	shares := NewShares(NewShare(2, 0), NewShare(3, 1))
	doubled := Map(shares, func(v int) int { return v * 2 })
	if doubled.Items[0].Value != 4 || doubled.Items[1].Value != 6 {
		t.Fatalf("Map result = %+v, want values [4 6]", doubled.Items)
	}
	if doubled.Items[0].Party != 0 || doubled.Items[1].Party != 1 {
		t.Fatalf("Map must preserve party labels, got %+v", doubled.Items)
	}
}

func TestEncoderRoundTrip(t *testing.T) {
	r := testRing(t)
	enc := NewEncoder(r, 17)

	msg := make([]int64, r.N())
	for i := range msg {
		msg[i] = int64(i%17) - 8
	}

	ntt := enc.Encode(msg)
	got := enc.Decode(ntt)

	for i := range msg {
		if got[i] != msg[i] {
			t.Fatalf("Decode(Encode(msg))[%d] = %d, want %d", i, got[i], msg[i])
		}
	}
}

func TestKeyGenAndEncryptShapes(t *testing.T) {
	r := testRing(t)
	kg := NewKeyGenerator(r, 3)
	sk, pk := kg.GenKeyPair([]byte("test-seed"))

	levels := r.Level() + 1
	if sk.NTT.Len() != levels*r.N() {
		t.Fatalf("secret key NTT tensor length = %d, want %d", sk.NTT.Len(), levels*r.N())
	}
	if pk.A.Len() != levels*r.N() || pk.B.Len() != levels*r.N() {
		t.Fatalf("public key tensor lengths = (%d, %d), want %d each", pk.A.Len(), pk.B.Len(), levels*r.N())
	}

	enc := NewEncoder(r, 17)
	msg := make([]int64, r.N())
	msg[0] = 5
	m := enc.Encode(msg)
	zero := enc.Encode(make([]int64, r.N()))

	ct := Encrypt(r, pk, m, zero, []byte("enc-seed"), 3)
	if ct.C0.Len() != levels*r.N() || ct.C1.Len() != levels*r.N() {
		t.Fatalf("ciphertext component lengths = (%d, %d), want %d each", ct.C0.Len(), ct.C1.Len(), levels*r.N())
	}

	out := Decrypt(r, sk, ct)
	if out.Len() != levels*r.N() {
		t.Fatalf("decrypted tensor length = %d, want %d", out.Len(), levels*r.N())
	}
}

func TestCiphertextRescale(t *testing.T) {
	r := testRing(t)
	kg := NewKeyGenerator(r, 3)
	_, pk := kg.GenKeyPair([]byte("rescale-seed"))

	enc := NewEncoder(r, 17)
	m := enc.Encode(make([]int64, r.N()))
	zero := enc.Encode(make([]int64, r.N()))
	ct := Encrypt(r, pk, m, zero, []byte("rescale-enc-seed"), 3)

	rescaled := ct.Rescale(r)
	wantLen := r.Level() * r.N()
	if rescaled.C0.Len() != wantLen || rescaled.C1.Len() != wantLen {
		t.Fatalf("rescaled ciphertext lengths = (%d, %d), want %d each", rescaled.C0.Len(), rescaled.C1.Len(), wantLen)
	}
}

func TestGadgetCiphertextShapes(t *testing.T) {
	r := testRing(t)
	kg := NewKeyGenerator(r, 3)
	_, pk := kg.GenKeyPair([]byte("gadget-seed"))

	enc := NewEncoder(r, 17)
	pt := enc.Encode(make([]int64, r.N()))

	gc := NewGadgetCiphertext(r, pk, pt, []byte("gc-seed"), 3)
	levels := r.Level() + 1
	if len(gc.Rows) != levels {
		t.Fatalf("gadget ciphertext row count = %d, want %d", len(gc.Rows), levels)
	}

	a := enc.Encode(make([]int64, r.N()))
	out := ExternalProduct(r, gc, a)
	if out.C0.Len() != levels*r.N() || out.C1.Len() != levels*r.N() {
		t.Fatalf("external product result lengths = (%d, %d), want %d each", out.C0.Len(), out.C1.Len(), levels*r.N())
	}
}
