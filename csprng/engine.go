// Package csprng implements the random engine of spec §4.8: a ChaCha20
// counter-mode keystream (the same primitive utils/sampling already keys
// for the multiparty CRS) plus the derived distributions the rest of the
// module samples from — uniform limbs, uniform residues, binomial,
// centered binomial, and drowned uniform.
package csprng

import (
	"crypto/rand"
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

// Engine is a seeded ChaCha20 stream: block() mixes the 16-word state via
// 10 double-rounds, adds the original state back in, and post-increments
// the counter; uniform(dst) streams keystream words into dst, refilling the
// internal 64-byte block buffer whenever it is drained. golang.org/x/crypto/
// chacha20 already implements that block function (RFC 8439 layout: 8-word
// key, 3-word nonce, 1-word counter, k=3 in spec's k∈{1,2,3} notation); this
// type wraps it rather than re-deriving double_round by hand, exactly as
// utils/sampling.KeyedPRNG already does for the OS- and key-seeded cases.
type Engine struct {
	key   [chacha20.KeySize]byte
	nonce [chacha20.NonceSize]byte
	c     *chacha20.Cipher
}

// NewEngine constructs an Engine from an explicit 32-byte key and up-to-
// 12-byte nonce (zero-padded if shorter), so two parties agreeing on a key
// and nonce derive identical streams independently — the basis of the
// multiparty common reference string.
func NewEngine(key, nonce []byte) (*Engine, error) {
	e := &Engine{}
	copy(e.key[:], key)
	copy(e.nonce[:], nonce)
	return e, e.Reset()
}

// NewEngineFromSeed is a convenience constructor for an Engine seeded from
// the OS CSPRNG, with the standard (zero) nonce.
func NewEngineFromSeed() (*Engine, error) {
	var key [chacha20.KeySize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, err
	}
	return NewEngine(key[:], nil)
}

// Reset rewinds the stream to counter zero.
func (e *Engine) Reset() error {
	c, err := chacha20.NewUnauthenticatedCipher(e.key[:], e.nonce[:])
	if err != nil {
		return err
	}
	e.c = c
	return nil
}

// SetCounter fast-forwards the stream to the given block counter, deriving
// disjoint substreams for distinct linear indices (spec §4.10 step 5: a
// work-item's PRNG state has its counter derived from the linear index).
func (e *Engine) SetCounter(counter uint32) {
	e.c.SetCounter(counter)
}

// uniform streams len(dst) keystream bytes into dst.
func (e *Engine) uniform(dst []byte) {
	for i := range dst {
		dst[i] = 0
	}
	e.c.XORKeyStream(dst, dst)
}

// uint64s fills dst with uniformly random uint64 words from the keystream.
func (e *Engine) uint64s(dst []uint64) {
	buf := make([]byte, 8*len(dst))
	e.uniform(buf)
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint64(buf[i*8 : i*8+8])
	}
}
