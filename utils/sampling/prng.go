// Package sampling provides the cryptographically secure randomness source
// consumed throughout the module: a ChaCha20 counter-mode stream exposed as
// an io.Reader, either seeded from the OS CSPRNG (NewPRNG, used for local
// sampling) or from an explicit shared key (NewKeyedPRNG, used to derive a
// common reference string across multiparty participants).
package sampling

import (
	"crypto/rand"
	"io"

	mrand "math/rand"

	"golang.org/x/crypto/chacha20"
)

// PRNG is any source of cryptographically secure random bytes.
type PRNG interface {
	io.Reader
}

// KeyedPRNG is a ChaCha20 keystream keyed by a caller-provided or
// OS-randomly-generated 32-byte key. Reset rewinds the stream to its
// initial state, letting two parties that agree on a key derive identical
// randomness independently (the basis of the multiparty CRS).
type KeyedPRNG struct {
	key    [chacha20.KeySize]byte
	cipher *chacha20.Cipher
}

// NewKeyedPRNG constructs a KeyedPRNG from key, which is zero-padded or
// truncated to the cipher's 32-byte key size if it is not exactly that
// length (tolerant of short human-supplied seeds).
func NewKeyedPRNG(key []byte) (*KeyedPRNG, error) {
	p := &KeyedPRNG{}
	copy(p.key[:], key)
	return p, p.Reset()
}

// NewPRNG constructs a KeyedPRNG seeded from the OS CSPRNG.
func NewPRNG() (*KeyedPRNG, error) {
	var key [chacha20.KeySize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, err
	}
	return NewKeyedPRNG(key[:])
}

// Reset rewinds the stream to its initial state (nonce and counter zero).
func (p *KeyedPRNG) Reset() error {
	c, err := chacha20.NewUnauthenticatedCipher(p.key[:], make([]byte, chacha20.NonceSize))
	if err != nil {
		return err
	}
	p.cipher = c
	return nil
}

// Read fills p with keystream bytes, advancing the stream.
func (p *KeyedPRNG) Read(p2 []byte) (int, error) {
	for i := range p2 {
		p2[i] = 0
	}
	p.cipher.XORKeyStream(p2, p2)
	return len(p2), nil
}

// RandUint64 returns a single uniformly random uint64 from the OS CSPRNG.
func RandUint64() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// RandFloat64 returns a uniformly random float64 in [a, b).
func RandFloat64(a, b float64) float64 {
	return a + mrand.Float64()*(b-a)
}

// RandComplex128 returns a random complex128 with real and imaginary parts
// each uniform in [a, b).
func RandComplex128(a, b float64) complex128 {
	return complex(RandFloat64(a, b), RandFloat64(a, b))
}
