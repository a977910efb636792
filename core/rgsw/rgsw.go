// Package rgsw implements an RLWE-based GSW encryption and external product RLWE x RGSW -> RLWE.
// RSGW ciphertexts are tuples of two [rlwe.GadgetCiphertext] encrypting (`m(X)`, s*m(X)).
package rgsw
