// Package mpbgv implements homomorphic decryption to Linear-Secret-Shared-Shares (LSSS)
// and homomorphic re-encryption from LSSS, as well as interactive bootstrapping for the package `schemes/bgv`
// See `multiparty/README.md` for additional information on multiparty schemes.
package mpbgv
