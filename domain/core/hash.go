package core

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Hash represents a content hash (hex encoded BLAKE3-256)
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := blake3.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters, for log lines.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Fingerprinter accumulates a canonical byte stream and hashes it.
type Fingerprinter struct {
	h *blake3.Hasher
}

// NewFingerprinter returns an empty fingerprinter.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{h: blake3.New()}
}

// Write appends a field. Fields are length-prefixed so adjacent values cannot alias.
func (f *Fingerprinter) Write(field string) {
	var n [4]byte
	l := len(field)
	n[0], n[1], n[2], n[3] = byte(l>>24), byte(l>>16), byte(l>>8), byte(l)
	_, _ = f.h.Write(n[:])
	_, _ = f.h.Write([]byte(field))
}

// Sum returns the hash of everything written so far.
func (f *Fingerprinter) Sum() Hash {
	return Hash(hex.EncodeToString(f.h.Sum(nil)))
}
