package rng

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

const (
	splitMixGamma = 0x9e3779b97f4a7c15
	splitMixMul1  = 0xbf58476d1ce4e5b9
	splitMixMul2  = 0x94d049bb133111eb
)

// SplitMix64 is the avalanche mix used for seed expansion.
func SplitMix64(x uint64) uint64 {
	z := x + splitMixGamma
	z = (z ^ (z >> 30)) * splitMixMul1
	z = (z ^ (z >> 27)) * splitMixMul2
	return z ^ (z >> 31)
}

// processStart anchors the monotonic clock reading used by NewBaseSeed.
var processStart = time.Now()

// NewBaseSeed returns a non-reproducible seed: OS entropy XOR a
// high-resolution clock reading. When the entropy source fails the clock
// reading is used alone.
func NewBaseSeed() uint64 {
	clock := uint64(time.Now().UnixNano()) ^ uint64(time.Since(processStart).Nanoseconds())

	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return clock
	}
	return binary.LittleEndian.Uint64(b[:]) ^ clock
}

// DeriveSeed returns the seed of worker id under base.
func DeriveSeed(base uint64, id int) uint64 {
	return base + uint64(id)
}
